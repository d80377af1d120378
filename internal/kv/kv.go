// Package kv provides the key-value persistence the local store is built
// on: the Go counterpart of the browser's localStorage, with several
// interchangeable backends.
//
// Contract shared by all backends:
//   - Get returns (nil, nil) when the key does not exist.
//   - Set overwrites any previous value.
//   - Delete is idempotent.
package kv

import (
	"context"
	"fmt"
	"io"
)

// Storage is a flat key-value store.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Batcher is implemented by backends that can write several keys
// atomically.
type Batcher interface {
	SetMany(ctx context.Context, values map[string][]byte) error
}

// SetAll writes values through s, atomically when s implements Batcher and
// key by key otherwise.
func SetAll(ctx context.Context, s Storage, values map[string][]byte) error {
	if b, ok := s.(Batcher); ok {
		return b.SetMany(ctx, values)
	}
	for k, v := range values {
		if err := s.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// Close releases s if it holds resources.
func Close(s Storage) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	// DSN is the SQLite file name or the PostgreSQL connection string.
	DSN string
	// Dir is the directory of the file backend.
	Dir string
	S3  S3Options
}

// Open constructs the backend named by opts.Driver. SQL backends are
// migrated before they are returned.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverFile:
		return NewFile(opts.Dir)
	case DriverSQLite:
		return OpenSQLite(ctx, opts.DSN)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.DSN)
	case DriverS3:
		return OpenS3(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
