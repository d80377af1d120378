package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/genzes/internal/kv"
	"github.com/dmitrijs2005/genzes/internal/server/config"
)

func testConfig(t *testing.T) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.StorageDSN = filepath.Join(t.TempDir(), "server.db")
	c.PasswordEncoding = "base64"
	c.LogLevel = "error"
	return c
}

func TestNewApp_SeedsAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, testConfig(t))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestNewApp_Errors(t *testing.T) {
	c := testConfig(t)
	c.PasswordEncoding = "rot13"
	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "unknown password encoding")

	c = testConfig(t)
	c.StorageDriver = "redis"
	_, err = NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "storage init error")
}

func TestNewApp_MemoryStorageWithAvatars(t *testing.T) {
	c := testConfig(t)
	c.StorageDriver = kv.DriverMemory
	c.S3Bucket = "avatars"
	c.S3BaseEndpoint = "http://127.0.0.1:9000"
	c.S3RootUser = "minio"
	c.S3RootPassword = "minio123"

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.NotNil(t, app.server)
}

func TestNewApp_EmptySecretKeyUsesRandomOne(t *testing.T) {
	c := testConfig(t)
	c.StorageDriver = kv.DriverMemory
	c.SecretKey = ""

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.NotNil(t, app.server)
}
