// Package cryptox holds the password codecs used by the local store.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCodec turns a plaintext password into its stored form and checks
// a candidate against it.
type PasswordCodec interface {
	Encode(password string) (string, error)
	Verify(encoded, password string) bool
}

// Codec names accepted by CodecByName.
const (
	CodecBcrypt = "bcrypt"
	CodecBase64 = "base64"
)

// CodecByName returns the codec registered under name. An empty name selects
// bcrypt.
func CodecByName(name string) (PasswordCodec, error) {
	switch strings.ToLower(name) {
	case "", CodecBcrypt:
		return Bcrypt{}, nil
	case CodecBase64:
		return Base64{}, nil
	default:
		return nil, fmt.Errorf("unknown password encoding %q", name)
	}
}

// Base64 stores passwords as standard base64. It is reversible and kept only
// for compatibility with stores written by the web client.
type Base64 struct{}

func (Base64) Encode(password string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(password)), nil
}

func (Base64) Verify(encoded, password string) bool {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(raw, []byte(password)) == 1
}

// Bcrypt hashes passwords with bcrypt. Cost zero means bcrypt.DefaultCost.
//
// Verify also accepts base64 values, so a store created with Base64 keeps
// working after switching codecs.
type Bcrypt struct {
	Cost int
}

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
var ErrPasswordTooLong = errors.New("password longer than 72 bytes")

func (b Bcrypt) Encode(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b Bcrypt) Verify(encoded, password string) bool {
	if !strings.HasPrefix(encoded, "$2") {
		return Base64{}.Verify(encoded, password)
	}
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}
