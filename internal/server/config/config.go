// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/genzes/internal/kv"
)

// Config holds runtime settings for the genzes server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - StorageDriver / StorageDSN / StorageDir: where the tables are kept.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: lifetime of an issued session.
//   - PasswordEncoding: bcrypt or base64.
//   - S3*: object storage for avatars and for the s3 storage driver.
//     Avatar uploads are disabled when S3Bucket is empty.
type Config struct {
	EndpointAddrGRPC            string        `env:"GENZES_GRPC_ADDR"`
	StorageDriver               string        `env:"GENZES_STORAGE_DRIVER"`
	StorageDSN                  string        `env:"GENZES_STORAGE_DSN"`
	StorageDir                  string        `env:"GENZES_STORAGE_DIR"`
	SecretKey                   string        `env:"GENZES_SECRET_KEY"`
	AccessTokenValidityDuration time.Duration `env:"GENZES_ACCESS_TOKEN_TTL"`
	PasswordEncoding            string        `env:"GENZES_PASSWORD_ENCODING"`
	S3RootUser                  string        `env:"GENZES_S3_ACCESS_KEY"`
	S3RootPassword              string        `env:"GENZES_S3_SECRET_KEY"`
	S3Bucket                    string        `env:"GENZES_S3_BUCKET"`
	S3Region                    string        `env:"GENZES_S3_REGION"`
	S3BaseEndpoint              string        `env:"GENZES_S3_ENDPOINT"`
	S3PublicURL                 string        `env:"GENZES_S3_PUBLIC_URL"`
	SeedDemo                    bool          `env:"GENZES_SEED_DEMO"`
	LogLevel                    string        `env:"GENZES_LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.StorageDriver = kv.DriverSQLite
	c.StorageDSN = "genzes-server.db"
	c.StorageDir = "genzes-server-data"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.PasswordEncoding = "bcrypt"
	c.S3Region = "us-east-1"
	c.SeedDemo = true
	c.LogLevel = "info"
}

// StorageOptions returns the kv backend settings. The s3 driver shares the
// avatar bucket under the "tables/" prefix.
func (c *Config) StorageOptions() kv.Options {
	s3 := c.S3Options()
	s3.Prefix = "tables/"
	return kv.Options{
		Driver: c.StorageDriver,
		DSN:    c.StorageDSN,
		Dir:    c.StorageDir,
		S3:     s3,
	}
}

// S3Options returns the object storage settings.
func (c *Config) S3Options() kv.S3Options {
	return kv.S3Options{
		Bucket:    c.S3Bucket,
		Region:    c.S3Region,
		Endpoint:  c.S3BaseEndpoint,
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
	}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
