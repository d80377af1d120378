package config

import (
	"time"

	"github.com/dmitrijs2005/genzes/internal/cryptox"
	"github.com/dmitrijs2005/genzes/internal/kv"
)

// Config holds runtime settings for the CLI and its local store.
type Config struct {
	// ServerEndpointAddr is the remote backend; empty means local only.
	ServerEndpointAddr  string        `env:"GENZES_SERVER_ADDR"`
	OnlineCheckInterval time.Duration `env:"GENZES_ONLINE_CHECK_INTERVAL"`
	CallTimeout         time.Duration `env:"GENZES_CALL_TIMEOUT"`

	StorageDriver string `env:"GENZES_STORAGE_DRIVER"`
	StorageDSN    string `env:"GENZES_STORAGE_DSN"`
	StorageDir    string `env:"GENZES_STORAGE_DIR"`

	S3Bucket    string `env:"GENZES_S3_BUCKET"`
	S3Region    string `env:"GENZES_S3_REGION"`
	S3Endpoint  string `env:"GENZES_S3_ENDPOINT"`
	S3AccessKey string `env:"GENZES_S3_ACCESS_KEY"`
	S3SecretKey string `env:"GENZES_S3_SECRET_KEY"`
	S3Prefix    string `env:"GENZES_S3_PREFIX"`

	SessionTTL       time.Duration `env:"GENZES_SESSION_TTL"`
	PasswordEncoding string        `env:"GENZES_PASSWORD_ENCODING"`
	AvatarDir        string        `env:"GENZES_AVATAR_DIR"`
	SeedDemo         bool          `env:"GENZES_SEED_DEMO"`
	LogLevel         string        `env:"GENZES_LOG_LEVEL"`
}

// LoadDefaults sets values suitable for a single-user workstation.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.CallTimeout = 5 * time.Second
	c.StorageDriver = kv.DriverSQLite
	c.StorageDSN = "genzes.db"
	c.StorageDir = "genzes-data"
	c.S3Region = "us-east-1"
	c.SessionTTL = 24 * time.Hour
	c.PasswordEncoding = cryptox.CodecBcrypt
	c.AvatarDir = "avatars"
	c.SeedDemo = true
	c.LogLevel = "warn"
}

// StorageOptions returns the kv backend settings.
func (c *Config) StorageOptions() kv.Options {
	return kv.Options{
		Driver: c.StorageDriver,
		DSN:    c.StorageDSN,
		Dir:    c.StorageDir,
		S3: kv.S3Options{
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Prefix:    c.S3Prefix,
		},
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
