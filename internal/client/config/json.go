package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/genzes/internal/flagx"
	"github.com/dmitrijs2005/genzes/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI configuration. SeedDemo is a
// pointer so that an explicit false can be told apart from an absent key.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	CallTimeout         timex.Duration `json:"call_timeout"`
	StorageDriver       string         `json:"storage_driver"`
	StorageDSN          string         `json:"storage_dsn"`
	StorageDir          string         `json:"storage_dir"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3Endpoint          string         `json:"s3_endpoint"`
	S3AccessKey         string         `json:"s3_access_key"`
	S3SecretKey         string         `json:"s3_secret_key"`
	S3Prefix            string         `json:"s3_prefix"`
	SessionTTL          timex.Duration `json:"session_ttl"`
	PasswordEncoding    string         `json:"password_encoding"`
	AvatarDir           string         `json:"avatar_dir"`
	SeedDemo            *bool          `json:"seed_demo"`
	LogLevel            string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// non-empty value into config. A missing or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.ServerEndpointAddr, c.ServerEndpointAddr)
	setDuration(&config.OnlineCheckInterval, c.OnlineCheckInterval)
	setDuration(&config.CallTimeout, c.CallTimeout)
	setString(&config.StorageDriver, c.StorageDriver)
	setString(&config.StorageDSN, c.StorageDSN)
	setString(&config.StorageDir, c.StorageDir)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3Endpoint, c.S3Endpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Prefix, c.S3Prefix)
	setDuration(&config.SessionTTL, c.SessionTTL)
	setString(&config.PasswordEncoding, c.PasswordEncoding)
	setString(&config.AvatarDir, c.AvatarDir)
	setString(&config.LogLevel, c.LogLevel)
	if c.SeedDemo != nil {
		config.SeedDemo = *c.SeedDemo
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
