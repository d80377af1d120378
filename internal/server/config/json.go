package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/genzes/internal/flagx"
	"github.com/dmitrijs2005/genzes/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration so durations may be written as "24h" or as
// integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	StorageDriver               string         `json:"storage_driver"`
	StorageDSN                  string         `json:"storage_dsn"`
	StorageDir                  string         `json:"storage_dir"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	PasswordEncoding            string         `json:"password_encoding"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	S3PublicURL                 string         `json:"s3_public_url"`
	SeedDemo                    *bool          `json:"seed_demo"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson loads the file given with -c or -config into config. Empty or
// absent keys keep their previous value. If the file cannot be read or
// contains invalid JSON, the function panics.
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

	for dst, v := range map[*string]string{
		&config.EndpointAddrGRPC: c.EndpointAddrGRPC,
		&config.StorageDriver:    c.StorageDriver,
		&config.StorageDSN:       c.StorageDSN,
		&config.StorageDir:       c.StorageDir,
		&config.SecretKey:        c.SecretKey,
		&config.PasswordEncoding: c.PasswordEncoding,
		&config.S3RootUser:       c.S3RootUser,
		&config.S3RootPassword:   c.S3RootPassword,
		&config.S3Bucket:         c.S3Bucket,
		&config.S3Region:         c.S3Region,
		&config.S3BaseEndpoint:   c.S3BaseEndpoint,
		&config.S3PublicURL:      c.S3PublicURL,
		&config.LogLevel:         c.LogLevel,
	} {
		if v != "" {
			*dst = v
		}
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.SeedDemo != nil {
		config.SeedDemo = *c.SeedDemo
	}
}
