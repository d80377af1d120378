// Package config loads runtime configuration for the genzes CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. GENZES_* environment variables (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the remote gRPC backend; empty disables it
//	-i int      online status check interval (seconds)
//	-s string   local storage driver: memory, file, sqlite, postgres or s3
//	-d string   storage DSN (sqlite file or postgres URL)
//	-f string   storage directory for the file driver
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds. Keys that are absent or empty keep the previous
// value:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "storage_driver": "sqlite",
//	  "storage_dsn": "genzes.db",
//	  "session_ttl": "24h",
//	  "password_encoding": "bcrypt"
//	}
package config
