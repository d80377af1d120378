package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/genzes/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   remote gRPC address; pass an empty value for local-only mode
//	-i int      online status check interval, seconds
//	-s string   storage driver
//	-d string   storage DSN
//	-f string   storage directory
//	-l string   log level
//
// Other arguments, such as -c, are filtered out first. A parse error panics.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-s", "-d", "-f", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "address and port of the remote backend")
	onlineCheckInterval := fs.Int("i", int(config.OnlineCheckInterval.Seconds()), "online status check interval (in seconds)")
	fs.StringVar(&config.StorageDriver, "s", config.StorageDriver, "storage driver")
	fs.StringVar(&config.StorageDSN, "d", config.StorageDSN, "storage DSN")
	fs.StringVar(&config.StorageDir, "f", config.StorageDir, "storage directory")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
