package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

var knownFlags = []string{"-a", "-i", "-t", "-d", "-s", "-r", "-l"}

// parseFlags populates selected Config fields from command-line flags.
// os.Args is filtered with flagx.FilterArgs first so that -c/-config and
// anything else this package does not own is ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "Auth API base URL")
	checkInterval := fs.Int("i", int(cfg.SessionCheckInterval.Seconds()), "session expiry check interval (in seconds)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "API request timeout (in seconds)")
	fs.StringVar(&cfg.StoreDriver, "d", cfg.StoreDriver, "session store driver: sqlite, redis or memory")
	fs.StringVar(&cfg.DataDir, "s", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Durations from earlier sources may be sub-second; only overwrite them
	// when the flag was given.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.SessionCheckInterval = time.Duration(*checkInterval) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
