package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const dotEnvFile = ".env"

type lookupFunc func(key string) (string, bool)

// envSource looks keys up in the process environment first and then in the
// dotenv file at path. A missing or unreadable file is ignored.
func envSource(path string) lookupFunc {
	file, err := godotenv.Read(path)
	if err != nil {
		file = map[string]string{}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}
}

// parseEnv overlays cfg with the variables lookup knows about. Malformed
// durations or numbers panic, like the JSON and flag loaders.
func parseEnv(cfg *Config, lookup lookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("%s: %w", key, err))
			}
			*dst = d
		}
	}

	str("API_BASE_URL", &cfg.APIBaseURL)
	dur("AUTHKEEPER_REQUEST_TIMEOUT", &cfg.RequestTimeout)
	dur("AUTHKEEPER_SESSION_DURATION", &cfg.SessionDuration)
	dur("AUTHKEEPER_SESSION_CHECK_INTERVAL", &cfg.SessionCheckInterval)
	dur("AUTHKEEPER_EXPIRY_WARNING_WINDOW", &cfg.ExpiryWarningWindow)
	str("AUTHKEEPER_STORE_DRIVER", &cfg.StoreDriver)
	str("AUTHKEEPER_DATA_DIR", &cfg.DataDir)
	str("AUTHKEEPER_DATABASE_FILE", &cfg.DatabaseFile)
	str("AUTHKEEPER_REDIS_ADDR", &cfg.RedisAddr)
	str("AUTHKEEPER_REDIS_PASSWORD", &cfg.RedisPassword)
	str("AUTHKEEPER_LOG_LEVEL", &cfg.LogLevel)

	if v, ok := lookup("AUTHKEEPER_REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("AUTHKEEPER_REDIS_DB: %w", err))
		}
		cfg.RedisDB = n
	}
}
