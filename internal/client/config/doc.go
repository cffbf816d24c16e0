// Package config loads runtime configuration for the authkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally read from a .env file in the working
//     directory. Real environment variables win over the file.
//  3. Optional JSON file selected via flags: -c or -config.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   Auth API base URL
//	-i int      session expiry check interval (seconds)
//	-t int      API request timeout (seconds)
//	-d string   session store driver: sqlite, redis or memory
//	-s string   data directory for the sqlite store
//	-r string   redis address (host:port)
//	-l string   log level: debug, info, warn, error
//
// Environment
//
//	API_BASE_URL
//	AUTHKEEPER_REQUEST_TIMEOUT, AUTHKEEPER_SESSION_DURATION,
//	AUTHKEEPER_SESSION_CHECK_INTERVAL, AUTHKEEPER_EXPIRY_WARNING_WINDOW
//	AUTHKEEPER_STORE_DRIVER, AUTHKEEPER_DATA_DIR, AUTHKEEPER_DATABASE_FILE
//	AUTHKEEPER_REDIS_ADDR, AUTHKEEPER_REDIS_PASSWORD, AUTHKEEPER_REDIS_DB
//	AUTHKEEPER_LOG_LEVEL
//
// Durations in the environment use time.ParseDuration syntax ("15s", "168h").
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "5m" or integer nanoseconds. Absent keys leave the value
// unchanged:
//
//	{
//	  "api_base_url": "http://192.168.1.24:5000",
//	  "request_timeout": "15s",
//	  "session_duration": "168h",
//	  "session_check_interval": "5m",
//	  "expiry_warning_window": "24h",
//	  "store_driver": "sqlite",
//	  "data_dir": "data",
//	  "database_file": "session.db",
//	  "redis_addr": "127.0.0.1:6379",
//	  "redis_password": "",
//	  "redis_db": 0,
//	  "log_level": "info"
//	}
package config
