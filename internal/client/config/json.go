package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// tell an absent key apart from a zero value.
type JsonConfig struct {
	APIBaseURL           *string         `json:"api_base_url"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
	SessionDuration      *timex.Duration `json:"session_duration"`
	SessionCheckInterval *timex.Duration `json:"session_check_interval"`
	ExpiryWarningWindow  *timex.Duration `json:"expiry_warning_window"`
	StoreDriver          *string         `json:"store_driver"`
	DataDir              *string         `json:"data_dir"`
	DatabaseFile         *string         `json:"database_file"`
	RedisAddr            *string         `json:"redis_addr"`
	RedisPassword        *string         `json:"redis_password"`
	RedisDB              *int            `json:"redis_db"`
	LogLevel             *string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Without that flag it does nothing. Read or unmarshal errors
// panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.SessionDuration, jc.SessionDuration)
	setDuration(&cfg.SessionCheckInterval, jc.SessionCheckInterval)
	setDuration(&cfg.ExpiryWarningWindow, jc.ExpiryWarningWindow)
	setString(&cfg.StoreDriver, jc.StoreDriver)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.DatabaseFile, jc.DatabaseFile)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisPassword, jc.RedisPassword)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.RedisDB != nil {
		cfg.RedisDB = *jc.RedisDB
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
