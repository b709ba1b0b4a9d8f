package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dmitrijs2005/edubd/internal/flagx"
	"github.com/dmitrijs2005/edubd/internal/timex"
)

// fileConfig is a DTO used exclusively for decoding config files. It relies
// on timex.Duration so durations can be written as "3s" (or integer
// nanoseconds in JSON). Zero values mean "not set" and leave the current
// setting alone.
type fileConfig struct {
	GatewayURL      string         `json:"gateway_url" toml:"gateway_url"`
	DatabasePath    string         `json:"database_path" toml:"database_path"`
	NotificationTTL timex.Duration `json:"notification_ttl" toml:"notification_ttl"`
	RequestTimeout  timex.Duration `json:"request_timeout" toml:"request_timeout"`
	RequestRate     *float64       `json:"request_rate" toml:"request_rate"`
	LogFormat       string         `json:"log_format" toml:"log_format"`
}

// parseFile overlays cfg with the file named by -c/-config. It panics on
// read or decode errors, like parseFlags.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}
	if err := loadFile(cfg, path); err != nil {
		panic(err)
	}
}

// loadFile decodes path as TOML when it ends in .toml and as JSON otherwise.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	}

	fc.apply(cfg)
	return nil
}

func (fc fileConfig) apply(cfg *Config) {
	if fc.GatewayURL != "" {
		cfg.GatewayURL = fc.GatewayURL
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.NotificationTTL.Duration != 0 {
		cfg.NotificationTTL = fc.NotificationTTL.Duration
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RequestRate != nil {
		cfg.RequestRate = *fc.RequestRate
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
}
