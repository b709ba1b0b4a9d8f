package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/edubd/internal/client/notify"
	"github.com/dmitrijs2005/edubd/internal/logging"
)

// Config holds runtime settings for the EduBD CLI.
//
// Fields:
//   - GatewayURL: base URL of the credential gateway, e.g. http://host/api.
//   - DatabasePath: SQLite file holding the persisted session token.
//   - NotificationTTL: how long a notification stays on screen.
//   - RequestTimeout: bound for a single gateway request.
//   - RequestRate: outbound requests per second, 0 for unlimited.
//   - LogFormat: text, json or console.
type Config struct {
	GatewayURL      string
	DatabasePath    string
	NotificationTTL time.Duration
	RequestTimeout  time.Duration
	RequestRate     float64
	LogFormat       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.GatewayURL = "http://127.0.0.1:8000/api"
	c.DatabasePath = "edubd.db"
	c.NotificationTTL = notify.DefaultTTL
	c.RequestTimeout = 10 * time.Second
	c.RequestRate = 10
	c.LogFormat = logging.FormatText
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.GatewayURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("gateway url %q must be an absolute http(s) url", c.GatewayURL)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	if c.NotificationTTL <= 0 {
		return fmt.Errorf("notification ttl must be positive, got %s", c.NotificationTTL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}
	if c.RequestRate < 0 {
		return fmt.Errorf("request rate must not be negative, got %v", c.RequestRate)
	}
	switch c.LogFormat {
	case logging.FormatText, logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if any) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
