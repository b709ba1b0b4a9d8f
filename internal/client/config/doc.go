// Package config loads runtime configuration for the EduBD CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. Files ending in
//     .toml are decoded with BurntSushi/toml, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     gateway base URL
//	-d string     local database file
//	-t duration   notification lifetime
//	-l string     log format
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "3s":
//
//	{
//	  "gateway_url": "https://edubd.example/api",
//	  "database_path": "/var/lib/edubd/client.db",
//	  "notification_ttl": "3s",
//	  "request_timeout": "10s",
//	  "request_rate": 5,
//	  "log_format": "json"
//	}
//
// The same keys work in TOML.
package config
