package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/edubd/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gateway base URL
//	-d string     path of the local SQLite database
//	-t duration   notification lifetime, e.g. 5s
//	-l string     log format: text, json or console
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, so the config-file flag does not trip it up.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.GatewayURL, "a", cfg.GatewayURL, "gateway base url")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database file")
	fs.DurationVar(&cfg.NotificationTTL, "t", cfg.NotificationTTL, "notification lifetime")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format (text, json, console)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
