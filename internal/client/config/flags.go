package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/todoclient/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-d", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the REST API
//	-t int      request timeout in seconds
//	-d string   path of the local database
//	-l string   log level
//
// Only the flags above are looked at, so -c and anything else in args is
// left for other parsers.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the REST API")
	timeout := fs.Int("t", int(cfg.RequestTimeout/time.Second), "request timeout (in seconds)")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path of the local database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			set = true
		}
	})
	if set {
		cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	}
	return nil
}
