package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// MaxPageSize is the largest page the backend serves.
const MaxPageSize = 100

// Config holds runtime settings for the todo CLI.
type Config struct {
	APIBaseURL     string        `env:"API_URL"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	DBPath         string        `env:"DB_PATH"`
	LogLevel       string        `env:"LOG_LEVEL"`
	LogFormat      string        `env:"LOG_FORMAT"`
	// RetryUnsafe lets the client replay a POST after a transport failure.
	RetryUnsafe  bool   `env:"RETRY_UNSAFE"`
	PageSize     int    `env:"PAGE_SIZE"`
	Language     string `env:"LANGUAGE"`
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8080/api/v1"
	c.RequestTimeout = 10 * time.Second
	c.DBPath = "todoclient.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.RetryUnsafe = false
	c.PageSize = 10
	c.Language = "en"
	c.OTelEndpoint = ""
}

// Load builds a Config from defaults, the JSON file named in args, environ
// (KEY=value pairs, usually os.Environ()) and finally the flags in args.
func Load(args, environ []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the client cannot run with.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api base url %q must be an absolute http(s) URL", c.APIBaseURL))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("page size must be between 1 and %d, got %d", MaxPageSize, c.PageSize))
	}
	return errors.Join(errs...)
}
