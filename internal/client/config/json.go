package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/todoclient/internal/flagx"
	"github.com/dmitrijs2005/todoclient/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the corresponding Config field untouched.
type JsonConfig struct {
	APIBaseURL     string          `json:"api_base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	DBPath         string          `json:"db_path"`
	LogLevel       string          `json:"log_level"`
	LogFormat      string          `json:"log_format"`
	RetryUnsafe    *bool           `json:"retry_unsafe"`
	PageSize       *int            `json:"page_size"`
	Language       string          `json:"language"`
	OTelEndpoint   *string         `json:"otel_endpoint"`
}

// parseJSON overlays cfg with the file named by -c or -config in args.
// Without either flag it does nothing.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
	if jc.RetryUnsafe != nil {
		cfg.RetryUnsafe = *jc.RetryUnsafe
	}
	if jc.PageSize != nil {
		cfg.PageSize = *jc.PageSize
	}
	if jc.Language != "" {
		cfg.Language = jc.Language
	}
	if jc.OTelEndpoint != nil {
		cfg.OTelEndpoint = *jc.OTelEndpoint
	}
	return nil
}
