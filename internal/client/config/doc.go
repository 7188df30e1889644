// Package config loads runtime configuration for the todo CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables prefixed with TODO_.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the REST API, including the /api/v1 prefix
//	-t int      request timeout (seconds)
//	-d string   path of the local SQLite database
//	-l string   log level: debug, info, warn or error
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "10s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8080/api/v1",
//	  "request_timeout": "10s",
//	  "db_path": "todoclient.db",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "retry_unsafe": false,
//	  "page_size": 10,
//	  "language": "en",
//	  "otel_endpoint": ""
//	}
//
// # Environment
//
//	TODO_API_URL, TODO_REQUEST_TIMEOUT, TODO_DB_PATH, TODO_LOG_LEVEL,
//	TODO_LOG_FORMAT, TODO_RETRY_UNSAFE, TODO_PAGE_SIZE, TODO_LANGUAGE,
//	TODO_OTEL_ENDPOINT
package config
