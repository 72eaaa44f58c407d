// Package config loads runtime configuration for the docchat CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed with DOCCHAT_; a .env file in the
//     working directory fills in variables that are not already set.
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-s, -server string     Content API base URL
//	-d, -data-dir string   directory of the local database
//	-t, -timeout int       chat/CRUD request timeout (seconds)
//	-l, -log-level string  debug, info, warn or error
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "90s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:8000",
//	  "data_dir": "~/.docchat",
//	  "request_timeout": "60s",
//	  "upload_timeout": "5m",
//	  "progress_tick": "200ms",
//	  "progress_step": 10,
//	  "upload_concurrency": 4,
//	  "log_level": "info"
//	}
package config
