package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/docchat/internal/flagx"
	"github.com/dmitrijs2005/docchat/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. After
// parsing, the fields that are present are copied into the runtime Config.
type JsonConfig struct {
	ServerURL         string         `json:"server_url"`
	DataDir           string         `json:"data_dir"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	UploadTimeout     timex.Duration `json:"upload_timeout"`
	ProgressTick      timex.Duration `json:"progress_tick"`
	ProgressStep      int            `json:"progress_step"`
	UploadConcurrency int            `json:"upload_concurrency"`
	LogLevel          string         `json:"log_level"`
}

// parseJson overlays cfg with the JSON file named by -c or -config in args.
// Without such a flag nothing is loaded.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.UploadTimeout.Duration > 0 {
		cfg.UploadTimeout = jc.UploadTimeout.Duration
	}
	if jc.ProgressTick.Duration > 0 {
		cfg.ProgressTick = jc.ProgressTick.Duration
	}
	if jc.ProgressStep > 0 {
		cfg.ProgressStep = jc.ProgressStep
	}
	if jc.UploadConcurrency > 0 {
		cfg.UploadConcurrency = jc.UploadConcurrency
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
