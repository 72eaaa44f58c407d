package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/docchat/internal/filex"
)

const dbFileName = "docchat.db"

// Config holds runtime settings for the docchat CLI.
type Config struct {
	ServerURL string
	DataDir   string

	// RequestTimeout bounds chat and conversation calls, UploadTimeout a
	// single file transfer.
	RequestTimeout time.Duration
	UploadTimeout  time.Duration

	// ProgressTick and ProgressStep drive the simulated upload progress.
	ProgressTick      time.Duration
	ProgressStep      int
	UploadConcurrency int

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8000"
	c.DataDir = "~/.docchat"
	c.RequestTimeout = 60 * time.Second
	c.UploadTimeout = 5 * time.Minute
	c.ProgressTick = 200 * time.Millisecond
	c.ProgressStep = 10
	c.UploadConcurrency = 4
	c.LogLevel = "info"
}

// DBPath returns the location of the local SQLite database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, dbFileName)
}

// Validate rejects values the client cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.ServerURL == "":
		return fmt.Errorf("server URL is empty")
	case c.RequestTimeout <= 0:
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	case c.UploadTimeout <= 0:
		return fmt.Errorf("upload timeout must be positive, got %s", c.UploadTimeout)
	case c.ProgressTick <= 0:
		return fmt.Errorf("progress tick must be positive, got %s", c.ProgressTick)
	case c.ProgressStep <= 0:
		return fmt.Errorf("progress step must be positive, got %d", c.ProgressStep)
	case c.UploadConcurrency <= 0:
		return fmt.Errorf("upload concurrency must be positive, got %d", c.UploadConcurrency)
	}
	return nil
}

// LoadConfig constructs a Config from defaults and then overlays the
// environment, the JSON file and the flags found in args. Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	lookup, err := envSource(dotEnvFile)
	if err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	dir, err := filex.ExpandHome(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
