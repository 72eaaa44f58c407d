package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	dotEnvFile = ".env"

	envServerURL         = "DOCCHAT_SERVER_URL"
	envDataDir           = "DOCCHAT_DATA_DIR"
	envRequestTimeout    = "DOCCHAT_REQUEST_TIMEOUT"
	envUploadTimeout     = "DOCCHAT_UPLOAD_TIMEOUT"
	envUploadConcurrency = "DOCCHAT_UPLOAD_CONCURRENCY"
	envLogLevel          = "DOCCHAT_LOG_LEVEL"
)

type lookupFunc func(key string) (string, bool)

// envSource merges the process environment with the optional dotenv file;
// the process environment wins.
func envSource(path string) (lookupFunc, error) {
	fileVals, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVals[key]
		return v, ok
	}, nil
}

func parseEnv(cfg *Config, lookup lookupFunc) error {
	if v, ok := lookup(envServerURL); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := lookup(envDataDir); ok && v != "" {
		cfg.DataDir = v
	}
	if v, ok := lookup(envLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}

	for key, dst := range map[string]*time.Duration{
		envRequestTimeout: &cfg.RequestTimeout,
		envUploadTimeout:  &cfg.UploadTimeout,
	} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	if v, ok := lookup(envUploadConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envUploadConcurrency, err)
		}
		cfg.UploadConcurrency = n
	}
	return nil
}
