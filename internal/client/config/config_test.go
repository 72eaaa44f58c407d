package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func mapLookup(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://localhost:8000", c.ServerURL)
	assert.Equal(t, "~/.docchat", c.DataDir)
	assert.Equal(t, 60*time.Second, c.RequestTimeout)
	assert.Equal(t, 5*time.Minute, c.UploadTimeout)
	assert.Equal(t, 200*time.Millisecond, c.ProgressTick)
	assert.Equal(t, 10, c.ProgressStep)
	assert.Equal(t, 4, c.UploadConcurrency)
	assert.Equal(t, "info", c.LogLevel)
	require.NoError(t, c.Validate())
}

func TestParseEnv(t *testing.T) {
	c := defaults()
	err := parseEnv(c, mapLookup(map[string]string{
		envServerURL:         "https://chat.example.com",
		envRequestTimeout:    "90s",
		envUploadConcurrency: "2",
		envLogLevel:          "debug",
	}))
	require.NoError(t, err)

	want := defaults()
	want.ServerURL = "https://chat.example.com"
	want.RequestTimeout = 90 * time.Second
	want.UploadConcurrency = 2
	want.LogLevel = "debug"
	assert.Empty(t, cmp.Diff(want, c))
}

func TestParseEnv_BadValues(t *testing.T) {
	require.Error(t, parseEnv(defaults(), mapLookup(map[string]string{envUploadTimeout: "soon"})))
	require.Error(t, parseEnv(defaults(), mapLookup(map[string]string{envUploadConcurrency: "many"})))
}

func TestEnvSource_ProcessEnvWinsOverDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DOCCHAT_SERVER_URL=http://from-file\nDOCCHAT_LOG_LEVEL=warn\n"), 0o600))
	t.Setenv(envServerURL, "http://from-env")

	lookup, err := envSource(path)
	require.NoError(t, err)

	v, ok := lookup(envServerURL)
	assert.True(t, ok)
	assert.Equal(t, "http://from-env", v)

	v, ok = lookup(envLogLevel)
	assert.True(t, ok)
	assert.Equal(t, "warn", v)
}

func TestEnvSource_MissingFileIsFine(t *testing.T) {
	_, err := envSource(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestParseJson_OverlaysPresentFields(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"server_url":     "http://json:9000",
		"upload_timeout": "2m",
		"progress_tick":  int64(50 * time.Millisecond),
		"progress_step":  5,
		"log_level":      "error",
	})

	c := defaults()
	require.NoError(t, parseJson(c, []string{"shell", "-c", path}))

	want := defaults()
	want.ServerURL = "http://json:9000"
	want.UploadTimeout = 2 * time.Minute
	want.ProgressTick = 50 * time.Millisecond
	want.ProgressStep = 5
	want.LogLevel = "error"
	assert.Empty(t, cmp.Diff(want, c))
}

func TestParseJson_NoFlagNoop(t *testing.T) {
	c := defaults()
	require.NoError(t, parseJson(c, []string{"shell"}))
	assert.Empty(t, cmp.Diff(defaults(), c))
}

func TestParseJson_Errors(t *testing.T) {
	require.Error(t, parseJson(defaults(), []string{"-c", filepath.Join(t.TempDir(), "missing.json")}))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	require.Error(t, parseJson(defaults(), []string{"--config=" + bad}))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(c *Config)
		wantErr bool
	}{
		{
			name: "short forms",
			args: []string{"shell", "-s", "http://10.0.0.1:8000", "-t", "15", "-l", "debug"},
			want: func(c *Config) {
				c.ServerURL = "http://10.0.0.1:8000"
				c.RequestTimeout = 15 * time.Second
				c.LogLevel = "debug"
			},
		},
		{
			name: "long forms with equals",
			args: []string{"--server=http://h", "--data-dir=/tmp/dc", "upload", "a.pdf"},
			want: func(c *Config) {
				c.ServerURL = "http://h"
				c.DataDir = "/tmp/dc"
			},
		},
		{
			name:    "bad timeout",
			args:    []string{"-t", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			err := parseFlags(c, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			tt.want(want)
			assert.Empty(t, cmp.Diff(want, c))
		})
	}
}

func TestParseFlags_UntouchedTimeoutKeepsPrecision(t *testing.T) {
	c := defaults()
	c.RequestTimeout = 1500 * time.Millisecond
	require.NoError(t, parseFlags(c, []string{"-l", "warn"}))
	assert.Equal(t, 1500*time.Millisecond, c.RequestTimeout)
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Setenv(envServerURL, "http://env")
	t.Setenv(envLogLevel, "warn")
	path := writeTempJSON(t, map[string]any{"server_url": "http://json", "data_dir": t.TempDir()})

	cfg, err := LoadConfig([]string{"-c", path, "-s", "http://flag"})
	require.NoError(t, err)

	assert.Equal(t, "http://flag", cfg.ServerURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.Equal(t, filepath.Join(cfg.DataDir, "docchat.db"), cfg.DBPath())
}

func TestValidate(t *testing.T) {
	c := defaults()
	c.UploadConcurrency = 0
	assert.Error(t, c.Validate())

	c = defaults()
	c.ServerURL = ""
	assert.Error(t, c.Validate())
}
