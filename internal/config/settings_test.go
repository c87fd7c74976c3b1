package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, uint(3), s.Retries)
	assert.Equal(t, 32, s.Concurrency)
	assert.NoError(t, s.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	s := DefaultSettings()
	s.Concurrency = 4
	s.RateLimit = "1MB"
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"retries": 7}`), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint(7), s.Retries)
	assert.Equal(t, 32, s.Concurrency)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BULKDL_RETRIES", "5")
	t.Setenv("BULKDL_CONCURRENCY", "2")
	t.Setenv("BULKDL_RATE_LIMIT", "512KB")
	t.Setenv("BULKDL_LOG_FORMAT", "json")

	s := DefaultSettings()
	require.NoError(t, s.ApplyEnv(filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, uint(5), s.Retries)
	assert.Equal(t, 2, s.Concurrency)
	assert.Equal(t, "512KB", s.RateLimit)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, "info", s.LogLevel)
}

func TestApplyEnv_DotenvFile(t *testing.T) {
	// Register for restore, then unset so the dotenv file may set them.
	for _, key := range []string{"BULKDL_USER_AGENT", "BULKDL_TIMEOUT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("BULKDL_TIMEOUT", "5s")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BULKDL_USER_AGENT=from-dotenv\nBULKDL_TIMEOUT=1m\n"), 0644))

	s := DefaultSettings()
	require.NoError(t, s.ApplyEnv(envFile))

	assert.Equal(t, "from-dotenv", s.UserAgent)
	assert.Equal(t, "5s", s.RequestTimeout, "process environment wins over dotenv")
}

func TestApplyEnv_InvalidNumber(t *testing.T) {
	t.Setenv("BULKDL_CONCURRENCY", "many")

	s := DefaultSettings()
	err := s.ApplyEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BULKDL_CONCURRENCY")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		errMsg string
	}{
		{"zero concurrency", func(s *Settings) { s.Concurrency = 0 }, "concurrency"},
		{"negative cooldown", func(s *Settings) { s.RetryCooldown = -1 }, "retry_cooldown"},
		{"negative exponent", func(s *Settings) { s.RetryExponent = -1 }, "retry_exponent"},
		{"bad timeout", func(s *Settings) { s.RequestTimeout = "soon" }, "request_timeout"},
		{"negative timeout", func(s *Settings) { s.RequestTimeout = "-1s" }, "request_timeout"},
		{"bad rate limit", func(s *Settings) { s.RateLimit = "fast" }, "rate_limit"},
		{"bad log level", func(s *Settings) { s.LogLevel = "loud" }, "log_level"},
		{"bad log format", func(s *Settings) { s.LogFormat = "xml" }, "log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestTimeoutAndRateLimit(t *testing.T) {
	s := DefaultSettings()
	d, err := s.Timeout()
	require.NoError(t, err)
	assert.Zero(t, d)

	s.RequestTimeout = "90s"
	s.RateLimit = "4MB"

	d, err = s.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	n, err := s.RateLimitBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(4<<20), n)
}
