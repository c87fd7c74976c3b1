package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/handiism/bulk-downloader/internal/utils"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "BULKDL_"

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	Retries       uint    `json:"retries"`
	Concurrency   int     `json:"concurrency"`
	RetryCooldown float64 `json:"retry_cooldown"`
	RetryExponent float64 `json:"retry_exponent"`

	// HTTP settings
	RequestTimeout string `json:"request_timeout"` // Go duration, empty or "0" for none
	RateLimit      string `json:"rate_limit"`      // size per second, e.g. "4MB"; empty for none
	UserAgent      string `json:"user_agent"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"` // text, json

	// MetricsFile receives Prometheus text format metrics at the end of a run.
	MetricsFile string `json:"metrics_file"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Retries:       3,
		Concurrency:   32,
		RetryCooldown: 0.2,
		RetryExponent: 4.0,

		UserAgent: "bulk-downloader",

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads settings from a JSON file. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv loads the given dotenv files (".env" when none are given; missing files are skipped)
// and overlays every non-empty BULKDL_* variable onto s. Variables already set in the
// process environment win over dotenv files.
func (s *Settings) ApplyEnv(envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	var err error
	if v, ok := lookup("RETRIES"); ok {
		n, perr := strconv.ParseUint(v, 10, 0)
		err = errors.Join(err, envError("RETRIES", perr))
		s.Retries = uint(n)
	}
	if v, ok := lookup("CONCURRENCY"); ok {
		n, perr := strconv.Atoi(v)
		err = errors.Join(err, envError("CONCURRENCY", perr))
		s.Concurrency = n
	}
	if v, ok := lookup("RETRY_COOLDOWN"); ok {
		f, perr := strconv.ParseFloat(v, 64)
		err = errors.Join(err, envError("RETRY_COOLDOWN", perr))
		s.RetryCooldown = f
	}
	if v, ok := lookup("RETRY_EXPONENT"); ok {
		f, perr := strconv.ParseFloat(v, 64)
		err = errors.Join(err, envError("RETRY_EXPONENT", perr))
		s.RetryExponent = f
	}
	if v, ok := lookup("TIMEOUT"); ok {
		s.RequestTimeout = v
	}
	if v, ok := lookup("RATE_LIMIT"); ok {
		s.RateLimit = v
	}
	if v, ok := lookup("USER_AGENT"); ok {
		s.UserAgent = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		s.LogLevel = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		s.LogFormat = v
	}
	if v, ok := lookup("METRICS_FILE"); ok {
		s.MetricsFile = v
	}
	return err
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	return v, v != ""
}

func envError(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
}

// Validate checks that the settings describe a runnable configuration.
func (s *Settings) Validate() error {
	var errs []error
	if s.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", s.Concurrency))
	}
	if s.RetryCooldown < 0 {
		errs = append(errs, fmt.Errorf("retry_cooldown must not be negative, got %g", s.RetryCooldown))
	}
	if s.RetryExponent < 0 {
		errs = append(errs, fmt.Errorf("retry_exponent must not be negative, got %g", s.RetryExponent))
	}
	if _, err := s.Timeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.RateLimitBytes(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", s.LogFormat))
	}
	return errors.Join(errs...)
}

// Timeout returns the parsed request timeout. Zero means no timeout.
func (s *Settings) Timeout() (time.Duration, error) {
	if s.RequestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("request_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("request_timeout must not be negative, got %s", d)
	}
	return d, nil
}

// RateLimitBytes returns the bandwidth cap in bytes per second. Zero means unlimited.
func (s *Settings) RateLimitBytes() (int64, error) {
	n, err := utils.ParseBytes(s.RateLimit)
	if err != nil {
		return 0, fmt.Errorf("rate_limit: %w", err)
	}
	return n, nil
}
