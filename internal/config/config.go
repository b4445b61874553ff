// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Draft backends.
const (
	DraftBackendFile     = "file"
	DraftBackendRedis    = "redis"
	DraftBackendPostgres = "postgres"
)

// Résumé stores for the development server.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or environment overrides.
type Config struct {
	// Résumé service
	APIBaseURL     string `json:"api_base_url,omitempty"`    // Base URL of the résumé service
	APIPrefix      string `json:"api_prefix,omitempty"`      // Path prefix before /resumes
	APIToken       string `json:"api_token,omitempty"`       // Bearer credential
	RequestTimeout int    `json:"request_timeout,omitempty"` // Seconds per round trip

	// Draft auto-save
	DraftBackend  string `json:"draft_backend,omitempty"`  // file, redis or postgres
	DraftDir      string `json:"draft_dir,omitempty"`      // File backend directory
	DraftKey      string `json:"draft_key,omitempty"`      // Key the snapshot is stored under
	AutosaveQuiet int    `json:"autosave_quiet,omitempty"` // Quiet period in milliseconds
	AutosaveDelay int    `json:"autosave_delay,omitempty"` // "Saving" indicator delay in milliseconds
	RedisURL      string `json:"redis_url,omitempty"`      // redis:// or rediss:// URL
	DatabaseURL   string `json:"database_url,omitempty"`   // PostgreSQL connection URL

	// Development server
	Port      int    `json:"port,omitempty"`
	JWTSecret string `json:"jwt_secret,omitempty"`
	JWTHours  int    `json:"jwt_expiration_hours,omitempty"` // Lifetime of minted tokens
	Store     string `json:"store,omitempty"`                // memory or postgres

	// Rendering
	ChromePath string `json:"chrome_path,omitempty"`

	// Behavior
	LogLevel  string `json:"log_level,omitempty"`
	LogPretty bool   `json:"log_pretty,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIBaseURL:     "http://localhost:8080",
		APIPrefix:      "/api",
		RequestTimeout: 30,
		DraftBackend:   DraftBackendFile,
		DraftDir:       defaultDraftDir(),
		DraftKey:       "resume-draft",
		AutosaveQuiet:  2000,
		AutosaveDelay:  1000,
		Port:           8080,
		JWTHours:       24,
		Store:          StoreMemory,
		LogLevel:       "info",
	}
}

func defaultDraftDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "cv-builder")
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load reads the optional config file, applies CVB_* environment overrides,
// fills defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides fields from environment variables. Environment wins
// over the config file.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strVars := map[string]*string{
		"CVB_API_BASE_URL":  &c.APIBaseURL,
		"CVB_API_PREFIX":    &c.APIPrefix,
		"CVB_API_TOKEN":     &c.APIToken,
		"CVB_DRAFT_BACKEND": &c.DraftBackend,
		"CVB_DRAFT_DIR":     &c.DraftDir,
		"CVB_DRAFT_KEY":     &c.DraftKey,
		"CVB_REDIS_URL":     &c.RedisURL,
		"DATABASE_URL":      &c.DatabaseURL,
		"CVB_JWT_SECRET":    &c.JWTSecret,
		"CVB_STORE":         &c.Store,
		"CHROME_PATH":       &c.ChromePath,
		"CVB_LOG_LEVEL":     &c.LogLevel,
	}
	for name, dst := range strVars {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	intVars := map[string]*int{
		"CVB_REQUEST_TIMEOUT":      &c.RequestTimeout,
		"CVB_AUTOSAVE_QUIET":       &c.AutosaveQuiet,
		"CVB_AUTOSAVE_DELAY":       &c.AutosaveDelay,
		"CVB_PORT":                 &c.Port,
		"CVB_JWT_EXPIRATION_HOURS": &c.JWTHours,
	}
	for name, dst := range intVars {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: invalid %s: %v", name, err)
		}
		*dst = n
	}

	if v, ok := lookup("CVB_LOG_PRETTY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config error: invalid CVB_LOG_PRETTY: %v", err)
		}
		c.LogPretty = b
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.APIBaseURL != "" {
		u, err := url.Parse(c.APIBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: 'api_base_url' must be an absolute URL: %q", c.APIBaseURL)
		}
	}

	switch c.DraftBackend {
	case DraftBackendFile:
		if c.DraftDir == "" {
			return fmt.Errorf("config error: 'draft_dir' is required for the file backend")
		}
	case DraftBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config error: 'redis_url' is required for the redis backend")
		}
	case DraftBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config error: unknown draft_backend %q", c.DraftBackend)
	}

	switch c.Store {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("config error: unknown store %q", c.Store)
	}

	// Validate numeric ranges
	if c.AutosaveQuiet < 0 || c.AutosaveDelay < 0 {
		return fmt.Errorf("config error: autosave durations must be non-negative")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("config error: 'request_timeout' must be non-negative")
	}
	if c.JWTHours < 0 {
		return fmt.Errorf("config error: 'jwt_expiration_hours' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	fillString(&result.APIBaseURL, defaults.APIBaseURL)
	fillString(&result.APIPrefix, defaults.APIPrefix)
	fillString(&result.APIToken, defaults.APIToken)
	fillString(&result.DraftBackend, defaults.DraftBackend)
	fillString(&result.DraftDir, defaults.DraftDir)
	fillString(&result.DraftKey, defaults.DraftKey)
	fillString(&result.RedisURL, defaults.RedisURL)
	fillString(&result.DatabaseURL, defaults.DatabaseURL)
	fillString(&result.JWTSecret, defaults.JWTSecret)
	fillString(&result.Store, defaults.Store)
	fillString(&result.ChromePath, defaults.ChromePath)
	fillString(&result.LogLevel, defaults.LogLevel)

	// Int fields: use default if zero
	fillInt(&result.RequestTimeout, defaults.RequestTimeout)
	fillInt(&result.AutosaveQuiet, defaults.AutosaveQuiet)
	fillInt(&result.AutosaveDelay, defaults.AutosaveDelay)
	fillInt(&result.Port, defaults.Port)
	fillInt(&result.JWTHours, defaults.JWTHours)

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

func fillString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func fillInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

// QuietPeriod returns the auto-save quiet window.
func (c *Config) QuietPeriod() time.Duration {
	return time.Duration(c.AutosaveQuiet) * time.Millisecond
}

// SavingDelay returns the delay between the "saving" status and the commit.
func (c *Config) SavingDelay() time.Duration {
	return time.Duration(c.AutosaveDelay) * time.Millisecond
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}
