package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Credential backends
const (
	BackendKeyring = "keyring"
	BackendSQLite  = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	// Survey API Configuration
	API APIConfig `yaml:"api"`

	// Credential persistence
	Credentials CredentialsConfig `yaml:"credentials"`

	// Local web UI
	Web WebConfig `yaml:"web"`

	// Session lifecycle
	Session SessionConfig `yaml:"session"`

	// Logging Configuration
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig holds the external survey API settings
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// CredentialsConfig selects where the bearer token is persisted
type CredentialsConfig struct {
	Backend string `yaml:"backend"` // keyring, sqlite
	Service string `yaml:"service"`
	Slot    string `yaml:"slot"`
	DBPath  string `yaml:"db_path"`
}

// WebConfig holds the local web UI settings
type WebConfig struct {
	Address       string   `yaml:"address"`
	SessionSecret string   `yaml:"session_secret"`
	AllowOrigins  []string `yaml:"allow_origins"`
}

// SessionConfig holds session lifecycle settings
type SessionConfig struct {
	// Revalidate is a cron spec for re-checking the credential; empty disables it
	Revalidate string `yaml:"revalidate"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	dbPath := "credentials.sqlite"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".config", "edusurvey", "credentials.sqlite")
	}

	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 30 * time.Second,
		},
		Credentials: CredentialsConfig{
			Backend: BackendKeyring,
			Service: "edusurvey",
			Slot:    "token",
			DBPath:  dbPath,
		},
		Web: WebConfig{
			Address:       "127.0.0.1:8080",
			SessionSecret: "edusurvey-local-session-secret",
		},
		Session: SessionConfig{
			Revalidate: "@every 5m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from an optional YAML file and environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := Default()

	if path := os.Getenv("EDUSURVEY_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.API.BaseURL, "API_BASE_URL")
	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid API_TIMEOUT %q: %w", v, err)
		}
		c.API.Timeout = d
	}

	setString(&c.Credentials.Backend, "CREDENTIAL_BACKEND")
	setString(&c.Credentials.Service, "CREDENTIAL_SERVICE")
	setString(&c.Credentials.Slot, "CREDENTIAL_SLOT")
	setString(&c.Credentials.DBPath, "CREDENTIAL_DB_PATH")

	setString(&c.Web.Address, "WEB_ADDRESS")
	setString(&c.Web.SessionSecret, "WEB_SESSION_SECRET")
	if v := os.Getenv("WEB_ALLOW_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Web.AllowOrigins = origins
	}

	// An explicitly empty SESSION_REVALIDATE disables revalidation
	if v, ok := os.LookupEnv("SESSION_REVALIDATE"); ok {
		c.Session.Revalidate = strings.TrimSpace(v)
	}

	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	return nil
}

// Validate checks the values that would otherwise fail late at first use
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api base url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.API.Timeout)
	}

	switch c.Credentials.Backend {
	case BackendKeyring, BackendSQLite:
	default:
		return fmt.Errorf("invalid credential backend '%s', must be one of: keyring, sqlite", c.Credentials.Backend)
	}

	if c.Credentials.Slot == "" {
		return fmt.Errorf("credential slot is required")
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
