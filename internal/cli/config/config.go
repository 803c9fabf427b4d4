package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const ConfigFileName = "blog.json"

// DefaultAPIBaseURL points at a local backend for development.
const DefaultAPIBaseURL = "http://localhost:8080/api"

// Config is the resolved client configuration. Resolution order for the
// API base URL: BLOG_API_URL env var, then blog.json, then the local
// development default.
type Config struct {
	APIBaseURL     string    `json:"apiBaseUrl"`
	GoogleClientID string    `json:"googleClientId,omitempty"`
	S3             *S3Config `json:"s3,omitempty"`
	LogLevel       string    `json:"-"`
	LogFormat      string    `json:"-"`
}

// S3Config enables direct image uploads, bypassing the backend's
// /s3/upload endpoint.
type S3Config struct {
	Bucket        string `json:"bucket"`
	Region        string `json:"region"`
	Prefix        string `json:"prefix,omitempty"`
	PublicBaseURL string `json:"publicBaseUrl,omitempty"`
}

// envConfig holds the environment overrides, parsed after .env loading
type envConfig struct {
	APIBaseURL     string `env:"BLOG_API_URL"`
	GoogleClientID string `env:"BLOG_GOOGLE_CLIENT_ID"`
	LogLevel       string `env:"BLOG_LOG_LEVEL" envDefault:"warn"`
	LogFormat      string `env:"BLOG_LOG_FORMAT" envDefault:"console"`
}

// Resolve loads the client configuration from the environment and the
// nearest blog.json. Missing files are not an error; the defaults make
// every read-only command work against a local backend.
func Resolve() (*Config, error) {
	// A .env next to the project config is a development convenience,
	// missing files are ignored.
	_ = godotenv.Load()

	var e envConfig
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg := &Config{
		LogLevel:  e.LogLevel,
		LogFormat: e.LogFormat,
	}

	if path, err := FindConfigFile(); err == nil {
		fileCfg, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg.APIBaseURL = fileCfg.APIBaseURL
		cfg.GoogleClientID = fileCfg.GoogleClientID
		cfg.S3 = fileCfg.S3
	}

	// Environment wins over the project file
	if e.APIBaseURL != "" {
		cfg.APIBaseURL = e.APIBaseURL
	}
	if e.GoogleClientID != "" {
		cfg.GoogleClientID = e.GoogleClientID
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", cfg.APIBaseURL, err)
	}

	return cfg, nil
}

// APIHost returns the host portion of the API base URL. The credential
// store keys tokens by host so switching backends never leaks a session.
func (c *Config) APIHost() string {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Host == "" {
		return c.APIBaseURL
	}
	return u.Host
}

// FindConfigFile searches for blog.json in the current directory and its
// parents.
func FindConfigFile() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	dir := currentDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found in %s or any parent directory", ConfigFileName, currentDir)
}

// Load reads a configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to a file
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
