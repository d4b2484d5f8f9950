package shared

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Log       LogConfig                      `toml:"log"`
	Database  DatabaseConfig                 `toml:"database"`
	Server    ServerConfig                   `toml:"server"`
	HTTP      HTTPConfig                     `toml:"http"`
	Daybook   DaybookConfig                  `toml:"daybook"`
	Providers map[string]ProviderCredentials `toml:"providers"`
}

// LogConfig controls logger verbosity.
type LogConfig struct {
	Level string `toml:"level"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// HTTPConfig configures the shared outbound [http.Client].
//
// A RequestsPerSecond of zero disables pacing.
type HTTPConfig struct {
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// DaybookConfig holds the album creation endpoint of the Daybook destination.
type DaybookConfig struct {
	BaseURL string `toml:"base_url"`
}

// ProviderCredentials contains the OAuth2 client registration for a provider.
type ProviderCredentials struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// A missing file returns [ErrMissingConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path, creating parent directories.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Provider returns the credentials registered for name, matched case-insensitively.
func (c *Config) Provider(name string) (ProviderCredentials, bool) {
	for key, creds := range c.Providers {
		if strings.EqualFold(key, name) {
			return creds, true
		}
	}
	return ProviderCredentials{}, false
}

// LogLevel parses the configured level, falling back to info.
func (c *Config) LogLevel() log.Level {
	if c.Log.Level == "" {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
