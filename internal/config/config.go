// Package config loads the registry settings used by cratectl commands.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults (the public registry host)
//  2. the YAML file at $CRATECTL_HOME/config.yaml (~/.cratectl/config.yaml)
//  3. CRATECTL_REGISTRY_HOST / CRATECTL_REGISTRY_TOKEN
//  4. command-line flags, applied by the caller
//
// A missing config file is not an error; `cratectl login` creates it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultHost is the registry used when nothing else is configured.
	DefaultHost = "https://crates.io"

	// EnvHome overrides the configuration directory.
	EnvHome = "CRATECTL_HOME"

	// FileName is the name of the config file inside the home directory.
	FileName = "config.yaml"
)

// Config holds the registry settings.
type Config struct {
	// Host is the registry base URL, without the /api/v1 suffix.
	Host string `yaml:"host" env:"CRATECTL_REGISTRY_HOST"`

	// Token is the API token sent in the Authorization header.
	Token string `yaml:"token,omitempty" env:"CRATECTL_REGISTRY_TOKEN"`
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".cratectl"), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the config file, if any, and applies environment overrides.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit file path.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{Host: DefaultHost}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults and environment only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	return cfg, nil
}

// Save writes cfg to the config file, creating the directory. The file
// holds a secret and is only readable by the owner.
func (c *Config) Save() (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	return path, c.SaveFile(path)
}

// SaveFile is Save for an explicit file path.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// Override applies non-empty command-line values.
func (c *Config) Override(host, token string) {
	if host != "" {
		c.Host = host
	}
	if token != "" {
		c.Token = token
	}
}
