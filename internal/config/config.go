package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings read from the environment.
type Config struct {
	// Port the HTTP/WebSocket server listens on.
	Port int `env:"PORT" envDefault:"8080"`
	// AllowedOrigin restricts browser origins for the REST and realtime
	// surfaces. Empty means unrestricted.
	AllowedOrigin string `env:"ALLOWED_ORIGIN"`
	// APIToken, when set, is required as a shared secret on every request.
	APIToken string `env:"API_TOKEN"`
	// Session overrides the default session name from config.toml.
	Session  string `env:"SESSION"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// FromEnv parses Config from process environment variables.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	return &cfg, nil
}

// File represents the global ~/.wppbridge/config.toml.
type File struct {
	DefaultSession string `toml:"default_session"`
}

// LoadFile reads the config file from the given path. Returns an error if
// the file is missing.
func LoadFile(path string) (*File, error) {
	var f File
	_, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// SaveFile writes the config file to the given path, creating parent dirs
// as needed.
func SaveFile(path string, f *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(fh).Encode(f)
	if closeErr := fh.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
