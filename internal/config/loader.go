package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// ConfigError is a configuration file that could not be parsed.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

// LoadFile merges the YAML file at path over cfg. Only keys present in the
// file change.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var present map[string]any
	if err := yaml.Unmarshal(data, &present); err != nil {
		return &ConfigError{Path: path, Message: err.Error()}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &ConfigError{Path: path, Message: err.Error()}
	}
	for key := range present {
		cfg.Mark(key, SourceFile)
	}
	return nil
}

// LoadDotEnv exports variables from envFile into the process environment
// without overriding variables that are already set. A missing file is
// not an error.
func LoadDotEnv(envFile string) error {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	return nil
}

// Load resolves the server configuration from defaults, the optional YAML
// file, the .env file and the environment.
func Load(configPath, envFile string) (*Config, error) {
	cfg := NewDefault()

	if configPath != "" {
		if err := LoadFile(cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	LoadEnv(cfg)

	return cfg, nil
}

// LoadClient resolves the client configuration from defaults, the .env
// file and the environment.
func LoadClient(envFile string) (*ClientConfig, error) {
	cfg := NewClientDefault()
	if err := LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	LoadClientEnv(cfg)
	return cfg, nil
}
