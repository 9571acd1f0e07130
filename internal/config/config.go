// Package config resolves settings for the items server and client.
//
// Precedence, lowest first: defaults, YAML file, .env file, environment,
// command-line flags. Flags are applied by the cli package.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/Makepad-fr/items/internal/client"
	"github.com/Makepad-fr/items/internal/store"
)

// Defaults.
const (
	DefaultPort         = 3000
	DefaultSQLitePath   = "items.db"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 15 * time.Second
)

// LogConfig selects level and format for the server logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the server configuration.
type Config struct {
	Host     string       `yaml:"host"`
	Port     int          `yaml:"port"`
	Database store.Config `yaml:"database"`
	Log      LogConfig    `yaml:"log"`

	CORSOrigins  []string `yaml:"cors_origins"`
	ExposeErrors bool     `yaml:"expose_errors"`

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Sources records where each non-default value came from.
	Sources map[string]string `yaml:"-"`
}

// Value sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// NewDefault returns a configuration that serves a local SQLite file on
// port 3000 and creates the table on first start.
func NewDefault() *Config {
	return &Config{
		Port: DefaultPort,
		Database: store.Config{
			Driver:    string(store.DialectSQLite),
			Path:      DefaultSQLitePath,
			Bootstrap: true,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		Sources:      map[string]string{},
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate reports settings that would make the server fail to start.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	dialect, err := store.ParseDialect(c.Database.Driver)
	if err != nil {
		return err
	}
	switch dialect {
	case store.DialectSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case store.DialectMySQL:
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required for mysql")
		}
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("invalid database.max_open_conns %d", c.Database.MaxOpenConns)
	}
	return nil
}

// Mark records that key was set from source.
func (c *Config) Mark(key, source string) {
	if c.Sources == nil {
		c.Sources = map[string]string{}
	}
	c.Sources[key] = source
}

// ClientConfig is the configuration of the items client.
type ClientConfig struct {
	APIURL string
	Theme  string
}

// NewClientDefault returns the client defaults.
func NewClientDefault() *ClientConfig {
	return &ClientConfig{APIURL: client.DefaultBaseURL, Theme: "classic"}
}
