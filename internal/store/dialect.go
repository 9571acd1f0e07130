package store

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"

	_ "github.com/glebarez/go-sqlite"
	"github.com/go-sql-driver/mysql"
)

// Dialect names a supported database engine.
type Dialect string

// Supported dialects.
const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// Config describes how to reach the database.
type Config struct {
	Driver string `yaml:"driver"`

	// Path is the SQLite file, or ":memory:".
	Path string `yaml:"path"`

	// MySQL connection settings.
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`

	// MaxOpenConns caps the pool. Zero means a single connection.
	MaxOpenConns int `yaml:"max_open_conns"`

	// Bootstrap creates the items table on open when it is missing.
	Bootstrap bool `yaml:"bootstrap"`
}

// ParseDialect maps a driver name to a Dialect. Empty means SQLite.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "mysql":
		return DialectMySQL, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", s)
	}
}

func (d Dialect) driverName() string {
	return string(d)
}

func (d Dialect) dsn(cfg Config) (string, error) {
	switch d {
	case DialectMySQL:
		return mysqlDSN(cfg), nil
	case DialectSQLite:
		if cfg.Path == "" {
			return "", fmt.Errorf("sqlite: database path is required")
		}
		return cfg.Path, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", string(d))
	}
}

func mysqlDSN(cfg Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.Name
	mc.Net = "tcp"

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))

	// Count matched rows, not changed rows, so that an update writing the
	// same values is not reported as not found.
	mc.ClientFoundRows = true
	return mc.FormatDSN()
}

// prepare applies per-connection settings after the first successful ping.
func (d Dialect) prepare(ctx context.Context, db *sql.DB) error {
	if d != DialectSQLite {
		return nil
	}

	// PRAGMA busy_timeout = 5000;
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("failed to set busy_timeout: %w", err)
	}

	// PRAGMA synchronous = NORMAL;
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL"); err != nil {
		return fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	// PRAGMA journal_mode = WAL;
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("failed to set journal mode: %w", err)
	}
	return nil
}

func (d Dialect) createTableStatement() string {
	if d == DialectMySQL {
		return "CREATE TABLE IF NOT EXISTS items (" +
			"id INT AUTO_INCREMENT PRIMARY KEY, " +
			"name TEXT NOT NULL, " +
			"description TEXT)"
	}
	return "CREATE TABLE IF NOT EXISTS items (" +
		"id INTEGER PRIMARY KEY AUTOINCREMENT, " +
		"name TEXT NOT NULL, " +
		"description TEXT)"
}
