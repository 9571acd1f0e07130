package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names.
const (
	EnvPort         = "PORT"
	EnvHost         = "HOST"
	EnvDBDriver     = "DB_DRIVER"
	EnvDBPath       = "DB_PATH"
	EnvDBHost       = "DB_HOST"
	EnvDBPort       = "DB_PORT"
	EnvDBUser       = "DB_USER"
	EnvDBPassword   = "DB_PASSWORD"
	EnvDBName       = "DB_NAME"
	EnvDBMaxConns   = "DB_MAX_OPEN_CONNS"
	EnvDBBootstrap  = "DB_BOOTSTRAP"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"
	EnvCORSOrigins  = "CORS_ORIGINS"
	EnvExposeErrors = "EXPOSE_ERRORS"
	EnvReadTimeout  = "READ_TIMEOUT"
	EnvWriteTimeout = "WRITE_TIMEOUT"

	EnvAPIURL = "ITEMS_API_URL"
	EnvTheme  = "ITEMS_THEME"
)

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// LoadEnv applies environment variables that are set. When DB_HOST is set
// and DB_DRIVER is not, the driver becomes mysql.
func LoadEnv(cfg *Config) {
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
			cfg.Mark("port", SourceEnv)
		}
	}

	if v := os.Getenv(EnvHost); v != "" {
		cfg.Host = v
		cfg.Mark("host", SourceEnv)
	}

	if v := os.Getenv(EnvDBDriver); v != "" {
		cfg.Database.Driver = v
		cfg.Mark("database.driver", SourceEnv)
	}

	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.Database.Path = v
		cfg.Mark("database.path", SourceEnv)
	}

	if v := os.Getenv(EnvDBHost); v != "" {
		cfg.Database.Host = v
		cfg.Mark("database.host", SourceEnv)
		if os.Getenv(EnvDBDriver) == "" {
			cfg.Database.Driver = "mysql"
			cfg.Mark("database.driver", SourceEnv)
		}
	}

	if v := os.Getenv(EnvDBPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
			cfg.Mark("database.port", SourceEnv)
		}
	}

	if v := os.Getenv(EnvDBUser); v != "" {
		cfg.Database.User = v
		cfg.Mark("database.user", SourceEnv)
	}

	if v := os.Getenv(EnvDBPassword); v != "" {
		cfg.Database.Password = v
		cfg.Mark("database.password", SourceEnv)
	}

	if v := os.Getenv(EnvDBName); v != "" {
		cfg.Database.Name = v
		cfg.Mark("database.name", SourceEnv)
	}

	if v := os.Getenv(EnvDBMaxConns); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Database.MaxOpenConns = n
			cfg.Mark("database.max_open_conns", SourceEnv)
		}
	}

	if v := os.Getenv(EnvDBBootstrap); v != "" {
		cfg.Database.Bootstrap = parseBool(v)
		cfg.Mark("database.bootstrap", SourceEnv)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
		cfg.Mark("log.level", SourceEnv)
	}

	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
		cfg.Mark("log.format", SourceEnv)
	}

	if v := os.Getenv(EnvCORSOrigins); v != "" {
		cfg.CORSOrigins = splitList(v)
		cfg.Mark("cors_origins", SourceEnv)
	}

	if v := os.Getenv(EnvExposeErrors); v != "" {
		cfg.ExposeErrors = parseBool(v)
		cfg.Mark("expose_errors", SourceEnv)
	}

	if v := os.Getenv(EnvReadTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ReadTimeout = d
			cfg.Mark("read_timeout", SourceEnv)
		}
	}

	if v := os.Getenv(EnvWriteTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WriteTimeout = d
			cfg.Mark("write_timeout", SourceEnv)
		}
	}
}

// LoadClientEnv applies ITEMS_API_URL and ITEMS_THEME when set.
func LoadClientEnv(cfg *ClientConfig) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		cfg.Theme = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
