package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, DefaultSQLitePath, cfg.Database.Path)
	assert.True(t, cfg.Database.Bootstrap)
	assert.Equal(t, ":3000", cfg.Addr())
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "items.yaml", `
port: 8080
database:
  driver: mysql
  host: db.internal
  user: app
  name: crud
log:
  format: json
expose_errors: true
read_timeout: 5s
`)
	cfg := NewDefault()
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "crud", cfg.Database.Name)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.True(t, cfg.ExposeErrors)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, SourceFile, cfg.Sources["port"])
	require.NoError(t, cfg.Validate())
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", "port: [\n")

	err := LoadFile(NewDefault(), path)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, path, cfgErr.Path)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvPort, "4000")
	t.Setenv(EnvDBHost, "mysql.local")
	t.Setenv(EnvDBUser, "root")
	t.Setenv(EnvDBPassword, "pw")
	t.Setenv(EnvDBName, "crud")
	t.Setenv(EnvCORSOrigins, "http://a.local, http://b.local")
	t.Setenv(EnvExposeErrors, "yes")

	cfg := NewDefault()
	LoadEnv(cfg)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver, "DB_HOST implies mysql")
	assert.Equal(t, "mysql.local", cfg.Database.Host)
	assert.Equal(t, "crud", cfg.Database.Name)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSOrigins)
	assert.True(t, cfg.ExposeErrors)
	assert.Equal(t, SourceEnv, cfg.Sources["database.host"])
}

func TestLoadEnvExplicitDriverWins(t *testing.T) {
	t.Setenv(EnvDBHost, "ignored")
	t.Setenv(EnvDBDriver, "sqlite")

	cfg := NewDefault()
	LoadEnv(cfg)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadWithDotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "DB_PATH=from-dotenv.db\nPORT=5000\n")
	t.Setenv(EnvPort, "6000")
	t.Setenv(EnvDBPath, "")
	require.NoError(t, os.Unsetenv(EnvDBPath))

	cfg, err := Load("", envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv.db", cfg.Database.Path)
	assert.Equal(t, 6000, cfg.Port, "process environment wins over .env")
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = 70000 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }},
		{"mysql without name", func(c *Config) { c.Database.Driver = "mysql" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadClient(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://api.local/api")

	cfg, err := LoadClient(filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.Equal(t, "http://api.local/api", cfg.APIURL)
	assert.Equal(t, "classic", cfg.Theme)
}
