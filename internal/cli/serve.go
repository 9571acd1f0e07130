package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Makepad-fr/items/internal/config"
	"github.com/Makepad-fr/items/internal/logging"
	"github.com/Makepad-fr/items/internal/server"
	"github.com/Makepad-fr/items/internal/store"
)

// NewServerCommand returns the root command of the itemsd server.
func NewServerCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "itemsd",
		Short: "itemsd serves the items REST API",
		Long: `itemsd exposes CRUD over the items table at /api/items and a health
check at /api/health.

Configuration is read from defaults, then the --config YAML file, then the
.env file, then the environment, then flags.`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newVersionCommand("itemsd"))
	return root
}

type serveFlags struct {
	configPath string
	envFile    string

	host         string
	port         int
	dbDriver     string
	dbPath       string
	dbHost       string
	dbName       string
	logLevel     string
	logFormat    string
	exposeErrors bool
}

func newServeCommand() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Example: `  itemsd serve
  itemsd serve --port 8080 --db-path /var/lib/items/items.db
  DB_HOST=db DB_USER=app DB_PASSWORD=secret DB_NAME=items itemsd serve`,
		Args: exactArgs(0, "itemsd serve [flags]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configPath, f.envFile)
			if err != nil {
				return err
			}
			f.apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger := logging.New(logging.Config{
				Level:  logging.ParseLevel(cfg.Log.Level),
				Format: logging.ParseFormat(cfg.Log.Format),
				Output: cmd.ErrOrStderr(),
			})
			logger.Debug("configuration loaded", "sources", cfg.Sources)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := store.Open(ctx, cfg.Database, store.WithLogger(logger))
			if err != nil {
				logger.Error("database unavailable", "driver", cfg.Database.Driver, "error", err)
				return fmt.Errorf("open database: %w", err)
			}
			defer func() {
				if err := st.Close(); err != nil {
					logger.Warn("close database", "error", err)
				}
			}()

			srv := server.New(st, logger, server.Options{
				CORSOrigins:  cfg.CORSOrigins,
				ExposeErrors: cfg.ExposeErrors,
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
			})
			return srv.ListenAndServe(ctx, cfg.Addr())
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fs.StringVar(&f.envFile, "env-file", config.DefaultEnvFile, "dotenv file to load")
	fs.StringVar(&f.host, "host", "", "listen host")
	fs.IntVarP(&f.port, "port", "p", config.DefaultPort, "listen port")
	fs.StringVar(&f.dbDriver, "db-driver", "sqlite", "database driver: sqlite or mysql")
	fs.StringVar(&f.dbPath, "db-path", config.DefaultSQLitePath, "SQLite database file")
	fs.StringVar(&f.dbHost, "db-host", "", "MySQL host")
	fs.StringVar(&f.dbName, "db-name", "", "MySQL database name")
	fs.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", config.DefaultLogFormat, "log format: text or json")
	fs.BoolVar(&f.exposeErrors, "expose-errors", false, "return raw database errors to clients")
	return cmd
}

// apply copies the flags the user set over cfg.
func (f *serveFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	set := func(name, key string, apply func()) {
		if fs.Changed(name) {
			apply()
			cfg.Mark(key, config.SourceFlag)
		}
	}
	set("host", "host", func() { cfg.Host = f.host })
	set("port", "port", func() { cfg.Port = f.port })
	set("db-driver", "database.driver", func() { cfg.Database.Driver = f.dbDriver })
	set("db-path", "database.path", func() { cfg.Database.Path = f.dbPath })
	set("db-host", "database.host", func() { cfg.Database.Host = f.dbHost })
	set("db-name", "database.name", func() { cfg.Database.Name = f.dbName })
	set("log-level", "log.level", func() { cfg.Log.Level = f.logLevel })
	set("log-format", "log.format", func() { cfg.Log.Format = f.logFormat })
	set("expose-errors", "expose_errors", func() { cfg.ExposeErrors = f.exposeErrors })

	// A MySQL host without an explicit driver selects mysql, as DB_HOST does.
	if fs.Changed("db-host") && !fs.Changed("db-driver") && cfg.Sources["database.driver"] == "" {
		cfg.Database.Driver = string(store.DialectMySQL)
	}
}
