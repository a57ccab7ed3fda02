package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"db-seed/internal/dialect"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	dsn        string
	driverFlag string
	schemaFile string
	cfgFile    string

	DB         *sql.DB
	DriverName string
	SchemaName string // introspection target, resolved per driver
	Dialect    dialect.Dialect
)

// offlineAnnotation marks commands that can work from a schema file alone.
const offlineAnnotation = "offline"

var RootCmd = &cobra.Command{
	Use:   "db-seed",
	Short: "Fill a SQL database with realistic fake data",
	Long: `
     _ _                           _
  __| | |__        ___  ___  ___  __| |
 / _' | '_ \ _____/ __|/ _ \/ _ \/ _' |
| (_| | |_) |_____\__ \  __/  __/ (_| |
 \__,_|_.__/      |___/\___|\___|\__,_|

DB SEED - dependency-aware fake data for SQL databases
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if schemaFile != "" && (cmd.Annotations[offlineAnnotation] == "true" || dryRun) {
			return nil
		}

		config, err := resolveDBConfig()
		if err != nil {
			return err
		}

		DriverName = config.Driver
		Dialect = dialect.GetDialect(DriverName)

		DB, err = sql.Open(config.Driver, config.DSN)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		if err := DB.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("failed to connect to db: %w", err)
		}

		SchemaName, err = currentSchema(cmd.Context(), DB, DriverName)
		if err != nil {
			return err
		}
		SchemaName = Dialect.GetSchemaName(SchemaName)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if DB != nil {
			return DB.Close()
		}
		return nil
	},
}

// resolveDBConfig prefers the single active database of the config file and
// falls back to --dsn/--driver.
func resolveDBConfig() (*DBConfig, error) {
	config, err := GetActiveDBConfig()
	if err == nil {
		return config, nil
	}

	connStr := viper.GetString("database.dsn")
	if connStr == "" {
		return nil, fmt.Errorf("%w: use --dsn and --driver flags instead", err)
	}
	driver := viper.GetString("database.driver")
	if driver == "" {
		driver = detectDriver(connStr)
	}
	return &DBConfig{Name: "CLI", Driver: driver, DSN: connStr, Active: true}, nil
}

func detectDriver(connStr string) string {
	switch {
	case strings.HasPrefix(connStr, "postgres") || strings.Contains(connStr, "sslmode"):
		return "postgres"
	case strings.HasPrefix(connStr, "sqlserver://"):
		return "sqlserver"
	case strings.HasPrefix(connStr, "oracle://"):
		return "oracle"
	case strings.HasPrefix(connStr, "file:") || strings.HasSuffix(connStr, ".db") || strings.HasSuffix(connStr, ".sqlite"):
		return "sqlite"
	}
	return "mysql"
}

func currentSchema(ctx context.Context, db *sql.DB, driver string) (string, error) {
	switch driver {
	case "mysql":
		var name sql.NullString
		if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
			return "", fmt.Errorf("failed to get database name: %w", err)
		}
		if name.String == "" {
			return "", fmt.Errorf("no database selected in DSN")
		}
		return name.String, nil
	case "postgres", "pgx":
		return "public", nil
	case "sqlserver", "mssql":
		return "dbo", nil
	}
	return "", nil
}

// Execute runs the root command. SIGINT and SIGTERM cancel the context, which
// rolls back a running seed.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./db-seed.yaml)")
	RootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database Source Name (DSN)")
	RootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "database/sql driver name (mysql, postgres, pgx, sqlserver, oracle, sqlite)")
	RootCmd.PersistentFlags().StringVarP(&schemaFile, "schema", "s", "", "YAML schema file (default: introspect the database)")

	viper.BindPFlag("database.dsn", RootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("database.driver", RootCmd.PersistentFlags().Lookup("driver"))
}

// initConfig reads in config file, .env and ENV variables if set.
func initConfig() {
	// a missing .env is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("db-seed")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DB_SEED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
