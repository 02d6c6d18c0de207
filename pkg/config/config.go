package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Environment   string `mapstructure:"ENVIRONMENT"`
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`

	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBDSN             string        `mapstructure:"DB_DSN"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DBConnectRetries  int           `mapstructure:"DB_CONNECT_RETRIES"`
	DBConnectBackoff  time.Duration `mapstructure:"DB_CONNECT_BACKOFF"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	ContractDocRoot string `mapstructure:"CONTRACT_DOC_ROOT"`

	BreakerMaxFailures int           `mapstructure:"BREAKER_MAX_FAILURES"`
	BreakerTimeout     time.Duration `mapstructure:"BREAKER_TIMEOUT"`
	BreakerWindow      time.Duration `mapstructure:"BREAKER_WINDOW"`
}

var defaults = map[string]interface{}{
	"ENVIRONMENT":          "development",
	"SERVER_ADDRESS":       ":8080",
	"DB_DRIVER":            DriverPostgres,
	"DB_DSN":               "",
	"DB_HOST":              "postgres",
	"DB_PORT":              "5432",
	"DB_USER":              "program",
	"DB_PASSWORD":          "test",
	"DB_NAME":              "barter",
	"DB_MAX_OPEN_CONNS":    25,
	"DB_MAX_IDLE_CONNS":    10,
	"DB_CONN_MAX_LIFETIME": 5 * time.Minute,
	"DB_CONNECT_RETRIES":   10,
	"DB_CONNECT_BACKOFF":   5 * time.Second,
	"LOG_LEVEL":            "info",
	"LOG_FILE":             "",
	"CONTRACT_DOC_ROOT":    "",
	"BREAKER_MAX_FAILURES": 5,
	"BREAKER_TIMEOUT":      30 * time.Second,
	"BREAKER_WINDOW":       time.Minute,
}

// LoadConfig reads <path>/app.env when present, then lets the environment
// override it. A .env file in path is loaded into the environment first.
func LoadConfig(path string) (cfg Config, err error) {
	if err = godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverSQLite {
		return cfg, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

// DSN returns DB_DSN when set, otherwise a postgres DSN built from the parts.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	if c.DBDriver == DriverSQLite {
		return c.DBName + ".db"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}
