package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"barter/pkg/config"
	"barter/pkg/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database, retrying while it comes up, and
// creates the schema.
func Open(ctx context.Context, cfg config.Config, log *zap.SugaredLogger, gormLog logger.Interface) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	log.Infow("connecting to database", "driver", cfg.DBDriver, "host", cfg.DBHost, "name", cfg.DBName)

	retries := max(cfg.DBConnectRetries, 1)
	var db *gorm.DB
	for attempt := 1; attempt <= retries; attempt++ {
		db, err = gorm.Open(dialector, &gorm.Config{Logger: gormLog})
		if err == nil {
			break
		}
		log.Warnw("database connection attempt failed", "attempt", attempt, "of", retries, "error", err)
		if attempt < retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.DBConnectBackoff):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		// one connection keeps an in-memory database alive and serializes writers
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database connection established successfully")
	return db, nil
}

// OpenSQLite opens a sqlite database with foreign keys enforced and the schema
// created. ":memory:" gives a private database per call.
func OpenSQLite(dsn string, gormLog logger.Interface) (*gorm.DB, error) {
	if gormLog == nil {
		gormLog = logger.Discard
	}
	db, err := gorm.Open(sqlite.Open(sqliteDSN(dsn)), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the five tables with their keys, indexes and constraints.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	return nil
}

func dialectorFor(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(sqliteDSN(cfg.DSN())), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
}

// sqliteDSN turns on foreign key enforcement, which sqlite leaves off by default.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=1"
}
