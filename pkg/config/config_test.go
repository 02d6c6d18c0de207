package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "barter", cfg.DBName)
	assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, 10, cfg.DBConnectRetries)
	assert.Equal(t, "host=postgres user=program password=test dbname=barter port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}

func TestLoadConfigFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	content := "DB_DRIVER=sqlite\nDB_NAME=market\nLOG_LEVEL=debug\nBREAKER_TIMEOUT=45s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DB_CONNECT_RETRIES", "3")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "market.db", cfg.DSN())
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 3, cfg.DBConnectRetries)
	assert.Equal(t, 45*time.Second, cfg.BreakerTimeout)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CONTRACT_DOC_ROOT=/srv/contracts\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CONTRACT_DOC_ROOT") })

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/contracts", cfg.ContractDocRoot)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestDSNOverride(t *testing.T) {
	cfg := Config{DBDriver: DriverPostgres, DBDSN: "postgres://u:p@db/barter"}
	assert.Equal(t, "postgres://u:p@db/barter", cfg.DSN())
}
