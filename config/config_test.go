package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestInitConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  path: ledger.db
redis:
  addr: localhost:6379
`)

	cfg, err := InitConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "ledger.db", cfg.Database.Path)
	assert.Equal(t, ":5000", cfg.Server.Address)
	assert.Equal(t, "token", cfg.Auth.Gate)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, uint(1), cfg.Orders.DefaultStoreID)
	assert.Equal(t, "orders", cfg.AMQP.Exchange)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestInitConfigEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: mysql
  host: db.internal
orders:
  default-store-id: 1
`)
	t.Setenv("COFFEESHOP_DATABASE_HOST", "db.replica")
	t.Setenv("COFFEESHOP_ORDERS_DEFAULT_STORE_ID", "3")
	t.Setenv("COFFEESHOP_LOG_LEVEL", "DEBUG")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "db.replica", cfg.Database.Host)
	assert.Equal(t, uint(3), cfg.Orders.DefaultStoreID)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestInitConfigSeedManagerFromEnvironment(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  path: ledger.db
seed:
  file: seed/reference.yaml
`)

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Seed.ManagerEmail)
	assert.Empty(t, cfg.Seed.ManagerPassword)

	t.Setenv("COFFEESHOP_SEED_MANAGER_EMAIL", "boss@coffeeshop.test")
	t.Setenv("COFFEESHOP_SEED_MANAGER_PASSWORD", "Str0ng!pass")
	cfg, err = InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "seed/reference.yaml", cfg.Seed.File)
	assert.Equal(t, "boss@coffeeshop.test", cfg.Seed.ManagerEmail)
	assert.Equal(t, "Str0ng!pass", cfg.Seed.ManagerPassword)
}

func TestInitConfigRequiresDriver(t *testing.T) {
	path := writeConfig(t, "server:\n  address: \":8080\"\n")

	_, err := InitConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")

	t.Setenv("COFFEESHOP_DATABASE_DRIVER", "postgres")
	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestInitConfigMissingFile(t *testing.T) {
	_, err := InitConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDialector(t *testing.T) {
	tests := []struct {
		cfg  DatabaseConfig
		name string
	}{
		{DatabaseConfig{Driver: "mysql", Host: "h", Port: "3306"}, "mysql"},
		{DatabaseConfig{Driver: "Postgres", Host: "h", Port: "5432"}, "postgres"},
		{DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, "sqlite"},
	}
	for _, tt := range tests {
		dialector, err := tt.cfg.Dialector()
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.name, dialector.Name())
	}

	_, err := DatabaseConfig{Driver: "sqlite"}.Dialector()
	assert.Error(t, err)
	_, err = DatabaseConfig{Driver: "oracle"}.Dialector()
	assert.Error(t, err)
}

func TestSetupDatabaseConnectionMigratesLedger(t *testing.T) {
	db, err := SetupDatabaseConnection(DatabaseConfig{Driver: "sqlite", Path: "file:config_test?mode=memory&cache=shared"}, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	for _, table := range []string{"orders", "order_list", "products", "categories", "store_location", "users"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestSetupRedisConnection(t *testing.T) {
	rdb, err := SetupRedisConnection(context.Background(), RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, rdb)

	mr := miniredis.RunT(t)
	rdb, err = SetupRedisConnection(context.Background(), RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	assert.NoError(t, rdb.Close())
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, GormLogLevel("debug"))
	assert.Equal(t, logger.Error, GormLogLevel("ERROR"))
	assert.Equal(t, logger.Warn, GormLogLevel("INFO"))
	assert.Equal(t, logger.Silent, GormLogLevel("CRITICAL"))
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger("WARNING"))
	assert.Error(t, InitLogger("LOUD"))
}
