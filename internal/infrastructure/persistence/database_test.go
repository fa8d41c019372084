package persistence

import (
	"context"
	"testing"

	"github.com/invoiceflow/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDialector(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		d, err := openDialector(&config.DatabaseConfig{Driver: config.DriverPostgres, Host: "localhost"})
		require.NoError(t, err)
		assert.Equal(t, "postgres", d.Name())
	})

	t.Run("empty driver defaults to postgres", func(t *testing.T) {
		d, err := openDialector(&config.DatabaseConfig{})
		require.NoError(t, err)
		assert.Equal(t, "postgres", d.Name())
	})

	t.Run("sqlite", func(t *testing.T) {
		d, err := openDialector(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
		require.NoError(t, err)
		assert.Equal(t, "sqlite", d.Name())
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := openDialector(&config.DatabaseConfig{Driver: "oracle"})
		assert.ErrorContains(t, err, "unsupported database driver")
	})
}

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate())
	require.NoError(t, db.Ping(context.Background()))

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	assert.True(t, db.DB.Migrator().HasTable("invoices"))
	assert.True(t, db.DB.Migrator().HasTable("invoice_items"))
	assert.True(t, db.DB.Migrator().HasTable("invoice_templates"))

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}
