// Package dbtest opens throwaway sqlite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"jobboard_backend/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// New returns a migrated sqlite database that lives in t.TempDir().
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := database.Open(database.Options{
		Driver:   database.DriverSQLite,
		DSN:      dsn,
		LogLevel: gormlogger.Silent,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
