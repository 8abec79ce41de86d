package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	LogLevel     gormlogger.LogLevel
}

func dialector(opts Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case DriverPostgres, "":
		return postgres.Open(opts.DSN), nil
	case DriverMySQL:
		return mysql.Open(opts.DSN), nil
	case DriverSQLite:
		return sqlite.Open(opts.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// Open connects gorm with unique-constraint errors translated to
// gorm.ErrDuplicatedKey.
func Open(opts Options) (*gorm.DB, error) {
	dial, err := dialector(opts)
	if err != nil {
		return nil, err
	}

	level := opts.LogLevel
	if level == 0 {
		level = gormlogger.Warn
	}

	db, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
