package database

import (
	"context"
	"database/sql"
	"fmt"

	"jobboard_backend/database/migrations"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date. Postgres uses the embedded goose
// migrations; mysql and sqlite fall back to gorm AutoMigrate.
func Migrate(ctx context.Context, db *gorm.DB, opts Options) error {
	if opts.Driver == DriverPostgres {
		return RunMigrations(ctx, opts.DSN)
	}
	return AutoMigrate(db)
}

// RunMigrations applies the embedded SQL migrations with goose over a
// dedicated pgx connection.
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	logger.Info("Migrations applied", "driver", DriverPostgres)
	return nil
}

// MigrationStatus prints the goose status table for postgres.
func MigrationStatus(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.StatusContext(ctx, sqlDB, ".")
}

// RollbackLast reverts the most recent postgres migration.
func RollbackLast(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.DownContext(ctx, sqlDB, ".")
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("AutoMigrate completed", "dialect", db.Dialector.Name())
	return nil
}
