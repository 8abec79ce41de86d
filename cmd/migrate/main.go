package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"jobboard_backend/database"
	"jobboard_backend/internal/config"
	"jobboard_backend/internal/logger"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [up|down|status]")
	}
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	cfg := config.LoadConfig()
	logger.InitWithWriter(cfg.Server.Env, cfg.Log.Level, os.Stdout)
	ctx := context.Background()

	if cfg.Database.Driver != database.DriverPostgres {
		if cmd != "up" {
			logger.Fatal("Only 'up' is supported for this driver", "driver", cfg.Database.Driver)
		}
		db, err := database.Open(database.Options{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
		if err != nil {
			logger.Fatal("Failed to connect", "error", err)
		}
		defer database.Close(db)
		if err := database.AutoMigrate(db); err != nil {
			logger.Fatal("Migration failed", "error", err)
		}
		return
	}

	var err error
	switch cmd {
	case "up":
		err = database.RunMigrations(ctx, cfg.Database.DSN)
	case "down":
		err = database.RollbackLast(ctx, cfg.Database.DSN)
	case "status":
		err = database.MigrationStatus(ctx, cfg.Database.DSN)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("Migration failed", "command", cmd, "error", err)
	}
}
