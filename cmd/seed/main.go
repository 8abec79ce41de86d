package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"jobboard_backend/database"
	"jobboard_backend/internal/config"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()

	companies := flag.Int("companies", defaults.Companies, "number of companies")
	employers := flag.Int("employers", defaults.Employers, "number of employer accounts")
	candidates := flag.Int("candidates", defaults.Candidates, "number of candidate accounts")
	jobs := flag.Int("jobs", defaults.Jobs, "number of job postings")
	minApps := flag.Int("min-applications", defaults.MinApplications, "minimum applications per candidate")
	maxApps := flag.Int("max-applications", defaults.MaxApplications, "maximum applications per candidate")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.InitWithWriter(cfg.Server.Env, cfg.Log.Level, os.Stdout)

	dbOpts := database.Options{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN}
	db, err := database.Open(dbOpts)
	if err != nil {
		logger.Fatal("Failed to connect", "error", err)
	}
	defer database.Close(db)

	ctx := context.Background()
	if err := database.Migrate(ctx, db, dbOpts); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	res, err := seed.New(*randSeed).Run(ctx, db, seed.Options{
		Companies:       *companies,
		Employers:       *employers,
		Candidates:      *candidates,
		Jobs:            *jobs,
		MinApplications: *minApps,
		MaxApplications: *maxApps,
	})
	if err != nil {
		logger.Fatal("Seeding failed", "error", err)
	}

	fmt.Printf("Seeded %d companies, %d employers, %d candidates, %d jobs, %d applications (password %q)\n",
		res.Companies, res.Employers, res.Candidates, res.Jobs, res.Applications, seed.DefaultPassword)
}
