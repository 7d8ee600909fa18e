package main

import (
	"flag"

	"github.com/trendscanner-api/internal/config"
	"github.com/trendscanner-api/internal/database"
	"github.com/trendscanner-api/pkg/logger"
)

func main() {
	down := flag.Bool("down", false, "Roll back the last migration")
	version := flag.Uint("version", 0, "Migrate to a specific version")
	status := flag.Bool("status", false, "Print the applied schema version and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.Bootstrap()
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	switch {
	case *status:
		var (
			current uint
			dirty   bool
		)
		current, dirty, err = db.MigrationStatus()
		if err == nil {
			log.Info().Uint("version", current).Bool("dirty", dirty).Msg("Migration status")
		}
	case *down:
		err = db.MigrateDown()
	case *version > 0:
		err = db.MigrateToVersion(*version)
	default:
		err = db.RunMigrations()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
