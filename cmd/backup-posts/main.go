// Command backup-posts writes a snapshot of the newest posts to the backup
// directory and deletes snapshots older than the retention period.
package main

import (
	"context"
	"os"

	"github.com/isdelr/cms-be/internal/backup"
	"github.com/isdelr/cms-be/internal/config"
	"github.com/isdelr/cms-be/internal/database"
	"github.com/isdelr/cms-be/internal/logger"
	"github.com/isdelr/cms-be/internal/models"
	"github.com/isdelr/cms-be/internal/store"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logger.InitWithWriter(os.Stdout, "info")
		log.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}
	logger.InitWithWriter(os.Stdout, cfg.LogLevel)

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize database")
		return 1
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Error().Err(err).Msg("Failed to apply database migrations")
		return 1
	}

	job := backup.NewJob(store.NewSQLiteStore(db), backup.Options{
		Table:      models.PostsTable,
		Dir:        cfg.BackupDir,
		MaxRecords: cfg.BackupMaxRecords,
		Retention:  cfg.BackupRetention,
	})

	report, err := job.Run(context.Background())
	if err != nil {
		return 1
	}
	log.Info().
		Int("post_count", report.Snapshot.Count).
		Str("path", report.Snapshot.Path).
		Int("deleted", report.Sweep.Deleted).
		Int("failed", report.Sweep.Failed).
		Msg("Backup run finished")
	return 0
}
