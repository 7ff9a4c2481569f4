// Command create-tables provisions the CMS tables in the document store.
package main

import (
	"context"
	"os"

	"github.com/isdelr/cms-be/internal/config"
	"github.com/isdelr/cms-be/internal/database"
	"github.com/isdelr/cms-be/internal/logger"
	"github.com/isdelr/cms-be/internal/models"
	"github.com/isdelr/cms-be/internal/provision"
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

	ctx := context.Background()
	st := store.NewSQLiteStore(db)
	outcomes, err := provision.Run(ctx, st, models.Tables())
	created := 0
	for _, o := range outcomes {
		if o.Created {
			created++
		}
	}
	if err != nil {
		log.Error().Err(err).Int("created", created).Msg("Some tables could not be created")
		return 1
	}

	tables, err := st.ListTables(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tables")
		return 1
	}
	log.Info().Int("created", created).Strs("tables", tables).Msg("All tables are ready")
	return 0
}
