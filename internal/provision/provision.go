// Package provision creates the document store tables the application needs.
package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/isdelr/cms-be/internal/store"
	"github.com/rs/zerolog/log"
)

// Outcome reports what happened to one table.
type Outcome struct {
	Table   string `json:"table"`
	Created bool   `json:"created"`
}

// Run creates every table in specs. Tables that already exist are left
// untouched; other failures are collected and do not stop the remaining tables.
func Run(ctx context.Context, st store.Store, specs []store.TableSpec) ([]Outcome, error) {
	var outcomes []Outcome
	var errs []error
	for _, spec := range specs {
		err := st.CreateTable(ctx, spec)
		switch {
		case err == nil:
			log.Info().Str("table", spec.Name).Strs("indexes", spec.Indexes).Msg("Created table")
			outcomes = append(outcomes, Outcome{Table: spec.Name, Created: true})
		case errors.Is(err, store.ErrTableExists):
			log.Info().Str("table", spec.Name).Msg("Table already exists")
			outcomes = append(outcomes, Outcome{Table: spec.Name})
		default:
			log.Error().Err(err).Str("table", spec.Name).Msg("Error creating table")
			errs = append(errs, fmt.Errorf("creating %s: %w", spec.Name, err))
		}
	}
	return outcomes, errors.Join(errs...)
}
