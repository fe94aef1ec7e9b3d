// Package plans stores the plan catalog.
package plans

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type Repository interface {
	// SeedIfEmpty inserts catalog when no plan is stored yet and reports
	// whether it did. Plans inserted concurrently by another seeder are
	// skipped, not reported as errors.
	SeedIfEmpty(ctx context.Context, catalog []models.Plan) (bool, error)
	// Get returns common.ErrorNotFound for an unknown plan id.
	Get(ctx context.Context, planID string) (*models.Plan, error)
	// List returns every plan ordered by ascending price.
	List(ctx context.Context) ([]models.Plan, error)
}
