package plans

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	plans map[string]models.Plan
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{plans: make(map[string]models.Plan)}
}

func (r *MemoryRepository) SeedIfEmpty(_ context.Context, catalog []models.Plan) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.plans) > 0 {
		return false, nil
	}
	for _, p := range catalog {
		r.plans[p.PlanID] = clone(p)
	}
	return true, nil
}

// Put stores or overwrites a single plan.
func (r *MemoryRepository) Put(p models.Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[p.PlanID] = clone(p)
}

// Delete removes a plan from the catalog.
func (r *MemoryRepository) Delete(planID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.plans, planID)
}

func (r *MemoryRepository) Get(_ context.Context, planID string) (*models.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[planID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := clone(p)
	return &c, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]models.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, clone(p))
	}
	slices.SortFunc(out, func(a, b models.Plan) int {
		return cmp.Or(cmp.Compare(a.Price, b.Price), cmp.Compare(a.PlanID, b.PlanID))
	})
	return out, nil
}

func clone(p models.Plan) models.Plan {
	p.Features = slices.Clone(p.Features)
	return p
}
