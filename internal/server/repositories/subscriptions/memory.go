package subscriptions

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type MemoryRepository struct {
	mu   sync.RWMutex
	subs map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{subs: make(map[string]string)}
}

func (r *MemoryRepository) Get(_ context.Context, accountID string) (*models.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	planID, ok := r.subs[accountID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Subscription{AccountID: accountID, PlanID: planID}, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, accountID, planID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs[accountID] = planID
	return nil
}
