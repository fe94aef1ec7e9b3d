package tokens

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type MemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]models.Token
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]models.Token)}
}

func (r *MemoryRepository) Replace(_ context.Context, token *models.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token.Email] = *token
	return nil
}

func (r *MemoryRepository) Consume(_ context.Context, email, value string) (*models.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[email]
	if !ok || t.Value != value {
		return nil, common.ErrTokenNotFound
	}
	delete(r.tokens, email)
	return &t, nil
}
