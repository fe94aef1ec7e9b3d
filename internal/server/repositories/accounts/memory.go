package accounts

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in insertion order under one lock.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts []*models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(_ context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if (account.Email != "" && a.Email == account.Email) || (account.Phone != "" && a.Phone == account.Phone) {
			return nil, common.ErrDuplicateIdentity
		}
	}

	prepare(account)
	r.accounts = append(r.accounts, clone(account))
	return account, nil
}

func (r *MemoryRepository) FindByIdentifier(_ context.Context, identifier string) (*models.Account, error) {
	if identifier == "" {
		return nil, common.ErrorNotFound
	}
	return r.find(func(a *models.Account) bool { return a.Email == identifier || a.Phone == identifier })
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	return r.find(func(a *models.Account) bool { return a.ID == id })
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	if email == "" {
		return nil, common.ErrorNotFound
	}
	return r.find(func(a *models.Account) bool { return a.Email == email })
}

func (r *MemoryRepository) SetVerified(_ context.Context, email string) (bool, error) {
	return r.update(email, func(a *models.Account) { a.Verified = true }), nil
}

func (r *MemoryRepository) UpdatePassword(_ context.Context, email string, salt, hash []byte) (bool, error) {
	return r.update(email, func(a *models.Account) {
		a.Salt = slices.Clone(salt)
		a.PasswordHash = slices.Clone(hash)
	}), nil
}

func (r *MemoryRepository) find(match func(*models.Account) bool) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if match(a) {
			return clone(a), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) update(email string, fn func(*models.Account)) bool {
	if email == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if a.Email == email {
			fn(a)
			return true
		}
	}
	return false
}

func clone(a *models.Account) *models.Account {
	c := *a
	c.Salt = slices.Clone(a.Salt)
	c.PasswordHash = slices.Clone(a.PasswordHash)
	return &c
}
