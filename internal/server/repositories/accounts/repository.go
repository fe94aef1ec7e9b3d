// Package accounts stores account credential records.
//
// Email and phone uniqueness is enforced by the storage itself (UNIQUE
// columns, unique sparse indexes, or the memory store's lock); a violation is
// reported as common.ErrDuplicateIdentity.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts a new account, assigning ID when unset. CreatedAt is
	// the caller's.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	// FindByIdentifier matches identifier against email or phone and returns
	// the oldest matching account. An empty identifier never matches.
	FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// SetVerified flips the verified flag; false means no such email.
	SetVerified(ctx context.Context, email string) (bool, error)
	// UpdatePassword replaces salt and digest; false means no such email.
	UpdatePassword(ctx context.Context, email string, salt, hash []byte) (bool, error)
}
