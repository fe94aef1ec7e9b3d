// Package services holds the three ledgers the orchestrator composes:
// credentials, one-time tokens and entitlements. None of them calls another.
package services

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/cryptox"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
)

// CredentialService owns account records and password digests.
type CredentialService struct {
	accounts accounts.Repository
	clock    timex.Clock
}

func NewCredentialService(repo accounts.Repository, clock timex.Clock) *CredentialService {
	return &CredentialService{accounts: repo, clock: clock}
}

// CreateAccount stores a new unverified account stamped with the service
// clock, which orders identifier lookups. A taken email or phone
// surfaces as common.ErrDuplicateIdentity from the storage constraint.
func (s *CredentialService) CreateAccount(ctx context.Context, name, email, phone, password string) (*models.Account, error) {
	salt, digest := cryptox.HashPassword([]byte(password))

	account := &models.Account{
		FullName:     name,
		Email:        email,
		Phone:        phone,
		Salt:         salt,
		PasswordHash: digest,
		Status:       models.AccountActive,
		CreatedAt:    s.clock.Now().UTC(),
	}

	return s.accounts.Create(ctx, account)
}

// FindByIdentifier resolves an email or phone to the oldest matching account.
func (s *CredentialService) FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	return s.accounts.FindByIdentifier(ctx, identifier)
}

func (s *CredentialService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *CredentialService) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.accounts.GetByEmail(ctx, email)
}

func (s *CredentialService) VerifyPassword(plaintext string, salt, digest []byte) bool {
	return cryptox.VerifyPassword([]byte(plaintext), salt, digest)
}

// MarkVerified reports false when no account has that email.
func (s *CredentialService) MarkVerified(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	return s.accounts.SetVerified(ctx, email)
}

// ReplacePassword stores a fresh salt and digest for newPassword.
func (s *CredentialService) ReplacePassword(ctx context.Context, email, newPassword string) (bool, error) {
	if email == "" {
		return false, nil
	}
	salt, digest := cryptox.HashPassword([]byte(newPassword))
	defer common.WipeByteArray(digest)
	return s.accounts.UpdatePassword(ctx, email, salt, digest)
}
