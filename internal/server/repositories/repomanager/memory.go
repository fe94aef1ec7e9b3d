package repomanager

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/plans"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/usage"
)

// InMemoryRepositoryManager keeps everything in process memory. Used for
// local runs and as the backend of service-level tests.
type InMemoryRepositoryManager struct {
	AccountsRepo      *accounts.MemoryRepository
	VerificationRepo  *tokens.MemoryRepository
	ResetRepo         *tokens.MemoryRepository
	PlansRepo         *plans.MemoryRepository
	SubscriptionsRepo *subscriptions.MemoryRepository
	UsageRepo         *usage.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		AccountsRepo:      accounts.NewMemoryRepository(),
		VerificationRepo:  tokens.NewMemoryRepository(),
		ResetRepo:         tokens.NewMemoryRepository(),
		PlansRepo:         plans.NewMemoryRepository(),
		SubscriptionsRepo: subscriptions.NewMemoryRepository(),
		UsageRepo:         usage.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Accounts() accounts.Repository { return m.AccountsRepo }

func (m *InMemoryRepositoryManager) Tokens(purpose models.TokenPurpose) tokens.Repository {
	if purpose == models.PurposeReset {
		return m.ResetRepo
	}
	return m.VerificationRepo
}

func (m *InMemoryRepositoryManager) Plans() plans.Repository { return m.PlansRepo }

func (m *InMemoryRepositoryManager) Subscriptions() subscriptions.Repository {
	return m.SubscriptionsRepo
}

func (m *InMemoryRepositoryManager) Usage() usage.Repository { return m.UsageRepo }

func (m *InMemoryRepositoryManager) Close(context.Context) error { return nil }
