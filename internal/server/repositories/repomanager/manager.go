// Package repomanager opens a storage backend and vends its repositories.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/plans"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/usage"
)

type RepositoryManager interface {
	// RunMigrations brings the schema (tables or indexes) up to date.
	RunMigrations(ctx context.Context) error
	Accounts() accounts.Repository
	Tokens(purpose models.TokenPurpose) tokens.Repository
	Plans() plans.Repository
	Subscriptions() subscriptions.Repository
	Usage() usage.Repository
	Close(ctx context.Context) error
}

const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string
	DatabaseDSN   string
	MongoURI      string
	MongoDatabase string
}

// Open connects to the configured backend.
func Open(ctx context.Context, opts Options) (RepositoryManager, error) {
	switch opts.Backend {
	case BackendPostgres, "":
		return NewPostgresRepositoryManager(ctx, opts.DatabaseDSN)
	case BackendMongo:
		return NewMongoRepositoryManager(ctx, opts.MongoURI, opts.MongoDatabase)
	case BackendMemory:
		return NewInMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
