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
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoRepositoryManager struct {
	client *mongo.Client

	accounts      *accounts.MongoRepository
	verification  *tokens.MongoRepository
	reset         *tokens.MongoRepository
	plans         *plans.MongoRepository
	subscriptions *subscriptions.MongoRepository
	usage         *usage.MongoRepository
}

func NewMongoRepositoryManager(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}

	db := client.Database(database)
	return &MongoRepositoryManager{
		client:        client,
		accounts:      accounts.NewMongoRepository(db),
		verification:  tokens.NewMongoRepository(db, models.PurposeVerification),
		reset:         tokens.NewMongoRepository(db, models.PurposeReset),
		plans:         plans.NewMongoRepository(db),
		subscriptions: subscriptions.NewMongoRepository(db),
		usage:         usage.NewMongoRepository(db),
	}, nil
}

// RunMigrations creates the unique indexes the repositories rely on.
// Token and subscription collections are keyed by _id and need none.
func (m *MongoRepositoryManager) RunMigrations(ctx context.Context) error {
	if err := m.accounts.EnsureIndexes(ctx); err != nil {
		return err
	}
	return m.usage.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *MongoRepositoryManager) Tokens(purpose models.TokenPurpose) tokens.Repository {
	if purpose == models.PurposeReset {
		return m.reset
	}
	return m.verification
}

func (m *MongoRepositoryManager) Plans() plans.Repository { return m.plans }

func (m *MongoRepositoryManager) Subscriptions() subscriptions.Repository { return m.subscriptions }

func (m *MongoRepositoryManager) Usage() usage.Repository { return m.usage }

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
