package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/plans"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/usage"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends Postgres repositories sharing one pool.
type PostgresRepositoryManager struct {
	db *sql.DB

	accounts      *accounts.PostgresRepository
	verification  *tokens.PostgresRepository
	reset         *tokens.PostgresRepository
	plans         *plans.PostgresRepository
	subscriptions *subscriptions.PostgresRepository
	usage         *usage.PostgresRepository
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// NewPostgresRepositoryManager opens a pgx-backed pool and checks it.
func NewPostgresRepositoryManager(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return NewPostgresRepositoryManagerWithDB(db), nil
}

// NewPostgresRepositoryManagerWithDB wraps an already open pool.
func NewPostgresRepositoryManagerWithDB(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{
		db:            db,
		accounts:      accounts.NewPostgresRepository(db),
		verification:  tokens.NewPostgresRepository(db, models.PurposeVerification),
		reset:         tokens.NewPostgresRepository(db, models.PurposeReset),
		plans:         plans.NewPostgresRepository(db),
		subscriptions: subscriptions.NewPostgresRepository(db),
		usage:         usage.NewPostgresRepository(db),
	}
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

func (m *PostgresRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *PostgresRepositoryManager) Tokens(purpose models.TokenPurpose) tokens.Repository {
	if purpose == models.PurposeReset {
		return m.reset
	}
	return m.verification
}

func (m *PostgresRepositoryManager) Plans() plans.Repository { return m.plans }

func (m *PostgresRepositoryManager) Subscriptions() subscriptions.Repository { return m.subscriptions }

func (m *PostgresRepositoryManager) Usage() usage.Repository { return m.usage }

func (m *PostgresRepositoryManager) Close(context.Context) error {
	return m.db.Close()
}
