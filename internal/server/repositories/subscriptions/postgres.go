package subscriptions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, accountID string) (*models.Subscription, error) {
	if _, err := uuid.Parse(accountID); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT account_id, plan_id FROM subscriptions WHERE account_id = $1`

	s := &models.Subscription{}
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&s.AccountID, &s.PlanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, accountID, planID string) error {
	query :=
		`INSERT INTO subscriptions (account_id, plan_id)
		 VALUES ($1, $2)
		 ON CONFLICT (account_id) DO UPDATE SET plan_id = EXCLUDED.plan_id, updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, accountID, planID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
