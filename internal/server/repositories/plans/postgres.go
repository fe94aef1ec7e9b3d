package plans

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) SeedIfEmpty(ctx context.Context, catalog []models.Plan) (bool, error) {
	seeded := false

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var n int64
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans`).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		query :=
			`INSERT INTO plans (plan_id, name, price, currency, usage_limit, features)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (plan_id) DO NOTHING`

		for _, p := range catalog {
			features, err := json.Marshal(p.Features)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, p.PlanID, p.Name, p.Price, p.Currency, p.UsageLimit, features); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})

	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return seeded, nil
}

const selectColumns = `plan_id, name, price, currency, usage_limit, features`

func (r *PostgresRepository) Get(ctx context.Context, planID string) (*models.Plan, error) {
	query := `SELECT ` + selectColumns + ` FROM plans WHERE plan_id = $1`

	p, err := scanPlan(r.db.QueryRowContext(ctx, query, planID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Plan, error) {
	query := `SELECT ` + selectColumns + ` FROM plans ORDER BY price, plan_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(s scanner) (*models.Plan, error) {
	var (
		p        models.Plan
		features []byte
	)
	if err := s.Scan(&p.PlanID, &p.Name, &p.Price, &p.Currency, &p.UsageLimit, &features); err != nil {
		return nil, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("plan %s features: %w", p.PlanID, err)
		}
	}
	return &p, nil
}
