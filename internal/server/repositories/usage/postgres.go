package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const incrementQuery = `INSERT INTO usage_records (account_id, day, current_usage)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (account_id, day) DO UPDATE SET current_usage = usage_records.current_usage + 1`

func (r *PostgresRepository) Increment(ctx context.Context, accountID string, day time.Time) error {
	if _, err := r.db.ExecContext(ctx, incrementQuery, accountID, day); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RecordActivity(ctx context.Context, accountID string, day time.Time, activity models.Activity) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, incrementQuery, accountID, day); err != nil {
			return err
		}

		insert :=
			`INSERT INTO usage_activities (account_id, day, feature, occurred_at)
			 VALUES ($1, $2, $3, $4)`
		if _, err := tx.ExecContext(ctx, insert, accountID, day, activity.Feature, activity.Timestamp); err != nil {
			return err
		}

		trim :=
			`DELETE FROM usage_activities
			 WHERE account_id = $1 AND day = $2
			   AND id NOT IN (
			     SELECT id FROM usage_activities
			     WHERE account_id = $1 AND day = $2
			     ORDER BY id DESC
			     LIMIT $3)`
		_, err := tx.ExecContext(ctx, trim, accountID, day, common.MaxRecentActivities)
		return err
	})

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, accountID string, day time.Time) (*models.UsageRecord, error) {
	if _, err := uuid.Parse(accountID); err != nil {
		return nil, common.ErrorNotFound
	}

	rec := &models.UsageRecord{AccountID: accountID, Day: timex.DayKey(day)}

	query := `SELECT current_usage FROM usage_records WHERE account_id = $1 AND day = $2`
	if err := r.db.QueryRowContext(ctx, query, accountID, day).Scan(&rec.CurrentUsage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	activities :=
		`SELECT feature, occurred_at FROM usage_activities
		 WHERE account_id = $1 AND day = $2
		 ORDER BY id DESC
		 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, activities, accountID, day, common.MaxRecentActivities)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.Feature, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		rec.RecentActivities = append(rec.RecentActivities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}
