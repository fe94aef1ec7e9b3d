package tokens

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type PostgresRepository struct {
	db    *sql.DB
	table string
}

// NewPostgresRepository binds the repository to the table for purpose.
// It panics on an unknown purpose.
func NewPostgresRepository(db *sql.DB, purpose models.TokenPurpose) *PostgresRepository {
	return &PostgresRepository{db: db, table: mustTableName(purpose)}
}

// Replace is a single upsert on the email key; concurrent issuers serialize
// on the row and the last one wins.
func (r *PostgresRepository) Replace(ctx context.Context, token *models.Token) error {
	query := `INSERT INTO ` + r.table + ` (email, token, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at`

	if _, err := r.db.ExecContext(ctx, query, token.Email, token.Value, token.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Consume is a single statement: rows are deleted only when a matching row
// exists, so two concurrent consumers of one token cannot both succeed.
func (r *PostgresRepository) Consume(ctx context.Context, email, value string) (*models.Token, error) {
	query := `DELETE FROM ` + r.table + `
		 WHERE email = $1
		   AND EXISTS (SELECT 1 FROM ` + r.table + ` WHERE email = $1 AND token = $2)
		 RETURNING token, expires_at`

	rows, err := r.db.QueryContext(ctx, query, email, value)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var matched *models.Token
	for rows.Next() {
		t := models.Token{Email: email}
		if err := rows.Scan(&t.Value, &t.ExpiresAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if t.Value == value {
			matched = &t
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if matched == nil {
		return nil, common.ErrTokenNotFound
	}
	return matched, nil
}
