package accounts

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

const selectColumns = `id, full_name, email, phone, salt, password_hash, verified, status, created_at`

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	prepare(account)

	query :=
		`INSERT INTO accounts (id, full_name, email, phone, salt, password_hash, verified, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.FullName, nullIfEmpty(account.Email), nullIfEmpty(account.Phone),
		account.Salt, account.PasswordHash, account.Verified, string(account.Status), account.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	if identifier == "" {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + selectColumns + ` FROM accounts
		 WHERE email = $1 OR phone = $1
		 ORDER BY created_at
		 LIMIT 1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, identifier))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + selectColumns + ` FROM accounts WHERE id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if email == "" {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + selectColumns + ` FROM accounts WHERE email = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) SetVerified(ctx context.Context, email string) (bool, error) {
	query := `UPDATE accounts SET verified = TRUE WHERE email = $1`

	res, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, email string, salt, hash []byte) (bool, error) {
	query := `UPDATE accounts SET salt = $2, password_hash = $3 WHERE email = $1`

	res, err := r.db.ExecContext(ctx, query, email, salt, hash)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Account, error) {
	var (
		a            models.Account
		email, phone sql.NullString
		status       string
	)

	err := row.Scan(&a.ID, &a.FullName, &email, &phone, &a.Salt, &a.PasswordHash, &a.Verified, &status, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.Email = email.String
	a.Phone = phone.String
	a.Status = models.AccountStatus(status)
	return &a, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// prepare fills the server-assigned fields of a new account.
func prepare(a *models.Account) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = models.AccountActive
	}
}
