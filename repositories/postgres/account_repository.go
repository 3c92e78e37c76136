package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/outreachworks/crm-bridge/models"
	"github.com/outreachworks/crm-bridge/repositories"
	"go.uber.org/zap"
)

// AccountRepository implements repositories.AccountRepository
type AccountRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB, logger *zap.Logger) repositories.AccountRepository {
	return &AccountRepository{db: db, logger: logger}
}

// Create stores a freshly installed tenant account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, slug, access_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Slug,
		account.AccessToken,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	r.logger.Info("account created", zap.String("slug", account.Slug))
	return nil
}

// GetBySlug retrieves the account for a tenant slug. Slug uniqueness is by
// convention, not a constraint; the first match wins.
func (r *AccountRepository) GetBySlug(ctx context.Context, slug string) (*models.Account, error) {
	query := `
		SELECT id, slug, access_token, created_at, updated_at
		FROM accounts
		WHERE slug = $1
		ORDER BY created_at ASC
		LIMIT 1
	`

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&account.ID,
		&account.Slug,
		&account.AccessToken,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}
