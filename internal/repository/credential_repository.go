package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/internal/service"
	"github.com/fairyhunter13/slot-reservation-system/pkg/database"
)

// CredentialRepository stores login credentials for the identity service.
type CredentialRepository struct {
	pool PoolInterface
}

// NewCredentialRepository creates a new CredentialRepository with the given pool.
func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

// NewCredentialRepositoryWithPool creates a new CredentialRepository with a custom pool interface.
// This is primarily used for testing.
func NewCredentialRepositoryWithPool(pool PoolInterface) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

// Insert stores a credential.
// Returns service.ErrEmailInUse if a credential already exists for the email.
func (r *CredentialRepository) Insert(ctx context.Context, email, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO credentials (email, password_hash) VALUES ($1, $2)`, email, passwordHash)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return service.ErrEmailInUse
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// GetByEmail retrieves a credential.
// Returns nil, nil if none exists.
func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*model.Credential, error) {
	var cred model.Credential
	err := r.pool.QueryRow(ctx,
		`SELECT email, password_hash, created_at FROM credentials WHERE email = $1`, email,
	).Scan(&cred.Email, &cred.PasswordHash, &cred.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &cred, nil
}

// Delete removes a credential. Deleting a missing credential is not an error.
func (r *CredentialRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM credentials WHERE email = $1`, email); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// Rekey moves a credential to a new email within a transaction.
// A missing credential is left missing.
// Returns service.ErrEmailInUse if newEmail already has a credential.
func (r *CredentialRepository) Rekey(ctx context.Context, tx database.TxQuerier, oldEmail, newEmail string) error {
	_, err := tx.Exec(ctx,
		`UPDATE credentials SET email = $1 WHERE email = $2`, newEmail, oldEmail)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return service.ErrEmailInUse
		}
		return fmt.Errorf("rekey credential: %w", err)
	}
	return nil
}
