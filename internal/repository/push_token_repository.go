package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
)

// PushTokenRepository stores device tokens keyed by the token itself.
type PushTokenRepository struct {
	pool PoolInterface
}

// NewPushTokenRepository creates a new PushTokenRepository with the given pool.
func NewPushTokenRepository(pool *pgxpool.Pool) *PushTokenRepository {
	return &PushTokenRepository{pool: pool}
}

// NewPushTokenRepositoryWithPool creates a new PushTokenRepository with a custom pool interface.
// This is primarily used for testing.
func NewPushTokenRepositoryWithPool(pool PoolInterface) *PushTokenRepository {
	return &PushTokenRepository{pool: pool}
}

// Upsert stores a device, refreshing platform and updated_at when it is already known.
func (r *PushTokenRepository) Upsert(ctx context.Context, device *model.PushDevice) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO push_tokens (id, token, platform, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET platform = EXCLUDED.platform, updated_at = NOW()
		RETURNING updated_at`,
		device.ID, device.Token, device.Platform,
	).Scan(&device.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert push token: %w", err)
	}
	return nil
}

// ListTokens returns every registered token.
// On success, returns an empty slice (not nil) when none are registered.
func (r *PushTokenRepository) ListTokens(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT token FROM push_tokens WHERE token <> '' ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("list push tokens: %w", err)
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan push token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate push token rows: %w", err)
	}
	return tokens, nil
}
