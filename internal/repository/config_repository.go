package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/pkg/database"
)

// ConfigRepository provides data access for the single challenge_config row.
type ConfigRepository struct {
	pool PoolInterface
}

// NewConfigRepository creates a new ConfigRepository with the given pool.
func NewConfigRepository(pool *pgxpool.Pool) *ConfigRepository {
	return &ConfigRepository{pool: pool}
}

// NewConfigRepositoryWithPool creates a new ConfigRepository with a custom pool interface.
// This is primarily used for testing.
func NewConfigRepositoryWithPool(pool PoolInterface) *ConfigRepository {
	return &ConfigRepository{pool: pool}
}

const configColumns = `challenge_size, unit_amount::text, currency,
	bank_name, account_name, account_number, national_id, contact_phone, updated_at`

func scanConfig(row pgx.Row) (*model.ChallengeConfig, error) {
	var cfg model.ChallengeConfig
	var unitAmount string
	if err := row.Scan(
		&cfg.ChallengeSize,
		&unitAmount,
		&cfg.Currency,
		&cfg.Deposit.BankName,
		&cfg.Deposit.AccountName,
		&cfg.Deposit.AccountNumber,
		&cfg.Deposit.NationalID,
		&cfg.Deposit.ContactPhone,
		&cfg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(unitAmount)
	if err != nil {
		return nil, fmt.Errorf("parse unit amount %q: %w", unitAmount, err)
	}
	cfg.UnitAmount = amount
	return &cfg, nil
}

// Get retrieves the configuration row.
// Returns nil, nil if it has not been created yet.
func (r *ConfigRepository) Get(ctx context.Context) (*model.ChallengeConfig, error) {
	cfg, err := scanConfig(r.pool.QueryRow(ctx,
		`SELECT `+configColumns+` FROM challenge_config WHERE id = 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get config: %w", err)
	}
	return cfg, nil
}

// GetForShare reads the challenge size inside a transaction and holds a
// shared lock so the size cannot change until the transaction ends.
// Returns nil, nil if the row does not exist.
func (r *ConfigRepository) GetForShare(ctx context.Context, tx database.TxQuerier) (*model.ChallengeConfig, error) {
	cfg, err := scanConfig(tx.QueryRow(ctx,
		`SELECT `+configColumns+` FROM challenge_config WHERE id = 1 FOR SHARE`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get config for share: %w", err)
	}
	return cfg, nil
}

// InsertDefault creates the configuration row from defaults unless it already exists.
func (r *ConfigRepository) InsertDefault(ctx context.Context, defaults *model.ChallengeConfig) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO challenge_config
			(id, challenge_size, unit_amount, currency,
			 bank_name, account_name, account_number, national_id, contact_phone)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		defaults.ChallengeSize,
		defaults.UnitAmount.String(),
		defaults.Currency,
		defaults.Deposit.BankName,
		defaults.Deposit.AccountName,
		defaults.Deposit.AccountNumber,
		defaults.Deposit.NationalID,
		defaults.Deposit.ContactPhone,
	)
	if err != nil {
		return fmt.Errorf("insert default config: %w", err)
	}
	return nil
}

// UpdateChallengeSize sets the challenge size and reports whether the row existed.
func (r *ConfigRepository) UpdateChallengeSize(ctx context.Context, size int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE challenge_config SET challenge_size = $1, updated_at = NOW() WHERE id = 1`, size)
	if err != nil {
		return false, fmt.Errorf("update challenge size: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateDeposit writes only the fields set in patch and reports whether the row existed.
func (r *ConfigRepository) UpdateDeposit(ctx context.Context, patch model.DepositPatch) (bool, error) {
	var sets []string
	var args []any
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("bank_name", patch.BankName)
	add("account_name", patch.AccountName)
	add("account_number", patch.AccountNumber)
	add("national_id", patch.NationalID)
	add("contact_phone", patch.ContactPhone)
	if len(sets) == 0 {
		return true, nil
	}

	query := `UPDATE challenge_config SET ` + strings.Join(sets, ", ") + `, updated_at = NOW() WHERE id = 1`
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update deposit: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
