package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/internal/service"
	"github.com/fairyhunter13/slot-reservation-system/pkg/database"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SlotRepository provides data access for slots using pgx.
type SlotRepository struct {
	pool PoolInterface
}

// NewSlotRepository creates a new SlotRepository with the given pool.
func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

// NewSlotRepositoryWithPool creates a new SlotRepository with a custom pool interface.
// This is primarily used for testing.
func NewSlotRepositoryWithPool(pool PoolInterface) *SlotRepository {
	return &SlotRepository{pool: pool}
}

const slotColumns = `number, claimant_name, claimant_contact, status, created_at`

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	var status string
	if err := row.Scan(
		&slot.Number,
		&slot.ClaimantName,
		&slot.ClaimantContact,
		&status,
		&slot.CreatedAt,
	); err != nil {
		return nil, err
	}
	slot.ID = model.SlotID(slot.Number)
	slot.Status = model.SlotStatus(status)
	return &slot, nil
}

// List returns every slot ordered by number.
// On success, returns an empty slice (not nil) when no slots exist.
func (r *SlotRepository) List(ctx context.Context) ([]model.Slot, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+slotColumns+` FROM slots ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	slots := []model.Slot{}
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, *slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slot rows: %w", err)
	}
	return slots, nil
}

// GetByNumber retrieves a slot by number.
// Returns nil, nil if no slot exists (service layer handles this).
func (r *SlotRepository) GetByNumber(ctx context.Context, number int) (*model.Slot, error) {
	slot, err := scanSlot(r.pool.QueryRow(ctx,
		`SELECT `+slotColumns+` FROM slots WHERE number = $1`, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot %d: %w", number, err)
	}
	return slot, nil
}

// GetForUpdate retrieves a slot with a row lock (SELECT FOR UPDATE).
// Returns service.ErrSlotNotFound if no slot exists.
func (r *SlotRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, number int) (*model.Slot, error) {
	slot, err := scanSlot(tx.QueryRow(ctx,
		`SELECT `+slotColumns+` FROM slots WHERE number = $1 FOR UPDATE`, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot for update %d: %w", number, err)
	}
	return slot, nil
}

// InsertIfAbsent writes slot unless its number already has one.
// Sets slot.ID and slot.CreatedAt on success.
// Returns service.ErrAlreadyTaken when the number is held, including when a
// concurrent transaction inserted it first.
func (r *SlotRepository) InsertIfAbsent(ctx context.Context, tx database.TxQuerier, slot *model.Slot) error {
	query := `INSERT INTO slots (number, claimant_name, claimant_contact, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (number) DO NOTHING
		RETURNING created_at`

	err := tx.QueryRow(ctx, query,
		slot.Number, slot.ClaimantName, slot.ClaimantContact, string(slot.Status),
	).Scan(&slot.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.IsUniqueViolation(err) {
			return service.ErrAlreadyTaken
		}
		return fmt.Errorf("insert slot %d: %w", slot.Number, err)
	}
	slot.ID = model.SlotID(slot.Number)
	return nil
}

// Confirm sets a slot's status to confirmed. Confirming an already confirmed
// slot rewrites the same value.
// Returns service.ErrSlotNotFound if no slot exists.
func (r *SlotRepository) Confirm(ctx context.Context, number int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE slots SET status = 'confirmed' WHERE number = $1`, number)
	if err != nil {
		return fmt.Errorf("confirm slot %d: %w", number, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrSlotNotFound
	}
	return nil
}

// Delete removes a slot within a transaction after it was locked.
func (r *SlotRepository) Delete(ctx context.Context, tx database.TxQuerier, number int) error {
	if _, err := tx.Exec(ctx, `DELETE FROM slots WHERE number = $1`, number); err != nil {
		return fmt.Errorf("delete slot %d: %w", number, err)
	}
	return nil
}

// DeleteAll removes every slot regardless of status and returns how many were removed.
func (r *SlotRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM slots`)
	if err != nil {
		return 0, fmt.Errorf("delete all slots: %w", err)
	}
	return tag.RowsAffected(), nil
}
