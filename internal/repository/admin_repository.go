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

// AdminRepository provides data access for the admin directory.
type AdminRepository struct {
	pool PoolInterface
}

// NewAdminRepository creates a new AdminRepository with the given pool.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// NewAdminRepositoryWithPool creates a new AdminRepository with a custom pool interface.
// This is primarily used for testing.
func NewAdminRepositoryWithPool(pool PoolInterface) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func scanAdmin(row pgx.Row) (*model.Admin, error) {
	var admin model.Admin
	if err := row.Scan(&admin.Email, &admin.Name, &admin.Role, &admin.CreatedAt); err != nil {
		return nil, err
	}
	return &admin, nil
}

// Insert writes a directory record. An empty CreatedAt lets the database assign it.
// Returns service.ErrAdminExists if the email is already in the directory.
func (r *AdminRepository) Insert(ctx context.Context, tx database.TxQuerier, admin *model.Admin) error {
	role := admin.Role
	if role == "" {
		role = model.RoleAdmin
	}
	var createdAt any
	if !admin.CreatedAt.IsZero() {
		createdAt = admin.CreatedAt
	}

	err := tx.QueryRow(ctx,
		`INSERT INTO admins (email, name, role, created_at)
		VALUES ($1, $2, $3, COALESCE($4, NOW()))
		RETURNING role, created_at`,
		admin.Email, admin.Name, role, createdAt,
	).Scan(&admin.Role, &admin.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return service.ErrAdminExists
		}
		return fmt.Errorf("insert admin %s: %w", admin.Email, err)
	}
	return nil
}

// GetByEmail retrieves a directory record.
// Returns nil, nil if the email is not in the directory.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	admin, err := scanAdmin(r.pool.QueryRow(ctx,
		`SELECT email, name, role, created_at FROM admins WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get admin %s: %w", email, err)
	}
	return admin, nil
}

// GetForUpdate retrieves a directory record with a row lock.
// Returns service.ErrAdminNotFound if the email is not in the directory.
func (r *AdminRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, email string) (*model.Admin, error) {
	admin, err := scanAdmin(tx.QueryRow(ctx,
		`SELECT email, name, role, created_at FROM admins WHERE email = $1 FOR UPDATE`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrAdminNotFound
		}
		return nil, fmt.Errorf("get admin for update %s: %w", email, err)
	}
	return admin, nil
}

// List returns the directory ordered by name.
func (r *AdminRepository) List(ctx context.Context) ([]model.Admin, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT email, name, role, created_at FROM admins ORDER BY name, email`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	admins := []model.Admin{}
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, *admin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin rows: %w", err)
	}
	return admins, nil
}

// Count returns the number of directory records.
func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

// UpdateName changes a display name.
// Returns service.ErrAdminNotFound if the email is not in the directory.
func (r *AdminRepository) UpdateName(ctx context.Context, email, name string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE admins SET name = $1 WHERE email = $2`, name, email)
	if err != nil {
		return fmt.Errorf("rename admin %s: %w", email, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrAdminNotFound
	}
	return nil
}

// Delete removes a directory record and reports whether it existed.
func (r *AdminRepository) Delete(ctx context.Context, tx database.TxQuerier, email string) (bool, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM admins WHERE email = $1`, email)
	if err != nil {
		return false, fmt.Errorf("delete admin %s: %w", email, err)
	}
	return tag.RowsAffected() > 0, nil
}
