package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/pkg/database"
)

// AdminRepositoryInterface defines the interface for admin directory data access.
type AdminRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, admin *model.Admin) error
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, email string) (*model.Admin, error)
	List(ctx context.Context) ([]model.Admin, error)
	Count(ctx context.Context) (int, error)
	UpdateName(ctx context.Context, email, name string) error
	Delete(ctx context.Context, tx database.TxQuerier, email string) (bool, error)
}

// AdminService manages the admin directory.
type AdminService struct {
	pool   TxBeginner
	admins AdminRepositoryInterface
	creds  CredentialRepositoryInterface
	auth   *AuthService
}

// NewAdminService creates a new AdminService with the given pool and dependencies.
func NewAdminService(pool *pgxpool.Pool, admins AdminRepositoryInterface, creds CredentialRepositoryInterface, auth *AuthService) *AdminService {
	return NewAdminServiceWithTxBeginner(pool, admins, creds, auth)
}

// NewAdminServiceWithTxBeginner creates an AdminService with a custom TxBeginner.
// Primarily used for testing.
func NewAdminServiceWithTxBeginner(pool TxBeginner, admins AdminRepositoryInterface, creds CredentialRepositoryInterface, auth *AuthService) *AdminService {
	return &AdminService{pool: pool, admins: admins, creds: creds, auth: auth}
}

// Create provisions a credential and then the directory record. If the
// directory write fails the credential is deleted again.
func (s *AdminService) Create(ctx context.Context, req *model.CreateAdminRequest) (*model.Admin, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	admin := &model.Admin{
		Email: NormalizeEmail(req.Email),
		Name:  strings.TrimSpace(req.Name),
		Role:  model.RoleAdmin,
	}
	if admin.Name == "" {
		return nil, ErrInvalidRequest
	}

	if err := s.auth.CreateCredential(ctx, admin.Email, req.Password); err != nil {
		return nil, err
	}

	if err := s.insert(ctx, admin); err != nil {
		if cerr := s.auth.DeleteCredential(ctx, admin.Email); cerr != nil {
			log.Error().
				Err(cerr).
				AnErr("cause", err).
				Str("email", admin.Email).
				Msg("failed to remove credential after directory write failed")
			return nil, fmt.Errorf("create admin: %w (credential cleanup failed: %w)", err, cerr)
		}
		return nil, err
	}

	log.Info().Str("email", admin.Email).Msg("admin created")
	return admin, nil
}

func (s *AdminService) insert(ctx context.Context, admin *model.Admin) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := s.admins.Insert(ctx, tx, admin); err != nil {
		if errors.Is(err, ErrAdminExists) {
			return ErrAdminExists
		}
		return storeErr("insert admin", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit", err)
	}
	return nil
}

// List returns the directory.
func (s *AdminService) List(ctx context.Context) ([]model.Admin, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, storeErr("list admins", err)
	}
	return admins, nil
}

// Get returns the directory record for email.
// Returns ErrAdminNotFound if none exists.
func (s *AdminService) Get(ctx context.Context, email string) (*model.Admin, error) {
	admin, err := s.admins.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, storeErr("get admin", err)
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}
	return admin, nil
}

// IsMember reports whether email has a directory record.
func (s *AdminService) IsMember(ctx context.Context, email string) (bool, error) {
	_, err := s.Get(ctx, email)
	if errors.Is(err, ErrAdminNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Rename changes the display name of email.
// Returns ErrAdminNotFound if email is not in the directory.
func (s *AdminService) Rename(ctx context.Context, email, name string) (*model.Admin, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidRequest
	}
	if err := s.admins.UpdateName(ctx, email, name); err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, storeErr("rename admin", err)
	}

	log.Info().Str("email", email).Msg("admin renamed")
	return s.Get(ctx, email)
}

// ChangeEmail rekeys a directory record and its credential in one transaction.
// Every field of the record carries over.
// Returns:
//   - ErrInvalidEmail if newEmail is malformed
//   - ErrAdminNotFound if oldEmail is not in the directory
//   - ErrAdminExists if newEmail already is
//   - ErrEmailInUse if newEmail already has a credential
func (s *AdminService) ChangeEmail(ctx context.Context, oldEmail, newEmail string) (*model.Admin, error) {
	oldEmail, newEmail = NormalizeEmail(oldEmail), NormalizeEmail(newEmail)
	if err := s.auth.checkEmail(newEmail); err != nil {
		return nil, err
	}
	if oldEmail == newEmail {
		return s.Get(ctx, oldEmail)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	current, err := s.admins.GetForUpdate(ctx, tx, oldEmail)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, storeErr("get admin for update", err)
	}

	moved := *current
	moved.Email = newEmail
	if err := s.admins.Insert(ctx, tx, &moved); err != nil {
		if errors.Is(err, ErrAdminExists) {
			return nil, ErrAdminExists
		}
		return nil, storeErr("insert admin", err)
	}
	if _, err := s.admins.Delete(ctx, tx, oldEmail); err != nil {
		return nil, storeErr("delete admin", err)
	}
	if err := s.creds.Rekey(ctx, tx, oldEmail, newEmail); err != nil {
		if errors.Is(err, ErrEmailInUse) {
			return nil, ErrEmailInUse
		}
		return nil, storeErr("rekey credential", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit", err)
	}

	log.Info().Str("old_email", oldEmail).Str("email", newEmail).Msg("admin email changed")
	return &moved, nil
}

// Delete removes the directory record for email. The credential is kept, but
// sessions for an email outside the directory are refused.
// Deleting a missing record is a no-op.
func (s *AdminService) Delete(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	existed, err := s.admins.Delete(ctx, tx, email)
	if err != nil {
		return storeErr("delete admin", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit", err)
	}

	if existed {
		log.Info().Str("email", email).Msg("admin deleted")
	}
	return nil
}

// Bootstrap creates the first administrator when the directory is empty.
// It does nothing when email is empty or the directory already has records.
func (s *AdminService) Bootstrap(ctx context.Context, req *model.CreateAdminRequest) error {
	if req == nil || strings.TrimSpace(req.Email) == "" {
		return nil
	}
	n, err := s.admins.Count(ctx)
	if err != nil {
		return storeErr("count admins", err)
	}
	if n > 0 {
		return nil
	}

	if _, err := s.Create(ctx, req); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	log.Info().Str("email", NormalizeEmail(req.Email)).Msg("bootstrap admin created")
	return nil
}
