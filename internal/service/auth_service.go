package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/pkg/database"
	"github.com/fairyhunter13/slot-reservation-system/pkg/session"
)

// MinPasswordLength is the shortest password a credential accepts.
const MinPasswordLength = 6

// MaxPasswordLength is the longest password in bytes bcrypt can hash.
const MaxPasswordLength = 72

// CredentialRepositoryInterface defines the interface for credential data access.
type CredentialRepositoryInterface interface {
	Insert(ctx context.Context, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (*model.Credential, error)
	Delete(ctx context.Context, email string) error
	Rekey(ctx context.Context, tx database.TxQuerier, oldEmail, newEmail string) error
}

// AuthService is the identity service: credentials and sessions.
type AuthService struct {
	creds    CredentialRepositoryInterface
	sessions *session.Manager
	revoked  session.RevocationList
	cost     int
	validate *validator.Validate
}

// NewAuthService creates an AuthService hashing passwords at bcrypt cost.
func NewAuthService(creds CredentialRepositoryInterface, sessions *session.Manager, revoked session.RevocationList, cost int) *AuthService {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		creds:    creds,
		sessions: sessions,
		revoked:  revoked,
		cost:     cost,
		validate: validator.New(),
	}
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) checkEmail(email string) error {
	if err := s.validate.Var(email, "required,email,max=255"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// CreateCredential provisions a login for email.
// Returns:
//   - ErrInvalidEmail if email is malformed
//   - ErrWeakPassword if password is shorter than six characters
//   - ErrPasswordTooLong if password is longer than 72 bytes
//   - ErrEmailInUse if a credential already exists for email
func (s *AuthService) CreateCredential(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)
	if err := s.checkEmail(email); err != nil {
		return err
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.creds.Insert(ctx, email, string(hash)); err != nil {
		if errors.Is(err, ErrEmailInUse) {
			return ErrEmailInUse
		}
		return storeErr("insert credential", err)
	}
	return nil
}

// DeleteCredential removes the login for email. A missing credential is not an error.
func (s *AuthService) DeleteCredential(ctx context.Context, email string) error {
	if err := s.creds.Delete(ctx, NormalizeEmail(email)); err != nil {
		return storeErr("delete credential", err)
	}
	return nil
}

// SignIn checks email and password and opens a session.
// Returns ErrInvalidCredential for an unknown email or a wrong password alike.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	email = NormalizeEmail(email)
	cred, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeErr("get credential", err)
	}
	if cred == nil {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, id, expiresAt, err := s.sessions.Issue(email)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	log.Info().Str("email", email).Msg("signed in")
	return &model.Session{ID: id, Token: token, Email: email, ExpiresAt: expiresAt}, nil
}

// CurrentSession resolves a session token.
// Returns ErrUnauthenticated if the token is missing, invalid, expired or signed out.
func (s *AuthService) CurrentSession(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.sessions.Parse(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: check revocation: %w", ErrTransient, err)
	}
	if revoked {
		return nil, ErrUnauthenticated
	}

	return &model.Session{
		ID:        claims.ID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignOut revokes the session until it would have expired.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	sess, err := s.CurrentSession(ctx, token)
	if err != nil {
		return err
	}
	if err := s.revoked.Revoke(ctx, sess.ID, sess.ExpiresAt); err != nil {
		return fmt.Errorf("%w: revoke session: %w", ErrTransient, err)
	}

	log.Info().Str("email", sess.Email).Msg("signed out")
	return nil
}
