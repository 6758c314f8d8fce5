package service

import (
	"errors"
	"fmt"

	"github.com/fairyhunter13/slot-reservation-system/pkg/database"
)

// Error kinds. Every sentinel below wraps exactly one of these so callers can
// branch on the kind with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrPermission = errors.New("permission denied")
	ErrTransient  = errors.New("service unavailable")
)

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = fmt.Errorf("%w: invalid request", ErrValidation)

	// ErrInvalidNumber is returned when a number is outside [1, challengeSize]
	ErrInvalidNumber = fmt.Errorf("%w: number out of range", ErrValidation)

	// ErrOutOfRange is returned when a challenge size is outside [50, 300]
	ErrOutOfRange = fmt.Errorf("%w: challenge size must be between 50 and 300", ErrValidation)

	// ErrInvalidEmail is returned when an email address is malformed
	ErrInvalidEmail = fmt.Errorf("%w: invalid email", ErrValidation)

	// ErrWeakPassword is returned when a password is shorter than six characters
	ErrWeakPassword = fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)

	// ErrPasswordTooLong is returned when a password is longer than bcrypt accepts
	ErrPasswordTooLong = fmt.Errorf("%w: password must be at most 72 bytes", ErrValidation)

	// ErrSlotNotFound is returned when no slot exists for a number
	ErrSlotNotFound = fmt.Errorf("%w: slot not found", ErrNotFound)

	// ErrAdminNotFound is returned when no directory record exists for an email
	ErrAdminNotFound = fmt.Errorf("%w: admin not found", ErrNotFound)

	// ErrAlreadyTaken is returned when a number already has a slot
	ErrAlreadyTaken = fmt.Errorf("%w: number already taken", ErrConflict)

	// ErrSlotConfirmed is returned when rejecting a slot that was already confirmed
	ErrSlotConfirmed = fmt.Errorf("%w: slot already confirmed", ErrConflict)

	// ErrEmailInUse is returned when a credential already exists for an email
	ErrEmailInUse = fmt.Errorf("%w: email already in use", ErrConflict)

	// ErrAdminExists is returned when a directory record already exists for an email
	ErrAdminExists = fmt.Errorf("%w: admin already exists", ErrConflict)

	// ErrInvalidCredential is returned when email or password do not match
	ErrInvalidCredential = fmt.Errorf("%w: invalid credential", ErrPermission)

	// ErrUnauthenticated is returned when a session token is missing, invalid or revoked
	ErrUnauthenticated = fmt.Errorf("%w: unauthenticated", ErrPermission)

	// ErrForbidden is returned when a valid session is not in the admin directory
	ErrForbidden = fmt.Errorf("%w: forbidden", ErrPermission)
)

// storeErr wraps a storage failure with op, tagging it ErrTransient when the
// database is unreachable and ErrPermission when it refused the statement.
func storeErr(op string, err error) error {
	switch {
	case database.IsUnavailable(err):
		return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
	case database.IsPermissionDenied(err):
		return fmt.Errorf("%s: %w: %w", op, ErrPermission, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// degradable reports whether a configuration read may fall back to defaults.
func degradable(err error) bool {
	return database.IsUnavailable(err) || database.IsPermissionDenied(err)
}
