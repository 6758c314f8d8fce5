package model

import "time"

// RoleAdmin is the default directory role.
const RoleAdmin = "admin"

// Admin represents a directory record.
type Admin struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Credential is a login held by the identity service.
type Credential struct {
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is an authenticated login.
type Session struct {
	ID        string    `json:"-"`
	Token     string    `json:"token,omitempty"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateAdminRequest is the DTO for provisioning an administrator.
type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
	Name     string `json:"name" validate:"required,notblank,max=255"`
}

// RenameAdminRequest is the DTO for changing a display name.
type RenameAdminRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// ChangeAdminEmailRequest is the DTO for rekeying an administrator.
type ChangeAdminEmailRequest struct {
	NewEmail string `json:"new_email" validate:"required,email,max=255"`
}

// LoginRequest is the DTO for signing in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}
