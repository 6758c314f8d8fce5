package model

import (
	"strings"
	"time"
)

// PushDevice is a registered push token.
type PushDevice struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PushDeviceID derives the storage key of a token. Identical tokens share a key.
func PushDeviceID(token string) string {
	return strings.ReplaceAll(token, "/", "_")
}

// RegisterDeviceRequest is the DTO for registering a device token.
type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required,notblank,max=512"`
	Platform string `json:"platform" validate:"omitempty,max=32"`
}

// BroadcastRequest is the DTO for notifying every registered device.
type BroadcastRequest struct {
	Title string `json:"title" validate:"required,notblank,max=255"`
	Body  string `json:"body" validate:"required,notblank,max=2048"`
}

// BroadcastResult reports how many tokens the batch was posted to.
type BroadcastResult struct {
	Delivered int `json:"delivered"`
}
