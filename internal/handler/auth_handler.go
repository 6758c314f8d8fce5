package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/internal/service"
)

// AuthServiceInterface defines the interface for signing in and out.
type AuthServiceInterface interface {
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignOut(ctx context.Context, token string) error
}

// AuthHandler handles HTTP requests for administrator sessions.
type AuthHandler struct {
	service   AuthServiceInterface
	validator *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given service and validator.
func NewAuthHandler(svc AuthServiceInterface, v *validator.Validate) *AuthHandler {
	return &AuthHandler{service: svc, validator: v}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req model.LoginRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	sess, err := h.service.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("email", sess.Email).
		Msg("signed in")

	return c.JSON(sess)
}

// Logout handles POST /api/auth/logout for the calling session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	_, token, ok := sessionFrom(c)
	if !ok {
		return respondError(c, service.ErrUnauthenticated)
	}

	if err := h.service.SignOut(c.Context(), token); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

// Session handles GET /api/auth/session, echoing the calling session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	sess, _, ok := sessionFrom(c)
	if !ok {
		return respondError(c, service.ErrUnauthenticated)
	}
	return c.JSON(sess)
}
