package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
)

// AdminServiceInterface defines the interface for the admin directory.
type AdminServiceInterface interface {
	Create(ctx context.Context, req *model.CreateAdminRequest) (*model.Admin, error)
	List(ctx context.Context) ([]model.Admin, error)
	Rename(ctx context.Context, email, name string) (*model.Admin, error)
	ChangeEmail(ctx context.Context, oldEmail, newEmail string) (*model.Admin, error)
	Delete(ctx context.Context, email string) error
}

// AdminHandler handles HTTP requests for directory management.
type AdminHandler struct {
	service   AdminServiceInterface
	validator *validator.Validate
}

// NewAdminHandler creates a new AdminHandler with the given service and validator.
func NewAdminHandler(svc AdminServiceInterface, v *validator.Validate) *AdminHandler {
	return &AdminHandler{service: svc, validator: v}
}

// List handles GET /api/admin/admins.
func (h *AdminHandler) List(c *fiber.Ctx) error {
	admins, err := h.service.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(admins)
}

// Create handles POST /api/admin/admins.
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	var req model.CreateAdminRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	admin, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("email", admin.Email).
		Str("by", actor(c)).
		Msg("admin created")

	return c.Status(fiber.StatusCreated).JSON(admin)
}

// Rename handles PATCH /api/admin/admins/:email.
func (h *AdminHandler) Rename(c *fiber.Ctx) error {
	email, ok := emailParam(c)
	if !ok {
		return badRequest(c, "invalid request: email is required")
	}

	var req model.RenameAdminRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	admin, err := h.service.Rename(c.Context(), email, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(admin)
}

// ChangeEmail handles PUT /api/admin/admins/:email/email.
func (h *AdminHandler) ChangeEmail(c *fiber.Ctx) error {
	email, ok := emailParam(c)
	if !ok {
		return badRequest(c, "invalid request: email is required")
	}

	var req model.ChangeAdminEmailRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	admin, err := h.service.ChangeEmail(c.Context(), email, req.NewEmail)
	if err != nil {
		return respondError(c, err)
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("old_email", email).
		Str("email", admin.Email).
		Str("by", actor(c)).
		Msg("admin email changed")

	return c.JSON(admin)
}

// Delete handles DELETE /api/admin/admins/:email. The login credential is kept.
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	email, ok := emailParam(c)
	if !ok {
		return badRequest(c, "invalid request: email is required")
	}

	if err := h.service.Delete(c.Context(), email); err != nil {
		return respondError(c, err)
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("email", email).
		Str("by", actor(c)).
		Msg("admin removed from directory")

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// actor is the email of the calling administrator, if known.
func actor(c *fiber.Ctx) string {
	if sess, _, ok := sessionFrom(c); ok {
		return sess.Email
	}
	return ""
}
