package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
)

// PushServiceInterface defines the interface for push notifications.
type PushServiceInterface interface {
	RegisterDevice(ctx context.Context, req *model.RegisterDeviceRequest) (*model.PushDevice, error)
	Broadcast(ctx context.Context, req *model.BroadcastRequest) (*model.BroadcastResult, error)
}

// PushHandler handles HTTP requests for device registration and broadcasts.
type PushHandler struct {
	service   PushServiceInterface
	validator *validator.Validate
}

// NewPushHandler creates a new PushHandler with the given service and validator.
func NewPushHandler(svc PushServiceInterface, v *validator.Validate) *PushHandler {
	return &PushHandler{service: svc, validator: v}
}

// RegisterDevice handles POST /api/push/devices.
func (h *PushHandler) RegisterDevice(c *fiber.Ctx) error {
	var req model.RegisterDeviceRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	if _, err := h.service.RegisterDevice(c.Context(), &req); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

// Broadcast handles POST /api/admin/push/broadcast.
func (h *PushHandler) Broadcast(c *fiber.Ctx) error {
	var req model.BroadcastRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	result, err := h.service.Broadcast(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Int("delivered", result.Delivered).
		Str("by", actor(c)).
		Msg("broadcast sent")

	return c.JSON(result)
}
