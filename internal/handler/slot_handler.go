package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/slot-reservation-system/internal/metrics"
	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/pkg/pubsub"
)

// SlotServiceInterface defines the interface for reservation business logic.
type SlotServiceInterface interface {
	List(ctx context.Context) ([]model.Slot, error)
	Subscribe(ctx context.Context) (<-chan []model.Slot, error)
	Reserve(ctx context.Context, req *model.ReserveSlotRequest) (*model.Slot, error)
	AddManual(ctx context.Context, req *model.ReserveSlotRequest) (*model.Slot, error)
	Confirm(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	ResetAll(ctx context.Context) (int64, error)
	Status(ctx context.Context, number int) (model.SlotStatus, error)
	Board(ctx context.Context) (*model.Board, error)
	AdminQueue(ctx context.Context) ([]model.Slot, error)
	DepositInstructions(ctx context.Context, number int) (*model.DepositInstructions, error)
}

// SlotHandler handles HTTP requests for slot operations.
type SlotHandler struct {
	service   SlotServiceInterface
	validator *validator.Validate
	metrics   *metrics.Metrics
}

// NewSlotHandler creates a new SlotHandler. m may be nil.
func NewSlotHandler(svc SlotServiceInterface, v *validator.Validate, m *metrics.Metrics) *SlotHandler {
	return &SlotHandler{service: svc, validator: v, metrics: m}
}

// List handles GET /api/slots.
func (h *SlotHandler) List(c *fiber.Ctx) error {
	slots, err := h.service.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(slots)
}

// Stream handles GET /api/slots/stream, pushing a full snapshot on every change.
func (h *SlotHandler) Stream(c *fiber.Ctx) error {
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := h.service.Subscribe(ctx)
	if err != nil {
		cancel()
		return respondError(c, err)
	}
	return streamEvents[[]model.Slot](c, stream, cancel, h.metrics.StreamOpened(pubsub.TopicSlots))
}

// Board handles GET /api/slots/board.
func (h *SlotHandler) Board(c *fiber.Ctx) error {
	board, err := h.service.Board(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(board)
}

// Status handles GET /api/slots/:number/status.
func (h *SlotHandler) Status(c *fiber.Ctx) error {
	number, ok := numberParam(c, "number")
	if !ok {
		return badRequest(c, "invalid request: number must be a positive integer")
	}

	status, err := h.service.Status(c.Context(), number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(model.SlotStatusResponse{Number: number, Status: status})
}

// Deposit handles GET /api/slots/:number/deposit.
func (h *SlotHandler) Deposit(c *fiber.Ctx) error {
	number, ok := numberParam(c, "number")
	if !ok {
		return badRequest(c, "invalid request: number must be a positive integer")
	}

	instructions, err := h.service.DepositInstructions(c.Context(), number)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(instructions)
}

// Reserve handles POST /api/slots/reserve.
func (h *SlotHandler) Reserve(c *fiber.Ctx) error {
	var req model.ReserveSlotRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	slot, err := h.service.Reserve(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Int("number", slot.Number).
		Msg("number reserved")

	return c.Status(fiber.StatusCreated).JSON(slot)
}

// AdminQueue handles GET /api/admin/slots: pending first, then by number.
func (h *SlotHandler) AdminQueue(c *fiber.Ctx) error {
	slots, err := h.service.AdminQueue(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(slots)
}

// AddManual handles POST /api/admin/slots/manual.
func (h *SlotHandler) AddManual(c *fiber.Ctx) error {
	var req model.ReserveSlotRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	slot, err := h.service.AddManual(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(slot)
}

// Confirm handles POST /api/admin/slots/:id/confirm.
func (h *SlotHandler) Confirm(c *fiber.Ctx) error {
	if err := h.service.Confirm(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

// Reject handles POST /api/admin/slots/:id/reject.
func (h *SlotHandler) Reject(c *fiber.Ctx) error {
	if err := h.service.Reject(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

// Reset handles POST /api/admin/slots/reset. The body must be {"confirm": true}.
func (h *SlotHandler) Reset(c *fiber.Ctx) error {
	var req model.ResetSlotsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if !req.Confirm {
		return badRequest(c, "invalid request: confirm must be true")
	}

	deleted, err := h.service.ResetAll(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	sess, _, _ := sessionFrom(c)
	event := log.Warn().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Int64("deleted", deleted)
	if sess != nil {
		event = event.Str("email", sess.Email)
	}
	event.Msg("all slots reset")

	return c.JSON(model.ResetSlotsResponse{Deleted: deleted})
}
