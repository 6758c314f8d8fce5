package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/slot-reservation-system/internal/metrics"
	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/pkg/pubsub"
)

// ConfigServiceInterface defines the interface for challenge configuration.
type ConfigServiceInterface interface {
	Get(ctx context.Context) (*model.ChallengeConfig, error)
	Subscribe(ctx context.Context) (<-chan *model.ChallengeConfig, error)
	SetChallengeSize(ctx context.Context, size int) error
	SetDeposit(ctx context.Context, patch model.DepositPatch) error
}

// ConfigHandler handles HTTP requests for the challenge configuration.
type ConfigHandler struct {
	service   ConfigServiceInterface
	validator *validator.Validate
	metrics   *metrics.Metrics
}

// NewConfigHandler creates a new ConfigHandler. m may be nil.
func NewConfigHandler(svc ConfigServiceInterface, v *validator.Validate, m *metrics.Metrics) *ConfigHandler {
	return &ConfigHandler{service: svc, validator: v, metrics: m}
}

// Get handles GET /api/config.
func (h *ConfigHandler) Get(c *fiber.Ctx) error {
	cfg, err := h.service.Get(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cfg)
}

// Stream handles GET /api/config/stream.
func (h *ConfigHandler) Stream(c *fiber.Ctx) error {
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := h.service.Subscribe(ctx)
	if err != nil {
		cancel()
		return respondError(c, err)
	}
	return streamEvents[*model.ChallengeConfig](c, stream, cancel, h.metrics.StreamOpened(pubsub.TopicConfig))
}

// SetChallengeSize handles PUT /api/admin/config/challenge-size.
func (h *ConfigHandler) SetChallengeSize(c *fiber.Ctx) error {
	var req model.SetChallengeSizeRequest
	if ok, err := bind(c, h.validator, &req); !ok {
		return err
	}

	if err := h.service.SetChallengeSize(c.Context(), req.ChallengeSize); err != nil {
		return respondError(c, err)
	}
	return h.Get(c)
}

// SetDeposit handles PATCH /api/admin/config/deposit. Omitted fields keep their value.
func (h *ConfigHandler) SetDeposit(c *fiber.Ctx) error {
	var patch model.DepositPatch
	if ok, err := bind(c, h.validator, &patch); !ok {
		return err
	}

	if err := h.service.SetDeposit(c.Context(), patch); err != nil {
		return respondError(c, err)
	}
	return h.Get(c)
}
