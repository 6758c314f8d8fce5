package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/slot-reservation-system/internal/metrics"
	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/pkg/push"
)

// PushTokenRepositoryInterface defines the interface for device token data access.
type PushTokenRepositoryInterface interface {
	Upsert(ctx context.Context, device *model.PushDevice) error
	ListTokens(ctx context.Context) ([]string, error)
}

// PushService registers devices and broadcasts notifications to them.
type PushService struct {
	tokens  PushTokenRepositoryInterface
	sender  push.Sender
	metrics *metrics.Metrics
}

// NewPushService creates a PushService.
func NewPushService(tokens PushTokenRepositoryInterface, sender push.Sender, m *metrics.Metrics) *PushService {
	return &PushService{tokens: tokens, sender: sender, metrics: m}
}

// RegisterDevice stores a device token. Registering the same token again
// refreshes it instead of adding a duplicate.
func (s *PushService) RegisterDevice(ctx context.Context, req *model.RegisterDeviceRequest) (*model.PushDevice, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, ErrInvalidRequest
	}

	device := &model.PushDevice{
		ID:       model.PushDeviceID(token),
		Token:    token,
		Platform: strings.TrimSpace(req.Platform),
	}
	if err := s.tokens.Upsert(ctx, device); err != nil {
		return nil, storeErr("register device", err)
	}
	return device, nil
}

// Broadcast posts one notification to every registered token in a single
// batch. With no tokens nothing is sent. Failed deliveries are not retried.
func (s *PushService) Broadcast(ctx context.Context, req *model.BroadcastRequest) (*model.BroadcastResult, error) {
	if req == nil || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Body) == "" {
		return nil, ErrInvalidRequest
	}

	tokens, err := s.tokens.ListTokens(ctx)
	if err != nil {
		return nil, storeErr("list push tokens", err)
	}
	if len(tokens) == 0 {
		return &model.BroadcastResult{Delivered: 0}, nil
	}

	msg := push.Message{
		To:    tokens,
		Sound: "default",
		Title: req.Title,
		Body:  req.Body,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: send broadcast: %w", ErrTransient, err)
	}

	log.Info().Int("tokens", len(tokens)).Msg("broadcast sent")
	s.metrics.Broadcast(len(tokens))
	return &model.BroadcastResult{Delivered: len(tokens)}, nil
}
