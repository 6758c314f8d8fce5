package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/slot-reservation-system/internal/metrics"
	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/pkg/database"
	"github.com/fairyhunter13/slot-reservation-system/pkg/pubsub"
)

// SlotRepositoryInterface defines the interface for slot data access.
type SlotRepositoryInterface interface {
	List(ctx context.Context) ([]model.Slot, error)
	GetByNumber(ctx context.Context, number int) (*model.Slot, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, number int) (*model.Slot, error)
	InsertIfAbsent(ctx context.Context, tx database.TxQuerier, slot *model.Slot) error
	Confirm(ctx context.Context, number int) error
	Delete(ctx context.Context, tx database.TxQuerier, number int) error
	DeleteAll(ctx context.Context) (int64, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SlotService provides business logic for slot reservations.
type SlotService struct {
	pool    TxBeginner
	slots   SlotRepositoryInterface
	configs *ConfigService
	broker  pubsub.Broker
	metrics *metrics.Metrics
}

// NewSlotService creates a new SlotService with the given pool and dependencies.
func NewSlotService(pool *pgxpool.Pool, slots SlotRepositoryInterface, configs *ConfigService, broker pubsub.Broker, m *metrics.Metrics) *SlotService {
	return NewSlotServiceWithTxBeginner(pool, slots, configs, broker, m)
}

// NewSlotServiceWithTxBeginner creates a SlotService with a custom TxBeginner.
// Primarily used for testing.
func NewSlotServiceWithTxBeginner(pool TxBeginner, slots SlotRepositoryInterface, configs *ConfigService, broker pubsub.Broker, m *metrics.Metrics) *SlotService {
	return &SlotService{
		pool:    pool,
		slots:   slots,
		configs: configs,
		broker:  broker,
		metrics: m,
	}
}

// List returns every slot ordered by number.
func (s *SlotService) List(ctx context.Context) ([]model.Slot, error) {
	slots, err := s.slots.List(ctx)
	if err != nil {
		return nil, storeErr("list slots", err)
	}
	return slots, nil
}

// Subscribe streams full slot snapshots: the current one first, then a fresh
// one after every change to any slot. The stream ends when ctx is done or a
// snapshot cannot be loaded; subscribing again starts a new stream.
func (s *SlotService) Subscribe(ctx context.Context) (<-chan []model.Slot, error) {
	changes, err := s.broker.Subscribe(ctx, pubsub.TopicSlots)
	if err != nil {
		return nil, fmt.Errorf("%w: subscribe slots: %w", ErrTransient, err)
	}
	return pubsub.Stream[[]model.Slot](ctx, changes, s.List, func(err error) ([]model.Slot, bool) {
		log.Error().Err(err).Msg("slot stream load failed, closing stream")
		return nil, false
	}), nil
}

// Reserve claims number for a participant with status pending.
// Returns:
//   - ErrInvalidRequest if name or contact is blank
//   - ErrInvalidNumber if number is outside [1, challengeSize]
//   - ErrAlreadyTaken if the number already has a slot
func (s *SlotService) Reserve(ctx context.Context, req *model.ReserveSlotRequest) (*model.Slot, error) {
	slot, err := s.create(ctx, req, model.StatusPending)
	switch {
	case err == nil:
		s.metrics.Reservation(metrics.OutcomeReserved)
	case errors.Is(err, ErrAlreadyTaken):
		s.metrics.Reservation(metrics.OutcomeTaken)
	case errors.Is(err, ErrValidation):
		s.metrics.Reservation(metrics.OutcomeInvalid)
	default:
		s.metrics.Reservation(metrics.OutcomeError)
	}
	return slot, err
}

// AddManual records a confirmed slot on behalf of a participant.
// It fails the same way Reserve does.
func (s *SlotService) AddManual(ctx context.Context, req *model.ReserveSlotRequest) (*model.Slot, error) {
	slot, err := s.create(ctx, req, model.StatusConfirmed)
	if err == nil {
		s.metrics.SlotAction(metrics.ActionManual)
	}
	return slot, err
}

// create inserts a slot if its number is free. The challenge size is read
// under a shared lock in the same transaction so a concurrent resize cannot
// invalidate the range check.
func (s *SlotService) create(ctx context.Context, req *model.ReserveSlotRequest, status model.SlotStatus) (*model.Slot, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	slot := &model.Slot{
		Number:          req.Number,
		ClaimantName:    strings.TrimSpace(req.ClaimantName),
		ClaimantContact: strings.TrimSpace(req.ClaimantContact),
		Status:          status,
	}
	if slot.ClaimantName == "" || slot.ClaimantContact == "" {
		return nil, ErrInvalidRequest
	}
	if slot.Number < 1 {
		return nil, ErrInvalidNumber
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	cfg, err := s.configs.lockedConfig(ctx, tx)
	if err != nil {
		return nil, storeErr("read challenge size", err)
	}
	if slot.Number > cfg.ChallengeSize {
		return nil, ErrInvalidNumber
	}

	if err := s.slots.InsertIfAbsent(ctx, tx, slot); err != nil {
		if errors.Is(err, ErrAlreadyTaken) {
			return nil, ErrAlreadyTaken
		}
		return nil, storeErr("insert slot", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit", err)
	}

	log.Info().
		Int("number", slot.Number).
		Str("status", string(slot.Status)).
		Msg("slot created")
	s.publish(ctx)
	return slot, nil
}

// Confirm moves the slot with id from pending to confirmed.
// Confirming an already confirmed slot succeeds without change.
// Returns ErrSlotNotFound if no slot has that id.
func (s *SlotService) Confirm(ctx context.Context, id string) error {
	number, ok := model.ParseSlotID(id)
	if !ok {
		return ErrSlotNotFound
	}
	if err := s.slots.Confirm(ctx, number); err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return ErrSlotNotFound
		}
		return storeErr("confirm slot", err)
	}

	log.Info().Int("number", number).Msg("slot confirmed")
	s.metrics.SlotAction(metrics.ActionConfirm)
	s.publish(ctx)
	return nil
}

// Reject deletes a pending slot, returning its number to available.
// Rejecting a missing slot is a no-op.
// Returns ErrSlotConfirmed if the slot was already confirmed.
func (s *SlotService) Reject(ctx context.Context, id string) error {
	number, ok := model.ParseSlotID(id)
	if !ok {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storeErr("begin tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	slot, err := s.slots.GetForUpdate(ctx, tx, number)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return nil
		}
		return storeErr("get slot for update", err)
	}
	if slot.Status == model.StatusConfirmed {
		return ErrSlotConfirmed
	}

	if err := s.slots.Delete(ctx, tx, number); err != nil {
		return storeErr("delete slot", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit", err)
	}

	log.Info().Int("number", number).Msg("slot rejected")
	s.metrics.SlotAction(metrics.ActionReject)
	s.publish(ctx)
	return nil
}

// ResetAll deletes every slot regardless of status and returns how many were removed.
func (s *SlotService) ResetAll(ctx context.Context) (int64, error) {
	n, err := s.slots.DeleteAll(ctx)
	if err != nil {
		return 0, storeErr("reset slots", err)
	}

	log.Warn().Int64("deleted", n).Msg("all slots reset")
	s.metrics.SlotAction(metrics.ActionReset)
	s.publish(ctx)
	return n, nil
}

// Status derives the status of number. A number without a slot is available.
// Returns ErrInvalidNumber if number is outside [1, challengeSize].
func (s *SlotService) Status(ctx context.Context, number int) (model.SlotStatus, error) {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return "", err
	}
	if number < 1 || number > cfg.ChallengeSize {
		return "", ErrInvalidNumber
	}
	slot, err := s.slots.GetByNumber(ctx, number)
	if err != nil {
		return "", storeErr("get slot", err)
	}
	var snapshot []model.Slot
	if slot != nil {
		snapshot = append(snapshot, *slot)
	}
	return model.DeriveStatus(snapshot, number), nil
}

// Board builds the challenge grid from the current configuration and slots.
func (s *SlotService) Board(ctx context.Context) (*model.Board, error) {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	board := model.BuildBoard(slots, cfg.ChallengeSize)
	return &board, nil
}

// AdminQueue returns every slot in review order: pending first, then by number.
func (s *SlotService) AdminQueue(ctx context.Context) ([]model.Slot, error) {
	slots, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return model.AdminQueue(slots), nil
}

// DepositInstructions tells a participant how much to deposit for number and where.
// Returns ErrInvalidNumber if number is outside [1, challengeSize].
func (s *SlotService) DepositInstructions(ctx context.Context, number int) (*model.DepositInstructions, error) {
	cfg, err := s.configs.Get(ctx)
	if err != nil {
		return nil, err
	}
	if number < 1 || number > cfg.ChallengeSize {
		return nil, ErrInvalidNumber
	}
	return &model.DepositInstructions{
		Number:   number,
		Amount:   cfg.AmountFor(number),
		Currency: cfg.Currency,
		Deposit:  cfg.Deposit,
	}, nil
}

func (s *SlotService) publish(ctx context.Context) {
	if err := s.broker.Publish(ctx, pubsub.TopicSlots); err != nil {
		log.Warn().Err(err).Str("topic", pubsub.TopicSlots).Msg("failed to publish change")
	}
}
