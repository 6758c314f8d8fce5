package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/pkg/database"
	"github.com/fairyhunter13/slot-reservation-system/pkg/pubsub"
)

// ConfigRepositoryInterface defines the interface for configuration data access.
type ConfigRepositoryInterface interface {
	Get(ctx context.Context) (*model.ChallengeConfig, error)
	GetForShare(ctx context.Context, tx database.TxQuerier) (*model.ChallengeConfig, error)
	InsertDefault(ctx context.Context, defaults *model.ChallengeConfig) error
	UpdateChallengeSize(ctx context.Context, size int) (bool, error)
	UpdateDeposit(ctx context.Context, patch model.DepositPatch) (bool, error)
}

// ConfigService owns the challenge configuration record.
type ConfigService struct {
	repo     ConfigRepositoryInterface
	broker   pubsub.Broker
	defaults model.ChallengeConfig
}

// NewConfigService creates a ConfigService. defaults seed the record on first
// read and stand in for it whenever the store cannot be read.
func NewConfigService(repo ConfigRepositoryInterface, broker pubsub.Broker, defaults model.ChallengeConfig) *ConfigService {
	return &ConfigService{repo: repo, broker: broker, defaults: defaults}
}

// Defaults returns a copy of the default configuration.
func (s *ConfigService) Defaults() *model.ChallengeConfig {
	cfg := s.defaults
	return &cfg
}

// Get returns the configuration, creating it from defaults on first access.
// An unreachable or read-protected store yields the defaults instead of an error.
func (s *ConfigService) Get(ctx context.Context) (*model.ChallengeConfig, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		if degradable(err) {
			log.Warn().Err(err).Msg("config unavailable, serving defaults")
			return s.Defaults(), nil
		}
		return nil, storeErr("get config", err)
	}
	if cfg != nil {
		return cfg, nil
	}

	if err := s.repo.InsertDefault(ctx, &s.defaults); err != nil {
		if degradable(err) {
			log.Warn().Err(err).Msg("config initialization refused, serving defaults")
			return s.Defaults(), nil
		}
		return nil, storeErr("initialize config", err)
	}
	log.Info().Int("challenge_size", s.defaults.ChallengeSize).Msg("config initialized with defaults")

	cfg, err = s.repo.Get(ctx)
	if err != nil {
		if degradable(err) {
			return s.Defaults(), nil
		}
		return nil, storeErr("get config", err)
	}
	if cfg == nil {
		return s.Defaults(), nil
	}
	return cfg, nil
}

// Subscribe streams the configuration, delivering the current value first and
// a fresh one after every change. Load failures deliver the defaults and the
// stream keeps going until ctx is done.
func (s *ConfigService) Subscribe(ctx context.Context) (<-chan *model.ChallengeConfig, error) {
	changes, err := s.broker.Subscribe(ctx, pubsub.TopicConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: subscribe config: %w", ErrTransient, err)
	}
	return pubsub.Stream[*model.ChallengeConfig](ctx, changes, s.Get, func(err error) (*model.ChallengeConfig, bool) {
		log.Warn().Err(err).Msg("config stream load failed, serving defaults")
		return s.Defaults(), true
	}), nil
}

// SetChallengeSize changes the number of slots in the challenge.
// Returns ErrOutOfRange unless size is within [50, 300].
func (s *ConfigService) SetChallengeSize(ctx context.Context, size int) error {
	if !model.ValidChallengeSize(size) {
		return ErrOutOfRange
	}

	existed, err := s.repo.UpdateChallengeSize(ctx, size)
	if err != nil {
		return storeErr("set challenge size", err)
	}
	if !existed {
		if err := s.repo.InsertDefault(ctx, &s.defaults); err != nil {
			return storeErr("initialize config", err)
		}
		if _, err := s.repo.UpdateChallengeSize(ctx, size); err != nil {
			return storeErr("set challenge size", err)
		}
	}

	log.Info().Int("challenge_size", size).Msg("challenge size updated")
	s.publish(ctx)
	return nil
}

// SetDeposit merges the supplied deposit fields into the configuration.
// The challenge size and unsupplied fields are left untouched.
func (s *ConfigService) SetDeposit(ctx context.Context, patch model.DepositPatch) error {
	if patch.Empty() {
		return nil
	}

	existed, err := s.repo.UpdateDeposit(ctx, patch)
	if err != nil {
		return storeErr("set deposit", err)
	}
	if !existed {
		if err := s.repo.InsertDefault(ctx, &s.defaults); err != nil {
			return storeErr("initialize config", err)
		}
		if _, err := s.repo.UpdateDeposit(ctx, patch); err != nil {
			return storeErr("set deposit", err)
		}
	}

	log.Info().Msg("deposit details updated")
	s.publish(ctx)
	return nil
}

// lockedConfig reads the configuration inside tx under a shared lock so the
// challenge size cannot change before tx ends.
func (s *ConfigService) lockedConfig(ctx context.Context, tx database.TxQuerier) (*model.ChallengeConfig, error) {
	cfg, err := s.repo.GetForShare(ctx, tx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return s.Defaults(), nil
	}
	return cfg, nil
}

func (s *ConfigService) publish(ctx context.Context) {
	if err := s.broker.Publish(ctx, pubsub.TopicConfig); err != nil {
		log.Warn().Err(err).Str("topic", pubsub.TopicConfig).Msg("failed to publish change")
	}
}
