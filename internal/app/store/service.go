package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hearings/internal/core"
	"github.com/dkeye/Hearings/internal/domain"
)

// Service is the conference store every other component reads through.
type Service struct {
	cache   *Cache
	compose ComposeFunc
	locks   *KeyedMutex[uuid.UUID]
}

func NewService(cache *Cache, compose ComposeFunc) *Service {
	return &Service{
		cache:   cache,
		compose: compose,
		locks:   NewKeyedMutex[uuid.UUID](),
	}
}

// GetConference returns the cached conference, composing it from upstream
// on a miss.
func (s *Service) GetConference(ctx context.Context, id uuid.UUID) (*domain.Conference, error) {
	return s.cache.GetOrAdd(ctx, id, s.compose)
}

// ForceGetConference skips the cache read, recomposes from upstream and
// overwrites the cached entry.
func (s *Service) ForceGetConference(ctx context.Context, id uuid.UUID) (*domain.Conference, error) {
	conf, err := s.cache.Refresh(ctx, id, s.compose)
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.store").Str("conference", id.String()).Msg("conference refreshed from upstream")
	return conf, nil
}

// UpdateConference overwrites the cached conference unconditionally.
func (s *Service) UpdateConference(ctx context.Context, conf *domain.Conference) error {
	if conf == nil {
		return fmt.Errorf("update conference: %w", domain.ErrNotFound)
	}
	return s.cache.Set(ctx, conf)
}

// MutateConference loads the conference, applies fn and stores the result,
// holding the per-conference lock throughout. Nothing is stored when fn
// returns an error.
func (s *Service) MutateConference(ctx context.Context, id uuid.UUID, fn func(*domain.Conference) error) (*domain.Conference, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// work on a private copy; a freshly composed instance is shared with
	// every caller that raced on the miss
	conf, err := s.cache.Get(ctx, id)
	if errors.Is(err, core.ErrMiss) {
		if _, err = s.GetConference(ctx, id); err == nil {
			conf, err = s.cache.Get(ctx, id)
		}
	}
	if err != nil {
		return nil, err
	}
	if err := fn(conf); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, conf); err != nil {
		return nil, fmt.Errorf("store conference %s: %w", id, err)
	}
	return conf, nil
}

func (s *Service) RemoveConference(ctx context.Context, id uuid.UUID) error {
	if err := s.cache.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove conference %s: %w", id, err)
	}
	log.Info().Str("module", "app.store").Str("conference", id.String()).Msg("conference evicted")
	return nil
}
