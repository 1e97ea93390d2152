// Package store keeps the conference aggregate in a core.Cache backend and
// coalesces concurrent upstream compositions per conference id.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/dkeye/Hearings/internal/core"
	"github.com/dkeye/Hearings/internal/domain"
	"github.com/dkeye/Hearings/internal/metric"
)

// ComposeFunc builds a conference from its upstream sources.
type ComposeFunc func(ctx context.Context, id uuid.UUID) (*domain.Conference, error)

// Cache stores conferences keyed by id. A miss runs at most one composition
// per id at a time; callers racing on the same miss share its result.
type Cache struct {
	backend        core.Cache
	ttl            time.Duration
	composeTimeout time.Duration
	flights        singleflight.Group
	metrics        *metric.Metrics

	mu       sync.Mutex
	inflight map[string]*flight
}

// flight is the context a composition runs under. It is detached from the
// caller that started it and cancelled only once every waiter has left.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func NewCache(backend core.Cache, ttl time.Duration, m *metric.Metrics) *Cache {
	return &Cache{
		backend:  backend,
		ttl:      ttl,
		metrics:  m,
		inflight: make(map[string]*flight),
	}
}

// WithComposeTimeout bounds every shared composition. Zero means no bound.
func (c *Cache) WithComposeTimeout(d time.Duration) *Cache {
	c.composeTimeout = d
	return c
}

func conferenceKey(id uuid.UUID) string { return "conference:" + id.String() }

// Get returns core.ErrMiss when the conference is not cached.
func (c *Cache) Get(ctx context.Context, id uuid.UUID) (*domain.Conference, error) {
	raw, err := c.backend.Get(ctx, conferenceKey(id))
	if err != nil {
		return nil, err
	}
	conf := new(domain.Conference)
	if err := json.Unmarshal(raw, conf); err != nil {
		return nil, fmt.Errorf("decode conference %s: %w", id, err)
	}
	return conf, nil
}

// Set overwrites the cached conference. Last writer wins.
func (c *Cache) Set(ctx context.Context, conf *domain.Conference) error {
	raw, err := json.Marshal(conf)
	if err != nil {
		return fmt.Errorf("encode conference %s: %w", conf.ID, err)
	}
	return c.backend.Set(ctx, conferenceKey(conf.ID), raw, c.ttl)
}

func (c *Cache) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := c.backend.Del(ctx, conferenceKey(id))
	return err
}

// GetOrAdd returns the cached conference or composes, stores and returns
// it. A caller whose ctx is cancelled returns early without failing the
// others sharing its composition. Nothing is stored when compose fails or
// every waiter has cancelled.
func (c *Cache) GetOrAdd(ctx context.Context, id uuid.UUID, compose ComposeFunc) (*domain.Conference, error) {
	conf, err := c.Get(ctx, id)
	if err == nil {
		c.metrics.CacheHit()
		return conf, nil
	}
	if !errors.Is(err, core.ErrMiss) {
		return nil, err
	}
	c.metrics.CacheMiss()

	key := conferenceKey(id)
	f := c.join(ctx, key)
	ch := c.flights.DoChan(key, func() (any, error) {
		// an earlier flight may have stored it since our read
		if conf, err := c.Get(f.ctx, id); err == nil {
			return conf, nil
		}
		return c.compose(f.ctx, id, compose)
	})
	select {
	case <-ctx.Done():
		c.leave(key, f, true)
		return nil, ctx.Err()
	case res := <-ch:
		c.leave(key, f, false)
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Conference), nil
	}
}

func (c *Cache) join(ctx context.Context, key string) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.inflight[key]
	if !ok {
		f = &flight{}
		base := context.WithoutCancel(ctx)
		if c.composeTimeout > 0 {
			f.ctx, f.cancel = context.WithTimeout(base, c.composeTimeout)
		} else {
			f.ctx, f.cancel = context.WithCancel(base)
		}
		c.inflight[key] = f
	}
	f.waiters++
	return f
}

// leave drops one waiter. When the last waiter gives up before the result
// arrives the composition is cancelled and forgotten, so nothing is stored
// and the next caller starts afresh.
func (c *Cache) leave(key string, f *flight, abandoned bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	if c.inflight[key] == f {
		delete(c.inflight, key)
	}
	f.cancel()
	if abandoned {
		c.flights.Forget(key)
	}
}

// Refresh always recomposes and overwrites the cached entry.
func (c *Cache) Refresh(ctx context.Context, id uuid.UUID, compose ComposeFunc) (*domain.Conference, error) {
	return c.compose(ctx, id, compose)
}

func (c *Cache) compose(ctx context.Context, id uuid.UUID, compose ComposeFunc) (*domain.Conference, error) {
	started := time.Now()
	conf, err := compose(ctx, id)
	c.metrics.ObserveCompose(time.Since(started))
	if err != nil {
		log.Warn().Str("module", "app.store").Err(err).Str("conference", id.String()).Msg("compose failed")
		return nil, fmt.Errorf("compose conference %s: %w", id, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.Set(ctx, conf); err != nil {
		return nil, fmt.Errorf("store conference %s: %w", id, err)
	}
	log.Debug().Str("module", "app.store").Str("conference", id.String()).Dur("took", time.Since(started)).Msg("conference composed")
	return conf, nil
}
