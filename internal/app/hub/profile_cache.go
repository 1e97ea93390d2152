package hub

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/dkeye/Hearings/internal/core"
	"github.com/dkeye/Hearings/internal/domain"
)

const DefaultProfileCacheSize = 1024

// ProfileCache keeps resolved user profiles for connected users.
type ProfileCache struct {
	provider core.ProfileProvider
	cache    *lru.Cache
}

func NewProfileCache(provider core.ProfileProvider, size int) (*ProfileCache, error) {
	if size <= 0 {
		size = DefaultProfileCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("profile cache: %w", err)
	}
	return &ProfileCache{provider: provider, cache: c}, nil
}

func (c *ProfileCache) Get(ctx context.Context, username string) (*domain.UserProfile, error) {
	key := strings.ToLower(username)
	if v, ok := c.cache.Get(key); ok {
		return v.(*domain.UserProfile), nil
	}
	profile, err := c.provider.GetProfile(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", username, err)
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %s: %w", username, domain.ErrNotFound)
	}
	c.cache.Add(key, profile)
	return profile, nil
}

func (c *ProfileCache) ClearUserCache(username string) {
	c.cache.Remove(strings.ToLower(username))
}
