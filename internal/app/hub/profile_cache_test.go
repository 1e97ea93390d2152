package hub

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Hearings/internal/core/coremock"
	"github.com/dkeye/Hearings/internal/domain"
)

func TestProfileCache(t *testing.T) {
	provider := new(coremock.ProfileProvider)
	profile, err := domain.NewUserProfile("judge@court.test", domain.AppRoleJudge)
	require.NoError(t, err)
	provider.On("GetProfile", mock.Anything, "judge@court.test").Return(profile, nil)
	provider.On("GetProfile", mock.Anything, "ghost@test").Return(nil, errors.New("not registered"))
	provider.On("GetProfile", mock.Anything, "nil@test").Return(nil, nil)

	c, err := NewProfileCache(provider, 0)
	require.NoError(t, err)
	ctx := context.Background()

	for range 3 {
		got, err := c.Get(ctx, "judge@court.test")
		require.NoError(t, err)
		assert.Same(t, profile, got)
	}
	provider.AssertNumberOfCalls(t, "GetProfile", 1)

	c.ClearUserCache("JUDGE@court.test")
	_, err = c.Get(ctx, "judge@court.test")
	require.NoError(t, err)
	provider.AssertNumberOfCalls(t, "GetProfile", 2)

	_, err = c.Get(ctx, "ghost@test")
	assert.Error(t, err)

	_, err = c.Get(ctx, "nil@test")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
