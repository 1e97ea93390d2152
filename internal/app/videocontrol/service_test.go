package videocontrol

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Hearings/internal/adapters/cache"
	"github.com/dkeye/Hearings/internal/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	backend, err := cache.NewMemDB()
	require.NoError(t, err)
	return NewService(backend, time.Hour)
}

func TestGetAbsent(t *testing.T) {
	s := newTestService(t)

	got, err := s.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetReplacesWholesale(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	id := uuid.New()

	first := domain.NewConferenceVideoControlStatuses()
	first.ParticipantIDToVideoControlStatusMap["p1"] = domain.VideoControlStatus{IsSpotlighted: true}
	first.ParticipantIDToVideoControlStatusMap["p2"] = domain.VideoControlStatus{IsLocalAudioMuted: true}
	require.NoError(t, s.Set(ctx, id, first))

	second := domain.NewConferenceVideoControlStatuses()
	second.ParticipantIDToVideoControlStatusMap["p3"] = domain.VideoControlStatus{IsLocalVideoMuted: true}
	require.NoError(t, s.Set(ctx, id, second))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, second.ParticipantIDToVideoControlStatusMap, got.ParticipantIDToVideoControlStatusMap, "no partial merge")
}

func TestSetNilStoresEmpty(t *testing.T) {
	s := newTestService(t)
	id := uuid.New()
	require.NoError(t, s.Set(context.Background(), id, nil))

	got, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.ParticipantIDToVideoControlStatusMap)
}

func TestUpdateParticipantConcurrently(t *testing.T) {
	s := newTestService(t)
	id := uuid.New()

	const participants = 15
	var wg sync.WaitGroup
	for i := range participants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateParticipant(context.Background(), id, fmt.Sprintf("p%d", i), domain.VideoControlStatus{IsLocalAudioMuted: true})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, got.ParticipantIDToVideoControlStatusMap, participants)
}

func TestUpdateParticipantOverwritesOne(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	id := uuid.New()
	_, err := s.UpdateParticipant(ctx, id, "p1", domain.VideoControlStatus{IsSpotlighted: true})
	require.NoError(t, err)
	_, err = s.UpdateParticipant(ctx, id, "p2", domain.VideoControlStatus{IsLocalVideoMuted: true})
	require.NoError(t, err)

	got, err := s.UpdateParticipant(ctx, id, "p1", domain.VideoControlStatus{})
	require.NoError(t, err)

	assert.True(t, got.ParticipantIDToVideoControlStatusMap["p1"].Equal(domain.VideoControlStatus{}))
	assert.True(t, got.ParticipantIDToVideoControlStatusMap["p2"].IsLocalVideoMuted)
}

func TestRemove(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, s.Set(ctx, id, domain.NewConferenceVideoControlStatuses()))

	require.NoError(t, s.Remove(ctx, id))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}
