package app

import (
	"context"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Hearings/internal/core"
)

type fakeSignal struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (s *fakeSignal) TrySend(f core.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrConnectionClosed
	}
	if s.full {
		return core.ErrBackpressure
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *fakeSignal) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *fakeSignal) received() []core.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Frame(nil), s.frames...)
}

func TestRegistryGroupMembership(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()
	r.Bind("c1", "judge@test", &fakeSignal{}, nil)
	r.Bind("c2", "admin@test", &fakeSignal{}, nil)

	require.NoError(t, r.AddToGroup(ctx, "c1", "judge@test"))
	require.NoError(t, r.AddToGroup(ctx, "c2", "VhOfficers"))
	require.NoError(t, r.AddToGroup(ctx, "c1", "VhOfficers"))
	assert.Equal(t, []core.ConnectionID{"c1", "c2"}, r.MembersOf("VhOfficers"))

	require.NoError(t, r.RemoveFromGroup(ctx, "c1", "VhOfficers"))
	assert.Equal(t, []core.ConnectionID{"c2"}, r.MembersOf("VhOfficers"))

	assert.ErrorIs(t, r.AddToGroup(ctx, "ghost", "VhOfficers"), core.ErrUnknownConnection)

	r.Unbind("c2")
	assert.Empty(t, r.MembersOf("VhOfficers"))
	_, ok := r.Username("c2")
	assert.False(t, ok)
}

func TestRegistrySendToGroup(t *testing.T) {
	r := NewRegistry(nil)
	ctx := context.Background()
	a, b, outsider := &fakeSignal{}, &fakeSignal{}, &fakeSignal{}
	r.Bind("a", "a@test", a, nil)
	r.Bind("b", "b@test", b, nil)
	r.Bind("o", "o@test", outsider, nil)
	require.NoError(t, r.AddToGroup(ctx, "a", "conference-1"))
	require.NoError(t, r.AddToGroup(ctx, "b", "conference-1"))

	ev := core.Event{Name: "ReceiveMessage", Payload: map[string]string{"message": "hi"}}
	require.NoError(t, r.SendToGroup(ctx, "conference-1", ev))

	require.Len(t, a.received(), 1)
	require.Len(t, b.received(), 1)
	assert.Empty(t, outsider.received())

	var got struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(a.received()[0], &got))
	assert.Equal(t, "ReceiveMessage", got.Type)
	assert.Equal(t, "hi", got.Payload["message"])

	assert.NoError(t, r.SendToGroup(ctx, "empty", ev), "empty group is not an error")
}

func TestRegistryBackpressure(t *testing.T) {
	t.Run("given the kick policy when a member is slow then its connection is cancelled", func(t *testing.T) {
		r := NewRegistry(SimplePolicy{})
		ctx := context.Background()
		cancelled := false
		slow, fast := &fakeSignal{full: true}, &fakeSignal{}
		r.Bind("slow", "slow@test", slow, func() { cancelled = true })
		r.Bind("fast", "fast@test", fast, nil)
		require.NoError(t, r.AddToGroup(ctx, "slow", "g"))
		require.NoError(t, r.AddToGroup(ctx, "fast", "g"))

		err := r.SendToGroup(ctx, "g", core.Event{Name: "HearingTransfer"})

		assert.ErrorIs(t, err, core.ErrBackpressure)
		assert.True(t, cancelled)
		assert.Len(t, fast.received(), 1, "other members still receive")
	})

	t.Run("given the drop policy when a member is slow then it stays connected", func(t *testing.T) {
		r := NewRegistry(DropPolicy{})
		ctx := context.Background()
		cancelled := false
		r.Bind("slow", "slow@test", &fakeSignal{full: true}, func() { cancelled = true })
		require.NoError(t, r.AddToGroup(ctx, "slow", "g"))

		err := r.SendToGroup(ctx, "g", core.Event{Name: "HearingTransfer"})

		assert.ErrorIs(t, err, core.ErrBackpressure)
		assert.False(t, cancelled)
	})
}
