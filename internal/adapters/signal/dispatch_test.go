package signal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Hearings/internal/app/hub"
	"github.com/dkeye/Hearings/internal/core"
)

type hubMock struct {
	mock.Mock
}

func (m *hubMock) OnConnected(ctx context.Context, caller hub.Caller) error {
	return m.Called(ctx, caller).Error(0)
}

func (m *hubMock) OnDisconnected(ctx context.Context, caller hub.Caller) {
	m.Called(ctx, caller)
}

func (m *hubMock) SendMessage(ctx context.Context, caller hub.Caller, conferenceID uuid.UUID, message, to string, messageUUID uuid.UUID) {
	m.Called(ctx, caller, conferenceID, message, to, messageUUID)
}

func (m *hubMock) SendHeartbeat(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID, hb core.Heartbeat) {
	m.Called(ctx, caller, conferenceID, participantID, hb)
}

func (m *hubMock) SendTransferRequest(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID, direction hub.TransferDirection) {
	m.Called(ctx, caller, conferenceID, participantID, direction)
}

func (m *hubMock) SendMediaDeviceStatus(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID, status hub.MediaStatus) {
	m.Called(ctx, caller, conferenceID, participantID, status)
}

func (m *hubMock) UpdateParticipantRemoteMuteStatus(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID, isRemoteMuted bool) {
	m.Called(ctx, caller, conferenceID, participantID, isRemoteMuted)
}

func (m *hubMock) UpdateParticipantHandStatus(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID, hasHandRaised bool) {
	m.Called(ctx, caller, conferenceID, participantID, hasHandRaised)
}

func (m *hubMock) ToggleParticipantLocalMute(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID, muted bool) error {
	return m.Called(ctx, caller, conferenceID, participantID, muted).Error(0)
}

func (m *hubMock) ToggleAllParticipantLocalMute(ctx context.Context, caller hub.Caller, conferenceID uuid.UUID, muted bool) error {
	return m.Called(ctx, caller, conferenceID, muted).Error(0)
}

func (m *hubMock) PushAudioRestartAction(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID) {
	m.Called(ctx, caller, conferenceID, participantID)
}

type recordingConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (r *recordingConn) TrySend(f core.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

func (r *recordingConn) Close() {}

func (r *recordingConn) replies(t *testing.T) []map[string]any {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []map[string]any
	for _, f := range r.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func frame(t *testing.T, typ string, payload any) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{"type": typ, "payload": payload})
	require.NoError(t, err)
	return b
}

func newTestController(h HubAPI) *HubWSController {
	return NewHubWSController(h, nil, NewRateLimiter(100, time.Second), nil, Options{})
}

func TestDispatchRoutesHubCalls(t *testing.T) {
	h := new(hubMock)
	ctl := newTestController(h)
	caller := hub.Caller{ConnID: "c1", Username: "admin@test"}
	conn := &recordingConn{}
	ctx := context.Background()
	conferenceID, participantID, msgID := uuid.New(), uuid.New(), uuid.New()

	h.On("SendMessage", ctx, caller, conferenceID, "hello", "p1@test", msgID).Once()
	h.On("SendHeartbeat", ctx, caller, conferenceID, participantID, core.Heartbeat{IncomingAudioPercentageLost: 3, BrowserName: "Edge"}).Once()
	h.On("SendTransferRequest", ctx, caller, conferenceID, participantID, hub.TransferIn).Once()
	h.On("SendMediaDeviceStatus", ctx, caller, conferenceID, participantID, hub.MediaStatus{IsLocalVideoMuted: true}).Once()
	h.On("UpdateParticipantRemoteMuteStatus", ctx, caller, conferenceID, participantID, true).Once()
	h.On("UpdateParticipantHandStatus", ctx, caller, conferenceID, participantID, true).Once()
	h.On("PushAudioRestartAction", ctx, caller, conferenceID, participantID).Once()

	ctl.dispatch(ctx, caller, conn, frame(t, "SendMessage", map[string]any{
		"conference_id": conferenceID, "message": "hello", "to": "p1@test", "message_uuid": msgID,
	}))
	ctl.dispatch(ctx, caller, conn, frame(t, "SendHeartbeat", map[string]any{
		"conference_id": conferenceID, "participant_id": participantID,
		"heartbeat": map[string]any{"incoming_audio_percentage_lost": 3, "browser_name": "Edge"},
	}))
	ctl.dispatch(ctx, caller, conn, frame(t, "SendTransferRequest", map[string]any{
		"conference_id": conferenceID, "participant_id": participantID, "transfer_direction": "In",
	}))
	ctl.dispatch(ctx, caller, conn, frame(t, "SendMediaDeviceStatus", map[string]any{
		"conference_id": conferenceID, "participant_id": participantID,
		"media_status": map[string]any{"is_local_video_muted": true},
	}))
	ctl.dispatch(ctx, caller, conn, frame(t, "UpdateParticipantRemoteMuteStatus", map[string]any{
		"conference_id": conferenceID, "participant_id": participantID, "is_remote_muted": true,
	}))
	ctl.dispatch(ctx, caller, conn, frame(t, "UpdateParticipantHandStatus", map[string]any{
		"conference_id": conferenceID, "participant_id": participantID, "has_hand_raised": true,
	}))
	ctl.dispatch(ctx, caller, conn, frame(t, "PushAudioRestartAction", map[string]any{
		"conference_id": conferenceID, "participant_id": participantID,
	}))

	h.AssertExpectations(t)
	assert.Empty(t, conn.replies(t))
}

func TestDispatchReportsForbidden(t *testing.T) {
	h := new(hubMock)
	ctl := newTestController(h)
	caller := hub.Caller{ConnID: "c1", Username: "p1@test"}
	conn := &recordingConn{}
	conferenceID := uuid.New()
	h.On("ToggleAllParticipantLocalMute", mock.Anything, caller, conferenceID, true).Return(hub.ErrForbidden)

	ctl.dispatch(context.Background(), caller, conn, frame(t, "ToggleAllParticipantLocalMute", map[string]any{
		"conference_id": conferenceID, "muted": true,
	}))

	replies := conn.replies(t)
	require.Len(t, replies, 1)
	assert.Equal(t, "error", replies[0]["type"])
	assert.Equal(t, "forbidden", replies[0]["error"])
}

func TestDispatchRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "given garbage when dispatched then bad json", data: []byte("{"), want: "bad_json"},
		{name: "given unknown type when dispatched then unknown type", data: []byte(`{"type":"Shout"}`), want: "unknown_type"},
		{name: "given missing payload when dispatched then bad payload", data: []byte(`{"type":"SendMessage"}`), want: "bad_payload"},
		{name: "given malformed id when dispatched then bad payload", data: []byte(`{"type":"SendHeartbeat","payload":{"conference_id":"nope"}}`), want: "bad_payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := new(hubMock)
			conn := &recordingConn{}

			newTestController(h).dispatch(context.Background(), hub.Caller{ConnID: "c1"}, conn, tt.data)

			replies := conn.replies(t)
			require.Len(t, replies, 1)
			assert.Equal(t, tt.want, replies[0]["error"])
			h.AssertExpectations(t)
		})
	}
}

func TestDispatchPingAndRateLimit(t *testing.T) {
	h := new(hubMock)
	ctl := NewHubWSController(h, nil, NewRateLimiter(1, time.Minute), nil, Options{})
	caller := hub.Caller{ConnID: "c1"}
	conn := &recordingConn{}
	conferenceID, participantID := uuid.New(), uuid.New()
	h.On("UpdateParticipantHandStatus", mock.Anything, caller, conferenceID, participantID, false).Once()
	payload := map[string]any{"conference_id": conferenceID, "participant_id": participantID}

	ctl.dispatch(context.Background(), caller, conn, []byte(`{"type":"ping"}`))
	ctl.dispatch(context.Background(), caller, conn, frame(t, "UpdateParticipantHandStatus", payload))
	ctl.dispatch(context.Background(), caller, conn, frame(t, "UpdateParticipantHandStatus", payload))

	replies := conn.replies(t)
	require.Len(t, replies, 2)
	assert.Equal(t, "pong", replies[0]["type"])
	assert.Equal(t, "rate_limited", replies[1]["error"])
	h.AssertExpectations(t)
}
