// Package signal is the websocket transport of the event hub.
package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hearings/internal/app"
	"github.com/dkeye/Hearings/internal/app/hub"
	"github.com/dkeye/Hearings/internal/core"
	"github.com/dkeye/Hearings/internal/metric"
)

const (
	DefaultReadLimit  = 32768
	DefaultPingPeriod = 54 * time.Second
	DefaultSendBuffer = 32

	writeWait = 5 * time.Second
)

// HubAPI is what inbound frames are dispatched to.
type HubAPI interface {
	OnConnected(ctx context.Context, caller hub.Caller) error
	OnDisconnected(ctx context.Context, caller hub.Caller)
	SendMessage(ctx context.Context, caller hub.Caller, conferenceID uuid.UUID, message, to string, messageUUID uuid.UUID)
	SendHeartbeat(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID, hb core.Heartbeat)
	SendTransferRequest(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID, direction hub.TransferDirection)
	SendMediaDeviceStatus(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID, status hub.MediaStatus)
	UpdateParticipantRemoteMuteStatus(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID, isRemoteMuted bool)
	UpdateParticipantHandStatus(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID, hasHandRaised bool)
	ToggleParticipantLocalMute(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID, muted bool) error
	ToggleAllParticipantLocalMute(ctx context.Context, caller hub.Caller, conferenceID uuid.UUID, muted bool) error
	PushAudioRestartAction(ctx context.Context, caller hub.Caller, conferenceID, participantID uuid.UUID)
}

var _ HubAPI = (*hub.Hub)(nil)

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	SendBuffer int
}

func (o Options) withDefaults() Options {
	if o.ReadLimit <= 0 {
		o.ReadLimit = DefaultReadLimit
	}
	if o.PingPeriod <= 0 {
		o.PingPeriod = DefaultPingPeriod
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = DefaultSendBuffer
	}
	return o
}

type HubWSController struct {
	Hub      HubAPI
	Registry *app.Registry
	Limiter  *RateLimiter
	Metrics  *metric.Metrics
	opts     Options
}

func NewHubWSController(h HubAPI, reg *app.Registry, limiter *RateLimiter, m *metric.Metrics, opts Options) *HubWSController {
	return &HubWSController{
		Hub:      h,
		Registry: reg,
		Limiter:  limiter,
		Metrics:  m,
		opts:     opts.withDefaults(),
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and serves one hub connection for
// username until either side closes it.
func (ctl *HubWSController) HandleSignal(ctx context.Context, c *gin.Context, username string) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendBuffer),
	}
	caller := hub.Caller{ConnID: core.ConnectionID(uuid.NewString()), Username: username}
	log.Info().Str("module", "signal").Str("conn", string(caller.ConnID)).Str("user", username).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	ctl.Registry.Bind(caller.ConnID, username, conn, cancel)
	if err := ctl.Hub.OnConnected(ctx, caller); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("user", username).Msg("connect refused")
		ctl.Registry.Unbind(caller.ConnID)
		cancel()
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorised"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	ctl.Metrics.IncrementWebSocketConnections()

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, caller, conn)
}
