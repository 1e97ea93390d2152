// Package hub fans conference events out to client groups.
package hub

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/dkeye/Hearings/internal/core"
	"github.com/dkeye/Hearings/internal/domain"
	"github.com/dkeye/Hearings/internal/metric"
)

const (
	GroupVhOfficers   = "VhOfficers"
	GroupStaffMembers = "StaffMembers"

	DefaultAdminAlias = "Admin"
)

var ErrForbidden = errors.New("host claim required")

// ConferenceReader is the read side of the conference store.
type ConferenceReader interface {
	GetConference(ctx context.Context, id uuid.UUID) (*domain.Conference, error)
}

// Caller identifies the connection a hub call arrived on.
type Caller struct {
	ConnID   core.ConnectionID
	Username string
}

type Config struct {
	// AdminAlias is the recipient name participants use to address
	// whichever admin is on duty.
	AdminAlias string
	// MaxFanout caps concurrent group sends per event. Zero means no cap.
	MaxFanout int
}

type Hub struct {
	transport   core.GroupTransport
	conferences ConferenceReader
	video       core.VideoAPI
	profiles    *ProfileCache
	cfg         Config
	metrics     *metric.Metrics
	now         func() time.Time

	mu          sync.Mutex
	memberships map[core.ConnectionID][]string
}

func New(transport core.GroupTransport, conferences ConferenceReader, video core.VideoAPI, profiles *ProfileCache, cfg Config, m *metric.Metrics) *Hub {
	if cfg.AdminAlias == "" {
		cfg.AdminAlias = DefaultAdminAlias
	}
	return &Hub{
		transport:   transport,
		conferences: conferences,
		video:       video,
		profiles:    profiles,
		cfg:         cfg,
		metrics:     m,
		now:         time.Now,
		memberships: make(map[core.ConnectionID][]string),
	}
}

func userGroup(username string) string { return strings.ToLower(username) }

// OnConnected joins the caller's own group, its role groups and, for admins
// and staff, every conference they watch today.
func (h *Hub) OnConnected(ctx context.Context, caller Caller) error {
	profile, err := h.profiles.Get(ctx, caller.Username)
	if err != nil {
		return err
	}

	groups := []string{userGroup(profile.Username)}
	if profile.IsAdmin() {
		groups = append(groups, GroupVhOfficers)
	}
	if profile.IsStaffMember() {
		groups = append(groups, GroupStaffMembers)
	}
	if profile.IsAdmin() || profile.IsStaffMember() {
		ids, err := h.video.GetConferencesToday(ctx, profile.Username)
		if err != nil {
			log.Error().Str("module", "app.hub").Err(err).Str("user", profile.Username).Msg("could not list today's conferences")
		}
		for _, id := range ids {
			groups = append(groups, id.String())
		}
	}

	var joined []string
	for _, g := range groups {
		if err := h.transport.AddToGroup(ctx, caller.ConnID, g); err != nil {
			log.Error().Str("module", "app.hub").Err(err).Str("conn", string(caller.ConnID)).Str("group", g).Msg("join group failed")
			continue
		}
		joined = append(joined, g)
	}

	h.mu.Lock()
	h.memberships[caller.ConnID] = joined
	h.mu.Unlock()

	log.Info().Str("module", "app.hub").Str("conn", string(caller.ConnID)).Str("user", profile.Username).Strs("groups", joined).Msg("connected")
	return nil
}

// OnDisconnected leaves every group joined on connect and forgets the
// caller's profile.
func (h *Hub) OnDisconnected(ctx context.Context, caller Caller) {
	h.mu.Lock()
	groups := h.memberships[caller.ConnID]
	delete(h.memberships, caller.ConnID)
	h.mu.Unlock()

	for _, g := range groups {
		if err := h.transport.RemoveFromGroup(ctx, caller.ConnID, g); err != nil && !errors.Is(err, core.ErrUnknownConnection) {
			log.Warn().Str("module", "app.hub").Err(err).Str("conn", string(caller.ConnID)).Str("group", g).Msg("leave group failed")
		}
	}
	h.profiles.ClearUserCache(caller.Username)
	log.Info().Str("module", "app.hub").Str("conn", string(caller.ConnID)).Str("user", caller.Username).Msg("disconnected")
}

// Groups lists what conn joined on connect.
func (h *Hub) Groups(conn core.ConnectionID) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.memberships[conn])
}

// guard runs one hub call. Errors and panics are logged, never returned.
func (h *Hub) guard(method string, conferenceID uuid.UUID, fn func() error) {
	logger := log.With().Str("module", "app.hub").Str("method", method).Str("conference", conferenceID.String()).Logger()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("hub call panicked")
		}
	}()
	if err := fn(); err != nil {
		logger.Error().Err(err).Msg("hub call failed")
	}
}

// fanOut sends ev to every group concurrently. One failed send never
// stops the others; all failures come back joined.
func (h *Hub) fanOut(ctx context.Context, ev core.Event, groups ...string) error {
	h.metrics.HubEvent(ev.Name)
	p := pool.New().WithErrors()
	if h.cfg.MaxFanout > 0 {
		p = p.WithMaxGoroutines(h.cfg.MaxFanout)
	}
	for _, g := range dedupe(groups) {
		p.Go(func() error {
			if err := h.transport.SendToGroup(ctx, g, ev); err != nil {
				h.metrics.FanoutFailure(ev.Name)
				return fmt.Errorf("send %s to %s: %w", ev.Name, g, err)
			}
			return nil
		})
	}
	return p.Wait()
}

func dedupe(groups []string) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if g != "" && !slices.Contains(out, g) {
			out = append(out, g)
		}
	}
	return out
}

func participantGroups(ps []*domain.Participant) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, userGroup(p.Username))
	}
	return out
}

func (h *Hub) conference(ctx context.Context, id uuid.UUID) (*domain.Conference, error) {
	conf, err := h.conferences.GetConference(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("conference %s: %w", id, err)
	}
	return conf, nil
}

func (h *Hub) requireHost(ctx context.Context, caller Caller) error {
	profile, err := h.profiles.Get(ctx, caller.Username)
	if err != nil {
		return err
	}
	if !profile.IsHost() {
		log.Warn().Str("module", "app.hub").Str("user", caller.Username).Msg("host-only call refused")
		return ErrForbidden
	}
	return nil
}
