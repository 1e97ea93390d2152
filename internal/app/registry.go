package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hearings/internal/core"
)

type connEntry struct {
	Username string
	Signal   core.SignalConnection
	Cancel   context.CancelFunc
	groups   map[string]struct{}
}

// Registry is the in-process group transport: it tracks live connections
// and the groups each one belongs to.
type Registry struct {
	mu     sync.RWMutex
	conns  map[core.ConnectionID]*connEntry
	groups map[string]map[core.ConnectionID]struct{}
	policy Policy
}

var _ core.GroupTransport = (*Registry)(nil)

func NewRegistry(policy Policy) *Registry {
	if policy == nil {
		policy = SimplePolicy{}
	}
	return &Registry{
		conns:  make(map[core.ConnectionID]*connEntry),
		groups: make(map[string]map[core.ConnectionID]struct{}),
		policy: policy,
	}
}

func (r *Registry) Bind(conn core.ConnectionID, username string, sig core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn] = &connEntry{
		Username: username,
		Signal:   sig,
		Cancel:   cancel,
		groups:   make(map[string]struct{}),
	}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Str("user", username).Msg("bound connection")
}

// Unbind forgets conn and drops it from every group.
func (r *Registry) Unbind(conn core.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[conn]
	if !ok {
		return
	}
	for g := range e.groups {
		r.leaveLocked(conn, g)
	}
	delete(r.conns, conn)
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("unbound connection")
}

func (r *Registry) AddToGroup(_ context.Context, conn core.ConnectionID, group string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[conn]
	if !ok {
		return fmt.Errorf("%s: %w", conn, core.ErrUnknownConnection)
	}
	members, ok := r.groups[group]
	if !ok {
		members = make(map[core.ConnectionID]struct{})
		r.groups[group] = members
	}
	members[conn] = struct{}{}
	e.groups[group] = struct{}{}
	return nil
}

func (r *Registry) RemoveFromGroup(_ context.Context, conn core.ConnectionID, group string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[conn]; !ok {
		return fmt.Errorf("%s: %w", conn, core.ErrUnknownConnection)
	}
	r.leaveLocked(conn, group)
	return nil
}

func (r *Registry) leaveLocked(conn core.ConnectionID, group string) {
	if e, ok := r.conns[conn]; ok {
		delete(e.groups, group)
	}
	members := r.groups[group]
	delete(members, conn)
	if len(members) == 0 {
		delete(r.groups, group)
	}
}

// SendToGroup encodes ev once and queues it on every member. A group with
// no members is not an error.
func (r *Registry) SendToGroup(_ context.Context, group string, ev core.Event) error {
	frame, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Name, err)
	}

	type target struct {
		id  core.ConnectionID
		sig core.SignalConnection
	}
	r.mu.RLock()
	targets := make([]target, 0, len(r.groups[group]))
	for id := range r.groups[group] {
		if e, ok := r.conns[id]; ok {
			targets = append(targets, target{id: id, sig: e.Signal})
		}
	}
	r.mu.RUnlock()

	var errs []error
	for _, t := range targets {
		err := t.sig.TrySend(frame)
		if err == nil {
			continue
		}
		if errors.Is(err, core.ErrBackpressure) {
			switch r.policy.OnBackPressure(t.id, group) {
			case KickConnection:
				log.Warn().Str("module", "app.registry").Str("conn", string(t.id)).Str("group", group).Msg("slow connection kicked")
				r.Cancel(t.id)
			case DropFrame:
				log.Debug().Str("module", "app.registry").Str("conn", string(t.id)).Str("event", ev.Name).Msg("frame dropped")
			}
		}
		errs = append(errs, fmt.Errorf("conn %s: %w", t.id, err))
	}
	return errors.Join(errs...)
}

// MembersOf lists the connections currently in group.
func (r *Registry) MembersOf(group string) []core.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.ConnectionID, 0, len(r.groups[group]))
	for id := range r.groups[group] {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (r *Registry) Username(conn core.ConnectionID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[conn]
	if !ok {
		return "", false
	}
	return e.Username, true
}

// Cancel stops the connection's pumps. The adapter unbinds it on exit.
func (r *Registry) Cancel(conn core.ConnectionID) bool {
	r.mu.RLock()
	e, ok := r.conns[conn]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("canceled connection")
	return true
}
