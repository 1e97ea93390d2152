package consultation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Hearings/internal/domain"
)

var (
	ErrInvitationNotFound = errors.New("consultation invitation not found")
	ErrInvalidAnswer      = errors.New("invalid consultation answer")
)

// Tracker holds outstanding invitations until the initiating workflow
// removes them. It never expires anything itself.
type Tracker struct {
	invitations sync.Map // uuid.UUID -> *Invitation
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// StartTracking creates an invitation for requestedFor and every
// participant linked to them, all answering None.
func (t *Tracker) StartTracking(conf *domain.Conference, roomLabel string, requestedFor uuid.UUID) *Invitation {
	var linked []uuid.UUID
	if p := conf.GetParticipant(requestedFor); p != nil {
		linked = p.LinkedIDs()
	}
	inv := newInvitation(conf.ID, requestedFor, roomLabel, linked)
	t.invitations.Store(inv.ID, inv)
	log.Info().
		Str("module", "app.consultation").
		Str("conference", conf.ID.String()).
		Str("invitation", inv.ID.String()).
		Str("room", roomLabel).
		Int("invitees", len(inv.InvitedParticipantIDs())).
		Msg("tracking consultation invitation")
	return inv
}

// UpdateResponse records participantID's answer. Safe to call from many
// goroutines at once.
func (t *Tracker) UpdateResponse(invitationID, participantID uuid.UUID, answer Answer) (*Invitation, error) {
	if !answer.Valid() {
		return nil, fmt.Errorf("%q: %w", answer, ErrInvalidAnswer)
	}
	inv, err := t.Get(invitationID)
	if err != nil {
		return nil, err
	}
	inv.setAnswer(participantID, answer)
	log.Debug().
		Str("module", "app.consultation").
		Str("invitation", invitationID.String()).
		Str("participant", participantID.String()).
		Str("answer", string(answer)).
		Msg("consultation answer recorded")
	return inv, nil
}

func (t *Tracker) Get(invitationID uuid.UUID) (*Invitation, error) {
	v, ok := t.invitations.Load(invitationID)
	if !ok {
		return nil, fmt.Errorf("invitation %s: %w", invitationID, ErrInvitationNotFound)
	}
	return v.(*Invitation), nil
}

func (t *Tracker) Remove(invitationID uuid.UUID) {
	if _, ok := t.invitations.LoadAndDelete(invitationID); ok {
		log.Debug().Str("module", "app.consultation").Str("invitation", invitationID.String()).Msg("invitation removed")
	}
}
