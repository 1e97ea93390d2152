// Package consultation tracks multi-party consultation invitations and
// aggregates the answers invitees send back concurrently.
package consultation

import (
	"sync"

	"github.com/google/uuid"
)

type Answer string

const (
	AnswerNone         Answer = "None"
	AnswerAccepted     Answer = "Accepted"
	AnswerRejected     Answer = "Rejected"
	AnswerFailed       Answer = "Failed"
	AnswerTransferring Answer = "Transferring"
)

func (a Answer) Valid() bool {
	switch a {
	case AnswerNone, AnswerAccepted, AnswerRejected, AnswerFailed, AnswerTransferring:
		return true
	}
	return false
}

// Invitation is one outstanding consultation request. Answers are written
// by invitees concurrently; every predicate folds over a fresh snapshot.
type Invitation struct {
	ID           uuid.UUID
	ConferenceID uuid.UUID
	RequestedFor uuid.UUID
	RoomLabel    string

	answers sync.Map // uuid.UUID -> Answer
}

func newInvitation(conferenceID, requestedFor uuid.UUID, roomLabel string, linked []uuid.UUID) *Invitation {
	inv := &Invitation{
		ID:           uuid.New(),
		ConferenceID: conferenceID,
		RequestedFor: requestedFor,
		RoomLabel:    roomLabel,
	}
	inv.answers.Store(requestedFor, AnswerNone)
	for _, id := range linked {
		inv.answers.LoadOrStore(id, AnswerNone)
	}
	return inv
}

func (i *Invitation) setAnswer(participantID uuid.UUID, answer Answer) {
	i.answers.Store(participantID, answer)
}

// Answer returns the current answer of one invitee.
func (i *Invitation) Answer(participantID uuid.UUID) (Answer, bool) {
	v, ok := i.answers.Load(participantID)
	if !ok {
		return "", false
	}
	return v.(Answer), true
}

// Answers is a point-in-time copy of every invitee's answer.
func (i *Invitation) Answers() map[uuid.UUID]Answer {
	out := make(map[uuid.UUID]Answer)
	i.answers.Range(func(k, v any) bool {
		out[k.(uuid.UUID)] = v.(Answer)
		return true
	})
	return out
}

func (i *Invitation) InvitedParticipantIDs() []uuid.UUID {
	var ids []uuid.UUID
	i.answers.Range(func(k, _ any) bool {
		ids = append(ids, k.(uuid.UUID))
		return true
	})
	return ids
}

func (i *Invitation) every(pred func(Answer) bool) bool {
	ok := true
	i.answers.Range(func(_, v any) bool {
		ok = pred(v.(Answer))
		return ok
	})
	return ok
}

func (i *Invitation) HaveAllAccepted() bool {
	return i.every(func(a Answer) bool { return a == AnswerAccepted })
}

func (i *Invitation) HaveAllResponded() bool {
	return i.every(func(a Answer) bool { return a != AnswerNone })
}

// HasSomeoneRejected counts a failed join as a rejection.
func (i *Invitation) HasSomeoneRejected() bool {
	return !i.every(func(a Answer) bool { return a != AnswerRejected && a != AnswerFailed })
}
