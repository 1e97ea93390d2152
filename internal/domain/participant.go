package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	HearingRoleWitness  = "Witness"
	HearingRoleObserver = "Observer"
)

type LinkType string

const (
	LinkTypeInterpreter LinkType = "Interpreter"
	LinkTypeRepresentee LinkType = "Representee"
)

// LinkedParticipant ties a participant to another, e.g. an interpreter.
type LinkedParticipant struct {
	LinkedID uuid.UUID `json:"linked_id"`
	LinkType LinkType  `json:"link_type"`
}

type Participant struct {
	ID                  uuid.UUID           `json:"id"`
	RefID               uuid.UUID           `json:"ref_id"`
	ExternalReferenceID string              `json:"external_reference_id,omitempty"`
	Username            string              `json:"username"`
	DisplayName         string              `json:"display_name"`
	FirstName           string              `json:"first_name,omitempty"`
	LastName            string              `json:"last_name,omitempty"`
	ContactEmail        string              `json:"contact_email,omitempty"`
	Role                Role                `json:"role"`
	UserRole            UserRole            `json:"user_role"`
	HearingRole         string              `json:"hearing_role,omitempty"`
	Status              ParticipantStatus   `json:"status"`
	ProtectFrom         []string            `json:"protect_from,omitempty"`
	CurrentRoom         string              `json:"current_room,omitempty"`
	LinkedParticipants  []LinkedParticipant `json:"linked_participants,omitempty"`
	LastEventTime       time.Time           `json:"last_event_time"`
}

func (p *Participant) screeningRef() string    { return p.ExternalReferenceID }
func (p *Participant) protectedFrom() []string { return p.ProtectFrom }

func (p *Participant) IsJudge() bool { return p.Role == RoleJudge }

// IsHost reports whether the participant can run the hearing.
func (p *Participant) IsHost() bool {
	return p.Role == RoleJudge || p.Role == RoleStaffMember
}

func (p *Participant) IsJudicialOfficeHolderOrJudge() bool {
	return p.Role == RoleJudge || p.Role == RoleJudicialOfficeHolder
}

func (p *Participant) IsWitness() bool {
	return strings.EqualFold(p.HearingRole, HearingRoleWitness)
}

func (p *Participant) IsObserver() bool {
	return p.Role == RoleQuickLinkObserver || strings.EqualFold(p.HearingRole, HearingRoleObserver)
}

func (p *Participant) IsQuickLinkUser() bool {
	return p.Role == RoleQuickLinkParticipant || p.Role == RoleQuickLinkObserver
}

func (p *Participant) IsAvailable() bool { return p.Status == ParticipantAvailable }

func (p *Participant) IsInHearing() bool { return p.Status == ParticipantInHearing }

// LinkedIDs lists the ids of every participant linked to p.
func (p *Participant) LinkedIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(p.LinkedParticipants))
	for _, lp := range p.LinkedParticipants {
		if !slices.Contains(out, lp.LinkedID) {
			out = append(out, lp.LinkedID)
		}
	}
	return out
}
