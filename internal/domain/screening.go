package domain

import (
	"slices"

	"github.com/google/uuid"
)

// Screenable is a participant or an endpoint: anything with an external
// reference and a protect-from list.
type Screenable interface {
	screeningRef() string
	protectedFrom() []string
}

// AreScreened reports whether a and b must never share a room. A
// declaration in either direction is enough.
func AreScreened(a, b Screenable) bool {
	if a == nil || b == nil {
		return false
	}
	return protects(a, b) || protects(b, a)
}

func protects(from, other Screenable) bool {
	ref := other.screeningRef()
	return ref != "" && slices.Contains(from.protectedFrom(), ref)
}

func (c *Conference) screenables() []Screenable {
	out := make([]Screenable, 0, len(c.Participants)+len(c.Endpoints))
	for _, p := range c.Participants {
		out = append(out, p)
	}
	for _, e := range c.Endpoints {
		out = append(out, e)
	}
	return out
}

func (c *Conference) isScreenedFromAnyone(s Screenable) bool {
	for _, other := range c.screenables() {
		if other == s {
			continue
		}
		if AreScreened(s, other) {
			return true
		}
	}
	return false
}

// GetNonScreenedParticipants lists participants with no screening
// relationship to any other participant or endpoint in the conference.
func (c *Conference) GetNonScreenedParticipants() []*Participant {
	var out []*Participant
	for _, p := range c.Participants {
		if !c.isScreenedFromAnyone(p) {
			out = append(out, p)
		}
	}
	return out
}

func (c *Conference) GetNonScreenedEndpoints() []*Endpoint {
	var out []*Endpoint
	for _, e := range c.Endpoints {
		if !c.isScreenedFromAnyone(e) {
			out = append(out, e)
		}
	}
	return out
}

// Hosts are the entities allowed to host a consultation.
type Hosts struct {
	Participants []*Participant
	Endpoints    []*Endpoint
}

// GetHosts returns judges and staff members, plus every participant or
// endpoint without any screening relationship.
func (c *Conference) GetHosts() Hosts {
	var hosts Hosts
	for _, p := range c.Participants {
		if p.IsHost() || !c.isScreenedFromAnyone(p) {
			hosts.Participants = append(hosts.Participants, p)
		}
	}
	hosts.Endpoints = c.GetNonScreenedEndpoints()
	return hosts
}

func (c *Conference) canJoin(label string, candidate Screenable) bool {
	for _, p := range c.GetParticipantsInRoom(label) {
		if Screenable(p) != candidate && AreScreened(candidate, p) {
			return false
		}
	}
	for _, e := range c.GetEndpointsInRoom(label) {
		if Screenable(e) != candidate && AreScreened(candidate, e) {
			return false
		}
	}
	return true
}

// CanParticipantJoinConsultationRoom is false when the participant is
// unknown or screened from any current occupant of the room.
func (c *Conference) CanParticipantJoinConsultationRoom(label string, participantID uuid.UUID) bool {
	p := c.GetParticipant(participantID)
	if p == nil {
		return false
	}
	return c.canJoin(label, p)
}

func (c *Conference) CanEndpointJoinConsultationRoom(label string, endpointID uuid.UUID) bool {
	e := c.GetEndpoint(endpointID)
	if e == nil {
		return false
	}
	return c.canJoin(label, e)
}

// AreEntitiesScreenedFromEachOther checks every pair drawn from the union of
// the given participants and endpoints. Unknown ids are ignored.
func (c *Conference) AreEntitiesScreenedFromEachOther(participantIDs, endpointIDs []uuid.UUID) bool {
	var entities []Screenable
	for _, id := range participantIDs {
		if p := c.GetParticipant(id); p != nil {
			entities = append(entities, p)
		}
	}
	for _, id := range endpointIDs {
		if e := c.GetEndpoint(id); e != nil {
			entities = append(entities, e)
		}
	}
	for i := range entities {
		for j := i + 1; j < len(entities); j++ {
			if AreScreened(entities[i], entities[j]) {
				return true
			}
		}
	}
	return false
}
