package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dkeye/Hearings/internal/domain"
)

func TestAreScreened(t *testing.T) {
	a := newParticipant("a@test", domain.RoleIndividual)
	b := newParticipant("b@test", domain.RoleRepresentative)
	e := newEndpoint("courtroom-1")

	assert.False(t, domain.AreScreened(a, b))

	a.ProtectFrom = []string{b.ExternalReferenceID}
	assert.True(t, domain.AreScreened(a, b))
	assert.True(t, domain.AreScreened(b, a), "one-directional declaration blocks both ways")

	e.ProtectFrom = []string{b.ExternalReferenceID}
	assert.True(t, domain.AreScreened(b, e))
	assert.False(t, domain.AreScreened(a, e))
}

func TestAreScreenedIgnoresEmptyReference(t *testing.T) {
	a := newParticipant("a@test", domain.RoleIndividual)
	b := newParticipant("b@test", domain.RoleIndividual)
	b.ExternalReferenceID = ""
	a.ProtectFrom = []string{""}

	assert.False(t, domain.AreScreened(a, b))
}

func TestAreEntitiesScreenedFromEachOther(t *testing.T) {
	c := newConference()
	p1 := newParticipant("p1@test", domain.RoleIndividual)
	p2 := newParticipant("p2@test", domain.RoleRepresentative)
	p3 := newParticipant("p3@test", domain.RoleIndividual)
	e1 := newEndpoint("courtroom-1")
	for _, p := range []*domain.Participant{p1, p2, p3} {
		c.AddParticipant(p)
	}
	c.AddEndpoint(e1)

	assert.False(t, c.AreEntitiesScreenedFromEachOther([]uuid.UUID{p1.ID, p2.ID, p3.ID}, []uuid.UUID{e1.ID}))

	e1.ProtectFrom = []string{p3.ExternalReferenceID}
	assert.True(t, c.AreEntitiesScreenedFromEachOther([]uuid.UUID{p1.ID, p3.ID}, []uuid.UUID{e1.ID}))
	assert.False(t, c.AreEntitiesScreenedFromEachOther([]uuid.UUID{p1.ID, p2.ID}, []uuid.UUID{e1.ID}))

	p1.ProtectFrom = []string{p2.ExternalReferenceID}
	assert.True(t, c.AreEntitiesScreenedFromEachOther([]uuid.UUID{p1.ID, p2.ID}, nil))
	assert.False(t, c.AreEntitiesScreenedFromEachOther([]uuid.UUID{p1.ID, uuid.New()}, nil), "unknown ids are ignored")
}

func TestGetNonScreened(t *testing.T) {
	c := newConference()
	judge := newParticipant("judge@test", domain.RoleJudge)
	p1 := newParticipant("p1@test", domain.RoleIndividual)
	p2 := newParticipant("p2@test", domain.RoleRepresentative)
	e1 := newEndpoint("courtroom-1")
	e2 := newEndpoint("courtroom-2")
	c.AddParticipant(judge)
	c.AddParticipant(p1)
	c.AddParticipant(p2)
	c.AddEndpoint(e1)
	c.AddEndpoint(e2)

	p1.ProtectFrom = []string{e1.ExternalReferenceID}

	assert.ElementsMatch(t, []*domain.Participant{judge, p2}, c.GetNonScreenedParticipants())
	assert.ElementsMatch(t, []*domain.Endpoint{e2}, c.GetNonScreenedEndpoints())

	for _, p := range c.GetNonScreenedParticipants() {
		for _, other := range c.Participants {
			if other != p {
				assert.False(t, domain.AreScreened(p, other))
			}
		}
		for _, e := range c.Endpoints {
			assert.False(t, domain.AreScreened(p, e))
		}
	}
}

func TestGetHosts(t *testing.T) {
	c := newConference()
	judge := newParticipant("judge@test", domain.RoleJudge)
	staff := newParticipant("staff@test", domain.RoleStaffMember)
	p1 := newParticipant("p1@test", domain.RoleIndividual)
	p2 := newParticipant("p2@test", domain.RoleRepresentative)
	e1 := newEndpoint("courtroom-1")
	for _, p := range []*domain.Participant{judge, staff, p1, p2} {
		c.AddParticipant(p)
	}
	c.AddEndpoint(e1)

	p1.ProtectFrom = []string{p2.ExternalReferenceID}
	judge.ProtectFrom = []string{e1.ExternalReferenceID}

	hosts := c.GetHosts()
	assert.ElementsMatch(t, []*domain.Participant{judge, staff}, hosts.Participants)
	assert.Empty(t, hosts.Endpoints)
}

func TestCanParticipantJoinConsultationRoom(t *testing.T) {
	c := newConference()
	judge := newParticipant("judge@test", domain.RoleJudge)
	p1 := newParticipant("p1@test", domain.RoleIndividual)
	p2 := newParticipant("p2@test", domain.RoleRepresentative)
	c.AddParticipant(judge)
	c.AddParticipant(p1)
	c.AddParticipant(p2)
	p1.ProtectFrom = []string{p2.ExternalReferenceID}

	c.AddParticipantToConsultationRoom("R1", p2)

	assert.False(t, c.CanParticipantJoinConsultationRoom("R1", p1.ID))
	assert.True(t, c.CanParticipantJoinConsultationRoom("R2", p1.ID))
	assert.True(t, c.CanParticipantJoinConsultationRoom("R1", judge.ID))
	assert.False(t, c.CanParticipantJoinConsultationRoom("R1", uuid.New()))
}

func TestCanEndpointJoinConsultationRoom(t *testing.T) {
	c := newConference()
	p1 := newParticipant("p1@test", domain.RoleIndividual)
	e1 := newEndpoint("courtroom-1")
	e2 := newEndpoint("courtroom-2")
	c.AddParticipant(p1)
	c.AddEndpoint(e1)
	c.AddEndpoint(e2)
	e1.ProtectFrom = []string{p1.ExternalReferenceID}

	c.AddParticipantToConsultationRoom("R1", p1)
	c.AddEndpointToConsultationRoom("R1", e2)

	assert.False(t, c.CanEndpointJoinConsultationRoom("R1", e1.ID))
	assert.True(t, c.CanEndpointJoinConsultationRoom("R1", e2.ID), "an occupant is not screened from itself")
	assert.True(t, c.CanEndpointJoinConsultationRoom("R2", e1.ID))
	assert.False(t, c.CanEndpointJoinConsultationRoom("R1", uuid.New()))
}
