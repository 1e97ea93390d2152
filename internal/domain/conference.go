package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conference is the in-memory view of one hearing session. It is not safe
// for concurrent use; callers serialise mutation per conference id.
type Conference struct {
	ID                     uuid.UUID               `json:"id"`
	HearingID              uuid.UUID               `json:"hearing_id"`
	CaseName               string                  `json:"case_name"`
	CaseNumber             string                  `json:"case_number"`
	CaseType               string                  `json:"case_type"`
	ScheduledDateTime      time.Time               `json:"scheduled_date_time"`
	ScheduledDuration      time.Duration           `json:"scheduled_duration"`
	Status                 ConferenceStatus        `json:"status"`
	HearingVenueName       string                  `json:"hearing_venue_name"`
	AudioRecordingRequired bool                    `json:"audio_recording_required"`
	IngestURL              string                  `json:"ingest_url,omitempty"`
	Supplier               string                  `json:"supplier,omitempty"`
	Participants           []*Participant          `json:"participants"`
	Endpoints              []*Endpoint             `json:"endpoints"`
	TelephoneParticipants  []*TelephoneParticipant `json:"telephone_participants"`
	CivilianRooms          []*CivilianRoom         `json:"civilian_rooms"`
	ConsultationRooms      []*ConsultationRoom     `json:"consultation_rooms"`
}

func NewConference(id, hearingID uuid.UUID) *Conference {
	return &Conference{
		ID:        id,
		HearingID: hearingID,
		Status:    ConferenceNotStarted,
	}
}

func (c *Conference) IsClosed() bool { return c.Status == ConferenceClosed }

func (c *Conference) UpdateConferenceStatus(status ConferenceStatus) {
	c.Status = status
}

func (c *Conference) GetParticipant(id uuid.UUID) *Participant {
	for _, p := range c.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// FindParticipant is GetParticipant with a NotFound error for callers that
// must surface the miss.
func (c *Conference) FindParticipant(id uuid.UUID) (*Participant, error) {
	if p := c.GetParticipant(id); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("participant %s in conference %s: %w", id, c.ID, ErrNotFound)
}

func (c *Conference) GetParticipantByUsername(username string) *Participant {
	for _, p := range c.Participants {
		if strings.EqualFold(p.Username, username) {
			return p
		}
	}
	return nil
}

func (c *Conference) GetEndpoint(id uuid.UUID) *Endpoint {
	for _, e := range c.Endpoints {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (c *Conference) FindEndpoint(id uuid.UUID) (*Endpoint, error) {
	if e := c.GetEndpoint(id); e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("endpoint %s in conference %s: %w", id, c.ID, ErrNotFound)
}

// GetJudge returns the single judge. Zero or several judges is a data error.
func (c *Conference) GetJudge() (*Participant, error) {
	var judge *Participant
	for _, p := range c.Participants {
		if !p.IsJudge() {
			continue
		}
		if judge != nil {
			return nil, fmt.Errorf("conference %s: %w", c.ID, ErrMultipleJudges)
		}
		judge = p
	}
	if judge == nil {
		return nil, fmt.Errorf("conference %s: %w", c.ID, ErrJudgeNotFound)
	}
	return judge, nil
}

// AddParticipant appends p unless a participant with the same username
// (case-insensitive) is already present.
func (c *Conference) AddParticipant(p *Participant) {
	if p == nil || c.GetParticipantByUsername(p.Username) != nil {
		return
	}
	c.Participants = append(c.Participants, p)
}

// RemoveParticipant removes by reference id so that a participant
// re-added with a fresh identity is still matched.
func (c *Conference) RemoveParticipant(refID uuid.UUID) {
	idx := slices.IndexFunc(c.Participants, func(p *Participant) bool { return p.RefID == refID })
	if idx < 0 {
		return
	}
	removed := c.Participants[idx]
	c.Participants = slices.Delete(c.Participants, idx, idx+1)
	for _, room := range c.CivilianRooms {
		room.Participants = slices.DeleteFunc(room.Participants, func(id uuid.UUID) bool { return id == removed.ID })
	}
	c.removeConsultationRoomIfEmpty(removed.CurrentRoom)
}

// UpdateParticipantStatus records a status change. A disconnect evacuates
// whatever consultation room the participant was in.
func (c *Conference) UpdateParticipantStatus(p *Participant, status ParticipantStatus, eventTime time.Time) {
	p.Status = status
	p.LastEventTime = eventTime
	if status == ParticipantDisconnected {
		left := p.CurrentRoom
		p.CurrentRoom = ""
		c.removeConsultationRoomIfEmpty(left)
	}
}

func (c *Conference) AddEndpoint(e *Endpoint) {
	if e == nil || c.GetEndpoint(e.ID) != nil {
		return
	}
	c.Endpoints = append(c.Endpoints, e)
}

func (c *Conference) RemoveEndpoint(id uuid.UUID) {
	idx := slices.IndexFunc(c.Endpoints, func(e *Endpoint) bool { return e.ID == id })
	if idx < 0 {
		return
	}
	removed := c.Endpoints[idx]
	c.Endpoints = slices.Delete(c.Endpoints, idx, idx+1)
	c.removeConsultationRoomIfEmpty(removed.CurrentRoom)
}

// UpdateEndpointStatus is a no-op for an unknown endpoint.
func (c *Conference) UpdateEndpointStatus(id uuid.UUID, status EndpointStatus) {
	e := c.GetEndpoint(id)
	if e == nil {
		return
	}
	e.Status = status
	if status == EndpointDisconnected {
		left := e.CurrentRoom
		e.CurrentRoom = ""
		c.removeConsultationRoomIfEmpty(left)
	}
}

func (c *Conference) GetConsultationRoom(label string) *ConsultationRoom {
	for _, r := range c.ConsultationRooms {
		if r.Label == label {
			return r
		}
	}
	return nil
}

// UpsertConsultationRoom creates the room or refreshes its lock flag.
func (c *Conference) UpsertConsultationRoom(label string, locked bool) *ConsultationRoom {
	room := c.GetConsultationRoom(label)
	if room == nil {
		room = &ConsultationRoom{Label: label}
		c.ConsultationRooms = append(c.ConsultationRooms, room)
	}
	room.Locked = locked
	return room
}

func (c *Conference) getOrCreateConsultationRoom(label string) *ConsultationRoom {
	if room := c.GetConsultationRoom(label); room != nil {
		return room
	}
	room := &ConsultationRoom{Label: label, Locked: true}
	c.ConsultationRooms = append(c.ConsultationRooms, room)
	return room
}

func (c *Conference) AddParticipantToConsultationRoom(label string, p *Participant) {
	if label == "" || p == nil {
		return
	}
	c.getOrCreateConsultationRoom(label)
	previous := p.CurrentRoom
	p.CurrentRoom = label
	if previous != label {
		c.removeConsultationRoomIfEmpty(previous)
	}
}

func (c *Conference) AddEndpointToConsultationRoom(label string, e *Endpoint) {
	if label == "" || e == nil {
		return
	}
	c.getOrCreateConsultationRoom(label)
	previous := e.CurrentRoom
	e.CurrentRoom = label
	if previous != label {
		c.removeConsultationRoomIfEmpty(previous)
	}
}

func (c *Conference) RemoveParticipantFromConsultationRoom(p *Participant, label string) {
	if p == nil {
		return
	}
	if p.CurrentRoom == label {
		p.CurrentRoom = ""
	}
	c.removeConsultationRoomIfEmpty(label)
}

func (c *Conference) RemoveEndpointFromConsultationRoom(e *Endpoint, label string) {
	if e == nil {
		return
	}
	if e.CurrentRoom == label {
		e.CurrentRoom = ""
	}
	c.removeConsultationRoomIfEmpty(label)
}

func (c *Conference) GetParticipantsInRoom(label string) []*Participant {
	var out []*Participant
	for _, p := range c.Participants {
		if label != "" && p.CurrentRoom == label {
			out = append(out, p)
		}
	}
	return out
}

func (c *Conference) GetEndpointsInRoom(label string) []*Endpoint {
	var out []*Endpoint
	for _, e := range c.Endpoints {
		if label != "" && e.CurrentRoom == label {
			out = append(out, e)
		}
	}
	return out
}

func (c *Conference) removeConsultationRoomIfEmpty(label string) {
	if label == "" {
		return
	}
	if len(c.GetParticipantsInRoom(label)) > 0 || len(c.GetEndpointsInRoom(label)) > 0 {
		return
	}
	c.ConsultationRooms = slices.DeleteFunc(c.ConsultationRooms, func(r *ConsultationRoom) bool { return r.Label == label })
}

func (c *Conference) GetCivilianRoom(roomID int64) *CivilianRoom {
	for _, r := range c.CivilianRooms {
		if r.ID == roomID {
			return r
		}
	}
	return nil
}

// AddParticipantToRoom adds a participant to a VMR, creating the VMR on
// first reference.
func (c *Conference) AddParticipantToRoom(roomID int64, participantID uuid.UUID) {
	room := c.GetCivilianRoom(roomID)
	if room == nil {
		room = &CivilianRoom{ID: roomID}
		c.CivilianRooms = append(c.CivilianRooms, room)
	}
	if !room.HasParticipant(participantID) {
		room.Participants = append(room.Participants, participantID)
	}
}

func (c *Conference) RemoveParticipantFromRoom(roomID int64, participantID uuid.UUID) {
	room := c.GetCivilianRoom(roomID)
	if room == nil {
		return
	}
	room.Participants = slices.DeleteFunc(room.Participants, func(id uuid.UUID) bool { return id == participantID })
}

func (c *Conference) GetTelephoneParticipant(id uuid.UUID) *TelephoneParticipant {
	for _, t := range c.TelephoneParticipants {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// AddTelephoneParticipant is idempotent; new callers start connected in
// the waiting room.
func (c *Conference) AddTelephoneParticipant(id uuid.UUID, phoneNumber string) {
	if c.GetTelephoneParticipant(id) != nil {
		return
	}
	c.TelephoneParticipants = append(c.TelephoneParticipants, &TelephoneParticipant{
		ID:          id,
		PhoneNumber: phoneNumber,
		Room:        WaitingRoom,
		Connected:   true,
	})
}

func (c *Conference) RemoveTelephoneParticipant(id uuid.UUID) {
	c.TelephoneParticipants = slices.DeleteFunc(c.TelephoneParticipants, func(t *TelephoneParticipant) bool { return t.ID == id })
}

// UpdateTelephoneParticipantRoom moves a phone caller between the waiting
// and hearing rooms.
func (c *Conference) UpdateTelephoneParticipantRoom(id uuid.UUID, room RoomType, connected bool) {
	t := c.GetTelephoneParticipant(id)
	if t == nil {
		return
	}
	t.Room = room
	t.Connected = connected
}
