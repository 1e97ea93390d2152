package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkeye/Hearings/internal/core"
	"github.com/dkeye/Hearings/internal/domain"
)

// Composer builds a Conference from the video service and the booking
// service. Screening data only lives in the booking record and is joined
// onto video participants by reference id.
type Composer struct {
	video   core.VideoAPI
	booking core.BookingAPI
}

func NewComposer(video core.VideoAPI, booking core.BookingAPI) *Composer {
	return &Composer{video: video, booking: booking}
}

// Compose satisfies ComposeFunc.
func (c *Composer) Compose(ctx context.Context, id uuid.UUID) (*domain.Conference, error) {
	details, err := c.video.GetConferenceDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("video service: %w", err)
	}
	if details == nil {
		return nil, fmt.Errorf("conference %s: %w", id, domain.ErrNotFound)
	}
	hearing, err := c.booking.GetHearingDetails(ctx, details.HearingID)
	if err != nil {
		return nil, fmt.Errorf("booking service: %w", err)
	}
	return buildConference(details, hearing), nil
}

func buildConference(d *core.ConferenceDetails, h *core.HearingDetails) *domain.Conference {
	conf := domain.NewConference(d.ID, d.HearingID)
	conf.CaseName = d.CaseName
	conf.CaseNumber = d.CaseNumber
	conf.CaseType = d.CaseType
	conf.ScheduledDateTime = d.ScheduledDateTime
	conf.ScheduledDuration = time.Duration(d.ScheduledDurationMinutes) * time.Minute
	if d.Status != "" {
		conf.Status = domain.ConferenceStatus(d.Status)
	}
	conf.HearingVenueName = d.HearingVenueName
	conf.AudioRecordingRequired = d.AudioRecordingRequired
	conf.IngestURL = d.IngestURL
	conf.Supplier = d.Supplier

	if h == nil {
		h = &core.HearingDetails{}
	}

	for _, pd := range d.Participants {
		p := buildParticipant(pd, findHearingParticipant(h, pd.RefID))
		conf.AddParticipant(p)
		if pd.CurrentRoom != nil && p.CurrentRoom != "" {
			conf.UpsertConsultationRoom(p.CurrentRoom, pd.CurrentRoom.Locked)
		}
	}
	for _, ed := range d.Endpoints {
		e := buildEndpoint(ed, findHearingEndpoint(h, ed))
		conf.AddEndpoint(e)
		if ed.CurrentRoom != nil && e.CurrentRoom != "" {
			conf.UpsertConsultationRoom(e.CurrentRoom, ed.CurrentRoom.Locked)
		}
	}
	for _, td := range d.TelephoneParticipants {
		room := domain.RoomType(td.Room)
		if room == "" {
			room = domain.WaitingRoom
		}
		conf.TelephoneParticipants = append(conf.TelephoneParticipants, &domain.TelephoneParticipant{
			ID:          td.ID,
			PhoneNumber: td.PhoneNumber,
			Room:        room,
			Connected:   td.Connected,
		})
	}
	for _, rd := range d.CivilianRooms {
		conf.CivilianRooms = append(conf.CivilianRooms, &domain.CivilianRoom{
			ID:           rd.ID,
			Label:        rd.Label,
			Participants: append([]uuid.UUID(nil), rd.Participants...),
		})
	}
	return conf
}

func buildParticipant(pd core.ParticipantDetails, hp *core.HearingParticipant) *domain.Participant {
	p := &domain.Participant{
		ID:           pd.ID,
		RefID:        pd.RefID,
		Username:     pd.Username,
		DisplayName:  pd.DisplayName,
		FirstName:    pd.FirstName,
		LastName:     pd.LastName,
		ContactEmail: pd.ContactEmail,
		Role:         domain.Role(pd.UserRole),
		UserRole:     domain.ParseUserRole(pd.UserRole),
		HearingRole:  pd.HearingRole,
		Status:       domain.ParticipantStatus(pd.Status),
	}
	if p.Status == "" {
		p.Status = domain.ParticipantNotSignedIn
	}
	if pd.CurrentRoom != nil {
		p.CurrentRoom = pd.CurrentRoom.Label
	}
	for _, lp := range pd.LinkedParticipants {
		p.LinkedParticipants = append(p.LinkedParticipants, domain.LinkedParticipant{
			LinkedID: lp.LinkedID,
			LinkType: domain.LinkType(lp.Type),
		})
	}
	if hp != nil {
		p.ExternalReferenceID = hp.ExternalReferenceID
		p.ProtectFrom = hp.ProtectFromList()
	}
	return p
}

func buildEndpoint(ed core.EndpointDetails, he *core.HearingEndpoint) *domain.Endpoint {
	e := &domain.Endpoint{
		ID:              ed.ID,
		DisplayName:     ed.DisplayName,
		SipAddress:      ed.SipAddress,
		DefenceAdvocate: ed.DefenceAdvocate,
		Status:          domain.EndpointStatus(ed.Status),
	}
	if e.Status == "" {
		e.Status = domain.EndpointNotYetJoined
	}
	if ed.CurrentRoom != nil {
		e.CurrentRoom = ed.CurrentRoom.Label
	}
	if he != nil {
		e.ExternalReferenceID = he.ExternalReferenceID
		e.ProtectFrom = he.ProtectFromList()
	}
	return e
}

func findHearingParticipant(h *core.HearingDetails, refID uuid.UUID) *core.HearingParticipant {
	for i := range h.Participants {
		if h.Participants[i].ID == refID {
			return &h.Participants[i]
		}
	}
	return nil
}

// Endpoints have no shared id between the two services; the sip address is
// the stable key, display name the fallback.
func findHearingEndpoint(h *core.HearingDetails, ed core.EndpointDetails) *core.HearingEndpoint {
	for i := range h.Endpoints {
		if ed.SipAddress != "" && strings.EqualFold(h.Endpoints[i].SipAddress, ed.SipAddress) {
			return &h.Endpoints[i]
		}
	}
	for i := range h.Endpoints {
		if h.Endpoints[i].DisplayName == ed.DisplayName {
			return &h.Endpoints[i]
		}
	}
	return nil
}
