package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dkeye/Hearings/internal/domain"
)

// VideoAPI is the video-session provider.
type VideoAPI interface {
	GetConferenceDetails(ctx context.Context, conferenceID uuid.UUID) (*ConferenceDetails, error)
	// GetConferencesToday lists the conferences an admin or staff member
	// watches on connect.
	GetConferencesToday(ctx context.Context, username string) ([]uuid.UUID, error)
	AddInstantMessage(ctx context.Context, conferenceID uuid.UUID, msg InstantMessage) error
	SaveHeartbeat(ctx context.Context, conferenceID, participantID uuid.UUID, hb Heartbeat) error
}

// BookingAPI is the booking / hearing-details provider.
type BookingAPI interface {
	GetHearingDetails(ctx context.Context, hearingID uuid.UUID) (*HearingDetails, error)
}

// ProfileProvider resolves a username to its profile and roles.
type ProfileProvider interface {
	GetProfile(ctx context.Context, username string) (*domain.UserProfile, error)
}

type ConferenceDetails struct {
	ID                       uuid.UUID                     `json:"id"`
	HearingID                uuid.UUID                     `json:"hearing_id"`
	CaseName                 string                        `json:"case_name"`
	CaseNumber               string                        `json:"case_number"`
	CaseType                 string                        `json:"case_type"`
	ScheduledDateTime        time.Time                     `json:"scheduled_date_time"`
	ScheduledDurationMinutes int                           `json:"scheduled_duration"`
	Status                   string                        `json:"current_status"`
	HearingVenueName         string                        `json:"hearing_venue_name"`
	AudioRecordingRequired   bool                          `json:"audio_recording_required"`
	IngestURL                string                        `json:"ingest_url"`
	Supplier                 string                        `json:"supplier"`
	Participants             []ParticipantDetails          `json:"participants"`
	Endpoints                []EndpointDetails             `json:"endpoints"`
	TelephoneParticipants    []TelephoneParticipantDetails `json:"telephone_participants"`
	CivilianRooms            []CivilianRoomDetails         `json:"civilian_rooms"`
}

type RoomDetails struct {
	Label  string `json:"label"`
	Locked bool   `json:"locked"`
}

type LinkedParticipantDetails struct {
	LinkedID uuid.UUID `json:"linked_id"`
	Type     string    `json:"type"`
}

type ParticipantDetails struct {
	ID                 uuid.UUID                  `json:"id"`
	RefID              uuid.UUID                  `json:"ref_id"`
	Username           string                     `json:"username"`
	DisplayName        string                     `json:"display_name"`
	FirstName          string                     `json:"first_name"`
	LastName           string                     `json:"last_name"`
	ContactEmail       string                     `json:"contact_email"`
	UserRole           string                     `json:"user_role"`
	HearingRole        string                     `json:"hearing_role"`
	Status             string                     `json:"current_status"`
	CurrentRoom        *RoomDetails               `json:"current_room"`
	LinkedParticipants []LinkedParticipantDetails `json:"linked_participants"`
}

type EndpointDetails struct {
	ID              uuid.UUID    `json:"id"`
	DisplayName     string       `json:"display_name"`
	SipAddress      string       `json:"sip_address"`
	DefenceAdvocate string       `json:"defence_advocate"`
	Status          string       `json:"status"`
	CurrentRoom     *RoomDetails `json:"current_room"`
}

type TelephoneParticipantDetails struct {
	ID          uuid.UUID `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Room        string    `json:"room"`
	Connected   bool      `json:"connected"`
}

type CivilianRoomDetails struct {
	ID           int64       `json:"id"`
	Label        string      `json:"label"`
	Participants []uuid.UUID `json:"participants"`
}

type HearingDetails struct {
	ID           uuid.UUID            `json:"id"`
	Participants []HearingParticipant `json:"participants"`
	Endpoints    []HearingEndpoint    `json:"endpoints"`
}

type Screening struct {
	ProtectFrom []string `json:"protect_from"`
}

type HearingParticipant struct {
	ID                  uuid.UUID  `json:"id"`
	Username            string     `json:"username"`
	ExternalReferenceID string     `json:"external_reference_id"`
	Screening           *Screening `json:"screening_requirement"`
}

type HearingEndpoint struct {
	ID                  uuid.UUID  `json:"id"`
	DisplayName         string     `json:"display_name"`
	SipAddress          string     `json:"sip"`
	ExternalReferenceID string     `json:"external_reference_id"`
	Screening           *Screening `json:"screening_requirement"`
}

func (s *Screening) protectFrom() []string {
	if s == nil {
		return nil
	}
	return s.ProtectFrom
}

// ProtectFromList tolerates a participant without screening requirements.
func (p HearingParticipant) ProtectFromList() []string { return p.Screening.protectFrom() }

func (e HearingEndpoint) ProtectFromList() []string { return e.Screening.protectFrom() }

type InstantMessage struct {
	From        string    `json:"from"`
	To          string    `json:"to"`
	MessageText string    `json:"message_text"`
	MessageUUID uuid.UUID `json:"message_uuid"`
}

type Heartbeat struct {
	OutgoingAudioPercentageLost float64 `json:"outgoing_audio_percentage_lost"`
	OutgoingVideoPercentageLost float64 `json:"outgoing_video_percentage_lost"`
	IncomingAudioPercentageLost float64 `json:"incoming_audio_percentage_lost"`
	IncomingVideoPercentageLost float64 `json:"incoming_video_percentage_lost"`
	BrowserName                 string  `json:"browser_name"`
	BrowserVersion              string  `json:"browser_version"`
	OperatingSystem             string  `json:"operating_system"`
	OperatingSystemVersion      string  `json:"operating_system_version"`
	Device                      string  `json:"device"`
}
