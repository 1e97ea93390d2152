package domain

type ConferenceStatus string

const (
	ConferenceNotStarted ConferenceStatus = "NotStarted"
	ConferenceInSession  ConferenceStatus = "InSession"
	ConferencePaused     ConferenceStatus = "Paused"
	ConferenceSuspended  ConferenceStatus = "Suspended"
	ConferenceClosed     ConferenceStatus = "Closed"
)

type ParticipantStatus string

const (
	ParticipantNotSignedIn    ParticipantStatus = "NotSignedIn"
	ParticipantJoining        ParticipantStatus = "Joining"
	ParticipantAvailable      ParticipantStatus = "Available"
	ParticipantInHearing      ParticipantStatus = "InHearing"
	ParticipantInConsultation ParticipantStatus = "InConsultation"
	ParticipantDisconnected   ParticipantStatus = "Disconnected"
)

func (s ParticipantStatus) Valid() bool {
	switch s {
	case ParticipantNotSignedIn, ParticipantJoining, ParticipantAvailable,
		ParticipantInHearing, ParticipantInConsultation, ParticipantDisconnected:
		return true
	}
	return false
}

type EndpointStatus string

const (
	EndpointNotYetJoined   EndpointStatus = "NotYetJoined"
	EndpointConnected      EndpointStatus = "Connected"
	EndpointInConsultation EndpointStatus = "InConsultation"
	EndpointDisconnected   EndpointStatus = "Disconnected"
)

// RoomType is the kind of room an entity is in, as reported by upstream.
type RoomType string

const (
	WaitingRoom          RoomType = "WaitingRoom"
	HearingRoom          RoomType = "HearingRoom"
	ConsultationRoomType RoomType = "ConsultationRoom"
	CivilianRoomType     RoomType = "CivilianRoom"
)
