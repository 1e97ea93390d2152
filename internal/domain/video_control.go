package domain

type VideoControlStatus struct {
	IsSpotlighted     bool `json:"is_spotlighted"`
	IsLocalAudioMuted bool `json:"is_local_audio_muted"`
	IsLocalVideoMuted bool `json:"is_local_video_muted"`
}

// Equal is structural equality. Statuses have no ordering.
func (s VideoControlStatus) Equal(other VideoControlStatus) bool {
	return s == other
}

// ConferenceVideoControlStatuses maps participant id to its video control
// status for one conference. It is always written as a whole.
type ConferenceVideoControlStatuses struct {
	ParticipantIDToVideoControlStatusMap map[string]VideoControlStatus `json:"participant_id_to_video_control_status_map"`
}

func NewConferenceVideoControlStatuses() *ConferenceVideoControlStatuses {
	return &ConferenceVideoControlStatuses{
		ParticipantIDToVideoControlStatusMap: make(map[string]VideoControlStatus),
	}
}
