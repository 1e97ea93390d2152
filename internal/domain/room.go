package domain

import (
	"slices"

	"github.com/google/uuid"
)

// ConsultationRoom is an ad hoc room. It exists only while someone
// occupies it; occupants refer to it by Label.
type ConsultationRoom struct {
	Label  string `json:"label"`
	Locked bool   `json:"locked"`
}

// CivilianRoom is a virtual meeting room grouping a fixed set of participants.
type CivilianRoom struct {
	ID           int64       `json:"id"`
	Label        string      `json:"label"`
	Participants []uuid.UUID `json:"participants"`
}

func (r *CivilianRoom) HasParticipant(id uuid.UUID) bool {
	return slices.Contains(r.Participants, id)
}

// TelephoneParticipant joined over the phone; it is only ever in the
// waiting room or the hearing room.
type TelephoneParticipant struct {
	ID          uuid.UUID `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Room        RoomType  `json:"room"`
	Connected   bool      `json:"connected"`
}
