package domain

import "github.com/google/uuid"

// Endpoint is a non-human join point such as a courtroom video unit.
type Endpoint struct {
	ID                  uuid.UUID      `json:"id"`
	DisplayName         string         `json:"display_name"`
	SipAddress          string         `json:"sip_address,omitempty"`
	ExternalReferenceID string         `json:"external_reference_id,omitempty"`
	DefenceAdvocate     string         `json:"defence_advocate,omitempty"`
	ProtectFrom         []string       `json:"protect_from,omitempty"`
	Status              EndpointStatus `json:"status"`
	CurrentRoom         string         `json:"current_room,omitempty"`
}

func (e *Endpoint) screeningRef() string    { return e.ExternalReferenceID }
func (e *Endpoint) protectedFrom() []string { return e.ProtectFrom }
