package core

import (
	"context"
	"errors"
)

// ConnectionID identifies one live client connection.
type ConnectionID string

var ErrUnknownConnection = errors.New("unknown connection")

// Event is one notification delivered to a group. Name is the client-side
// handler the payload is addressed to.
type Event struct {
	Name    string `json:"type"`
	Payload any    `json:"payload"`
}

// GroupTransport is the notification transport the hub fans out through.
// Implementations must be safe for concurrent use.
type GroupTransport interface {
	AddToGroup(ctx context.Context, conn ConnectionID, group string) error
	RemoveFromGroup(ctx context.Context, conn ConnectionID, group string) error
	SendToGroup(ctx context.Context, group string, event Event) error
}
