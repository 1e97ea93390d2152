package app

import "github.com/dkeye/Hearings/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickConnection
)

// Policy decides what happens to a connection whose send queue is full.
type Policy interface {
	OnBackPressure(conn core.ConnectionID, group string) BackpressureAction
}

// SimplePolicy drops slow clients; they reconnect and rejoin their groups.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(core.ConnectionID, string) BackpressureAction {
	return KickConnection
}

// DropPolicy keeps slow clients and loses the frame.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(core.ConnectionID, string) BackpressureAction {
	return DropFrame
}
