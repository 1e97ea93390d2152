package hub

import "github.com/dkeye/Hearings/internal/core"

type HeartbeatHealth string

const (
	HealthNone HeartbeatHealth = "None"
	HealthGood HeartbeatHealth = "Good"
	HealthPoor HeartbeatHealth = "Poor"
	HealthBad  HeartbeatHealth = "Bad"
)

const (
	poorPacketLoss = 10.0
	badPacketLoss  = 15.0
)

// HealthOf grades a heartbeat by its worst packet loss percentage.
func HealthOf(hb core.Heartbeat) HeartbeatHealth {
	worst := max(
		hb.OutgoingAudioPercentageLost,
		hb.OutgoingVideoPercentageLost,
		hb.IncomingAudioPercentageLost,
		hb.IncomingVideoPercentageLost,
	)
	switch {
	case worst < 0:
		return HealthNone
	case worst >= badPacketLoss:
		return HealthBad
	case worst >= poorPacketLoss:
		return HealthPoor
	default:
		return HealthGood
	}
}
