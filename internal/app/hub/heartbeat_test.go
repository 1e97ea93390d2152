package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/Hearings/internal/core"
)

func TestHealthOf(t *testing.T) {
	tests := []struct {
		name string
		hb   core.Heartbeat
		want HeartbeatHealth
	}{
		{name: "given no loss when graded then good", hb: core.Heartbeat{}, want: HealthGood},
		{name: "given loss under ten percent when graded then good", hb: core.Heartbeat{OutgoingAudioPercentageLost: 9.9}, want: HealthGood},
		{name: "given ten percent loss when graded then poor", hb: core.Heartbeat{IncomingAudioPercentageLost: 10}, want: HealthPoor},
		{name: "given fifteen percent loss on any stream when graded then bad", hb: core.Heartbeat{OutgoingVideoPercentageLost: 1, IncomingVideoPercentageLost: 15}, want: HealthBad},
		{name: "given negative loss when graded then none", hb: core.Heartbeat{OutgoingAudioPercentageLost: -1, OutgoingVideoPercentageLost: -1, IncomingAudioPercentageLost: -1, IncomingVideoPercentageLost: -1}, want: HealthNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HealthOf(tt.hb))
		})
	}
}
