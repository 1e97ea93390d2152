package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterSlidingWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("c1"))
	assert.True(t, rl.Allow("c1"))
	assert.False(t, rl.Allow("c1"))
	assert.True(t, rl.Allow("c2"), "keys are independent")

	now = now.Add(1001 * time.Millisecond)
	assert.True(t, rl.Allow("c1"), "window slid past old attempts")

	rl.Forget("c1")
	assert.True(t, rl.Allow("c1"))
	assert.True(t, rl.Allow("c1"))
}

func TestNilRateLimiterAllowsEverything(t *testing.T) {
	var rl *RateLimiter
	assert.True(t, rl.Allow("c1"))
	assert.NotPanics(t, func() { rl.Forget("c1") })
}
