package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBlocksAboveLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("h1"), "attempt %d should pass", i)
	}
	assert.False(t, rl.Allow("h1"))

	// Other keys have their own window.
	assert.True(t, rl.Allow("h2"))
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(2, 30*time.Millisecond)

	assert.True(t, rl.Allow("h1"))
	assert.True(t, rl.Allow("h1"))
	assert.False(t, rl.Allow("h1"))

	time.Sleep(40 * time.Millisecond)
	assert.True(t, rl.Allow("h1"))
}

func TestRateLimiterForget(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.Allow("h1"))
	assert.False(t, rl.Allow("h1"))

	rl.Forget("h1")
	assert.True(t, rl.Allow("h1"))
}
