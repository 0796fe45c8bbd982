package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitBoundary(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _ := limiter.Allow("sender")
		assert.True(t, ok, "request %d should pass", i+1)
	}

	ok, retryAfter := limiter.Allow("sender")
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Minute)
}

func TestRateLimitPerSender(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	ok, _ := limiter.Allow("a")
	assert.True(t, ok)
	ok, _ = limiter.Allow("a")
	assert.False(t, ok)

	ok, _ = limiter.Allow("b")
	assert.True(t, ok)
}

func TestRateLimitWindowResets(t *testing.T) {
	limiter := NewRateLimiter(1, 20*time.Millisecond)

	ok, _ := limiter.Allow("sender")
	assert.True(t, ok)
	ok, _ = limiter.Allow("sender")
	assert.False(t, ok)

	time.Sleep(25 * time.Millisecond)

	ok, _ = limiter.Allow("sender")
	assert.True(t, ok)
}

func TestRateLimitConcurrentAccess(t *testing.T) {
	limiter := NewRateLimiter(100, time.Minute)

	done := make(chan int)
	for i := 0; i < 4; i++ {
		go func() {
			allowed := 0
			for j := 0; j < 50; j++ {
				ok, _ := limiter.Allow("sender")
				if ok {
					allowed++
				}
			}
			done <- allowed
		}()
	}

	total := 0
	for i := 0; i < 4; i++ {
		total += <-done
	}

	// 200 attempts against a limit of 100
	assert.Equal(t, 100, total)
}
