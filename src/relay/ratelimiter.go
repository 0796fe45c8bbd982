package relay

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

type rateWindow struct {
	count int
	start time.Time
}

// Fixed-window request counter keyed by sender. Expired windows are
// evicted by the cache's janitor so idle senders don't accumulate.
type RateLimiter struct {
	limit  int
	window time.Duration

	mtx     sync.Mutex
	windows *cache.Cache
}

func NewRateLimiter(limit int, window time.Duration) (self *RateLimiter) {
	self = new(RateLimiter)
	self.limit = limit
	self.window = window
	self.windows = cache.New(window, 2*window)
	return
}

// Returns the remaining wait until the sender's window resets when the
// request is rejected
func (self *RateLimiter) Allow(sender string) (ok bool, retryAfter time.Duration) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	now := time.Now()

	v, found := self.windows.Get(sender)
	if !found {
		self.windows.Set(sender, &rateWindow{count: 1, start: now}, self.window)
		return true, 0
	}

	state := v.(*rateWindow)
	if now.Sub(state.start) >= self.window {
		state.count = 1
		state.start = now
		self.windows.Set(sender, state, self.window)
		return true, 0
	}

	if state.count >= self.limit {
		return false, state.start.Add(self.window).Sub(now)
	}

	state.count++
	return true, 0
}
