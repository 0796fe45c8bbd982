package task

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Implement operation retrying
type Retry struct {
	ctx                context.Context
	maxElapsedTime     time.Duration
	maxInterval        time.Duration
	initialInterval    time.Duration
	acceptableDuration time.Duration
	maxRetries         uint64
	onError            func(err error, isDurationAcceptable bool) error
}

func NewRetry() *Retry {
	return new(Retry)
}

func (self *Retry) WithMaxElapsedTime(maxElapsedTime time.Duration) *Retry {
	self.maxElapsedTime = maxElapsedTime
	return self
}

func (self *Retry) WithMaxInterval(maxInterval time.Duration) *Retry {
	self.maxInterval = maxInterval
	return self
}

func (self *Retry) WithInitialInterval(initialInterval time.Duration) *Retry {
	self.initialInterval = initialInterval
	return self
}

// Bounds the number of attempts to maxRetries+1
func (self *Retry) WithMaxRetries(maxRetries uint64) *Retry {
	self.maxRetries = maxRetries
	return self
}

// Time after which the onError callback gets isDurationAcceptable=false
func (self *Retry) WithAcceptableDuration(acceptableDuration time.Duration) *Retry {
	self.acceptableDuration = acceptableDuration
	return self
}

func (self *Retry) WithContext(ctx context.Context) *Retry {
	self.ctx = ctx
	return self
}

func (self *Retry) WithOnError(v func(err error, isDurationAcceptable bool) error) *Retry {
	self.onError = v
	return self
}

func (self *Retry) Run(f func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = self.maxElapsedTime
	b.MaxInterval = self.maxInterval
	if self.initialInterval > 0 {
		b.InitialInterval = self.initialInterval
	}

	ctx := self.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	var policy backoff.BackOff = backoff.WithContext(b, ctx)
	if self.maxRetries > 0 {
		policy = backoff.WithMaxRetries(policy, self.maxRetries)
	}

	started := time.Now()
	run := func() error {
		err := f()
		if err == nil {
			return nil
		}
		if self.onError != nil {
			isDurationAcceptable := self.acceptableDuration <= 0 ||
				time.Since(started) < self.acceptableDuration
			return self.onError(err, isDurationAcceptable)
		}
		return err
	}

	return backoff.Retry(run, policy)
}
