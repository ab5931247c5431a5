package task

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Implement operation retrying with a per-attempt timeout.
// Defaults match the external call policy: two attempts, exponential
// backoff starting at 100ms capped at 500ms, jitter on.
type Retry struct {
	ctx             context.Context
	maxAttempts     uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	attemptTimeout  time.Duration
	onError         func(error)
}

func NewRetry() *Retry {
	return &Retry{
		ctx:             context.Background(),
		maxAttempts:     2,
		initialInterval: 100 * time.Millisecond,
		maxInterval:     500 * time.Millisecond,
	}
}

func (self *Retry) WithContext(ctx context.Context) *Retry {
	self.ctx = ctx
	return self
}

func (self *Retry) WithMaxAttempts(maxAttempts uint64) *Retry {
	self.maxAttempts = maxAttempts
	return self
}

func (self *Retry) WithInitialInterval(initialInterval time.Duration) *Retry {
	self.initialInterval = initialInterval
	return self
}

func (self *Retry) WithMaxInterval(maxInterval time.Duration) *Retry {
	self.maxInterval = maxInterval
	return self
}

func (self *Retry) WithAttemptTimeout(attemptTimeout time.Duration) *Retry {
	self.attemptTimeout = attemptTimeout
	return self
}

func (self *Retry) WithOnError(v func(error)) *Retry {
	self.onError = v
	return self
}

func (self *Retry) onNotify(err error, duration time.Duration) {
	if self.onError != nil {
		self.onError(err)
	}
}

// Run executes f until it succeeds or attempts run out.
// Each attempt gets its own timeout context derived from the retry context.
func (self *Retry) Run(f func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = self.initialInterval
	b.MaxInterval = self.maxInterval
	b.Multiplier = 2
	b.MaxElapsedTime = 0

	attempt := func() error {
		ctx := self.ctx
		if self.attemptTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(self.ctx, self.attemptTimeout)
			defer cancel()
		}
		return f(ctx)
	}

	var policy backoff.BackOff = backoff.WithContext(b, self.ctx)
	if self.maxAttempts > 0 {
		policy = backoff.WithMaxRetries(policy, self.maxAttempts-1)
	}

	return backoff.RetryNotify(attempt, policy, self.onNotify)
}
