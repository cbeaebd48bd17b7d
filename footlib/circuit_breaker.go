package footlib

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

type circuitBreakerCallback func(context.Context) (*http.Response, error)

const (
	circuitBreakerStateClosed uint32 = iota
	circuitBreakerStateHalfOpened
	circuitBreakerStateOpened
)

// circuitBreaker guards a single upstream. There are no background
// timers: state transitions which depend on time are evaluated lazily,
// when the next call arrives.
type circuitBreaker struct {
	mutex sync.Mutex
	now   func() time.Time

	state       uint32
	failures    uint32
	lastFailure time.Time
	openedAt    time.Time
	probing     bool

	openThreshold        uint32
	halfOpenTimeout      time.Duration
	resetFailuresTimeout time.Duration
}

func (c *circuitBreaker) Do(ctx context.Context, callback circuitBreakerCallback) (*http.Response, error) {
	if !c.acquire() {
		return nil, ErrCircuitBreakerOpened
	}

	resp, err := callback(ctx)

	switch {
	case errors.Is(err, ErrCircuitBreakerIgnore):
		c.release()

		return resp, err
	case ctx.Err() != nil:
		c.release()
		closeResponse(resp)

		return nil, ctx.Err()
	}

	c.report(err == nil)

	return resp, err
}

// acquire tells if a call may go to upstream. Only one call at a time
// is allowed in half-opened state.
func (c *circuitBreaker) acquire() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()

	if c.state == circuitBreakerStateOpened {
		if now.Sub(c.openedAt) < c.halfOpenTimeout {
			return false
		}

		c.state = circuitBreakerStateHalfOpened
		c.probing = false
	}

	if c.state == circuitBreakerStateHalfOpened {
		if c.probing {
			return false
		}

		c.probing = true
	}

	return true
}

func (c *circuitBreaker) release() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state == circuitBreakerStateHalfOpened {
		c.probing = false
	}
}

func (c *circuitBreaker) report(success bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()

	switch c.state {
	case circuitBreakerStateHalfOpened:
		c.probing = false

		if success {
			c.state = circuitBreakerStateClosed
			c.failures = 0
		} else {
			c.open(now)
		}
	case circuitBreakerStateClosed:
		if success {
			c.failures = 0

			return
		}

		if now.Sub(c.lastFailure) >= c.resetFailuresTimeout {
			c.failures = 0
		}

		c.failures++
		c.lastFailure = now

		if c.failures > c.openThreshold {
			c.open(now)
		}
	}
}

func (c *circuitBreaker) open(now time.Time) {
	c.state = circuitBreakerStateOpened
	c.openedAt = now
	c.failures = 0
}

func newCircuitBreaker(openThreshold uint32,
	halfOpenTimeout, resetFailuresTimeout time.Duration) *circuitBreaker {
	return &circuitBreaker{
		now:                  time.Now,
		state:                circuitBreakerStateClosed,
		openThreshold:        openThreshold,
		halfOpenTimeout:      halfOpenTimeout,
		resetFailuresTimeout: resetFailuresTimeout,
	}
}
