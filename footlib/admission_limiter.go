package footlib

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultAdmissionWindow is a duration of the fixed window.
	DefaultAdmissionWindow = 15 * time.Minute

	// DefaultAdmissionMaxRequests is a number of requests allowed for
	// a single client within a window.
	DefaultAdmissionMaxRequests = 100
)

type admissionWindow struct {
	windowStart time.Time
	count       int
}

type admissionShard struct {
	mutex   sync.Mutex
	windows map[string]*admissionWindow
}

// MemoryAdmissionLimiter is a fixed window counter kept in process
// memory. It does not synchronize with other processes.
//
// Windows are not evicted: an identity which was seen once stays in
// memory until process exits.
type MemoryAdmissionLimiter struct {
	window      time.Duration
	maxRequests int
	now         func() time.Time
	shards      [shardsCount]admissionShard
}

// Allow counts a request of the identity and returns true if it fits
// into a quota of the current window. Error is always nil.
func (m *MemoryAdmissionLimiter) Allow(_ context.Context, identity string) (bool, error) {
	now := m.now()
	shard := &m.shards[shardIndex(identity)]

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	win, ok := shard.windows[identity]
	if !ok {
		win = &admissionWindow{windowStart: now}
		shard.windows[identity] = win
	}

	if !now.Before(win.windowStart.Add(m.window)) {
		win.windowStart = now
		win.count = 0
	}

	win.count++

	return win.count <= m.maxRequests, nil
}

// Count returns a number of requests of the identity counted within the
// current window.
func (m *MemoryAdmissionLimiter) Count(identity string) int {
	now := m.now()
	shard := &m.shards[shardIndex(identity)]

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	win, ok := shard.windows[identity]
	if !ok || !now.Before(win.windowStart.Add(m.window)) {
		return 0
	}

	return win.count
}

// RetryAfter returns a time left until the current window of the
// identity is over. Error is always nil.
func (m *MemoryAdmissionLimiter) RetryAfter(_ context.Context, identity string) (time.Duration, error) {
	now := m.now()
	shard := &m.shards[shardIndex(identity)]

	shard.mutex.Lock()
	defer shard.mutex.Unlock()

	win, ok := shard.windows[identity]
	if !ok {
		return 0, nil
	}

	if left := win.windowStart.Add(m.window).Sub(now); left > 0 {
		return left, nil
	}

	return 0, nil
}

// Window returns a duration of the window.
func (m *MemoryAdmissionLimiter) Window() time.Duration {
	return m.window
}

// NewMemoryAdmissionLimiter creates a new limiter. Non-positive values
// are replaced with defaults.
func NewMemoryAdmissionLimiter(window time.Duration, maxRequests int) *MemoryAdmissionLimiter {
	if window <= 0 {
		window = DefaultAdmissionWindow
	}

	if maxRequests <= 0 {
		maxRequests = DefaultAdmissionMaxRequests
	}

	rv := &MemoryAdmissionLimiter{
		window:      window,
		maxRequests: maxRequests,
		now:         time.Now,
	}

	for i := range rv.shards {
		rv.shards[i].windows = map[string]*admissionWindow{}
	}

	return rv
}
