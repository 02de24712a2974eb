package ratelimit

import (
	"math/rand"
	"sync"
	"time"
)

// RegistryLimiter paces outbound requests to the state RERA registry.
// The registry is a shared government service: one request in flight at a
// time, a minimum base delay between dispatches, and a little jitter so
// bulk sweeps never land on a fixed cadence.
type RegistryLimiter struct {
	maxInFlight     int
	currentInFlight int
	baseDelay       time.Duration
	jitter          time.Duration
	lastRequest     time.Time
	mu              sync.Mutex
}

// NewRegistryLimiter creates a pacing limiter for registry calls
func NewRegistryLimiter(maxInFlight int, baseDelay, jitter time.Duration) *RegistryLimiter {
	return &RegistryLimiter{
		maxInFlight: maxInFlight,
		baseDelay:   baseDelay,
		jitter:      jitter,
		lastRequest: time.Now(),
	}
}

// Acquire blocks until it is safe to make a registry request
func (rl *RegistryLimiter) Acquire() {
	rl.mu.Lock()

	for rl.currentInFlight >= rl.maxInFlight {
		rl.mu.Unlock()
		time.Sleep(100 * time.Millisecond)
		rl.mu.Lock()
	}

	required := rl.baseDelay
	if rl.jitter > 0 {
		required += time.Duration(rand.Int63n(int64(rl.jitter)))
	}

	if elapsed := time.Since(rl.lastRequest); elapsed < required {
		time.Sleep(required - elapsed)
	}

	rl.currentInFlight++
	rl.lastRequest = time.Now()
	rl.mu.Unlock()
}

// Release marks a registry request as completed
func (rl *RegistryLimiter) Release() {
	rl.mu.Lock()
	rl.currentInFlight--
	rl.mu.Unlock()
}

// InFlight returns the current in-flight request count
func (rl *RegistryLimiter) InFlight() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.currentInFlight
}
