package ratelimit

import (
	"sync"
	"time"
)

// slidingWindow counts events inside a rolling interval
type slidingWindow struct {
	span   time.Duration
	limit  int
	events []time.Time
}

func (w *slidingWindow) prune(now time.Time) {
	cutoff := now.Add(-w.span)
	kept := w.events[:0]
	for _, t := range w.events {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.events = kept
}

func (w *slidingWindow) full() bool {
	return w.limit > 0 && len(w.events) >= w.limit
}

func (w *slidingWindow) remaining() int {
	if r := w.limit - len(w.events); r > 0 {
		return r
	}
	return 0
}

// RateLimiter enforces per-minute, per-hour and per-day request budgets
// for the verification endpoints so a busy admin session cannot push the
// service past the registry's tolerance.
type RateLimiter struct {
	enabled bool
	minute  slidingWindow
	hour    slidingWindow
	day     slidingWindow
	mu      sync.Mutex
}

// NewRateLimiter creates a limiter with the given budgets. A budget of 0
// disables that window.
func NewRateLimiter(perMinute, perHour, perDay int, enabled bool) *RateLimiter {
	return &RateLimiter{
		enabled: enabled,
		minute:  slidingWindow{span: time.Minute, limit: perMinute},
		hour:    slidingWindow{span: time.Hour, limit: perHour},
		day:     slidingWindow{span: 24 * time.Hour, limit: perDay},
	}
}

// AllowRequest records and admits a request if every window has budget
// left. Returns false when any limit is exceeded.
func (rl *RateLimiter) AllowRequest() bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.minute.prune(now)
	rl.hour.prune(now)
	rl.day.prune(now)

	if rl.minute.full() || rl.hour.full() || rl.day.full() {
		return false
	}

	rl.minute.events = append(rl.minute.events, now)
	rl.hour.events = append(rl.hour.events, now)
	rl.day.events = append(rl.day.events, now)
	return true
}

// Stats contains rate limiter statistics
type Stats struct {
	Enabled             bool `json:"enabled"`
	RequestsLastMinute  int  `json:"requests_last_minute"`
	RequestsLastHour    int  `json:"requests_last_hour"`
	RequestsLastDay     int  `json:"requests_last_day"`
	LimitPerMinute      int  `json:"limit_per_minute"`
	LimitPerHour        int  `json:"limit_per_hour"`
	LimitPerDay         int  `json:"limit_per_day"`
	RemainingThisMinute int  `json:"remaining_this_minute"`
	RemainingThisHour   int  `json:"remaining_this_hour"`
	RemainingThisDay    int  `json:"remaining_this_day"`
}

// GetStats returns a point-in-time view of the limiter
func (rl *RateLimiter) GetStats() Stats {
	if !rl.enabled {
		return Stats{Enabled: false}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.minute.prune(now)
	rl.hour.prune(now)
	rl.day.prune(now)

	return Stats{
		Enabled:             true,
		RequestsLastMinute:  len(rl.minute.events),
		RequestsLastHour:    len(rl.hour.events),
		RequestsLastDay:     len(rl.day.events),
		LimitPerMinute:      rl.minute.limit,
		LimitPerHour:        rl.hour.limit,
		LimitPerDay:         rl.day.limit,
		RemainingThisMinute: rl.minute.remaining(),
		RemainingThisHour:   rl.hour.remaining(),
		RemainingThisDay:    rl.day.remaining(),
	}
}

// Reset clears all tracked requests (useful for testing)
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.minute.events = nil
	rl.hour.events = nil
	rl.day.events = nil
}
