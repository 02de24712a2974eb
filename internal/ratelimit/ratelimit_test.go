package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterEnforcesMinuteBudget(t *testing.T) {
	rl := NewRateLimiter(3, 100, 1000, true)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.AllowRequest(), "request %d should be admitted", i+1)
	}
	assert.False(t, rl.AllowRequest(), "fourth request in the same minute should be rejected")
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(1, 1, 1, false)

	for i := 0; i < 10; i++ {
		assert.True(t, rl.AllowRequest())
	}

	stats := rl.GetStats()
	assert.False(t, stats.Enabled)
	assert.Zero(t, stats.RequestsLastMinute)
}

func TestRateLimiterZeroBudgetDisablesWindow(t *testing.T) {
	rl := NewRateLimiter(0, 0, 2, true)

	assert.True(t, rl.AllowRequest())
	assert.True(t, rl.AllowRequest())
	assert.False(t, rl.AllowRequest(), "daily budget of 2 should reject the third request")
}

func TestRateLimiterStats(t *testing.T) {
	rl := NewRateLimiter(30, 600, 2000, true)

	rl.AllowRequest()
	rl.AllowRequest()

	stats := rl.GetStats()
	assert.True(t, stats.Enabled)
	assert.Equal(t, 2, stats.RequestsLastMinute)
	assert.Equal(t, 2, stats.RequestsLastHour)
	assert.Equal(t, 2, stats.RequestsLastDay)
	assert.Equal(t, 30, stats.LimitPerMinute)
	assert.Equal(t, 28, stats.RemainingThisMinute)
	assert.Equal(t, 598, stats.RemainingThisHour)
	assert.Equal(t, 1998, stats.RemainingThisDay)
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewRateLimiter(2, 2, 2, true)

	rl.AllowRequest()
	rl.AllowRequest()
	assert.False(t, rl.AllowRequest())

	rl.Reset()
	assert.True(t, rl.AllowRequest())
}

func TestRegistryLimiterPacesRequests(t *testing.T) {
	rl := NewRegistryLimiter(1, 50*time.Millisecond, 0)

	start := time.Now()
	rl.Acquire()
	rl.Release()
	rl.Acquire()
	rl.Release()
	elapsed := time.Since(start)

	// Second acquire must wait out the base delay since the first
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}

func TestRegistryLimiterSingleInFlight(t *testing.T) {
	rl := NewRegistryLimiter(1, 0, 0)

	rl.Acquire()
	assert.Equal(t, 1, rl.InFlight())

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		rl.Acquire()
		close(done)
		rl.Release()
	}()

	select {
	case <-done:
		t.Fatal("second acquire should block while the first is in flight")
	case <-time.After(150 * time.Millisecond):
	}

	rl.Release()
	wg.Wait()
	assert.Equal(t, 0, rl.InFlight())
}
