package rera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseBulkInput(t *testing.T) {
	ids := ParseBulkInput("P001\n\nP002\n   \n  P003  \n")
	assert.Equal(t, []string{"P001", "P002", "P003"}, ids)

	assert.Empty(t, ParseBulkInput(""))
	assert.Empty(t, ParseBulkInput("\n  \n\n"))
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, DedupeIDs([]string{"A", "B", "A", "C", "B"}))
	assert.Equal(t, []string{"A"}, DedupeIDs([]string{"A", "A", "A"}))
	assert.Empty(t, DedupeIDs(nil))
}

func TestNormalizeBulkInput(t *testing.T) {
	ids := NormalizeBulkInput("A\n\nB\n  \nA")
	assert.Equal(t, []string{"A", "B"}, ids)
}

func TestCircuitBreakerConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Hour)

	assert.True(t, cb.CanProceed())

	cb.RecordFailure(429)
	assert.True(t, cb.CanProceed(), "one failure should not trip the breaker")

	cb.RecordFailure(429)
	assert.False(t, cb.CanProceed(), "two consecutive throttle errors should trip the breaker")
}

func TestCircuitBreakerSuccessResetsStreak(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Hour)

	cb.RecordFailure(500)
	cb.RecordSuccess()
	cb.RecordFailure(500)

	assert.True(t, cb.CanProceed(), "success between failures breaks the consecutive streak")
}

func TestCircuitBreakerClientErrorsNeverTripStreak(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Hour)

	// 404-style failures on individual records are not a registry outage
	cb.RecordFailure(404)
	cb.RecordFailure(404)
	cb.RecordFailure(404)

	assert.True(t, cb.CanProceed())
}

func TestCircuitBreakerFailureRate(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Hour)

	// 9 failures out of 20 calls = 45%, interleaved so the consecutive
	// counter never reaches two
	for i := 0; i < 8; i++ {
		cb.RecordFailure(404)
		cb.RecordSuccess()
	}
	for i := 0; i < 3; i++ {
		cb.RecordSuccess()
	}
	cb.RecordFailure(404)

	assert.False(t, cb.CanProceed(), "40%% failure rate over 20 calls should trip the breaker")
}

func TestCircuitBreakerHalfOpensAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(2, 10*time.Millisecond)

	cb.RecordFailure(500)
	cb.RecordFailure(500)
	assert.False(t, cb.CanProceed())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, cb.CanProceed(), "breaker should half-open after the reset timeout")

	isOpen, failures, total := cb.Status()
	assert.False(t, isOpen)
	assert.Zero(t, failures)
	assert.Zero(t, total)
}
