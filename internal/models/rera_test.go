package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetNextRetryDelay(t *testing.T) {
	assert.Equal(t, 5*time.Minute, GetNextRetryDelay(0))
	assert.Equal(t, 15*time.Minute, GetNextRetryDelay(1))
	assert.Equal(t, 1*time.Hour, GetNextRetryDelay(2))
	assert.Equal(t, 4*time.Hour, GetNextRetryDelay(3))
	assert.Equal(t, 12*time.Hour, GetNextRetryDelay(4))

	// Past the ladder it stays at the longest delay
	assert.Equal(t, 12*time.Hour, GetNextRetryDelay(5))
	assert.Equal(t, 12*time.Hour, GetNextRetryDelay(100))
}

func TestReraRecordIsStale(t *testing.T) {
	now := time.Now()
	window := 30 * 24 * time.Hour

	fresh := now.Add(-24 * time.Hour)
	record := &ReraRecord{VerificationStatus: VerificationVerified, LastVerifiedAt: &fresh}
	assert.False(t, record.IsStale(window, now))

	old := now.Add(-31 * 24 * time.Hour)
	record.LastVerifiedAt = &old
	assert.True(t, record.IsStale(window, now))

	// Anything not verified is stale regardless of timestamp
	record.LastVerifiedAt = &fresh
	record.VerificationStatus = VerificationFailed
	assert.True(t, record.IsStale(window, now))

	record.VerificationStatus = VerificationVerified
	record.LastVerifiedAt = nil
	assert.True(t, record.IsStale(window, now))
}
