package rera

import (
	"log"
	"sync"
	"time"
)

// CircuitBreaker halts registry calls when the registry starts failing,
// so a portal outage or throttling episode doesn't burn the daily budget
// on requests that cannot succeed.
type CircuitBreaker struct {
	failureThreshold int
	resetTimeout     time.Duration

	failures            int
	successes           int
	totalRequests       int
	consecutiveFailures int
	isOpen              bool
	lastFailureTime     time.Time

	mu sync.Mutex
}

// NewCircuitBreaker creates a breaker that opens after failureThreshold
// failures (or a high failure rate) and half-opens after resetTimeout.
func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
	}
}

// RecordSuccess records a successful registry call
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.successes++
	cb.totalRequests++
	cb.consecutiveFailures = 0
}

// RecordFailure records a failed registry call. Two consecutive throttle
// or server errors open the breaker immediately; otherwise a 40% failure
// rate over 20 calls opens it.
func (cb *CircuitBreaker) RecordFailure(statusCode int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.consecutiveFailures++
	cb.totalRequests++
	cb.lastFailureTime = time.Now()

	if cb.consecutiveFailures >= 2 && (statusCode == 500 || statusCode == 429 || statusCode == 403) {
		cb.isOpen = true
		log.Printf("[RERA] circuit breaker open: %d consecutive %d errors from registry, halting for %v",
			cb.consecutiveFailures, statusCode, cb.resetTimeout)
		return
	}

	if cb.totalRequests >= 20 {
		failureRate := float64(cb.failures) / float64(cb.totalRequests)
		if failureRate >= 0.40 {
			cb.isOpen = true
			log.Printf("[RERA] circuit breaker open: failure rate %.1f%% (%d/%d), halting for %v",
				failureRate*100, cb.failures, cb.totalRequests, cb.resetTimeout)
		}
	}
}

// CanProceed reports whether registry calls are currently allowed
func (cb *CircuitBreaker) CanProceed() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.isOpen {
		return true
	}

	if time.Since(cb.lastFailureTime) > cb.resetTimeout {
		log.Printf("[RERA] circuit breaker half-open after %v", cb.resetTimeout)
		cb.isOpen = false
		cb.failures = 0
		cb.successes = 0
		cb.totalRequests = 0
		cb.consecutiveFailures = 0
		return true
	}

	return false
}

// Status returns the current breaker state
func (cb *CircuitBreaker) Status() (isOpen bool, failures int, total int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.isOpen, cb.failures, cb.totalRequests
}
