// Package retry holds the retry schedule shared by the outbox and saga processors.
package retry

import "time"

const (
	// Step is the delay added per failed attempt.
	Step = 2 * time.Second
	// MaxDelay caps the delay.
	MaxDelay = 60 * time.Second
)

// Delay returns min(MaxDelay, Step*attempt). Non-positive attempts yield zero.
func Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt >= int(MaxDelay/Step) {
		return MaxDelay
	}
	return time.Duration(attempt) * Step
}

// NextAttempt is the earliest time an item failed attempt times may be picked up again.
func NextAttempt(now time.Time, attempt int) time.Time {
	return now.Add(Delay(attempt))
}

// Exhausted reports whether attempt exceeded maxRetries.
func Exhausted(attempt, maxRetries int) bool {
	return attempt > maxRetries
}
