package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDelay(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: -1, want: 0},
		{attempt: 0, want: 0},
		{attempt: 1, want: 2 * time.Second},
		{attempt: 5, want: 10 * time.Second},
		{attempt: 29, want: 58 * time.Second},
		{attempt: 30, want: 60 * time.Second},
		{attempt: 31, want: 60 * time.Second},
		{attempt: 1 << 40, want: 60 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Delay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestNextAttempt(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(6*time.Second), NextAttempt(now, 3))
}

func TestExhausted(t *testing.T) {
	assert.False(t, Exhausted(5, 5))
	assert.True(t, Exhausted(6, 5))
	assert.True(t, Exhausted(1, 0))
}
