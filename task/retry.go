package task

import (
	"math"
	"time"
)

// RetryStrategy encapsulates the delay between queue publish retries.
type RetryStrategy interface {
	// SleepDuration returns how long to wait before the next retry attempt.
	// The attempt index starts at 0, incrementing after each failure.
	SleepDuration(attempt int, err error) time.Duration
}

// NoDelayStrategy retries immediately without waiting.
type NoDelayStrategy struct{}

func (NoDelayStrategy) SleepDuration(_ int, _ error) time.Duration {
	return 0
}

// defaultBackoffCeiling bounds the delay when Max is unset, keeping high
// attempt counts from overflowing the float math into a negative duration.
const defaultBackoffCeiling = time.Minute

// ExponentialBackoffStrategy grows the delay by Factor each attempt, capped
// at Max (or defaultBackoffCeiling when Max is unset).
type ExponentialBackoffStrategy struct {
	// Base is the starting delay (e.g., 100ms)
	Base time.Duration
	// Factor is multiplied each iteration (e.g., 2 => 100ms, 200ms, 400ms, ...)
	Factor float64
	// Max is the maximum delay allowed (caps the exponential growth)
	Max time.Duration
}

func (e ExponentialBackoffStrategy) SleepDuration(attempt int, _ error) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	ceiling := e.Max
	if ceiling <= 0 {
		ceiling = defaultBackoffCeiling
	}
	delay := float64(e.Base) * math.Pow(e.Factor, float64(attempt))
	if delay < 0 || delay > float64(ceiling) {
		return ceiling
	}
	return time.Duration(delay)
}
