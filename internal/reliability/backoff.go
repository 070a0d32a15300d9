// Package reliability holds small deterministic helpers for retry behavior.
package reliability

import "time"

// ExponentialBackoff computes a capped backoff duration for the given
// attempt number (0-based).
func ExponentialBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}
