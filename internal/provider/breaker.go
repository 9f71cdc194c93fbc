package provider

import (
	"time"

	"github.com/sony/gobreaker"
)

// newBreaker builds the circuit breaker guarding one feed. The breaker opens
// after five consecutive failures and probes again after 30 seconds, so a
// dead provider costs at most a handful of cycles before being short-circuited.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}
