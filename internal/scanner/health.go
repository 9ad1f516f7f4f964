package scanner

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// healthRegistry hands out a per-endpoint circuit breaker, adapted from
// the connection-pool breaker idiom: instead of gating pooled
// connections, it gates whether a caller attempts another fresh
// per-operation socket against an endpoint that has been failing.
type healthRegistry struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func newHealthRegistry() *healthRegistry {
	return &healthRegistry{breakers: make(map[string]*gobreaker.CircuitBreaker)}
}

// breakerFor returns the circuit breaker for endpoint, creating one with
// a 5-consecutive-failure trip threshold and a 30-second cooldown if
// none exists yet.
func (r *healthRegistry) breakerFor(endpoint string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[endpoint]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        endpoint,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	r.breakers[endpoint] = b
	return b
}
