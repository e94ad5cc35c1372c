// Package ratelimit wraps golang.org/x/time/rate with per-exchange presets
// and a bounded-concurrency gate.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with exchange-aware construction.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerMin requests per minute
// with burst capacity equal to one second's worth of requests.
func New(requestsPerMin int) *Limiter {
	perSecond := rate.Limit(float64(requestsPerMin) / 60.0)
	burst := requestsPerMin / 60
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(perSecond, burst),
	}
}

// Wait blocks until a request slot is available or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed immediately.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Gate combines a rate limiter with a concurrency cap. Acquire must be
// paired with Release.
type Gate struct {
	limiter *Limiter
	slots   chan struct{}
}

// NewGate creates a gate allowing requestsPerMin requests per minute with
// at most maxInFlight concurrent holders.
func NewGate(requestsPerMin, maxInFlight int) *Gate {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Gate{
		limiter: New(requestsPerMin),
		slots:   make(chan struct{}, maxInFlight),
	}
}

// Acquire blocks until both a concurrency slot and a rate slot are held.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := g.limiter.Wait(ctx); err != nil {
		<-g.slots
		return err
	}
	return nil
}

// Release returns a concurrency slot.
func (g *Gate) Release() {
	<-g.slots
}
