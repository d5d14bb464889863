// Package inflight enforces at most one outstanding submission per form.
package inflight

import (
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrBusy is returned when a submission is already in flight
var ErrBusy = errors.New("request already in progress")

// Gate admits one caller at a time and turns the rest away immediately
type Gate struct {
	sem *semaphore.Weighted
}

// NewGate returns an open gate
func NewGate() *Gate {
	return &Gate{sem: semaphore.NewWeighted(1)}
}

// Do runs fn unless another call is in flight, in which case it returns ErrBusy
func (g *Gate) Do(fn func() error) error {
	if !g.sem.TryAcquire(1) {
		return ErrBusy
	}
	defer g.sem.Release(1)

	return fn()
}

// Gates hands out one Gate per form name
type Gates struct {
	mu    sync.Mutex
	gates map[string]*Gate
}

// NewGates returns an empty gate registry
func NewGates() *Gates {
	return &Gates{gates: make(map[string]*Gate)}
}

// For returns the gate for form, creating it on first use
func (g *Gates) For(form string) *Gate {
	g.mu.Lock()
	defer g.mu.Unlock()

	gate, ok := g.gates[form]
	if !ok {
		gate = NewGate()
		g.gates[form] = gate
	}
	return gate
}
