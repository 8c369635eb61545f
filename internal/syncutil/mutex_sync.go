//go:build !deadlock

// Package syncutil provides the lock types used by the command queue and the
// port discovery cache. Plain sync locks are used by default; build with
// -tags=deadlock to swap in github.com/sasha-s/go-deadlock.
package syncutil

import "sync"

// Mutex wraps sync.Mutex. Build with -tags=deadlock for deadlock detection.
//
//nolint:gocritic // Intentionally embedding sync.Mutex to expose its interface
type Mutex struct {
	sync.Mutex
}

// RWMutex wraps sync.RWMutex. Build with -tags=deadlock for deadlock detection.
//
//nolint:gocritic // Intentionally embedding sync.RWMutex to expose its interface
type RWMutex struct {
	sync.RWMutex
}

// NewCond returns a condition variable bound to m.
func NewCond(m *Mutex) *sync.Cond {
	return sync.NewCond(m)
}
