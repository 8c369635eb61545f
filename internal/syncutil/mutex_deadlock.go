//go:build deadlock

// Package syncutil provides the lock types used by the command queue and the
// port discovery cache. This file is compiled when building with
// -tags=deadlock; lock-order inversions and long waits are reported by
// github.com/sasha-s/go-deadlock.
package syncutil

import (
	"sync"

	deadlock "github.com/sasha-s/go-deadlock"
)

// Mutex wraps deadlock.Mutex for deadlock detection.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex wraps deadlock.RWMutex for deadlock detection.
type RWMutex struct {
	deadlock.RWMutex
}

// NewCond returns a condition variable bound to m.
func NewCond(m *Mutex) *sync.Cond {
	return sync.NewCond(m)
}
