// go-dwin
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-dwin.
//
// go-dwin is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-dwin is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-dwin; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package queue implements the multi-producer, single-consumer work queue
// between display callers and the port worker.
//
// Two ordered sequences are kept: transmit payloads and read requests. Take
// always prefers a pending transmit over a pending read, and once Terminate
// has been called every Take returns a Terminate item without blocking.
// A single mutex and a single condition variable guard all of it.
package queue

import (
	"sync"

	"github.com/ZaparooProject/go-dwin/internal/syncutil"
)

// Kind identifies a work item.
type Kind int

const (
	// Terminate tells the consumer to exit. It is returned for every Take
	// after Terminate has been called.
	Terminate Kind = iota
	// Transmit carries bytes to write to the port.
	Transmit
	// Read asks the consumer to wait for one reply frame.
	Read
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case Terminate:
		return "terminate"
	case Transmit:
		return "transmit"
	case Read:
		return "read"
	default:
		return "unknown"
	}
}

// Item is a single unit of work handed to the consumer.
type Item struct {
	Data []byte // Only set for Transmit
	Kind Kind
}

// Queue is safe for concurrent use. Enqueueing never blocks on capacity.
type Queue struct {
	cond       *sync.Cond
	transmit   [][]byte
	mu         syncutil.Mutex
	reads      int
	terminated bool
}

// New creates an empty queue.
func New() *Queue {
	q := &Queue{}
	q.cond = syncutil.NewCond(&q.mu)
	return q
}

// PutTransmit appends a transmit payload and wakes the consumer.
func (q *Queue) PutTransmit(data []byte) {
	q.mu.Lock()
	q.transmit = append(q.transmit, data)
	q.mu.Unlock()
	q.cond.Signal()
}

// PutRead appends a read request and wakes the consumer.
func (q *Queue) PutRead() {
	q.mu.Lock()
	q.reads++
	q.mu.Unlock()
	q.cond.Signal()
}

// Terminate sets the termination flag and wakes every waiter. It is
// idempotent and cannot be undone.
func (q *Queue) Terminate() {
	q.mu.Lock()
	q.terminated = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Take blocks until a transmit item, a read item or termination is
// available and removes exactly one item.
func (q *Queue) Take() Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		switch {
		case q.terminated:
			return Item{Kind: Terminate}
		case len(q.transmit) > 0:
			data := q.transmit[0]
			q.transmit[0] = nil
			q.transmit = q.transmit[1:]
			return Item{Kind: Transmit, Data: data}
		case q.reads > 0:
			q.reads--
			return Item{Kind: Read}
		}
		q.cond.Wait()
	}
}

// Len returns the number of pending transmit and read items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.transmit) + q.reads
}

// Terminated reports whether Terminate has been called.
func (q *Queue) Terminated() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.terminated
}
