// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package queue

import (
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTransmitPriority(t *testing.T) {
	t.Parallel()
	q := New()

	q.PutTransmit([]byte("T1"))
	q.PutRead()
	q.PutTransmit([]byte("T2"))
	require.Equal(t, 3, q.Len())

	first := q.Take()
	assert.Equal(t, Transmit, first.Kind)
	assert.Equal(t, []byte("T1"), first.Data)

	second := q.Take()
	assert.Equal(t, Transmit, second.Kind)
	assert.Equal(t, []byte("T2"), second.Data)

	third := q.Take()
	assert.Equal(t, Read, third.Kind)
	assert.Nil(t, third.Data)

	assert.Equal(t, 0, q.Len())
}

func TestTerminateWinsOverPendingWork(t *testing.T) {
	t.Parallel()
	q := New()

	q.PutTransmit([]byte{0x01})
	q.PutRead()
	q.Terminate()

	for range 3 {
		assert.Equal(t, Terminate, q.Take().Kind)
	}
	assert.True(t, q.Terminated())
	assert.Equal(t, 2, q.Len(), "pending items are left in place, never handed out")

	q.PutTransmit([]byte{0x02})
	assert.Equal(t, Terminate, q.Take().Kind)
}

func TestTakeBlocksUntilPut(t *testing.T) {
	t.Parallel()
	q := New()

	got := make(chan Item, 1)
	go func() {
		got <- q.Take()
	}()

	select {
	case item := <-got:
		t.Fatalf("Take returned %v on an empty queue", item.Kind)
	case <-time.After(20 * time.Millisecond):
	}

	q.PutRead()

	select {
	case item := <-got:
		assert.Equal(t, Read, item.Kind)
	case <-time.After(time.Second):
		t.Fatal("Take did not wake after PutRead")
	}
}

func TestTerminateWakesBlockedTake(t *testing.T) {
	t.Parallel()
	q := New()

	var wg sync.WaitGroup
	kinds := make(chan Kind, 2)
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kinds <- q.Take().Kind
		}()
	}

	time.Sleep(10 * time.Millisecond)
	q.Terminate()
	wg.Wait()
	close(kinds)

	for k := range kinds {
		assert.Equal(t, Terminate, k)
	}
}

func TestConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	t.Parallel()
	q := New()

	const producers = 4
	const perProducer = 250

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func(id byte) {
			defer wg.Done()
			for i := range perProducer {
				data := binary.BigEndian.AppendUint16([]byte{id}, uint16(i))
				q.PutTransmit(data)
			}
		}(byte(p))
	}

	next := make(map[byte]uint16, producers)
	for range producers * perProducer {
		item := q.Take()
		require.Equal(t, Transmit, item.Kind)
		id := item.Data[0]
		seq := binary.BigEndian.Uint16(item.Data[1:])
		require.Equal(t, next[id], seq, "producer %d delivered out of order", id)
		next[id]++
	}
	wg.Wait()

	assert.Equal(t, 0, q.Len())
	for p := range producers {
		assert.Equal(t, uint16(perProducer), next[byte(p)])
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "terminate", Terminate.String())
	assert.Equal(t, "transmit", Transmit.String())
	assert.Equal(t, "read", Read.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
