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

package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type knobStep struct {
	channel byte
	active  bool
}

func feed(k *Knob, steps []knobStep) []int {
	var out []int
	for _, s := range steps {
		var d int
		if s.channel == 'a' {
			d = k.SetA(s.active)
		} else {
			d = k.SetB(s.active)
		}
		if d != 0 {
			out = append(out, d)
		}
	}
	return out
}

// aLeads is one detent with channel A closing first.
var aLeads = []knobStep{{'a', true}, {'b', true}, {'a', false}, {'b', false}}

// bLeads is one detent with channel B closing first.
var bLeads = []knobStep{{'b', true}, {'a', true}, {'b', false}, {'a', false}}

func TestKnob_Detents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		steps []knobStep
		want  []int
	}{
		{name: "a leads", steps: aLeads, want: []int{-1}},
		{name: "b leads", steps: bLeads, want: []int{1}},
		{name: "two detents", steps: append(append([]knobStep{}, bLeads...), bLeads...), want: []int{1, 1}},
		{
			name:  "bounce inside detent",
			steps: []knobStep{{'a', true}, {'a', false}, {'a', true}, {'b', true}, {'a', false}, {'b', false}},
			want:  []int{-1},
		},
		{
			name:  "turned back before completing",
			steps: []knobStep{{'a', true}, {'b', true}, {'b', false}, {'a', false}},
			want:  nil,
		},
		{name: "repeated level is ignored", steps: []knobStep{{'a', false}, {'b', false}}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var k Knob
			assert.Equal(t, tt.want, feed(&k, tt.steps))
			assert.Equal(t, 0, k.state)
			assert.Equal(t, 0, k.count)
		})
	}
}

func TestKnob_StateEncoding(t *testing.T) {
	t.Parallel()

	var k Knob
	k.SetA(true)
	assert.Equal(t, 1, k.state)
	k.SetB(true)
	assert.Equal(t, 2, k.state)
	k.SetA(false)
	assert.Equal(t, 3, k.state)
	assert.Equal(t, -3, k.count)
}
