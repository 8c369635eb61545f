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

// Package frame implements the DWIN serial frame format: scalar encoders,
// frame wrapping and reply recognition. Nothing here performs I/O.
package frame

// Frame markers
const (
	Prefix byte = 0xAA // Every frame starts with this byte
)

// Suffix terminates every frame in both directions.
var Suffix = []byte{0xCC, 0x33, 0xC3, 0x3C}

// Overhead is the number of marker bytes added around a payload.
const Overhead = 1 + 4

// Quantization limits for colors and luminance
const (
	MaxRed       = 0x1F // 5 bits
	MaxGreen     = 0x3F // 6 bits
	MaxBlue      = 0x1F // 5 bits
	MaxLuminance = 0x1F // 5 bits
)
