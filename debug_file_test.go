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

package dwin

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cleanupSessionLog ensures session log state is clean after tests.
func cleanupSessionLog(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		_ = CloseSessionLog()
	})
}

func TestInitSessionLog_CreatesFile(t *testing.T) {
	cleanupSessionLog(t)
	dir := t.TempDir()

	path, err := InitSessionLog(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	_, err = os.Stat(path)
	require.NoError(t, err, "Log file should exist")

	matched, err := regexp.MatchString(`^dwin_\d{8}_\d{6}\.log$`, filepath.Base(path))
	require.NoError(t, err)
	assert.True(t, matched, "Filename should match dwin_YYYYMMDD_HHMMSS.log, got: %s", path)
}

func TestInitSessionLog_CreatesDirectory(t *testing.T) {
	cleanupSessionLog(t)
	dir := filepath.Join(t.TempDir(), "logs", "dwin")

	path, err := InitSessionLog(dir)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestSessionLog_HeaderMessagesFooter(t *testing.T) {
	cleanupSessionLog(t)

	path, err := InitSessionLog(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, path, GetSessionLogPath())

	Debugf("written while debug is %s", "off")
	require.NoError(t, CloseSessionLog())
	assert.Empty(t, GetSessionLogPath())

	content, err := os.ReadFile(path) //nolint:gosec // path is from InitSessionLog
	require.NoError(t, err)
	contentStr := string(content)

	for _, want := range []string{
		"=== DWIN Debug Session Log ===",
		"Started:",
		"PID:",
		"OS:",
		"Go Version:",
		"Command Line:",
		"written while debug is off",
		"=== Session ended ===",
	} {
		assert.Contains(t, contentStr, want)
	}
}

func TestCloseSessionLog_NoFile(t *testing.T) {
	require.NoError(t, CloseSessionLog())
	require.NoError(t, CloseSessionLog())
}

func TestMultipleInitCloseCycles(t *testing.T) {
	cleanupSessionLog(t)
	dir := t.TempDir()

	for i := range 3 {
		path, err := InitSessionLog(dir)
		require.NoError(t, err, "Init cycle %d failed", i)
		Debugf("cycle %d", i)
		require.NoError(t, CloseSessionLog(), "Close cycle %d failed", i)

		content, err := os.ReadFile(path) //nolint:gosec // path is from InitSessionLog
		require.NoError(t, err)
		assert.Contains(t, string(content), "cycle")
	}
}

func TestCloseSessionLog_OpenDisplayStopsWriting(t *testing.T) {
	cleanupSessionLog(t)

	path, err := InitSessionLog(t.TempDir())
	require.NoError(t, err)

	d, panel := newTestDisplay(t)
	require.NoError(t, d.Update())
	require.True(t, panel.WaitForFrames(1, time.Second))
	require.NoError(t, CloseSessionLog())

	require.NoError(t, d.Clear(Black))
	require.True(t, panel.WaitForFrames(2, time.Second))
	require.NoError(t, d.Close())

	content, err := os.ReadFile(path) //nolint:gosec // path is from InitSessionLog
	require.NoError(t, err)
	contentStr := string(content)
	assert.Contains(t, contentStr, ">>> AA 3D CC 33 C3 3C")
	assert.NotContains(t, contentStr, ">>> AA 01")
	assert.True(t, strings.HasSuffix(contentStr, "=== Session ended ===\n"))
}
