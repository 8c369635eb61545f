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
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/ZaparooProject/go-dwin/internal/syncutil"
	"github.com/rs/zerolog"
)

// Logging state. The active logger is rebuilt whenever the debug flag, the
// session log or the injected logger changes.
var (
	logMu        syncutil.Mutex
	debugEnabled bool
	consoleOut   io.Writer = os.Stderr
	customLogger *zerolog.Logger
	activeLogger atomic.Pointer[zerolog.Logger]
)

const logTimeFormat = "15:04:05.000"

func init() {
	// Enable debug logging if DEBUG environment variable is set
	if os.Getenv("DWIN_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		debugEnabled = true
	}
	rebuildLogger()
}

// rebuildLogger must be called with logMu held.
func rebuildLogger() {
	if customLogger != nil {
		activeLogger.Store(customLogger)
		return
	}

	consoleLevel := zerolog.Disabled
	if debugEnabled {
		consoleLevel = zerolog.DebugLevel
	}
	writers := []io.Writer{&zerolog.FilteredLevelWriter{
		Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{
			Out:        consoleOut,
			TimeFormat: logTimeFormat,
		}},
		Level: consoleLevel,
	}}

	// The session log always gets everything
	if sessionLogWriter != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        sessionLogWriter,
			NoColor:    true,
			TimeFormat: logTimeFormat,
		})
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
	activeLogger.Store(&l)
}

// Logger returns the logger used by the driver.
func Logger() *zerolog.Logger {
	return activeLogger.Load()
}

// SetLogger routes all driver logging to l, replacing the console and session
// log output. Passing nil restores the default logger.
func SetLogger(l *zerolog.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	customLogger = l
	rebuildLogger()
}

// Debugf logs at debug level.
// Always written to the session log (if initialized); printed to the console
// only when debug mode is enabled.
func Debugf(format string, args ...any) {
	Logger().Debug().Msgf(format, args...)
}

// Debugln logs its arguments at debug level, spaced as fmt.Sprintln does.
func Debugln(args ...any) {
	Logger().Debug().Msg(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

// SetDebugEnabled allows programmatic control of console debug output
func SetDebugEnabled(enabled bool) {
	logMu.Lock()
	defer logMu.Unlock()
	debugEnabled = enabled
	rebuildLogger()
}

// DebugEnabled reports whether console debug output is on.
func DebugEnabled() bool {
	logMu.Lock()
	defer logMu.Unlock()
	return debugEnabled
}
