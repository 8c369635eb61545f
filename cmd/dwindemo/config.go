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

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/go-dwin/input"
	"github.com/pelletier/go-toml/v2"
)

// pinsConfig names the GPIO lines of the knob, button and buzzer.
type pinsConfig struct {
	A      string `toml:"a"`
	B      string `toml:"b"`
	Enter  string `toml:"enter"`
	Buzzer string `toml:"buzzer"`
}

type config struct {
	Pins          pinsConfig `toml:"pins"`
	Device        string     `toml:"device"`
	LogDir        string     `toml:"log_dir"`
	Backlight     float64    `toml:"backlight"`
	Rotation      int        `toml:"rotation"`
	ReadTimeoutMs int        `toml:"read_timeout_ms"`
	Debug         bool       `toml:"debug"`
	Knob          bool       `toml:"knob"`
}

func defaultConfig() *config {
	pins := input.DefaultPins()
	return &config{
		Pins: pinsConfig{
			A:      pins.A,
			B:      pins.B,
			Enter:  pins.Enter,
			Buzzer: pins.Buzzer,
		},
		Backlight:     0.5,
		ReadTimeoutMs: 1000,
	}
}

func (c *config) readTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMs) * time.Millisecond
}

func (c *config) inputPins() input.Pins {
	return input.Pins{A: c.Pins.A, B: c.Pins.B, Enter: c.Pins.Enter, Buzzer: c.Pins.Buzzer}
}

// loadConfigFile merges a TOML file over cfg. Keys missing from the file
// keep their current values.
func loadConfigFile(path string, cfg *config) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	return nil
}

// parseConfig reads the defaults, then the -config file, then any flag set
// on the command line.
func parseConfig(args []string) (*config, error) {
	fs := flag.NewFlagSet("dwindemo", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML configuration file")
	device := fs.String("device", "", "Serial device path (auto-detect if empty)")
	debug := fs.Bool("debug", false, "Enable debug output")
	knob := fs.Bool("knob", false, "Show a menu driven by the rotary knob")
	logDir := fs.String("log-dir", "", "Write a session log to this directory")
	if err := fs.Parse(args); err != nil {
		return nil, err //nolint:wrapcheck // flag already prints usage
	}

	cfg := defaultConfig()
	if *configPath != "" {
		if err := loadConfigFile(*configPath, cfg); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.Device = *device
		case "debug":
			cfg.Debug = *debug
		case "knob":
			cfg.Knob = *knob
		case "log-dir":
			cfg.LogDir = *logDir
		}
	})

	if cfg.ReadTimeoutMs <= 0 {
		return nil, errors.New("read_timeout_ms must be positive")
	}
	return cfg, nil
}
