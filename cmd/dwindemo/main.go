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

// Command dwindemo brings up a DWIN panel, draws a test screen and
// optionally runs a knob-driven menu.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/go-dwin"
	"github.com/ZaparooProject/go-dwin/detection"
	"github.com/ZaparooProject/go-dwin/input"
	"github.com/ZaparooProject/go-dwin/transport/uart"
)

// Replaced in tests.
var (
	openPort     = func(path string) (dwin.Port, error) { return uart.Open(path) }
	openControls = func(pins input.Pins) (*input.Controls, error) { return input.Open(pins) }
	detectPort   = func(ctx context.Context) (string, error) {
		opts := detection.DefaultOptions()
		device, err := detection.First(ctx, &opts)
		if err != nil {
			return "", fmt.Errorf("failed to detect a display: %w", err)
		}
		return device.Path, nil
	}
)

func resolvePort(ctx context.Context, cfg *config) (string, error) {
	if cfg.Device != "" {
		return cfg.Device, nil
	}
	if cfg.Debug {
		_, _ = fmt.Println("Auto-detecting DWIN displays...")
	}
	return detectPort(ctx)
}

func run(ctx context.Context, cfg *config) error {
	if cfg.Debug {
		dwin.SetDebugEnabled(true)
	}
	if cfg.LogDir != "" {
		path, err := dwin.InitSessionLog(cfg.LogDir)
		if err != nil {
			return fmt.Errorf("failed to open session log: %w", err)
		}
		defer func() { _ = dwin.CloseSessionLog() }()
		_, _ = fmt.Printf("Session log: %s\n", path)
	}

	path, err := resolvePort(ctx, cfg)
	if err != nil {
		return err
	}
	port, err := openPort(path)
	if err != nil {
		return err
	}
	_, _ = fmt.Printf("Using display on %s\n", path)

	return dwin.Run(port, func(d *dwin.Display) error {
		if err := runDemo(ctx, d, cfg); err != nil {
			return err
		}
		if !cfg.Knob {
			return nil
		}

		controls, err := openControls(cfg.inputPins())
		if err != nil {
			return fmt.Errorf("failed to open knob: %w", err)
		}
		defer func() {
			if err := controls.Close(); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Failed to close knob: %v\n", err)
			}
		}()
		_, _ = fmt.Println("Turn the knob to move, press to select. Press Ctrl+C to stop...")
		return runMenu(ctx, d, controls)
	}, dwin.WithReadTimeout(cfg.readTimeout()))
}

func main() {
	os.Exit(mainWithExitCode(os.Args[1:]))
}

func mainWithExitCode(args []string) int {
	cfg, err := parseConfig(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			// User requested shutdown, exit cleanly
			return 0
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if trace := dwin.GetTrace(err); trace != nil {
			_, _ = fmt.Fprint(os.Stderr, trace.FormatTrace())
		}
		return 1
	}
	return 0
}
