/*
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package socket

import (
	"context"
	"errors"
	"fmt"

	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/nuts-foundation/nuts-ofagent/socket/log"
)

// ModuleName contains the name of this module.
const ModuleName = "Socket"

// Name returns the name of the engine.
func (l *Loop) Name() string {
	return ModuleName
}

// ConfigKey returns the key of the engine's configuration.
func (l *Loop) ConfigKey() string {
	return "socket"
}

// Config returns a pointer to the engine's configuration, into which the configuration is injected.
func (l *Loop) Config() interface{} {
	return &l.config
}

// Configure validates the configuration. It must be called before the loop runs.
func (l *Loop) Configure(_ core.ServerConfig) error {
	if err := l.config.validate(); err != nil {
		return fmt.Errorf("invalid socket configuration: %w", err)
	}
	if cap(l.events) != l.config.EventQueueSize {
		l.events = make(chan func(), l.config.EventQueueSize)
	}
	return nil
}

// Start runs the event loop on a new goroutine.
func (l *Loop) Start() error {
	if l.cancelRun != nil {
		return errors.New("socket manager already started")
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancelRun = cancel
	l.runDone = make(chan struct{})
	go func() {
		defer close(l.runDone)
		if err := l.Run(ctx); err != nil && !errors.Is(err, ErrClosed) {
			log.Logger().WithError(err).Error("Event loop stopped unexpectedly")
		}
	}()
	log.Logger().Debug("Event loop started")
	return nil
}

// Shutdown stops the event loop and closes all sockets.
func (l *Loop) Shutdown() error {
	if l.cancelRun != nil {
		l.cancelRun()
		<-l.runDone
	}
	err := l.Close()
	log.Logger().Debug("Event loop stopped")
	return err
}

// Diagnostics returns statistics of the event loop.
func (l *Loop) Diagnostics() []core.DiagnosticResult {
	return []core.DiagnosticResult{
		core.GenericDiagnosticResult{Title: "iterations", Outcome: l.iterations.Load()},
		core.GenericDiagnosticResult{Title: "open_sockets", Outcome: l.openConns.Load()},
		core.GenericDiagnosticResult{Title: "registered_sockets", Outcome: l.registered.Load()},
		core.GenericDiagnosticResult{Title: "bytes_read", Outcome: l.bytesRead.Load()},
		core.GenericDiagnosticResult{Title: "bytes_written", Outcome: l.bytesWritten.Load()},
		core.GenericDiagnosticResult{Title: "config", Outcome: fmt.Sprintf("%+v", l.config)},
	}
}
