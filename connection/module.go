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

package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/nuts-foundation/nuts-ofagent/connection/log"
	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/nuts-foundation/nuts-ofagent/openflow"
	"github.com/nuts-foundation/nuts-ofagent/socket"
)

// ModuleName contains the name of this module.
const ModuleName = "Connection"

const callTimeout = 5 * time.Second

// Module is the engine that runs the connection Manager on the socket manager's event loop.
// Other goroutines (e.g. HTTP handlers) access the Manager through Do.
type Module struct {
	config      Config
	loop        socket.Manager
	manager     *Manager
	controllers []ProtocolParams
}

// NewModule creates the connection engine.
func NewModule(loop socket.Manager, options ...ManagerOption) *Module {
	return &Module{
		config:  DefaultConfig(),
		loop:    loop,
		manager: NewManager(loop, options...),
	}
}

// Name returns the name of the engine.
func (m *Module) Name() string {
	return ModuleName
}

// ConfigKey returns the key of the engine's configuration.
func (m *Module) ConfigKey() string {
	return "cxn"
}

// Config returns a pointer to the engine's configuration.
func (m *Module) Config() interface{} {
	return &m.config
}

// Configure validates the configuration, including the addresses of the preconfigured controllers.
func (m *Module) Configure(_ core.ServerConfig) error {
	if err := m.config.validate(); err != nil {
		return core.WrapError(ErrInvalidConfig, err)
	}
	m.controllers = nil
	for _, address := range m.config.Controllers {
		params, err := ParseControllerAddress(address)
		if err != nil {
			return err
		}
		m.controllers = append(m.controllers, params)
	}
	return nil
}

// Start initializes the manager on the event loop and adds the preconfigured controllers.
func (m *Module) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	return m.Do(ctx, func(manager *Manager) error {
		if err := manager.Init(m.config); err != nil {
			return err
		}
		for _, params := range m.controllers {
			if _, err := manager.AddController(params, ConfigParams{}); err != nil {
				return fmt.Errorf("unable to add controller %s: %w", params.Endpoint(), err)
			}
		}
		log.Logger().Infof("Started with %d controller(s), enabled: %t", len(m.controllers), manager.Enabled())
		return nil
	})
}

// Shutdown closes all connections.
func (m *Module) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	return m.Do(ctx, func(manager *Manager) error {
		manager.Finish()
		return nil
	})
}

// Do calls f with the Manager on the event loop goroutine, and returns the error f returned.
func (m *Module) Do(ctx context.Context, f func(manager *Manager) error) error {
	var result error
	if err := m.loop.Call(ctx, func() {
		result = f(m.manager)
	}); err != nil {
		return fmt.Errorf("unable to reach event loop: %w", err)
	}
	return result
}

// Diagnostics returns the state of the connections.
func (m *Module) Diagnostics() []core.DiagnosticResult {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	var result []core.DiagnosticResult
	err := m.Do(ctx, func(manager *Manager) error {
		result = manager.Diagnostics()
		return nil
	})
	if err != nil {
		return []core.DiagnosticResult{core.GenericDiagnosticResult{Title: "error", Outcome: err.Error()}}
	}
	return result
}

// ObserveStatus registers an observer for status changes of all connections. It's called on the event loop goroutine,
// so it must not block.
func (m *Module) ObserveStatus(ctx context.Context, observer StatusObserver) error {
	return m.Do(ctx, func(manager *Manager) error {
		manager.RegisterStatusObserver(observer, nil)
		return nil
	})
}

func (m *Module) ListControllers(ctx context.Context) ([]Info, error) {
	var result []Info
	err := m.Do(ctx, func(manager *Manager) error {
		if !manager.initialized {
			return ErrNotInitialized
		}
		result = manager.List()
		return nil
	})
	return result, err
}

func (m *Module) AddController(ctx context.Context, address string, version openflow.Version) (Info, error) {
	params, err := ParseControllerAddress(address)
	if err != nil {
		return Info{}, err
	}
	var result Info
	err = m.Do(ctx, func(manager *Manager) error {
		id, err := manager.AddController(params, ConfigParams{Version: version})
		if err != nil {
			return err
		}
		result, err = manager.Lookup(id)
		return err
	})
	return result, err
}

func (m *Module) RemoveController(ctx context.Context, id ID) error {
	return m.Do(ctx, func(manager *Manager) error {
		return manager.RemoveController(id)
	})
}

func (m *Module) SetEnabled(ctx context.Context, enabled bool) error {
	return m.Do(ctx, func(manager *Manager) error {
		return manager.Enable(enabled)
	})
}

func (m *Module) IsEnabled(ctx context.Context) (bool, error) {
	var result bool
	err := m.Do(ctx, func(manager *Manager) error {
		if !manager.initialized {
			return ErrNotInitialized
		}
		result = manager.Enabled()
		return nil
	})
	return result, err
}
