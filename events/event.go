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

package events

import (
	"context"
	"errors"
	"fmt"

	natsServer "github.com/nats-io/nats-server/v2/server"
	"github.com/nuts-foundation/nuts-ofagent/connection"
	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/nuts-foundation/nuts-ofagent/events/log"
)

const moduleName = "Events"

// StatusSource notifies observers of status changes of controller connections.
type StatusSource interface {
	ObserveStatus(ctx context.Context, observer connection.StatusObserver) error
}

var _ StatusSource = (*connection.Module)(nil)

// Manager is the engine that runs an embedded NATS server and publishes controller connection status events on it.
type Manager struct {
	config    Config
	source    StatusSource
	server    *natsServer.Server
	pool      ConnectionPool
	publisher *publisher
}

// NewManager returns a new event manager, which publishes the status events of the given source
func NewManager(source StatusSource) *Manager {
	return &Manager{
		config: DefaultConfig(),
		source: source,
	}
}

func (m *Manager) Name() string {
	return moduleName
}

func (m *Manager) ConfigKey() string {
	return "events"
}

func (m *Manager) Config() interface{} {
	return &m.config
}

// Pool returns the pool of connections to the embedded NATS server. It's nil when the manager isn't started.
func (m *Manager) Pool() ConnectionPool {
	return m.pool
}

func (m *Manager) Configure(_ core.ServerConfig) error {
	if err := m.config.validate(); err != nil {
		return fmt.Errorf("invalid events configuration: %w", err)
	}
	return nil
}

func (m *Manager) Start() error {
	if !m.config.Enabled {
		log.Logger().Debug("Connection status events are disabled")
		return nil
	}
	server, err := natsServer.NewServer(&natsServer.Options{
		JetStream: true,
		Port:      m.config.Nats.Port,
		Host:      m.config.Nats.Hostname,
		StoreDir:  m.config.Nats.StorageDir,
		NoSigs:    true, // signals are handled by the agent, the NATS server is shut down when the engine is shut down
		NoLog:     true,
	})
	if err != nil {
		return err
	}
	server.Start()
	if !server.ReadyForConnections(m.config.timeout()) {
		server.Shutdown()
		return errors.New("NATS server did not become ready in time")
	}
	m.server = server
	m.pool = NewNATSConnectionPool(server.ClientURL(), m.config.timeout())
	m.publisher = newPublisher(m.pool, newConnectionStatusStream(), m.config.QueueSize, m.config.timeout())
	m.publisher.start()

	ctx, cancel := context.WithTimeout(context.Background(), m.config.timeout())
	defer cancel()
	if err := m.source.ObserveStatus(ctx, m.publisher.observe); err != nil {
		_ = m.Shutdown()
		return fmt.Errorf("unable to observe connection status: %w", err)
	}
	log.Logger().Infof("Publishing connection status events (url=%s, subject=%s.*)", server.ClientURL(), ConnectionStatusSubject)
	return nil
}

func (m *Manager) Shutdown() error {
	if m.server == nil {
		return nil
	}
	m.publisher.stop()
	m.pool.Shutdown()
	m.server.Shutdown()
	m.server.WaitForShutdown()
	m.server = nil
	return nil
}

// Diagnostics returns the number of published and dropped events.
func (m *Manager) Diagnostics() []core.DiagnosticResult {
	result := []core.DiagnosticResult{
		core.GenericDiagnosticResult{Title: "enabled", Outcome: m.config.Enabled},
	}
	if m.publisher == nil {
		return result
	}
	return append(result,
		core.GenericDiagnosticResult{Title: "published", Outcome: m.publisher.published.Load()},
		core.GenericDiagnosticResult{Title: "dropped", Outcome: m.publisher.dropped.Load()},
		core.GenericDiagnosticResult{Title: "failed", Outcome: m.publisher.failed.Load()},
	)
}
