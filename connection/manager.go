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
	"errors"
	"time"

	"github.com/nuts-foundation/nuts-ofagent/connection/log"
	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/nuts-foundation/nuts-ofagent/openflow"
	"github.com/nuts-foundation/nuts-ofagent/socket"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const readBufferSize = 64 * 1024

// ManagerOption configures a Manager.
type ManagerOption func(manager *Manager)

// WithClock sets the function used to get the current time for deadlines. It defaults to time.Now.
func WithClock(now func() time.Time) ManagerOption {
	return func(manager *Manager) {
		manager.now = now
	}
}

// WithRegisterer sets the registerer the manager's metrics are registered with. It defaults to prometheus.DefaultRegisterer.
func WithRegisterer(registerer prometheus.Registerer) ManagerOption {
	return func(manager *Manager) {
		manager.registerer = registerer
	}
}

// Manager manages the connections to controllers. It runs on the event loop of the socket manager:
// except for NewManager, its methods must only be called from the event loop goroutine (e.g. through socket.Manager.Call).
// Operations return ErrNotInitialized when called before Init or after Finish.
type Manager struct {
	loop       socket.Manager
	config     Config
	now        func() time.Time
	registerer prometheus.Registerer
	table      *table
	dispatcher dispatcher
	metrics    *metrics
	limiter    *rate.Limiter
	readBuf    []byte

	initialized bool
	enabled     bool
	tickTimer   socket.TimerID
}

// NewManager creates a Manager that uses the given socket manager for I/O and timers.
func NewManager(loop socket.Manager, options ...ManagerOption) *Manager {
	manager := &Manager{
		loop:       loop,
		now:        time.Now,
		registerer: prometheus.DefaultRegisterer,
		metrics:    newMetrics(),
		readBuf:    make([]byte, readBufferSize),
		table:      newTable(0),
	}
	for _, option := range options {
		option(manager)
	}
	return manager
}

// Init initializes the manager with the given configuration and starts the periodic tick.
// Connections are only made when config.Enabled is true, or after Enable(true) is called.
func (m *Manager) Init(config Config) error {
	if m.initialized {
		return errors.New("connection manager already initialized")
	}
	if err := config.validate(); err != nil {
		return core.WrapError(ErrInvalidConfig, err)
	}
	if err := m.metrics.register(m.registerer); err != nil {
		return err
	}
	m.config = config
	m.table = newTable(config.MaxConnections)
	m.limiter = rate.NewLimiter(rate.Limit(config.ConnectRate), config.MaxConnectsPerTick)
	m.enabled = config.Enabled
	m.initialized = true
	m.scheduleTick()
	log.Logger().Debugf("Connection manager initialized (enabled=%t, version=%s)", m.enabled, config.ProtocolVersion())
	return nil
}

// Finish closes all connections and stops the periodic tick. Status observers are notified of the disconnects.
func (m *Manager) Finish() {
	if !m.initialized {
		return
	}
	m.initialized = false
	if m.tickTimer != 0 {
		m.loop.CancelTimer(m.tickTimer)
		m.tickTimer = 0
	}
	for _, c := range m.table.all() {
		if !c.marked {
			m.table.mark(c)
		}
		c.disconnect()
	}
	m.sweep()
	log.Logger().Debug("Connection manager finished")
}

func (m *Manager) scheduleTick() {
	m.tickTimer = m.loop.AfterFunc(m.config.TickInterval, func() {
		m.tickTimer = 0
		if !m.initialized {
			return
		}
		m.Tick()
		if m.initialized && m.tickTimer == 0 {
			m.scheduleTick()
		}
	})
}

// Tick performs the periodic housekeeping: connect and handshake timeouts, keepalives, reconnects and flushing queued
// messages. The number of reconnects per tick is bounded, as is the reconnect rate. Finally, connections that were
// removed are released, making their identifiers available again.
func (m *Manager) Tick() {
	if !m.initialized {
		return
	}
	now := m.now()
	connects := 0
	for _, c := range m.table.live() {
		if c.marked {
			// removed by an observer earlier in this tick
			continue
		}
		if c.tick(now) && connects < m.config.MaxConnectsPerTick && m.limiter.AllowN(now, 1) {
			connects++
			c.connect()
		}
	}
	m.sweep()
}

func (m *Manager) sweep() {
	for _, id := range m.table.sweep() {
		m.metrics.connections.WithLabelValues(StateClosed.String()).Dec()
		log.Logger().WithField(core.LogFieldConnectionID, id).Trace("Connection released")
	}
}

// AddController adds a controller. If the manager is enabled, connecting starts immediately.
// If config.Version is 0 the configured version is used.
func (m *Manager) AddController(params ProtocolParams, config ConfigParams) (ID, error) {
	if !m.initialized {
		return 0, ErrNotInitialized
	}
	if params == nil {
		return 0, core.WrapErrorf(ErrInvalidConfig, "missing protocol parameters")
	}
	if err := params.validate(); err != nil {
		return 0, core.WrapError(ErrInvalidConfig, err)
	}
	if config.Version == 0 {
		config.Version = m.config.ProtocolVersion()
	}
	if !config.Version.Valid() {
		return 0, core.WrapErrorf(ErrInvalidConfig, "unsupported OpenFlow version: %s", config.Version)
	}
	c, err := m.table.add(params, config)
	if err != nil {
		return 0, err
	}
	c.m = m
	c.backoff = BoundedBackoff(m.config.Backoff.Min, m.config.Backoff.Max)
	c.state = StateIdle
	c.status = StatusDisconnected
	m.metrics.connections.WithLabelValues(StateIdle.String()).Inc()
	c.logger().Infof("Controller added (version=%s)", config.Version)
	if m.enabled {
		c.connect()
	}
	return c.id, nil
}

// RemoveController closes the connection and removes it. Its identifier is released by the next tick.
func (m *Manager) RemoveController(id ID) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	c, ok := m.table.lookup(id)
	if !ok {
		return core.WrapErrorf(ErrNotFound, "connection %d", id)
	}
	m.table.mark(c)
	c.logger().Info("Controller removed")
	c.disconnect()
	return nil
}

// Enable enables or disables all connections. When disabled, all connections are closed and no connections are made
// until enabled again. When enabled, all idle connections start connecting immediately.
func (m *Manager) Enable(enabled bool) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	if m.enabled == enabled {
		return nil
	}
	m.enabled = enabled
	log.Logger().Infof("Controller connections enabled: %t", enabled)
	for _, c := range m.table.live() {
		switch {
		case c.marked:
		case enabled && c.state == StateIdle:
			c.connect()
		case !enabled && c.state != StateIdle:
			c.disconnect()
		case !enabled:
			c.retryAt = time.Time{}
			c.backoff.Reset()
			// waiting for a reconnect after an error
			c.reportDisconnected()
		}
		if m.enabled != enabled {
			// changed by an observer
			return nil
		}
	}
	return nil
}

// Enabled returns whether connections are enabled.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// Send queues the message for sending over an established connection, and writes as much of the queue as possible.
// When msg.XID is 0 a transaction ID is assigned; when msg.Version is 0 the connection's version is used.
func (m *Manager) Send(id ID, msg openflow.Message) error {
	if !m.initialized {
		return ErrNotInitialized
	}
	c, ok := m.table.lookup(id)
	if !ok {
		return core.WrapErrorf(ErrNotFound, "connection %d", id)
	}
	if c.state != StateEstablished {
		return core.WrapErrorf(ErrNotConnected, "connection %d is %s", id, c.state)
	}
	if len(c.outbound) >= m.config.MaxOutboundQueue {
		return core.WrapErrorf(ErrQueueFull, "connection %d has %d queued messages", id, len(c.outbound))
	}
	if msg.XID == 0 {
		msg.XID = c.nextXID()
	}
	if msg.Version == 0 {
		msg.Version = c.config.Version
	}
	data, err := openflow.Serialize(msg)
	if err != nil {
		return core.WrapError(ErrInvalidMessage, err)
	}
	c.outbound = append(c.outbound, data)
	m.metrics.sent(msg.Type)
	c.flush()
	return nil
}

// RegisterStatusObserver registers a callback that's called when the status of a connection changes.
// The cookie is passed to the callback as-is.
func (m *Manager) RegisterStatusObserver(callback StatusObserver, cookie interface{}) ObserverHandle {
	return m.dispatcher.register(callback, cookie)
}

// UnregisterStatusObserver removes a status observer. It returns false if the handle is unknown.
func (m *Manager) UnregisterStatusObserver(handle ObserverHandle) bool {
	return m.dispatcher.unregister(handle)
}

// SetMessageHandler sets the handler for received messages, replacing the previous one. Passing nil removes the
// handler, after which received messages are dropped.
func (m *Manager) SetMessageHandler(handler MessageHandler) {
	m.dispatcher.setHandler(handler)
}

// Lookup returns a snapshot of the connection.
func (m *Manager) Lookup(id ID) (Info, error) {
	if !m.initialized {
		return Info{}, ErrNotInitialized
	}
	c, ok := m.table.lookup(id)
	if !ok {
		return Info{}, core.WrapErrorf(ErrNotFound, "connection %d", id)
	}
	return c.info(), nil
}

// List returns snapshots of all connections, ordered by identifier.
func (m *Manager) List() []Info {
	live := m.table.live()
	result := make([]Info, 0, len(live))
	for _, c := range live {
		result = append(result, c.info())
	}
	return result
}

// Len returns the number of connections (not counting removed connections that weren't released yet).
func (m *Manager) Len() int {
	return m.table.len()
}

// readyCallback returns the socket callback for the connection with the given identifier.
func (m *Manager) readyCallback(id ID) socket.Callback {
	return func(handle socket.Handle, events socket.EventMask) {
		c, ok := m.table.lookup(id)
		if !ok || c.handle != handle {
			// stale registration
			_ = m.loop.Unregister(handle)
			return
		}
		c.onReady(events)
	}
}
