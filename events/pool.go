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
	"sync"
	"time"

	"github.com/nuts-foundation/nuts-ofagent/events/log"
)

// ConnectionPool defines the interface for a NATS connection-pool
type ConnectionPool interface {
	// Acquire returns a NATS connection and JetStream context, it will connect if not already connected
	Acquire(ctx context.Context) (Conn, JetStreamContext, error)
	// Shutdown closes all the connections
	Shutdown()
}

// NATSConnectionPool implements a thread-safe pool for NATS connections (currently using a single NATS connection)
type NATSConnectionPool struct {
	url     string
	timeout time.Duration
	connect func(url string, timeout time.Duration) (Conn, error)

	mux  sync.Mutex
	conn Conn
	js   JetStreamContext
}

// NewNATSConnectionPool creates a new NATSConnectionPool for the NATS server at the given URL
func NewNATSConnectionPool(url string, timeout time.Duration) *NATSConnectionPool {
	return &NATSConnectionPool{
		url:     url,
		timeout: timeout,
		connect: Connect,
	}
}

// Acquire returns a NATS connection and JetStream context, it will connect if not already connected
func (pool *NATSConnectionPool) Acquire(ctx context.Context) (Conn, JetStreamContext, error) {
	pool.mux.Lock()
	defer pool.mux.Unlock()
	if pool.conn != nil {
		return pool.conn, pool.js, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	log.Logger().Tracef("Connecting to NATS server (url=%s)", pool.url)
	conn, err := pool.connect(pool.url, pool.timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	pool.conn = conn
	pool.js = js
	return conn, js, nil
}

// Shutdown closes the connection
func (pool *NATSConnectionPool) Shutdown() {
	pool.mux.Lock()
	defer pool.mux.Unlock()
	if pool.conn != nil {
		pool.conn.Close()
		pool.conn = nil
		pool.js = nil
	}
}
