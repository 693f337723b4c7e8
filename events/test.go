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
	"sync"

	"github.com/nats-io/nats.go"
)

// StubConn is a Conn and JetStreamContext that records published messages instead of sending them.
type StubConn struct {
	nats.JetStreamContext

	mux       sync.Mutex
	streams   map[string]*nats.StreamConfig
	published []*nats.Msg
	// PublishError is returned by PublishMsg when set.
	PublishError error
	closed       bool
}

// NewStubConn returns a new StubConn
func NewStubConn() *StubConn {
	return &StubConn{streams: map[string]*nats.StreamConfig{}}
}

// JetStream returns the JetStream context
func (conn *StubConn) JetStream(_ ...nats.JSOpt) (nats.JetStreamContext, error) {
	return conn, nil
}

// Close marks the connection as closed
func (conn *StubConn) Close() {
	conn.mux.Lock()
	defer conn.mux.Unlock()
	conn.closed = true
}

// StreamInfo returns the stream information, or nats.ErrStreamNotFound if the stream wasn't added
func (conn *StubConn) StreamInfo(name string, _ ...nats.JSOpt) (*nats.StreamInfo, error) {
	conn.mux.Lock()
	defer conn.mux.Unlock()
	config, ok := conn.streams[name]
	if !ok {
		return nil, nats.ErrStreamNotFound
	}
	return &nats.StreamInfo{Config: *config}, nil
}

// AddStream adds a stream
func (conn *StubConn) AddStream(cfg *nats.StreamConfig, _ ...nats.JSOpt) (*nats.StreamInfo, error) {
	conn.mux.Lock()
	defer conn.mux.Unlock()
	conn.streams[cfg.Name] = cfg
	return &nats.StreamInfo{Config: *cfg}, nil
}

// PublishMsg records the message
func (conn *StubConn) PublishMsg(m *nats.Msg, _ ...nats.PubOpt) (*nats.PubAck, error) {
	conn.mux.Lock()
	defer conn.mux.Unlock()
	if conn.PublishError != nil {
		return nil, conn.PublishError
	}
	conn.published = append(conn.published, m)
	return &nats.PubAck{}, nil
}

// Published returns the messages published so far
func (conn *StubConn) Published() []*nats.Msg {
	conn.mux.Lock()
	defer conn.mux.Unlock()
	return append([]*nats.Msg(nil), conn.published...)
}

type stubConnectionPool struct {
	conn *StubConn
	err  error
}

// NewStubConnectionPool returns a new ConnectionPool used for testing
func NewStubConnectionPool(conn *StubConn) ConnectionPool {
	return &stubConnectionPool{conn: conn}
}

// Acquire returns the stub connection
func (pool *stubConnectionPool) Acquire(_ context.Context) (Conn, JetStreamContext, error) {
	if pool.err != nil {
		return nil, nil, pool.err
	}
	return pool.conn, pool.conn, nil
}

// Shutdown closes the stub connection
func (pool *stubConnectionPool) Shutdown() {
	pool.conn.Close()
}

var errStub = errors.New("stub failure")
