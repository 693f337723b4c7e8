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
	"encoding/json"
	"testing"
	"time"

	"github.com/nuts-foundation/nuts-ofagent/connection"
	"github.com/nuts-foundation/nuts-ofagent/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T, pool ConnectionPool, queueSize int) *publisher {
	return newTestPublisherWithTimeout(t, pool, queueSize, 5*time.Second)
}

func newTestPublisherWithTimeout(t *testing.T, pool ConnectionPool, queueSize int, drainTimeout time.Duration) *publisher {
	oldDelay := publishDelay
	publishDelay = time.Millisecond
	t.Cleanup(func() {
		publishDelay = oldDelay
	})
	p := newPublisher(pool, newConnectionStatusStream(), queueSize, drainTimeout)
	p.now = func() time.Time {
		return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	}
	return p
}

// blockingPool blocks until the publisher aborts.
type blockingPool struct{}

func (blockingPool) Acquire(ctx context.Context) (Conn, JetStreamContext, error) {
	<-ctx.Done()
	return nil, nil, ctx.Err()
}

func (blockingPool) Shutdown() {}

func testParams(t *testing.T) connection.ProtocolParams {
	params, err := connection.ParseControllerAddress("10.0.0.1")
	require.NoError(t, err)
	return params
}

func TestPublisher(t *testing.T) {
	t.Run("publishes status events", func(t *testing.T) {
		conn := NewStubConn()
		p := newTestPublisher(t, NewStubConnectionPool(conn), 10)
		p.start()
		defer p.stop()

		p.observe(4, testParams(t), connection.Status{Kind: connection.StatusConnected}, nil)

		test.WaitFor(t, func() bool {
			return len(conn.Published()) == 1
		}, time.Second, "timeout while waiting for event to be published")
		msg := conn.Published()[0]
		assert.Equal(t, "ofagent.cxn.status.4", msg.Subject)
		var event StatusEvent
		require.NoError(t, json.Unmarshal(msg.Data, &event))
		assert.Equal(t, connection.ID(4), event.ID)
		assert.Equal(t, "Connected", event.Status)
		assert.Equal(t, uint64(1), p.published.Load())
	})
	t.Run("queue full", func(t *testing.T) {
		p := newTestPublisher(t, NewStubConnectionPool(NewStubConn()), 1)

		// not started, so the queue isn't drained
		p.observe(1, testParams(t), connection.Status{Kind: connection.StatusConnecting}, nil)
		p.observe(1, testParams(t), connection.Status{Kind: connection.StatusConnected}, nil)

		assert.Equal(t, uint64(1), p.dropped.Load())
		assert.Len(t, p.queue, 1)
	})
	t.Run("publication fails after retries", func(t *testing.T) {
		conn := NewStubConn()
		conn.PublishError = errStub
		p := newTestPublisher(t, NewStubConnectionPool(conn), 10)
		p.start()
		defer p.stop()

		p.observe(1, testParams(t), connection.Status{Kind: connection.StatusDisconnected}, nil)

		test.WaitFor(t, func() bool {
			return p.failed.Load() == 1
		}, time.Second, "timeout while waiting for publication to fail")
		assert.Equal(t, uint64(0), p.published.Load())
	})
	t.Run("pool unavailable", func(t *testing.T) {
		pool := &stubConnectionPool{conn: NewStubConn(), err: errStub}
		p := newTestPublisher(t, pool, 10)
		p.start()
		defer p.stop()

		p.observe(1, testParams(t), connection.Status{Kind: connection.StatusConnecting}, nil)

		test.WaitFor(t, func() bool {
			return p.failed.Load() == 1
		}, time.Second, "timeout while waiting for publication to fail")
	})
	t.Run("stop publishes queued events", func(t *testing.T) {
		conn := NewStubConn()
		p := newTestPublisher(t, NewStubConnectionPool(conn), 10)
		p.start()

		p.observe(1, testParams(t), connection.Status{Kind: connection.StatusConnected}, nil)
		p.observe(1, testParams(t), connection.Status{Kind: connection.StatusDisconnected}, nil)
		p.stop()

		require.Len(t, conn.Published(), 2)
		var last StatusEvent
		require.NoError(t, json.Unmarshal(conn.Published()[1].Data, &last))
		assert.Equal(t, "Disconnected", last.Status)
		assert.Equal(t, uint64(2), p.published.Load())
		assert.Equal(t, uint64(0), p.dropped.Load())
	})
	t.Run("stop aborts publishing after the drain timeout", func(t *testing.T) {
		p := newTestPublisherWithTimeout(t, blockingPool{}, 10, 10*time.Millisecond)
		p.start()
		p.observe(1, testParams(t), connection.Status{Kind: connection.StatusConnected}, nil)

		p.stop()

		assert.Equal(t, uint64(1), p.failed.Load())
	})
	t.Run("stop without start", func(t *testing.T) {
		p := newTestPublisher(t, NewStubConnectionPool(NewStubConn()), 10)

		p.stop()

		p.observe(1, testParams(t), connection.Status{Kind: connection.StatusConnecting}, nil)
		assert.Equal(t, uint64(1), p.dropped.Load())
	})
	t.Run("stopped", func(t *testing.T) {
		p := newTestPublisher(t, NewStubConnectionPool(NewStubConn()), 10)
		p.start()
		p.stop()
		p.stop()

		p.observe(1, testParams(t), connection.Status{Kind: connection.StatusConnecting}, nil)

		assert.Equal(t, uint64(1), p.dropped.Load())
	})
}
