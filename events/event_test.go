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
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	natsServer "github.com/nats-io/nats-server/v2/server"
	"github.com/nuts-foundation/nuts-ofagent/connection"
	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/nuts-foundation/nuts-ofagent/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	observer connection.StatusObserver
	err      error
}

func (s *stubSource) ObserveStatus(_ context.Context, observer connection.StatusObserver) error {
	if s.err != nil {
		return s.err
	}
	s.observer = observer
	return nil
}

func createManager(t *testing.T, source StatusSource) *Manager {
	eventManager := NewManager(source)
	eventManager.config.Enabled = true
	eventManager.config.Nats.Port = natsServer.RANDOM_PORT
	eventManager.config.Nats.Hostname = "127.0.0.1"
	eventManager.config.Nats.StorageDir = t.TempDir()
	require.NoError(t, eventManager.Configure(*core.NewServerConfig()))
	require.NoError(t, eventManager.Start())
	t.Cleanup(func() {
		_ = eventManager.Shutdown()
	})
	return eventManager
}

func Test_pub_sub(t *testing.T) {
	source := &stubSource{}
	eventManager := createManager(t, source)
	require.NotNil(t, source.observer)

	conn, js, err := eventManager.Pool().Acquire(context.Background())
	require.NoError(t, err)
	subscription, err := conn.(*nats.Conn).SubscribeSync(ConnectionStatusSubject + ".>")
	require.NoError(t, err)
	require.NoError(t, conn.(*nats.Conn).Flush())

	source.observer(7, testParams(t), connection.Status{Kind: connection.StatusError, Reason: errors.New("connection refused")}, nil)

	msg, err := subscription.NextMsg(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ofagent.cxn.status.7", msg.Subject)
	var event StatusEvent
	require.NoError(t, json.Unmarshal(msg.Data, &event))
	assert.Equal(t, connection.ID(7), event.ID)
	assert.Equal(t, "Error", event.Status)
	assert.Equal(t, "connection refused", event.Reason)
	t.Run("event is retained in stream", func(t *testing.T) {
		test.WaitFor(t, func() bool {
			info, err := js.StreamInfo(ConnectionStatusStream)
			return err == nil && info.State.Msgs == 1
		}, 5*time.Second, "timeout while waiting for stream to contain the event")
	})
}

func TestManager_Start(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		source := &stubSource{}
		eventManager := NewManager(source)
		require.NoError(t, eventManager.Configure(*core.NewServerConfig()))

		require.NoError(t, eventManager.Start())

		assert.Nil(t, source.observer)
		assert.Nil(t, eventManager.Pool())
		assert.NoError(t, eventManager.Shutdown())
		assert.Len(t, eventManager.Diagnostics(), 1)
	})
	t.Run("unable to observe", func(t *testing.T) {
		eventManager := NewManager(&stubSource{err: connection.ErrNotInitialized})
		eventManager.config.Enabled = true
		eventManager.config.Nats.Port = natsServer.RANDOM_PORT
		eventManager.config.Nats.StorageDir = t.TempDir()

		err := eventManager.Start()

		assert.ErrorIs(t, err, connection.ErrNotInitialized)
		assert.Nil(t, eventManager.server)
	})
}

func TestManager_Shutdown(t *testing.T) {
	source := &stubSource{}
	eventManager := createManager(t, source)

	source.observer(2, testParams(t), connection.Status{Kind: connection.StatusConnected}, nil)
	source.observer(2, testParams(t), connection.Status{Kind: connection.StatusDisconnected}, nil)
	require.NoError(t, eventManager.Shutdown())

	assert.Equal(t, uint64(2), eventManager.publisher.published.Load())
	assert.Equal(t, uint64(0), eventManager.publisher.dropped.Load())
	// shutting down again is a no-op
	assert.NoError(t, eventManager.Shutdown())
}

func TestManager_Configure(t *testing.T) {
	eventManager := NewManager(&stubSource{})
	eventManager.config.QueueSize = -1

	err := eventManager.Configure(*core.NewServerConfig())

	assert.EqualError(t, err, "invalid events configuration: events.queuesize must be greater than 0")
}

func TestManager_Diagnostics(t *testing.T) {
	source := &stubSource{}
	eventManager := createManager(t, source)

	diagnostics := eventManager.Diagnostics()

	require.Len(t, diagnostics, 4)
	assert.Equal(t, "enabled", diagnostics[0].Name())
	assert.Equal(t, true, diagnostics[0].Result())
	assert.Equal(t, "published", diagnostics[1].Name())
}

func TestManager_Name(t *testing.T) {
	eventManager := NewManager(&stubSource{})

	assert.Equal(t, "Events", eventManager.Name())
	assert.Equal(t, "events", eventManager.ConfigKey())
	assert.IsType(t, &Config{}, eventManager.Config())
}
