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
	"sync"
	"testing"
	"time"

	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/nuts-foundation/nuts-ofagent/openflow"
	"github.com/nuts-foundation/nuts-ofagent/socket"
	"github.com/nuts-foundation/nuts-ofagent/test"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startModule starts an event loop on a goroutine of its own, and the connection module on it.
func startModule(t *testing.T, configure func(config *Config)) *Module {
	loop := socket.NewLoop()
	require.NoError(t, loop.Configure(*core.NewServerConfig()))
	require.NoError(t, loop.Start())
	t.Cleanup(func() {
		_ = loop.Shutdown()
	})
	module := NewModule(loop, WithRegisterer(prometheus.NewRegistry()))
	config := module.Config().(*Config)
	config.TickInterval = 10 * time.Millisecond
	config.Backoff.Min = 10 * time.Millisecond
	config.Backoff.Max = 50 * time.Millisecond
	if configure != nil {
		configure(config)
	}
	require.NoError(t, module.Configure(*core.NewServerConfig()))
	require.NoError(t, module.Start())
	t.Cleanup(func() {
		_ = module.Shutdown()
	})
	return module
}

func waitForState(t *testing.T, module *Module, id ID, state State) {
	t.Helper()
	test.WaitFor(t, func() bool {
		list, err := module.ListControllers(context.Background())
		if err != nil {
			return false
		}
		for _, info := range list {
			if info.ID == id {
				return info.State == state
			}
		}
		return false
	}, testTimeout, "connection %d not %s", id, state)
}

func TestModule_Configure(t *testing.T) {
	t.Run("controllers", func(t *testing.T) {
		module := NewModule(socket.NewLoop())
		module.config.Controllers = []string{"10.0.0.1", "tcp6://[2001:db8::1]:6633"}

		require.NoError(t, module.Configure(*core.NewServerConfig()))

		require.Len(t, module.controllers, 2)
		assert.Equal(t, "tcp4://10.0.0.1:6653", module.controllers[0].Endpoint())
		assert.Equal(t, "tcp6://[2001:db8::1]:6633", module.controllers[1].Endpoint())
	})
	t.Run("invalid controller address", func(t *testing.T) {
		module := NewModule(socket.NewLoop())
		module.config.Controllers = []string{"controller.example.com"}

		err := module.Configure(*core.NewServerConfig())

		test.AssertIsError(t, err, ErrInvalidConfig)
	})
	t.Run("invalid config", func(t *testing.T) {
		module := NewModule(socket.NewLoop())
		module.config.MaxConnections = 0

		err := module.Configure(*core.NewServerConfig())

		test.AssertIsError(t, err, ErrInvalidConfig)
	})
}

func TestModule_Lifecycle(t *testing.T) {
	controller := newFakeController(t, openflow.Version13)
	module := startModule(t, func(config *Config) {
		config.Enabled = true
		config.Controllers = []string{controller.address()}
	})

	waitForState(t, module, 0, StateEstablished)

	enabled, err := module.IsEnabled(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
	require.NoError(t, module.Shutdown())
	_, err = module.ListControllers(context.Background())
	test.AssertIsError(t, err, ErrNotInitialized)
	_, err = module.IsEnabled(context.Background())
	test.AssertIsError(t, err, ErrNotInitialized)
}

func TestModule_Controllers(t *testing.T) {
	ctx := context.Background()
	t.Run("add, list and remove", func(t *testing.T) {
		controller := newFakeController(t, openflow.Version13)
		module := startModule(t, nil)

		info, err := module.AddController(ctx, controller.address(), 0)
		require.NoError(t, err)
		assert.Equal(t, ID(0), info.ID)
		assert.Equal(t, StateIdle, info.State)
		assert.Equal(t, "1.3", info.Version)
		list, err := module.ListControllers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []Info{info}, list)

		require.NoError(t, module.SetEnabled(ctx, true))
		waitForState(t, module, info.ID, StateEstablished)

		require.NoError(t, module.RemoveController(ctx, info.ID))
		list, err = module.ListControllers(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
		test.AssertIsError(t, module.RemoveController(ctx, info.ID), ErrNotFound)
	})
	t.Run("explicit version", func(t *testing.T) {
		module := startModule(t, nil)

		info, err := module.AddController(ctx, "10.0.0.1:6633", openflow.Version10)

		require.NoError(t, err)
		assert.Equal(t, "1.0", info.Version)
		assert.Equal(t, "tcp4://10.0.0.1:6633", info.Endpoint)
	})
	t.Run("invalid address", func(t *testing.T) {
		module := startModule(t, nil)

		_, err := module.AddController(ctx, "controller.example.com", 0)

		test.AssertIsError(t, err, ErrInvalidConfig)
	})
	t.Run("invalid version", func(t *testing.T) {
		module := startModule(t, nil)

		_, err := module.AddController(ctx, "10.0.0.1", 9)

		test.AssertIsError(t, err, ErrInvalidConfig)
	})
	t.Run("duplicate", func(t *testing.T) {
		module := startModule(t, nil)
		_, err := module.AddController(ctx, "10.0.0.1", 0)
		require.NoError(t, err)

		_, err = module.AddController(ctx, "tcp://10.0.0.1:6653", 0)

		test.AssertIsError(t, err, ErrDuplicateEndpoint)
	})
	t.Run("enable and disable", func(t *testing.T) {
		module := startModule(t, nil)

		enabled, err := module.IsEnabled(ctx)
		require.NoError(t, err)
		assert.False(t, enabled)
		require.NoError(t, module.SetEnabled(ctx, true))
		enabled, _ = module.IsEnabled(ctx)
		assert.True(t, enabled)
		require.NoError(t, module.SetEnabled(ctx, false))
		enabled, _ = module.IsEnabled(ctx)
		assert.False(t, enabled)
	})
	t.Run("event loop stopped", func(t *testing.T) {
		loop := socket.NewLoop()
		require.NoError(t, loop.Close())
		module := NewModule(loop)

		_, err := module.ListControllers(ctx)

		test.AssertIsError(t, err, socket.ErrClosed)
	})
}

func TestModule_Diagnostics(t *testing.T) {
	controller := newFakeController(t, openflow.Version13)
	module := startModule(t, func(config *Config) {
		config.Enabled = true
		config.Controllers = []string{controller.address(), "10.0.0.1"}
	})
	waitForState(t, module, 0, StateEstablished)

	results := module.Diagnostics()

	require.Len(t, results, 5)
	values := map[string]string{}
	for _, result := range results {
		values[result.Name()] = result.String()
	}
	assert.Equal(t, "true", values["initialized"])
	assert.Equal(t, "true", values["enabled"])
	assert.Equal(t, "2", values["connections_count"])
	assert.Equal(t, "1", values["connected_count"])
	assert.Contains(t, values["connections"], fmt.Sprintf("0: tcp4://%s (state=Established", controller.address()))
	assert.Contains(t, values["connections"], "1: tcp4://10.0.0.1:6653")
}

func TestModule_ObserveStatus(t *testing.T) {
	ctx := context.Background()
	controller := newFakeController(t, openflow.Version13)
	module := startModule(t, nil)
	var mux sync.Mutex
	var kinds []StatusKind
	require.NoError(t, module.ObserveStatus(ctx, func(id ID, params ProtocolParams, status Status, _ interface{}) {
		mux.Lock()
		defer mux.Unlock()
		kinds = append(kinds, status.Kind)
	}))

	info, err := module.AddController(ctx, controller.address(), 0)
	require.NoError(t, err)
	require.NoError(t, module.SetEnabled(ctx, true))
	waitForState(t, module, info.ID, StateEstablished)

	mux.Lock()
	defer mux.Unlock()
	assert.Contains(t, kinds, StatusConnecting)
	assert.Contains(t, kinds, StatusConnected)
}
