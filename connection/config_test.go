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
	"testing"
	"time"

	"github.com/nuts-foundation/nuts-ofagent/openflow"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.NoError(t, config.validate())
	assert.False(t, config.Enabled)
	assert.Equal(t, openflow.Version13, config.ProtocolVersion())
}

func TestConfig_validate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(config *Config)
		err    string
	}{
		{"version 0", func(c *Config) { c.Version = 0 }, "cxn.version must be"},
		{"unknown version", func(c *Config) { c.Version = 7 }, "cxn.version must be"},
		{"version overflow", func(c *Config) { c.Version = 0x104 }, "cxn.version must be"},
		{"max connections", func(c *Config) { c.MaxConnections = 0 }, "cxn.maxconnections"},
		{"tick interval", func(c *Config) { c.TickInterval = 0 }, "cxn.tickinterval"},
		{"handshake timeout", func(c *Config) { c.HandshakeTimeout = -time.Second }, "cxn.handshaketimeout"},
		{"keepalive timeout", func(c *Config) { c.Keepalive.Timeout = 0 }, "cxn.keepalive.timeout"},
		{"backoff min", func(c *Config) { c.Backoff.Min = 0 }, "cxn.backoff.min"},
		{"backoff max below min", func(c *Config) { c.Backoff.Max = c.Backoff.Min / 2 }, "cxn.backoff.max"},
		{"outbound queue", func(c *Config) { c.MaxOutboundQueue = 0 }, "cxn.maxoutboundqueue"},
		{"connect rate", func(c *Config) { c.ConnectRate = 0 }, "cxn.connectrate"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			config := DefaultConfig()
			testCase.modify(&config)

			err := config.validate()

			assert.ErrorContains(t, err, testCase.err)
		})
	}
	t.Run("keepalive disabled without timeout", func(t *testing.T) {
		config := DefaultConfig()
		config.Keepalive = KeepaliveConfig{}

		assert.NoError(t, config.validate())
	})
}
