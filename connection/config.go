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

	"github.com/nuts-foundation/nuts-ofagent/openflow"
)

// Config holds the configuration of the connection manager.
type Config struct {
	// Enabled specifies whether connections are made when the agent starts. If false, connections are only made after
	// they've been enabled through the API.
	Enabled bool `koanf:"enabled"`
	// Controllers holds the addresses of the controllers that are added when the agent starts.
	Controllers []string `koanf:"controllers"`
	// Version is the OpenFlow protocol version (wire value, e.g. 4 for 1.3) announced to and required from controllers.
	Version int `koanf:"version"`
	// MaxConnections is the maximum number of controllers.
	MaxConnections int `koanf:"maxconnections"`
	// TickInterval is the interval at which timeouts, keepalives and reconnects are checked.
	TickInterval time.Duration `koanf:"tickinterval"`
	// ConnectTimeout is the maximum time a TCP connect may take.
	ConnectTimeout time.Duration `koanf:"connecttimeout"`
	// HandshakeTimeout is the maximum time between connecting and receiving the controller's HELLO.
	HandshakeTimeout time.Duration `koanf:"handshaketimeout"`
	Keepalive        KeepaliveConfig `koanf:"keepalive"`
	Backoff          BackoffConfig   `koanf:"backoff"`
	// MaxOutboundQueue is the maximum number of messages queued for sending, per connection.
	MaxOutboundQueue int `koanf:"maxoutboundqueue"`
	// MaxConnectsPerTick is the maximum number of reconnects started per tick.
	MaxConnectsPerTick int `koanf:"maxconnectspertick"`
	// ConnectRate is the maximum number of reconnects per second, across all connections.
	ConnectRate float64 `koanf:"connectrate"`
	// MaxFlushBytes is the maximum number of bytes written to a connection at once.
	MaxFlushBytes int `koanf:"maxflushbytes"`
}

// KeepaliveConfig holds the configuration of the echo based liveness check.
type KeepaliveConfig struct {
	// Interval is the period of inactivity after which an echo request is sent. 0 disables the keepalive.
	Interval time.Duration `koanf:"interval"`
	// Timeout is the time the controller gets to reply to an echo request.
	Timeout time.Duration `koanf:"timeout"`
}

// BackoffConfig holds the bounds of the reconnect backoff.
type BackoffConfig struct {
	Min time.Duration `koanf:"min"`
	Max time.Duration `koanf:"max"`
}

// DefaultConfig returns the default connection manager configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:          false,
		Version:          int(openflow.Version13),
		MaxConnections:   16,
		TickInterval:     100 * time.Millisecond,
		ConnectTimeout:   5 * time.Second,
		HandshakeTimeout: 5 * time.Second,
		Keepalive: KeepaliveConfig{
			Interval: 5 * time.Second,
			Timeout:  5 * time.Second,
		},
		Backoff: BackoffConfig{
			Min: time.Second,
			Max: 30 * time.Second,
		},
		MaxOutboundQueue:   1024,
		MaxConnectsPerTick: 4,
		ConnectRate:        10,
		MaxFlushBytes:      256 * 1024,
	}
}

// ProtocolVersion returns the configured OpenFlow version.
func (c Config) ProtocolVersion() openflow.Version {
	return openflow.Version(c.Version)
}

func (c Config) validate() error {
	if c.Version < 0 || c.Version > 0xff || !c.ProtocolVersion().Valid() {
		return errors.New("cxn.version must be an OpenFlow version between 1 (1.0) and 6 (1.5)")
	}
	if c.MaxConnections <= 0 {
		return errors.New("cxn.maxconnections must be greater than 0")
	}
	if c.TickInterval <= 0 || c.ConnectTimeout <= 0 || c.HandshakeTimeout <= 0 {
		return errors.New("cxn.tickinterval, cxn.connecttimeout and cxn.handshaketimeout must be greater than 0")
	}
	if c.Keepalive.Interval < 0 || (c.Keepalive.Interval > 0 && c.Keepalive.Timeout <= 0) {
		return errors.New("cxn.keepalive.timeout must be greater than 0 when the keepalive is enabled")
	}
	if c.Backoff.Min <= 0 || c.Backoff.Max < c.Backoff.Min {
		return errors.New("cxn.backoff.min must be greater than 0 and not greater than cxn.backoff.max")
	}
	if c.MaxOutboundQueue <= 0 || c.MaxConnectsPerTick <= 0 || c.MaxFlushBytes <= 0 {
		return errors.New("cxn.maxoutboundqueue, cxn.maxconnectspertick and cxn.maxflushbytes must be greater than 0")
	}
	if c.ConnectRate <= 0 {
		return errors.New("cxn.connectrate must be greater than 0")
	}
	return nil
}
