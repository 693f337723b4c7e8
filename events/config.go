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
	"errors"
	"time"
)

// Config holds all the configuration params
type Config struct {
	// Enabled specifies whether the NATS server is started and connection status events are published on it.
	Enabled bool `koanf:"enabled"`
	// QueueSize is the number of status events that can be pending for publication. Events are dropped when it's full.
	QueueSize int        `koanf:"queuesize"`
	Nats      NatsConfig `koanf:"nats"`
}

// NatsConfig holds the configuration of the embedded NATS server.
type NatsConfig struct {
	Port       int    `koanf:"port"`
	Hostname   string `koanf:"hostname"`
	StorageDir string `koanf:"storagedir"`
	// Timeout in seconds
	Timeout int `koanf:"timeout"`
}

// DefaultConfig returns an instance of Config with the default values.
func DefaultConfig() Config {
	return Config{
		QueueSize: 1024,
		Nats: NatsConfig{
			Port:     4022,
			Hostname: "localhost",
			Timeout:  30,
		},
	}
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.Nats.Timeout) * time.Second
}

func (c Config) validate() error {
	if c.QueueSize <= 0 {
		return errors.New("events.queuesize must be greater than 0")
	}
	// -1 selects a random port
	if c.Nats.Port < -1 || c.Nats.Port > 65535 {
		return errors.New("events.nats.port must be a valid port number")
	}
	if c.Nats.Timeout <= 0 {
		return errors.New("events.nats.timeout must be greater than 0")
	}
	return nil
}
