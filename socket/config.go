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

package socket

import (
	"errors"
	"time"

	"github.com/spf13/pflag"
)

// Config holds the configuration of the socket manager.
type Config struct {
	// ReadBufferSize is the size of the chunks read from a socket, and the amount of unconsumed data after which reading pauses.
	ReadBufferSize int `koanf:"readbuffersize"`
	// WriteQueueSize is the number of writes that can be pending on a socket before it stops being writable.
	WriteQueueSize int `koanf:"writequeuesize"`
	// EventQueueSize is the capacity of the queue through which I/O completions are passed to the event loop.
	EventQueueSize int `koanf:"eventqueuesize"`
	// MaxEventsPerIteration bounds the number of completions processed per loop iteration.
	MaxEventsPerIteration int `koanf:"maxeventsperiteration"`
	// DialTimeout is the maximum time a non-blocking connect may take.
	DialTimeout time.Duration `koanf:"dialtimeout"`
	// FlushTimeout is the time pending writes get to be flushed when a socket is closed.
	FlushTimeout time.Duration `koanf:"flushtimeout"`
}

// DefaultConfig returns the default socket manager configuration.
func DefaultConfig() Config {
	return Config{
		ReadBufferSize:        64 * 1024,
		WriteQueueSize:        64,
		EventQueueSize:        1024,
		MaxEventsPerIteration: 256,
		DialTimeout:           10 * time.Second,
		FlushTimeout:          2 * time.Second,
	}
}

func (c Config) validate() error {
	if c.ReadBufferSize <= 0 || c.WriteQueueSize <= 0 || c.EventQueueSize <= 0 || c.MaxEventsPerIteration <= 0 {
		return errors.New("socket buffer and queue sizes must be greater than 0")
	}
	if c.DialTimeout <= 0 {
		return errors.New("socket.dialtimeout must be greater than 0")
	}
	return nil
}

// FlagSet contains flags relevant for the socket manager.
func FlagSet() *pflag.FlagSet {
	defs := DefaultConfig()
	flagSet := pflag.NewFlagSet("socket", pflag.ContinueOnError)
	flagSet.Int("socket.readbuffersize", defs.ReadBufferSize, "Size in bytes of socket read chunks, and the amount of unconsumed received data after which reading pauses.")
	flagSet.Int("socket.writequeuesize", defs.WriteQueueSize, "Number of writes that can be pending on a socket before it stops being writable.")
	flagSet.Int("socket.eventqueuesize", defs.EventQueueSize, "Capacity of the queue passing I/O completions to the event loop.")
	flagSet.Int("socket.maxeventsperiteration", defs.MaxEventsPerIteration, "Maximum number of I/O completions processed per event loop iteration.")
	flagSet.Duration("socket.dialtimeout", defs.DialTimeout, "Maximum duration of connecting to a remote address.")
	flagSet.Duration("socket.flushtimeout", defs.FlushTimeout, "Time pending writes get to be flushed when a socket is closed.")
	return flagSet
}
