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
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// ErrWouldBlock is returned by non-blocking socket operations that can't make progress right now.
// The operation should be retried when the socket manager reports the socket as ready.
var ErrWouldBlock = errors.New("operation would block")

// ErrClosed is returned when operating on a closed socket or socket manager.
var ErrClosed = errors.New("socket closed")

// ErrUnknownHandle is returned when a handle does not refer to a registered socket.
var ErrUnknownHandle = errors.New("unknown socket handle")

// EventMask is a bit set of socket readiness events.
type EventMask uint8

const (
	// Readable indicates received data (or end of stream) is available.
	Readable EventMask = 1 << iota
	// Writable indicates the socket is connected and can accept data.
	Writable
	// Error indicates the socket failed (e.g. connect refused, reset). It is always reported, regardless of interest.
	Error
)

// Has returns whether all events in other are set.
func (m EventMask) Has(other EventMask) bool {
	return m&other == other
}

func (m EventMask) String() string {
	var parts []string
	if m.Has(Readable) {
		parts = append(parts, "readable")
	}
	if m.Has(Writable) {
		parts = append(parts, "writable")
	}
	if m.Has(Error) {
		parts = append(parts, "error")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Handle identifies a socket registration.
type Handle int

// TimerID identifies a timer scheduled on the socket manager.
type TimerID uint64

// Callback is invoked on the event loop goroutine when a registered socket is ready.
type Callback func(handle Handle, events EventMask)

// Dialer opens network connections. net.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Manager is the cooperative, single-threaded I/O multiplexer.
// All methods except Invoke and Call must only be called from the event loop goroutine,
// which is the goroutine calling RunIteration (or Run).
type Manager interface {
	// Dial starts a non-blocking connect. The returned Conn reports Writable when connected, or Error when connecting failed.
	Dial(network, address string) (*Conn, error)
	// Register registers the socket for the given interest. The callback is invoked when the socket is ready.
	Register(conn *Conn, interest EventMask, callback Callback) (Handle, error)
	// SetInterest changes the events the callback is invoked for.
	SetInterest(handle Handle, interest EventMask) error
	// Unregister removes the registration. After it returns the callback of the registration is never invoked again.
	Unregister(handle Handle) error
	// AfterFunc schedules f to be called on the event loop after the given delay.
	AfterFunc(delay time.Duration, f func()) TimerID
	// CancelTimer cancels a timer. It returns false if the timer already fired or was cancelled.
	CancelTimer(id TimerID) bool
	// RunIteration waits at most the given timeout for sockets or timers to become ready and runs their callbacks.
	RunIteration(timeout time.Duration) error
	// Invoke schedules f to be called on the event loop goroutine. It can be called from any goroutine.
	Invoke(f func()) error
	// Call is like Invoke, but waits until f has been called. It must not be called from the event loop goroutine.
	Call(ctx context.Context, f func()) error
}
