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
	"fmt"
	"time"

	"github.com/nuts-foundation/nuts-ofagent/openflow"
)

// ID identifies a connection. The lowest free value is allocated when a controller is added,
// and it only becomes free again after the connection was removed and cleaned up.
type ID int

// State is the state of a connection.
type State int

const (
	// StateIdle indicates the connection isn't connected; it waits for the reconnect backoff or for being enabled.
	StateIdle State = iota
	// StateConnecting indicates the TCP connect is in progress.
	StateConnecting
	// StateHandshaking indicates the HELLO exchange is in progress.
	StateHandshaking
	// StateEstablished indicates the connection is usable for application messages.
	StateEstablished
	// StateClosing indicates the connection is being torn down.
	StateClosing
	// StateClosed indicates the socket has been released.
	StateClosed
)

var stateNames = []string{"Idle", "Connecting", "Handshaking", "Established", "Closing", "Closed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StatusKind is the coarse status reported to status observers.
type StatusKind int

const (
	StatusDisconnected StatusKind = iota
	StatusConnecting
	StatusConnected
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusDisconnected:
		return "Disconnected"
	case StatusConnecting:
		return "Connecting"
	case StatusConnected:
		return "Connected"
	case StatusError:
		return "Error"
	default:
		return fmt.Sprintf("StatusKind(%d)", int(k))
	}
}

// Status is the coarse status of a connection. Reason is only set for StatusError,
// and matches either ErrTransport or ErrProtocol.
type Status struct {
	Kind   StatusKind
	Reason error
}

func (s Status) String() string {
	if s.Kind == StatusError && s.Reason != nil {
		return fmt.Sprintf("%s: %s", s.Kind, s.Reason)
	}
	return s.Kind.String()
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// statusOf maps a state onto the status it is reported as.
func statusOf(state State) StatusKind {
	switch state {
	case StateConnecting, StateHandshaking:
		return StatusConnecting
	case StateEstablished:
		return StatusConnected
	default:
		return StatusDisconnected
	}
}

// ConfigParams holds the protocol configuration of a connection.
type ConfigParams struct {
	// Version is the OpenFlow version the agent announces and requires.
	Version openflow.Version
}

// ObserverHandle identifies a registered status observer.
type ObserverHandle int

// StatusObserver is called when the status of a connection changes. The cookie is the value passed on registration.
// It's called on the event loop goroutine; it may call the Manager, e.g. to remove the connection.
type StatusObserver func(id ID, params ProtocolParams, status Status, cookie interface{})

// MessageHandler is called for every received OpenFlow message that isn't handled by the connection itself
// (handshake and keepalive messages). It's called on the event loop goroutine.
type MessageHandler func(id ID, msg openflow.Message)

// Info is a snapshot of a connection.
type Info struct {
	ID              ID         `json:"id"`
	Endpoint        string     `json:"endpoint"`
	Version         string     `json:"version"`
	State           State      `json:"state"`
	Status          Status     `json:"status"`
	Session         string     `json:"session,omitempty"`
	ConnectAttempts int        `json:"connectAttempts"`
	LastError       string     `json:"lastError,omitempty"`
	ConnectedSince  *time.Time `json:"connectedSince,omitempty"`
	OutboundQueue   int        `json:"outboundQueue"`
}

func (i Info) String() string {
	return fmt.Sprintf("%d: %s (state=%s, status=%s, attempts=%d)", i.ID, i.Endpoint, i.State, i.Status, i.ConnectAttempts)
}
