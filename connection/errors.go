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

import "errors"

// ErrNotFound is returned when an identifier doesn't refer to a live connection.
var ErrNotFound = errors.New("connection not found")

// ErrDuplicateEndpoint is returned when adding a controller whose endpoint is already targeted by a live connection.
var ErrDuplicateEndpoint = errors.New("duplicate controller endpoint")

// ErrNotConnected is returned when sending a message over a connection that isn't established.
var ErrNotConnected = errors.New("connection not established")

// ErrProtocol is the reason of an Error status caused by the controller violating the protocol (e.g. failed handshake).
var ErrProtocol = errors.New("protocol error")

// ErrTransport is the reason of an Error status caused by the transport (e.g. connect refused, reset, liveness failure).
var ErrTransport = errors.New("transport error")

// ErrInvalidConfig is returned for invalid protocol or configuration parameters.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrInvalidMessage is returned when sending a message that can't be serialized.
var ErrInvalidMessage = errors.New("invalid message")

// ErrTableFull is returned when adding a controller while the maximum number of connections is reached.
var ErrTableFull = errors.New("maximum number of connections reached")

// ErrQueueFull is returned when sending a message while the outbound queue of the connection is full.
var ErrQueueFull = errors.New("outbound queue full")

// ErrNotInitialized is returned when the manager is used before Init or after Finish.
var ErrNotInitialized = errors.New("connection manager not initialized")
