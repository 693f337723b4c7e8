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

package core

const (
	// LogFieldModule is the log field for the module name.
	LogFieldModule = "module"

	// LogFieldConnectionID is the log field key for the identifier of a controller connection from the connection module.
	LogFieldConnectionID = "cxnID"
	// LogFieldConnectionSession is the log field key for the session of a single connect attempt of a controller connection.
	LogFieldConnectionSession = "cxnSession"
	// LogFieldConnectionState is the log field key for the state of a controller connection.
	LogFieldConnectionState = "cxnState"
	// LogFieldPeerAddr is the log field key for controller addresses from the connection module.
	LogFieldPeerAddr = "peerAddr"
	// LogFieldProtocolVersion is the log field key for the OpenFlow protocol version.
	LogFieldProtocolVersion = "protocolVersion"
	// LogFieldMessageType is the log field key for the type, of a received/sent OpenFlow message.
	LogFieldMessageType = "messageType"
	// LogFieldTransactionID is the log field key for the transaction ID (xid) of an OpenFlow message.
	LogFieldTransactionID = "xid"

	// LogFieldSocketHandle is the log field key for the handle of a socket registered with the socket manager.
	LogFieldSocketHandle = "socketHandle"
	// LogFieldRemoteAddr is the log field key for the remote address of a socket.
	LogFieldRemoteAddr = "remoteAddr"
)
