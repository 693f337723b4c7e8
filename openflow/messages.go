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

package openflow

import (
	"encoding/binary"
	"fmt"
)

// ErrorType is the type field of an OFPT_ERROR message.
type ErrorType uint16

// ErrorTypeHelloFailed indicates the hello protocol failed.
const ErrorTypeHelloFailed ErrorType = 0

const (
	// HelloFailedIncompatible indicates no compatible version.
	HelloFailedIncompatible uint16 = 0
	// HelloFailedPermissionDenied indicates a permissions error.
	HelloFailedPermissionDenied uint16 = 1
)

// maxErrorData is the number of bytes of the offending message an error message carries.
const maxErrorData = 64

// NewHello creates an OFPT_HELLO message announcing the given version.
func NewHello(version Version, xid uint32) Message {
	return Message{Version: version, Type: TypeHello, XID: xid}
}

// NewEchoRequest creates an OFPT_ECHO_REQUEST message.
func NewEchoRequest(version Version, xid uint32, data []byte) Message {
	return Message{Version: version, Type: TypeEchoRequest, XID: xid, Payload: data}
}

// NewEchoReply creates the OFPT_ECHO_REPLY to the given echo request. It has the same version, xid and data.
func NewEchoReply(request Message) Message {
	var payload []byte
	if len(request.Payload) > 0 {
		payload = make([]byte, len(request.Payload))
		copy(payload, request.Payload)
	}
	return Message{Version: request.Version, Type: TypeEchoReply, XID: request.XID, Payload: payload}
}

// NewError creates an OFPT_ERROR message. At most the first 64 bytes of data (the offending message) are included.
func NewError(version Version, xid uint32, errorType ErrorType, code uint16, data []byte) Message {
	if len(data) > maxErrorData {
		data = data[:maxErrorData]
	}
	payload := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(payload[0:2], uint16(errorType))
	binary.BigEndian.PutUint16(payload[2:4], code)
	copy(payload[4:], data)
	return Message{Version: version, Type: TypeError, XID: xid, Payload: payload}
}

// NewHelloFailed creates the OFPT_ERROR message sent when version negotiation fails.
// Its data is an ASCII description of the failure, as recommended for HELLO_FAILED errors.
func NewHelloFailed(version Version, xid uint32, reason string) Message {
	return NewError(version, xid, ErrorTypeHelloFailed, HelloFailedIncompatible, []byte(reason))
}

// ErrorBody is the decoded body of an OFPT_ERROR message.
type ErrorBody struct {
	Type ErrorType
	Code uint16
	Data []byte
}

func (e ErrorBody) String() string {
	return fmt.Sprintf("type=%d, code=%d", e.Type, e.Code)
}

// ParseError decodes the body of an OFPT_ERROR message.
func ParseError(msg Message) (ErrorBody, error) {
	if msg.Type != TypeError {
		return ErrorBody{}, fmt.Errorf("not an error message: %s", msg.Type)
	}
	if len(msg.Payload) < 4 {
		return ErrorBody{}, fmt.Errorf("%w: error body too short (%d bytes)", ErrMalformed, len(msg.Payload))
	}
	return ErrorBody{
		Type: ErrorType(binary.BigEndian.Uint16(msg.Payload[0:2])),
		Code: binary.BigEndian.Uint16(msg.Payload[2:4]),
		Data: msg.Payload[4:],
	}, nil
}
