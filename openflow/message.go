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
	"errors"
	"fmt"
)

// HeaderLen is the length of the header every OpenFlow message starts with.
const HeaderLen = 8

// MaxMessageLen is the maximum length of an OpenFlow message, header included.
const MaxMessageLen = 0xffff

// ErrIncomplete is returned by TryParse when the buffer doesn't contain a complete message yet.
var ErrIncomplete = errors.New("incomplete OpenFlow message")

// ErrMalformed is returned by TryParse when the buffer doesn't start with a valid OpenFlow header.
// The stream can't be resynchronized after it's returned.
var ErrMalformed = errors.New("malformed OpenFlow message")

// ErrTooLarge is returned by Serialize when the payload doesn't fit in a single message.
var ErrTooLarge = errors.New("OpenFlow message too large")

// Version is the OpenFlow protocol version, as sent on the wire.
type Version uint8

const (
	Version10 Version = 0x01
	Version11 Version = 0x02
	Version12 Version = 0x03
	Version13 Version = 0x04
	Version14 Version = 0x05
	Version15 Version = 0x06
)

// Valid returns whether the version is a released OpenFlow version.
func (v Version) Valid() bool {
	return v >= Version10 && v <= Version15
}

func (v Version) String() string {
	if !v.Valid() {
		return fmt.Sprintf("0x%02x", uint8(v))
	}
	return fmt.Sprintf("1.%d", uint8(v)-1)
}

// Type is the OpenFlow message type. Only the types the connection layer acts upon are named;
// all other types are passed through opaquely.
type Type uint8

const (
	TypeHello           Type = 0
	TypeError           Type = 1
	TypeEchoRequest     Type = 2
	TypeEchoReply       Type = 3
	TypeExperimenter    Type = 4
	TypeFeaturesRequest Type = 5
	TypeFeaturesReply   Type = 6
)

var typeNames = map[Type]string{
	TypeHello:           "HELLO",
	TypeError:           "ERROR",
	TypeEchoRequest:     "ECHO_REQUEST",
	TypeEchoReply:       "ECHO_REPLY",
	TypeExperimenter:    "EXPERIMENTER",
	TypeFeaturesRequest: "FEATURES_REQUEST",
	TypeFeaturesReply:   "FEATURES_REPLY",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TYPE_%d", uint8(t))
}

// Message is an OpenFlow message: a decoded header and the opaque body following it.
type Message struct {
	Version Version
	Type    Type
	XID     uint32
	Payload []byte
}

// Len returns the length of the serialized message.
func (m Message) Len() int {
	return HeaderLen + len(m.Payload)
}

func (m Message) String() string {
	return fmt.Sprintf("%s(version=%s, xid=%d, len=%d)", m.Type, m.Version, m.XID, m.Len())
}

// TryParse parses the first message in buf. It returns the message and the number of bytes it occupied in buf.
// If buf doesn't contain a full message ErrIncomplete is returned; nothing is consumed in that case.
// The payload of the returned message is a copy, so buf may be reused.
func TryParse(buf []byte) (Message, int, error) {
	if len(buf) < HeaderLen {
		return Message{}, 0, ErrIncomplete
	}
	length := int(binary.BigEndian.Uint16(buf[2:4]))
	if length < HeaderLen {
		return Message{}, 0, fmt.Errorf("%w: length %d is shorter than header", ErrMalformed, length)
	}
	if len(buf) < length {
		return Message{}, 0, ErrIncomplete
	}
	msg := Message{
		Version: Version(buf[0]),
		Type:    Type(buf[1]),
		XID:     binary.BigEndian.Uint32(buf[4:8]),
	}
	if length > HeaderLen {
		msg.Payload = make([]byte, length-HeaderLen)
		copy(msg.Payload, buf[HeaderLen:length])
	}
	return msg, length, nil
}

// Serialize encodes the message into its wire format.
func Serialize(msg Message) ([]byte, error) {
	if msg.Len() > MaxMessageLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, msg.Len())
	}
	buf := make([]byte, msg.Len())
	buf[0] = byte(msg.Version)
	buf[1] = byte(msg.Type)
	binary.BigEndian.PutUint16(buf[2:4], uint16(msg.Len()))
	binary.BigEndian.PutUint32(buf[4:8], msg.XID)
	copy(buf[HeaderLen:], msg.Payload)
	return buf, nil
}
