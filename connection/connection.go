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
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/nuts-foundation/nuts-ofagent/connection/log"
	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/nuts-foundation/nuts-ofagent/openflow"
	"github.com/nuts-foundation/nuts-ofagent/socket"
	"github.com/sirupsen/logrus"
)

// conn is a connection to a single controller. It's owned by the table and only accessed on the event loop goroutine.
type conn struct {
	m      *Manager
	id     ID
	params ProtocolParams
	config ConfigParams
	state  State
	// status is the last status reported to observers.
	status StatusKind
	marked bool

	session  uuid.UUID
	socket   *socket.Conn
	handle   socket.Handle
	interest socket.EventMask
	// outbound holds serialized messages in order of sending.
	outbound [][]byte
	// inbound holds received bytes that don't form a complete message yet.
	inbound []byte

	xid               uint32
	lastActivity      time.Time
	echoPending       bool
	echoXID           uint32
	echoDeadline      time.Time
	connectDeadline   time.Time
	handshakeDeadline time.Time
	connectedSince    time.Time

	backoff  Backoff
	retryAt  time.Time
	attempts int
	lastErr  error
}

func (c *conn) logger() *logrus.Entry {
	fields := logrus.Fields{
		core.LogFieldConnectionID: c.id,
		core.LogFieldPeerAddr:     c.params.Endpoint(),
	}
	if c.session != uuid.Nil {
		fields[core.LogFieldConnectionSession] = c.session.String()
	}
	return log.Logger().WithFields(fields)
}

func (c *conn) setState(state State) {
	if c.state == state {
		return
	}
	c.logger().Tracef("State: %s -> %s", c.state, state)
	c.m.metrics.transition(c.state, state)
	c.state = state
}

// notify reports the status of the current state, if it differs from the last reported status.
// An error counts as disconnected, so the teardown that caused it isn't reported twice.
func (c *conn) notify() {
	kind := statusOf(c.state)
	if kind == c.status || (kind == StatusDisconnected && c.status == StatusError) {
		return
	}
	c.status = kind
	c.m.dispatcher.notify(c.id, c.params, Status{Kind: kind})
}

// reportDisconnected reports Disconnected, also when the last reported status was an error.
func (c *conn) reportDisconnected() {
	if c.status == StatusDisconnected {
		return
	}
	c.status = StatusDisconnected
	c.m.dispatcher.notify(c.id, c.params, Status{Kind: StatusDisconnected})
}

// active returns whether the connection has a connected socket on which messages are exchanged.
func (c *conn) active() bool {
	return !c.marked && (c.state == StateHandshaking || c.state == StateEstablished)
}

func (c *conn) nextXID() uint32 {
	c.xid++
	if c.xid == 0 {
		c.xid = 1
	}
	return c.xid
}

// connect starts a connect attempt: Idle -> Connecting.
func (c *conn) connect() {
	m := c.m
	c.session = uuid.New()
	c.attempts++
	m.metrics.connectAttempts.Inc()
	c.setState(StateConnecting)
	c.connectDeadline = m.now().Add(m.config.ConnectTimeout)
	c.logger().Debugf("Connecting to controller (attempt=%d)", c.attempts)

	sock, err := m.loop.Dial(c.params.Network(), c.params.DialAddress())
	if err == nil {
		c.socket = sock
		c.interest = socket.Writable
		c.handle, err = m.loop.Register(sock, c.interest, m.readyCallback(c.id))
	}
	if err != nil {
		c.fail(core.WrapErrorf(ErrTransport, "unable to connect: %w", err))
		return
	}
	c.notify()
}

// onReady handles the readiness of the connection's socket.
func (c *conn) onReady(events socket.EventMask) {
	switch c.state {
	case StateConnecting:
		if events.Has(socket.Error) {
			c.fail(core.WrapErrorf(ErrTransport, "unable to connect: %w", c.socket.Err()))
			return
		}
		if events.Has(socket.Writable) && c.socket.Connected() {
			c.startHandshake()
		}
	case StateHandshaking, StateEstablished:
		sock := c.socket
		if events.Has(socket.Readable) {
			c.receive()
		}
		if c.socket != sock || !c.active() {
			return
		}
		if events.Has(socket.Error) {
			c.fail(core.WrapError(ErrTransport, sock.Err()))
			return
		}
		if events.Has(socket.Writable) {
			c.flush()
		}
	}
}

// startHandshake sends the HELLO: Connecting -> Handshaking.
func (c *conn) startHandshake() {
	now := c.m.now()
	c.setState(StateHandshaking)
	c.connectDeadline = time.Time{}
	c.handshakeDeadline = now.Add(c.m.config.HandshakeTimeout)
	c.lastActivity = now
	c.logger().WithField(core.LogFieldProtocolVersion, c.config.Version).Debug("Connected, sending HELLO")
	c.enqueue(openflow.NewHello(c.config.Version, c.nextXID()))
	c.flush()
}

func (c *conn) established(peerVersion openflow.Version) {
	now := c.m.now()
	c.setState(StateEstablished)
	c.handshakeDeadline = time.Time{}
	c.connectedSince = now
	c.lastActivity = now
	c.echoPending = false
	c.backoff.Reset()
	c.logger().
		WithField(core.LogFieldProtocolVersion, c.config.Version).
		Infof("Connection established (controller version=%s)", peerVersion)
	c.notify()
}

// receive reads all available data from the socket and handles the complete messages in it.
func (c *conn) receive() {
	sock := c.socket
	var readErr error
	for {
		n, err := sock.Read(c.m.readBuf)
		if n > 0 {
			c.inbound = append(c.inbound, c.m.readBuf[:n]...)
			c.lastActivity = c.m.now()
		}
		if err != nil {
			if !errors.Is(err, socket.ErrWouldBlock) {
				readErr = err
			}
			break
		}
	}
	// handlers and observers may remove or reconnect this connection, so check it's still the same after each message
	for c.socket == sock && c.active() {
		msg, consumed, err := openflow.TryParse(c.inbound)
		if errors.Is(err, openflow.ErrIncomplete) {
			break
		}
		if err != nil {
			if c.state == StateHandshaking {
				c.failHandshake(err.Error())
			} else {
				c.fail(core.WrapError(ErrProtocol, err))
			}
			return
		}
		c.inbound = c.inbound[consumed:]
		if len(c.inbound) == 0 {
			c.inbound = nil
		}
		c.handleMessage(msg)
	}
	if c.socket != sock || !c.active() {
		return
	}
	if readErr != nil {
		if errors.Is(readErr, io.EOF) {
			c.fail(core.WrapErrorf(ErrTransport, "connection closed by controller"))
		} else {
			c.fail(core.WrapErrorf(ErrTransport, "read failed: %w", readErr))
		}
		return
	}
	// send replies
	c.flush()
}

func (c *conn) handleMessage(msg openflow.Message) {
	c.m.metrics.received(msg.Type)
	c.logger().
		WithFields(logrus.Fields{
			core.LogFieldMessageType:   msg.Type,
			core.LogFieldTransactionID: msg.XID,
		}).
		Trace("Received message")
	if c.state == StateHandshaking {
		c.handleHandshake(msg)
		return
	}
	switch msg.Type {
	case openflow.TypeEchoRequest:
		// queued now, so it precedes everything sent after this message was received
		c.enqueue(openflow.NewEchoReply(msg))
	case openflow.TypeEchoReply:
		if c.echoPending && msg.XID == c.echoXID {
			c.echoPending = false
			return
		}
		c.m.dispatcher.deliver(c.id, msg)
	case openflow.TypeHello:
		c.logger().Debug("Ignoring HELLO on established connection")
	default:
		c.m.dispatcher.deliver(c.id, msg)
	}
}

func (c *conn) handleHandshake(msg openflow.Message) {
	local := c.config.Version
	switch msg.Type {
	case openflow.TypeHello:
		negotiated := msg.Version
		if local < negotiated {
			negotiated = local
		}
		if negotiated != local {
			c.failHandshake(fmt.Sprintf("incompatible version: agent requires %s, controller supports %s", local, msg.Version))
			return
		}
		c.established(msg.Version)
	case openflow.TypeError:
		description := "malformed error"
		if body, err := openflow.ParseError(msg); err == nil {
			description = body.String()
		}
		c.fail(core.WrapErrorf(ErrProtocol, "controller sent error during handshake (%s)", description))
	default:
		c.failHandshake(fmt.Sprintf("expected HELLO, received %s", msg.Type))
	}
}

// failHandshake sends a HELLO_FAILED error to the controller and fails the connection.
func (c *conn) failHandshake(reason string) {
	c.enqueue(openflow.NewHelloFailed(c.config.Version, c.nextXID(), reason))
	c.fail(core.WrapError(ErrProtocol, errors.New(reason)))
}

// enqueue adds a message to the outbound queue. The caller is responsible for flushing.
func (c *conn) enqueue(msg openflow.Message) {
	data, err := openflow.Serialize(msg)
	if err != nil {
		// messages created by the connection itself are always small
		c.logger().WithError(err).Errorf("Unable to serialize %s", msg)
		return
	}
	c.outbound = append(c.outbound, data)
	c.m.metrics.sent(msg.Type)
}

// flush writes queued messages to the socket, until the socket is full or the flush limit is reached.
func (c *conn) flush() {
	written := 0
	for len(c.outbound) > 0 && written < c.m.config.MaxFlushBytes {
		data := c.outbound[0]
		_, err := c.socket.Write(data)
		if errors.Is(err, socket.ErrWouldBlock) {
			break
		}
		if err != nil {
			c.fail(core.WrapErrorf(ErrTransport, "write failed: %w", err))
			return
		}
		written += len(data)
		c.outbound[0] = nil
		c.outbound = c.outbound[1:]
	}
	if len(c.outbound) == 0 {
		c.outbound = nil
	}
	c.updateInterest()
}

func (c *conn) updateInterest() {
	interest := socket.Readable
	if len(c.outbound) > 0 {
		interest |= socket.Writable
	}
	if interest != c.interest {
		c.interest = interest
		_ = c.m.loop.SetInterest(c.handle, interest)
	}
}

// keepalive sends an echo request after a period of inactivity, and fails the connection when it isn't answered in time.
func (c *conn) keepalive(now time.Time) {
	config := c.m.config.Keepalive
	if config.Interval <= 0 {
		return
	}
	if c.echoPending {
		if now.After(c.echoDeadline) {
			c.fail(core.WrapErrorf(ErrTransport, "controller didn't reply to echo request within %s", config.Timeout))
		}
		return
	}
	if now.Sub(c.lastActivity) >= config.Interval {
		c.echoXID = c.nextXID()
		c.echoPending = true
		c.echoDeadline = now.Add(config.Timeout)
		c.logger().WithField(core.LogFieldTransactionID, c.echoXID).Trace("Sending echo request")
		c.enqueue(openflow.NewEchoRequest(c.config.Version, c.echoXID, nil))
	}
}

// tick checks the deadlines of the connection. It returns whether a reconnect is due.
func (c *conn) tick(now time.Time) bool {
	switch c.state {
	case StateIdle:
		return c.m.enabled && !now.Before(c.retryAt)
	case StateConnecting:
		if now.After(c.connectDeadline) {
			c.fail(core.WrapErrorf(ErrTransport, "connect timed out after %s", c.m.config.ConnectTimeout))
		}
	case StateHandshaking:
		if now.After(c.handshakeDeadline) {
			c.fail(core.WrapErrorf(ErrProtocol, "no HELLO received within %s", c.m.config.HandshakeTimeout))
		}
	case StateEstablished:
		c.keepalive(now)
		if c.state == StateEstablished {
			c.flush()
		}
	}
	return false
}

// close releases the socket: -> Closing -> Closed. Queued messages are flushed best-effort.
func (c *conn) close() {
	c.setState(StateClosing)
	if c.socket != nil {
		if c.socket.Connected() {
			for _, data := range c.outbound {
				if _, err := c.socket.Write(data); err != nil {
					break
				}
			}
		}
		_ = c.socket.Close()
		c.socket = nil
		c.handle = 0
		c.interest = 0
	}
	c.outbound = nil
	c.inbound = nil
	c.connectDeadline = time.Time{}
	c.handshakeDeadline = time.Time{}
	c.connectedSince = time.Time{}
	c.echoPending = false
	c.setState(StateClosed)
}

// fail tears down the connection because of a transport or protocol error, and schedules a reconnect.
// Observers are notified of the error exactly once.
func (c *conn) fail(cause error) {
	c.logger().WithError(cause).Warn("Controller connection failed")
	c.lastErr = cause
	c.m.metrics.failed(cause)
	c.close()
	if !c.marked {
		c.setState(StateIdle)
		c.retryAt = c.m.now().Add(c.backoff.Backoff())
	}
	c.status = StatusError
	c.m.dispatcher.notify(c.id, c.params, Status{Kind: StatusError, Reason: cause})
}

// disconnect tears down the connection on request (removal or disable). Unless it's marked for removal, it's left Idle.
func (c *conn) disconnect() {
	if c.state == StateClosed {
		return
	}
	c.close()
	if !c.marked {
		c.setState(StateIdle)
		c.retryAt = time.Time{}
		c.backoff.Reset()
	}
	c.logger().Debug("Disconnected")
	c.notify()
}

func (c *conn) info() Info {
	result := Info{
		ID:              c.id,
		Endpoint:        c.params.Endpoint(),
		Version:         c.config.Version.String(),
		State:           c.state,
		Status:          Status{Kind: c.status},
		ConnectAttempts: c.attempts,
		OutboundQueue:   len(c.outbound),
	}
	if c.status == StatusError {
		result.Status.Reason = c.lastErr
	}
	if c.session != uuid.Nil {
		result.Session = c.session.String()
	}
	if c.lastErr != nil {
		result.LastError = c.lastErr.Error()
	}
	if !c.connectedSince.IsZero() {
		since := c.connectedSince
		result.ConnectedSince = &since
	}
	return result
}
