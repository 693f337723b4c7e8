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
	"io"
	"net"
	"time"

	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/nuts-foundation/nuts-ofagent/socket/log"
	"github.com/sirupsen/logrus"
)

type connState int

const (
	connDialing connState = iota
	connOpen
	connClosed
)

// Conn is a non-blocking socket created by Loop.Dial.
// The blocking I/O of the underlying net.Conn is performed by pump goroutines, which pass their results to the event loop.
// Its methods must only be called from the event loop goroutine.
type Conn struct {
	loop    *Loop
	network string
	address string

	state      connState
	netConn    net.Conn
	cancelDial context.CancelFunc
	done       chan struct{}
	handle     Handle
	// err holds the error that made the socket fail (failed connect, read or write error).
	err error
	// eof is set when the remote end closed its side of the connection.
	eof bool
	// received holds received data that hasn't been read yet.
	received   []byte
	readCredit chan struct{}
	readPaused bool
	// writes passes data to the write pump. Only the event loop sends on it.
	writes  chan []byte
	pending int
}

// Network returns the network (tcp, tcp4 or tcp6) of the socket.
func (c *Conn) Network() string {
	return c.network
}

// Address returns the remote address the socket connects to, as given to Dial.
func (c *Conn) Address() string {
	return c.address
}

// LocalAddr returns the local address of a connected socket, or nil.
func (c *Conn) LocalAddr() net.Addr {
	if c.netConn == nil {
		return nil
	}
	return c.netConn.LocalAddr()
}

// Connected returns whether the connect completed successfully and the socket wasn't closed.
func (c *Conn) Connected() bool {
	return c.state == connOpen && c.err == nil
}

// Err returns the error that made the socket fail, if any.
func (c *Conn) Err() error {
	return c.err
}

// Buffered returns the number of bytes accepted by Write that weren't written to the network yet.
func (c *Conn) Buffered() int {
	return c.pending
}

// Read reads received data into p. It returns ErrWouldBlock if no data is available yet, and io.EOF when the remote end closed the connection.
func (c *Conn) Read(p []byte) (int, error) {
	if c.state == connClosed {
		return 0, ErrClosed
	}
	if len(c.received) == 0 {
		switch {
		case c.err != nil:
			return 0, c.err
		case c.eof:
			return 0, io.EOF
		default:
			return 0, ErrWouldBlock
		}
	}
	n := copy(p, c.received)
	c.received = c.received[n:]
	if len(c.received) == 0 {
		c.received = nil
	}
	if c.readPaused && len(c.received) < c.loop.config.ReadBufferSize {
		c.readPaused = false
		c.grantReadCredit()
	}
	return n, nil
}

// Write queues p to be written. It either accepts all of p, or returns ErrWouldBlock when the write queue is full.
func (c *Conn) Write(p []byte) (int, error) {
	switch {
	case c.state == connClosed:
		return 0, ErrClosed
	case c.err != nil:
		return 0, c.err
	case c.state == connDialing:
		return 0, ErrWouldBlock
	case len(c.writes) == cap(c.writes):
		// Only the write pump receives concurrently, so the queue can't fill up between this check and the send below.
		return 0, ErrWouldBlock
	}
	if len(p) == 0 {
		return 0, nil
	}
	chunk := make([]byte, len(p))
	copy(chunk, p)
	c.writes <- chunk
	c.pending += len(chunk)
	return len(p), nil
}

// Close closes the socket. Data that was accepted by Write is flushed in the background (bounded by the flush timeout).
// It unregisters the socket, if registered. Closing a closed socket is a no-op.
func (c *Conn) Close() error {
	if c.state == connClosed {
		return nil
	}
	previous := c.state
	c.state = connClosed
	if c.handle != 0 {
		_ = c.loop.Unregister(c.handle)
	}
	close(c.done)
	delete(c.loop.conns, c)
	c.cancelDial()
	if previous == connOpen {
		c.loop.openConns.Dec()
		_ = c.netConn.SetWriteDeadline(time.Now().Add(c.loop.config.FlushTimeout))
		// write pump closes the net.Conn after draining, which also stops the read pump
		close(c.writes)
	}
	c.received = nil
	return nil
}

func (c *Conn) readable() bool {
	return c.state != connClosed && (len(c.received) > 0 || c.eof)
}

func (c *Conn) writable() bool {
	return c.state == connOpen && c.err == nil && len(c.writes) < cap(c.writes)
}

func (c *Conn) failed() bool {
	return c.state != connClosed && c.err != nil
}

func (c *Conn) logger() *logrus.Entry {
	return log.Logger().WithFields(logrus.Fields{
		core.LogFieldSocketHandle: c.handle,
		core.LogFieldRemoteAddr:   c.address,
	})
}

// dialed is called on the event loop when the connect attempt completed.
func (c *Conn) dialed(netConn net.Conn, err error) {
	c.cancelDial()
	if c.state == connClosed {
		if netConn != nil {
			_ = netConn.Close()
		}
		return
	}
	if err != nil {
		c.logger().WithError(err).Debug("Connect failed")
		c.err = err
		return
	}
	c.logger().Tracef("Connected (local=%s)", netConn.LocalAddr())
	c.netConn = netConn
	c.state = connOpen
	c.loop.openConns.Inc()
	c.writes = make(chan []byte, c.loop.config.WriteQueueSize)
	c.readCredit = make(chan struct{}, 1)
	c.grantReadCredit()
	c.loop.pumps.Add(2)
	go c.readPump(netConn, c.readCredit, c.done)
	go c.writePump(netConn, c.writes)
}

func (c *Conn) grantReadCredit() {
	select {
	case c.readCredit <- struct{}{}:
	default:
	}
}

// receivedData is called on the event loop when the read pump read data or failed.
func (c *Conn) receivedData(data []byte, err error) {
	if c.state == connClosed {
		return
	}
	c.received = append(c.received, data...)
	if err != nil {
		if errors.Is(err, io.EOF) {
			c.eof = true
		} else if c.err == nil {
			c.err = err
		}
		return
	}
	if len(c.received) < c.loop.config.ReadBufferSize {
		c.grantReadCredit()
	} else {
		c.readPaused = true
	}
}

// wrote is called on the event loop when the write pump wrote (or failed to write) a chunk.
func (c *Conn) wrote(n int, err error) {
	c.pending -= n
	if err != nil && c.state != connClosed && c.err == nil {
		c.err = err
	}
}

func (c *Conn) readPump(netConn net.Conn, credit <-chan struct{}, done <-chan struct{}) {
	defer c.loop.pumps.Done()
	for {
		select {
		case <-credit:
		case <-done:
			return
		}
		buf := make([]byte, c.loop.config.ReadBufferSize)
		n, err := netConn.Read(buf)
		c.loop.bytesRead.Add(uint64(n))
		chunk := buf[:n]
		if !c.loop.post(func() { c.receivedData(chunk, err) }) || err != nil {
			return
		}
	}
}

func (c *Conn) writePump(netConn net.Conn, writes <-chan []byte) {
	defer c.loop.pumps.Done()
	defer netConn.Close()
	failed := false
	for chunk := range writes {
		if failed {
			// drain, so the event loop never blocks on a full queue
			continue
		}
		n, err := netConn.Write(chunk)
		c.loop.bytesWritten.Add(uint64(n))
		size := len(chunk)
		c.loop.post(func() { c.wrote(size, err) })
		failed = err != nil
	}
}
