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
	"context"
	"errors"
	"net"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/nuts-foundation/nuts-ofagent/openflow"
	"github.com/nuts-foundation/nuts-ofagent/socket"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

// fakeController is an OpenFlow controller listening on the loopback interface. Its connections are served by
// goroutines of their own, while the tests drive the event loop on the test goroutine.
type fakeController struct {
	listener net.Listener
	// version is announced in reply to the agent's HELLO. When 0, the HELLO isn't answered.
	version  openflow.Version
	accepted chan *fakePeer
	mux      sync.Mutex
	peers    []*fakePeer
	wg       sync.WaitGroup
}

func newFakeController(t *testing.T, version openflow.Version) *fakeController {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	c := &fakeController{
		listener: listener,
		version:  version,
		accepted: make(chan *fakePeer, 64),
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			netConn, err := listener.Accept()
			if err != nil {
				return
			}
			peer := c.serve(netConn)
			c.accepted <- peer
		}
	}()
	t.Cleanup(c.close)
	return c
}

func (c *fakeController) serve(netConn net.Conn) *fakePeer {
	peer := &fakePeer{
		conn:     netConn,
		received: make(chan openflow.Message, 1024),
		closed:   make(chan struct{}),
	}
	c.mux.Lock()
	c.peers = append(c.peers, peer)
	c.mux.Unlock()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		peer.readLoop(c.version)
	}()
	return peer
}

func (c *fakeController) close() {
	_ = c.listener.Close()
	c.mux.Lock()
	for _, peer := range c.peers {
		peer.close()
	}
	c.mux.Unlock()
	c.wg.Wait()
}

func (c *fakeController) port() uint16 {
	return uint16(c.listener.Addr().(*net.TCPAddr).Port)
}

func (c *fakeController) address() string {
	return c.listener.Addr().String()
}

func (c *fakeController) params() TCPOverIPv4 {
	return TCPOverIPv4{Address: netip.MustParseAddr("127.0.0.1"), Port: c.port()}
}

// accept runs the loop until the agent connected to the controller, and returns the connection.
func (c *fakeController) accept(t *testing.T, loop *socket.Loop) *fakePeer {
	t.Helper()
	var peer *fakePeer
	socket.RunUntil(t, loop, testTimeout, func() bool {
		select {
		case peer = <-c.accepted:
			return true
		default:
			return false
		}
	})
	return peer
}

// pending returns the number of accepted connections not yet returned by accept.
func (c *fakeController) pending() int {
	return len(c.accepted)
}

// fakePeer is the controller side of a single connection.
type fakePeer struct {
	conn     net.Conn
	received chan openflow.Message
	closed   chan struct{}
	writeMux sync.Mutex
}

func (p *fakePeer) readLoop(version openflow.Version) {
	defer close(p.closed)
	var buf []byte
	chunk := make([]byte, 4096)
	for {
		n, err := p.conn.Read(chunk)
		buf = append(buf, chunk[:n]...)
		for {
			msg, consumed, parseErr := openflow.TryParse(buf)
			if parseErr != nil {
				break
			}
			buf = buf[consumed:]
			if msg.Type == openflow.TypeHello && version != 0 {
				_ = p.send(openflow.NewHello(version, msg.XID))
			}
			p.received <- msg
		}
		if err != nil {
			return
		}
	}
}

func (p *fakePeer) send(msg openflow.Message) error {
	data, err := openflow.Serialize(msg)
	if err != nil {
		return err
	}
	return p.sendRaw(data)
}

func (p *fakePeer) sendRaw(data []byte) error {
	p.writeMux.Lock()
	defer p.writeMux.Unlock()
	_, err := p.conn.Write(data)
	return err
}

func (p *fakePeer) close() {
	_ = p.conn.Close()
}

// expect runs the loop until the peer received a message, and returns it.
func (p *fakePeer) expect(t *testing.T, loop *socket.Loop) openflow.Message {
	t.Helper()
	var msg openflow.Message
	socket.RunUntil(t, loop, testTimeout, func() bool {
		select {
		case msg = <-p.received:
			return true
		default:
			return false
		}
	})
	return msg
}

// expectType runs the loop until the peer received a message, and asserts its type.
func (p *fakePeer) expectType(t *testing.T, loop *socket.Loop, msgType openflow.Type) openflow.Message {
	t.Helper()
	msg := p.expect(t, loop)
	require.Equal(t, msgType, msg.Type, "unexpected message: %s", msg)
	return msg
}

// waitClosed runs the loop until the agent closed the connection.
func (p *fakePeer) waitClosed(t *testing.T, loop *socket.Loop) {
	t.Helper()
	socket.RunUntil(t, loop, testTimeout, func() bool {
		select {
		case <-p.closed:
			return true
		default:
			return false
		}
	})
}

// blockingDialer never connects; dials return when they're cancelled.
type blockingDialer struct{}

func (blockingDialer) DialContext(ctx context.Context, _, _ string) (net.Conn, error) {
	<-ctx.Done()
	return nil, errors.New("dial cancelled")
}
