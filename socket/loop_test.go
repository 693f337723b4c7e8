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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

const testTimeout = 5 * time.Second

func listen(t *testing.T) net.Listener {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = listener.Close()
	})
	return listener
}

func TestLoop_Dial(t *testing.T) {
	t.Run("connect, write and read", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		listener := listen(t)
		loop := NewLoop()
		defer loop.Close()

		conn, err := loop.Dial("tcp", listener.Addr().String())
		require.NoError(t, err)
		var events EventMask
		_, err = loop.Register(conn, Readable|Writable, func(_ Handle, ready EventMask) {
			events |= ready
		})
		require.NoError(t, err)
		server, err := listener.Accept()
		require.NoError(t, err)
		defer server.Close()

		RunUntil(t, loop, testTimeout, conn.Connected)
		RunUntil(t, loop, testTimeout, func() bool { return events.Has(Writable) })
		assert.NotNil(t, conn.LocalAddr())

		n, err := conn.Write([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		buf := make([]byte, 5)
		_, err = io.ReadFull(server, buf)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(buf))
		RunUntil(t, loop, testTimeout, func() bool { return conn.Buffered() == 0 })

		_, err = server.Write([]byte("world"))
		require.NoError(t, err)
		RunUntil(t, loop, testTimeout, func() bool { return events.Has(Readable) })
		received := make([]byte, 16)
		n, err = conn.Read(received)
		require.NoError(t, err)
		assert.Equal(t, "world", string(received[:n]))

		_, err = conn.Read(received)
		assert.ErrorIs(t, err, ErrWouldBlock)
	})
	t.Run("remote close is reported as EOF", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		listener := listen(t)
		loop := NewLoop()
		defer loop.Close()

		conn, err := loop.Dial("tcp", listener.Addr().String())
		require.NoError(t, err)
		server, err := listener.Accept()
		require.NoError(t, err)
		_, _ = server.Write([]byte("bye"))
		_ = server.Close()

		RunUntil(t, loop, testTimeout, func() bool { return conn.eof })
		received := make([]byte, 16)
		n, err := conn.Read(received)
		require.NoError(t, err)
		assert.Equal(t, "bye", string(received[:n]))
		_, err = conn.Read(received)
		assert.ErrorIs(t, err, io.EOF)
		assert.True(t, conn.readable())
	})
	t.Run("connect failure is reported as error event", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctrl := gomock.NewController(t)
		dialer := NewMockDialer(ctrl)
		dialer.EXPECT().DialContext(gomock.Any(), "tcp6", "[::1]:6653").Return(nil, errors.New("connection refused"))
		loop := NewLoop(WithDialer(dialer))
		defer loop.Close()

		conn, err := loop.Dial("tcp6", "[::1]:6653")
		require.NoError(t, err)
		var events EventMask
		_, err = loop.Register(conn, Writable, func(_ Handle, ready EventMask) {
			events |= ready
		})
		require.NoError(t, err)

		RunUntil(t, loop, testTimeout, func() bool { return events.Has(Error) })
		assert.False(t, events.Has(Writable))
		assert.False(t, conn.Connected())
		assert.EqualError(t, conn.Err(), "connection refused")
		_, err = conn.Write([]byte("x"))
		assert.EqualError(t, err, "connection refused")
	})
	t.Run("close while connecting", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctrl := gomock.NewController(t)
		dialer := NewMockDialer(ctrl)
		dialer.EXPECT().DialContext(gomock.Any(), "tcp4", "10.0.0.1:6653").DoAndReturn(func(ctx context.Context, _, _ string) (net.Conn, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
		loop := NewLoop(WithDialer(dialer))
		defer loop.Close()

		conn, err := loop.Dial("tcp4", "10.0.0.1:6653")
		require.NoError(t, err)
		require.NoError(t, conn.Close())
		RunFor(t, loop, 50*time.Millisecond)

		assert.Nil(t, conn.Err())
		_, err = conn.Write([]byte("x"))
		assert.ErrorIs(t, err, ErrClosed)
		assert.NoError(t, conn.Close())
	})
	t.Run("unsupported network", func(t *testing.T) {
		loop := NewTestLoop(t)

		_, err := loop.Dial("udp", "127.0.0.1:6653")

		assert.EqualError(t, err, "unsupported network: udp")
	})
	t.Run("loop closed", func(t *testing.T) {
		loop := NewLoop()
		_ = loop.Close()

		_, err := loop.Dial("tcp", "127.0.0.1:6653")

		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestLoop_Register(t *testing.T) {
	newConn := func(t *testing.T, loop *Loop) *Conn {
		ctrl := gomock.NewController(t)
		dialer := NewMockDialer(ctrl)
		dialer.EXPECT().DialContext(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("refused")).AnyTimes()
		loop.dialer = dialer
		conn, err := loop.Dial("tcp", "127.0.0.1:6653")
		require.NoError(t, err)
		return conn
	}
	noop := func(Handle, EventMask) {}

	t.Run("handles are unique", func(t *testing.T) {
		loop := NewTestLoop(t)

		h1, err := loop.Register(newConn(t, loop), Readable, noop)
		require.NoError(t, err)
		h2, err := loop.Register(newConn(t, loop), Readable, noop)
		require.NoError(t, err)

		assert.NotEqual(t, h1, h2)
		assert.Equal(t, int64(2), loop.registered.Load())
	})
	t.Run("already registered", func(t *testing.T) {
		loop := NewTestLoop(t)
		conn := newConn(t, loop)
		_, err := loop.Register(conn, Readable, noop)
		require.NoError(t, err)

		_, err = loop.Register(conn, Readable, noop)

		assert.ErrorContains(t, err, "already registered")
	})
	t.Run("socket of other manager", func(t *testing.T) {
		loop := NewTestLoop(t)
		other := NewTestLoop(t)

		_, err := loop.Register(newConn(t, other), Readable, noop)

		assert.ErrorContains(t, err, "not created by this manager")
	})
	t.Run("closed socket", func(t *testing.T) {
		loop := NewTestLoop(t)
		conn := newConn(t, loop)
		_ = conn.Close()

		_, err := loop.Register(conn, Readable, noop)

		assert.ErrorIs(t, err, ErrClosed)
	})
	t.Run("unknown handle", func(t *testing.T) {
		loop := NewTestLoop(t)

		assert.ErrorIs(t, loop.SetInterest(42, Readable), ErrUnknownHandle)
		assert.ErrorIs(t, loop.Unregister(42), ErrUnknownHandle)
	})
	t.Run("close unregisters", func(t *testing.T) {
		loop := NewTestLoop(t)
		conn := newConn(t, loop)
		handle, err := loop.Register(conn, Readable, noop)
		require.NoError(t, err)

		_ = conn.Close()

		assert.ErrorIs(t, loop.Unregister(handle), ErrUnknownHandle)
		assert.Equal(t, int64(0), loop.registered.Load())
	})
	t.Run("error is reported regardless of interest", func(t *testing.T) {
		loop := NewTestLoop(t)
		conn := newConn(t, loop)
		var events EventMask
		_, err := loop.Register(conn, 0, func(_ Handle, ready EventMask) {
			events = ready
		})
		require.NoError(t, err)

		RunUntil(t, loop, testTimeout, func() bool { return events != 0 })

		assert.Equal(t, Error, events)
	})
	t.Run("no callback after unregister in the same iteration", func(t *testing.T) {
		loop := NewTestLoop(t)
		first := newConn(t, loop)
		second := newConn(t, loop)
		RunUntil(t, loop, testTimeout, func() bool { return first.Err() != nil && second.Err() != nil })
		var secondHandle Handle
		secondCalls := 0
		_, err := loop.Register(first, 0, func(Handle, EventMask) {
			_ = loop.Unregister(secondHandle)
		})
		require.NoError(t, err)
		secondHandle, err = loop.Register(second, 0, func(Handle, EventMask) {
			secondCalls++
		})
		require.NoError(t, err)

		require.NoError(t, loop.RunIteration(0))

		assert.Equal(t, 0, secondCalls)
	})
}

func TestLoop_SetInterest(t *testing.T) {
	listener := listen(t)
	loop := NewTestLoop(t)
	conn, err := loop.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	server, err := listener.Accept()
	require.NoError(t, err)
	defer server.Close()
	calls := 0
	handle, err := loop.Register(conn, Writable, func(Handle, EventMask) {
		calls++
	})
	require.NoError(t, err)
	RunUntil(t, loop, testTimeout, func() bool { return calls > 0 })

	require.NoError(t, loop.SetInterest(handle, Readable))
	calls = 0
	RunFor(t, loop, 20*time.Millisecond)

	assert.Equal(t, 0, calls)
}

func TestLoop_Backpressure(t *testing.T) {
	defer goleak.VerifyNone(t)
	client, server := net.Pipe()
	ctrl := gomock.NewController(t)
	dialer := NewMockDialer(ctrl)
	dialer.EXPECT().DialContext(gomock.Any(), "tcp", "switch:6653").Return(client, nil)
	loop := NewLoop(WithDialer(dialer))
	loop.config.WriteQueueSize = 1
	loop.events = make(chan func(), loop.config.EventQueueSize)
	defer loop.Close()
	defer server.Close()

	conn, err := loop.Dial("tcp", "switch:6653")
	require.NoError(t, err)
	RunUntil(t, loop, testTimeout, conn.Connected)

	// net.Pipe is unbuffered: the write pump blocks until the server reads
	accepted := 0
	wouldBlock := false
	for i := 0; i < 3 && !wouldBlock; i++ {
		if _, err := conn.Write([]byte("data")); err != nil {
			require.ErrorIs(t, err, ErrWouldBlock)
			wouldBlock = true
			continue
		}
		accepted++
	}
	assert.True(t, wouldBlock)
	assert.LessOrEqual(t, accepted, 2)
	assert.Equal(t, accepted*4, conn.Buffered())

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, accepted*4)
		_, _ = io.ReadFull(server, buf)
	}()
	RunUntil(t, loop, testTimeout, func() bool { return conn.Buffered() == 0 })
	<-done
	assert.True(t, conn.writable())
}

func TestLoop_ReadFlowControl(t *testing.T) {
	defer goleak.VerifyNone(t)
	listener := listen(t)
	loop := NewLoop()
	loop.config.ReadBufferSize = 4
	defer loop.Close()
	conn, err := loop.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	server, err := listener.Accept()
	require.NoError(t, err)
	defer server.Close()
	_, err = server.Write([]byte("0123456789abcdef"))
	require.NoError(t, err)

	RunUntil(t, loop, testTimeout, conn.readable)
	RunFor(t, loop, 20*time.Millisecond)
	// reading paused: nothing consumed the first chunk
	assert.Len(t, conn.received, 4)

	var all []byte
	buf := make([]byte, 3)
	RunUntil(t, loop, testTimeout, func() bool {
		for {
			n, err := conn.Read(buf)
			if err != nil {
				break
			}
			all = append(all, buf[:n]...)
		}
		return len(all) == 16
	})
	assert.Equal(t, "0123456789abcdef", string(all))
}

func TestLoop_Timers(t *testing.T) {
	t.Run("fire in order of deadline", func(t *testing.T) {
		loop := NewTestLoop(t)
		var fired []int
		loop.AfterFunc(20*time.Millisecond, func() { fired = append(fired, 3) })
		loop.AfterFunc(0, func() { fired = append(fired, 1) })
		loop.AfterFunc(0, func() { fired = append(fired, 2) })

		RunUntil(t, loop, testTimeout, func() bool { return len(fired) == 3 })

		assert.Equal(t, []int{1, 2, 3}, fired)
	})
	t.Run("cancel", func(t *testing.T) {
		loop := NewTestLoop(t)
		fired := false
		id := loop.AfterFunc(0, func() { fired = true })

		assert.True(t, loop.CancelTimer(id))
		assert.False(t, loop.CancelTimer(id))
		RunFor(t, loop, 10*time.Millisecond)
		assert.False(t, fired)
	})
	t.Run("timer scheduled by a timer runs in the next iteration", func(t *testing.T) {
		loop := NewTestLoop(t)
		nestedFired := false
		loop.AfterFunc(0, func() {
			loop.AfterFunc(0, func() { nestedFired = true })
		})

		require.NoError(t, loop.RunIteration(0))
		assert.False(t, nestedFired)
		require.NoError(t, loop.RunIteration(0))
		assert.True(t, nestedFired)
	})
	t.Run("iteration waits for the next timer", func(t *testing.T) {
		loop := NewTestLoop(t)
		fired := false
		loop.AfterFunc(10*time.Millisecond, func() { fired = true })

		start := time.Now()
		require.NoError(t, loop.RunIteration(time.Second))

		assert.True(t, fired)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})
}

func TestLoop_Call(t *testing.T) {
	t.Run("runs on the loop", func(t *testing.T) {
		loop := NewTestLoop(t)
		called := false
		result := make(chan error, 1)
		go func() {
			result <- loop.Call(context.Background(), func() { called = true })
		}()

		var err error
		RunUntil(t, loop, testTimeout, func() bool {
			select {
			case err = <-result:
				return true
			default:
				return false
			}
		})

		assert.NoError(t, err)
		assert.True(t, called)
	})
	t.Run("context cancelled", func(t *testing.T) {
		loop := NewTestLoop(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := loop.Call(ctx, func() {})

		assert.ErrorIs(t, err, context.Canceled)
	})
	t.Run("loop closed", func(t *testing.T) {
		loop := NewLoop()
		_ = loop.Close()

		assert.ErrorIs(t, loop.Call(context.Background(), func() {}), ErrClosed)
		assert.ErrorIs(t, loop.Invoke(func() {}), ErrClosed)
		assert.ErrorIs(t, loop.RunIteration(0), ErrClosed)
	})
}

func TestLoop_Run(t *testing.T) {
	defer goleak.VerifyNone(t)
	loop := NewLoop()
	defer loop.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx)
	}()

	require.NoError(t, loop.Call(context.Background(), func() {}))
	cancel()

	assert.NoError(t, <-done)
}

func TestEventMask_String(t *testing.T) {
	assert.Equal(t, "none", EventMask(0).String())
	assert.Equal(t, "readable", Readable.String())
	assert.Equal(t, "readable|writable|error", (Readable | Writable | Error).String())
	assert.True(t, (Readable | Error).Has(Error))
	assert.False(t, Readable.Has(Readable|Writable))
}
