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
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"go.uber.org/atomic"
)

var _ Manager = (*Loop)(nil)

type registration struct {
	conn     *Conn
	interest EventMask
	callback Callback
}

func (r *registration) ready() EventMask {
	var events EventMask
	if r.conn.failed() {
		events |= Error
	}
	if r.interest.Has(Readable) && r.conn.readable() {
		events |= Readable
	}
	if r.interest.Has(Writable) && r.conn.writable() {
		events |= Writable
	}
	return events
}

// Option configures a Loop.
type Option func(loop *Loop)

// WithDialer sets the Dialer used to open connections. It defaults to a net.Dialer.
func WithDialer(dialer Dialer) Option {
	return func(loop *Loop) {
		loop.dialer = dialer
	}
}

// Loop is the Manager implementation. Readiness is level-triggered: a registered socket is reported on every
// iteration for as long as it is ready for an event it has interest in.
type Loop struct {
	config Config
	dialer Dialer

	events    chan func()
	closed    chan struct{}
	closeOnce sync.Once
	pumps     sync.WaitGroup

	// only accessed on the event loop goroutine
	registrations map[Handle]*registration
	lastHandle    Handle
	conns         map[*Conn]struct{}
	timers        *timerQueue

	cancelRun context.CancelFunc
	runDone   chan struct{}

	iterations   atomic.Uint64
	openConns    atomic.Int64
	registered   atomic.Int64
	bytesRead    atomic.Uint64
	bytesWritten atomic.Uint64
}

// NewLoop creates a new Loop with the default configuration. The configuration can be changed until Configure is called.
func NewLoop(options ...Option) *Loop {
	loop := &Loop{
		config:        DefaultConfig(),
		dialer:        &net.Dialer{},
		closed:        make(chan struct{}),
		registrations: map[Handle]*registration{},
		conns:         map[*Conn]struct{}{},
		timers:        newTimerQueue(),
	}
	for _, option := range options {
		option(loop)
	}
	loop.events = make(chan func(), loop.config.EventQueueSize)
	return loop
}

// Dial starts connecting to the given address. Only TCP networks are supported.
func (l *Loop) Dial(network, address string) (*Conn, error) {
	if l.isClosed() {
		return nil, ErrClosed
	}
	switch network {
	case "tcp", "tcp4", "tcp6":
	default:
		return nil, fmt.Errorf("unsupported network: %s", network)
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.config.DialTimeout)
	conn := &Conn{
		loop:       l,
		network:    network,
		address:    address,
		state:      connDialing,
		cancelDial: cancel,
		done:       make(chan struct{}),
	}
	l.conns[conn] = struct{}{}
	l.pumps.Add(1)
	go func() {
		defer l.pumps.Done()
		netConn, err := l.dialer.DialContext(ctx, network, address)
		if !l.post(func() { conn.dialed(netConn, err) }) && netConn != nil {
			_ = netConn.Close()
		}
	}()
	return conn, nil
}

// Register registers a socket created by this Loop.
func (l *Loop) Register(conn *Conn, interest EventMask, callback Callback) (Handle, error) {
	if conn.loop != l {
		return 0, fmt.Errorf("socket (address=%s) was not created by this manager", conn.address)
	}
	if conn.state == connClosed {
		return 0, ErrClosed
	}
	if conn.handle != 0 {
		return 0, fmt.Errorf("socket (address=%s) is already registered (handle=%d)", conn.address, conn.handle)
	}
	l.lastHandle++
	conn.handle = l.lastHandle
	l.registrations[conn.handle] = &registration{conn: conn, interest: interest, callback: callback}
	l.registered.Inc()
	return conn.handle, nil
}

func (l *Loop) SetInterest(handle Handle, interest EventMask) error {
	reg, ok := l.registrations[handle]
	if !ok {
		return ErrUnknownHandle
	}
	reg.interest = interest
	return nil
}

func (l *Loop) Unregister(handle Handle) error {
	reg, ok := l.registrations[handle]
	if !ok {
		return ErrUnknownHandle
	}
	delete(l.registrations, handle)
	reg.conn.handle = 0
	l.registered.Dec()
	return nil
}

func (l *Loop) AfterFunc(delay time.Duration, f func()) TimerID {
	return l.timers.schedule(time.Now().Add(delay), f)
}

func (l *Loop) CancelTimer(id TimerID) bool {
	return l.timers.cancel(id)
}

// Invoke schedules f to be called on the event loop goroutine. When called from the event loop goroutine itself it
// blocks while the event queue is full, so callers on the loop should use AfterFunc instead.
func (l *Loop) Invoke(f func()) error {
	if !l.post(f) {
		return ErrClosed
	}
	return nil
}

func (l *Loop) Call(ctx context.Context, f func()) error {
	done := make(chan struct{})
	if err := l.Invoke(func() {
		defer close(done)
		f()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.closed:
		return ErrClosed
	}
}

func (l *Loop) RunIteration(timeout time.Duration) error {
	return l.iterate(nil, timeout)
}

// Run runs iterations until the context is cancelled (returning nil) or the Loop is closed (returning ErrClosed).
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := l.iterate(ctx.Done(), time.Second); err != nil {
			return err
		}
	}
}

// Close closes all sockets and waits for their pumps to stop. It must not be called while the Loop is running.
func (l *Loop) Close() error {
	l.closeOnce.Do(func() {
		for conn := range l.conns {
			_ = conn.Close()
		}
		close(l.closed)
	})
	l.pumps.Wait()
	return nil
}

func (l *Loop) isClosed() bool {
	select {
	case <-l.closed:
		return true
	default:
		return false
	}
}

// post passes f to the event loop. It returns false if the loop was closed.
func (l *Loop) post(f func()) bool {
	select {
	case <-l.closed:
		return false
	default:
	}
	select {
	case l.events <- f:
		return true
	case <-l.closed:
		return false
	}
}

func (l *Loop) iterate(cancel <-chan struct{}, timeout time.Duration) error {
	if l.isClosed() {
		return ErrClosed
	}
	l.iterations.Inc()

	wait := timeout
	if l.anyReady() {
		wait = 0
	} else if deadline, ok := l.timers.next(); ok {
		if untilDeadline := time.Until(deadline); untilDeadline < wait {
			wait = untilDeadline
		}
	}

	processed := 0
	if wait > 0 {
		waitTimer := time.NewTimer(wait)
		select {
		case f := <-l.events:
			f()
			processed++
		case <-waitTimer.C:
		case <-cancel:
		case <-l.closed:
			waitTimer.Stop()
			return ErrClosed
		}
		waitTimer.Stop()
	}
drain:
	for processed < l.config.MaxEventsPerIteration {
		select {
		case f := <-l.events:
			f()
			processed++
		default:
			break drain
		}
	}

	now := time.Now()
	maxID := l.timers.last
	for t := l.timers.popDue(now, maxID); t != nil; t = l.timers.popDue(now, maxID) {
		t.f()
	}

	l.dispatch()
	return nil
}

// dispatch invokes the callbacks of ready registrations in order of registration. Registrations that are removed by
// an earlier callback in the same iteration are skipped.
func (l *Loop) dispatch() {
	handles := make([]Handle, 0, len(l.registrations))
	for handle := range l.registrations {
		handles = append(handles, handle)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	for _, handle := range handles {
		reg, ok := l.registrations[handle]
		if !ok {
			continue
		}
		if events := reg.ready(); events != 0 {
			reg.callback(handle, events)
		}
	}
}

func (l *Loop) anyReady() bool {
	for _, reg := range l.registrations {
		if reg.ready() != 0 {
			return true
		}
	}
	return false
}
