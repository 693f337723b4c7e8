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
	"net"
	"sync"
	"testing"
	"time"
)

// RedirectDialer dials Target regardless of the requested address, and records the requested network and address.
// It allows tests to connect to addresses that aren't reachable from the test host (e.g. IPv6 link-local) while
// asserting on what was requested.
type RedirectDialer struct {
	Target    string
	mux       sync.Mutex
	requested []DialRequest
}

// DialRequest is a dial recorded by RedirectDialer.
type DialRequest struct {
	Network string
	Address string
}

func (d *RedirectDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.mux.Lock()
	d.requested = append(d.requested, DialRequest{Network: network, Address: address})
	d.mux.Unlock()
	var dialer net.Dialer
	return dialer.DialContext(ctx, "tcp", d.Target)
}

// Requested returns the dials made so far.
func (d *RedirectDialer) Requested() []DialRequest {
	d.mux.Lock()
	defer d.mux.Unlock()
	return append([]DialRequest{}, d.requested...)
}

// NewTestLoop creates a Loop that is closed when the test finishes.
func NewTestLoop(t testing.TB, options ...Option) *Loop {
	loop := NewLoop(options...)
	t.Cleanup(func() {
		_ = loop.Close()
	})
	return loop
}

// RunUntil runs iterations of the loop on the calling goroutine until condition returns true.
// It fails the test when the condition doesn't hold within the timeout.
func RunUntil(t testing.TB, loop *Loop, timeout time.Duration, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", timeout)
			return
		}
		if err := loop.RunIteration(10 * time.Millisecond); err != nil {
			t.Fatalf("event loop iteration failed: %s", err)
			return
		}
	}
}

// RunFor runs iterations of the loop on the calling goroutine for the given duration.
func RunFor(t testing.TB, loop *Loop, duration time.Duration) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if err := loop.RunIteration(5 * time.Millisecond); err != nil {
			t.Fatalf("event loop iteration failed: %s", err)
			return
		}
	}
}
