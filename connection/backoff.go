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
	"math/rand"
	"time"
)

// Backoff defines an API for delaying reconnects to a controller that is unreachable or misbehaving,
// to avoid flooding both the agent and the controller. When a connect attempt fails Backoff() must be called,
// which returns the waiting time before the next attempt. When a connection is established, Reset() must be called.
type Backoff interface {
	// Backoff returns the waiting time before the next attempt, and should be called after a failed attempt.
	Backoff() time.Duration
	// Value returns the last value returned by Backoff().
	Value() time.Duration
	// Reset resets the internal counters, so the next call to Backoff() returns the minimum.
	Reset()
}

type boundedRandomBackoff struct {
	multiplier float64
	jitter     float64
	value      time.Duration
	max        time.Duration
	min        time.Duration
	random     func() float64
}

func (b *boundedRandomBackoff) Value() time.Duration {
	return b.value
}

func (b *boundedRandomBackoff) Reset() {
	b.value = 0
}

func (b *boundedRandomBackoff) Backoff() time.Duration {
	if b.value < b.min {
		b.value = b.min
	} else {
		b.value = time.Duration(float64(b.value) * b.multiplier)
		if b.value > b.max {
			b.value = b.max
		}
	}
	// spread the value over [value*(1-jitter), value*(1+jitter)], so agents sharing a controller don't reconnect in lockstep
	spread := 1 + b.jitter*(2*b.random()-1)
	result := time.Duration(float64(b.value) * spread)
	if result > b.max {
		result = b.max
	}
	if result < b.min {
		result = b.min
	}
	return result
}

// BoundedBackoff returns a Backoff that starts at min and grows exponentially up to max, with 20% jitter.
func BoundedBackoff(min time.Duration, max time.Duration) Backoff {
	return &boundedRandomBackoff{
		multiplier: 1.5,
		jitter:     0.2,
		max:        max,
		min:        min,
		random:     rand.Float64,
	}
}
