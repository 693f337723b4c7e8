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
	"container/heap"
	"time"
)

type timer struct {
	id       TimerID
	deadline time.Time
	f        func()
	index    int
}

// timerQueue is a min-heap of timers ordered by deadline, then by ID (which reflects scheduling order).
type timerQueue struct {
	items []*timer
	byID  map[TimerID]*timer
	last  TimerID
}

func newTimerQueue() *timerQueue {
	return &timerQueue{byID: map[TimerID]*timer{}}
}

func (q *timerQueue) Len() int { return len(q.items) }

func (q *timerQueue) Less(i, j int) bool {
	if q.items[i].deadline.Equal(q.items[j].deadline) {
		return q.items[i].id < q.items[j].id
	}
	return q.items[i].deadline.Before(q.items[j].deadline)
}

func (q *timerQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *timerQueue) Push(x interface{}) {
	t := x.(*timer)
	t.index = len(q.items)
	q.items = append(q.items, t)
}

func (q *timerQueue) Pop() interface{} {
	n := len(q.items)
	t := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	t.index = -1
	return t
}

func (q *timerQueue) schedule(deadline time.Time, f func()) TimerID {
	q.last++
	t := &timer{id: q.last, deadline: deadline, f: f}
	heap.Push(q, t)
	q.byID[t.id] = t
	return t.id
}

func (q *timerQueue) cancel(id TimerID) bool {
	t, ok := q.byID[id]
	if !ok {
		return false
	}
	heap.Remove(q, t.index)
	delete(q.byID, id)
	return true
}

// next returns the deadline of the first timer to expire.
func (q *timerQueue) next() (time.Time, bool) {
	if len(q.items) == 0 {
		return time.Time{}, false
	}
	return q.items[0].deadline, true
}

// popDue removes and returns the first timer that expired at the given moment and was scheduled at or before maxID.
// Timers scheduled by a timer callback therefore run in a later iteration, even when their delay is 0.
func (q *timerQueue) popDue(now time.Time, maxID TimerID) *timer {
	if len(q.items) == 0 {
		return nil
	}
	first := q.items[0]
	if first.deadline.After(now) || first.id > maxID {
		// due timers behind a newly scheduled one run in the next iteration
		return nil
	}
	heap.Pop(q)
	delete(q.byID, first.id)
	return first
}
