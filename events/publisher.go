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

package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/nuts-foundation/nuts-ofagent/connection"
	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/nuts-foundation/nuts-ofagent/events/log"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

const publishAttempts = 3

var publishDelay = 100 * time.Millisecond

// publisher publishes connection status events on its own goroutine, so the event loop never waits for NATS.
type publisher struct {
	pool   ConnectionPool
	stream Stream
	queue  chan StatusEvent
	now    func() time.Time

	ctx          context.Context
	cancel       context.CancelFunc
	stopping     chan struct{}
	done         chan struct{}
	started      atomic.Bool
	closed       atomic.Bool
	drainTimeout time.Duration

	published atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

func newPublisher(pool ConnectionPool, stream Stream, queueSize int, drainTimeout time.Duration) *publisher {
	ctx, cancel := context.WithCancel(context.Background())
	return &publisher{
		pool:         pool,
		stream:       stream,
		queue:        make(chan StatusEvent, queueSize),
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
		stopping:     make(chan struct{}),
		done:         make(chan struct{}),
		drainTimeout: drainTimeout,
	}
}

func (p *publisher) start() {
	p.started.Store(true)
	go p.run()
}

// stop stops accepting events, and publishes the events still in the queue.
// Publishing is aborted when the queue isn't drained within the drain timeout.
func (p *publisher) stop() {
	if p.closed.Swap(true) {
		return
	}
	if !p.started.Load() {
		p.cancel()
		return
	}
	close(p.stopping)
	timer := time.NewTimer(p.drainTimeout)
	defer timer.Stop()
	select {
	case <-p.done:
	case <-timer.C:
		log.Logger().Warnf("Status events not published within %s, aborting", p.drainTimeout)
		p.cancel()
		<-p.done
	}
	p.cancel()
}

// observe is a connection.StatusObserver. It's called on the event loop, so it never blocks.
func (p *publisher) observe(id connection.ID, params connection.ProtocolParams, status connection.Status, _ interface{}) {
	if p.closed.Load() {
		p.dropped.Inc()
		return
	}
	select {
	case p.queue <- newStatusEvent(id, params, status, p.now()):
	default:
		p.dropped.Inc()
		log.Logger().
			WithField(core.LogFieldConnectionID, id).
			Warn("Status event queue is full, dropping event")
	}
}

func (p *publisher) run() {
	defer close(p.done)
	for {
		select {
		case <-p.stopping:
			p.drain()
			return
		case event := <-p.queue:
			p.publish(event)
		}
	}
}

func (p *publisher) drain() {
	for {
		select {
		case event := <-p.queue:
			p.publish(event)
		default:
			return
		}
	}
}

func (p *publisher) publish(event StatusEvent) {
	logger := log.Logger().WithFields(logrus.Fields{
		core.LogFieldConnectionID: event.ID,
		core.LogFieldPeerAddr:     event.Endpoint,
	})
	data, err := json.Marshal(event)
	if err != nil {
		p.failed.Inc()
		logger.WithError(err).Error("Unable to marshal status event")
		return
	}
	err = retry.Do(func() error {
		_, js, err := p.pool.Acquire(p.ctx)
		if err != nil {
			return err
		}
		return p.stream.Publish(js, &nats.Msg{Subject: statusSubject(event.ID), Data: data})
	},
		retry.Attempts(publishAttempts),
		retry.Delay(publishDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(p.ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.WithError(err).Debugf("Retrying publication of status event (attempt=%d)", n+1)
		}),
	)
	if err != nil {
		p.failed.Inc()
		logger.WithError(err).Warn("Unable to publish status event")
		return
	}
	p.published.Inc()
	logger.Tracef("Published status event (status=%s)", event.Status)
}
