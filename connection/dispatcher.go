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
	"github.com/nuts-foundation/nuts-ofagent/connection/log"
	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/nuts-foundation/nuts-ofagent/openflow"
	"github.com/sirupsen/logrus"
)

type notification struct {
	id     ID
	params ProtocolParams
	status Status
}

type observer struct {
	handle   ObserverHandle
	callback StatusObserver
	cookie   interface{}
}

// dispatcher fans status changes out to observers, and passes received messages to the message handler.
type dispatcher struct {
	observers  []observer
	lastHandle ObserverHandle
	handler    MessageHandler

	dispatching bool
	pending     []notification
}

func (d *dispatcher) register(callback StatusObserver, cookie interface{}) ObserverHandle {
	d.lastHandle++
	d.observers = append(d.observers, observer{handle: d.lastHandle, callback: callback, cookie: cookie})
	return d.lastHandle
}

func (d *dispatcher) unregister(handle ObserverHandle) bool {
	for i, curr := range d.observers {
		if curr.handle == handle {
			// copy, so a snapshot taken by a running notification isn't altered
			observers := make([]observer, 0, len(d.observers)-1)
			observers = append(observers, d.observers[:i]...)
			d.observers = append(observers, d.observers[i+1:]...)
			return true
		}
	}
	return false
}

// notify calls the observers in order of registration. Observers (un)registered by an observer
// take effect from the next notification. A notification raised by an observer is queued,
// and delivered to all observers after the current one.
func (d *dispatcher) notify(id ID, params ProtocolParams, status Status) {
	d.pending = append(d.pending, notification{id: id, params: params, status: status})
	if d.dispatching {
		return
	}
	d.dispatching = true
	defer func() {
		d.dispatching = false
		d.pending = nil
	}()
	for len(d.pending) > 0 {
		next := d.pending[0]
		d.pending = d.pending[1:]
		observers := d.observers
		for _, curr := range observers {
			curr.callback(next.id, next.params, next.status, curr.cookie)
		}
	}
}

func (d *dispatcher) setHandler(handler MessageHandler) {
	d.handler = handler
}

func (d *dispatcher) deliver(id ID, msg openflow.Message) {
	if d.handler == nil {
		log.Logger().
			WithFields(logrus.Fields{
				core.LogFieldConnectionID: id,
				core.LogFieldMessageType:  msg.Type,
			}).
			Debug("No message handler, dropping message")
		return
	}
	d.handler(id, msg)
}
