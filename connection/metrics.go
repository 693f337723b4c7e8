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

	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/nuts-foundation/nuts-ofagent/openflow"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ofagent"
const metricsSubsystem = "cxn"

type metrics struct {
	connections     *prometheus.GaugeVec
	connectAttempts prometheus.Counter
	failures        *prometheus.CounterVec
	messagesRecv    *prometheus.CounterVec
	messagesSent    *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "connections",
			Help:      "Number of controller connections per state",
		}, []string{"state"}),
		connectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "connect_attempts_total",
			Help:      "Number of connect attempts to controllers",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "failures_total",
			Help:      "Number of controller connections that failed, per reason (transport or protocol)",
		}, []string{"reason"}),
		messagesRecv: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "messages_received_total",
			Help:      "Number of OpenFlow messages received from controllers, per message type",
		}, []string{"type"}),
		messagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "messages_sent_total",
			Help:      "Number of OpenFlow messages queued for sending to controllers, per message type",
		}, []string{"type"}),
	}
}

func (m *metrics) register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{m.connections, m.connectAttempts, m.failures, m.messagesRecv, m.messagesSent}
	for _, collector := range collectors {
		if err := core.RegisterCollector(registerer, collector); err != nil {
			return err
		}
	}
	return nil
}

func (m *metrics) transition(from, to State) {
	if from == to {
		return
	}
	m.connections.WithLabelValues(from.String()).Dec()
	m.connections.WithLabelValues(to.String()).Inc()
}

func (m *metrics) failed(reason error) {
	label := "transport"
	if errors.Is(reason, ErrProtocol) {
		label = "protocol"
	}
	m.failures.WithLabelValues(label).Inc()
}

func (m *metrics) received(msgType openflow.Type) {
	m.messagesRecv.WithLabelValues(msgType.String()).Inc()
}

func (m *metrics) sent(msgType openflow.Type) {
	m.messagesSent.WithLabelValues(msgType.String()).Inc()
}
