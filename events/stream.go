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
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/atomic"
)

// Stream contains configuration for a NATS stream both on the server and client side
type Stream interface {
	Config() *nats.StreamConfig
	// Publish publishes the message on the stream, creating the stream first if it doesn't exist yet.
	Publish(js JetStreamContext, msg *nats.Msg, opts ...nats.PubOpt) error
}

// newConnectionStatusStream returns the stream where connection status events are sent to.
// Status events are informational, so it doesn't matter when old messages are dropped.
func newConnectionStatusStream() *stream {
	return &stream{
		config: &nats.StreamConfig{
			Name: ConnectionStatusStream,
			Subjects: []string{
				ConnectionStatusSubject + ".*",
			},
			MaxMsgs:   1000,
			MaxAge:    24 * time.Hour,
			Retention: nats.LimitsPolicy,
			Storage:   nats.MemoryStorage,
			Discard:   nats.DiscardOld,
		},
	}
}

type stream struct {
	config  *nats.StreamConfig
	created atomic.Bool
}

func (stream *stream) Config() *nats.StreamConfig {
	return stream.config
}

func (stream *stream) create(js JetStreamContext) error {
	if stream.created.Load() {
		return nil
	}
	_, err := js.StreamInfo(stream.config.Name)
	if errors.Is(err, nats.ErrStreamNotFound) {
		if _, err = js.AddStream(stream.config); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	stream.created.Store(true)
	return nil
}

func (stream *stream) Publish(js JetStreamContext, msg *nats.Msg, opts ...nats.PubOpt) error {
	if err := stream.create(js); err != nil {
		return err
	}
	_, err := js.PublishMsg(msg, opts...)
	return err
}
