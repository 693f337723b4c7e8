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
	"time"

	"github.com/nuts-foundation/nuts-ofagent/connection"
)

// StatusEvent is published when the status of a controller connection changes.
type StatusEvent struct {
	ID        connection.ID `json:"id"`
	Endpoint  string        `json:"endpoint"`
	Status    string        `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

func newStatusEvent(id connection.ID, params connection.ProtocolParams, status connection.Status, timestamp time.Time) StatusEvent {
	event := StatusEvent{
		ID:        id,
		Endpoint:  params.Endpoint(),
		Status:    status.Kind.String(),
		Timestamp: timestamp,
	}
	if status.Reason != nil {
		event.Reason = status.Reason.Error()
	}
	return event
}
