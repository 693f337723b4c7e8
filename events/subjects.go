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
	"fmt"

	"github.com/nuts-foundation/nuts-ofagent/connection"
)

// ConnectionStatusSubject defines the NATS subject prefix of controller connection status events.
// Events of a connection are published on the prefix followed by the connection ID, e.g. ofagent.cxn.status.3
//
// Payload: StatusEvent
const ConnectionStatusSubject = "ofagent.cxn.status"

// ConnectionStatusStream defines the NATS stream name used for controller connection status events
const ConnectionStatusStream = "ofagent-cxn-status"

func statusSubject(id connection.ID) string {
	return fmt.Sprintf("%s.%d", ConnectionStatusSubject, id)
}
