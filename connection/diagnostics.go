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
	"strings"

	"github.com/nuts-foundation/nuts-ofagent/core"
)

// connectionsStatistic holds snapshots of the connections.
type connectionsStatistic []Info

func (c connectionsStatistic) Name() string {
	return "connections"
}

func (c connectionsStatistic) Result() interface{} {
	return []Info(c)
}

func (c connectionsStatistic) String() string {
	items := make([]string, len(c))
	for i, curr := range c {
		items[i] = curr.String()
	}
	return strings.Join(items, ", ")
}

// Diagnostics returns the state of the manager and its connections.
func (m *Manager) Diagnostics() []core.DiagnosticResult {
	connected := 0
	list := m.List()
	for _, curr := range list {
		if curr.State == StateEstablished {
			connected++
		}
	}
	return []core.DiagnosticResult{
		core.GenericDiagnosticResult{Title: "initialized", Outcome: m.initialized},
		core.GenericDiagnosticResult{Title: "enabled", Outcome: m.enabled},
		core.GenericDiagnosticResult{Title: "connections_count", Outcome: len(list)},
		core.GenericDiagnosticResult{Title: "connected_count", Outcome: connected},
		connectionsStatistic(list),
	}
}
