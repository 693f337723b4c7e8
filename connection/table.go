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
	"sort"

	"github.com/nuts-foundation/nuts-ofagent/core"
)

// table is the registry of connections. It allocates identifiers and is only accessed on the event loop goroutine.
// Removed connections are marked and stay in the table (holding on to their identifier) until they're swept.
type table struct {
	records   map[ID]*conn
	endpoints map[string]ID
	maxSize   int
}

func newTable(maxSize int) *table {
	return &table{
		records:   map[ID]*conn{},
		endpoints: map[string]ID{},
		maxSize:   maxSize,
	}
}

// add creates a record for the given controller. The table isn't altered when an error is returned.
func (t *table) add(params ProtocolParams, config ConfigParams) (*conn, error) {
	endpoint := params.Endpoint()
	if existing, ok := t.endpoints[endpoint]; ok {
		return nil, core.WrapErrorf(ErrDuplicateEndpoint, "endpoint %s is already used by connection %d", endpoint, existing)
	}
	if len(t.endpoints) >= t.maxSize {
		return nil, core.WrapErrorf(ErrTableFull, "%d connections", len(t.endpoints))
	}
	id := ID(0)
	for ; ; id++ {
		if _, taken := t.records[id]; !taken {
			break
		}
	}
	record := &conn{id: id, params: params, config: config}
	t.records[id] = record
	t.endpoints[endpoint] = id
	return record, nil
}

// lookup returns the live connection with the given identifier. Marked connections aren't returned.
func (t *table) lookup(id ID) (*conn, bool) {
	record, ok := t.records[id]
	if !ok || record.marked {
		return nil, false
	}
	return record, true
}

// mark marks the connection for removal. Its endpoint can be reused immediately, its identifier only after the sweep.
func (t *table) mark(record *conn) {
	record.marked = true
	delete(t.endpoints, record.params.Endpoint())
}

// sweep deletes marked connections that are closed, and returns their identifiers.
func (t *table) sweep() []ID {
	var swept []ID
	for id, record := range t.records {
		if record.marked && record.state == StateClosed {
			delete(t.records, id)
			swept = append(swept, id)
		}
	}
	sort.Slice(swept, func(i, j int) bool { return swept[i] < swept[j] })
	return swept
}

// live returns the connections that aren't marked, ordered by identifier.
func (t *table) live() []*conn {
	result := make([]*conn, 0, len(t.endpoints))
	for _, record := range t.records {
		if !record.marked {
			result = append(result, record)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].id < result[j].id })
	return result
}

// all returns all connections, including marked ones, ordered by identifier.
func (t *table) all() []*conn {
	result := make([]*conn, 0, len(t.records))
	for _, record := range t.records {
		result = append(result, record)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].id < result[j].id })
	return result
}

// len returns the number of live connections.
func (t *table) len() int {
	return len(t.endpoints)
}
