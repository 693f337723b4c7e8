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
	"context"

	"github.com/nuts-foundation/nuts-ofagent/openflow"
)

// Controllers is the API for managing the controllers of a running agent from other goroutines than the event loop.
type Controllers interface {
	// ListControllers returns snapshots of all connections, ordered by identifier.
	ListControllers(ctx context.Context) ([]Info, error)
	// AddController parses the controller address (see ParseControllerAddress) and adds the controller.
	// If version is 0 the configured version is used.
	AddController(ctx context.Context, address string, version openflow.Version) (Info, error)
	// RemoveController removes the controller with the given identifier.
	RemoveController(ctx context.Context, id ID) error
	// SetEnabled enables or disables all connections.
	SetEnabled(ctx context.Context, enabled bool) error
	// IsEnabled returns whether connections are enabled.
	IsEnabled(ctx context.Context) (bool, error)
}

var _ Controllers = (*Module)(nil)
