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

package v1

import (
	"time"

	"github.com/nuts-foundation/nuts-ofagent/connection"
)

// Controller is the API representation of a controller connection.
type Controller struct {
	ID              int        `json:"id"`
	Endpoint        string     `json:"endpoint"`
	Version         string     `json:"version"`
	State           string     `json:"state"`
	Status          string     `json:"status"`
	Session         string     `json:"session,omitempty"`
	ConnectAttempts int        `json:"connectAttempts"`
	LastError       string     `json:"lastError,omitempty"`
	ConnectedSince  *time.Time `json:"connectedSince,omitempty"`
	OutboundQueue   int        `json:"outboundQueue"`
}

// AddControllerRequest is the request body for adding a controller.
type AddControllerRequest struct {
	// Address is the address of the controller, e.g. tcp://10.0.0.1:6653 or [fe80::1%eth0]:6653.
	Address string `json:"address"`
	// Version is the OpenFlow wire version to use. If omitted, the configured version is used.
	Version int `json:"version,omitempty"`
}

// Enabled is the request and response body for enabling or disabling connections.
type Enabled struct {
	Enabled bool `json:"enabled"`
}

func toController(info connection.Info) Controller {
	return Controller{
		ID:              int(info.ID),
		Endpoint:        info.Endpoint,
		Version:         info.Version,
		State:           info.State.String(),
		Status:          info.Status.String(),
		Session:         info.Session,
		ConnectAttempts: info.ConnectAttempts,
		LastError:       info.LastError,
		ConnectedSince:  info.ConnectedSince,
		OutboundQueue:   info.OutboundQueue,
	}
}
