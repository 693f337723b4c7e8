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
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nuts-foundation/nuts-ofagent/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusEvent(t *testing.T) {
	params, err := connection.ParseControllerAddress("tcp://10.0.0.1:6653")
	require.NoError(t, err)
	timestamp := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	t.Run("connected", func(t *testing.T) {
		event := newStatusEvent(2, params, connection.Status{Kind: connection.StatusConnected}, timestamp)

		data, _ := json.Marshal(event)

		assert.JSONEq(t, `{"id":2,"endpoint":"`+params.Endpoint()+`","status":"Connected","timestamp":"2026-10-17T12:00:00Z"}`, string(data))
	})
	t.Run("error with reason", func(t *testing.T) {
		event := newStatusEvent(2, params, connection.Status{Kind: connection.StatusError, Reason: errors.New("connection refused")}, timestamp)

		assert.Equal(t, "Error", event.Status)
		assert.Equal(t, "connection refused", event.Reason)
	})
}
