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

package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatusTestServer() (http.Handler, *System) {
	system := NewSystem()
	statusEngine := NewStatusEngine(system)
	system.RegisterEngine(statusEngine)
	system.RegisterEngine(NewMetricsEngine())
	return NewEchoServer([]Routable{statusEngine.(Routable)}).(http.Handler), system
}

func serve(handler http.Handler, path string, accept string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, path, nil)
	if accept != "" {
		request.Header.Set("Accept", accept)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestStatus_Routes(t *testing.T) {
	handler, _ := newStatusTestServer()

	t.Run("GET /status", func(t *testing.T) {
		response := serve(handler, "/status", "")

		assert.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, "OK", response.Body.String())
	})
	t.Run("GET /status/diagnostics as text", func(t *testing.T) {
		response := serve(handler, "/status/diagnostics", "")

		assert.Equal(t, http.StatusOK, response.Code)
		assert.Contains(t, response.Body.String(), "Status\n\tregistered_engines: [Status Metrics]")
	})
	t.Run("GET /status/diagnostics as JSON", func(t *testing.T) {
		response := serve(handler, "/status/diagnostics", "application/json")

		require.Equal(t, http.StatusOK, response.Code)
		result := map[string]map[string]interface{}{}
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &result))
		assert.Equal(t, []interface{}{"Status", "Metrics"}, result["status"]["registered_engines"])
		assert.Contains(t, result["status"], "uptime")
		assert.Contains(t, result["status"], "os_arch")
	})
}

func TestStatus_Diagnostics(t *testing.T) {
	_, system := newStatusTestServer()

	results := system.Diagnostics()

	require.Len(t, results, 5)
	assert.Equal(t, "registered_engines", results[0].Name())
	assert.Equal(t, "version", results[2].Name())
	assert.Equal(t, Version(), results[2].Result())
}

func TestVersion(t *testing.T) {
	defer func(version string) { GitVersion = version }(GitVersion)

	t.Run("branch when untagged", func(t *testing.T) {
		GitVersion = ""
		assert.Equal(t, "development", Version())
		assert.Equal(t, "ofagent/development", UserAgent())
	})
	t.Run("tag", func(t *testing.T) {
		GitVersion = "v1.2.0"
		assert.Equal(t, "v1.2.0", Version())
		assert.Contains(t, BuildInfo(), "Git version: v1.2.0")
	})
}
