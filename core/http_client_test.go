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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHTTPClient(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		userAgent = request.Header.Get("User-Agent")
		writer.WriteHeader(http.StatusTeapot)
		_, _ = writer.Write([]byte("short and stout"))
	}))
	defer server.Close()
	client := CreateHTTPClient(ClientConfig{Address: server.URL, Timeout: time.Second})
	request, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	response, err := client.Do(request)

	require.NoError(t, err)
	defer response.Body.Close()
	assert.Equal(t, UserAgent(), userAgent)
	t.Run("TestResponseCode", func(t *testing.T) {
		err := TestResponseCode(http.StatusOK, response)

		require.Error(t, err)
		httpErr, ok := err.(HttpError)
		require.True(t, ok)
		assert.Equal(t, http.StatusTeapot, httpErr.StatusCode)
		assert.Equal(t, "short and stout", string(httpErr.ResponseBody))
		assert.EqualError(t, err, "server returned HTTP 418 (expected: 200)")
	})
}

func TestTestResponseCode(t *testing.T) {
	assert.NoError(t, TestResponseCode(http.StatusOK, &http.Response{StatusCode: http.StatusOK}))
}
