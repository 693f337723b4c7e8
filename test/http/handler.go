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

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
)

// Handler is an http.Handler that records the requests it receives and responds with a fixed status and body.
// Usage:
//
//	s := httptest.NewServer(&Handler{StatusCode: http.StatusOK, ResponseData: someStruct})
//
// Then s.URL must be configured in the client.
type Handler struct {
	StatusCode int
	// ResponseData is written as-is when it's a string, otherwise it's marshalled to JSON.
	ResponseData interface{}

	mux      sync.Mutex
	requests []Request
}

// Request is a request received by Handler.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

func (h *Handler) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	h.mux.Lock()
	h.requests = append(h.requests, Request{Method: req.Method, Path: req.URL.Path, Body: body})
	h.mux.Unlock()

	var data []byte
	if s, ok := h.ResponseData.(string); ok {
		data = []byte(s)
	} else {
		writer.Header().Add("Content-Type", "application/json")
		data, _ = json.Marshal(h.ResponseData)
	}
	writer.WriteHeader(h.StatusCode)
	_, _ = writer.Write(data)
}

// Requests returns the requests received so far.
func (h *Handler) Requests() []Request {
	h.mux.Lock()
	defer h.mux.Unlock()
	return append([]Request(nil), h.requests...)
}
