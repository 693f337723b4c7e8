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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nuts-foundation/nuts-ofagent/core"
)

// unavailableAttempts is the number of times a request is sent while the agent responds that it's not ready yet.
const unavailableAttempts = 3

var unavailableDelay = 200 * time.Millisecond

// HTTPClient holds the server address and other basic settings for the http client
type HTTPClient struct {
	core.ClientConfig
}

// ListControllers returns all controller connections of the agent.
func (hb HTTPClient) ListControllers() ([]Controller, error) {
	var result []Controller
	err := hb.do(http.MethodGet, "/controller", nil, http.StatusOK, &result)
	return result, err
}

// AddController adds a controller to the agent. If version is 0 the agent's configured version is used.
func (hb HTTPClient) AddController(address string, version int) (*Controller, error) {
	var result Controller
	request := AddControllerRequest{Address: address, Version: version}
	if err := hb.do(http.MethodPost, "/controller", request, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RemoveController removes a controller from the agent.
func (hb HTTPClient) RemoveController(id int) error {
	return hb.do(http.MethodDelete, fmt.Sprintf("/controller/%d", id), nil, http.StatusNoContent, nil)
}

// SetEnabled enables or disables the agent's controller connections.
func (hb HTTPClient) SetEnabled(enabled bool) error {
	return hb.do(http.MethodPut, "/enabled", Enabled{Enabled: enabled}, http.StatusOK, nil)
}

// IsEnabled returns whether the agent's controller connections are enabled.
func (hb HTTPClient) IsEnabled() (bool, error) {
	var result Enabled
	err := hb.do(http.MethodGet, "/enabled", nil, http.StatusOK, &result)
	return result.Enabled, err
}

// do sends the request, retrying when the agent is still starting (HTTP 503).
func (hb HTTPClient) do(method string, path string, body interface{}, expectedStatus int, target interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), hb.Timeout)
	defer cancel()
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return err
		}
	}
	return retry.Do(func() error {
		return hb.doOnce(ctx, method, path, data, expectedStatus, target)
	},
		retry.Attempts(unavailableAttempts),
		retry.Delay(unavailableDelay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(isUnavailable),
	)
}

func isUnavailable(err error) bool {
	var httpErr core.HttpError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusServiceUnavailable
}

func (hb HTTPClient) doOnce(ctx context.Context, method string, path string, body []byte, expectedStatus int, target interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	request, err := http.NewRequestWithContext(ctx, method, hb.GetAddress()+basePath+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	response, err := core.CreateHTTPClient(hb.ClientConfig).Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	if err := core.TestResponseCode(expectedStatus, response); err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	responseData, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(responseData, target)
}
