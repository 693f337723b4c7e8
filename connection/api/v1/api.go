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
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nuts-foundation/nuts-ofagent/connection"
	"github.com/nuts-foundation/nuts-ofagent/core"
	"github.com/nuts-foundation/nuts-ofagent/openflow"
	"github.com/nuts-foundation/nuts-ofagent/socket"
)

const basePath = "/internal/cxn/v1"

var _ core.Routable = (*Wrapper)(nil)
var _ core.ErrorStatusCodeResolver = (*Wrapper)(nil)

// Wrapper implements the HTTP API for managing controller connections.
type Wrapper struct {
	Service connection.Controllers
}

// ResolveStatusCode maps errors returned by this API to specific HTTP status codes.
func (w *Wrapper) ResolveStatusCode(err error) int {
	return core.ResolveStatusCode(err, map[error]int{
		connection.ErrNotFound:          http.StatusNotFound,
		connection.ErrDuplicateEndpoint: http.StatusConflict,
		connection.ErrTableFull:         http.StatusConflict,
		connection.ErrInvalidConfig:     http.StatusBadRequest,
		connection.ErrInvalidMessage:    http.StatusBadRequest,
		connection.ErrNotInitialized:    http.StatusServiceUnavailable,
		socket.ErrClosed:                http.StatusServiceUnavailable,
		context.DeadlineExceeded:        http.StatusServiceUnavailable,
	})
}

func (w *Wrapper) Routes(router core.EchoRouter) {
	router.GET(basePath+"/controller", w.operation("ListControllers", w.ListControllers))
	router.POST(basePath+"/controller", w.operation("AddController", w.AddController))
	router.DELETE(basePath+"/controller/:id", w.operation("RemoveController", w.RemoveController))
	router.GET(basePath+"/enabled", w.operation("GetEnabled", w.GetEnabled))
	router.PUT(basePath+"/enabled", w.operation("SetEnabled", w.SetEnabled))
}

func (w *Wrapper) operation(operationID string, handler echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctx.Set(core.OperationIDContextKey, operationID)
		ctx.Set(core.ModuleNameContextKey, connection.ModuleName)
		ctx.Set(core.StatusCodeResolverContextKey, w)
		return handler(ctx)
	}
}

// ListControllers lists all controller connections.
func (w *Wrapper) ListControllers(ctx echo.Context) error {
	infos, err := w.Service.ListControllers(ctx.Request().Context())
	if err != nil {
		return err
	}
	results := make([]Controller, len(infos))
	for i, info := range infos {
		results[i] = toController(info)
	}
	return ctx.JSON(http.StatusOK, results)
}

// AddController adds a controller and returns its connection.
func (w *Wrapper) AddController(ctx echo.Context) error {
	var request AddControllerRequest
	if err := ctx.Bind(&request); err != nil {
		return core.InvalidInputError("invalid request body: %w", err)
	}
	if request.Address == "" {
		return core.InvalidInputError("missing address")
	}
	if request.Version < 0 || request.Version > 0xff {
		return core.InvalidInputError("invalid version: %d", request.Version)
	}
	info, err := w.Service.AddController(ctx.Request().Context(), request.Address, openflow.Version(request.Version))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, toController(info))
}

// RemoveController removes the controller with the given connection ID.
func (w *Wrapper) RemoveController(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return core.InvalidInputError("invalid connection ID: %s", ctx.Param("id"))
	}
	if err := w.Service.RemoveController(ctx.Request().Context(), connection.ID(id)); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetEnabled returns whether connections are enabled.
func (w *Wrapper) GetEnabled(ctx echo.Context) error {
	enabled, err := w.Service.IsEnabled(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, Enabled{Enabled: enabled})
}

// SetEnabled enables or disables all connections.
func (w *Wrapper) SetEnabled(ctx echo.Context) error {
	var request Enabled
	if err := ctx.Bind(&request); err != nil {
		return core.InvalidInputError("invalid request body: %w", err)
	}
	if err := w.Service.SetEnabled(ctx.Request().Context(), request.Enabled); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, request)
}
