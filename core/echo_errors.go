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
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"schneider.vip/problem"
)

// StatusCodeResolverContextKey contains the key for the Echo context parameter that specifies a custom HTTP status code resolver.
const StatusCodeResolverContextKey = "!!StatusCodeResolver"

// OperationIDContextKey contains the key for the Echo context parameter that specifies the name of the API operation being called,
// for logging/error returning.
const OperationIDContextKey = "!!OperationId"

// ModuleNameContextKey contains the key for the Echo context parameter that specifies the module that contains the API operation being called,
// for logging/error returning.
const ModuleNameContextKey = "!!ModuleName"

const unmappedStatusCode = 0

// CreateHTTPErrorHandler returns an Echo HTTPErrorHandler that logs the error and returns it as RFC 7807 problem.
func CreateHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		// HTTPErrors occur e.g. when routing or a bind fails. Their status code and message are mapped directly to a problem.
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			err = httpStatusCodeError{
				msg:        fmt.Sprintf("%v", echoErr.Message),
				statusCode: echoErr.Code,
				err:        echoErr,
			}
		}
		operationID := ctx.Get(OperationIDContextKey)
		title := "Operation failed"
		if operationID != nil {
			title = fmt.Sprintf("%v failed", operationID)
		}
		statusCode := GetHTTPStatusCode(err, ctx)
		logger := getContextLogger(ctx).
			WithField("requestURI", ctx.Request().RequestURI).
			WithError(err)
		if statusCode == http.StatusInternalServerError {
			logger.Error(title)
		} else {
			logger.Debug(title)
		}
		if ctx.Response().Committed {
			logger.Warn("Unable to send error back to client, response already committed")
			return
		}
		result := problem.New(problem.Title(title), problem.Status(statusCode), problem.Detail(err.Error()))
		if _, writeErr := result.WriteTo(ctx.Response()); writeErr != nil {
			logger.WithError(writeErr).Error("Unable to write error response")
		}
	}
}

// Error returns an error that maps to an HTTP status
func Error(statusCode int, errStr string, args ...interface{}) error {
	return httpStatusCodeError{msg: fmt.Errorf(errStr, args...).Error(), err: getErrArg(args), statusCode: statusCode}
}

// NotFoundError returns an error that maps to a HTTP 404 Status Not Found.
func NotFoundError(errStr string, args ...interface{}) error {
	return Error(http.StatusNotFound, errStr, args...)
}

// InvalidInputError returns an error that maps to a HTTP 400 Bad Request.
func InvalidInputError(errStr string, args ...interface{}) error {
	return Error(http.StatusBadRequest, errStr, args...)
}

// HTTPStatusCodeError defines an interface for HTTP errors that includes a HTTP statuscode
type HTTPStatusCodeError interface {
	error
	StatusCode() int
}

type httpStatusCodeError struct {
	msg        string
	statusCode int
	err        error
}

func (e httpStatusCodeError) StatusCode() int {
	return e.statusCode
}

func (e httpStatusCodeError) Unwrap() error {
	return e.err
}

func (e httpStatusCodeError) Error() string {
	return e.msg
}

func getErrArg(args []interface{}) error {
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			return err
		}
	}
	return nil
}

// ErrorStatusCodeResolver defines the API of a type that resolves an HTTP status code from a Go error.
type ErrorStatusCodeResolver interface {
	ResolveStatusCode(err error) int
}

// ResolveStatusCode tries to find the first error in the given map that satisfies errors.Is() for the given error,
// and returns the associated integer as HTTP status code. If no match is found it returns 0.
func ResolveStatusCode(err error, mapping map[error]int) int {
	for curr, code := range mapping {
		if errors.Is(err, curr) {
			return code
		}
	}
	return unmappedStatusCode
}

// GetHTTPStatusCode resolves the HTTP Status Code to be returned from the given error, in this order:
// - errors with a predefined status code (HTTPStatusCodeError)
// - from the ErrorStatusCodeResolver set on the context
// - if none of the above criteria match, HTTP 500 Internal Server Error is returned.
func GetHTTPStatusCode(err error, ctx echo.Context) int {
	var predefined HTTPStatusCodeError
	if errors.As(err, &predefined) {
		return predefined.StatusCode()
	}
	result := unmappedStatusCode
	if resolver, ok := ctx.Get(StatusCodeResolverContextKey).(ErrorStatusCodeResolver); ok {
		result = resolver.ResolveStatusCode(err)
	}
	if result == unmappedStatusCode {
		result = http.StatusInternalServerError
	}
	return result
}

func getContextLogger(ctx echo.Context) *logrus.Entry {
	fields := logrus.Fields{}
	if moduleName := ctx.Get(ModuleNameContextKey); moduleName != nil {
		fields[LogFieldModule] = moduleName
	}
	if operationID := ctx.Get(OperationIDContextKey); operationID != nil {
		fields["operation"] = operationID
	}
	return Logger().WithFields(fields)
}
