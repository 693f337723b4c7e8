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
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const statusEngineName = "Status"

type status struct {
	system    *System
	startTime time.Time
}

// NewStatusEngine creates a new Engine for viewing all engines
func NewStatusEngine(system *System) Engine {
	return &status{
		system:    system,
		startTime: time.Now(),
	}
}

func (s *status) Name() string {
	return statusEngineName
}

func (s *status) Routes(router EchoRouter) {
	router.GET("/status/diagnostics", s.diagnosticsOverview)
	router.GET("/status", statusOK)
}

func (s *status) diagnosticsOverview(ctx echo.Context) error {
	if strings.Contains(ctx.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return ctx.JSON(http.StatusOK, s.collectDiagnostics())
	}
	return ctx.String(http.StatusOK, s.diagnosticsSummaryAsText())
}

func (s *status) collectDiagnostics() map[string]map[string]interface{} {
	result := make(map[string]map[string]interface{})
	s.system.VisitEngines(func(engine Engine) {
		if m, ok := engine.(ViewableDiagnostics); ok {
			engineResult := make(map[string]interface{})
			for _, d := range m.Diagnostics() {
				engineResult[d.Name()] = d.Result()
			}
			result[strings.ToLower(m.Name())] = engineResult
		}
	})
	return result
}

func (s *status) diagnosticsSummaryAsText() string {
	var lines []string
	s.system.VisitEngines(func(engine Engine) {
		if m, ok := engine.(ViewableDiagnostics); ok {
			lines = append(lines, m.Name())
			for _, d := range m.Diagnostics() {
				lines = append(lines, fmt.Sprintf("\t%s: %s", d.Name(), d.String()))
			}
		}
	})
	return strings.Join(lines, "\n")
}

// Diagnostics returns list of DiagnosticResult for the StatusEngine.
// The results are a list of all registered engines
func (s *status) Diagnostics() []DiagnosticResult {
	return []DiagnosticResult{
		&GenericDiagnosticResult{Title: "registered_engines", Outcome: s.listAllEngines()},
		&GenericDiagnosticResult{Title: "uptime", Outcome: time.Since(s.startTime).Truncate(time.Second).String()},
		&GenericDiagnosticResult{Title: "version", Outcome: Version()},
		&GenericDiagnosticResult{Title: "git_commit", Outcome: GitCommit},
		&GenericDiagnosticResult{Title: "os_arch", Outcome: runtime.GOOS + "/" + runtime.GOARCH},
	}
}

func (s *status) listAllEngines() []string {
	var names []string
	s.system.VisitEngines(func(engine Engine) {
		if m, ok := engine.(Named); ok {
			names = append(names, m.Name())
		}
	})
	return names
}

// statusOK returns 200 OK with a "OK" body
func statusOK(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "OK")
}
