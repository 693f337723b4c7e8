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
	"runtime"
	"strings"
)

// GitCommit holds the latest git commit hash for this build.
var GitCommit string

// GitVersion holds the tagged version belonging to the git commit.
var GitVersion string

// GitBranch holds the branch from where the binary is built.
var GitBranch = "development"

// Version gives the current version according to the git tag or the branch if there's no tag.
func Version() string {
	if GitVersion != "" && GitVersion != "undefined" {
		return GitVersion
	}
	return GitBranch
}

// UserAgent returns the User-Agent the agent uses for outbound HTTP requests.
func UserAgent() string {
	return "ofagent/" + Version()
}

// BuildInfo returns the version, commit and platform of the binary as multi-line text.
func BuildInfo() string {
	lines := []string{
		"Git version: " + Version(),
		"Git commit: " + GitCommit,
		fmt.Sprintf("OS/Arch: %s/%s", runtime.GOOS, runtime.GOARCH),
		"Go: " + runtime.Version(),
	}
	return strings.Join(lines, "\n") + "\n"
}
