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

package test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

// AssertIsError asserts that expected is, or is the cause of the given actual error (according to errors.Is()).
func AssertIsError(t *testing.T, actual error, expected error) bool {
	t.Helper()
	if !errors.Is(actual, expected) {
		assert.Failf(t, "incorrect error", "actual error does not equal or wrap the given error\n\texpected: %v\n\tactual:%v", expected, actual)
		return false
	}
	return true
}

// WaitFor polls the condition every 10ms until it holds, and fails the test when it doesn't hold before the timeout.
func WaitFor(t *testing.T, condition func() bool, timeout time.Duration, message string, msgArgs ...interface{}) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !condition() {
		if time.Now().After(deadline) {
			assert.Fail(t, fmt.Sprintf(message, msgArgs...))
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
	return true
}

// Contains returns a gomock.Matcher which checks whether the formatted argument contains the given string.
func Contains(needle string) gomock.Matcher {
	return containsMatcher{needle: needle}
}

type containsMatcher struct {
	needle string
}

func (c containsMatcher) Matches(x interface{}) bool {
	return strings.Contains(fmt.Sprintf("%s", x), c.needle)
}

func (c containsMatcher) String() string {
	return "contains string: " + c.needle
}
