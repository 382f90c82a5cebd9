// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSurfaceOutOfDate is returned when the surface no longer matches
	// the swapchain. It is recoverable by rebuilding the presentation chain.
	ErrSurfaceOutOfDate = errors.New("surface out of date")

	// ErrTimeout is returned when a blocking call did not complete in time.
	ErrTimeout = errors.New("timeout expired")

	// ErrSuboptimal is returned by a successful present when the swapchain
	// no longer matches the surface exactly.
	ErrSuboptimal = errors.New("swapchain suboptimal")
)

// CallError is returned when a driver call reports a non-success result.
type CallError struct {
	Call   string
	Result int32
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: result code %d", e.Call, e.Result)
}

// NewCallError builds a CallError for the named call.
func NewCallError(call string, result int32) error {
	return &CallError{Call: call, Result: result}
}

// IsOutOfDate reports whether err was caused by an out of date surface.
func IsOutOfDate(err error) bool {
	return errors.Is(err, ErrSurfaceOutOfDate)
}
