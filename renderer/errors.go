// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"fmt"

	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
)

var (
	// ErrNoSuitableDevice is returned when no adapter passes selection.
	ErrNoSuitableDevice = errors.New("no suitable physical device")

	// ErrMissingLayers is returned when requested instance layers are unavailable.
	ErrMissingLayers = errors.New("instance layers not available")

	// ErrMissingExtensions is returned when requested instance extensions are unavailable.
	ErrMissingExtensions = errors.New("instance extensions not available")

	// ErrWindowMinimized is returned when the drawable area is empty
	// and nothing can be presented.
	ErrWindowMinimized = errors.New("window minimized")

	// ErrOffScreen is returned by Create when the device configuration
	// does not require on-screen rendering. The renderer always presents.
	ErrOffScreen = errors.New("on-screen rendering not required")

	// ErrMissingQueue is returned when the selected device lacks a queue
	// the renderer submits to.
	ErrMissingQueue = errors.New("device queue missing")

	// ErrInvalidState is returned when an operation is not allowed in
	// the current lifecycle state.
	ErrInvalidState = errors.New("invalid renderer state")
)

// FatalSetupError is returned by Create. Everything built before the
// failing stage has already been released.
type FatalSetupError struct {
	Stage string
	Err   error
}

func (e *FatalSetupError) Error() string {
	return fmt.Sprintf("renderer setup failed at %s: %s", e.Stage, e.Err.Error())
}

// Unwrap returns the underlying cause.
func (e *FatalSetupError) Unwrap() error {
	return e.Err
}

// Cause returns the underlying cause for errors.Cause.
func (e *FatalSetupError) Cause() error {
	return e.Err
}

// IsRecoverable reports whether rendering can continue after err. Out of
// date surfaces are rebuilt on the next frame and a minimized window just
// skips frames.
func IsRecoverable(err error) bool {
	return gfx.IsOutOfDate(err) || errors.Is(err, ErrWindowMinimized)
}
