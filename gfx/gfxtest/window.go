// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfxtest

import (
	"unsafe"

	"github.com/devblok/vista/window"
)

// Window is a headless window.
type Window struct {
	window.Base

	Width, Height uint32
	Extensions    []string
	Close         bool
	CreateErr     error
	SurfaceErr    error

	Created   bool
	Polls     int
	Alerts    []string
	ShutDowns int
}

// NewWindow returns a headless window of the given drawable size.
func NewWindow(width, height uint32) *Window {
	return &Window{
		Width:      width,
		Height:     height,
		Extensions: []string{"VK_KHR_surface", "VK_KHR_xlib_surface"},
	}
}

// Create marks the window created.
func (w *Window) Create() error {
	if w.CreateErr != nil {
		return w.CreateErr
	}
	w.Created = true
	return nil
}

// RequiredExtensions returns the configured instance extensions.
func (w *Window) RequiredExtensions() []string {
	return w.Extensions
}

// ProcAddr returns nil; the fake driver does not load anything.
func (w *Window) ProcAddr() unsafe.Pointer {
	return nil
}

// CreateSurface returns a dummy native surface.
func (w *Window) CreateSurface(instance interface{}) (uintptr, error) {
	if w.SurfaceErr != nil {
		return 0, w.SurfaceErr
	}
	return 0xcafe, nil
}

// Poll counts event polls.
func (w *Window) Poll() {
	w.Polls++
}

// ShouldClose reports the Close field.
func (w *Window) ShouldClose() bool {
	return w.Close
}

// DrawableSize returns the configured size.
func (w *Window) DrawableSize() (uint32, uint32) {
	return w.Width, w.Height
}

// Resize changes the drawable size and flags the resize.
func (w *Window) Resize(width, height uint32) {
	w.Width, w.Height = width, height
	w.MarkResized()
}

// Alert records the message.
func (w *Window) Alert(title, message string) {
	w.Alerts = append(w.Alerts, title+": "+message)
}

// ShutDown counts shutdowns.
func (w *Window) ShutDown() {
	w.ShutDowns++
	w.Created = false
}
