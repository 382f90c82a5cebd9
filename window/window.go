// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window holds what every window backend shares.
package window

import (
	"sync"

	"github.com/devblok/vista/gfx"
)

// Backend names a window implementation.
type Backend string

// Available backends.
const (
	SDL  Backend = "sdl"
	GLFW Backend = "glfw"
)

// Base caches the surface details each adapter reported for the
// window surface. Backends embed it.
type Base struct {
	mu       sync.RWMutex
	settings map[gfx.Adapter]gfx.SurfaceDetails
	resized  bool
}

// SurfaceSettings returns the cached details for adapter.
func (b *Base) SurfaceSettings(adapter gfx.Adapter) (gfx.SurfaceDetails, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.settings[adapter]
	return d, ok
}

// SetSurfaceSettings stores the details for adapter.
func (b *Base) SetSurfaceSettings(adapter gfx.Adapter, details gfx.SurfaceDetails) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.settings == nil {
		b.settings = make(map[gfx.Adapter]gfx.SurfaceDetails)
	}
	b.settings[adapter] = details
}

// MarkResized records that the drawable size changed.
func (b *Base) MarkResized() {
	b.mu.Lock()
	b.resized = true
	b.mu.Unlock()
}

// Resized reports whether the drawable size changed since the last call.
func (b *Base) Resized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.resized
	b.resized = false
	return r
}
