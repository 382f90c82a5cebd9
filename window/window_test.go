// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/vista/gfx"
)

func TestSurfaceSettings(t *testing.T) {
	c := qt.New(t)
	var b Base

	_, ok := b.SurfaceSettings(1)
	c.Assert(ok, qt.Equals, false)

	details := gfx.SurfaceDetails{PresentModes: []gfx.PresentMode{gfx.PresentModeFifo}}
	b.SetSurfaceSettings(1, details)
	got, ok := b.SurfaceSettings(1)
	c.Assert(ok, qt.Equals, true)
	c.Assert(got, qt.DeepEquals, details)
}

func TestResized(t *testing.T) {
	c := qt.New(t)
	var b Base
	c.Assert(b.Resized(), qt.Equals, false)
	b.MarkResized()
	c.Assert(b.Resized(), qt.Equals, true)
	c.Assert(b.Resized(), qt.Equals, false)
}
