// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import (
	"math/rand"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"
)

func TestChoosePresentMode(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		name       string
		available  []PresentMode
		preference []PresentMode
		want       PresentMode
	}{
		{"mailbox available", []PresentMode{PresentModeFifo, PresentModeMailbox}, []PresentMode{PresentModeMailbox}, PresentModeMailbox},
		{"mailbox missing", []PresentMode{PresentModeFifo, PresentModeImmediate}, []PresentMode{PresentModeMailbox}, PresentModeFifo},
		{"second preference", []PresentMode{PresentModeFifo, PresentModeImmediate}, []PresentMode{PresentModeMailbox, PresentModeImmediate}, PresentModeImmediate},
		{"order of preference wins", []PresentMode{PresentModeImmediate, PresentModeMailbox}, []PresentMode{PresentModeMailbox, PresentModeImmediate}, PresentModeMailbox},
		{"empty preference", []PresentMode{PresentModeMailbox}, nil, PresentModeFifo},
	}
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			c.Assert(ChoosePresentMode(test.available, test.preference), qt.Equals, test.want)
		})
	}
}

func TestChooseExtentWithinBounds(t *testing.T) {
	c := qt.New(t)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		minW, minH := uint32(r.Intn(512)), uint32(r.Intn(512))
		caps := SurfaceCapabilities{
			MinImageExtent: Extent2D{minW, minH},
			MaxImageExtent: Extent2D{minW + uint32(r.Intn(4096)), minH + uint32(r.Intn(4096))},
		}
		e := ChooseExtent(caps, uint32(r.Intn(8192)), uint32(r.Intn(8192)))
		c.Assert(e.Width >= caps.MinImageExtent.Width && e.Width <= caps.MaxImageExtent.Width, qt.Equals, true)
		c.Assert(e.Height >= caps.MinImageExtent.Height && e.Height <= caps.MaxImageExtent.Height, qt.Equals, true)
	}
}

func TestChooseExtentFullHD(t *testing.T) {
	c := qt.New(t)
	caps := SurfaceCapabilities{
		MinImageCount:  2,
		MaxImageCount:  8,
		CurrentExtent:  Extent2D{1920, 1080},
		MinImageExtent: Extent2D{1, 1},
		MaxImageExtent: Extent2D{4096, 4096},
	}
	c.Assert(ChooseExtent(caps, 1920, 1080), qt.Equals, Extent2D{1920, 1080})
	c.Assert(ChooseImageCount(caps), qt.Equals, uint32(3))
}

func TestChooseImageCount(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		min, max, want uint32
	}{
		{2, 8, 3},
		{2, 2, 2},
		{1, 0, 2},
		{3, 0, 4},
		{3, 4, 4},
	}
	for _, test := range tests {
		got := ChooseImageCount(SurfaceCapabilities{MinImageCount: test.min, MaxImageCount: test.max})
		c.Assert(got, qt.Equals, test.want, qt.Commentf("min %d max %d", test.min, test.max))
		c.Assert(got >= test.min, qt.Equals, true)
	}
}

func TestChooseSurfaceFormat(t *testing.T) {
	c := qt.New(t)

	_, err := ChooseSurfaceFormat(nil)
	c.Assert(err, qt.Equals, ErrNoFormat)

	f, err := ChooseSurfaceFormat([]SurfaceFormat{{Format: FormatUndefined}})
	c.Assert(err, qt.IsNil)
	c.Assert(f, qt.Equals, PreferredSurfaceFormat)

	f, err = ChooseSurfaceFormat([]SurfaceFormat{{Format: FormatB8G8R8A8Srgb}, PreferredSurfaceFormat})
	c.Assert(err, qt.IsNil)
	c.Assert(f, qt.Equals, PreferredSurfaceFormat)

	f, err = ChooseSurfaceFormat([]SurfaceFormat{{Format: FormatR8G8B8A8Unorm}, {Format: FormatB8G8R8A8Srgb}})
	c.Assert(err, qt.IsNil)
	c.Assert(f.Format, qt.Equals, FormatR8G8B8A8Unorm)
}

func TestChooseDepthFormat(t *testing.T) {
	c := qt.New(t)
	f, err := ChooseDepthFormat(DepthFormatCandidates, func(f Format) bool {
		return f == FormatD24UnormS8Uint || f == FormatD16Unorm
	})
	c.Assert(err, qt.IsNil)
	c.Assert(f, qt.Equals, FormatD24UnormS8Uint)

	_, err = ChooseDepthFormat(DepthFormatCandidates, func(Format) bool { return false })
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestChooseCompositeAlpha(t *testing.T) {
	c := qt.New(t)
	c.Assert(ChooseCompositeAlpha(CompositeAlphaInherit|CompositeAlphaOpaque), qt.Equals, CompositeAlphaOpaque)
	c.Assert(ChooseCompositeAlpha(CompositeAlphaInherit|CompositeAlphaPostMultiplied), qt.Equals, CompositeAlphaPostMultiplied)
}

func TestParsePresentMode(t *testing.T) {
	c := qt.New(t)
	for _, mode := range []PresentMode{PresentModeImmediate, PresentModeMailbox, PresentModeFifo, PresentModeFifoRelaxed} {
		got, ok := ParsePresentMode(mode.String())
		c.Assert(ok, qt.Equals, true)
		c.Assert(got, qt.Equals, mode)
	}
	_, ok := ParsePresentMode("vsync")
	c.Assert(ok, qt.Equals, false)
}

func TestOutOfDateWrapped(t *testing.T) {
	c := qt.New(t)
	err := errors.Wrap(ErrSurfaceOutOfDate, "vk.AcquireNextImage()")
	c.Assert(IsOutOfDate(err), qt.Equals, true)
	c.Assert(IsOutOfDate(NewCallError("vk.QueuePresent()", -4)), qt.Equals, false)
}

func BenchmarkChoosePresentMode(b *testing.B) {
	available := []PresentMode{PresentModeFifo, PresentModeImmediate, PresentModeFifoRelaxed}
	preference := []PresentMode{PresentModeMailbox, PresentModeImmediate}
	for i := 0; i < b.N; i++ {
		ChoosePresentMode(available, preference)
	}
}
