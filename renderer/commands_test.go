// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"

	"github.com/devblok/vista/core"
	"github.com/devblok/vista/gfx"
	"github.com/devblok/vista/gfx/gfxtest"
)

type recorderFixture struct {
	drv    *gfxtest.Driver
	chain  *PresentationChain
	layout *RenderTargetLayout
	frames *FrameBufferSet
	scene  *testScene
	rec    *CommandRecorder
}

func newRecorderFixture(c *qt.C) (*recorderFixture, func()) {
	drv := gfxtest.NewDriver()
	win := gfxtest.NewWindow(1920, 1080)
	dev, surface, releaseDevice := testDevice(c, drv, win, core.DefaultConfiguration().Device)

	chain, err := NewPresentationChain(dev, surface, gfx.Extent2D{Width: 1920, Height: 1080}, core.DefaultConfiguration().Presentation)
	c.Assert(err, qt.IsNil)
	layout, err := NewRenderTargetLayout(dev, chain.Formats())
	c.Assert(err, qt.IsNil)
	frames, err := NewFrameBufferSet(dev, chain, layout)
	c.Assert(err, qt.IsNil)
	rec, err := NewCommandRecorder(dev)
	c.Assert(err, qt.IsNil)

	f := &recorderFixture{
		drv:    drv,
		chain:  chain,
		layout: layout,
		frames: frames,
		scene:  &testScene{dev: dev},
		rec:    rec,
	}
	return f, func() {
		rec.Release()
		frames.Release()
		layout.Release()
		chain.Release()
		releaseDevice()
	}
}

func TestRecordAllMatchesFramebuffers(t *testing.T) {
	c := qt.New(t)
	f, release := newRecorderFixture(c)

	buffers, err := f.rec.RecordAll(f.frames, f.layout, f.chain.Extent(), DefaultClearValues, f.scene)
	c.Assert(err, qt.IsNil)
	c.Assert(buffers, qt.HasLen, f.frames.Len())
	c.Assert(f.rec.Len(), qt.Equals, f.frames.Len())

	for i := 0; i < 5; i++ {
		buffers, err = f.rec.RecordAll(f.frames, f.layout, f.chain.Extent(), DefaultClearValues, f.scene)
		c.Assert(err, qt.IsNil)
		c.Assert(buffers, qt.HasLen, f.frames.Len())
		c.Assert(f.drv.LiveOf("command buffer"), qt.Equals, f.frames.Len())
	}
	c.Assert(f.drv.Created("command buffer"), qt.Equals, 6*f.frames.Len())

	release()
	c.Assert(f.drv.Live(), qt.Equals, 0)
	c.Assert(f.drv.Faults(), qt.HasLen, 0)
}

func TestRecordAllFailureFreesBuffers(t *testing.T) {
	c := qt.New(t)
	f, release := newRecorderFixture(c)
	defer release()

	_, err := f.rec.RecordAll(f.frames, f.layout, f.chain.Extent(), DefaultClearValues, f.scene)
	c.Assert(err, qt.IsNil)

	f.drv.FailOn("BeginCommandBuffer", errors.New("out of host memory"))
	_, err = f.rec.RecordAll(f.frames, f.layout, f.chain.Extent(), DefaultClearValues, f.scene)
	c.Assert(err, qt.ErrorMatches, "begin command buffer 0: out of host memory")
	c.Assert(f.rec.Len(), qt.Equals, 0)
	c.Assert(f.drv.LiveOf("command buffer"), qt.Equals, 0)
}

func TestRenderTargetLayoutBegin(t *testing.T) {
	c := qt.New(t)
	f, release := newRecorderFixture(c)
	defer release()

	clear := ClearValues{Color: [4]float32{1, 0, 0, 1}, Depth: 0.5, Stencil: 7}
	buffers, err := f.rec.RecordAll(f.frames, f.layout, f.chain.Extent(), clear, f.scene)
	c.Assert(err, qt.IsNil)

	rec := f.drv.Recording(buffers[1])
	c.Assert(rec.Clear, qt.DeepEquals, []gfx.ClearValue{
		{Color: [4]float32{1, 0, 0, 1}},
		{Depth: 0.5, Stencil: 7},
	})
	c.Assert(f.layout.Formats(), qt.Equals, f.chain.Formats())
}

func BenchmarkRecordAll(b *testing.B) {
	c := qt.New(b)
	f, release := newRecorderFixture(c)
	defer release()
	for i := 0; i < b.N; i++ {
		if _, err := f.rec.RecordAll(f.frames, f.layout, f.chain.Extent(), DefaultClearValues, f.scene); err != nil {
			b.Fatal(err)
		}
	}
}
