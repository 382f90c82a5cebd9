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

func newTestChain(c *qt.C, spec gfxtest.AdapterSpec, size gfx.Extent2D, cfg core.PresentationConfiguration) (*gfxtest.Driver, *PresentationChain, func()) {
	drv := gfxtest.NewDriver(spec)
	win := gfxtest.NewWindow(size.Width, size.Height)
	dev, surface, release := testDevice(c, drv, win, core.DefaultConfiguration().Device)
	chain, err := NewPresentationChain(dev, surface, size, cfg)
	c.Assert(err, qt.IsNil)
	return drv, chain, func() {
		chain.Release()
		release()
	}
}

func TestPresentationChainFullHD(t *testing.T) {
	c := qt.New(t)
	drv, chain, release := newTestChain(c, gfxtest.DefaultAdapter(), gfx.Extent2D{Width: 1920, Height: 1080}, core.DefaultConfiguration().Presentation)

	c.Assert(chain.Extent(), qt.Equals, gfx.Extent2D{Width: 1920, Height: 1080})
	c.Assert(chain.Len(), qt.Equals, 3)
	c.Assert(chain.PresentMode(), qt.Equals, gfx.PresentModeMailbox)
	c.Assert(chain.Formats(), qt.Equals, ChainFormats{Color: gfx.FormatB8G8R8A8Unorm, Depth: gfx.FormatD32Sfloat})
	c.Assert(drv.LiveOf("image view"), qt.Equals, 4)
	c.Assert(drv.LiveOf("image"), qt.Equals, 1)

	release()
	c.Assert(drv.Live(), qt.Equals, 0)
	c.Assert(drv.Faults(), qt.HasLen, 0)
}

func TestPresentationChainFallbacks(t *testing.T) {
	c := qt.New(t)
	spec := gfxtest.DefaultAdapter()
	spec.Surface.PresentModes = []gfx.PresentMode{gfx.PresentModeFifo, gfx.PresentModeImmediate}
	spec.Surface.Capabilities.MinImageCount = 3
	spec.Surface.Capabilities.MaxImageCount = 0
	spec.Surface.Capabilities.MaxImageExtent = gfx.Extent2D{Width: 1280, Height: 1024}
	spec.DepthFormats = []gfx.Format{gfx.FormatD16Unorm}

	_, chain, release := newTestChain(c, spec, gfx.Extent2D{Width: 1920, Height: 1080}, core.DefaultConfiguration().Presentation)
	defer release()

	c.Assert(chain.PresentMode(), qt.Equals, gfx.PresentModeFifo)
	c.Assert(chain.Len(), qt.Equals, 4)
	c.Assert(chain.Extent(), qt.Equals, gfx.Extent2D{Width: 1280, Height: 1024})
	c.Assert(chain.Formats().Depth, qt.Equals, gfx.FormatD16Unorm)
}

func TestPresentationChainRecreate(t *testing.T) {
	c := qt.New(t)
	drv, chain, release := newTestChain(c, gfxtest.DefaultAdapter(), gfx.Extent2D{Width: 1920, Height: 1080}, core.DefaultConfiguration().Presentation)

	next, err := chain.Recreate(gfx.Extent2D{Width: 1024, Height: 768})
	c.Assert(err, qt.IsNil)
	c.Assert(next.Extent(), qt.Equals, gfx.Extent2D{Width: 1024, Height: 768})
	c.Assert(drv.LiveOf("swapchain"), qt.Equals, 1)
	c.Assert(drv.Created("swapchain"), qt.Equals, 2)

	_, err = next.Recreate(gfx.Extent2D{})
	c.Assert(errors.Is(err, ErrWindowMinimized), qt.Equals, true)
	c.Assert(drv.LiveOf("swapchain"), qt.Equals, 1)

	next.Release()
	release()
	c.Assert(drv.Live(), qt.Equals, 0)
	c.Assert(drv.Faults(), qt.HasLen, 0)
}

func TestPresentationChainAcquireTimeout(t *testing.T) {
	c := qt.New(t)
	drv, chain, release := newTestChain(c, gfxtest.DefaultAdapter(), gfx.Extent2D{Width: 1920, Height: 1080}, core.DefaultConfiguration().Presentation)
	defer release()

	sem, err := drv.CreateSemaphore(chain.dev.Handle())
	c.Assert(err, qt.IsNil)
	defer drv.DestroySemaphore(chain.dev.Handle(), sem)

	drv.AcquireResults = []error{errors.Wrap(gfx.ErrTimeout, "vk.AcquireNextImage()")}
	_, err = chain.AcquireNextImage(sem)
	c.Assert(errors.Is(err, gfx.ErrTimeout), qt.Equals, true)
	c.Assert(IsRecoverable(err), qt.Equals, false)

	idx, err := chain.AcquireNextImage(sem)
	c.Assert(err, qt.IsNil)
	c.Assert(idx, qt.Equals, uint32(0))
}

func TestPresentationChainNoDepthFormat(t *testing.T) {
	c := qt.New(t)
	spec := gfxtest.DefaultAdapter()
	spec.DepthFormats = nil
	drv := gfxtest.NewDriver(spec)
	win := gfxtest.NewWindow(1920, 1080)

	inst, _ := drv.CreateInstance(gfx.InstanceInfo{})
	surf, _ := drv.ImportSurface(inst, 1)
	dev, err := SelectDevice(drv, inst, surf, win, core.DefaultConfiguration().Device)
	c.Assert(err, qt.IsNil)

	_, err = NewPresentationChain(dev, surf, gfx.Extent2D{Width: 1920, Height: 1080}, core.DefaultConfiguration().Presentation)
	c.Assert(err, qt.ErrorMatches, "no supported depth format")
	c.Assert(drv.LiveOf("swapchain"), qt.Equals, 0)

	dev.Release()
	drv.DestroySurface(inst, surf)
	drv.DestroyInstance(inst)
	c.Assert(drv.Live(), qt.Equals, 0)
}
