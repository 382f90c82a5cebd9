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

func adapterNamed(name string) gfxtest.AdapterSpec {
	a := gfxtest.DefaultAdapter()
	a.Info.Name = name
	return a
}

func TestSelectDeviceFirstSuitableWins(t *testing.T) {
	c := qt.New(t)

	noPresent := adapterNamed("headless")
	noPresent.PresentFamilies = nil
	noSwapchain := adapterNamed("no swapchain")
	noSwapchain.Extensions = nil
	noModes := adapterNamed("no modes")
	noModes.Surface.PresentModes = nil

	drv := gfxtest.NewDriver(noPresent, noSwapchain, noModes, adapterNamed("first"), adapterNamed("second"))
	win := gfxtest.NewWindow(1920, 1080)

	dev, _, release := testDevice(c, drv, win, core.DefaultConfiguration().Device)
	defer release()

	c.Assert(dev.Info().Name, qt.Equals, "first")
	c.Assert(drv.Created("device"), qt.Equals, 1)

	details, ok := win.SurfaceSettings(dev.Adapter())
	c.Assert(ok, qt.Equals, true)
	c.Assert(details.Capabilities.MaxImageCount, qt.Equals, uint32(8))
}

func TestSelectDeviceNoneSuitable(t *testing.T) {
	c := qt.New(t)
	a := adapterNamed("integrated")
	a.Extensions = []string{"VK_KHR_maintenance1"}
	drv := gfxtest.NewDriver(a)
	win := gfxtest.NewWindow(1920, 1080)

	inst, _ := drv.CreateInstance(gfx.InstanceInfo{})
	surf, _ := drv.ImportSurface(inst, 1)
	_, err := SelectDevice(drv, inst, surf, win, core.DefaultConfiguration().Device)
	c.Assert(errors.Is(err, ErrNoSuitableDevice), qt.Equals, true)
	c.Assert(drv.LiveOf("device"), qt.Equals, 0)
}

func TestSelectDeviceComputeRequired(t *testing.T) {
	c := qt.New(t)
	graphicsOnly := adapterNamed("graphics only")
	graphicsOnly.Families = []gfx.QueueFamily{{Index: 0, Flags: gfx.QueueGraphics | gfx.QueueTransfer, Count: 1}}
	drv := gfxtest.NewDriver(graphicsOnly, adapterNamed("compute"))
	win := gfxtest.NewWindow(1920, 1080)

	cfg := core.DefaultConfiguration().Device
	cfg.ComputeRequired = true
	dev, _, release := testDevice(c, drv, win, cfg)
	defer release()

	c.Assert(dev.Info().Name, qt.Equals, "compute")
	_, ok := dev.Queue(ComputeQueue)
	c.Assert(ok, qt.Equals, true)
	_, ok = dev.CommandPool(ComputeQueue)
	c.Assert(ok, qt.Equals, true)
}

func TestSelectDeviceSeparateFamilies(t *testing.T) {
	c := qt.New(t)
	a := adapterNamed("split")
	a.Families = []gfx.QueueFamily{
		{Index: 0, Flags: gfx.QueueGraphics, Count: 1},
		{Index: 1, Flags: gfx.QueueTransfer, Count: 2},
		{Index: 2, Flags: gfx.QueueCompute, Count: 1},
	}
	a.PresentFamilies = []uint32{2}
	drv := gfxtest.NewDriver(a)
	win := gfxtest.NewWindow(1920, 1080)

	dev, _, release := testDevice(c, drv, win, core.DefaultConfiguration().Device)
	defer release()

	graphics, _ := dev.Family(GraphicsQueue)
	present, _ := dev.Family(PresentQueue)
	transfer, _ := dev.Family(TransferQueue)
	c.Assert(graphics, qt.Equals, uint32(0))
	c.Assert(present, qt.Equals, uint32(2))
	c.Assert(transfer, qt.Equals, uint32(1))
	c.Assert(drv.LiveOf("command pool"), qt.Equals, 2)
}

func TestSelectDevicePrefersPresentingGraphicsFamily(t *testing.T) {
	c := qt.New(t)
	a := adapterNamed("dual graphics")
	a.Families = []gfx.QueueFamily{
		{Index: 0, Flags: gfx.QueueGraphics | gfx.QueueTransfer, Count: 1},
		{Index: 1, Flags: gfx.QueueGraphics | gfx.QueueTransfer, Count: 1},
	}
	a.PresentFamilies = []uint32{1}
	drv := gfxtest.NewDriver(a)
	win := gfxtest.NewWindow(1920, 1080)

	dev, _, release := testDevice(c, drv, win, core.DefaultConfiguration().Device)
	defer release()

	graphics, _ := dev.Family(GraphicsQueue)
	present, _ := dev.Family(PresentQueue)
	c.Assert(graphics, qt.Equals, uint32(1))
	c.Assert(present, qt.Equals, uint32(1))
}

func TestDeviceRelease(t *testing.T) {
	c := qt.New(t)
	drv := gfxtest.NewDriver()
	win := gfxtest.NewWindow(1920, 1080)
	dev, _, release := testDevice(c, drv, win, core.DefaultConfiguration().Device)

	c.Assert(dev.WaitIdle(), qt.IsNil)
	release()
	dev.Release()
	c.Assert(drv.Live(), qt.Equals, 0)
	c.Assert(drv.Faults(), qt.HasLen, 0)
}
