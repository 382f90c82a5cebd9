// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	qt "github.com/frankban/quicktest"

	"github.com/devblok/vista/core"
	"github.com/devblok/vista/gfx"
	"github.com/devblok/vista/gfx/gfxtest"
)

// testScene draws a triangle and owns one uniform buffer so that
// leak checks cover scene resources too.
type testScene struct {
	dev    *Device
	buffer gfx.Buffer

	createErr error
	creates   int
	updates   int
	allocs    int
	shutdowns int
	extent    gfx.Extent2D
}

func (s *testScene) Create(dev *Device, layout *RenderTargetLayout) error {
	if s.createErr != nil {
		return s.createErr
	}
	buf, err := dev.Driver().CreateBuffer(dev.Handle(), gfx.BufferInfo{Size: 64, Usage: gfx.BufferUsageUniform})
	if err != nil {
		return err
	}
	s.dev, s.buffer = dev, buf
	s.creates++
	return nil
}

func (s *testScene) UpdateUniformData(extent gfx.Extent2D, delta float32) error {
	s.updates++
	s.extent = extent
	return nil
}

func (s *testScene) AllocateDescriptorSets() error {
	s.allocs++
	return nil
}

func (s *testScene) Render(cb gfx.CommandBuffer) {
	s.dev.Driver().CmdDraw(cb, 3, 1, 0, 0)
}

func (s *testScene) ShutDown() {
	if s.buffer != 0 {
		s.dev.Driver().DestroyBuffer(s.dev.Handle(), s.buffer)
		s.buffer = 0
	}
	s.shutdowns++
}

type testRig struct {
	drv   *gfxtest.Driver
	win   *gfxtest.Window
	scene *testScene
	cfg   core.Configuration
}

func newRig() *testRig {
	return &testRig{
		drv:   gfxtest.NewDriver(),
		win:   gfxtest.NewWindow(1920, 1080),
		scene: &testScene{},
		cfg:   core.DefaultConfiguration(),
	}
}

func (rig *testRig) renderer() *Renderer {
	return New(rig.cfg, rig.drv, rig.win, rig.scene)
}

// testDevice creates an instance, a surface and a device straight
// through the driver.
func testDevice(c *qt.C, drv *gfxtest.Driver, win *gfxtest.Window, cfg core.DeviceConfiguration) (*Device, gfx.Surface, func()) {
	inst, err := drv.CreateInstance(gfx.InstanceInfo{})
	c.Assert(err, qt.IsNil)
	surf, err := drv.ImportSurface(inst, 1)
	c.Assert(err, qt.IsNil)
	dev, err := SelectDevice(drv, inst, surf, win, cfg)
	c.Assert(err, qt.IsNil)
	return dev, surf, func() {
		dev.Release()
		drv.DestroySurface(inst, surf)
		drv.DestroyInstance(inst)
	}
}

func lastIndex(calls []string, name string) int {
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i] == name {
			return i
		}
	}
	return -1
}
