// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/envy"

	"github.com/devblok/vista/gfx"
)

func TestDefaultConfiguration(t *testing.T) {
	c := qt.New(t)
	cfg := DefaultConfiguration()
	c.Assert(cfg.Window.Width, qt.Equals, uint32(1920))
	c.Assert(cfg.Window.Height, qt.Equals, uint32(1080))
	c.Assert(cfg.Device.GraphicsRequired, qt.Equals, true)
	c.Assert(cfg.Device.ComputeRequired, qt.Equals, false)
	c.Assert(cfg.Device.OnScreenRequired, qt.Equals, true)
	c.Assert(cfg.Presentation.PresentModes, qt.DeepEquals, []gfx.PresentMode{gfx.PresentModeMailbox})
	c.Assert(cfg.Debug, qt.Equals, false)

	cfg.SetWindowSize(800, 600)
	c.Assert(cfg.Window.Width, qt.Equals, uint32(800))
	c.Assert(cfg.Window.Height, qt.Equals, uint32(600))
	c.Assert(DefaultConfiguration().Window.Width, qt.Equals, uint32(1920))
}

func TestLoadEnvironmentFile(t *testing.T) {
	c := qt.New(t)
	dir, err := ioutil.TempDir("", "vista")
	c.Assert(err, qt.IsNil)
	file := filepath.Join(dir, "test.env")
	c.Assert(ioutil.WriteFile(file, []byte(
		"VISTA_WIDTH=1280\n"+
			"VISTA_HEIGHT=720\n"+
			"VISTA_DEBUG=true\n"+
			"VISTA_PRESENT_MODES=immediate, fifo_relaxed\n"+
			"VISTA_ACQUIRE_TIMEOUT=250ms\n"+
			"VISTA_BACKEND=glfw\n"), 0644), qt.IsNil)

	envy.Temp(func() {
		cfg := DefaultConfiguration()
		c.Assert(LoadEnvironment(&cfg, file, filepath.Join(dir, "missing.env")), qt.IsNil)
		c.Assert(cfg.Window.Width, qt.Equals, uint32(1280))
		c.Assert(cfg.Window.Height, qt.Equals, uint32(720))
		c.Assert(cfg.Debug, qt.Equals, true)
		c.Assert(cfg.Window.Backend, qt.Equals, "glfw")
		c.Assert(cfg.Presentation.AcquireTimeout, qt.Equals, 250*time.Millisecond)
		c.Assert(cfg.Presentation.PresentModes, qt.DeepEquals, []gfx.PresentMode{
			gfx.PresentModeImmediate,
			gfx.PresentModeFifoRelaxed,
		})
	})
}

func TestLoadEnvironmentInvalid(t *testing.T) {
	c := qt.New(t)
	envy.Temp(func() {
		envy.Set(EnvWidth, "wide")
		cfg := DefaultConfiguration()
		c.Assert(LoadEnvironment(&cfg), qt.ErrorMatches, "VISTA_WIDTH: .*")
	})
	envy.Temp(func() {
		envy.Set(EnvPresentModes, "mailbox,vsync")
		cfg := DefaultConfiguration()
		c.Assert(LoadEnvironment(&cfg), qt.ErrorMatches, `unknown present mode "vsync"`)
	})
}
