// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/devblok/vista/gfx"
)

func TestCreateFullHD(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()

	c.Assert(r.Create(), qt.IsNil)
	defer r.ShutDown()

	c.Assert(r.State(), qt.Equals, Created)
	c.Assert(r.Extent(), qt.Equals, gfx.Extent2D{Width: 1920, Height: 1080})
	c.Assert(r.Chain().Len(), qt.Equals, 3)
	c.Assert(r.Chain().PresentMode(), qt.Equals, gfx.PresentModeMailbox)
	c.Assert(r.CommandBuffers(), qt.HasLen, r.frames.Len())
	c.Assert(rig.scene.extent, qt.Equals, r.Extent())
	c.Assert(rig.scene.allocs, qt.Equals, 1)

	for _, cb := range r.CommandBuffers() {
		rec := rig.drv.Recording(cb)
		c.Assert(rec, qt.Not(qt.IsNil))
		c.Assert(rec.Ended, qt.Equals, true)
		c.Assert(rec.Usage, qt.Equals, gfx.UsageSimultaneousUse)
		c.Assert(rec.Commands, qt.DeepEquals, []string{"BeginRenderPass", "Draw(3,1)", "EndRenderPass"})
		c.Assert(rec.Clear, qt.DeepEquals, []gfx.ClearValue{
			{Color: [4]float32{0.3, 0.5, 0.5, 1}},
			{Depth: 1},
		})
	}
	c.Assert(rig.drv.Faults(), qt.HasLen, 0)
}

func TestShutDownReleasesEverything(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	rig.cfg.Debug = true
	r := rig.renderer()

	c.Assert(r.Create(), qt.IsNil)
	c.Assert(rig.drv.LiveOf("debug callback"), qt.Equals, 1)
	c.Assert(r.Run(0.016), qt.IsNil)

	r.ShutDown()
	c.Assert(r.State(), qt.Equals, Destroyed)
	c.Assert(rig.drv.LiveKinds(), qt.HasLen, 0)
	c.Assert(rig.drv.Faults(), qt.HasLen, 0)
	c.Assert(rig.win.ShutDowns, qt.Equals, 1)
	c.Assert(rig.scene.shutdowns, qt.Equals, 1)

	calls := len(rig.drv.Calls())
	r.ShutDown()
	c.Assert(rig.drv.Calls(), qt.HasLen, calls)
	c.Assert(rig.win.ShutDowns, qt.Equals, 1)
}

func TestShutDownOrder(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	rig.cfg.Debug = true
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	before := len(rig.drv.Calls())
	r.ShutDown()

	calls := rig.drv.Calls()[before:]
	c.Assert(calls[0], qt.Equals, "DeviceWaitIdle")
	order := []string{
		"FreeCommandBuffers",
		"DestroyBuffer",
		"DestroyFence",
		"DestroySemaphore",
		"DestroyFramebuffer",
		"DestroyRenderPass",
		"DestroySwapchain",
		"DestroyCommandPool",
		"DestroyDevice",
		"DestroyDebugCallback",
		"DestroySurface",
		"DestroyInstance",
	}
	prev := -1
	for _, name := range order {
		idx := lastIndex(calls, name)
		c.Assert(idx > prev, qt.Equals, true, qt.Commentf("%s out of order in %v", name, calls))
		prev = idx
	}
}

func TestCreateWithoutAdapters(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	rig.drv.Specs = nil
	r := rig.renderer()

	err := r.Create()
	var fatal *FatalSetupError
	c.Assert(errors.As(err, &fatal), qt.Equals, true)
	c.Assert(fatal.Stage, qt.Equals, "device")
	c.Assert(errors.Is(err, ErrNoSuitableDevice), qt.Equals, true)
	c.Assert(IsRecoverable(err), qt.Equals, false)
	c.Assert(rig.drv.Live(), qt.Equals, 0)
	c.Assert(rig.win.ShutDowns, qt.Equals, 1)
	c.Assert(r.State(), qt.Equals, Destroyed)

	r.ShutDown()
	c.Assert(rig.win.ShutDowns, qt.Equals, 1)
}

func TestCreateFailureUnwinds(t *testing.T) {
	stages := map[string]string{
		"CreateInstance":         "instance",
		"ImportSurface":          "surface",
		"CreateDevice":           "device",
		"CreateCommandPool":      "device",
		"CreateSwapchain":        "presentation chain",
		"CreateImage":            "presentation chain",
		"CreateRenderPass":       "render target layout",
		"CreateFramebuffer":      "frame buffers",
		"CreateFence":            "synchronization",
		"CreateBuffer":           "scene",
		"AllocateCommandBuffers": "command buffers",
		"EndCommandBuffer":       "command buffers",
	}
	for method, stage := range stages {
		method, stage := method, stage
		t.Run(method, func(t *testing.T) {
			c := qt.New(t)
			rig := newRig()
			rig.drv.FailOn(method, errors.New("injected"))
			r := rig.renderer()

			err := r.Create()
			var fatal *FatalSetupError
			c.Assert(errors.As(err, &fatal), qt.Equals, true)
			c.Assert(fatal.Stage, qt.Equals, stage)
			c.Assert(err, qt.ErrorMatches, ".*injected")
			c.Assert(rig.drv.LiveKinds(), qt.HasLen, 0)
			c.Assert(rig.drv.Faults(), qt.HasLen, 0)
		})
	}
}

func TestCreateMissingValidationLayer(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	rig.cfg.Debug = true
	rig.drv.Layers = nil
	r := rig.renderer()

	err := r.Create()
	c.Assert(errors.Is(err, ErrMissingLayers), qt.Equals, true)
	c.Assert(rig.drv.Live(), qt.Equals, 0)
}

func TestCreateMissingInstanceExtension(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	rig.win.Extensions = append(rig.win.Extensions, "VK_KHR_wayland_surface")
	r := rig.renderer()

	err := r.Create()
	c.Assert(errors.Is(err, ErrMissingExtensions), qt.Equals, true)
	c.Assert(err, qt.ErrorMatches, ".*VK_KHR_wayland_surface.*")
}

func TestCreateTwice(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	defer r.ShutDown()
	c.Assert(errors.Is(r.Create(), ErrInvalidState), qt.Equals, true)
}

func TestRunBeforeCreate(t *testing.T) {
	c := qt.New(t)
	r := newRig().renderer()
	c.Assert(errors.Is(r.Run(0), ErrInvalidState), qt.Equals, true)
}

func TestRunSubmitsAndPresents(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	defer r.ShutDown()

	for i := 0; i < 5; i++ {
		c.Assert(r.Run(0.016), qt.IsNil)
	}
	c.Assert(r.State(), qt.Equals, Running)
	c.Assert(r.Frames(), qt.Equals, uint64(5))
	c.Assert(rig.win.Polls, qt.Equals, 5)
	c.Assert(rig.scene.updates, qt.Equals, 6)

	submits := rig.drv.Submits()
	c.Assert(submits, qt.HasLen, 5)
	c.Assert(submits[0].WaitSemaphores, qt.DeepEquals, []gfx.Semaphore{r.sync.ImageReady})
	c.Assert(submits[0].WaitStages, qt.DeepEquals, []gfx.PipelineStage{gfx.StageColorAttachmentOutput})
	c.Assert(submits[0].SignalSemaphores, qt.DeepEquals, []gfx.Semaphore{r.sync.RenderingComplete})
	c.Assert(submits[3].CommandBuffers, qt.DeepEquals, []gfx.CommandBuffer{r.CommandBuffers()[0]})
	c.Assert(rig.drv.Count("QueuePresent"), qt.Equals, 5)
	c.Assert(rig.drv.Count("WaitForFence"), qt.Equals, 5)
	c.Assert(rig.drv.Faults(), qt.HasLen, 0)
}

func TestAcquireOutOfDateRebuilds(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	defer r.ShutDown()

	rig.drv.AcquireResults = []error{errors.Wrap(gfx.ErrSurfaceOutOfDate, "vk.AcquireNextImage()")}
	err := r.Run(0.016)
	c.Assert(gfx.IsOutOfDate(err), qt.Equals, true)
	c.Assert(IsRecoverable(err), qt.Equals, true)
	c.Assert(rig.drv.Submits(), qt.HasLen, 0)

	c.Assert(r.Run(0.016), qt.IsNil)
	c.Assert(rig.drv.Created("swapchain"), qt.Equals, 2)
	c.Assert(rig.drv.Created("framebuffer"), qt.Equals, 6)
	c.Assert(rig.drv.Created("device"), qt.Equals, 1)
	c.Assert(rig.drv.Created("instance"), qt.Equals, 1)
	c.Assert(rig.drv.Created("render pass"), qt.Equals, 1)
	c.Assert(rig.drv.LiveOf("swapchain"), qt.Equals, 1)
	c.Assert(rig.drv.LiveOf("framebuffer"), qt.Equals, 3)
	c.Assert(rig.drv.LiveOf("command buffer"), qt.Equals, 3)
	c.Assert(rig.drv.Submits(), qt.HasLen, 1)
	c.Assert(rig.scene.allocs, qt.Equals, 2)
	c.Assert(rig.drv.Faults(), qt.HasLen, 0)
}

func TestPresentOutOfDateRebuilds(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	defer r.ShutDown()

	rig.drv.PresentResults = []error{errors.Wrap(gfx.ErrSurfaceOutOfDate, "vk.QueuePresent()")}
	c.Assert(IsRecoverable(r.Run(0.016)), qt.Equals, true)
	c.Assert(r.Run(0.016), qt.IsNil)
	c.Assert(rig.drv.Created("swapchain"), qt.Equals, 2)
	c.Assert(rig.drv.Created("device"), qt.Equals, 1)
}

func TestPresentSuboptimalRebuildsNextFrame(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	defer r.ShutDown()

	rig.drv.PresentResults = []error{errors.Wrap(gfx.ErrSuboptimal, "vk.QueuePresent()")}
	c.Assert(r.Run(0.016), qt.IsNil)
	c.Assert(rig.drv.Created("swapchain"), qt.Equals, 1)
	c.Assert(r.Run(0.016), qt.IsNil)
	c.Assert(rig.drv.Created("swapchain"), qt.Equals, 2)
}

func TestPresentFailure(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	defer r.ShutDown()

	rig.drv.PresentResults = []error{gfx.NewCallError("vk.QueuePresent()", -4)}
	err := r.Run(0.016)
	var call *gfx.CallError
	c.Assert(errors.As(err, &call), qt.Equals, true)
	c.Assert(call.Result, qt.Equals, int32(-4))
	c.Assert(IsRecoverable(err), qt.Equals, false)
}

func TestResizeRebuilds(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	defer r.ShutDown()

	rig.win.Resize(800, 600)
	c.Assert(r.Run(0.016), qt.IsNil)
	c.Assert(r.Extent(), qt.Equals, gfx.Extent2D{Width: 800, Height: 600})
	c.Assert(rig.drv.SwapchainExtent(r.Chain().swapchain), qt.Equals, gfx.Extent2D{Width: 800, Height: 600})
	c.Assert(rig.scene.extent, qt.Equals, gfx.Extent2D{Width: 800, Height: 600})
	c.Assert(rig.drv.Created("device"), qt.Equals, 1)
}

func TestMinimizedSkipsFrames(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	defer r.ShutDown()

	rig.win.Resize(0, 0)
	err := r.Run(0.016)
	c.Assert(errors.Is(err, ErrWindowMinimized), qt.Equals, true)
	c.Assert(IsRecoverable(err), qt.Equals, true)
	c.Assert(errors.Is(r.Run(0.016), ErrWindowMinimized), qt.Equals, true)
	c.Assert(rig.drv.Created("swapchain"), qt.Equals, 1)

	rig.win.Resize(640, 480)
	c.Assert(r.Run(0.016), qt.IsNil)
	c.Assert(r.Extent(), qt.Equals, gfx.Extent2D{Width: 640, Height: 480})
}

func TestSurfaceFormatChangeRecreatesLayout(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	defer r.ShutDown()

	rig.drv.Specs[0].Surface.Formats = []gfx.SurfaceFormat{{Format: gfx.FormatB8G8R8A8Srgb}}
	c.Assert(r.Rebuild(), qt.IsNil)
	c.Assert(r.layout.Formats().Color, qt.Equals, gfx.FormatB8G8R8A8Srgb)
	c.Assert(rig.drv.Created("render pass"), qt.Equals, 2)
	c.Assert(rig.drv.LiveOf("render pass"), qt.Equals, 1)
	c.Assert(rig.scene.creates, qt.Equals, 2)
	c.Assert(rig.drv.LiveOf("buffer"), qt.Equals, 1)
}

func TestFormatChangeRenderPassFailureKeepsLayout(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	defer func() {
		r.ShutDown()
		c.Assert(rig.drv.LiveKinds(), qt.HasLen, 0)
	}()
	old := r.layout.Formats()

	rig.drv.Specs[0].Surface.Formats = []gfx.SurfaceFormat{{Format: gfx.FormatB8G8R8A8Srgb}}
	rig.drv.FailOn("CreateRenderPass", errors.New("injected"))
	c.Assert(r.Rebuild(), qt.ErrorMatches, "recreate render target layout: .*injected")
	c.Assert(r.layout, qt.Not(qt.IsNil))
	c.Assert(r.layout.Formats(), qt.Equals, old)
	c.Assert(r.sceneLive, qt.Equals, true)
	c.Assert(rig.drv.LiveOf("render pass"), qt.Equals, 1)

	c.Assert(r.Run(0.016), qt.ErrorMatches, ".*injected")
	c.Assert(rig.drv.Submits(), qt.HasLen, 0)

	rig.drv.FailOn("CreateRenderPass", nil)
	c.Assert(r.Rebuild(), qt.IsNil)
	c.Assert(r.layout.Formats().Color, qt.Equals, gfx.FormatB8G8R8A8Srgb)
	c.Assert(rig.drv.LiveOf("render pass"), qt.Equals, 1)
	c.Assert(rig.scene.creates, qt.Equals, 2)
	c.Assert(rig.scene.shutdowns, qt.Equals, 1)
	c.Assert(r.Run(0.016), qt.IsNil)
	c.Assert(rig.drv.Faults(), qt.HasLen, 0)
}

func TestFormatChangeSceneFailureRetries(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	defer func() {
		r.ShutDown()
		c.Assert(rig.drv.LiveKinds(), qt.HasLen, 0)
		c.Assert(rig.scene.shutdowns, qt.Equals, 2)
	}()

	rig.drv.Specs[0].Surface.Formats = []gfx.SurfaceFormat{{Format: gfx.FormatB8G8R8A8Srgb}}
	rig.scene.createErr = errors.New("injected")
	c.Assert(r.Rebuild(), qt.ErrorMatches, "recreate scene: injected")
	c.Assert(r.sceneLive, qt.Equals, false)
	updates := rig.scene.updates

	c.Assert(r.Run(0.016), qt.ErrorMatches, "recreate scene: injected")
	c.Assert(rig.scene.updates, qt.Equals, updates)
	c.Assert(rig.drv.Submits(), qt.HasLen, 0)

	rig.scene.createErr = nil
	c.Assert(r.Run(0.016), qt.IsNil)
	c.Assert(rig.scene.creates, qt.Equals, 2)
	c.Assert(r.sceneLive, qt.Equals, true)
	c.Assert(rig.drv.Submits(), qt.HasLen, 1)
}

func TestRebuildFailureStaysStale(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	defer func() {
		r.ShutDown()
		c.Assert(rig.drv.LiveKinds(), qt.HasLen, 0)
	}()
	created := rig.drv.Created("framebuffer")

	rig.drv.FailOn("CreateFramebuffer", errors.New("injected"))
	c.Assert(r.Rebuild(), qt.ErrorMatches, ".*injected")
	c.Assert(r.stale, qt.Equals, true)
	c.Assert(rig.drv.LiveOf("framebuffer"), qt.Equals, 0)

	c.Assert(r.Run(0.016), qt.ErrorMatches, ".*injected")
	c.Assert(rig.drv.Submits(), qt.HasLen, 0)

	rig.drv.FailOn("CreateFramebuffer", nil)
	c.Assert(r.Run(0.016), qt.IsNil)
	c.Assert(r.stale, qt.Equals, false)
	c.Assert(rig.drv.Created("framebuffer") > created, qt.Equals, true)
	c.Assert(rig.drv.LiveOf("framebuffer"), qt.Equals, r.Chain().Len())
	c.Assert(rig.drv.Submits(), qt.HasLen, 1)
	c.Assert(rig.drv.Faults(), qt.HasLen, 0)
}

func TestCreateRejectsOffScreen(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	rig.cfg.Device.OnScreenRequired = false
	r := rig.renderer()

	err := r.Create()
	var fatal *FatalSetupError
	c.Assert(errors.As(err, &fatal), qt.Equals, true)
	c.Assert(fatal.Stage, qt.Equals, "configuration")
	c.Assert(errors.Is(err, ErrOffScreen), qt.Equals, true)
	c.Assert(r.State(), qt.Equals, Destroyed)
	c.Assert(rig.win.Created, qt.Equals, false)
	c.Assert(rig.drv.LiveKinds(), qt.HasLen, 0)
}

func TestShouldStop(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	r := rig.renderer()
	c.Assert(r.ShouldStop(), qt.Equals, false)
	rig.win.Close = true
	c.Assert(r.ShouldStop(), qt.Equals, true)
}

func TestDebugMessagesAreLogged(t *testing.T) {
	c := qt.New(t)
	rig := newRig()
	rig.cfg.Debug = true
	r := rig.renderer()
	c.Assert(r.Create(), qt.IsNil)
	defer r.ShutDown()

	hook := logtest.NewGlobal()
	defer hook.Reset()
	for _, sev := range []gfx.DebugSeverity{
		gfx.SeverityInformation,
		gfx.SeverityWarning,
		gfx.SeverityPerformanceWarning,
		gfx.SeverityError,
		gfx.SeverityDebug,
	} {
		rig.drv.Debug(sev, "validation message")
	}

	var levels []log.Level
	for _, e := range hook.AllEntries() {
		c.Assert(e.Message, qt.Equals, "validation message")
		levels = append(levels, e.Level)
	}
	// debug messages are below the default level
	c.Assert(levels, qt.DeepEquals, []log.Level{log.InfoLevel, log.WarnLevel, log.WarnLevel, log.ErrorLevel})
}

func BenchmarkRun(b *testing.B) {
	rig := newRig()
	r := rig.renderer()
	if err := r.Create(); err != nil {
		b.Fatal(err)
	}
	defer r.ShutDown()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := r.Run(0.016); err != nil {
			b.Fatal(err)
		}
	}
}
