// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package renderer drives a graphics device: it selects an adapter, manages
// the presentation chain and records and submits frames.
package renderer

import (
	"unsafe"

	"github.com/devblok/vista/core"
	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ValidationLayer is enabled in debug mode.
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// DebugReportExtension is required for the debug callback.
const DebugReportExtension = "VK_EXT_debug_report"

// Window is the platform window the renderer presents to.
type Window interface {
	SurfaceCache

	Create() error
	RequiredExtensions() []string
	ProcAddr() unsafe.Pointer
	CreateSurface(instance interface{}) (uintptr, error)
	Poll()
	ShouldClose() bool
	Resized() bool
	DrawableSize() (uint32, uint32)
	Alert(title, message string)
	ShutDown()
}

// Scene provides what is drawn.
type Scene interface {
	Drawer

	// Create builds the scene's device resources for the given layout.
	Create(dev *Device, layout *RenderTargetLayout) error
	// UpdateUniformData is called once per frame after the previous
	// frame finished executing.
	UpdateUniformData(extent gfx.Extent2D, delta float32) error
	AllocateDescriptorSets() error
	ShutDown()
}

// State is the lifecycle state of a Renderer.
type State int

// Renderer states.
const (
	Uninitialized State = iota
	Created
	Running
	ShuttingDown
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Created:
		return "created"
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting down"
	case Destroyed:
		return "destroyed"
	}
	return "unknown"
}

// Renderer owns every device resource and runs the frame loop.
// It must be driven from a single goroutine.
type Renderer struct {
	cfg    core.Configuration
	drv    gfx.Driver
	win    Window
	scene  Scene
	logger log.FieldLogger

	state     State
	stack     releaseStack
	stale     bool
	sceneLive bool
	frame     uint64

	instance gfx.Instance
	surface  gfx.Surface
	debug    gfx.DebugCallback
	device   *Device
	graphics gfx.Queue
	present  gfx.Queue
	chain    *PresentationChain
	layout   *RenderTargetLayout
	frames   *FrameBufferSet
	sync     *SyncPair
	commands *CommandRecorder
}

// New returns an uninitialized renderer.
func New(cfg core.Configuration, drv gfx.Driver, win Window, scene Scene) *Renderer {
	return &Renderer{
		cfg:    cfg,
		drv:    drv,
		win:    win,
		scene:  scene,
		logger: log.WithField("component", "renderer"),
	}
}

// Create brings up everything needed to render, in order. On failure all
// partial work is released and a *FatalSetupError is returned.
func (r *Renderer) Create() error {
	if r.state != Uninitialized {
		return errors.Wrapf(ErrInvalidState, "create in state %s", r.state)
	}
	if !r.cfg.Device.OnScreenRequired {
		r.state = Destroyed
		return &FatalSetupError{Stage: "configuration", Err: ErrOffScreen}
	}

	steps := []struct {
		stage string
		run   func() error
	}{
		{"window", r.createWindow},
		{"loader", r.initLoader},
		{"instance", r.createInstance},
		{"surface", r.createSurface},
		{"debug callback", r.createDebugCallback},
		{"device", r.selectDevice},
		{"presentation chain", r.createChain},
		{"render target layout", r.createLayout},
		{"frame buffers", r.createFrames},
		{"synchronization", r.createSync},
		{"scene", r.createScene},
		{"descriptor sets", r.allocateDescriptorSets},
		{"command buffers", r.recordCommands},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			r.logger.WithError(err).WithField("stage", step.stage).Error("setup failed")
			r.stack.unwind(r.logger)
			r.state = Destroyed
			return &FatalSetupError{Stage: step.stage, Err: err}
		}
	}

	r.state = Created
	r.logger.WithFields(log.Fields{
		"adapter": r.device.Info().Name,
		"extent":  r.chain.Extent(),
		"images":  r.chain.Len(),
	}).Info("renderer created")
	return nil
}

func (r *Renderer) createWindow() error {
	if err := r.win.Create(); err != nil {
		return err
	}
	r.stack.push("window", r.win.ShutDown)
	return nil
}

func (r *Renderer) initLoader() error {
	return r.drv.Init(r.win.ProcAddr())
}

func (r *Renderer) createInstance() error {
	extensions := append([]string{}, r.win.RequiredExtensions()...)
	var layers []string
	if r.cfg.Debug {
		extensions = append(extensions, DebugReportExtension)
		layers = append(layers, ValidationLayer)
	}

	if len(layers) > 0 {
		available, err := r.drv.InstanceLayers()
		if err != nil {
			return err
		}
		if missing := core.Missing(available, layers); len(missing) > 0 {
			return errors.Wrapf(ErrMissingLayers, "%v", missing)
		}
	}
	available, err := r.drv.InstanceExtensions()
	if err != nil {
		return err
	}
	if missing := core.Missing(available, extensions); len(missing) > 0 {
		return errors.Wrapf(ErrMissingExtensions, "%v", missing)
	}

	r.instance, err = r.drv.CreateInstance(gfx.InstanceInfo{
		Application: gfx.ApplicationInfo{
			Name:       r.cfg.Application.Name,
			EngineName: r.cfg.Application.EngineName,
			Version:    r.cfg.Application.Version,
		},
		Extensions: extensions,
		Layers:     layers,
	})
	if err != nil {
		return err
	}
	r.stack.push("instance", func() {
		r.drv.DestroyInstance(r.instance)
		r.instance = 0
	})
	return nil
}

func (r *Renderer) createSurface() error {
	native, err := r.win.CreateSurface(r.drv.NativeInstance(r.instance))
	if err != nil {
		return errors.Wrap(err, "window surface")
	}
	r.surface, err = r.drv.ImportSurface(r.instance, native)
	if err != nil {
		return err
	}
	r.stack.push("surface", func() {
		r.drv.DestroySurface(r.instance, r.surface)
		r.surface = 0
	})
	return nil
}

func (r *Renderer) createDebugCallback() error {
	if !r.cfg.Debug {
		return nil
	}
	cb, err := r.drv.CreateDebugCallback(r.instance, debugLogger(r.logger))
	if err != nil {
		return err
	}
	r.debug = cb
	r.stack.push("debug callback", func() {
		r.drv.DestroyDebugCallback(r.instance, r.debug)
		r.debug = 0
	})
	return nil
}

func (r *Renderer) selectDevice() error {
	dev, err := SelectDevice(r.drv, r.instance, r.surface, r.win, r.cfg.Device)
	if err != nil {
		return err
	}
	r.device = dev
	r.stack.push("device", func() {
		r.device.Release()
	})

	var ok bool
	if r.graphics, ok = dev.Queue(GraphicsQueue); !ok {
		return errors.Wrap(ErrMissingQueue, GraphicsQueue.String())
	}
	if r.present, ok = dev.Queue(PresentQueue); !ok {
		return errors.Wrap(ErrMissingQueue, PresentQueue.String())
	}
	return nil
}

func (r *Renderer) drawableSize() gfx.Extent2D {
	w, h := r.win.DrawableSize()
	return gfx.Extent2D{Width: w, Height: h}
}

func (r *Renderer) createChain() error {
	chain, err := NewPresentationChain(r.device, r.surface, r.drawableSize(), r.cfg.Presentation)
	if err != nil {
		return err
	}
	r.chain = chain
	r.stack.push("presentation chain", func() {
		r.chain.Release()
	})
	return nil
}

func (r *Renderer) createLayout() error {
	layout, err := NewRenderTargetLayout(r.device, r.chain.Formats())
	if err != nil {
		return err
	}
	r.layout = layout
	r.stack.push("render target layout", func() {
		r.layout.Release()
	})
	return nil
}

func (r *Renderer) createFrames() error {
	frames, err := NewFrameBufferSet(r.device, r.chain, r.layout)
	if err != nil {
		return err
	}
	r.frames = frames
	r.stack.push("frame buffers", func() {
		r.frames.Release()
	})
	return nil
}

func (r *Renderer) createSync() error {
	sp, err := NewSyncPair(r.device)
	if err != nil {
		return err
	}
	r.sync = sp
	r.stack.push("synchronization", func() {
		r.sync.Release()
	})
	return nil
}

func (r *Renderer) createScene() error {
	if err := r.buildScene(); err != nil {
		return err
	}
	r.stack.push("scene", r.shutDownScene)
	return r.scene.UpdateUniformData(r.chain.Extent(), 0)
}

func (r *Renderer) buildScene() error {
	if err := r.scene.Create(r.device, r.layout); err != nil {
		return err
	}
	r.sceneLive = true
	return nil
}

func (r *Renderer) shutDownScene() {
	if !r.sceneLive {
		return
	}
	r.scene.ShutDown()
	r.sceneLive = false
}

func (r *Renderer) allocateDescriptorSets() error {
	return r.scene.AllocateDescriptorSets()
}

func (r *Renderer) recordCommands() error {
	if r.commands == nil {
		rec, err := NewCommandRecorder(r.device)
		if err != nil {
			return err
		}
		r.commands = rec
		r.stack.push("command buffers", func() {
			r.commands.Release()
		})
	}
	_, err := r.commands.RecordAll(r.frames, r.layout, r.chain.Extent(), r.clearValues(), r.scene)
	return err
}

func (r *Renderer) clearValues() ClearValues {
	clear := DefaultClearValues
	if r.cfg.Scene.ClearColor != ([4]float32{}) {
		clear.Color = r.cfg.Scene.ClearColor
	}
	return clear
}

// Run renders one frame. Errors for which IsRecoverable holds mean the
// frame was skipped; the presentation chain is rebuilt on the next call.
func (r *Renderer) Run(delta float32) error {
	switch r.state {
	case Created:
		r.state = Running
	case Running:
	default:
		return errors.Wrapf(ErrInvalidState, "run in state %s", r.state)
	}

	r.win.Poll()
	if r.win.Resized() {
		r.stale = true
	}
	if r.stale {
		if err := r.Rebuild(); err != nil {
			return err
		}
	}

	drv, device := r.drv, r.device.Handle()
	if err := drv.WaitForFence(device, r.sync.InFlight, gfx.NoTimeout); err != nil {
		return errors.Wrap(err, "wait for previous frame")
	}

	if err := r.scene.UpdateUniformData(r.chain.Extent(), delta); err != nil {
		return errors.Wrap(err, "update uniform data")
	}

	index, err := r.chain.AcquireNextImage(r.sync.ImageReady)
	if err != nil {
		if gfx.IsOutOfDate(err) {
			r.stale = true
		}
		return err
	}

	if err := drv.ResetFence(device, r.sync.InFlight); err != nil {
		return errors.Wrap(err, "reset fence")
	}

	if err := drv.QueueSubmit(r.graphics, gfx.SubmitInfo{
		WaitSemaphores:   []gfx.Semaphore{r.sync.ImageReady},
		WaitStages:       []gfx.PipelineStage{gfx.StageColorAttachmentOutput},
		CommandBuffers:   []gfx.CommandBuffer{r.commands.Buffers()[index]},
		SignalSemaphores: []gfx.Semaphore{r.sync.RenderingComplete},
	}, r.sync.InFlight); err != nil {
		return errors.Wrap(err, "submit")
	}

	if err := r.chain.QueuePresent(r.present, index, r.sync.RenderingComplete); err != nil {
		switch {
		case errors.Is(err, gfx.ErrSuboptimal):
			r.stale = true
		case gfx.IsOutOfDate(err):
			r.stale = true
			return err
		default:
			return err
		}
	}
	r.frame++
	return nil
}

// Rebuild recreates the presentation chain and everything sized by it.
// The device and instance are kept. Until a rebuild succeeds the renderer
// stays stale and Run retries it before touching any frame resources.
func (r *Renderer) Rebuild() error {
	if r.state != Created && r.state != Running {
		return errors.Wrapf(ErrInvalidState, "rebuild in state %s", r.state)
	}
	size := r.drawableSize()
	if size.Empty() {
		return ErrWindowMinimized
	}
	r.stale = true
	if err := r.device.WaitIdle(); err != nil {
		return err
	}

	chain, err := r.chain.Recreate(size)
	if err != nil {
		return errors.Wrap(err, "recreate presentation chain")
	}
	r.chain = chain

	// recorded command buffers reference these until re-recorded
	r.frames.Release()
	r.frames = nil

	if r.layout.Formats() != chain.Formats() {
		r.logger.Info("surface formats changed, rebuilding render target layout")
		layout, err := NewRenderTargetLayout(r.device, chain.Formats())
		if err != nil {
			return errors.Wrap(err, "recreate render target layout")
		}
		r.shutDownScene()
		r.layout.Release()
		r.layout = layout
	}
	if !r.sceneLive {
		if err := r.buildScene(); err != nil {
			return errors.Wrap(err, "recreate scene")
		}
	}

	if r.frames, err = NewFrameBufferSet(r.device, r.chain, r.layout); err != nil {
		return err
	}
	if err := r.scene.UpdateUniformData(chain.Extent(), 0); err != nil {
		return err
	}
	if err := r.scene.AllocateDescriptorSets(); err != nil {
		return err
	}
	if err := r.recordCommands(); err != nil {
		return err
	}

	r.stale = false
	r.logger.WithField("extent", chain.Extent()).Debug("presentation chain rebuilt")
	return nil
}

// ShutDown waits for the device to finish and releases everything in the
// reverse order of creation. It is safe to call more than once.
func (r *Renderer) ShutDown() {
	if r.state != Created && r.state != Running {
		return
	}
	r.state = ShuttingDown
	if r.device != nil {
		if err := r.device.WaitIdle(); err != nil {
			r.logger.WithError(err).Warn("device did not go idle")
		}
	}
	r.stack.unwind(r.logger)
	r.state = Destroyed
	r.logger.WithField("frames", r.frame).Info("renderer shut down")
}

// ShouldStop reports whether the window asked to close.
func (r *Renderer) ShouldStop() bool {
	return r.win.ShouldClose()
}

// State returns the lifecycle state.
func (r *Renderer) State() State {
	return r.state
}

// Extent returns the current render size.
func (r *Renderer) Extent() gfx.Extent2D {
	if r.chain == nil {
		return gfx.Extent2D{}
	}
	return r.chain.Extent()
}

// Device returns the selected device, nil before Create.
func (r *Renderer) Device() *Device {
	return r.device
}

// DeviceInfo describes the selected adapter, zero before Create.
func (r *Renderer) DeviceInfo() gfx.AdapterInfo {
	if r.device == nil {
		return gfx.AdapterInfo{}
	}
	return r.device.Info()
}

// Chain returns the current presentation chain.
func (r *Renderer) Chain() *PresentationChain {
	return r.chain
}

// CommandBuffers returns the recorded command buffers.
func (r *Renderer) CommandBuffers() []gfx.CommandBuffer {
	if r.commands == nil {
		return nil
	}
	return r.commands.Buffers()
}

// Frames returns the number of frames presented.
func (r *Renderer) Frames() uint64 {
	return r.frame
}
