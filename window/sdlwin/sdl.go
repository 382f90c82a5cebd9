// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package sdlwin is an SDL2 window for the renderer.
package sdlwin

import (
	"unsafe"

	"github.com/devblok/vista/core"
	"github.com/devblok/vista/window"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

// Window is a resizable SDL window with a Vulkan surface.
type Window struct {
	window.Base

	cfg         core.WindowConfiguration
	window      *sdl.Window
	shouldClose bool
}

// New returns a window that is opened by Create.
func New(cfg core.WindowConfiguration) *Window {
	return &Window{cfg: cfg}
}

// Create initialises SDL, loads the Vulkan library and opens the window.
func (w *Window) Create() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrap(err, "sdl.Init()")
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}

	win, err := sdl.CreateWindow(w.cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(w.cfg.Width),
		int32(w.cfg.Height),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.VulkanUnloadLibrary()
		sdl.Quit()
		return errors.Wrap(err, "sdl.CreateWindow()")
	}
	w.window = win
	return nil
}

// RequiredExtensions lists the instance extensions SDL needs for surfaces.
func (w *Window) RequiredExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// ProcAddr is the loader entry point SDL loaded.
func (w *Window) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// CreateSurface creates a surface for instance, a vk.Instance.
func (w *Window) CreateSurface(instance interface{}) (uintptr, error) {
	srf, err := w.window.VulkanCreateSurface(instance)
	if err != nil {
		return 0, errors.Wrap(err, "sdl.VulkanCreateSurface()")
	}
	return uintptr(srf), nil
}

// Poll drains the event queue.
func (w *Window) Poll() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch et := event.(type) {
		case *sdl.KeyboardEvent:
			if et.Keysym.Sym == sdl.K_ESCAPE {
				w.shouldClose = true
			}
		case *sdl.QuitEvent:
			w.shouldClose = true
		case *sdl.WindowEvent:
			switch et.Event {
			case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED,
				sdl.WINDOWEVENT_MINIMIZED, sdl.WINDOWEVENT_RESTORED:
				w.MarkResized()
			}
		}
	}
}

// ShouldClose reports whether the user asked to close the window.
func (w *Window) ShouldClose() bool {
	return w.shouldClose
}

// DrawableSize is the size of the surface in pixels.
func (w *Window) DrawableSize() (uint32, uint32) {
	if w.window == nil {
		return 0, 0
	}
	if w.window.GetFlags()&sdl.WINDOW_MINIMIZED != 0 {
		return 0, 0
	}
	width, height := w.window.VulkanGetDrawableSize()
	return uint32(width), uint32(height)
}

// Alert shows a blocking error box.
func (w *Window) Alert(title, message string) {
	if err := sdl.ShowSimpleMessageBox(sdl.MESSAGEBOX_ERROR, title, message, w.window); err != nil {
		log.WithError(err).Warn("failed to show message box")
	}
}

// ShutDown closes the window and releases SDL.
func (w *Window) ShutDown() {
	if w.window == nil {
		return
	}
	if err := w.window.Destroy(); err != nil {
		log.WithError(err).Warn("failed to destroy window")
	}
	w.window = nil
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}
