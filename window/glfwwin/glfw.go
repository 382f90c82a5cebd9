// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package glfwwin is a GLFW window for the renderer.
package glfwwin

import (
	"unsafe"

	"github.com/devblok/vista/core"
	"github.com/devblok/vista/window"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Window is a resizable GLFW window without a client API.
type Window struct {
	window.Base

	cfg    core.WindowConfiguration
	window *glfw.Window
}

// New returns a window that is opened by Create.
func New(cfg core.WindowConfiguration) *Window {
	return &Window{cfg: cfg}
}

// Create initialises GLFW and opens the window.
func (w *Window) Create() error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "glfw.Init()")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return errors.New("glfw: vulkan not supported")
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.Visible, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(int(w.cfg.Width), int(w.cfg.Height), w.cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "glfw.CreateWindow()")
	}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.MarkResized()
	})
	w.window = win
	return nil
}

// RequiredExtensions lists the instance extensions GLFW needs for surfaces.
func (w *Window) RequiredExtensions() []string {
	return w.window.GetRequiredInstanceExtensions()
}

// ProcAddr is the loader entry point GLFW found.
func (w *Window) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// CreateSurface creates a surface for instance, a vk.Instance.
func (w *Window) CreateSurface(instance interface{}) (uintptr, error) {
	srf, err := w.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return 0, errors.Wrap(err, "glfw.CreateWindowSurface()")
	}
	return srf, nil
}

// Poll processes pending events.
func (w *Window) Poll() {
	glfw.PollEvents()
	if w.window.GetKey(glfw.KeyEscape) == glfw.Press {
		w.window.SetShouldClose(true)
	}
}

// ShouldClose reports whether the user asked to close the window.
func (w *Window) ShouldClose() bool {
	return w.window == nil || w.window.ShouldClose()
}

// DrawableSize is the framebuffer size in pixels.
func (w *Window) DrawableSize() (uint32, uint32) {
	if w.window == nil {
		return 0, 0
	}
	width, height := w.window.GetFramebufferSize()
	return uint32(width), uint32(height)
}

// Alert logs the message, GLFW has no message box.
func (w *Window) Alert(title, message string) {
	log.WithField("title", title).Error(message)
}

// ShutDown closes the window and terminates GLFW.
func (w *Window) ShutDown() {
	if w.window == nil {
		return
	}
	w.window.Destroy()
	w.window = nil
	glfw.Terminate()
}
