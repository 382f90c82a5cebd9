// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"time"

	"github.com/devblok/vista/gfx"
)

// Configuration defines the engine configuration. It is built once,
// usually with DefaultConfiguration, and handed to the subsystems.
type Configuration struct {
	Application  ApplicationConfiguration
	Window       WindowConfiguration
	Device       DeviceConfiguration
	Presentation PresentationConfiguration
	Time         TimeConfiguration
	Scene        SceneConfiguration

	// Debug enables validation layers and the debug report callback.
	Debug    bool
	LogLevel string
}

// ApplicationConfiguration names the application to the driver.
type ApplicationConfiguration struct {
	Name       string
	EngineName string
	Version    uint32
}

// WindowConfiguration configures the window.
type WindowConfiguration struct {
	Width   uint32
	Height  uint32
	Title   string
	Backend string
}

// DeviceConfiguration lists what a physical device must support.
type DeviceConfiguration struct {
	GraphicsRequired bool
	ComputeRequired  bool
	OnScreenRequired bool

	// Extensions are required in addition to the swapchain.
	Extensions []string
}

// PresentationConfiguration configures the swapchain.
type PresentationConfiguration struct {
	// PresentModes in order of preference. FIFO is used
	// when none of them is available.
	PresentModes []gfx.PresentMode

	// AcquireTimeout bounds image acquisition, zero waits forever.
	AcquireTimeout time.Duration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the delay between event polls in milliseconds
	EventPollDelay int
}

// SceneConfiguration configures the default scene.
type SceneConfiguration struct {
	ShaderDirectory   string
	PipelineCachePath string
	ClearColor        [4]float32
}

// DefaultConfiguration returns the stock settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		Application: ApplicationConfiguration{
			Name:       "VirtualVista",
			EngineName: "Vista",
			Version:    1,
		},
		Window: WindowConfiguration{
			Width:   1920,
			Height:  1080,
			Title:   "Vista",
			Backend: "sdl",
		},
		Device: DeviceConfiguration{
			GraphicsRequired: true,
			ComputeRequired:  false,
			OnScreenRequired: true,
		},
		Presentation: PresentationConfiguration{
			PresentModes: []gfx.PresentMode{gfx.PresentModeMailbox},
		},
		Time: TimeConfiguration{
			FramesPerSecond: 144,
			EventPollDelay:  10,
		},
		Scene: SceneConfiguration{
			ShaderDirectory:   "./shaders",
			PipelineCachePath: "",
			ClearColor:        [4]float32{0.3, 0.5, 0.5, 1.0},
		},
		LogLevel: "info",
	}
}

// SetWindowSize changes the requested window size.
func (c *Configuration) SetWindowSize(width, height uint32) {
	c.Window.Width = width
	c.Window.Height = height
}
