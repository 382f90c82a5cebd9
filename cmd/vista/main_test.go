// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/vista/core"
	"github.com/devblok/vista/scene"
	"github.com/devblok/vista/window/glfwwin"
	"github.com/devblok/vista/window/sdlwin"
)

func TestNewWindow(t *testing.T) {
	c := qt.New(t)

	cfg := core.DefaultConfiguration().Window
	win, err := newWindow(cfg)
	c.Assert(err, qt.IsNil)
	_, ok := win.(*sdlwin.Window)
	c.Assert(ok, qt.Equals, true)

	cfg.Backend = "glfw"
	win, err = newWindow(cfg)
	c.Assert(err, qt.IsNil)
	_, ok = win.(*glfwwin.Window)
	c.Assert(ok, qt.Equals, true)

	cfg.Backend = "x11"
	_, err = newWindow(cfg)
	c.Assert(err, qt.ErrorMatches, `unknown window backend "x11"`)
}

func TestShaderSource(t *testing.T) {
	c := qt.New(t)

	c.Assert(shaderSource("."), qt.Equals, scene.ShaderSource(scene.DirSource(".")))
	_, ok := shaderSource("does-not-exist").(scene.BoxSource)
	c.Assert(ok, qt.Equals, true)
}
