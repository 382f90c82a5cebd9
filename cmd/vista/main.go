// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"sync"
	"sync/atomic"
	"time"

	"github.com/devblok/vista/core"
	"github.com/devblok/vista/gfx/vkr"
	"github.com/devblok/vista/renderer"
	"github.com/devblok/vista/scene"
	"github.com/devblok/vista/window"
	"github.com/devblok/vista/window/glfwwin"
	"github.com/devblok/vista/window/sdlwin"
	"github.com/gobuffalo/packr"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func init() {
	runtime.LockOSThread()
}

var frameCounter int64

// Profiling and setup
var (
	envFile      = flag.String("env", ".env", "Environment file overriding the configuration")
	cpuProfile   = flag.String("cpuprof", "", "Profile CPU usage to file")
	memProfile   = flag.String("memprof", "", "Profile memory usage into a file")
	traceProfile = flag.String("trace", "", "Trace output for profiling")
	debug        = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	backend      = flag.String("backend", "", "Window backend, sdl or glfw")
)

func main() {
	flag.Parse()
	os.Exit(start())
}

func start() int {
	configuration := core.DefaultConfiguration()
	if err := core.LoadEnvironment(&configuration, *envFile); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if *debug {
		configuration.Debug = true
	}
	if *backend != "" {
		configuration.Window.Backend = *backend
	}

	level, err := log.ParseLevel(configuration.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("invalid log level")
	}
	log.SetLevel(level)

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.WithError(err).Fatal("cpu profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.WithError(err).Fatal("cpu profile")
		}
		defer pprof.StopCPUProfile()
	}

	if *traceProfile != "" {
		f, err := os.Create(*traceProfile)
		if err != nil {
			log.WithError(err).Fatal("trace")
		}
		if err := trace.Start(f); err != nil {
			log.WithError(err).Fatal("trace")
		}
		defer trace.Stop()
	}

	if err := run(configuration); err != nil {
		log.WithError(err).Error("vista exited")
		return 1
	}

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.WithError(err).Fatal("memory profile")
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.WithError(err).Error("memory profile")
			return 1
		}
	}
	return 0
}

func newWindow(cfg core.WindowConfiguration) (renderer.Window, error) {
	switch window.Backend(cfg.Backend) {
	case window.SDL:
		return sdlwin.New(cfg), nil
	case window.GLFW:
		return glfwwin.New(cfg), nil
	}
	return nil, errors.Errorf("unknown window backend %q", cfg.Backend)
}

// shaderSource prefers the configured directory and falls back to the
// shaders built into the binary.
func shaderSource(dir string) scene.ShaderSource {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return scene.DirSource(dir)
	}
	return scene.BoxSource{Box: packr.NewBox("../../shaders")}
}

func run(configuration core.Configuration) error {
	win, err := newWindow(configuration.Window)
	if err != nil {
		return err
	}

	triangle := scene.NewTriangle(shaderSource(configuration.Scene.ShaderDirectory), configuration.Scene)
	vista := renderer.New(configuration, vkr.New(), win, triangle)
	if err := vista.Create(); err != nil {
		win.Alert("Vista", err.Error())
		return err
	}
	defer vista.ShutDown()

	log.WithFields(log.Fields{
		"device":  vista.Device().Info().Name,
		"extent":  vista.Extent(),
		"present": vista.Chain().PresentMode(),
	}).Info("renderer ready")

	timeService := core.NewTime(configuration.Time)
	defer timeService.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	programSync := sync.WaitGroup{}

	/* Frame counter loop */
	programSync.Add(1)
	go func(ctx context.Context, wg *sync.WaitGroup) {
		defer wg.Done()
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.WithFields(log.Fields{
					"fps":  atomic.SwapInt64(&frameCounter, 0),
					"cgo":  runtime.NumCgoCall(),
					"goal": timeService.Fps(),
				}).Debug("frame count")
			}
		}
	}(ctx, &programSync)
	defer programSync.Wait()
	defer cancel()

	/* Render loop, owns the window and the device */
	for !vista.ShouldStop() {
		select {
		case <-interrupt:
			log.Info("interrupted")
			return nil
		case <-timeService.FpsTicker().C:
			err := vista.Run(timeService.Delta())
			switch {
			case err == nil:
				atomic.AddInt64(&frameCounter, 1)
			case renderer.IsRecoverable(err):
				log.WithError(err).Debug("frame skipped")
			default:
				win.Alert("Vista", err.Error())
				return err
			}
		}
	}
	log.Info("window closed")
	return nil
}
