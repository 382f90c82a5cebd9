// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/devblok/vista/gfx"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Environment keys understood by LoadEnvironment.
const (
	EnvWidth          = "VISTA_WIDTH"
	EnvHeight         = "VISTA_HEIGHT"
	EnvTitle          = "VISTA_TITLE"
	EnvBackend        = "VISTA_BACKEND"
	EnvDebug          = "VISTA_DEBUG"
	EnvLogLevel       = "VISTA_LOG_LEVEL"
	EnvPresentModes   = "VISTA_PRESENT_MODES"
	EnvAcquireTimeout = "VISTA_ACQUIRE_TIMEOUT"
	EnvFPS            = "VISTA_FPS"
	EnvCompute        = "VISTA_COMPUTE_REQUIRED"
	EnvShaderDir      = "VISTA_SHADER_DIR"
	EnvPipelineCache  = "VISTA_PIPELINE_CACHE"
)

// LoadEnvironment overlays cfg with values from the given .env files and
// the process environment. The process environment wins over the files.
// Missing files are skipped.
func LoadEnvironment(cfg *Configuration, files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			continue
		}
		values, err := godotenv.Read(file)
		if err != nil {
			return errors.Wrapf(err, "godotenv.Read(%s)", file)
		}
		for k, v := range values {
			if _, set := os.LookupEnv(k); !set {
				envy.Set(k, v)
			}
		}
	}
	return overlay(cfg)
}

func overlay(cfg *Configuration) error {
	var err error
	if cfg.Window.Width, err = envUint32(EnvWidth, cfg.Window.Width); err != nil {
		return err
	}
	if cfg.Window.Height, err = envUint32(EnvHeight, cfg.Window.Height); err != nil {
		return err
	}
	cfg.Window.Title = envy.Get(EnvTitle, cfg.Window.Title)
	cfg.Window.Backend = envy.Get(EnvBackend, cfg.Window.Backend)
	cfg.LogLevel = envy.Get(EnvLogLevel, cfg.LogLevel)
	cfg.Scene.ShaderDirectory = envy.Get(EnvShaderDir, cfg.Scene.ShaderDirectory)
	cfg.Scene.PipelineCachePath = envy.Get(EnvPipelineCache, cfg.Scene.PipelineCachePath)

	if cfg.Debug, err = envBool(EnvDebug, cfg.Debug); err != nil {
		return err
	}
	if cfg.Device.ComputeRequired, err = envBool(EnvCompute, cfg.Device.ComputeRequired); err != nil {
		return err
	}

	if v := envy.Get(EnvFPS, ""); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvFPS)
		}
		cfg.Time.FramesPerSecond = fps
	}

	if v := envy.Get(EnvAcquireTimeout, ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvAcquireTimeout)
		}
		cfg.Presentation.AcquireTimeout = d
	}

	if v := envy.Get(EnvPresentModes, ""); v != "" {
		modes, err := ParsePresentModes(v)
		if err != nil {
			return err
		}
		cfg.Presentation.PresentModes = modes
	}
	return nil
}

// ParsePresentModes parses a comma separated list of present mode names.
func ParsePresentModes(list string) ([]gfx.PresentMode, error) {
	var modes []gfx.PresentMode
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		mode, ok := gfx.ParsePresentMode(name)
		if !ok {
			return nil, errors.Errorf("unknown present mode %q", name)
		}
		modes = append(modes, mode)
	}
	return modes, nil
}

func envUint32(key string, def uint32) (uint32, error) {
	v := envy.Get(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return def, errors.Wrapf(err, "%s", key)
	}
	return uint32(n), nil
}

func envBool(key string, def bool) (bool, error) {
	v := envy.Get(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, errors.Wrapf(err, "%s", key)
	}
	return b, nil
}
