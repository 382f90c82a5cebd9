// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/devblok/vista/core"
	"github.com/devblok/vista/gfx"
	"github.com/devblok/vista/gfx/vkr"
	log "github.com/sirupsen/logrus"
)

var indent = flag.Bool("indent", false, "Indent the JSON output")

// adapter is everything printed for one physical device.
type adapter struct {
	gfx.AdapterInfo
	TypeName    string            `json:"typeName"`
	Families    []gfx.QueueFamily `json:"queueFamilies"`
	Extensions  []string          `json:"extensions"`
	DepthFormat gfx.Format        `json:"depthFormat,omitempty"`
}

func main() {
	flag.Parse()

	drv := vkr.New()
	if err := drv.Init(nil); err != nil {
		log.WithError(err).Fatal("vulkan loader")
	}

	cfg := core.DefaultConfiguration()
	instance, err := drv.CreateInstance(gfx.InstanceInfo{
		Application: gfx.ApplicationInfo{
			Name:       cfg.Application.Name + " CLI",
			EngineName: cfg.Application.EngineName,
			Version:    cfg.Application.Version,
		},
	})
	if err != nil {
		log.WithError(err).Fatal("create instance")
	}
	defer drv.DestroyInstance(instance)

	handles, err := drv.Adapters(instance)
	if err != nil {
		log.WithError(err).Fatal("enumerate adapters")
	}

	adapters := make([]adapter, 0, len(handles))
	for _, h := range handles {
		info := drv.AdapterInfo(h)
		exts, err := drv.AdapterExtensions(h)
		if err != nil {
			log.WithError(err).WithField("adapter", info.Name).Warn("failed to list extensions")
		}
		a := adapter{
			AdapterInfo: info,
			TypeName:    info.Type.String(),
			Families:    drv.QueueFamilies(h),
			Extensions:  exts,
		}
		if depth, err := gfx.ChooseDepthFormat(gfx.DepthFormatCandidates, func(f gfx.Format) bool {
			return drv.SupportsDepthAttachment(h, f)
		}); err == nil {
			a.DepthFormat = depth
		}
		adapters = append(adapters, a)
	}

	enc := json.NewEncoder(os.Stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(adapters); err != nil {
		log.WithError(err).Fatal("encode")
	}
}
