// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"github.com/devblok/vista/core"
	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ChainFormats are the attachment formats of a presentation chain.
type ChainFormats struct {
	Color gfx.Format
	Depth gfx.Format
}

// PresentationChain owns the swapchain, its image views and the
// depth buffer shared by all framebuffers.
type PresentationChain struct {
	dev     *Device
	surface gfx.Surface
	cfg     core.PresentationConfiguration

	swapchain   gfx.Swapchain
	format      gfx.SurfaceFormat
	depthFormat gfx.Format
	presentMode gfx.PresentMode
	extent      gfx.Extent2D

	images     []gfx.Image
	views      []gfx.ImageView
	depthImage gfx.Image
	depthView  gfx.ImageView
}

// NewPresentationChain creates a swapchain for surface sized as close to
// size as the surface allows.
func NewPresentationChain(dev *Device, surface gfx.Surface, size gfx.Extent2D, cfg core.PresentationConfiguration) (*PresentationChain, error) {
	return buildChain(dev, surface, size, cfg, 0)
}

func buildChain(dev *Device, surface gfx.Surface, size gfx.Extent2D, cfg core.PresentationConfiguration, old gfx.Swapchain) (*PresentationChain, error) {
	if size.Empty() {
		return nil, ErrWindowMinimized
	}
	drv := dev.drv

	details, err := drv.SurfaceDetails(dev.adapter, surface)
	if err != nil {
		return nil, errors.Wrap(err, "query surface")
	}
	format, err := gfx.ChooseSurfaceFormat(details.Formats)
	if err != nil {
		return nil, err
	}
	depthFormat, err := gfx.ChooseDepthFormat(gfx.DepthFormatCandidates, func(f gfx.Format) bool {
		return drv.SupportsDepthAttachment(dev.adapter, f)
	})
	if err != nil {
		return nil, err
	}

	caps := details.Capabilities
	pc := &PresentationChain{
		dev:         dev,
		surface:     surface,
		cfg:         cfg,
		format:      format,
		depthFormat: depthFormat,
		presentMode: gfx.ChoosePresentMode(details.PresentModes, cfg.PresentModes),
		extent:      gfx.ChooseExtent(caps, size.Width, size.Height),
	}

	var families []uint32
	graphics, _ := dev.Family(GraphicsQueue)
	if present, ok := dev.Family(PresentQueue); ok && present != graphics {
		families = []uint32{graphics, present}
	}

	pc.swapchain, err = drv.CreateSwapchain(dev.handle, gfx.SwapchainInfo{
		Surface:        surface,
		MinImageCount:  gfx.ChooseImageCount(caps),
		Format:         format,
		Extent:         pc.extent,
		PresentMode:    pc.presentMode,
		PreTransform:   gfx.ChoosePreTransform(caps),
		CompositeAlpha: gfx.ChooseCompositeAlpha(caps.SupportedCompositeAlpha),
		QueueFamilies:  families,
		OldSwapchain:   old,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create swapchain")
	}

	if err := pc.createViews(); err != nil {
		pc.Release()
		return nil, err
	}

	log.WithFields(log.Fields{
		"extent":  pc.extent,
		"images":  len(pc.images),
		"present": pc.presentMode.String(),
		"format":  pc.format.Format,
	}).Debug("presentation chain created")
	return pc, nil
}

func (pc *PresentationChain) createViews() error {
	drv, device := pc.dev.drv, pc.dev.handle

	images, err := drv.SwapchainImages(device, pc.swapchain)
	if err != nil {
		return errors.Wrap(err, "get swapchain images")
	}
	pc.images = images

	for _, img := range images {
		view, err := drv.CreateImageView(device, gfx.ImageViewInfo{
			Image:  img,
			Format: pc.format.Format,
			Aspect: gfx.AspectColor,
		})
		if err != nil {
			return errors.Wrap(err, "create swapchain image view")
		}
		pc.views = append(pc.views, view)
	}

	pc.depthImage, err = drv.CreateImage(device, gfx.ImageInfo{
		Format: pc.depthFormat,
		Extent: pc.extent,
		Usage:  gfx.ImageUsageDepthStencilAttachment,
	})
	if err != nil {
		return errors.Wrap(err, "create depth image")
	}

	aspect := gfx.AspectDepth
	if pc.depthFormat.HasStencil() {
		aspect |= gfx.AspectStencil
	}
	pc.depthView, err = drv.CreateImageView(device, gfx.ImageViewInfo{
		Image:  pc.depthImage,
		Format: pc.depthFormat,
		Aspect: aspect,
	})
	if err != nil {
		return errors.Wrap(err, "create depth image view")
	}
	return nil
}

// Recreate builds a new chain for size, handing the current swapchain over
// as the old one, and then releases the current chain. On failure the
// current chain is left untouched.
func (pc *PresentationChain) Recreate(size gfx.Extent2D) (*PresentationChain, error) {
	next, err := buildChain(pc.dev, pc.surface, size, pc.cfg, pc.swapchain)
	if err != nil {
		return nil, err
	}
	pc.Release()
	return next, nil
}

// AcquireNextImage returns the index of the next image to render into.
// signal is signaled once the image is ready.
func (pc *PresentationChain) AcquireNextImage(signal gfx.Semaphore) (uint32, error) {
	idx, err := pc.dev.drv.AcquireNextImage(pc.dev.handle, pc.swapchain, pc.cfg.AcquireTimeout, signal)
	if err != nil {
		return 0, errors.Wrap(err, "acquire next image")
	}
	return idx, nil
}

// QueuePresent queues image index for presentation once wait is signaled.
func (pc *PresentationChain) QueuePresent(queue gfx.Queue, index uint32, wait gfx.Semaphore) error {
	if err := pc.dev.drv.QueuePresent(queue, pc.swapchain, index, wait); err != nil {
		return errors.Wrap(err, "present")
	}
	return nil
}

// Extent is the size of the swapchain images.
func (pc *PresentationChain) Extent() gfx.Extent2D {
	return pc.extent
}

// Formats returns the colour and depth formats.
func (pc *PresentationChain) Formats() ChainFormats {
	return ChainFormats{Color: pc.format.Format, Depth: pc.depthFormat}
}

// PresentMode returns the present mode in use.
func (pc *PresentationChain) PresentMode() gfx.PresentMode {
	return pc.presentMode
}

// Len returns the number of swapchain images.
func (pc *PresentationChain) Len() int {
	return len(pc.images)
}

// View returns the colour view of image i.
func (pc *PresentationChain) View(i int) gfx.ImageView {
	return pc.views[i]
}

// DepthView returns the depth attachment view.
func (pc *PresentationChain) DepthView() gfx.ImageView {
	return pc.depthView
}

// Release destroys the depth buffer, the colour views and the swapchain.
func (pc *PresentationChain) Release() {
	if pc == nil || pc.swapchain == 0 {
		return
	}
	drv, device := pc.dev.drv, pc.dev.handle
	if pc.depthView != 0 {
		drv.DestroyImageView(device, pc.depthView)
		pc.depthView = 0
	}
	if pc.depthImage != 0 {
		drv.DestroyImage(device, pc.depthImage)
		pc.depthImage = 0
	}
	for _, v := range pc.views {
		drv.DestroyImageView(device, v)
	}
	pc.views = nil
	pc.images = nil
	drv.DestroySwapchain(device, pc.swapchain)
	pc.swapchain = 0
}
