// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package scene contains what the renderer draws.
package scene

import (
	"github.com/devblok/vista/core"
	"github.com/devblok/vista/gfx"
	"github.com/devblok/vista/renderer"
	"github.com/devblok/vista/utility/pcache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// TriangleProgram is the shader program the triangle is drawn with.
const TriangleProgram = "triangle"

// RotationSpeed is how fast the triangle spins, in radians per second.
const RotationSpeed = 1.0

var _ renderer.Scene = (*Triangle)(nil)

// Triangle draws a single spinning triangle whose vertices are
// generated by the vertex shader. Its transform lives in a uniform buffer.
type Triangle struct {
	shaders   ShaderSource
	cachePath string
	logger    log.FieldLogger

	dev *renderer.Device
	drv gfx.Driver

	setLayout      gfx.DescriptorSetLayout
	pipelineLayout gfx.PipelineLayout
	cache          gfx.PipelineCache
	pipeline       gfx.Pipeline
	uniform        gfx.Buffer
	descriptorPool gfx.DescriptorPool
	sets           []gfx.DescriptorSet

	extent gfx.Extent2D
	angle  float32
}

// NewTriangle creates a triangle scene reading its program from shaders.
func NewTriangle(shaders ShaderSource, cfg core.SceneConfiguration) *Triangle {
	return &Triangle{
		shaders:   shaders,
		cachePath: cfg.PipelineCachePath,
		logger:    log.WithField("component", "scene"),
	}
}

// SetLogger replaces the logger.
func (t *Triangle) SetLogger(logger log.FieldLogger) {
	t.logger = logger
}

// Create builds the pipeline and uniform storage for layout.
func (t *Triangle) Create(dev *renderer.Device, layout *renderer.RenderTargetLayout) error {
	t.dev, t.drv = dev, dev.Driver()
	if err := t.create(layout); err != nil {
		t.ShutDown()
		return err
	}
	return nil
}

func (t *Triangle) create(layout *renderer.RenderTargetLayout) error {
	handle := t.dev.Handle()

	prog, err := LoadProgram(t.shaders, TriangleProgram)
	if err != nil {
		return err
	}

	if t.setLayout, err = t.drv.CreateDescriptorSetLayout(handle, []gfx.DescriptorBinding{{
		Binding: 0,
		Type:    gfx.DescriptorUniformBuffer,
		Count:   1,
		Stages:  gfx.ShaderStageVertex,
	}}); err != nil {
		return errors.Wrap(err, "descriptor set layout")
	}

	if t.pipelineLayout, err = t.drv.CreatePipelineLayout(handle, []gfx.DescriptorSetLayout{t.setLayout}); err != nil {
		return errors.Wrap(err, "pipeline layout")
	}

	if t.cache, err = t.drv.CreatePipelineCache(handle, t.loadCache()); err != nil {
		return errors.Wrap(err, "pipeline cache")
	}

	if t.pipeline, err = t.createPipeline(prog, layout); err != nil {
		return err
	}

	if t.uniform, err = t.drv.CreateBuffer(handle, gfx.BufferInfo{
		Size:  UniformSize,
		Usage: gfx.BufferUsageUniform,
	}); err != nil {
		return errors.Wrap(err, "uniform buffer")
	}

	if t.descriptorPool, err = t.drv.CreateDescriptorPool(handle, 1, []gfx.DescriptorPoolSize{{
		Type:  gfx.DescriptorUniformBuffer,
		Count: 1,
	}}); err != nil {
		return errors.Wrap(err, "descriptor pool")
	}
	return nil
}

// createPipeline builds the pipeline. Shader modules are only needed
// until the pipeline exists.
func (t *Triangle) createPipeline(prog Program, layout *renderer.RenderTargetLayout) (gfx.Pipeline, error) {
	handle := t.dev.Handle()

	var stages []gfx.ShaderStageInfo
	defer func() {
		for _, s := range stages {
			t.drv.DestroyShaderModule(handle, s.Module)
		}
	}()
	for _, stage := range []gfx.ShaderStage{gfx.ShaderStageVertex, gfx.ShaderStageFragment} {
		module, err := t.drv.CreateShaderModule(handle, prog[stage])
		if err != nil {
			return 0, errors.Wrapf(err, "%s shader", stageName(stage))
		}
		stages = append(stages, gfx.ShaderStageInfo{Stage: stage, Module: module, Entry: "main"})
	}

	pipeline, err := t.drv.CreateGraphicsPipeline(handle, gfx.PipelineInfo{
		Stages:     stages,
		Layout:     t.pipelineLayout,
		RenderPass: layout.RenderPass(),
		Cache:      t.cache,
		CullMode:   gfx.CullNone,
		DepthTest:  true,
	})
	if err != nil {
		return 0, errors.Wrap(err, "graphics pipeline")
	}
	return pipeline, nil
}

// loadCache returns the persisted pipeline cache for the device, or nil.
func (t *Triangle) loadCache() []byte {
	if t.cachePath == "" {
		return nil
	}
	data, err := pcache.Load(t.cachePath, pcache.IdentityOf(t.dev.Info()))
	if err != nil {
		t.logger.WithError(err).WithField("path", t.cachePath).Warn("ignoring pipeline cache")
		return nil
	}
	return data
}

func (t *Triangle) saveCache() {
	if t.cachePath == "" || t.cache == 0 {
		return
	}
	data, err := t.drv.PipelineCacheData(t.dev.Handle(), t.cache)
	if err != nil {
		t.logger.WithError(err).Warn("failed to read pipeline cache")
		return
	}
	if err := pcache.Save(t.cachePath, pcache.IdentityOf(t.dev.Info()), data); err != nil {
		t.logger.WithError(err).WithField("path", t.cachePath).Warn("failed to save pipeline cache")
		return
	}
	t.logger.WithField("size", len(data)).Debug("pipeline cache saved")
}

// UpdateUniformData advances the rotation by delta seconds and uploads
// the new transform.
func (t *Triangle) UpdateUniformData(extent gfx.Extent2D, delta float32) error {
	t.extent = extent
	t.angle += delta * RotationSpeed
	u := NewUniform(extent, t.angle)
	return t.drv.WriteBuffer(t.dev.Handle(), t.uniform, 0, u.Bytes())
}

// AllocateDescriptorSets returns previous sets to the pool and points a
// fresh one at the uniform buffer.
func (t *Triangle) AllocateDescriptorSets() error {
	handle := t.dev.Handle()
	if err := t.drv.ResetDescriptorPool(handle, t.descriptorPool); err != nil {
		return errors.Wrap(err, "reset descriptor pool")
	}

	sets, err := t.drv.AllocateDescriptorSets(handle, t.descriptorPool, []gfx.DescriptorSetLayout{t.setLayout})
	if err != nil {
		return errors.Wrap(err, "allocate descriptor sets")
	}
	t.sets = sets

	t.drv.UpdateDescriptorSets(handle, []gfx.DescriptorBufferWrite{{
		Set:     sets[0],
		Binding: 0,
		Type:    gfx.DescriptorUniformBuffer,
		Buffer:  t.uniform,
		Range:   UniformSize,
	}})
	return nil
}

// Render records the draw into cb.
func (t *Triangle) Render(cb gfx.CommandBuffer) {
	t.drv.CmdBindPipeline(cb, t.pipeline)
	t.drv.CmdSetViewport(cb, gfx.Viewport{
		Width:    float32(t.extent.Width),
		Height:   float32(t.extent.Height),
		MaxDepth: 1,
	})
	t.drv.CmdSetScissor(cb, gfx.Rect2D{Extent: t.extent})
	t.drv.CmdBindDescriptorSets(cb, t.pipelineLayout, t.sets)
	t.drv.CmdDraw(cb, 3, 1, 0, 0)
}

// ShutDown saves the pipeline cache and releases everything Create made.
// It is safe to call more than once.
func (t *Triangle) ShutDown() {
	if t.dev == nil {
		return
	}
	handle := t.dev.Handle()
	t.saveCache()

	if t.descriptorPool != 0 {
		t.drv.DestroyDescriptorPool(handle, t.descriptorPool)
		t.descriptorPool, t.sets = 0, nil
	}
	if t.uniform != 0 {
		t.drv.DestroyBuffer(handle, t.uniform)
		t.uniform = 0
	}
	if t.pipeline != 0 {
		t.drv.DestroyPipeline(handle, t.pipeline)
		t.pipeline = 0
	}
	if t.cache != 0 {
		t.drv.DestroyPipelineCache(handle, t.cache)
		t.cache = 0
	}
	if t.pipelineLayout != 0 {
		t.drv.DestroyPipelineLayout(handle, t.pipelineLayout)
		t.pipelineLayout = 0
	}
	if t.setLayout != 0 {
		t.drv.DestroyDescriptorSetLayout(handle, t.setLayout)
		t.setLayout = 0
	}
	t.dev = nil
}
