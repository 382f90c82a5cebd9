// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"unsafe"

	"github.com/devblok/vista/core"
	"github.com/devblok/vista/gfx"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CreateShaderModule creates a module from SPIR-V code.
func (d *Driver) CreateShaderModule(dev gfx.Device, code []byte) (gfx.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return 0, errors.Errorf("invalid SPIR-V length %d", len(code))
	}

	var module vk.ShaderModule
	if err := check("vk.CreateShaderModule()", vk.CreateShaderModule(d.device(dev).handle, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    core.SliceUint32(code),
	}, nil, &module)); err != nil {
		return 0, err
	}
	return gfx.ShaderModule(d.reg.put(module)), nil
}

func (d *Driver) shaderModule(h gfx.ShaderModule) vk.ShaderModule {
	obj, _ := d.reg.get(uint64(h)).(vk.ShaderModule)
	return obj
}

// DestroyShaderModule destroys the module.
func (d *Driver) DestroyShaderModule(dev gfx.Device, module gfx.ShaderModule) {
	if obj, ok := d.reg.drop(uint64(module)).(vk.ShaderModule); ok {
		vk.DestroyShaderModule(d.device(dev).handle, obj, nil)
	}
}

// CreatePipelineLayout creates a layout without push constants.
func (d *Driver) CreatePipelineLayout(dev gfx.Device, layouts []gfx.DescriptorSetLayout) (gfx.PipelineLayout, error) {
	var layout vk.PipelineLayout
	if err := check("vk.CreatePipelineLayout()", vk.CreatePipelineLayout(d.device(dev).handle, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(layouts)),
		PSetLayouts:    d.descriptorSetLayouts(layouts),
	}, nil, &layout)); err != nil {
		return 0, err
	}
	return gfx.PipelineLayout(d.reg.put(layout)), nil
}

func (d *Driver) pipelineLayout(h gfx.PipelineLayout) vk.PipelineLayout {
	obj, _ := d.reg.get(uint64(h)).(vk.PipelineLayout)
	return obj
}

// DestroyPipelineLayout destroys the layout.
func (d *Driver) DestroyPipelineLayout(dev gfx.Device, layout gfx.PipelineLayout) {
	if obj, ok := d.reg.drop(uint64(layout)).(vk.PipelineLayout); ok {
		vk.DestroyPipelineLayout(d.device(dev).handle, obj, nil)
	}
}

// CreatePipelineCache creates a cache seeded with initial, which may be empty.
func (d *Driver) CreatePipelineCache(dev gfx.Device, initial []byte) (gfx.PipelineCache, error) {
	info := vk.PipelineCacheCreateInfo{SType: vk.StructureTypePipelineCacheCreateInfo}
	if len(initial) > 0 {
		info.InitialDataSize = uint(len(initial))
		info.PInitialData = unsafe.Pointer(&initial[0])
	}

	var cache vk.PipelineCache
	if err := check("vk.CreatePipelineCache()", vk.CreatePipelineCache(d.device(dev).handle, &info, nil, &cache)); err != nil {
		return 0, err
	}
	return gfx.PipelineCache(d.reg.put(cache)), nil
}

func (d *Driver) pipelineCache(h gfx.PipelineCache) vk.PipelineCache {
	if h == 0 {
		return vk.PipelineCache(vk.NullHandle)
	}
	obj, _ := d.reg.get(uint64(h)).(vk.PipelineCache)
	return obj
}

// PipelineCacheData returns the serialized cache contents.
func (d *Driver) PipelineCacheData(dev gfx.Device, cache gfx.PipelineCache) ([]byte, error) {
	handle, pc := d.device(dev).handle, d.pipelineCache(cache)

	var size uint
	if err := check("vk.GetPipelineCacheData()", vk.GetPipelineCacheData(handle, pc, &size, nil)); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	data := make([]byte, size)
	if err := check("vk.GetPipelineCacheData()", vk.GetPipelineCacheData(handle, pc, &size, unsafe.Pointer(&data[0]))); err != nil {
		return nil, err
	}
	return data[:size], nil
}

// DestroyPipelineCache destroys the cache.
func (d *Driver) DestroyPipelineCache(dev gfx.Device, cache gfx.PipelineCache) {
	if obj, ok := d.reg.drop(uint64(cache)).(vk.PipelineCache); ok {
		vk.DestroyPipelineCache(d.device(dev).handle, obj, nil)
	}
}

// CreateGraphicsPipeline creates a triangle list pipeline without vertex
// input, with dynamic viewport and scissor.
func (d *Driver) CreateGraphicsPipeline(dev gfx.Device, info gfx.PipelineInfo) (gfx.Pipeline, error) {
	stages := make([]vk.PipelineShaderStageCreateInfo, 0, len(info.Stages))
	for _, s := range info.Stages {
		entry := s.Entry
		if entry == "" {
			entry = "main"
		}
		stages = append(stages, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFlagBits(s.Stage),
			Module: d.shaderModule(s.Module),
			PName:  core.SafeString(entry),
		})
	}

	depth := vk.Bool32(vk.False)
	if info.DepthTest {
		depth = vk.True
	}

	gpci := []vk.GraphicsPipelineCreateInfo{{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(info.CullMode),
			FrontFace:   vk.FrontFaceCounterClockwise,
			LineWidth:   1.0,
		},
		PDepthStencilState: &vk.PipelineDepthStencilStateCreateInfo{
			SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:       depth,
			DepthWriteEnable:      depth,
			DepthCompareOp:        vk.CompareOpLess,
			DepthBoundsTestEnable: vk.False,
			Back: vk.StencilOpState{
				FailOp:    vk.StencilOpKeep,
				PassOp:    vk.StencilOpKeep,
				CompareOp: vk.CompareOpAlways,
			},
			StencilTestEnable: vk.False,
			Front: vk.StencilOpState{
				FailOp:    vk.StencilOpKeep,
				PassOp:    vk.StencilOpKeep,
				CompareOp: vk.CompareOpAlways,
			},
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				ColorWriteMask: 0xF,
				BlendEnable:    vk.False,
			}},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates: []vk.DynamicState{
				vk.DynamicStateScissor,
				vk.DynamicStateViewport,
			},
		},
		Layout:     d.pipelineLayout(info.Layout),
		RenderPass: d.renderPass(info.RenderPass),
		Subpass:    info.Subpass,
	}}

	pipelines := make([]vk.Pipeline, len(gpci))
	if err := check("vk.CreateGraphicsPipelines()", vk.CreateGraphicsPipelines(d.device(dev).handle,
		d.pipelineCache(info.Cache), uint32(len(gpci)), gpci, nil, pipelines)); err != nil {
		return 0, err
	}
	return gfx.Pipeline(d.reg.put(pipelines[0])), nil
}

func (d *Driver) pipeline(h gfx.Pipeline) vk.Pipeline {
	obj, _ := d.reg.get(uint64(h)).(vk.Pipeline)
	return obj
}

// DestroyPipeline destroys the pipeline.
func (d *Driver) DestroyPipeline(dev gfx.Device, pipeline gfx.Pipeline) {
	if obj, ok := d.reg.drop(uint64(pipeline)).(vk.Pipeline); ok {
		vk.DestroyPipeline(d.device(dev).handle, obj, nil)
	}
}
