// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ccl"
	"github.com/gogpu/ccl/internal/gpu/labelcompute"
)

// gpuBuffer is a hal buffer together with its size in bytes.
type gpuBuffer struct {
	hal.Buffer
	size uint64
}

// pipelineBuffers holds the GPU buffers of one labeling run.
type pipelineBuffers struct {
	dims   gpuBuffer // uniform Dims
	pixels gpuBuffer // packed RGBA8 input
	labels gpuBuffer // label forest, final labels after final_labeling
	info   gpuBuffer // per-block info bits
	rgba   gpuBuffer // packed RGBA8 visualization
}

func (b *pipelineBuffers) all() []gpuBuffer {
	return []gpuBuffer{b.dims, b.pixels, b.labels, b.info, b.rgba}
}

// Pipeline owns every GPU object needed to label one image: the five
// buffers, one shader module and compute pipeline per kernel, and one bind
// group per bind group kind.
//
// A Pipeline is not safe for concurrent use. Run it once, then Destroy it.
type Pipeline struct {
	device hal.Device
	queue  hal.Queue

	dims    labelcompute.Dims
	timeout time.Duration

	bufs pipelineBuffers

	modules     [kernelCount]hal.ShaderModule
	pipeLayouts [kernelCount]hal.PipelineLayout
	pipelines   [kernelCount]hal.ComputePipeline
	bindLayouts [groupCount]hal.BindGroupLayout
	bindGroups  [groupCount]hal.BindGroup
	destroyed   bool
}

// NewPipeline validates src, uploads it to the device and builds the
// labeling kernels. The caller must call Destroy when done.
//
// limits are the limits the device was opened with; a zero MaxBufferSize
// means gputypes.DefaultLimits. An image whose buffers exceed them fails
// with an error wrapping both ccl.ErrImageTooLarge and ccl.ErrFallbackToCPU.
func NewPipeline(device hal.Device, queue hal.Queue, limits gputypes.Limits, src *ccl.Source, cfg ccl.Config) (*Pipeline, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("gpu: pipeline needs a device and a queue")
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	dims, err := labelcompute.NewDims(src.Width, src.Height, cfg.Threshold, cfg.Palette)
	if err != nil {
		return nil, err
	}
	if limit := maxStorageSize(limits); dims.BufferSize() > limit {
		return nil, fmt.Errorf("%w: %w: %dx%d needs %d byte buffers, device limit is %d",
			ccl.ErrFallbackToCPU, ccl.ErrImageTooLarge, src.Width, src.Height, dims.BufferSize(), limit)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = ccl.DefaultTimeout
	}

	p := &Pipeline{
		device:  device,
		queue:   queue,
		dims:    dims,
		timeout: timeout,
	}
	if err := p.createBuffers(); err != nil {
		p.Destroy()
		return nil, err
	}
	p.upload(src.Pixels)
	if err := p.createKernels(); err != nil {
		p.Destroy()
		return nil, err
	}
	if err := p.createBindGroups(); err != nil {
		p.Destroy()
		return nil, err
	}

	slogger().Debug("gpu: pipeline created",
		"width", dims.Columns, "height", dims.Rows,
		"buffer_size", humanize.IBytes(dims.BufferSize()), "blocks", dims.Blocks())
	return p, nil
}

// maxStorageSize is the largest buffer that can be both created and bound
// as a storage buffer.
func maxStorageSize(limits gputypes.Limits) uint64 {
	if limits.MaxBufferSize == 0 {
		limits = gputypes.DefaultLimits()
	}
	if binding := limits.MaxStorageBufferBindingSize; binding != 0 && binding < limits.MaxBufferSize {
		return binding
	}
	return limits.MaxBufferSize
}

// Dims returns the image dimensions and parameters of the pipeline.
func (p *Pipeline) Dims() labelcompute.Dims { return p.dims }

func (p *Pipeline) createBuffers() error {
	size := p.dims.BufferSize()
	specs := []struct {
		dst   *gpuBuffer
		label string
		size  uint64
		usage gputypes.BufferUsage
	}{
		{&p.bufs.dims, "ccl_dims", labelcompute.UniformSize,
			gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst},
		{&p.bufs.pixels, "ccl_pixels", size,
			gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst},
		{&p.bufs.labels, "ccl_labels", size,
			gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc},
		{&p.bufs.info, "ccl_info", size,
			gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst},
		{&p.bufs.rgba, "ccl_rgba", size,
			gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc},
	}
	for _, s := range specs {
		buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
			Label: s.label, Size: s.size, Usage: s.usage,
		})
		if err != nil {
			return fmt.Errorf("gpu: create %s buffer: %w", s.label, err)
		}
		*s.dst = gpuBuffer{Buffer: buf, size: s.size}
	}
	return nil
}

// upload writes the uniform and the input texels, and clears the label and
// info buffers so no stale data from a previous allocation is visible.
func (p *Pipeline) upload(pixels []uint32) {
	p.queue.WriteBuffer(p.bufs.dims.Buffer, 0, p.dims.Uniform())
	p.queue.WriteBuffer(p.bufs.pixels.Buffer, 0, texelBytes(pixels))
	zero := make([]byte, p.dims.BufferSize())
	p.queue.WriteBuffer(p.bufs.labels.Buffer, 0, zero)
	p.queue.WriteBuffer(p.bufs.info.Buffer, 0, zero)
}

func (p *Pipeline) createKernels() error {
	for g := bindGroupKind(0); g < groupCount; g++ {
		layout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   "ccl_" + g.String() + "_layout",
			Entries: bindGroupLayoutEntries(g),
		})
		if err != nil {
			return fmt.Errorf("gpu: create %s bind group layout: %w", g, err)
		}
		p.bindLayouts[g] = layout
	}

	for _, s := range labelcompute.Kernels {
		name := s.String()
		module, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  name,
			Source: hal.ShaderSource{WGSL: kernelSource(s)},
		})
		if err != nil {
			return fmt.Errorf("gpu: compile %s shader: %w", name, err)
		}
		p.modules[s] = module

		pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            name + "_pipe_layout",
			BindGroupLayouts: []hal.BindGroupLayout{p.bindLayouts[groupFor(s)]},
		})
		if err != nil {
			return fmt.Errorf("gpu: create %s pipeline layout: %w", name, err)
		}
		p.pipeLayouts[s] = pipeLayout

		pipeline, err := p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:   name + "_pipeline",
			Layout:  pipeLayout,
			Compute: hal.ComputeState{Module: module, EntryPoint: name},
		})
		if err != nil {
			return fmt.Errorf("gpu: create %s compute pipeline: %w", name, err)
		}
		p.pipelines[s] = pipeline
	}
	return nil
}

func (p *Pipeline) createBindGroups() error {
	for g := bindGroupKind(0); g < groupCount; g++ {
		bg, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   "ccl_" + g.String() + "_bind",
			Layout:  p.bindLayouts[g],
			Entries: bindGroupEntries(g, &p.bufs),
		})
		if err != nil {
			return fmt.Errorf("gpu: create %s bind group: %w", g, err)
		}
		p.bindGroups[g] = bg
	}
	return nil
}

// Encode records the six labeling dispatches into encoder, one compute pass
// each, and returns the buffer holding the final labels. The encoder must
// already be recording.
func (p *Pipeline) Encode(encoder hal.CommandEncoder) hal.Buffer {
	for i, s := range labelcompute.Dispatches {
		x, y := labelcompute.WorkgroupCounts(s, p.dims)
		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: s.String()})
		pass.SetPipeline(p.pipelines[s])
		pass.SetBindGroup(0, p.bindGroups[groupFor(s)], nil)
		pass.Dispatch(x, y, 1)
		pass.End()
		slogger().Debug("gpu: dispatch encoded", "index", i, "stage", s.String(), "groups_x", x, "groups_y", y)
	}
	return p.bufs.labels.Buffer
}

// RGBABuffer returns the buffer holding the visualization.
func (p *Pipeline) RGBABuffer() hal.Buffer { return p.bufs.rgba.Buffer }

// Destroy releases every GPU object the pipeline created. It is safe to
// call more than once and on a partially built pipeline.
func (p *Pipeline) Destroy() {
	if p == nil || p.destroyed {
		return
	}
	p.destroyed = true

	for i := range p.bindGroups {
		if p.bindGroups[i] != nil {
			p.device.DestroyBindGroup(p.bindGroups[i])
			p.bindGroups[i] = nil
		}
	}
	for i := range p.pipelines {
		if p.pipelines[i] != nil {
			p.device.DestroyComputePipeline(p.pipelines[i])
			p.pipelines[i] = nil
		}
		if p.pipeLayouts[i] != nil {
			p.device.DestroyPipelineLayout(p.pipeLayouts[i])
			p.pipeLayouts[i] = nil
		}
		if p.modules[i] != nil {
			p.device.DestroyShaderModule(p.modules[i])
			p.modules[i] = nil
		}
	}
	for i := range p.bindLayouts {
		if p.bindLayouts[i] != nil {
			p.device.DestroyBindGroupLayout(p.bindLayouts[i])
			p.bindLayouts[i] = nil
		}
	}
	for _, b := range p.bufs.all() {
		if b.Buffer != nil {
			p.device.DestroyBuffer(b.Buffer)
		}
	}
	p.bufs = pipelineBuffers{}
}
