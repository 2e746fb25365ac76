// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ccl/internal/gpu/labelcompute"
)

// bindGroupKind identifies one of the bind group shapes. Final Labeling has
// no group of its own: it runs with the merge group.
type bindGroupKind int

const (
	groupInit bindGroupKind = iota
	groupCompress
	groupMerge
	groupVisualize

	groupCount
)

func (k bindGroupKind) String() string {
	switch k {
	case groupInit:
		return "init"
	case groupCompress:
		return "compress"
	case groupMerge:
		return "merge"
	case groupVisualize:
		return "visualize"
	default:
		return fmt.Sprintf("bindGroupKind(%d)", int(k))
	}
}

// groupFor returns the bind group a stage is dispatched with.
func groupFor(s labelcompute.Stage) bindGroupKind {
	switch s {
	case labelcompute.StageInit:
		return groupInit
	case labelcompute.StageCompress:
		return groupCompress
	case labelcompute.StageMerge, labelcompute.StageFinal:
		return groupMerge
	default:
		return groupVisualize
	}
}

// bindGroupLayoutEntries returns the layout of a bind group kind. The
// entries match the @group(0) @binding(N) declarations of the kernels
// dispatched with it.
func bindGroupLayoutEntries(k bindGroupKind) []gputypes.BindGroupLayoutEntry {
	dimsUniform := gputypes.BindGroupLayoutEntry{
		Binding:    0,
		Visibility: gputypes.ShaderStageCompute,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}
	storageRO := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
		}
	}
	storageRW := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		}
	}

	switch k {
	case groupInit:
		// @binding(0) uniform dims
		// @binding(1) storage(read) pixels
		// @binding(2) storage(read_write) labels
		// @binding(3) storage(read_write) info
		return []gputypes.BindGroupLayoutEntry{
			dimsUniform, storageRO(1), storageRW(2), storageRW(3),
		}

	case groupCompress:
		// @binding(0) uniform dims
		// @binding(1) storage(read_write) labels (atomic)
		return []gputypes.BindGroupLayoutEntry{
			dimsUniform, storageRW(1),
		}

	case groupMerge:
		// @binding(0) uniform dims
		// @binding(1) storage(read_write) labels (atomic in merge)
		// @binding(2) storage(read) info
		return []gputypes.BindGroupLayoutEntry{
			dimsUniform, storageRW(1), storageRO(2),
		}

	case groupVisualize:
		// @binding(0) uniform dims
		// @binding(1) storage(read) labels
		// @binding(2) storage(read_write) rgba
		return []gputypes.BindGroupLayoutEntry{
			dimsUniform, storageRO(1), storageRW(2),
		}

	default:
		return nil
	}
}

// bindGroupEntries maps a bind group kind to the pipeline's buffers.
func bindGroupEntries(k bindGroupKind, bufs *pipelineBuffers) []gputypes.BindGroupEntry {
	entry := func(binding uint32, buf gpuBuffer) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding: binding,
			Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(),
				Offset: 0,
				Size:   buf.size,
			},
		}
	}

	switch k {
	case groupInit:
		return []gputypes.BindGroupEntry{
			entry(0, bufs.dims),
			entry(1, bufs.pixels),
			entry(2, bufs.labels),
			entry(3, bufs.info),
		}
	case groupCompress:
		return []gputypes.BindGroupEntry{
			entry(0, bufs.dims),
			entry(1, bufs.labels),
		}
	case groupMerge:
		return []gputypes.BindGroupEntry{
			entry(0, bufs.dims),
			entry(1, bufs.labels),
			entry(2, bufs.info),
		}
	case groupVisualize:
		return []gputypes.BindGroupEntry{
			entry(0, bufs.dims),
			entry(1, bufs.labels),
			entry(2, bufs.rgba),
		}
	default:
		return nil
	}
}
