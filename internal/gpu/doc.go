// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu runs connected-component labeling as WebGPU compute kernels
// through gogpu/wgpu/hal.
//
// # Architecture
//
//	Source -> Pipeline (buffers, 5 kernels) -> 6 compute passes -> read-back
//
// Key components:
//
//   - Pipeline: owns the buffers, bind groups and compute pipelines of one
//     image and records the six dispatches into a command encoder.
//   - Accelerator: the ccl.GPUAccelerator registered by package ccl/gpu.
//     It opens a Vulkan device lazily or reuses a host device.
//   - labelcompute: the CPU port of every kernel, used as reference.
//
// # Synchronization
//
// hal performs no hazard tracking inside a compute pass, so each dispatch
// gets its own pass. The pass boundary makes every storage write of a stage
// visible to the next.
//
// # Buffers
//
//	dims    uniform  {columns, rows, threshold, palette}
//	pixels  storage  packed RGBA8 input texels
//	labels  storage  label forest, then final labels
//	info    storage  per-block scratch written by init_labeling
//	rgba    storage  packed RGBA8 visualization
package gpu
