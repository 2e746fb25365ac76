// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package labelcompute is the CPU port of the connected-component labeling
// compute kernels.
//
// The WGSL kernels in shaders/ and the Go functions in this package are kept
// in lockstep: same dispatch grid, same block-info bits, same union-find
// linking rule. The port serves as the software backend and as the reference
// the GPU pipeline is checked against.
//
// Labeling is 8-connected and works on 2x2 blocks:
//
//	init_labeling   link each block to its first connected neighbor
//	compress        point every block at its root
//	merge           union the remaining connected neighbors (atomic min)
//	compress        flatten again after merging
//	final_labeling  write root+1 into foreground pixels, 0 elsewhere
//	label_to_rgba   color labels for display
//
// Roots are always the smallest anchor index of their component, so labels
// do not depend on scheduling.
package labelcompute
