// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ccl labels the 8-connected components of binary images on the GPU.
//
// # Overview
//
// ccl implements the block-based union-find labeling of Allegretti et al.
// (BKE) as five WebGPU compute kernels driven through gogpu/wgpu. The same
// kernels are ported to Go and run on a goroutine worker pool, so labeling
// works without a GPU and both backends produce identical labels.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/ccl"
//	    _ "github.com/gogpu/ccl/gpu" // optional: enable the GPU backend
//	)
//
//	src, err := ccl.FromImage(img)
//	if err != nil { ... }
//	res, err := ccl.Label(ctx, src, ccl.WithThreshold(127))
//	if err != nil { ... }
//	fmt.Println(res.Labels.Count(), "components")
//	png.Encode(w, res.Visualization)
//
// # Labels
//
// Background pixels get label 0. Every foreground pixel gets the label of
// its component, which is the smallest 2x2 block anchor index in the
// component plus one. Labels are therefore deterministic and equal across
// backends and worker counts.
//
// # Pipeline
//
// Labeling runs six dispatches: init_labeling, compress, merge, compress,
// final_labeling and label_to_rgba. Stages 1-5 run one invocation per 2x2
// block in 8x8 workgroups (16x16 pixels per workgroup); the visualization
// runs one invocation per pixel.
package ccl
