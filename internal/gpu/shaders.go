// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/ccl/internal/gpu/labelcompute"
)

// Embedded WGSL kernels. Each file declares one entry point named after
// its stage.

//go:embed shaders/init_labeling.wgsl
var shaderInitLabeling string

//go:embed shaders/compress.wgsl
var shaderCompress string

//go:embed shaders/merge.wgsl
var shaderMerge string

//go:embed shaders/final_labeling.wgsl
var shaderFinalLabeling string

//go:embed shaders/label_to_rgba.wgsl
var shaderLabelToRGBA string

// kernelCount is the number of distinct compute kernels.
const kernelCount = int(labelcompute.StageVisualize) + 1

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// kernelSource returns the WGSL source of stage s.
func kernelSource(s labelcompute.Stage) string {
	switch s {
	case labelcompute.StageInit:
		return shaderInitLabeling
	case labelcompute.StageCompress:
		return shaderCompress
	case labelcompute.StageMerge:
		return shaderMerge
	case labelcompute.StageFinal:
		return shaderFinalLabeling
	case labelcompute.StageVisualize:
		return shaderLabelToRGBA
	default:
		return ""
	}
}

// CompileKernel translates the WGSL source of stage s to SPIR-V with naga.
func CompileKernel(s labelcompute.Stage) ([]byte, error) {
	src := kernelSource(s)
	if src == "" {
		return nil, fmt.Errorf("gpu: no shader source for %s", s)
	}
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile %s: %w", s, err)
	}
	if len(spirv) < 4 || binary.LittleEndian.Uint32(spirv) != spirvMagic {
		return nil, fmt.Errorf("gpu: compile %s: output is not SPIR-V", s)
	}
	return spirv, nil
}

// ValidateKernels compiles every kernel and returns the first failure.
func ValidateKernels() error {
	for _, s := range labelcompute.Kernels {
		spirv, err := CompileKernel(s)
		if err != nil {
			return err
		}
		slogger().Debug("gpu: kernel compiled", "stage", s.String(), "spirv_bytes", len(spirv))
	}
	return nil
}
