// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu registers the GPU labeling accelerator.
//
// Import this package to run ccl.Label on the GPU. The accelerator opens a
// Vulkan device on the first Label call; if that fails, BackendAuto labeling
// falls back to the CPU.
//
// Usage:
//
//	import _ "github.com/gogpu/ccl/gpu" // enable GPU labeling
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/ccl"
	gpuimpl "github.com/gogpu/ccl/internal/gpu"
)

func init() {
	if err := ccl.RegisterAccelerator(&gpuimpl.Accelerator{}); err != nil {
		ccl.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU accelerator to use a shared GPU device
// from an external provider (e.g., gogpu) instead of opening its own.
//
// The provider must also implement HalDevice() any and HalQueue() any
// returning wgpu/hal types.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return ccl.SetAcceleratorDeviceProvider(provider)
}

// ValidateKernels compiles every labeling kernel to SPIR-V with naga and
// returns the first failure.
func ValidateKernels() error {
	return gpuimpl.ValidateKernels()
}
