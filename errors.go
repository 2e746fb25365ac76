// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ccl

import (
	"errors"

	"github.com/gogpu/ccl/internal/gpu/labelcompute"
)

var (
	// ErrImageTooLarge is returned when the pixel count does not fit the
	// u32 label range or a buffer would exceed the device buffer limit.
	ErrImageTooLarge = labelcompute.ErrImageTooLarge

	// ErrEmptyImage is returned for a source with a zero dimension.
	ErrEmptyImage = labelcompute.ErrEmptyImage

	// ErrInvalidSource is returned when a source's texel count does not
	// match its dimensions.
	ErrInvalidSource = errors.New("ccl: invalid source")

	// ErrSubmit wraps command submission and fence wait failures.
	ErrSubmit = errors.New("ccl: GPU submission failed")

	// ErrReadback wraps failures copying results back to host memory.
	ErrReadback = errors.New("ccl: GPU read-back failed")

	// ErrNoGPU is returned when GPU labeling is required but no accelerator
	// or adapter is available.
	ErrNoGPU = errors.New("ccl: no GPU available")

	// ErrFallbackToCPU indicates the GPU accelerator cannot label this
	// source. In BackendAuto mode Label transparently uses the CPU.
	ErrFallbackToCPU = errors.New("ccl: falling back to CPU labeling")
)
