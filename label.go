// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ccl

import (
	"context"
	"errors"
	"fmt"
)

// Label labels the 8-connected foreground components of src.
//
// With BackendAuto the registered GPU accelerator is tried first and the
// CPU is used when none is registered or it reports ErrFallbackToCPU.
// BackendGPU fails with ErrNoGPU when no accelerator is registered.
func Label(ctx context.Context, src *Source, opts ...Option) (*Result, error) {
	cfg := NewConfig(opts...)
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendCPU:
		return SoftwareLabeler{}.Label(ctx, src, cfg)

	case BackendGPU:
		a := Accelerator()
		if a == nil {
			return nil, fmt.Errorf("%w: no accelerator registered", ErrNoGPU)
		}
		return a.Label(ctx, src, cfg)

	case BackendAuto:
		if a := Accelerator(); a != nil {
			res, err := a.Label(ctx, src, cfg)
			if err == nil {
				return res, nil
			}
			if !errors.Is(err, ErrFallbackToCPU) {
				return nil, err
			}
			Logger().Warn("ccl: GPU labeling unavailable, using CPU",
				"accelerator", a.Name(),
				"err", err)
		}
		return SoftwareLabeler{}.Label(ctx, src, cfg)

	default:
		return nil, fmt.Errorf("ccl: unknown backend %v", cfg.Backend)
	}
}
