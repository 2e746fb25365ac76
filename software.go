// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ccl

import (
	"context"
	"time"

	"github.com/gogpu/ccl/internal/gpu/labelcompute"
	"github.com/gogpu/ccl/internal/parallel"
)

// SoftwareLabeler runs the labeling kernels on the CPU with a goroutine
// worker pool. The zero value is ready to use.
type SoftwareLabeler struct{}

var _ Labeler = SoftwareLabeler{}

// Name returns "cpu".
func (SoftwareLabeler) Name() string { return "cpu" }

// Label implements Labeler.
func (s SoftwareLabeler) Label(ctx context.Context, src *Source, cfg Config) (*Result, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	d, err := labelcompute.NewDims(src.Width, src.Height, cfg.Threshold, cfg.Palette)
	if err != nil {
		return nil, err
	}

	pool := parallel.NewWorkerPool(cfg.Workers)
	defer pool.Close()

	p, err := labelcompute.NewPipeline(d, src.Pixels, pool)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := p.Run(ctx); err != nil {
		return nil, err
	}
	Logger().Debug("ccl: labeled on CPU",
		"width", d.Columns,
		"height", d.Rows,
		"workers", pool.Workers(),
		"elapsed", time.Since(start))

	return NewResult(src.Width, src.Height, p.Labels(), p.RGBA(), s.Name()), nil
}
