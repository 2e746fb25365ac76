// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package labelcompute

import (
	"context"
	"fmt"

	"github.com/gogpu/ccl/internal/parallel"
)

// Pipeline runs the six labeling dispatches on the CPU.
//
// Each dispatch covers the same workgroup grid as on the GPU and every
// workgroup runs its 8x8 invocations in order. A dispatch returns only
// after all of its workgroups completed, which is the ordering a compute
// pass boundary provides.
//
// A Pipeline is not safe for concurrent Run calls.
type Pipeline struct {
	dims Dims
	bufs *Buffers
	pool *parallel.WorkerPool
}

// NewPipeline creates a CPU pipeline over pixels, which must hold one
// packed texel per pixel of d. The pool is borrowed, not owned.
func NewPipeline(d Dims, pixels []uint32, pool *parallel.WorkerPool) (*Pipeline, error) {
	if d.Columns == 0 || d.Rows == 0 {
		return nil, ErrEmptyImage
	}
	if d.Pixels() > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d pixels", ErrImageTooLarge, d.Columns, d.Rows)
	}
	if uint64(len(pixels)) != d.Pixels() {
		return nil, fmt.Errorf("labelcompute: %d texels for %dx%d image", len(pixels), d.Columns, d.Rows)
	}
	return &Pipeline{dims: d, bufs: NewBuffers(d, pixels), pool: pool}, nil
}

// Dims returns the pipeline's dimensions descriptor.
func (p *Pipeline) Dims() Dims { return p.dims }

// Buffers exposes the pipeline's buffers.
func (p *Pipeline) Buffers() *Buffers { return p.bufs }

// Labels returns the label buffer. After Run it holds root+1 per foreground
// pixel and 0 per background pixel.
func (p *Pipeline) Labels() []uint32 { return p.bufs.Labels }

// RGBA returns the packed visualization buffer.
func (p *Pipeline) RGBA() []uint32 { return p.bufs.RGBA }

// Run executes all dispatches in order. The context is checked between
// dispatches; a cancelled run leaves the buffers undefined.
func (p *Pipeline) Run(ctx context.Context) error {
	for i, s := range Dispatches {
		if err := p.RunStage(ctx, s); err != nil {
			return fmt.Errorf("labelcompute: dispatch %d (%s): %w", i, s, err)
		}
	}
	return nil
}

// RunStage executes a single dispatch of stage s.
func (p *Pipeline) RunStage(ctx context.Context, s Stage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gx, gy := WorkgroupCounts(s, p.dims)
	d, b := p.dims, p.bufs
	return p.pool.Dispatch(ctx, gx, gy, func(wx, wy uint32) {
		for ly := range uint32(WorkgroupSize) {
			for lx := range uint32(WorkgroupSize) {
				Invoke(s, d, b, wx*WorkgroupSize+lx, wy*WorkgroupSize+ly)
			}
		}
	})
}
