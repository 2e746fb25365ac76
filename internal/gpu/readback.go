// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ccl"
)

// Run encodes the six dispatches, submits them with copies of the labels
// and visualization into staging buffers, waits for the fence and reads
// both results back.
//
// The wait is bounded by the configured timeout or the context deadline,
// whichever comes first.
func (p *Pipeline) Run(ctx context.Context) (labels, rgba []uint32, err error) {
	if p.destroyed {
		return nil, nil, fmt.Errorf("gpu: run on destroyed pipeline")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	size := p.dims.BufferSize()

	labelStaging, err := p.createStaging("ccl_labels_staging", size)
	if err != nil {
		return nil, nil, err
	}
	defer p.device.DestroyBuffer(labelStaging)

	rgbaStaging, err := p.createStaging("ccl_rgba_staging", size)
	if err != nil {
		return nil, nil, err
	}
	defer p.device.DestroyBuffer(rgbaStaging)

	start := time.Now()
	if err := p.submit(ctx, labelStaging, rgbaStaging, size); err != nil {
		return nil, nil, err
	}

	raw := make([]byte, size)
	if err := p.queue.ReadBuffer(labelStaging, 0, raw); err != nil {
		return nil, nil, fmt.Errorf("%w: labels: %w", ccl.ErrReadback, err)
	}
	labels = texelWords(raw)
	if err := p.queue.ReadBuffer(rgbaStaging, 0, raw); err != nil {
		return nil, nil, fmt.Errorf("%w: rgba: %w", ccl.ErrReadback, err)
	}
	rgba = texelWords(raw)

	slogger().Debug("gpu: labeling complete",
		"width", p.dims.Columns, "height", p.dims.Rows, "elapsed", time.Since(start))
	return labels, rgba, nil
}

func (p *Pipeline) createStaging(label string, size uint64) (hal.Buffer, error) {
	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label, Size: size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s buffer: %w", label, err)
	}
	return buf, nil
}

func (p *Pipeline) submit(ctx context.Context, labelStaging, rgbaStaging hal.Buffer, size uint64) error {
	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "ccl_encoder"})
	if err != nil {
		return fmt.Errorf("%w: create command encoder: %w", ccl.ErrSubmit, err)
	}
	if err := encoder.BeginEncoding("ccl_labeling"); err != nil {
		return fmt.Errorf("%w: begin encoding: %w", ccl.ErrSubmit, err)
	}

	labelsBuf := p.Encode(encoder)
	encoder.CopyBufferToBuffer(labelsBuf, labelStaging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	encoder.CopyBufferToBuffer(p.RGBABuffer(), rgbaStaging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("%w: end encoding: %w", ccl.ErrSubmit, err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	fence, err := p.device.CreateFence()
	if err != nil {
		return fmt.Errorf("%w: create fence: %w", ccl.ErrSubmit, err)
	}
	defer p.device.DestroyFence(fence)

	if err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("%w: %w", ccl.ErrSubmit, err)
	}

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = max(left, 0)
		}
	}
	ok, err := p.device.Wait(fence, 1, timeout)
	if err != nil {
		return fmt.Errorf("%w: wait: %w", ccl.ErrSubmit, err)
	}
	if !ok {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: wait: %w", ccl.ErrSubmit, ctxErr)
		}
		return fmt.Errorf("%w: wait: timed out after %v", ccl.ErrSubmit, timeout)
	}
	return nil
}

// texelBytes serializes packed texels as little-endian bytes, the layout of
// array<u32> in a storage buffer.
func texelBytes(texels []uint32) []byte {
	out := make([]byte, len(texels)*4)
	for i, v := range texels {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// texelWords is the inverse of texelBytes.
func texelWords(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}
