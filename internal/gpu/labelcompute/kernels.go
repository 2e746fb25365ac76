// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Block-based union-find kernels (BKE, Allegretti et al.).
//
// Every function here is the body of one GPU invocation of the kernel with
// the same name in shaders/. Block kernels receive the global invocation id
// (gx, gy) and work on the 2x2 block whose anchor is (2*gx, 2*gy).
//
// Label forest slots are shared between invocations of the same dispatch
// and are always accessed through sync/atomic. Block-info slots are written
// by Init only and read in later dispatches, so plain access is enough.

package labelcompute

import "sync/atomic"

// Block-info bits.
const (
	InfoA = 1 << 0 // anchor (x, y) is foreground
	InfoB = 1 << 1 // (x+1, y) is foreground
	InfoC = 1 << 2 // (x, y+1) is foreground
	InfoD = 1 << 3 // (x+1, y+1) is foreground
	InfoQ = 1 << 4 // merge with the block above
	InfoR = 1 << 5 // merge with the block above-right
	InfoS = 1 << 6 // merge with the block to the left
)

// Neighborhood mask contributions of the foreground block pixels.
// Bit (r+1)*4+(c+1) stands for pixel (x+c, y+r), r and c in -1..2.
const (
	maskA = 0x777
	maskB = 0x777 << 1
	maskC = 0x777 << 4
)

// Buffers holds the storage buffers bound to the kernels.
type Buffers struct {
	// Pixels is the packed RGBA8 input texture.
	Pixels []uint32

	// Labels is the label forest during the run and the label image after
	// Final Labeling.
	Labels []uint32

	// Info is the per-anchor block-info scratch.
	Info []uint32

	// RGBA is the packed visualization output.
	RGBA []uint32
}

// NewBuffers allocates zeroed buffers for d around the given texels.
func NewBuffers(d Dims, pixels []uint32) *Buffers {
	n := d.Pixels()
	return &Buffers{
		Pixels: pixels,
		Labels: make([]uint32, n),
		Info:   make([]uint32, n),
		RGBA:   make([]uint32, n),
	}
}

// foreground reports whether pixel (x, y) exists and its R channel is above
// the threshold.
func foreground(d Dims, pix []uint32, x, y int64) bool {
	if x < 0 || y < 0 || x >= int64(d.Columns) || y >= int64(d.Rows) {
		return false
	}
	return pix[uint32(y)*d.Columns+uint32(x)]&0xFF > d.Threshold
}

// blockAnchor maps a block invocation id to its anchor pixel. ok is false
// for invocations past the image edge.
func blockAnchor(d Dims, gx, gy uint32) (col, row, anchor uint32, ok bool) {
	col, row = gx*BlockSize, gy*BlockSize
	if col >= d.Columns || row >= d.Rows {
		return 0, 0, 0, false
	}
	return col, row, row*d.Columns + col, true
}

// NeighborhoodMask returns the 16-bit mask of pixels around the block at
// (col, row) that can be 8-connected to one of its foreground pixels,
// clipped to the image.
func NeighborhoodMask(d Dims, col, row uint32, info uint32) uint32 {
	var p uint32
	if info&InfoA != 0 {
		p |= maskA
	}
	if info&InfoB != 0 {
		p |= maskB
	}
	if info&InfoC != 0 {
		p |= maskC
	}

	if col == 0 {
		p &= 0xEEEE
	}
	if col+1 >= d.Columns {
		p &= 0x3333
	} else if col+2 >= d.Columns {
		p &= 0x7777
	}
	if row == 0 {
		p &= 0xFFF0
	}
	if row+1 >= d.Rows {
		p &= 0x00FF
	} else if row+2 >= d.Rows {
		p &= 0x0FFF
	}
	return p
}

// InitBlock records the block's foreground pixels and links it to the first
// connected neighbor block among above-left, above, above-right and left.
// Later connected neighbors are recorded as merge bits.
func InitBlock(d Dims, b *Buffers, gx, gy uint32) {
	col, row, a, ok := blockAnchor(d, gx, gy)
	if !ok {
		return
	}
	x, y := int64(col), int64(row)
	pix := b.Pixels

	var info uint32
	if foreground(d, pix, x, y) {
		info |= InfoA
	}
	if foreground(d, pix, x+1, y) {
		info |= InfoB
	}
	if foreground(d, pix, x, y+1) {
		info |= InfoC
	}
	if foreground(d, pix, x+1, y+1) {
		info |= InfoD
	}

	p := NeighborhoodMask(d, col, row, info)
	w := d.Columns
	parent := a
	linked := false
	link := func(target, bit uint32) {
		if !linked {
			parent = target
			linked = true
			return
		}
		info |= bit
	}

	if p&(1<<0) != 0 && foreground(d, pix, x-1, y-1) {
		link(a-2*w-2, 0)
	}
	if (p&(1<<1) != 0 && foreground(d, pix, x, y-1)) ||
		(p&(1<<2) != 0 && foreground(d, pix, x+1, y-1)) {
		link(a-2*w, InfoQ)
	}
	if p&(1<<3) != 0 && foreground(d, pix, x+2, y-1) {
		link(a-2*w+2, InfoR)
	}
	if (p&(1<<4) != 0 && foreground(d, pix, x-1, y)) ||
		(p&(1<<8) != 0 && foreground(d, pix, x-1, y+1)) {
		link(a-2, InfoS)
	}

	atomic.StoreUint32(&b.Labels[a], parent)
	b.Info[a] = info
}

// CompressBlock shortens the anchor's parent chain to point at its root.
func CompressBlock(d Dims, b *Buffers, gx, gy uint32) {
	_, _, a, ok := blockAnchor(d, gx, gy)
	if !ok {
		return
	}
	findAndCompress(b.Labels, a, d.Blocks())
}

// MergeBlock unions the block with the neighbors flagged by Init.
func MergeBlock(d Dims, b *Buffers, gx, gy uint32) {
	_, _, a, ok := blockAnchor(d, gx, gy)
	if !ok {
		return
	}
	info := b.Info[a]
	if info&(InfoQ|InfoR|InfoS) == 0 {
		return
	}
	w, limit := d.Columns, d.Blocks()
	if info&InfoQ != 0 {
		union(b.Labels, a, a-2*w, limit)
	}
	if info&InfoR != 0 {
		union(b.Labels, a, a-2*w+2, limit)
	}
	if info&InfoS != 0 {
		union(b.Labels, a, a-2, limit)
	}
}

// FinalBlock writes root+1 into every foreground pixel of the block and 0
// into every background pixel.
func FinalBlock(d Dims, b *Buffers, gx, gy uint32) {
	col, row, a, ok := blockAnchor(d, gx, gy)
	if !ok {
		return
	}
	info := b.Info[a]
	label := atomic.LoadUint32(&b.Labels[a]) + 1
	w := d.Columns

	atomic.StoreUint32(&b.Labels[a], pick(info&InfoA, label))
	if col+1 < d.Columns {
		atomic.StoreUint32(&b.Labels[a+1], pick(info&InfoB, label))
	}
	if row+1 < d.Rows {
		atomic.StoreUint32(&b.Labels[a+w], pick(info&InfoC, label))
		if col+1 < d.Columns {
			atomic.StoreUint32(&b.Labels[a+w+1], pick(info&InfoD, label))
		}
	}
}

func pick(bit, label uint32) uint32 {
	if bit != 0 {
		return label
	}
	return 0
}

// VisualizePixel colors pixel (gx, gy) from its final label.
func VisualizePixel(d Dims, b *Buffers, gx, gy uint32) {
	if gx >= d.Columns || gy >= d.Rows {
		return
	}
	i := gy*d.Columns + gx
	b.RGBA[i] = LabelColor(d, atomic.LoadUint32(&b.Labels[i]))
}

// Invoke runs stage s for invocation (gx, gy).
func Invoke(s Stage, d Dims, b *Buffers, gx, gy uint32) {
	switch s {
	case StageInit:
		InitBlock(d, b, gx, gy)
	case StageCompress:
		CompressBlock(d, b, gx, gy)
	case StageMerge:
		MergeBlock(d, b, gx, gy)
	case StageFinal:
		FinalBlock(d, b, gx, gy)
	case StageVisualize:
		VisualizePixel(d, b, gx, gy)
	}
}
