// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package labelcompute

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Workgroup geometry shared by the WGSL kernels and the CPU port.
const (
	// WorkgroupSize is the edge of the square 8x8 compute workgroup.
	WorkgroupSize = 8

	// BlockSize is the edge of a labeling block. Stages 1-5 run one
	// invocation per 2x2 block.
	BlockSize = 2

	// BlockSpan is the number of pixels one workgroup covers per axis in
	// the block stages.
	BlockSpan = WorkgroupSize * BlockSize

	// UniformSize is the byte size of the dimensions uniform.
	UniformSize = 16
)

// MaxPixels is the largest pixel count that can be labeled. Labels are
// stored as anchor index + 1 in a u32, so W*H must stay below 2^32-1.
const MaxPixels = math.MaxUint32 - 1

var (
	// ErrImageTooLarge is returned when W*H does not fit the u32 label range.
	ErrImageTooLarge = errors.New("ccl: image too large")

	// ErrEmptyImage is returned for images with a zero dimension.
	ErrEmptyImage = errors.New("ccl: empty image")
)

// Palette selects how Label-to-Visualization colors labels.
type Palette uint32

const (
	// PaletteHash assigns each label a pseudo-random bright color.
	PaletteHash Palette = iota

	// PaletteGrey maps labels linearly to grey levels.
	PaletteGrey
)

// String returns the palette name used by the CLI flags.
func (p Palette) String() string {
	switch p {
	case PaletteHash:
		return "hash"
	case PaletteGrey:
		return "grey"
	default:
		return fmt.Sprintf("Palette(%d)", uint32(p))
	}
}

// ParsePalette parses a palette name as produced by Palette.String.
func ParsePalette(s string) (Palette, error) {
	switch s {
	case "hash", "":
		return PaletteHash, nil
	case "grey", "gray":
		return PaletteGrey, nil
	}
	return 0, fmt.Errorf("ccl: unknown palette %q", s)
}

// Dims is the dimensions descriptor bound as a uniform to every kernel.
//
// The GPU layout is four u32 words: columns, rows, threshold, palette.
type Dims struct {
	Columns   uint32
	Rows      uint32
	Threshold uint32
	Palette   Palette
}

// NewDims validates the image size and returns its descriptor.
func NewDims(width, height int, threshold uint8, palette Palette) (Dims, error) {
	if width <= 0 || height <= 0 {
		return Dims{}, fmt.Errorf("%w: %dx%d", ErrEmptyImage, width, height)
	}
	if uint64(width)*uint64(height) > MaxPixels {
		return Dims{}, fmt.Errorf("%w: %dx%d pixels", ErrImageTooLarge, width, height)
	}
	return Dims{
		Columns:   uint32(width),
		Rows:      uint32(height),
		Threshold: uint32(threshold),
		Palette:   palette,
	}, nil
}

// Pixels returns W*H.
func (d Dims) Pixels() uint64 {
	return uint64(d.Columns) * uint64(d.Rows)
}

// BufferSize returns the byte size of one u32-per-pixel buffer.
func (d Dims) BufferSize() uint64 {
	return d.Pixels() * 4
}

// Blocks returns the number of 2x2 blocks covering the image. It bounds
// every parent-chain walk.
func (d Dims) Blocks() uint32 {
	return CeilDiv(d.Columns, BlockSize) * CeilDiv(d.Rows, BlockSize)
}

// Uniform encodes d as the 16-byte little-endian uniform record.
func (d Dims) Uniform() []byte {
	buf := make([]byte, UniformSize)
	binary.LittleEndian.PutUint32(buf[0:], d.Columns)
	binary.LittleEndian.PutUint32(buf[4:], d.Rows)
	binary.LittleEndian.PutUint32(buf[8:], d.Threshold)
	binary.LittleEndian.PutUint32(buf[12:], uint32(d.Palette))
	return buf
}

// CeilDiv returns ceil(n / d) for d > 0.
func CeilDiv(n, d uint32) uint32 {
	return n/d + boolToU32(n%d != 0)
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Stage identifies one compute kernel.
type Stage int

const (
	StageInit Stage = iota
	StageCompress
	StageMerge
	StageFinal
	StageVisualize
)

// Kernels lists every compute kernel once.
var Kernels = []Stage{StageInit, StageCompress, StageMerge, StageFinal, StageVisualize}

// Dispatches is the order in which the kernels are dispatched. Compress runs
// twice: once to flatten the Init forest and once after Merge.
var Dispatches = []Stage{StageInit, StageCompress, StageMerge, StageCompress, StageFinal, StageVisualize}

// String returns the WGSL entry point of the stage.
func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init_labeling"
	case StageCompress:
		return "compress"
	case StageMerge:
		return "merge"
	case StageFinal:
		return "final_labeling"
	case StageVisualize:
		return "label_to_rgba"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// PerPixel reports whether the stage runs one invocation per pixel rather
// than one per 2x2 block.
func (s Stage) PerPixel() bool {
	return s == StageVisualize
}

// WorkgroupCounts returns the dispatch grid of stage s for image d.
func WorkgroupCounts(s Stage, d Dims) (x, y uint32) {
	if s.PerPixel() {
		return CeilDiv(d.Columns, WorkgroupSize), CeilDiv(d.Rows, WorkgroupSize)
	}
	return CeilDiv(d.Columns, BlockSpan), CeilDiv(d.Rows, BlockSpan)
}
