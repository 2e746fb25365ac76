// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package labelcompute

// Background is the packed color of unlabeled pixels: opaque black.
const Background uint32 = 0xFF000000

// HashLabel is the lowbias32 integer hash. It spreads neighboring labels
// across the color space.
func HashLabel(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// LabelColor returns the packed RGBA8 color of label under d's palette.
// Label 0 is background.
func LabelColor(d Dims, label uint32) uint32 {
	if label == 0 {
		return Background
	}
	if d.Palette == PaletteGrey {
		// Same f32 arithmetic as label_to_rgba.
		v := uint32(min(float32(label)*(255/float32(d.Pixels())), 255))
		return PackRGBA(uint8(v), uint8(v), uint8(v), 0xFF)
	}
	h := HashLabel(label)
	return PackRGBA(uint8(h)|0x20, uint8(h>>8)|0x20, uint8(h>>16)|0x20, 0xFF)
}
