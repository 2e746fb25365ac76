// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package labelcompute

// PackRGBA packs RGBA8 channels into the u32 texel layout used by every
// pixel buffer: R in the low byte, A in the high byte.
func PackRGBA(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

// UnpackRGBA is the inverse of PackRGBA.
func UnpackRGBA(px uint32) (r, g, b, a uint8) {
	return uint8(px), uint8(px >> 8), uint8(px >> 16), uint8(px >> 24)
}

// PackPixels converts a tightly packed RGBA8 byte slice (4 bytes per pixel)
// into u32 texels.
func PackPixels(pix []byte) []uint32 {
	out := make([]uint32, len(pix)/4)
	for i := range out {
		o := i * 4
		out[i] = PackRGBA(pix[o], pix[o+1], pix[o+2], pix[o+3])
	}
	return out
}

// UnpackPixels writes u32 texels into dst as RGBA8 bytes. dst must hold
// at least 4*len(texels) bytes.
func UnpackPixels(dst []byte, texels []uint32) {
	for i, px := range texels {
		o := i * 4
		dst[o], dst[o+1], dst[o+2], dst[o+3] = UnpackRGBA(px)
	}
}
