// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ccl

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/ccl/internal/gpu/labelcompute"
)

// Source is the input raster: one packed RGBA8 texel per pixel, row-major,
// R in the low byte. A pixel is foreground when R exceeds the threshold.
type Source struct {
	Width  int
	Height int
	Pixels []uint32
}

// NewSource wraps packed texels. The slice is not copied.
func NewSource(width, height int, pixels []uint32) (*Source, error) {
	s := &Source{Width: width, Height: height, Pixels: pixels}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the dimensions against the texel count and the label
// range.
func (s *Source) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil source", ErrInvalidSource)
	}
	if _, err := labelcompute.NewDims(s.Width, s.Height, 0, PaletteHash); err != nil {
		return err
	}
	if len(s.Pixels) != s.Width*s.Height {
		return fmt.Errorf("%w: %d texels for %dx%d", ErrInvalidSource, len(s.Pixels), s.Width, s.Height)
	}
	return nil
}

// FromImage converts any image to a Source. Grey images keep their level
// in R, so the threshold applies to luminance.
func FromImage(img image.Image) (*Source, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: %v", ErrEmptyImage, b)
	}

	// SubImage keeps the parent's trailing rows in Pix, so only the first
	// 4*W*H bytes belong to the image.
	n := 4 * b.Dx() * b.Dy()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) || rgba.Stride != 4*b.Dx() || len(rgba.Pix) < n {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Copy(rgba, image.Point{}, img, b, draw.Src, nil)
	}
	return NewSource(b.Dx(), b.Dy(), labelcompute.PackPixels(rgba.Pix[:n]))
}

// FromMask builds a Source from a row-major foreground mask.
func FromMask(width, height int, mask []bool) (*Source, error) {
	if len(mask) != width*height {
		return nil, fmt.Errorf("%w: %d mask entries for %dx%d", ErrInvalidSource, len(mask), width, height)
	}
	px := make([]uint32, len(mask))
	for i, fg := range mask {
		if fg {
			px[i] = labelcompute.PackRGBA(0xFF, 0xFF, 0xFF, 0xFF)
		} else {
			px[i] = labelcompute.PackRGBA(0, 0, 0, 0xFF)
		}
	}
	return NewSource(width, height, px)
}

// Scaled returns a nearest-neighbor resampled copy of s, which keeps binary
// inputs binary.
func (s *Source) Scaled(width, height int) (*Source, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, width, height)
	}
	src := s.RGBA()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return NewSource(width, height, labelcompute.PackPixels(dst.Pix))
}

// RGBA returns the source as an image.
func (s *Source) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	labelcompute.UnpackPixels(img.Pix, s.Pixels)
	return img
}
