// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ccl

import (
	"image"
	"sort"

	"github.com/gogpu/ccl/internal/gpu/labelcompute"
)

// Labels is a dense label image. Data[y*Width+x] is 0 for background and
// otherwise the component label, equal to the smallest 2x2 block anchor
// index of the component plus one.
type Labels struct {
	Width  int
	Height int
	Data   []uint32
}

// At returns the label of pixel (x, y), or 0 outside the image.
func (l *Labels) At(x, y int) uint32 {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return 0
	}
	return l.Data[y*l.Width+x]
}

// Background reports whether pixel (x, y) is unlabeled.
func (l *Labels) Background(x, y int) bool {
	return l.At(x, y) == 0
}

// Sizes returns the pixel count of every component.
func (l *Labels) Sizes() map[uint32]int {
	sizes := make(map[uint32]int)
	for _, v := range l.Data {
		if v != 0 {
			sizes[v]++
		}
	}
	return sizes
}

// Count returns the number of components.
func (l *Labels) Count() int {
	return len(l.Sizes())
}

// Components returns the distinct labels in ascending order.
func (l *Labels) Components() []uint32 {
	sizes := l.Sizes()
	out := make([]uint32, 0, len(sizes))
	for v := range sizes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Result is the output of a Label call.
type Result struct {
	Labels *Labels

	// Visualization is the label_to_rgba output.
	Visualization *image.RGBA

	// Backend names the labeler that produced the result.
	Backend string
}

// NewResult assembles a Result from the raw label and packed RGBA buffers
// of a labeling run. Accelerators use it to return their read-back data.
func NewResult(width, height int, labels, rgba []uint32, backend string) *Result {
	vis := image.NewRGBA(image.Rect(0, 0, width, height))
	labelcompute.UnpackPixels(vis.Pix, rgba)
	return &Result{
		Labels:        &Labels{Width: width, Height: height, Data: labels},
		Visualization: vis,
		Backend:       backend,
	}
}
