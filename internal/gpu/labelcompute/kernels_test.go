// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package labelcompute

import (
	"sync"
	"testing"
)

func TestNeighborhoodMask(t *testing.T) {
	tests := []struct {
		name     string
		w, h     uint32
		col, row uint32
		info     uint32
		want     uint32
	}{
		{"background", 8, 8, 2, 2, 0, 0},
		{"a interior", 8, 8, 2, 2, InfoA, 0x777},
		{"b interior", 8, 8, 2, 2, InfoB, 0x777 << 1},
		{"c interior", 8, 8, 2, 2, InfoC, 0x777 << 4},
		{"d only", 8, 8, 2, 2, InfoD, 0},
		{"a top left", 8, 8, 0, 0, InfoA, 0x660},
		{"1x1", 1, 1, 0, 0, InfoA, 0x020},
		{"b last column", 3, 8, 2, 2, InfoB, 0x777 << 1 & 0x3333},
		{"b even width", 4, 8, 2, 2, InfoB, 0x777 << 1 & 0x7777},
		{"c last row", 8, 3, 2, 2, InfoC, 0x777 << 4 & 0x00FF},
		{"c even height", 8, 4, 2, 2, InfoC, 0x777 << 4 & 0x0FFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Dims{Columns: tt.w, Rows: tt.h}
			got := NeighborhoodMask(d, tt.col, tt.row, tt.info)
			if got != tt.want {
				t.Errorf("NeighborhoodMask = %#04x, want %#04x", got, tt.want)
			}
		})
	}
}

// parseMask converts rows of '#' and '.' into texels.
func parseMask(rows []string) (Dims, []uint32) {
	d := Dims{Columns: uint32(len(rows[0])), Rows: uint32(len(rows))}
	px := make([]uint32, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		for _, c := range r {
			if c == '#' {
				px = append(px, white)
			} else {
				px = append(px, black)
			}
		}
	}
	return d, px
}

func TestInitBlock(t *testing.T) {
	tests := []struct {
		name       string
		rows       []string
		gx, gy     uint32
		wantParent uint32
		wantInfo   uint32
	}{
		{
			name:       "isolated block",
			rows:       []string{"....", ".##.", ".##.", "...."},
			gx:         0,
			gy:         0,
			wantParent: 0,
			wantInfo:   InfoD,
		},
		{
			name:       "above left",
			rows:       []string{"....", ".#..", "..#.", "...."},
			gx:         1,
			gy:         1,
			wantParent: 0,
			wantInfo:   InfoA,
		},
		{
			name:       "above",
			rows:       []string{"......", "..#...", "..#...", "......"},
			gx:         1,
			gy:         1,
			wantParent: 2,
			wantInfo:   InfoA,
		},
		{
			name:       "left",
			rows:       []string{"......", "......", ".##...", "......"},
			gx:         1,
			gy:         1,
			wantParent: 12,
			wantInfo:   InfoA,
		},
		{
			name:       "above right then left merge",
			rows:       []string{"......", "....#.", ".###..", "......"},
			gx:         1,
			gy:         1,
			wantParent: 4,
			wantInfo:   InfoA | InfoB | InfoS,
		},
		{
			name:       "above and left merge",
			rows:       []string{"......", "..#...", ".##...", "......"},
			gx:         1,
			gy:         1,
			wantParent: 2,
			wantInfo:   InfoA | InfoS,
		},
		{
			name:       "all neighbors",
			rows:       []string{"......", ".####.", ".###..", "......"},
			gx:         1,
			gy:         1,
			wantParent: 0,
			wantInfo:   InfoA | InfoB | InfoQ | InfoR | InfoS,
		},
		{
			name:       "left through c",
			rows:       []string{"....", "....", "....", ".##."},
			gx:         1,
			gy:         1,
			wantParent: 8,
			wantInfo:   InfoC,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, px := parseMask(tt.rows)
			b := NewBuffers(d, px)
			InitBlock(d, b, tt.gx, tt.gy)
			a := tt.gy*2*d.Columns + tt.gx*2
			if b.Labels[a] != tt.wantParent {
				t.Errorf("parent = %d, want %d", b.Labels[a], tt.wantParent)
			}
			if b.Info[a] != tt.wantInfo {
				t.Errorf("info = %07b, want %07b", b.Info[a], tt.wantInfo)
			}
		})
	}
}

func TestInitBlock_OutOfRangeIgnored(t *testing.T) {
	d, px := parseMask([]string{"###", "###", "###"})
	b := NewBuffers(d, px)
	InitBlock(d, b, 2, 0)
	InitBlock(d, b, 0, 2)
	for i := range b.Labels {
		if b.Labels[i] != 0 || b.Info[i] != 0 {
			t.Fatalf("invocation past the edge wrote slot %d", i)
		}
	}
}

func TestFinalBlock_EdgeClipping(t *testing.T) {
	// 3x3 image: the block at (2, 2) has only its anchor pixel.
	d := Dims{Columns: 3, Rows: 3}
	b := NewBuffers(d, make([]uint32, 9))
	b.Labels[8] = 8
	b.Info[8] = InfoA | InfoB | InfoC | InfoD
	FinalBlock(d, b, 1, 1)
	if b.Labels[8] != 9 {
		t.Errorf("anchor label = %d, want 9", b.Labels[8])
	}
	for i := range 8 {
		if b.Labels[i] != 0 {
			t.Errorf("label[%d] = %d, want untouched 0", i, b.Labels[i])
		}
	}
}

func TestUnion(t *testing.T) {
	// Two chains: 6 -> 4 -> 0 and 10 -> 8.
	labels := []uint32{0, 1, 2, 3, 0, 5, 4, 7, 8, 9, 8, 11}
	union(labels, 10, 6, 12)
	if got := find(labels, 10, 12); got != 0 {
		t.Errorf("find(10) = %d, want 0", got)
	}
	if labels[8] != 0 {
		t.Errorf("larger root 8 not linked under 0: %d", labels[8])
	}
	// Union of already joined nodes is a no-op.
	before := append([]uint32(nil), labels...)
	union(labels, 6, 10, 12)
	for i := range labels {
		if labels[i] != before[i] {
			t.Fatalf("no-op union changed slot %d", i)
		}
	}
}

func TestUnion_Concurrent(t *testing.T) {
	const n, workers = 512, 8
	for round := range 20 {
		labels := make([]uint32, n)
		for i := range labels {
			labels[i] = uint32(i)
		}
		// Join every neighbor pair from many goroutines, back to front
		// on odd workers, so unions race on the same roots.
		var wg sync.WaitGroup
		for w := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := range n - 1 {
					i := uint32(k)
					if w%2 == 1 {
						i = uint32(n - 2 - k)
					}
					if int(i)%workers == (w+round)%workers || w%2 == 1 {
						union(labels, i+1, i, n)
					}
				}
			}()
		}
		wg.Wait()

		for i := range uint32(n) {
			if got := find(labels, i, n); got != 0 {
				t.Fatalf("round %d: find(%d) = %d, want 0", round, i, got)
			}
		}
	}
}

func TestUnionRetries(t *testing.T) {
	for _, limit := range []uint32{0, 1, 12, 1 << 20} {
		if got := unionRetries(limit); got != 2*limit {
			t.Errorf("unionRetries(%d) = %d, want %d", limit, got, 2*limit)
		}
	}
}

func TestAtomicMin(t *testing.T) {
	labels := []uint32{5}
	if old := atomicMin(labels, 0, 7); old != 5 || labels[0] != 5 {
		t.Errorf("min with larger: old=%d slot=%d", old, labels[0])
	}
	if old := atomicMin(labels, 0, 2); old != 5 || labels[0] != 2 {
		t.Errorf("min with smaller: old=%d slot=%d", old, labels[0])
	}
}

func TestFindAndCompress(t *testing.T) {
	labels := []uint32{0, 1, 0, 3, 2, 5, 4}
	findAndCompress(labels, 6, 7)
	if labels[6] != 0 {
		t.Errorf("labels[6] = %d, want root 0", labels[6])
	}
	if labels[4] != 2 {
		t.Errorf("intermediate slot changed: labels[4] = %d", labels[4])
	}
}

func TestLabelColor(t *testing.T) {
	hash := Dims{Columns: 10, Rows: 10, Palette: PaletteHash}
	grey := Dims{Columns: 10, Rows: 10, Palette: PaletteGrey}

	if LabelColor(hash, 0) != Background || LabelColor(grey, 0) != Background {
		t.Error("label 0 must be opaque black")
	}

	for label := uint32(1); label <= 100; label++ {
		r, g, b, a := UnpackRGBA(LabelColor(hash, label))
		if a != 0xFF {
			t.Fatalf("label %d alpha = %d", label, a)
		}
		if r < 0x20 || g < 0x20 || b < 0x20 {
			t.Fatalf("label %d too dark: %d,%d,%d", label, r, g, b)
		}
	}

	tests := []struct {
		label uint32
		want  uint8
	}{
		{1, 2},
		{50, 127},
		{100, 255},
	}
	for _, tt := range tests {
		r, g, b, a := UnpackRGBA(LabelColor(grey, tt.label))
		if r != tt.want || g != tt.want || b != tt.want || a != 0xFF {
			t.Errorf("grey(%d) = %d,%d,%d,%d, want %d", tt.label, r, g, b, a, tt.want)
		}
	}
}

func TestHashLabel(t *testing.T) {
	if HashLabel(0) != 0 {
		t.Errorf("HashLabel(0) = %#x, want 0", HashLabel(0))
	}
	seen := make(map[uint32]bool)
	for x := uint32(1); x < 1000; x++ {
		h := HashLabel(x)
		if seen[h] {
			t.Fatalf("collision at %d", x)
		}
		seen[h] = true
	}
}

func TestPackRGBA(t *testing.T) {
	px := PackRGBA(0x11, 0x22, 0x33, 0x44)
	if px != 0x44332211 {
		t.Errorf("PackRGBA = %#08x", px)
	}
	r, g, b, a := UnpackRGBA(px)
	if r != 0x11 || g != 0x22 || b != 0x33 || a != 0x44 {
		t.Errorf("UnpackRGBA = %x %x %x %x", r, g, b, a)
	}

	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	texels := PackPixels(raw)
	if len(texels) != 2 || texels[1] != 0x08070605 {
		t.Errorf("PackPixels = %#x", texels)
	}
	out := make([]byte, 8)
	UnpackPixels(out, texels)
	for i := range raw {
		if out[i] != raw[i] {
			t.Fatalf("UnpackPixels[%d] = %d, want %d", i, out[i], raw[i])
		}
	}
}
