// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// writeLabels writes labels as little-endian uint32 values, zstd-compressed.
// It returns the uncompressed size.
func writeLabels(w io.Writer, labels []uint32) (int64, error) {
	enc, err := zstd.NewWriter(w,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		return 0, fmt.Errorf("zstd writer: %w", err)
	}
	bw := bufio.NewWriter(enc)
	if err := binary.Write(bw, binary.LittleEndian, labels); err != nil {
		_ = enc.Close()
		return 0, fmt.Errorf("write labels: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return 0, fmt.Errorf("write labels: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("zstd close: %w", err)
	}
	return int64(len(labels)) * 4, nil
}

// readLabels is the inverse of writeLabels.
func readLabels(r io.Reader, n int) ([]uint32, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	labels := make([]uint32, n)
	if err := binary.Read(dec, binary.LittleEndian, labels); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return labels, nil
}

// saveLabels writes the label dump to path and returns the raw and
// compressed sizes.
func saveLabels(path string, labels []uint32) (raw, compressed int64, err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return 0, 0, fmt.Errorf("create %s: %w", path, err)
	}
	raw, err = writeLabels(f, labels)
	if err != nil {
		_ = f.Close()
		return 0, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return 0, 0, err
	}
	return raw, info.Size(), f.Close()
}
