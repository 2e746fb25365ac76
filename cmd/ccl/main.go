// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command ccl labels the 8-connected components of an image and writes a
// colored visualization.
//
// Usage:
//
//	ccl -in mask.png -out labels.png [-labels labels.zst] [-threshold 127]
//	    [-palette hash|grey] [-backend auto|cpu|gpu] [-workers N] [-config ccl.toml] [-v]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/ccl"
	_ "github.com/gogpu/ccl/gpu" // enable GPU labeling
	"github.com/gogpu/ccl/internal/imageio"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "ccl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	ccl.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	labelOpts, err := opts.labelOptions()
	if err != nil {
		return err
	}

	img, format, err := imageio.Load(opts.In)
	if err != nil {
		return err
	}
	src, err := ccl.FromImage(img)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := ccl.Label(ctx, src, labelOpts...)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := imageio.Save(opts.Out, res.Visualization); err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	size := fmt.Sprintf("%dx%d", src.Width, src.Height)
	p.Fprintf(stdout, "%s: %s %s, %d components (%s, %v)\n",
		opts.In, size, format, res.Labels.Count(), res.Backend, elapsed.Round(time.Microsecond))
	p.Fprintf(stdout, "buffers: %s per image buffer\n",
		humanize.IBytes(uint64(len(src.Pixels))*4)) //nolint:gosec // length is non-negative

	if opts.Labels != "" {
		raw, compressed, err := saveLabels(opts.Labels, res.Labels.Data)
		if err != nil {
			return err
		}
		p.Fprintf(stdout, "labels: %s (%s raw)\n",
			humanize.IBytes(uint64(compressed)), humanize.IBytes(uint64(raw))) //nolint:gosec // sizes are non-negative
	}
	return nil
}
