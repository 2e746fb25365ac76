// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/ccl"
)

// options holds the resolved command-line settings. TOML keys mirror the
// flag names.
type options struct {
	In        string `toml:"in"`
	Out       string `toml:"out"`
	Labels    string `toml:"labels"`
	Palette   string `toml:"palette"`
	Threshold uint   `toml:"threshold"`
	Backend   string `toml:"backend"`
	Workers   int    `toml:"workers"`
	Timeout   string `toml:"timeout"`
	Verbose   bool   `toml:"verbose"`
}

func defaultOptions() options {
	return options{
		Out:     "labels.png",
		Palette: "hash",
		Backend: "auto",
		Timeout: ccl.DefaultTimeout.String(),
	}
}

// parseOptions parses args. Values from the -config file are applied first;
// flags given explicitly on the command line override them.
func parseOptions(args []string) (options, error) {
	opts := defaultOptions()
	fs := flag.NewFlagSet("ccl", flag.ContinueOnError)

	var flagOpts options
	var config string
	fs.StringVar(&config, "config", "", "TOML config file")
	fs.StringVar(&flagOpts.In, "in", "", "input image (png, jpeg, bmp, tiff, webp)")
	fs.StringVar(&flagOpts.Out, "out", opts.Out, "output visualization (png, bmp, tiff)")
	fs.StringVar(&flagOpts.Labels, "labels", "", "optional zstd-compressed raw label dump")
	fs.StringVar(&flagOpts.Palette, "palette", opts.Palette, "visualization palette: hash or grey")
	fs.UintVar(&flagOpts.Threshold, "threshold", 0, "foreground threshold on the red channel (0-255)")
	fs.StringVar(&flagOpts.Backend, "backend", opts.Backend, "labeling backend: auto, cpu or gpu")
	fs.IntVar(&flagOpts.Workers, "workers", 0, "CPU workers (0 = GOMAXPROCS)")
	fs.StringVar(&flagOpts.Timeout, "timeout", opts.Timeout, "GPU fence timeout")
	fs.BoolVar(&flagOpts.Verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if config != "" {
		if _, err := toml.DecodeFile(config, &opts); err != nil {
			return options{}, fmt.Errorf("could not decode TOML config: %w", err)
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			opts.In = flagOpts.In
		case "out":
			opts.Out = flagOpts.Out
		case "labels":
			opts.Labels = flagOpts.Labels
		case "palette":
			opts.Palette = flagOpts.Palette
		case "threshold":
			opts.Threshold = flagOpts.Threshold
		case "backend":
			opts.Backend = flagOpts.Backend
		case "workers":
			opts.Workers = flagOpts.Workers
		case "timeout":
			opts.Timeout = flagOpts.Timeout
		case "v":
			opts.Verbose = flagOpts.Verbose
		}
	})

	if opts.In == "" {
		return options{}, fmt.Errorf("missing input image (-in)")
	}
	if opts.Threshold > 255 {
		return options{}, fmt.Errorf("threshold %d out of range 0-255", opts.Threshold)
	}
	return opts, nil
}

// labelOptions converts the settings into ccl options.
func (o options) labelOptions() ([]ccl.Option, error) {
	palette, err := ccl.ParsePalette(o.Palette)
	if err != nil {
		return nil, err
	}
	backend, err := ccl.ParseBackend(o.Backend)
	if err != nil {
		return nil, err
	}
	timeout, err := parseDuration(o.Timeout)
	if err != nil {
		return nil, err
	}
	return []ccl.Option{
		ccl.WithThreshold(uint8(o.Threshold)), //nolint:gosec // checked in parseOptions
		ccl.WithPalette(palette),
		ccl.WithBackend(backend),
		ccl.WithWorkers(o.Workers),
		ccl.WithTimeout(timeout),
	}, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	return d, nil
}
