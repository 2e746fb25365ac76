// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ccl

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gogpu/ccl/internal/gpu/labelcompute"
)

// DefaultTimeout bounds the wait for GPU work to complete.
const DefaultTimeout = 5 * time.Second

// Palette selects the visualization colors.
type Palette = labelcompute.Palette

const (
	// PaletteHash gives every label a pseudo-random bright color.
	PaletteHash = labelcompute.PaletteHash

	// PaletteGrey maps labels linearly onto grey levels.
	PaletteGrey = labelcompute.PaletteGrey
)

// ParsePalette parses "hash" or "grey".
func ParsePalette(s string) (Palette, error) {
	return labelcompute.ParsePalette(s)
}

// Backend selects where labeling runs.
type Backend int

const (
	// BackendAuto uses the registered GPU accelerator and falls back to the
	// CPU when it reports ErrFallbackToCPU.
	BackendAuto Backend = iota

	// BackendCPU always labels on the CPU.
	BackendCPU

	// BackendGPU requires the GPU accelerator.
	BackendGPU
)

func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendCPU:
		return "cpu"
	case BackendGPU:
		return "gpu"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend parses "auto", "cpu" or "gpu".
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "auto", "":
		return BackendAuto, nil
	case "cpu":
		return BackendCPU, nil
	case "gpu":
		return BackendGPU, nil
	}
	return 0, fmt.Errorf("ccl: unknown backend %q", s)
}

// Config holds the labeling parameters. Accelerators receive the resolved
// Config of each Label call.
type Config struct {
	// Threshold: a pixel is foreground when its R channel is above it.
	Threshold uint8

	// Palette of the visualization.
	Palette Palette

	// Workers is the CPU worker count; 0 means GOMAXPROCS.
	Workers int

	// Backend selects CPU, GPU or automatic dispatch.
	Backend Backend

	// Timeout bounds the GPU fence wait.
	Timeout time.Duration
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		Threshold: 0,
		Palette:   PaletteHash,
		Workers:   runtime.GOMAXPROCS(0),
		Backend:   BackendAuto,
		Timeout:   DefaultTimeout,
	}
}

// Option configures a Label call.
//
// Example:
//
//	res, err := ccl.Label(ctx, src,
//	    ccl.WithThreshold(127),
//	    ccl.WithPalette(ccl.PaletteGrey))
type Option func(*Config)

// NewConfig applies opts on top of DefaultConfig.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithThreshold sets the foreground threshold on the R channel.
func WithThreshold(t uint8) Option {
	return func(c *Config) {
		c.Threshold = t
	}
}

// WithPalette sets the visualization palette.
func WithPalette(p Palette) Option {
	return func(c *Config) {
		c.Palette = p
	}
}

// WithWorkers sets the number of CPU workers. Values <= 0 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Config) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		c.Workers = n
	}
}

// WithBackend selects the labeling backend.
func WithBackend(b Backend) Option {
	return func(c *Config) {
		c.Backend = b
	}
}

// WithTimeout bounds the GPU fence wait. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}
