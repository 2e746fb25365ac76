// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ccl

import (
	"runtime"
	"testing"
	"time"
)

func TestNewConfigDefault(t *testing.T) {
	cfg := NewConfig()
	if cfg != DefaultConfig() {
		t.Errorf("NewConfig() = %+v, want %+v", cfg, DefaultConfig())
	}
	if cfg.Backend != BackendAuto || cfg.Palette != PaletteHash || cfg.Threshold != 0 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
}

func TestOptions(t *testing.T) {
	procs := runtime.GOMAXPROCS(0)
	tests := []struct {
		name  string
		opts  []Option
		check func(Config) bool
	}{
		{"threshold", []Option{WithThreshold(200)}, func(c Config) bool { return c.Threshold == 200 }},
		{"palette", []Option{WithPalette(PaletteGrey)}, func(c Config) bool { return c.Palette == PaletteGrey }},
		{"workers", []Option{WithWorkers(3)}, func(c Config) bool { return c.Workers == 3 }},
		{"workers zero", []Option{WithWorkers(0)}, func(c Config) bool { return c.Workers == procs }},
		{"workers negative", []Option{WithWorkers(-2)}, func(c Config) bool { return c.Workers == procs }},
		{"backend", []Option{WithBackend(BackendCPU)}, func(c Config) bool { return c.Backend == BackendCPU }},
		{"timeout", []Option{WithTimeout(time.Second)}, func(c Config) bool { return c.Timeout == time.Second }},
		{"timeout zero keeps default", []Option{WithTimeout(0)}, func(c Config) bool { return c.Timeout == DefaultTimeout }},
		{
			"last wins",
			[]Option{WithThreshold(1), WithThreshold(9)},
			func(c Config) bool { return c.Threshold == 9 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if cfg := NewConfig(tt.opts...); !tt.check(cfg) {
				t.Errorf("unexpected config %+v", cfg)
			}
		})
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"", BackendAuto, false},
		{"auto", BackendAuto, false},
		{"cpu", BackendCPU, false},
		{"gpu", BackendGPU, false},
		{"tpu", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBackend(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBackend(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr && tt.in != "" && got.String() != tt.in {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), tt.in)
		}
	}
	if got := Backend(7).String(); got != "Backend(7)" {
		t.Errorf("Backend(7).String() = %q", got)
	}
}

func TestParsePaletteAlias(t *testing.T) {
	p, err := ParsePalette("grey")
	if err != nil || p != PaletteGrey {
		t.Errorf("ParsePalette(grey) = %v, %v", p, err)
	}
	if _, err := ParsePalette("rainbow"); err == nil {
		t.Error("expected error for unknown palette")
	}
}
