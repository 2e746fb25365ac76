// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ccl"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Accelerator labels sources on the GPU through wgpu/hal compute kernels.
// It implements ccl.GPUAccelerator.
//
// The device is opened on first use. A host application can hand over its
// own device with SetDeviceProvider; a shared device is never destroyed.
type Accelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	limits   gputypes.Limits

	initTried      bool
	initErr        error
	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

var (
	_ ccl.GPUAccelerator      = (*Accelerator)(nil)
	_ ccl.DeviceProviderAware = (*Accelerator)(nil)
)

// Name returns the accelerator name.
func (a *Accelerator) Name() string { return "bke-gpu" }

// Init is a no-op. The device is opened lazily by the first Label call so
// that importing the package never touches the GPU.
func (a *Accelerator) Init() error { return nil }

// SetLogger sets the logger for the GPU package.
// Called by ccl.SetLogger to propagate the logger.
func (a *Accelerator) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// Close releases the device unless it is shared.
func (a *Accelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseDevice()
	a.initTried = false
	a.initErr = nil
}

func (a *Accelerator) releaseDevice() {
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.instance = nil
	a.queue = nil
	a.limits = gputypes.Limits{}
	a.gpuReady = false
	a.externalDevice = false
}

// SetDeviceProvider switches the accelerator to a shared GPU device. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue. A provider that also implements HalLimits() any
// returning gputypes.Limits reports the limits its device was opened with;
// otherwise gputypes.DefaultLimits is assumed.
func (a *Accelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}
	limits := gputypes.DefaultLimits()
	if lp, ok := provider.(interface{ HalLimits() any }); ok {
		l, ok := lp.HalLimits().(gputypes.Limits)
		if !ok {
			return fmt.Errorf("gpu: provider HalLimits is not gputypes.Limits")
		}
		limits = l
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.releaseDevice()
	a.device = device
	a.queue = queue
	a.limits = limits
	a.externalDevice = true
	a.gpuReady = true
	a.initTried = true
	a.initErr = nil
	slogger().Info("gpu: switched to shared GPU device")
	return nil
}

// Label runs the six labeling dispatches on the GPU and reads the labels
// and visualization back. Device initialization failures and images larger
// than the device's buffer limits wrap ccl.ErrFallbackToCPU.
func (a *Accelerator) Label(ctx context.Context, src *ccl.Source, cfg ccl.Config) (*ccl.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureDevice(); err != nil {
		return nil, fmt.Errorf("%w: %w", ccl.ErrFallbackToCPU, err)
	}

	p, err := NewPipeline(a.device, a.queue, a.limits, src, cfg)
	if err != nil {
		return nil, err
	}
	defer p.Destroy()

	labels, rgba, err := p.Run(ctx)
	if err != nil {
		return nil, err
	}
	return ccl.NewResult(src.Width, src.Height, labels, rgba, a.Name()), nil
}

// ensureDevice opens a device on first use. A failed attempt is remembered
// until Close.
func (a *Accelerator) ensureDevice() error {
	if a.gpuReady {
		return nil
	}
	if a.initTried {
		return a.initErr
	}
	a.initTried = true
	if err := a.initGPU(); err != nil {
		a.releaseDevice()
		a.initErr = err
		slogger().Warn("gpu: GPU init failed", "err", err)
		return err
	}
	return nil
}

func (a *Accelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("%w: vulkan backend not available", ccl.ErrNoGPU)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("%w: no GPU adapters found", ccl.ErrNoGPU)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	a.limits = limits
	a.gpuReady = true
	slogger().Info("gpu: labeling accelerator initialized", "adapter", selected.Info.Name)
	return nil
}
