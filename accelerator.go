// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ccl

import (
	"context"
	"errors"
	"sync"
)

// Labeler labels the 8-connected foreground components of a source.
type Labeler interface {
	Label(ctx context.Context, src *Source, cfg Config) (*Result, error)
}

// GPUAccelerator is an optional GPU labeling provider.
//
// When registered via RegisterAccelerator, Label tries the accelerator
// first. Returning ErrFallbackToCPU (or an error wrapping it) makes
// BackendAuto fall back to the software labeler.
//
// Users opt in through a blank import:
//
//	import _ "github.com/gogpu/ccl/gpu"
type GPUAccelerator interface {
	Labeler

	// Name returns the accelerator name.
	Name() string

	// Init is called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()
}

// DeviceProviderAware is implemented by accelerators that can reuse a GPU
// device owned by the host application.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   GPUAccelerator
)

// RegisterAccelerator registers the GPU accelerator. A later registration
// replaces and closes the previous one. If Init fails the accelerator is
// not registered.
func RegisterAccelerator(a GPUAccelerator) error {
	if a == nil {
		return errors.New("ccl: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	propagateLogger(a, Logger())
	return nil
}

// Accelerator returns the registered GPU accelerator, or nil.
func Accelerator() GPUAccelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider hands a device provider to the registered
// accelerator. It is a no-op when no accelerator is registered or the
// accelerator cannot share devices.
//
// The provider should implement HalDevice() any and HalQueue() any
// returning wgpu/hal types.
func SetAcceleratorDeviceProvider(provider any) error {
	a := Accelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
