// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package krnl

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leif-Rydenfalk/krnl/internal/engine"
)

// Options configures Engine construction.
type Options struct {
	// DeviceIndex selects which enumerated physical device to use; 0 picks
	// the first.
	DeviceIndex int
	// DebugPrintf keeps NonSemantic.DebugPrintf instructions in kernels
	// built on this engine; otherwise Build strips them. Kernel panics are
	// not surfaced: no panic flag is allocated or checked after a dispatch.
	DebugPrintf bool
	// WorkerCount overrides the default of two workers per queue; 0 keeps
	// the default.
	WorkerCount int
}

// Engine owns a Vulkan device, its queues, and the worker pool that
// services every Dispatch, Upload, and Download issued against buffers it
// allocated.
type Engine struct {
	inner       *engine.Engine
	debugPrintf bool
}

// New enumerates physical devices, creates a logical device for
// opts.DeviceIndex, and spawns its worker pool. Construction fails if the
// device has no compute-capable queue family or no physical devices are
// present.
func New(opts Options) (*Engine, error) {
	e, err := engine.New(engine.Options{
		DeviceIndex: opts.DeviceIndex,
		DebugPrintf: opts.DebugPrintf,
		WorkerCount: opts.WorkerCount,
		Logger:      Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("krnl: %w", err)
	}
	return &Engine{inner: e, debugPrintf: opts.DebugPrintf}, nil
}

// Features returns the capability set this engine's device supports.
func (e *Engine) Features() Features {
	return Features(e.inner.Features())
}

// Wait blocks until every Dispatch, Upload, and Download issued against
// this engine before the call completes. A lost device surfaces as
// DeviceLostError rather than hanging.
func (e *Engine) Wait(ctx context.Context) error {
	if err := e.inner.Wait(ctx); err != nil {
		return e.deviceLostErr(err)
	}
	return nil
}

// Shutdown stops the engine's workers and destroys its Vulkan device. Safe
// to call more than once. Buffers and kernels built from this engine must
// not be used afterward.
func (e *Engine) Shutdown() {
	e.inner.Shutdown()
}

func (e *Engine) deviceLostErr(err error) error {
	if errors.Is(err, engine.ErrDeviceLost) {
		_, device := e.inner.Device()
		return &DeviceLostError{Index: e.inner.DeviceIndex(), Handle: uint64(device), Cause: err}
	}
	return err
}

