// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"errors"
	"unsafe"
)

// ErrDeviceLost is returned internally whenever a spin-waiter observes the
// engine's exited flag before the future or worker it's waiting on becomes
// ready. The public API wraps this into krnl.DeviceLostError.
var ErrDeviceLost = errors.New("engine: device lost")

func uintptrOf(p *futureLock) uintptr {
	return uintptr(unsafe.Pointer(p))
}
