// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// goffi calling convention: args[] must contain pointers to WHERE argument
// values are stored, not the values themselves. For pointer-typed
// parameters this means double indirection: store the pointer in a local,
// then pass the address of that local.
//
//	var value uint64 = 42
//	args[i] = unsafe.Pointer(&value)        // scalar: pointer to storage
//
//	ptr := unsafe.Pointer(&data[0])
//	args[i] = unsafe.Pointer(&ptr)           // pointer arg: pointer to the pointer

package vk

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
)

var (
	vulkanLib             unsafe.Pointer
	vkGetInstanceProcAddr unsafe.Pointer
	vkGetDeviceProcAddr   unsafe.Pointer
	cifGetInstanceProc    types.CallInterface
	cifGetDeviceProc      types.CallInterface

	initOnce sync.Once
	errInit  error
)

func libraryName() string {
	switch runtime.GOOS {
	case "windows":
		return "vulkan-1.dll"
	case "darwin":
		return "libvulkan.dylib"
	default:
		return "libvulkan.so.1"
	}
}

// Init loads the Vulkan loader library and prepares call signatures. Safe
// to call repeatedly; only the first call does work.
func Init() error {
	initOnce.Do(func() {
		errInit = doInit()
	})
	return errInit
}

func doInit() error {
	lib, err := ffi.LoadLibrary(libraryName())
	if err != nil {
		return fmt.Errorf("vk: load %s: %w", libraryName(), err)
	}
	vulkanLib = lib

	vkGetInstanceProcAddr, err = ffi.GetSymbol(vulkanLib, "vkGetInstanceProcAddr")
	if err != nil {
		return fmt.Errorf("vk: vkGetInstanceProcAddr not found: %w", err)
	}

	if err := ffi.PrepareCallInterface(&cifGetInstanceProc, types.DefaultCall,
		types.PointerTypeDescriptor,
		[]*types.TypeDescriptor{types.UInt64TypeDescriptor, types.PointerTypeDescriptor}); err != nil {
		return fmt.Errorf("vk: prepare GetInstanceProcAddr: %w", err)
	}
	if err := ffi.PrepareCallInterface(&cifGetDeviceProc, types.DefaultCall,
		types.PointerTypeDescriptor,
		[]*types.TypeDescriptor{types.UInt64TypeDescriptor, types.PointerTypeDescriptor}); err != nil {
		return fmt.Errorf("vk: prepare GetDeviceProcAddr: %w", err)
	}

	if err := initSignatures(); err != nil {
		return fmt.Errorf("vk: init signatures: %w", err)
	}
	return nil
}

// GetInstanceProcAddr resolves a Vulkan function by name. Pass instance=0
// for global functions (vkCreateInstance, vkEnumerateInstance*).
func GetInstanceProcAddr(instance Instance, name string) unsafe.Pointer {
	if vkGetInstanceProcAddr == nil {
		return nil
	}
	cname := append([]byte(name), 0)
	namePtr := unsafe.Pointer(&cname[0])
	var result unsafe.Pointer
	args := [2]unsafe.Pointer{unsafe.Pointer(&instance), unsafe.Pointer(&namePtr)}
	_ = ffi.CallFunction(&cifGetInstanceProc, vkGetInstanceProcAddr, unsafe.Pointer(&result), args[:])
	return result
}

// SetDeviceProcAddr primes the device-function resolver from an instance.
// Some drivers (Intel) don't accept instance=0 for vkGetDeviceProcAddr.
func SetDeviceProcAddr(instance Instance) {
	if vkGetDeviceProcAddr == nil {
		vkGetDeviceProcAddr = GetInstanceProcAddr(instance, "vkGetDeviceProcAddr")
	}
}

// GetDeviceProcAddr resolves a device-level Vulkan function by name.
func GetDeviceProcAddr(device Device, name string) unsafe.Pointer {
	if vkGetDeviceProcAddr == nil {
		vkGetDeviceProcAddr = GetInstanceProcAddr(0, "vkGetDeviceProcAddr")
		if vkGetDeviceProcAddr == nil {
			return nil
		}
	}
	cname := append([]byte(name), 0)
	namePtr := unsafe.Pointer(&cname[0])
	var result unsafe.Pointer
	args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&namePtr)}
	_ = ffi.CallFunction(&cifGetDeviceProc, vkGetDeviceProcAddr, unsafe.Pointer(&result), args[:])
	return result
}

// Close releases the Vulkan loader library.
func Close() error {
	if vulkanLib == nil {
		return nil
	}
	err := ffi.FreeLibrary(vulkanLib)
	vulkanLib = nil
	vkGetInstanceProcAddr = nil
	vkGetDeviceProcAddr = nil
	return err
}
