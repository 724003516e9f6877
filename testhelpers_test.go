// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package krnl

import (
	"encoding/binary"
	"testing"

	"github.com/Leif-Rydenfalk/krnl/internal/engine"
	"github.com/Leif-Rydenfalk/krnl/internal/kerndesc"
	"github.com/Leif-Rydenfalk/krnl/internal/vk"
	"github.com/Leif-Rydenfalk/krnl/internal/vk/vktest"
)

// newTestEngine builds a fully functional Engine against the fake
// transport: real worker goroutines, a real BufferAllocator, a real
// KernelCache. It exercises every layer this package's public API is
// built on except for the GPU itself, since vktest.Fake's CmdDispatch
// performs no actual computation.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	fake := vktest.New()

	var device vk.Device
	fake.CreateDevice(0, &vk.DeviceCreateInfo{}, &device)
	var memProps vk.PhysicalDeviceMemoryProperties
	fake.GetPhysicalDeviceMemoryProperties(0, &memProps)

	inner, err := engine.NewFromCommander(fake, device, memProps, 0, 0, true, engine.Options{WorkerCount: 2})
	if err != nil {
		t.Fatalf("NewFromCommander: %v", err)
	}
	e := &Engine{inner: inner}
	t.Cleanup(e.Shutdown)
	return e
}

// mustEmptyMemEngine builds an Engine whose memory-property table declares
// no device-local memory type, only the host-visible type its worker's
// staging buffer needs, so every device-buffer Alloc call fails
// deterministically: used to exercise the OOM path without needing to
// actually exhaust a chunk's capacity.
func mustEmptyMemEngine(t *testing.T) *engine.Engine {
	t.Helper()
	fake := vktest.New()
	var device vk.Device
	fake.CreateDevice(0, &vk.DeviceCreateInfo{}, &device)

	var memProps vk.PhysicalDeviceMemoryProperties
	memProps.MemoryTypeCount = 1
	memProps.MemoryTypes[0] = vk.MemoryType{PropertyFlags: vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit, HeapIndex: 0}
	memProps.MemoryHeapCount = 1
	memProps.MemoryHeaps[0] = vk.MemoryHeap{Size: 1 << 30}

	inner, err := engine.NewFromCommander(fake, device, memProps, 0, 0, true, engine.Options{WorkerCount: 1})
	if err != nil {
		t.Fatalf("NewFromCommander: %v", err)
	}
	return inner
}

// These constants mirror the handful of standard SPIR-V opcode numbers the
// test artifacts below need; they are small, stable constants from the
// SPIR-V specification itself, not values this codebase invents.
const (
	testOpDecorate       = 71
	testOpTypeInt        = 21
	testOpSpecConstant   = 50
	testDecorationSpecID = 1
)

// buildMinimalSPIRV assembles the smallest SPIR-V module the specializer
// accepts: numSpecs spec constants (each a 32-bit integer, SpecId
// 0..numSpecs-1) plus the implicit thread-count spec constant at SpecId
// numSpecs, matching the shape a real compiled kernel declares.
func buildMinimalSPIRV(numSpecs int) []byte {
	var words []uint32
	words = append(words, 0x07230203, 0x10000, 0, 200, 0) // header

	nextID := uint32(100)
	typeID := nextID
	nextID++
	words = append(words, uint32(4)<<16|testOpTypeInt, typeID, 32, 0)

	for i := 0; i <= numSpecs; i++ {
		id := nextID
		nextID++
		words = append(words, uint32(4)<<16|testOpDecorate, id, testDecorationSpecID, uint32(i))
		words = append(words, uint32(4)<<16|testOpSpecConstant, typeID, id, 0)
	}

	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// buildArtifact encodes a kerndesc.Descriptor around a minimal SPIR-V
// module, ready for NewKernelBuilder.
func buildArtifact(t *testing.T, name string, threads uint32, slices []kerndesc.SliceDesc, pushes []kerndesc.PushDesc, specs []kerndesc.SpecDesc) []byte {
	t.Helper()
	spirvBytes := buildMinimalSPIRV(len(specs))
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	d := &kerndesc.Descriptor{
		Name:       name,
		SPIRV:      words,
		Threads:    threads,
		SpecDescs:  specs,
		SliceDescs: slices,
		PushDescs:  pushes,
	}
	encoded, err := kerndesc.Encode(d)
	if err != nil {
		t.Fatalf("kerndesc.Encode: %v", err)
	}
	return encoded
}
