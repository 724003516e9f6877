// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package slab

import (
	"testing"

	"github.com/Leif-Rydenfalk/krnl/internal/vk"
)

func testMemoryProperties() *vk.PhysicalDeviceMemoryProperties {
	props := &vk.PhysicalDeviceMemoryProperties{
		MemoryHeapCount: 2,
		MemoryTypeCount: 3,
	}
	props.MemoryHeaps[0] = vk.MemoryHeap{Size: 256 << 20}
	props.MemoryHeaps[1] = vk.MemoryHeap{Size: 8192 << 20}

	// type 0: small device-local heap
	props.MemoryTypes[0] = vk.MemoryType{PropertyFlags: vk.MemoryPropertyDeviceLocalBit, HeapIndex: 0}
	// type 1: large device-local heap, also host-visible (unified memory)
	props.MemoryTypes[1] = vk.MemoryType{
		PropertyFlags: vk.MemoryPropertyDeviceLocalBit | vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit,
		HeapIndex:     1,
	}
	// type 2: host-only heap
	props.MemoryTypes[2] = vk.MemoryType{
		PropertyFlags: vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit,
		HeapIndex:     0,
	}
	return props
}

func TestNewBufferAllocatorOrdersByDescendingHeapSize(t *testing.T) {
	a := NewBufferAllocator(nil, 0, testMemoryProperties())

	if len(a.classes[Device]) != 2 {
		t.Fatalf("want 2 device-local candidate types, got %d", len(a.classes[Device]))
	}
	if a.classes[Device][0].typeIndex != 1 {
		t.Fatalf("largest device-local heap should be preferred first, got type %d", a.classes[Device][0].typeIndex)
	}

	if len(a.classes[Host]) != 2 {
		t.Fatalf("want 2 host-visible candidate types, got %d", len(a.classes[Host]))
	}
	if a.classes[Host][0].typeIndex != 1 {
		t.Fatalf("largest host-visible heap should be preferred first, got type %d", a.classes[Host][0].typeIndex)
	}
}

func TestWeakChunkLifecycle(t *testing.T) {
	w := &weakChunk{}
	if _, ok := w.get(); ok {
		t.Fatal("a zero-value weakChunk must not report alive")
	}

	c := &Chunk{size: 4096}
	w.set(c)
	got, ok := w.get()
	if !ok || got != c {
		t.Fatal("weakChunk.get should return the chunk just set")
	}

	w.markDead(c)
	if _, ok := w.get(); ok {
		t.Fatal("weakChunk.get should not return a chunk after markDead")
	}
}

func TestOomErrorMessage(t *testing.T) {
	err := &OomError{Kind: Device, Requested: 4096}
	if err.Error() == "" {
		t.Fatal("OomError.Error() must not be empty")
	}
}
