// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package slab

import (
	"sort"
	"sync"

	"github.com/Leif-Rydenfalk/krnl/internal/vk"
)

// weakChunk models the allocator's non-owning view of a chunk slot. Go has
// no GC-level weak pointer, so liveness is tracked by hand: a slot is
// "dead" once its chunk's last allocation has been released, at which
// point the allocator is free to overwrite the slot with a new chunk while
// any ChunkAlloc still referencing the old one keeps it alive on its own.
type weakChunk struct {
	mu    sync.Mutex
	chunk *Chunk
	alive bool
}

func (w *weakChunk) get() (*Chunk, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.alive {
		return nil, false
	}
	return w.chunk, true
}

func (w *weakChunk) set(c *Chunk) {
	w.mu.Lock()
	w.chunk = c
	w.alive = true
	w.mu.Unlock()
}

func (w *weakChunk) markDead(c *Chunk) {
	w.mu.Lock()
	if w.chunk == c {
		w.alive = false
	}
	w.mu.Unlock()
}

// memoryClass is one candidate Vulkan memory type for a Kind, ordered by
// descending heap size so the allocator prefers the largest heap first.
type memoryClass struct {
	typeIndex   uint32
	heapSize    uint64
	hostVisible bool
}

// BufferAllocator is the chunk slab allocator for a single engine. It owns
// one weak-chunk slot array per Kind, sized to the number of candidate
// memory types for that kind, and hands out ChunkAlloc values backed by
// VkBuffer ranges.
type BufferAllocator struct {
	cmds   vk.Commander
	device vk.Device

	classes [2][]memoryClass // indexed by Kind
	slots   [2][]*weakChunk  // indexed by Kind, parallel to classes
}

// NewBufferAllocator builds the memory-class tables from the device's
// memory properties. Device-local types feed the Device slot array;
// host-visible types feed the Host slot array. A type that is both
// device-local and host-visible (unified memory) appears in both.
func NewBufferAllocator(cmds vk.Commander, device vk.Device, props *vk.PhysicalDeviceMemoryProperties) *BufferAllocator {
	a := &BufferAllocator{cmds: cmds, device: device}

	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		mt := props.MemoryTypes[i]
		heap := props.MemoryHeaps[mt.HeapIndex]
		hostVisible := mt.PropertyFlags&vk.MemoryPropertyHostVisibleBit != 0
		deviceLocal := mt.PropertyFlags&vk.MemoryPropertyDeviceLocalBit != 0

		if deviceLocal {
			a.classes[Device] = append(a.classes[Device], memoryClass{i, heap.Size, hostVisible})
		}
		if hostVisible {
			a.classes[Host] = append(a.classes[Host], memoryClass{i, heap.Size, hostVisible})
		}
	}

	for k := range a.classes {
		sort.Slice(a.classes[k], func(i, j int) bool { return a.classes[k][i].heapSize > a.classes[k][j].heapSize })
		a.slots[k] = make([]*weakChunk, len(a.classes[k]))
		for i := range a.slots[k] {
			a.slots[k][i] = &weakChunk{}
		}
	}

	return a
}

// Alloc allocates length bytes from the given memory class, reusing an
// existing chunk if one has room, otherwise creating a fresh chunk rounded
// up to ChunkGrain.
func (a *BufferAllocator) Alloc(kind Kind, length uint64) (*ChunkAlloc, error) {
	classes := a.classes[kind]
	slots := a.slots[kind]
	if len(classes) == 0 {
		return nil, &OomError{Kind: kind, Requested: length}
	}

	for i, slot := range slots {
		if chunk, ok := slot.get(); ok {
			if off, ok := chunk.alloc(length); ok {
				return &ChunkAlloc{chunk: chunk, Offset: off, Len: length}, nil
			}
		}
		_ = classes[i]
	}

	size := roundUp(length, ChunkGrain)
	for i, class := range classes {
		chunk, err := newChunk(a.cmds, a.device, kind, class.typeIndex, size, class.hostVisible)
		if err != nil {
			continue
		}
		slots[i].set(chunk)
		off, ok := chunk.alloc(length)
		if !ok {
			// size was rounded up to at least length, so this cannot happen
			// outside of a BlockAlign rounding edge case; treat as Oom.
			chunk.destroy()
			slots[i].markDead(chunk)
			continue
		}
		return &ChunkAlloc{chunk: chunk, Offset: off, Len: length}, nil
	}

	return nil, &OomError{Kind: kind, Requested: length}
}

// Release returns a suballocation to its chunk. When the chunk has no
// remaining live allocations its weak slot is marked dead so a future
// Alloc call may replace it; the Vulkan memory itself is torn down at that
// point since nothing still references the Chunk value.
func (a *BufferAllocator) Release(kind Kind, alloc *ChunkAlloc) {
	empty := alloc.release()
	if !empty {
		return
	}
	for _, slot := range a.slots[kind] {
		if c, ok := slot.get(); ok && c == alloc.chunk {
			slot.markDead(c)
			c.destroy()
			return
		}
	}
}
