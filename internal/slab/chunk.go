// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package slab

import (
	"fmt"
	"sort"
	"sync"
	"unsafe"

	"github.com/Leif-Rydenfalk/krnl/internal/vk"
)

func vkErr(op string, r vk.Result) error {
	return fmt.Errorf("slab: %s: %s", op, r)
}

// block is a single live suballocation within a chunk, kept sorted by Offset.
type block struct {
	offset uint64
	len    uint64
}

// Chunk is one VkDeviceMemory (and, for storage buffers, one backing
// VkBuffer bound to it) carved into first-fit blocks. All mutation of the
// block list happens under mu; nothing else in a Chunk needs locking once
// constructed.
type Chunk struct {
	device  vk.Device
	cmds    vk.Commander
	memType uint32
	kind    Kind

	buffer vk.Buffer
	memory vk.DeviceMemory
	size   uint64
	mapped unsafe.Pointer // non-nil for host-visible chunks

	mu     sync.Mutex
	blocks []block
	live   int
}

// newChunk allocates a fresh VkBuffer+VkDeviceMemory pair of the requested
// size bound to memType, mapping it immediately if it is host-visible.
func newChunk(cmds vk.Commander, device vk.Device, kind Kind, memType uint32, size uint64, hostVisible bool) (*Chunk, error) {
	var buf vk.Buffer
	bufInfo := &vk.BufferCreateInfo{
		SType: vk.StructureTypeBufferCreateInfo,
		Size:  size,
		Usage: vk.BufferUsageStorageBufferBit | vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit,
	}
	if r := cmds.CreateBuffer(device, bufInfo, &buf); r != vk.Success {
		return nil, vkErr("vkCreateBuffer", r)
	}

	var req vk.MemoryRequirements
	cmds.GetBufferMemoryRequirements(device, buf, &req)

	var mem vk.DeviceMemory
	allocInfo := &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: memType,
	}
	if r := cmds.AllocateMemory(device, allocInfo, &mem); r != vk.Success {
		cmds.DestroyBuffer(device, buf)
		return nil, vkErr("vkAllocateMemory", r)
	}

	if r := cmds.BindBufferMemory(device, buf, mem, 0); r != vk.Success {
		cmds.FreeMemory(device, mem)
		cmds.DestroyBuffer(device, buf)
		return nil, vkErr("vkBindBufferMemory", r)
	}

	var mapped unsafe.Pointer
	if hostVisible {
		if r := cmds.MapMemory(device, mem, 0, size, &mapped); r != vk.Success {
			cmds.FreeMemory(device, mem)
			cmds.DestroyBuffer(device, buf)
			return nil, vkErr("vkMapMemory", r)
		}
	}

	return &Chunk{
		device:  device,
		cmds:    cmds,
		memType: memType,
		kind:    kind,
		buffer:  buf,
		memory:  mem,
		size:    size,
		mapped:  mapped,
	}, nil
}

// Buffer returns the VkBuffer backing this chunk; every allocation out of
// the chunk addresses a byte range within this single buffer.
func (c *Chunk) Buffer() vk.Buffer { return c.buffer }

// Mapped returns the persistently mapped host pointer, or nil if the chunk
// is not host-visible.
func (c *Chunk) Mapped() unsafe.Pointer { return c.mapped }

// alloc performs first-fit allocation of a block of the given length,
// rounded up to BlockAlign. Returns (offset, ok).
func (c *Chunk) alloc(length uint64) (uint64, bool) {
	length = roundUp(length, BlockAlign)
	if length > c.size {
		return 0, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var cursor uint64
	insertAt := len(c.blocks)
	for i, b := range c.blocks {
		if b.offset-cursor >= length {
			insertAt = i
			break
		}
		cursor = roundUp(b.offset+b.len, BlockAlign)
	}
	if insertAt == len(c.blocks) && c.size-cursor < length {
		return 0, false
	}

	offset := cursor
	c.blocks = append(c.blocks, block{})
	copy(c.blocks[insertAt+1:], c.blocks[insertAt:])
	c.blocks[insertAt] = block{offset: offset, len: length}
	c.live++
	return offset, true
}

// free releases the block at offset. Reports whether the chunk has no live
// allocations left after the release.
func (c *Chunk) free(offset uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := sort.Search(len(c.blocks), func(i int) bool { return c.blocks[i].offset >= offset })
	if idx < len(c.blocks) && c.blocks[idx].offset == offset {
		c.blocks = append(c.blocks[:idx], c.blocks[idx+1:]...)
		c.live--
	}
	return c.live == 0
}

// destroy releases the chunk's Vulkan resources. Only safe to call once no
// ChunkAlloc referencing it remains live.
func (c *Chunk) destroy() {
	if c.mapped != nil {
		c.cmds.UnmapMemory(c.device, c.memory)
	}
	c.cmds.DestroyBuffer(c.device, c.buffer)
	c.cmds.FreeMemory(c.device, c.memory)
}

// ChunkAlloc is a single suballocation handed out to a caller. It holds a
// strong reference to its owning Chunk so the chunk outlives every alloc
// carved from it regardless of what the allocator's weak slot thinks.
type ChunkAlloc struct {
	chunk  *Chunk
	Offset uint64
	Len    uint64
}

// Buffer returns the VkBuffer this allocation addresses into.
func (a *ChunkAlloc) Buffer() vk.Buffer { return a.chunk.Buffer() }

// Mapped returns a pointer to this allocation's region within the chunk's
// persistent mapping, or nil if the chunk is not host-visible.
func (a *ChunkAlloc) Mapped() unsafe.Pointer {
	if a.chunk.mapped == nil {
		return nil
	}
	return unsafe.Add(a.chunk.mapped, a.Offset)
}

// release frees the block back to its chunk, reporting whether the chunk
// is now empty. Only called through BufferAllocator.Release, which also
// decides whether an empty chunk should be torn down.
func (a *ChunkAlloc) release() bool {
	return a.chunk.free(a.Offset)
}
