// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vktest

import (
	"testing"
	"unsafe"

	"github.com/Leif-Rydenfalk/krnl/internal/vk"
)

func TestFakeCopyBufferMovesBytes(t *testing.T) {
	f := New()

	var device vk.Device
	f.CreateDevice(0, &vk.DeviceCreateInfo{}, &device)

	var memA, memB vk.DeviceMemory
	f.AllocateMemory(device, &vk.MemoryAllocateInfo{AllocationSize: 64}, &memA)
	f.AllocateMemory(device, &vk.MemoryAllocateInfo{AllocationSize: 64}, &memB)

	var bufA, bufB vk.Buffer
	f.CreateBuffer(device, &vk.BufferCreateInfo{Size: 64}, &bufA)
	f.CreateBuffer(device, &vk.BufferCreateInfo{Size: 64}, &bufB)
	f.BindBufferMemory(device, bufA, memA, 0)
	f.BindBufferMemory(device, bufB, memB, 0)

	var ptr unsafe.Pointer
	f.MapMemory(device, memA, 0, 64, &ptr)
	src := unsafe.Slice((*byte)(ptr), 64)
	for i := range src {
		src[i] = byte(i)
	}

	var pool vk.CommandPool
	f.CreateCommandPool(device, &vk.CommandPoolCreateInfo{}, &pool)
	var cb vk.CommandBuffer
	f.AllocateCommandBuffers(device, &vk.CommandBufferAllocateInfo{CommandPool: pool, CommandBufferCount: 1}, &cb)
	f.BeginCommandBuffer(cb, &vk.CommandBufferBeginInfo{})

	region := vk.BufferCopy{SrcOffset: 0, DstOffset: 0, Size: 64}
	f.CmdCopyBuffer(cb, bufA, bufB, 1, &region)
	f.EndCommandBuffer(cb)

	var queue vk.Queue
	f.GetDeviceQueue(device, 0, 0, &queue)
	var fence vk.Fence
	f.CreateFence(device, &vk.FenceCreateInfo{}, &fence)
	submit := &vk.SubmitInfo{CommandBufferCount: 1, PCommandBuffers: &cb}
	if r := f.QueueSubmit(queue, submit, fence); r != vk.Success {
		t.Fatalf("QueueSubmit: %v", r)
	}
	if r := f.WaitForFences(device, &fence, 0); r != vk.Success {
		t.Fatalf("WaitForFences: %v", r)
	}

	var ptrB unsafe.Pointer
	f.MapMemory(device, memB, 0, 64, &ptrB)
	dst := unsafe.Slice((*byte)(ptrB), 64)
	for i := range dst {
		if dst[i] != byte(i) {
			t.Fatalf("dst[%d] = %d, want %d", i, dst[i], byte(i))
		}
	}
}

func TestFakeSatisfiesCommander(t *testing.T) {
	var _ vk.Commander = New()
}
