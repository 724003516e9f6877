// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vktest

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/Leif-Rydenfalk/krnl/internal/vk"
)

// Fake is a software vk.Commander. The zero value is not usable; call New.
type Fake struct {
	next atomic.Uint64

	mu       sync.Mutex
	memories map[vk.DeviceMemory][]byte
	buffers  map[vk.Buffer]*fakeBuffer
	cmdBufs  map[vk.CommandBuffer]*recordedBuffer
}

type fakeBuffer struct {
	size   uint64
	memory vk.DeviceMemory
	offset uint64
}

type copyAction struct {
	src, dst vk.Buffer
	regions  []vk.BufferCopy
}

type recordedBuffer struct {
	copies []copyAction
}

// New returns a ready-to-use fake transport. One Fake simulates one
// "device": every resource it creates gets its handle from one counter
// shared by all resource kinds, so no two created resources share a
// handle. The physical-device handle (always 1) and queue handles (derived
// from family and queue index) are fixed values outside that counter.
func New() *Fake {
	return &Fake{
		memories: make(map[vk.DeviceMemory][]byte),
		buffers:  make(map[vk.Buffer]*fakeBuffer),
		cmdBufs:  make(map[vk.CommandBuffer]*recordedBuffer),
	}
}

func (f *Fake) handle() uint64 { return f.next.Add(1) }

func (f *Fake) CreateInstance(info *vk.InstanceCreateInfo, instance *vk.Instance) vk.Result {
	*instance = vk.Instance(f.handle())
	return vk.Success
}

func (f *Fake) DestroyInstance(instance vk.Instance) {}

func (f *Fake) EnumeratePhysicalDevices(instance vk.Instance, count *uint32, devices *vk.PhysicalDevice) vk.Result {
	if devices == nil {
		*count = 1
		return vk.Success
	}
	*devices = vk.PhysicalDevice(1)
	*count = 1
	return vk.Success
}

func (f *Fake) GetPhysicalDeviceQueueFamilyProperties(pd vk.PhysicalDevice, count *uint32, props *vk.QueueFamilyProperties) {
	if props == nil {
		*count = 1
		return
	}
	*props = vk.QueueFamilyProperties{
		QueueFlags:                  vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit,
		QueueCount:                  1,
		TimestampValidBits:          64,
		MinImageTransferGranularity: [3]uint32{1, 1, 1},
	}
	*count = 1
}

func (f *Fake) GetPhysicalDeviceMemoryProperties(pd vk.PhysicalDevice, props *vk.PhysicalDeviceMemoryProperties) {
	props.MemoryTypeCount = 2
	props.MemoryTypes[0] = vk.MemoryType{PropertyFlags: vk.MemoryPropertyDeviceLocalBit, HeapIndex: 0}
	props.MemoryTypes[1] = vk.MemoryType{PropertyFlags: vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit, HeapIndex: 0}
	props.MemoryHeapCount = 1
	props.MemoryHeaps[0] = vk.MemoryHeap{Size: 1 << 30}
}

func (f *Fake) CreateDevice(pd vk.PhysicalDevice, info *vk.DeviceCreateInfo, device *vk.Device) vk.Result {
	*device = vk.Device(f.handle())
	return vk.Success
}

func (f *Fake) DestroyDevice(device vk.Device) {}

func (f *Fake) GetDeviceQueue(device vk.Device, familyIndex, queueIndex uint32, queue *vk.Queue) {
	*queue = vk.Queue(uint64(familyIndex)<<32 | uint64(queueIndex) + 1)
}

func (f *Fake) CreateCommandPool(device vk.Device, info *vk.CommandPoolCreateInfo, pool *vk.CommandPool) vk.Result {
	*pool = vk.CommandPool(f.handle())
	return vk.Success
}

func (f *Fake) DestroyCommandPool(device vk.Device, pool vk.CommandPool) {}

func (f *Fake) ResetCommandPool(device vk.Device, pool vk.CommandPool, flags vk.CommandPoolResetFlagBits) vk.Result {
	return vk.Success
}

func (f *Fake) AllocateCommandBuffers(device vk.Device, info *vk.CommandBufferAllocateInfo, buffers *vk.CommandBuffer) vk.Result {
	cb := vk.CommandBuffer(f.handle())
	*buffers = cb
	f.mu.Lock()
	f.cmdBufs[cb] = &recordedBuffer{}
	f.mu.Unlock()
	return vk.Success
}

func (f *Fake) BeginCommandBuffer(cb vk.CommandBuffer, info *vk.CommandBufferBeginInfo) vk.Result {
	f.mu.Lock()
	f.cmdBufs[cb] = &recordedBuffer{}
	f.mu.Unlock()
	return vk.Success
}

func (f *Fake) EndCommandBuffer(cb vk.CommandBuffer) vk.Result { return vk.Success }

func (f *Fake) CmdCopyBuffer(cb vk.CommandBuffer, src, dst vk.Buffer, regionCount uint32, regions *vk.BufferCopy) {
	rs := unsafe.Slice(regions, regionCount)
	cp := copyAction{src: src, dst: dst, regions: append([]vk.BufferCopy(nil), rs...)}
	f.mu.Lock()
	rb := f.cmdBufs[cb]
	rb.copies = append(rb.copies, cp)
	f.mu.Unlock()
}

func (f *Fake) CmdBindPipeline(cb vk.CommandBuffer, bindPoint vk.PipelineBindPoint, pipeline vk.Pipeline) {}

func (f *Fake) CmdBindDescriptorSets(cb vk.CommandBuffer, bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, firstSet uint32, setCount uint32, sets *vk.DescriptorSet) {
}

func (f *Fake) CmdPushConstants(cb vk.CommandBuffer, layout vk.PipelineLayout, stages vk.ShaderStageFlagBits, offset, size uint32, values unsafe.Pointer) {
}

func (f *Fake) CmdDispatch(cb vk.CommandBuffer, x, y, z uint32) {}

func (f *Fake) CreateFence(device vk.Device, info *vk.FenceCreateInfo, fence *vk.Fence) vk.Result {
	*fence = vk.Fence(f.handle())
	return vk.Success
}

func (f *Fake) DestroyFence(device vk.Device, fence vk.Fence) {}

func (f *Fake) ResetFences(device vk.Device, fence *vk.Fence) vk.Result { return vk.Success }

// WaitForFences always succeeds immediately: QueueSubmit already executed
// every recorded command synchronously, so by the time anything waits the
// work this fence stood for is already done.
func (f *Fake) WaitForFences(device vk.Device, fence *vk.Fence, timeoutNs uint64) vk.Result {
	return vk.Success
}

// QueueSubmit executes every copy recorded against the submitted command
// buffer(s), moving real bytes between fake device-memory backing slices,
// then returns as if the GPU had already finished.
func (f *Fake) QueueSubmit(queue vk.Queue, info *vk.SubmitInfo, fence vk.Fence) vk.Result {
	cbs := unsafe.Slice(info.PCommandBuffers, info.CommandBufferCount)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cb := range cbs {
		rb := f.cmdBufs[cb]
		if rb == nil {
			continue
		}
		for _, cp := range rb.copies {
			srcBuf, dstBuf := f.buffers[cp.src], f.buffers[cp.dst]
			if srcBuf == nil || dstBuf == nil {
				continue
			}
			srcMem, dstMem := f.memories[srcBuf.memory], f.memories[dstBuf.memory]
			if srcMem == nil || dstMem == nil {
				continue
			}
			for _, r := range cp.regions {
				so := srcBuf.offset + r.SrcOffset
				do := dstBuf.offset + r.DstOffset
				copy(dstMem[do:do+r.Size], srcMem[so:so+r.Size])
			}
		}
	}
	return vk.Success
}

func (f *Fake) CreateBuffer(device vk.Device, info *vk.BufferCreateInfo, buf *vk.Buffer) vk.Result {
	b := vk.Buffer(f.handle())
	f.mu.Lock()
	f.buffers[b] = &fakeBuffer{size: info.Size}
	f.mu.Unlock()
	*buf = b
	return vk.Success
}

func (f *Fake) DestroyBuffer(device vk.Device, buf vk.Buffer) {
	f.mu.Lock()
	delete(f.buffers, buf)
	f.mu.Unlock()
}

func (f *Fake) AllocateMemory(device vk.Device, info *vk.MemoryAllocateInfo, mem *vk.DeviceMemory) vk.Result {
	m := vk.DeviceMemory(f.handle())
	f.mu.Lock()
	f.memories[m] = make([]byte, info.AllocationSize)
	f.mu.Unlock()
	*mem = m
	return vk.Success
}

func (f *Fake) FreeMemory(device vk.Device, mem vk.DeviceMemory) {
	f.mu.Lock()
	delete(f.memories, mem)
	f.mu.Unlock()
}

func (f *Fake) BindBufferMemory(device vk.Device, buf vk.Buffer, mem vk.DeviceMemory, offset uint64) vk.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.buffers[buf]
	b.memory = mem
	b.offset = offset
	return vk.Success
}

func (f *Fake) MapMemory(device vk.Device, mem vk.DeviceMemory, offset, size uint64, data *unsafe.Pointer) vk.Result {
	f.mu.Lock()
	backing := f.memories[mem]
	f.mu.Unlock()
	*data = unsafe.Pointer(&backing[offset])
	return vk.Success
}

func (f *Fake) UnmapMemory(device vk.Device, mem vk.DeviceMemory) {}

func (f *Fake) GetBufferMemoryRequirements(device vk.Device, buf vk.Buffer, req *vk.MemoryRequirements) {
	f.mu.Lock()
	size := f.buffers[buf].size
	f.mu.Unlock()
	req.Size = size
	req.Alignment = 256
	req.MemoryTypeBits = 0x3 // both fake memory types accepted
}

func (f *Fake) CreateDescriptorSetLayout(device vk.Device, info *vk.DescriptorSetLayoutCreateInfo, layout *vk.DescriptorSetLayout) vk.Result {
	*layout = vk.DescriptorSetLayout(f.handle())
	return vk.Success
}

func (f *Fake) DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout) {}

func (f *Fake) CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo, pool *vk.DescriptorPool) vk.Result {
	*pool = vk.DescriptorPool(f.handle())
	return vk.Success
}

func (f *Fake) DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool) {}

func (f *Fake) ResetDescriptorPool(device vk.Device, pool vk.DescriptorPool) vk.Result { return vk.Success }

func (f *Fake) AllocateDescriptorSets(device vk.Device, info *vk.DescriptorSetAllocateInfo, sets *vk.DescriptorSet) vk.Result {
	*sets = vk.DescriptorSet(f.handle())
	return vk.Success
}

func (f *Fake) UpdateDescriptorSets(device vk.Device, writeCount uint32, writes *vk.WriteDescriptorSet) {
}

func (f *Fake) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo, layout *vk.PipelineLayout) vk.Result {
	*layout = vk.PipelineLayout(f.handle())
	return vk.Success
}

func (f *Fake) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {}

func (f *Fake) CreateShaderModule(device vk.Device, info *vk.ShaderModuleCreateInfo, module *vk.ShaderModule) vk.Result {
	*module = vk.ShaderModule(f.handle())
	return vk.Success
}

func (f *Fake) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {}

func (f *Fake) CreateComputePipelines(device vk.Device, info *vk.ComputePipelineCreateInfo, pipeline *vk.Pipeline) vk.Result {
	*pipeline = vk.Pipeline(f.handle())
	return vk.Success
}

func (f *Fake) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {}

var _ vk.Commander = (*Fake)(nil)
