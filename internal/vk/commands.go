// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vk

import (
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
)

// Commands holds the resolved function pointers this engine needs. Loading
// happens in three stages mirroring Vulkan's own resolution hierarchy:
// LoadGlobal (pre-instance), LoadInstance (after vkCreateInstance),
// LoadDevice (after vkCreateDevice).
type Commands struct {
	createInstance unsafe.Pointer

	destroyInstance                       unsafe.Pointer
	enumeratePhysicalDevices              unsafe.Pointer
	getPhysicalDeviceQueueFamilyProperties unsafe.Pointer
	getPhysicalDeviceMemoryProperties      unsafe.Pointer
	createDevice                          unsafe.Pointer

	destroyDevice               unsafe.Pointer
	getDeviceQueue               unsafe.Pointer
	createCommandPool             unsafe.Pointer
	destroyCommandPool            unsafe.Pointer
	resetCommandPool              unsafe.Pointer
	allocateCommandBuffers        unsafe.Pointer
	beginCommandBuffer            unsafe.Pointer
	endCommandBuffer              unsafe.Pointer
	cmdCopyBuffer                 unsafe.Pointer
	cmdBindPipeline               unsafe.Pointer
	cmdBindDescriptorSets         unsafe.Pointer
	cmdPushConstants              unsafe.Pointer
	cmdDispatch                   unsafe.Pointer
	createFence                   unsafe.Pointer
	destroyFence                  unsafe.Pointer
	resetFences                   unsafe.Pointer
	waitForFences                 unsafe.Pointer
	queueSubmit                   unsafe.Pointer
	createBuffer                  unsafe.Pointer
	destroyBuffer                 unsafe.Pointer
	allocateMemory                unsafe.Pointer
	freeMemory                    unsafe.Pointer
	bindBufferMemory              unsafe.Pointer
	mapMemory                     unsafe.Pointer
	unmapMemory                   unsafe.Pointer
	getBufferMemoryRequirements   unsafe.Pointer
	createDescriptorSetLayout     unsafe.Pointer
	destroyDescriptorSetLayout    unsafe.Pointer
	createDescriptorPool          unsafe.Pointer
	destroyDescriptorPool         unsafe.Pointer
	resetDescriptorPool           unsafe.Pointer
	allocateDescriptorSets        unsafe.Pointer
	updateDescriptorSets          unsafe.Pointer
	createPipelineLayout          unsafe.Pointer
	destroyPipelineLayout         unsafe.Pointer
	createShaderModule            unsafe.Pointer
	destroyShaderModule           unsafe.Pointer
	createComputePipelines        unsafe.Pointer
	destroyPipeline               unsafe.Pointer
}

// NewCommands allocates a zeroed Commands; callers must call LoadGlobal,
// LoadInstance and LoadDevice in order as each handle becomes available.
func NewCommands() *Commands {
	return &Commands{}
}

// LoadGlobal resolves functions callable before an instance exists.
func (c *Commands) LoadGlobal() {
	c.createInstance = GetInstanceProcAddr(0, "vkCreateInstance")
}

// LoadInstance resolves instance-level functions and primes device-proc
// resolution for drivers (Intel) that need it seeded early.
func (c *Commands) LoadInstance(instance Instance) {
	SetDeviceProcAddr(instance)
	c.destroyInstance = GetInstanceProcAddr(instance, "vkDestroyInstance")
	c.enumeratePhysicalDevices = GetInstanceProcAddr(instance, "vkEnumeratePhysicalDevices")
	c.getPhysicalDeviceQueueFamilyProperties = GetInstanceProcAddr(instance, "vkGetPhysicalDeviceQueueFamilyProperties")
	c.getPhysicalDeviceMemoryProperties = GetInstanceProcAddr(instance, "vkGetPhysicalDeviceMemoryProperties")
	c.createDevice = GetInstanceProcAddr(instance, "vkCreateDevice")
}

// LoadDevice resolves device-level functions.
func (c *Commands) LoadDevice(device Device) {
	load := func(name string) unsafe.Pointer { return GetDeviceProcAddr(device, name) }
	c.destroyDevice = load("vkDestroyDevice")
	c.getDeviceQueue = load("vkGetDeviceQueue")
	c.createCommandPool = load("vkCreateCommandPool")
	c.destroyCommandPool = load("vkDestroyCommandPool")
	c.resetCommandPool = load("vkResetCommandPool")
	c.allocateCommandBuffers = load("vkAllocateCommandBuffers")
	c.beginCommandBuffer = load("vkBeginCommandBuffer")
	c.endCommandBuffer = load("vkEndCommandBuffer")
	c.cmdCopyBuffer = load("vkCmdCopyBuffer")
	c.cmdBindPipeline = load("vkCmdBindPipeline")
	c.cmdBindDescriptorSets = load("vkCmdBindDescriptorSets")
	c.cmdPushConstants = load("vkCmdPushConstants")
	c.cmdDispatch = load("vkCmdDispatch")
	c.createFence = load("vkCreateFence")
	c.destroyFence = load("vkDestroyFence")
	c.resetFences = load("vkResetFences")
	c.waitForFences = load("vkWaitForFences")
	c.queueSubmit = load("vkQueueSubmit")
	c.createBuffer = load("vkCreateBuffer")
	c.destroyBuffer = load("vkDestroyBuffer")
	c.allocateMemory = load("vkAllocateMemory")
	c.freeMemory = load("vkFreeMemory")
	c.bindBufferMemory = load("vkBindBufferMemory")
	c.mapMemory = load("vkMapMemory")
	c.unmapMemory = load("vkUnmapMemory")
	c.getBufferMemoryRequirements = load("vkGetBufferMemoryRequirements")
	c.createDescriptorSetLayout = load("vkCreateDescriptorSetLayout")
	c.destroyDescriptorSetLayout = load("vkDestroyDescriptorSetLayout")
	c.createDescriptorPool = load("vkCreateDescriptorPool")
	c.destroyDescriptorPool = load("vkDestroyDescriptorPool")
	c.resetDescriptorPool = load("vkResetDescriptorPool")
	c.allocateDescriptorSets = load("vkAllocateDescriptorSets")
	c.updateDescriptorSets = load("vkUpdateDescriptorSets")
	c.createPipelineLayout = load("vkCreatePipelineLayout")
	c.destroyPipelineLayout = load("vkDestroyPipelineLayout")
	c.createShaderModule = load("vkCreateShaderModule")
	c.destroyShaderModule = load("vkDestroyShaderModule")
	c.createComputePipelines = load("vkCreateComputePipelines")
	c.destroyPipeline = load("vkDestroyPipeline")
}

func asResult(r int32, err error) Result {
	if err != nil {
		return ErrorInitializationFailed
	}
	return Result(r)
}

// CreateInstance wraps vkCreateInstance.
func (c *Commands) CreateInstance(info *InstanceCreateInfo, instance *Instance) Result {
	var r int32
	args := [3]unsafe.Pointer{unsafe.Pointer(&info), unsafe.Pointer(&(*[0]uintptr)(nil)), unsafe.Pointer(&instance)}
	err := ffi.CallFunction(&sigResultPtrPtrPtr, c.createInstance, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// DestroyInstance wraps vkDestroyInstance.
func (c *Commands) DestroyInstance(instance Instance) {
	args := [2]unsafe.Pointer{unsafe.Pointer(&instance), unsafe.Pointer(&(*[0]uintptr)(nil))}
	_ = ffi.CallFunction(&sigVoidHandlePtr, c.destroyInstance, nil, args[:])
}

// EnumeratePhysicalDevices wraps vkEnumeratePhysicalDevices.
func (c *Commands) EnumeratePhysicalDevices(instance Instance, count *uint32, devices *PhysicalDevice) Result {
	var r int32
	args := [3]unsafe.Pointer{unsafe.Pointer(&instance), unsafe.Pointer(&count), unsafe.Pointer(&devices)}
	err := ffi.CallFunction(&sigResultHandlePtrPtr, c.enumeratePhysicalDevices, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// GetPhysicalDeviceQueueFamilyProperties wraps the same-named function.
func (c *Commands) GetPhysicalDeviceQueueFamilyProperties(pd PhysicalDevice, count *uint32, props *QueueFamilyProperties) {
	args := [3]unsafe.Pointer{unsafe.Pointer(&pd), unsafe.Pointer(&count), unsafe.Pointer(&props)}
	_ = ffi.CallFunction(&sigVoidHandlePtrPtr, c.getPhysicalDeviceQueueFamilyProperties, nil, args[:])
}

// GetPhysicalDeviceMemoryProperties wraps the same-named function.
func (c *Commands) GetPhysicalDeviceMemoryProperties(pd PhysicalDevice, props *PhysicalDeviceMemoryProperties) {
	args := [2]unsafe.Pointer{unsafe.Pointer(&pd), unsafe.Pointer(&props)}
	_ = ffi.CallFunction(&sigVoidHandlePtr, c.getPhysicalDeviceMemoryProperties, nil, args[:])
}

// CreateDevice wraps vkCreateDevice.
func (c *Commands) CreateDevice(pd PhysicalDevice, info *DeviceCreateInfo, device *Device) Result {
	var r int32
	args := [4]unsafe.Pointer{unsafe.Pointer(&pd), unsafe.Pointer(&info), unsafe.Pointer(&(*[0]uintptr)(nil)), unsafe.Pointer(&device)}
	err := ffi.CallFunction(&sigResultHandlePtrPtrPtr, c.createDevice, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// DestroyDevice wraps vkDestroyDevice.
func (c *Commands) DestroyDevice(device Device) {
	args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&(*[0]uintptr)(nil))}
	_ = ffi.CallFunction(&sigVoidHandlePtr, c.destroyDevice, nil, args[:])
}

// GetDeviceQueue wraps vkGetDeviceQueue.
func (c *Commands) GetDeviceQueue(device Device, familyIndex, queueIndex uint32, queue *Queue) {
	args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&familyIndex), unsafe.Pointer(&queueIndex), unsafe.Pointer(&queue)}
	_ = ffi.CallFunction(&sigVoidHandleU32U32Ptr, c.getDeviceQueue, nil, args[:])
}

// CreateCommandPool wraps vkCreateCommandPool.
func (c *Commands) CreateCommandPool(device Device, info *CommandPoolCreateInfo, pool *CommandPool) Result {
	var r int32
	args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&info), unsafe.Pointer(&(*[0]uintptr)(nil)), unsafe.Pointer(&pool)}
	err := ffi.CallFunction(&sigResultHandlePtrPtrPtr, c.createCommandPool, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// DestroyCommandPool wraps vkDestroyCommandPool.
func (c *Commands) DestroyCommandPool(device Device, pool CommandPool) {
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&pool), unsafe.Pointer(&(*[0]uintptr)(nil))}
	_ = ffi.CallFunction(&sigVoidHandleHandlePtr, c.destroyCommandPool, nil, args[:])
}

// ResetCommandPool wraps vkResetCommandPool.
func (c *Commands) ResetCommandPool(device Device, pool CommandPool, flags CommandPoolResetFlagBits) Result {
	var r int32
	f := uint32(flags)
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&pool), unsafe.Pointer(&f)}
	err := ffi.CallFunction(&sigResultHandleHandleU32, c.resetCommandPool, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// AllocateCommandBuffers wraps vkAllocateCommandBuffers.
func (c *Commands) AllocateCommandBuffers(device Device, info *CommandBufferAllocateInfo, buffers *CommandBuffer) Result {
	var r int32
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&info), unsafe.Pointer(&buffers)}
	err := ffi.CallFunction(&sigResultHandlePtrPtr, c.allocateCommandBuffers, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// BeginCommandBuffer wraps vkBeginCommandBuffer.
func (c *Commands) BeginCommandBuffer(cb CommandBuffer, info *CommandBufferBeginInfo) Result {
	var r int32
	args := [2]unsafe.Pointer{unsafe.Pointer(&cb), unsafe.Pointer(&info)}
	err := ffi.CallFunction(&sigResultHandlePtr, c.beginCommandBuffer, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// EndCommandBuffer wraps vkEndCommandBuffer.
func (c *Commands) EndCommandBuffer(cb CommandBuffer) Result {
	var r int32
	args := [1]unsafe.Pointer{unsafe.Pointer(&cb)}
	err := ffi.CallFunction(&sigResultHandle, c.endCommandBuffer, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// CmdCopyBuffer wraps vkCmdCopyBuffer.
func (c *Commands) CmdCopyBuffer(cb CommandBuffer, src, dst Buffer, regionCount uint32, regions *BufferCopy) {
	args := [5]unsafe.Pointer{unsafe.Pointer(&cb), unsafe.Pointer(&src), unsafe.Pointer(&dst), unsafe.Pointer(&regionCount), unsafe.Pointer(&regions)}
	_ = ffi.CallFunction(&sigVoidCmdCopyBuffer, c.cmdCopyBuffer, nil, args[:])
}

// CmdBindPipeline wraps vkCmdBindPipeline.
func (c *Commands) CmdBindPipeline(cb CommandBuffer, bindPoint PipelineBindPoint, pipeline Pipeline) {
	args := [3]unsafe.Pointer{unsafe.Pointer(&cb), unsafe.Pointer(&bindPoint), unsafe.Pointer(&pipeline)}
	_ = ffi.CallFunction(&sigVoidCmdBindPipeline, c.cmdBindPipeline, nil, args[:])
}

// CmdBindDescriptorSets wraps vkCmdBindDescriptorSets (dynamic offsets unused).
func (c *Commands) CmdBindDescriptorSets(cb CommandBuffer, bindPoint PipelineBindPoint, layout PipelineLayout, firstSet uint32, setCount uint32, sets *DescriptorSet) {
	var dynCount uint32
	args := [8]unsafe.Pointer{
		unsafe.Pointer(&cb), unsafe.Pointer(&bindPoint), unsafe.Pointer(&layout),
		unsafe.Pointer(&firstSet), unsafe.Pointer(&setCount), unsafe.Pointer(&sets),
		unsafe.Pointer(&dynCount), unsafe.Pointer(&(*[0]uintptr)(nil)),
	}
	_ = ffi.CallFunction(&sigVoidCmdBindDescriptorSets, c.cmdBindDescriptorSets, nil, args[:])
}

// CmdPushConstants wraps vkCmdPushConstants.
func (c *Commands) CmdPushConstants(cb CommandBuffer, layout PipelineLayout, stages ShaderStageFlagBits, offset, size uint32, values unsafe.Pointer) {
	args := [6]unsafe.Pointer{unsafe.Pointer(&cb), unsafe.Pointer(&layout), unsafe.Pointer(&stages), unsafe.Pointer(&offset), unsafe.Pointer(&size), unsafe.Pointer(&values)}
	_ = ffi.CallFunction(&sigVoidCmdPushConstants, c.cmdPushConstants, nil, args[:])
}

// CmdDispatch wraps vkCmdDispatch.
func (c *Commands) CmdDispatch(cb CommandBuffer, x, y, z uint32) {
	args := [4]unsafe.Pointer{unsafe.Pointer(&cb), unsafe.Pointer(&x), unsafe.Pointer(&y), unsafe.Pointer(&z)}
	_ = ffi.CallFunction(&sigVoidHandleU32x3, c.cmdDispatch, nil, args[:])
}

// CreateFence wraps vkCreateFence.
func (c *Commands) CreateFence(device Device, info *FenceCreateInfo, fence *Fence) Result {
	var r int32
	args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&info), unsafe.Pointer(&(*[0]uintptr)(nil)), unsafe.Pointer(&fence)}
	err := ffi.CallFunction(&sigResultHandlePtrPtrPtr, c.createFence, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// DestroyFence wraps vkDestroyFence.
func (c *Commands) DestroyFence(device Device, fence Fence) {
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&fence), unsafe.Pointer(&(*[0]uintptr)(nil))}
	_ = ffi.CallFunction(&sigVoidHandleHandlePtr, c.destroyFence, nil, args[:])
}

// ResetFences wraps vkResetFences for a single fence.
func (c *Commands) ResetFences(device Device, fence *Fence) Result {
	var r int32
	one := uint32(1)
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&one), unsafe.Pointer(&fence)}
	err := ffi.CallFunction(&sigResultHandleU32Ptr, c.resetFences, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// WaitForFences wraps vkWaitForFences for a single fence.
func (c *Commands) WaitForFences(device Device, fence *Fence, timeoutNs uint64) Result {
	var r int32
	one := uint32(1)
	waitAll := uint32(1)
	args := [5]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&one), unsafe.Pointer(&fence), unsafe.Pointer(&waitAll), unsafe.Pointer(&timeoutNs)}
	err := ffi.CallFunction(&sigResultHandleU32PtrU32U64, c.waitForFences, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// QueueSubmit wraps vkQueueSubmit for a single submit-info, single CB.
func (c *Commands) QueueSubmit(queue Queue, info *SubmitInfo, fence Fence) Result {
	var r int32
	one := uint32(1)
	args := [4]unsafe.Pointer{unsafe.Pointer(&queue), unsafe.Pointer(&one), unsafe.Pointer(&info), unsafe.Pointer(&fence)}
	err := ffi.CallFunction(&sigResultHandleU32PtrHandle, c.queueSubmit, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// CreateBuffer wraps vkCreateBuffer.
func (c *Commands) CreateBuffer(device Device, info *BufferCreateInfo, buf *Buffer) Result {
	var r int32
	args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&info), unsafe.Pointer(&(*[0]uintptr)(nil)), unsafe.Pointer(&buf)}
	err := ffi.CallFunction(&sigResultHandlePtrPtrPtr, c.createBuffer, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// DestroyBuffer wraps vkDestroyBuffer.
func (c *Commands) DestroyBuffer(device Device, buf Buffer) {
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&buf), unsafe.Pointer(&(*[0]uintptr)(nil))}
	_ = ffi.CallFunction(&sigVoidHandleHandlePtr, c.destroyBuffer, nil, args[:])
}

// AllocateMemory wraps vkAllocateMemory.
func (c *Commands) AllocateMemory(device Device, info *MemoryAllocateInfo, mem *DeviceMemory) Result {
	var r int32
	args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&info), unsafe.Pointer(&(*[0]uintptr)(nil)), unsafe.Pointer(&mem)}
	err := ffi.CallFunction(&sigResultHandlePtrPtrPtr, c.allocateMemory, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// FreeMemory wraps vkFreeMemory.
func (c *Commands) FreeMemory(device Device, mem DeviceMemory) {
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&mem), unsafe.Pointer(&(*[0]uintptr)(nil))}
	_ = ffi.CallFunction(&sigVoidHandleHandlePtr, c.freeMemory, nil, args[:])
}

// BindBufferMemory wraps vkBindBufferMemory.
func (c *Commands) BindBufferMemory(device Device, buf Buffer, mem DeviceMemory, offset uint64) Result {
	var r int32
	args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&buf), unsafe.Pointer(&mem), unsafe.Pointer(&offset)}
	err := ffi.CallFunction(&sigResultHandleHandleHandleU64, c.bindBufferMemory, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// MapMemory wraps vkMapMemory.
func (c *Commands) MapMemory(device Device, mem DeviceMemory, offset, size uint64, data *unsafe.Pointer) Result {
	var r int32
	var flags uint32
	args := [6]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&mem), unsafe.Pointer(&offset), unsafe.Pointer(&size), unsafe.Pointer(&flags), unsafe.Pointer(&data)}
	err := ffi.CallFunction(&sigResultMapMemory, c.mapMemory, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// UnmapMemory wraps vkUnmapMemory.
func (c *Commands) UnmapMemory(device Device, mem DeviceMemory) {
	args := [2]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&mem)}
	_ = ffi.CallFunction(&sigVoidHandleHandle, c.unmapMemory, nil, args[:])
}

// GetBufferMemoryRequirements wraps the same-named function.
func (c *Commands) GetBufferMemoryRequirements(device Device, buf Buffer, req *MemoryRequirements) {
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&buf), unsafe.Pointer(&req)}
	_ = ffi.CallFunction(&sigVoidGetBufferMemReq, c.getBufferMemoryRequirements, nil, args[:])
}

// CreateDescriptorSetLayout wraps the same-named function.
func (c *Commands) CreateDescriptorSetLayout(device Device, info *DescriptorSetLayoutCreateInfo, layout *DescriptorSetLayout) Result {
	var r int32
	args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&info), unsafe.Pointer(&(*[0]uintptr)(nil)), unsafe.Pointer(&layout)}
	err := ffi.CallFunction(&sigResultHandlePtrPtrPtr, c.createDescriptorSetLayout, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// DestroyDescriptorSetLayout wraps the same-named function.
func (c *Commands) DestroyDescriptorSetLayout(device Device, layout DescriptorSetLayout) {
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&layout), unsafe.Pointer(&(*[0]uintptr)(nil))}
	_ = ffi.CallFunction(&sigVoidHandleHandlePtr, c.destroyDescriptorSetLayout, nil, args[:])
}

// CreateDescriptorPool wraps the same-named function.
func (c *Commands) CreateDescriptorPool(device Device, info *DescriptorPoolCreateInfo, pool *DescriptorPool) Result {
	var r int32
	args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&info), unsafe.Pointer(&(*[0]uintptr)(nil)), unsafe.Pointer(&pool)}
	err := ffi.CallFunction(&sigResultHandlePtrPtrPtr, c.createDescriptorPool, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// DestroyDescriptorPool wraps the same-named function.
func (c *Commands) DestroyDescriptorPool(device Device, pool DescriptorPool) {
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&pool), unsafe.Pointer(&(*[0]uintptr)(nil))}
	_ = ffi.CallFunction(&sigVoidHandleHandlePtr, c.destroyDescriptorPool, nil, args[:])
}

// ResetDescriptorPool wraps the same-named function.
func (c *Commands) ResetDescriptorPool(device Device, pool DescriptorPool) Result {
	var r int32
	var flags uint32
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&pool), unsafe.Pointer(&flags)}
	err := ffi.CallFunction(&sigResultHandleHandleU32, c.resetDescriptorPool, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// AllocateDescriptorSets wraps the same-named function.
func (c *Commands) AllocateDescriptorSets(device Device, info *DescriptorSetAllocateInfo, sets *DescriptorSet) Result {
	var r int32
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&info), unsafe.Pointer(&sets)}
	err := ffi.CallFunction(&sigResultHandlePtrPtr, c.allocateDescriptorSets, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// UpdateDescriptorSets wraps the same-named function (no copies).
func (c *Commands) UpdateDescriptorSets(device Device, writeCount uint32, writes *WriteDescriptorSet) {
	var copyCount uint32
	args := [5]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&writeCount), unsafe.Pointer(&writes), unsafe.Pointer(&copyCount), unsafe.Pointer(&(*[0]uintptr)(nil))}
	_ = ffi.CallFunction(&sigVoidUpdateDescriptorSets, c.updateDescriptorSets, nil, args[:])
}

// CreatePipelineLayout wraps the same-named function.
func (c *Commands) CreatePipelineLayout(device Device, info *PipelineLayoutCreateInfo, layout *PipelineLayout) Result {
	var r int32
	args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&info), unsafe.Pointer(&(*[0]uintptr)(nil)), unsafe.Pointer(&layout)}
	err := ffi.CallFunction(&sigResultHandlePtrPtrPtr, c.createPipelineLayout, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// DestroyPipelineLayout wraps the same-named function.
func (c *Commands) DestroyPipelineLayout(device Device, layout PipelineLayout) {
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&layout), unsafe.Pointer(&(*[0]uintptr)(nil))}
	_ = ffi.CallFunction(&sigVoidHandleHandlePtr, c.destroyPipelineLayout, nil, args[:])
}

// CreateShaderModule wraps the same-named function.
func (c *Commands) CreateShaderModule(device Device, info *ShaderModuleCreateInfo, module *ShaderModule) Result {
	var r int32
	args := [4]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&info), unsafe.Pointer(&(*[0]uintptr)(nil)), unsafe.Pointer(&module)}
	err := ffi.CallFunction(&sigResultHandlePtrPtrPtr, c.createShaderModule, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// DestroyShaderModule wraps the same-named function.
func (c *Commands) DestroyShaderModule(device Device, module ShaderModule) {
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&module), unsafe.Pointer(&(*[0]uintptr)(nil))}
	_ = ffi.CallFunction(&sigVoidHandleHandlePtr, c.destroyShaderModule, nil, args[:])
}

// CreateComputePipelines wraps the same-named function for a single pipeline.
func (c *Commands) CreateComputePipelines(device Device, info *ComputePipelineCreateInfo, pipeline *Pipeline) Result {
	var r int32
	var cache uint64
	one := uint32(1)
	args := [6]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&cache), unsafe.Pointer(&one), unsafe.Pointer(&info), unsafe.Pointer(&(*[0]uintptr)(nil)), unsafe.Pointer(&pipeline)}
	err := ffi.CallFunction(&sigResultCreatePipelines, c.createComputePipelines, unsafe.Pointer(&r), args[:])
	return asResult(r, err)
}

// DestroyPipeline wraps the same-named function.
func (c *Commands) DestroyPipeline(device Device, pipeline Pipeline) {
	args := [3]unsafe.Pointer{unsafe.Pointer(&device), unsafe.Pointer(&pipeline), unsafe.Pointer(&(*[0]uintptr)(nil))}
	_ = ffi.CallFunction(&sigVoidHandleHandlePtr, c.destroyPipeline, nil, args[:])
}
