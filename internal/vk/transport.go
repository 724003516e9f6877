// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vk

import "unsafe"

// Commander is the subset of Commands' method set internal/slab and
// internal/engine call against a device. *Commands satisfies it through
// real Vulkan calls; internal/vk/vktest.Fake satisfies it with an
// in-process simulation for tests that don't need a GPU.
type Commander interface {
	CreateInstance(info *InstanceCreateInfo, instance *Instance) Result
	DestroyInstance(instance Instance)
	EnumeratePhysicalDevices(instance Instance, count *uint32, devices *PhysicalDevice) Result
	GetPhysicalDeviceQueueFamilyProperties(pd PhysicalDevice, count *uint32, props *QueueFamilyProperties)
	GetPhysicalDeviceMemoryProperties(pd PhysicalDevice, props *PhysicalDeviceMemoryProperties)
	CreateDevice(pd PhysicalDevice, info *DeviceCreateInfo, device *Device) Result
	DestroyDevice(device Device)
	GetDeviceQueue(device Device, familyIndex, queueIndex uint32, queue *Queue)

	CreateCommandPool(device Device, info *CommandPoolCreateInfo, pool *CommandPool) Result
	DestroyCommandPool(device Device, pool CommandPool)
	ResetCommandPool(device Device, pool CommandPool, flags CommandPoolResetFlagBits) Result
	AllocateCommandBuffers(device Device, info *CommandBufferAllocateInfo, buffers *CommandBuffer) Result
	BeginCommandBuffer(cb CommandBuffer, info *CommandBufferBeginInfo) Result
	EndCommandBuffer(cb CommandBuffer) Result

	CmdCopyBuffer(cb CommandBuffer, src, dst Buffer, regionCount uint32, regions *BufferCopy)
	CmdBindPipeline(cb CommandBuffer, bindPoint PipelineBindPoint, pipeline Pipeline)
	CmdBindDescriptorSets(cb CommandBuffer, bindPoint PipelineBindPoint, layout PipelineLayout, firstSet uint32, setCount uint32, sets *DescriptorSet)
	CmdPushConstants(cb CommandBuffer, layout PipelineLayout, stages ShaderStageFlagBits, offset, size uint32, values unsafe.Pointer)
	CmdDispatch(cb CommandBuffer, x, y, z uint32)

	CreateFence(device Device, info *FenceCreateInfo, fence *Fence) Result
	DestroyFence(device Device, fence Fence)
	ResetFences(device Device, fence *Fence) Result
	WaitForFences(device Device, fence *Fence, timeoutNs uint64) Result
	QueueSubmit(queue Queue, info *SubmitInfo, fence Fence) Result

	CreateBuffer(device Device, info *BufferCreateInfo, buf *Buffer) Result
	DestroyBuffer(device Device, buf Buffer)
	AllocateMemory(device Device, info *MemoryAllocateInfo, mem *DeviceMemory) Result
	FreeMemory(device Device, mem DeviceMemory)
	BindBufferMemory(device Device, buf Buffer, mem DeviceMemory, offset uint64) Result
	MapMemory(device Device, mem DeviceMemory, offset, size uint64, data *unsafe.Pointer) Result
	UnmapMemory(device Device, mem DeviceMemory)
	GetBufferMemoryRequirements(device Device, buf Buffer, req *MemoryRequirements)

	CreateDescriptorSetLayout(device Device, info *DescriptorSetLayoutCreateInfo, layout *DescriptorSetLayout) Result
	DestroyDescriptorSetLayout(device Device, layout DescriptorSetLayout)
	CreateDescriptorPool(device Device, info *DescriptorPoolCreateInfo, pool *DescriptorPool) Result
	DestroyDescriptorPool(device Device, pool DescriptorPool)
	ResetDescriptorPool(device Device, pool DescriptorPool) Result
	AllocateDescriptorSets(device Device, info *DescriptorSetAllocateInfo, sets *DescriptorSet) Result
	UpdateDescriptorSets(device Device, writeCount uint32, writes *WriteDescriptorSet)

	CreatePipelineLayout(device Device, info *PipelineLayoutCreateInfo, layout *PipelineLayout) Result
	DestroyPipelineLayout(device Device, layout PipelineLayout)
	CreateShaderModule(device Device, info *ShaderModuleCreateInfo, module *ShaderModule) Result
	DestroyShaderModule(device Device, module ShaderModule)
	CreateComputePipelines(device Device, info *ComputePipelineCreateInfo, pipeline *Pipeline) Result
	DestroyPipeline(device Device, pipeline Pipeline)
}

var _ Commander = (*Commands)(nil)
