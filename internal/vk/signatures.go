// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package vk reuses a small number of CallInterface signature templates
// across the ~40 Vulkan entry points this engine calls, the same way the
// upstream generator shares ~30 signatures across Vulkan's ~700 functions.

package vk

import (
	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
)

var (
	// VkResult(ptr, ptr, ptr) - vkCreateInstance
	sigResultPtrPtrPtr types.CallInterface
	// VkResult(handle, ptr, ptr, ptr) - vkCreateDevice, vkCreateBuffer, vkCreateCommandPool,
	// vkCreateFence, vkCreateDescriptorSetLayout, vkCreateDescriptorPool,
	// vkCreatePipelineLayout, vkCreateShaderModule, vkAllocateMemory
	sigResultHandlePtrPtrPtr types.CallInterface
	// VkResult(handle, ptr, ptr) - vkEnumeratePhysicalDevices, vkAllocateCommandBuffers,
	// vkAllocateDescriptorSets
	sigResultHandlePtrPtr types.CallInterface
	// VkResult(handle, ptr) - vkBeginCommandBuffer
	sigResultHandlePtr types.CallInterface
	// VkResult(handle) - vkEndCommandBuffer
	sigResultHandle types.CallInterface
	// VkResult(handle, handle, u32) - vkResetCommandPool, vkResetDescriptorPool
	sigResultHandleHandleU32 types.CallInterface
	// VkResult(handle, u32, ptr) - vkResetFences
	sigResultHandleU32Ptr types.CallInterface
	// VkResult(handle, u32, ptr, handle) - vkQueueSubmit
	sigResultHandleU32PtrHandle types.CallInterface
	// VkResult(handle, u32, ptr, u32, u64) - vkWaitForFences
	sigResultHandleU32PtrU32U64 types.CallInterface
	// VkResult(handle, handle, u32, ptr, ptr, ptr) - vkCreateComputePipelines
	sigResultCreatePipelines types.CallInterface
	// VkResult(handle, handle, handle, u64) - vkBindBufferMemory
	sigResultHandleHandleHandleU64 types.CallInterface
	// VkResult(handle, handle, u64, u64, u32, ptr) - vkMapMemory
	sigResultMapMemory types.CallInterface

	// void(handle, ptr) - vkDestroyInstance, vkDestroyDevice, vkGetPhysicalDeviceMemoryProperties
	sigVoidHandlePtr types.CallInterface
	// void(handle, handle, ptr) - vkDestroyBuffer, vkDestroyFence, vkDestroyDescriptorSetLayout,
	// vkDestroyDescriptorPool, vkDestroyPipelineLayout, vkDestroyShaderModule, vkDestroyPipeline,
	// vkDestroyCommandPool
	sigVoidHandleHandlePtr types.CallInterface
	// void(handle, ptr, ptr) - vkEnumeratePhysicalDevices' sibling shape,
	// vkGetPhysicalDeviceQueueFamilyProperties
	sigVoidHandlePtrPtr types.CallInterface
	// void(handle, u32, u32, ptr) - vkGetDeviceQueue
	sigVoidHandleU32U32Ptr types.CallInterface
	// void(handle, handle, ptr) - vkGetBufferMemoryRequirements
	sigVoidGetBufferMemReq types.CallInterface
	// void(handle, handle) - vkUnmapMemory
	sigVoidHandleHandle types.CallInterface
	// void(handle, u32, handle) - vkCmdBindPipeline
	sigVoidCmdBindPipeline types.CallInterface
	// void(handle, u32, u32, u32) - vkCmdDispatch
	sigVoidHandleU32x3 types.CallInterface
	// void(handle, u32, handle, u32, u32, ptr, u32, ptr) - vkCmdBindDescriptorSets
	sigVoidCmdBindDescriptorSets types.CallInterface
	// void(handle, handle, u32, u32, u32, ptr) - vkCmdPushConstants
	sigVoidCmdPushConstants types.CallInterface
	// void(handle, handle, handle, u32, ptr) - vkCmdCopyBuffer
	sigVoidCmdCopyBuffer types.CallInterface
	// void(handle, u32, ptr, u32, ptr) - vkUpdateDescriptorSets
	sigVoidUpdateDescriptorSets types.CallInterface
)

// initSignatures prepares every CallInterface used by this package. It is
// called once from Init.
func initSignatures() error {
	ptr := types.PointerTypeDescriptor
	u32 := types.UInt32TypeDescriptor
	u64 := types.UInt64TypeDescriptor
	voidRet := types.VoidTypeDescriptor
	resultRet := types.SInt32TypeDescriptor

	sigs := []struct {
		cif  *types.CallInterface
		ret  *types.TypeDescriptor
		args []*types.TypeDescriptor
	}{
		{&sigResultPtrPtrPtr, resultRet, []*types.TypeDescriptor{ptr, ptr, ptr}},
		{&sigResultHandlePtrPtrPtr, resultRet, []*types.TypeDescriptor{u64, ptr, ptr, ptr}},
		{&sigResultHandlePtrPtr, resultRet, []*types.TypeDescriptor{u64, ptr, ptr}},
		{&sigResultHandlePtr, resultRet, []*types.TypeDescriptor{u64, ptr}},
		{&sigResultHandle, resultRet, []*types.TypeDescriptor{u64}},
		{&sigResultHandleHandleU32, resultRet, []*types.TypeDescriptor{u64, u64, u32}},
		{&sigResultHandleU32Ptr, resultRet, []*types.TypeDescriptor{u64, u32, ptr}},
		{&sigResultHandleU32PtrHandle, resultRet, []*types.TypeDescriptor{u64, u32, ptr, u64}},
		{&sigResultHandleU32PtrU32U64, resultRet, []*types.TypeDescriptor{u64, u32, ptr, u32, u64}},
		{&sigResultCreatePipelines, resultRet, []*types.TypeDescriptor{u64, u64, u32, ptr, ptr, ptr}},
		{&sigResultHandleHandleHandleU64, resultRet, []*types.TypeDescriptor{u64, u64, u64, u64}},
		{&sigResultMapMemory, resultRet, []*types.TypeDescriptor{u64, u64, u64, u64, u32, ptr}},

		{&sigVoidHandlePtr, voidRet, []*types.TypeDescriptor{u64, ptr}},
		{&sigVoidHandleHandlePtr, voidRet, []*types.TypeDescriptor{u64, u64, ptr}},
		{&sigVoidHandlePtrPtr, voidRet, []*types.TypeDescriptor{u64, ptr, ptr}},
		{&sigVoidHandleU32U32Ptr, voidRet, []*types.TypeDescriptor{u64, u32, u32, ptr}},
		{&sigVoidGetBufferMemReq, voidRet, []*types.TypeDescriptor{u64, u64, ptr}},
		{&sigVoidHandleHandle, voidRet, []*types.TypeDescriptor{u64, u64}},
		{&sigVoidCmdBindPipeline, voidRet, []*types.TypeDescriptor{u64, u32, u64}},
		{&sigVoidHandleU32x3, voidRet, []*types.TypeDescriptor{u64, u32, u32, u32}},
		{&sigVoidCmdBindDescriptorSets, voidRet, []*types.TypeDescriptor{u64, u32, u64, u32, u32, ptr, u32, ptr}},
		{&sigVoidCmdPushConstants, voidRet, []*types.TypeDescriptor{u64, u64, u32, u32, u32, ptr}},
		{&sigVoidCmdCopyBuffer, voidRet, []*types.TypeDescriptor{u64, u64, u64, u32, ptr}},
		{&sigVoidUpdateDescriptorSets, voidRet, []*types.TypeDescriptor{u64, u32, ptr, u32, ptr}},
	}

	for _, s := range sigs {
		if err := ffi.PrepareCallInterface(s.cif, types.DefaultCall, s.ret, s.args); err != nil {
			return err
		}
	}
	return nil
}
