// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package vk

// Handles. Vulkan dispatchable handles are opaque pointer-sized values;
// non-dispatchable handles are opaque uint64 values on every platform goffi
// targets. Both are modeled as uint64 here since FFI call arguments are
// always passed by address regardless of width.
type (
	Instance       uint64
	PhysicalDevice uint64
	Device         uint64
	Queue          uint64
	CommandPool    uint64
	CommandBuffer  uint64
	Fence          uint64
	Buffer         uint64
	DeviceMemory   uint64

	DescriptorSetLayout uint64
	DescriptorPool      uint64
	DescriptorSet       uint64
	PipelineLayout      uint64
	Pipeline            uint64
	ShaderModule        uint64
)

// Result mirrors VkResult.
type Result int32

const (
	Success                   Result = 0
	NotReady                  Result = 1
	Timeout                   Result = 2
	Incomplete                Result = 5
	ErrorOutOfHostMemory      Result = -1
	ErrorOutOfDeviceMemory    Result = -2
	ErrorInitializationFailed Result = -3
	ErrorDeviceLost           Result = -4
	ErrorMemoryMapFailed      Result = -5
	ErrorExtensionNotPresent  Result = -7
	ErrorFeatureNotPresent    Result = -8
	ErrorTooManyObjects       Result = -10
)

func (r Result) String() string {
	switch r {
	case Success:
		return "VK_SUCCESS"
	case NotReady:
		return "VK_NOT_READY"
	case Timeout:
		return "VK_TIMEOUT"
	case Incomplete:
		return "VK_INCOMPLETE"
	case ErrorOutOfHostMemory:
		return "VK_ERROR_OUT_OF_HOST_MEMORY"
	case ErrorOutOfDeviceMemory:
		return "VK_ERROR_OUT_OF_DEVICE_MEMORY"
	case ErrorInitializationFailed:
		return "VK_ERROR_INITIALIZATION_FAILED"
	case ErrorDeviceLost:
		return "VK_ERROR_DEVICE_LOST"
	case ErrorMemoryMapFailed:
		return "VK_ERROR_MEMORY_MAP_FAILED"
	case ErrorExtensionNotPresent:
		return "VK_ERROR_EXTENSION_NOT_PRESENT"
	case ErrorFeatureNotPresent:
		return "VK_ERROR_FEATURE_NOT_PRESENT"
	case ErrorTooManyObjects:
		return "VK_ERROR_TOO_MANY_OBJECTS"
	default:
		return "VK_RESULT_UNKNOWN"
	}
}

// StructureType mirrors VkStructureType for the sTypes this package uses.
type StructureType uint32

const (
	StructureTypeApplicationInfo              StructureType = 0
	StructureTypeInstanceCreateInfo           StructureType = 1
	StructureTypeDeviceQueueCreateInfo        StructureType = 2
	StructureTypeDeviceCreateInfo             StructureType = 3
	StructureTypeSubmitInfo                   StructureType = 4
	StructureTypeMemoryAllocateInfo           StructureType = 5
	StructureTypeFenceCreateInfo              StructureType = 8
	StructureTypeBufferCreateInfo             StructureType = 12
	StructureTypeCommandPoolCreateInfo        StructureType = 39
	StructureTypeCommandBufferAllocateInfo    StructureType = 40
	StructureTypeCommandBufferBeginInfo       StructureType = 42
	StructureTypeDescriptorSetLayoutCreateInfo StructureType = 32
	StructureTypeDescriptorPoolCreateInfo     StructureType = 33
	StructureTypeDescriptorSetAllocateInfo    StructureType = 34
	StructureTypeWriteDescriptorSet           StructureType = 35
	StructureTypePipelineLayoutCreateInfo     StructureType = 30
	StructureTypeShaderModuleCreateInfo       StructureType = 16
	StructureTypeComputePipelineCreateInfo    StructureType = 29
	StructureTypePipelineShaderStageCreateInfo StructureType = 18
	StructureTypePhysicalDeviceFeatures2      StructureType = 1000059000
)

// QueueFlagBits mirrors VkQueueFlagBits.
type QueueFlagBits uint32

const (
	QueueGraphicsBit     QueueFlagBits = 1 << 0
	QueueComputeBit      QueueFlagBits = 1 << 1
	QueueTransferBit     QueueFlagBits = 1 << 2
	QueueSparseBindingBit QueueFlagBits = 1 << 3
)

// MemoryPropertyFlagBits mirrors VkMemoryPropertyFlagBits.
type MemoryPropertyFlagBits uint32

const (
	MemoryPropertyDeviceLocalBit  MemoryPropertyFlagBits = 1 << 0
	MemoryPropertyHostVisibleBit  MemoryPropertyFlagBits = 1 << 1
	MemoryPropertyHostCoherentBit MemoryPropertyFlagBits = 1 << 2
	MemoryPropertyHostCachedBit   MemoryPropertyFlagBits = 1 << 3
)

// BufferUsageFlagBits mirrors VkBufferUsageFlagBits.
type BufferUsageFlagBits uint32

const (
	BufferUsageTransferSrcBit   BufferUsageFlagBits = 1 << 0
	BufferUsageTransferDstBit   BufferUsageFlagBits = 1 << 1
	BufferUsageStorageBufferBit BufferUsageFlagBits = 1 << 5
)

// DescriptorType mirrors VkDescriptorType; only storage buffers are needed.
type DescriptorType uint32

const (
	DescriptorTypeStorageBuffer DescriptorType = 7
)

// ShaderStageFlagBits mirrors VkShaderStageFlagBits.
type ShaderStageFlagBits uint32

const (
	ShaderStageComputeBit ShaderStageFlagBits = 1 << 5
)

// PipelineBindPoint mirrors VkPipelineBindPoint.
type PipelineBindPoint uint32

const (
	PipelineBindPointCompute PipelineBindPoint = 1
)

// CommandBufferLevel mirrors VkCommandBufferLevel.
type CommandBufferLevel uint32

const (
	CommandBufferLevelPrimary CommandBufferLevel = 0
)

// CommandBufferUsageFlagBits mirrors VkCommandBufferUsageFlagBits.
type CommandBufferUsageFlagBits uint32

const (
	CommandBufferUsageOneTimeSubmitBit CommandBufferUsageFlagBits = 1 << 0
)

// CommandPoolCreateFlagBits mirrors VkCommandPoolCreateFlagBits.
type CommandPoolCreateFlagBits uint32

const (
	CommandPoolCreateResetCommandBufferBit CommandPoolCreateFlagBits = 1 << 1
)

// CommandPoolResetFlagBits mirrors VkCommandPoolResetFlagBits.
type CommandPoolResetFlagBits uint32

// FenceCreateFlagBits mirrors VkFenceCreateFlagBits.
type FenceCreateFlagBits uint32

const (
	FenceCreateSignaledBit FenceCreateFlagBits = 1 << 0
)

// DescriptorPoolCreateFlagBits mirrors VkDescriptorPoolCreateFlagBits.
type DescriptorPoolCreateFlagBits uint32

const (
	DescriptorPoolCreateFreeDescriptorSetBit DescriptorPoolCreateFlagBits = 1 << 0
)

// ApplicationInfo mirrors VkApplicationInfo.
type ApplicationInfo struct {
	SType              StructureType
	PNext              uintptr
	PApplicationName   *byte
	ApplicationVersion uint32
	PEngineName        *byte
	EngineVersion      uint32
	APIVersion         uint32
}

// InstanceCreateInfo mirrors VkInstanceCreateInfo.
type InstanceCreateInfo struct {
	SType                   StructureType
	PNext                   uintptr
	Flags                   uint32
	PApplicationInfo        *ApplicationInfo
	EnabledLayerCount       uint32
	PpEnabledLayerNames     **byte
	EnabledExtensionCount   uint32
	PpEnabledExtensionNames **byte
}

// QueueFamilyProperties mirrors VkQueueFamilyProperties.
type QueueFamilyProperties struct {
	QueueFlags                  QueueFlagBits
	QueueCount                  uint32
	TimestampValidBits          uint32
	MinImageTransferGranularity [3]uint32
}

// MemoryType mirrors VkMemoryType.
type MemoryType struct {
	PropertyFlags MemoryPropertyFlagBits
	HeapIndex     uint32
}

// MemoryHeap mirrors VkMemoryHeap.
type MemoryHeap struct {
	Size  uint64
	Flags uint32
}

// PhysicalDeviceMemoryProperties mirrors VkPhysicalDeviceMemoryProperties.
type PhysicalDeviceMemoryProperties struct {
	MemoryTypeCount uint32
	MemoryTypes     [32]MemoryType
	MemoryHeapCount uint32
	MemoryHeaps     [16]MemoryHeap
}

// DeviceQueueCreateInfo mirrors VkDeviceQueueCreateInfo.
type DeviceQueueCreateInfo struct {
	SType            StructureType
	PNext            uintptr
	Flags            uint32
	QueueFamilyIndex uint32
	QueueCount       uint32
	PQueuePriorities *float32
}

// PhysicalDeviceFeatures mirrors the subset of VkPhysicalDeviceFeatures this
// engine negotiates (shaderInt64 et al. live in the extended-features chain
// in real Vulkan; they are flattened here into a single bitset consumed by
// the feature-negotiation layer instead of reproducing the full upstream
// struct, since this package never forwards the struct across a real ABI
// boundary that would require exact field layout beyond what it declares).
type PhysicalDeviceFeatures struct {
	ShaderInt64            uint32
	ShaderInt16            uint32
	ShaderInt8             uint32
	ShaderFloat16          uint32
	ShaderFloat64          uint32
	VulkanMemoryModel      uint32
	StorageBuffer8BitAccess  uint32
	StorageBuffer16BitAccess uint32
}

// DeviceCreateInfo mirrors VkDeviceCreateInfo.
type DeviceCreateInfo struct {
	SType                   StructureType
	PNext                   uintptr
	Flags                   uint32
	QueueCreateInfoCount    uint32
	PQueueCreateInfos       *DeviceQueueCreateInfo
	EnabledLayerCount       uint32
	PpEnabledLayerNames     **byte
	EnabledExtensionCount   uint32
	PpEnabledExtensionNames **byte
	PEnabledFeatures        *PhysicalDeviceFeatures
}

// MemoryAllocateInfo mirrors VkMemoryAllocateInfo.
type MemoryAllocateInfo struct {
	SType           StructureType
	PNext           uintptr
	AllocationSize  uint64
	MemoryTypeIndex uint32
}

// MemoryRequirements mirrors VkMemoryRequirements.
type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

// BufferCreateInfo mirrors VkBufferCreateInfo.
type BufferCreateInfo struct {
	SType                 StructureType
	PNext                 uintptr
	Flags                 uint32
	Size                  uint64
	Usage                 BufferUsageFlagBits
	SharingMode           uint32
	QueueFamilyIndexCount uint32
	PQueueFamilyIndices   *uint32
}

// CommandPoolCreateInfo mirrors VkCommandPoolCreateInfo.
type CommandPoolCreateInfo struct {
	SType            StructureType
	PNext            uintptr
	Flags            CommandPoolCreateFlagBits
	QueueFamilyIndex uint32
}

// CommandBufferAllocateInfo mirrors VkCommandBufferAllocateInfo.
type CommandBufferAllocateInfo struct {
	SType              StructureType
	PNext              uintptr
	CommandPool        CommandPool
	Level              CommandBufferLevel
	CommandBufferCount uint32
}

// CommandBufferBeginInfo mirrors VkCommandBufferBeginInfo.
type CommandBufferBeginInfo struct {
	SType            StructureType
	PNext            uintptr
	Flags            CommandBufferUsageFlagBits
	PInheritanceInfo uintptr
}

// BufferCopy mirrors VkBufferCopy.
type BufferCopy struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

// FenceCreateInfo mirrors VkFenceCreateInfo.
type FenceCreateInfo struct {
	SType StructureType
	PNext uintptr
	Flags FenceCreateFlagBits
}

// SubmitInfo mirrors VkSubmitInfo.
type SubmitInfo struct {
	SType                StructureType
	PNext                uintptr
	WaitSemaphoreCount   uint32
	PWaitSemaphores      uintptr
	PWaitDstStageMask    uintptr
	CommandBufferCount   uint32
	PCommandBuffers      *CommandBuffer
	SignalSemaphoreCount uint32
	PSignalSemaphores    uintptr
}

// DescriptorSetLayoutBinding mirrors VkDescriptorSetLayoutBinding.
type DescriptorSetLayoutBinding struct {
	Binding            uint32
	DescriptorType     DescriptorType
	DescriptorCount    uint32
	StageFlags         ShaderStageFlagBits
	PImmutableSamplers uintptr
}

// DescriptorSetLayoutCreateInfo mirrors VkDescriptorSetLayoutCreateInfo.
type DescriptorSetLayoutCreateInfo struct {
	SType        StructureType
	PNext        uintptr
	Flags        uint32
	BindingCount uint32
	PBindings    *DescriptorSetLayoutBinding
}

// DescriptorPoolSize mirrors VkDescriptorPoolSize.
type DescriptorPoolSize struct {
	Type            DescriptorType
	DescriptorCount uint32
}

// DescriptorPoolCreateInfo mirrors VkDescriptorPoolCreateInfo.
type DescriptorPoolCreateInfo struct {
	SType         StructureType
	PNext         uintptr
	Flags         DescriptorPoolCreateFlagBits
	MaxSets       uint32
	PoolSizeCount uint32
	PPoolSizes    *DescriptorPoolSize
}

// DescriptorSetAllocateInfo mirrors VkDescriptorSetAllocateInfo.
type DescriptorSetAllocateInfo struct {
	SType              StructureType
	PNext              uintptr
	DescriptorPool     DescriptorPool
	DescriptorSetCount uint32
	PSetLayouts        *DescriptorSetLayout
}

// DescriptorBufferInfo mirrors VkDescriptorBufferInfo.
type DescriptorBufferInfo struct {
	Buffer Buffer
	Offset uint64
	Range  uint64
}

// WriteDescriptorSet mirrors VkWriteDescriptorSet.
type WriteDescriptorSet struct {
	SType            StructureType
	PNext            uintptr
	DstSet           DescriptorSet
	DstBinding       uint32
	DstArrayElement  uint32
	DescriptorCount  uint32
	DescriptorType   DescriptorType
	PImageInfo       uintptr
	PBufferInfo      *DescriptorBufferInfo
	PTexelBufferView uintptr
}

// PushConstantRange mirrors VkPushConstantRange.
type PushConstantRange struct {
	StageFlags ShaderStageFlagBits
	Offset     uint32
	Size       uint32
}

// PipelineLayoutCreateInfo mirrors VkPipelineLayoutCreateInfo.
type PipelineLayoutCreateInfo struct {
	SType                  StructureType
	PNext                  uintptr
	Flags                  uint32
	SetLayoutCount         uint32
	PSetLayouts            *DescriptorSetLayout
	PushConstantRangeCount uint32
	PPushConstantRanges    *PushConstantRange
}

// ShaderModuleCreateInfo mirrors VkShaderModuleCreateInfo.
type ShaderModuleCreateInfo struct {
	SType    StructureType
	PNext    uintptr
	Flags    uint32
	CodeSize uintptr
	PCode    *uint32
}

// PipelineShaderStageCreateInfo mirrors VkPipelineShaderStageCreateInfo.
type PipelineShaderStageCreateInfo struct {
	SType               StructureType
	PNext               uintptr
	Flags               uint32
	Stage               ShaderStageFlagBits
	Module              ShaderModule
	PName               *byte
	PSpecializationInfo uintptr
}

// ComputePipelineCreateInfo mirrors VkComputePipelineCreateInfo.
type ComputePipelineCreateInfo struct {
	SType              StructureType
	PNext              uintptr
	Flags              uint32
	Stage              PipelineShaderStageCreateInfo
	Layout             PipelineLayout
	BasePipelineHandle Pipeline
	BasePipelineIndex  int32
}
