// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package krnl

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/Leif-Rydenfalk/krnl/internal/engine"
	"github.com/Leif-Rydenfalk/krnl/internal/kerndesc"
	"github.com/Leif-Rydenfalk/krnl/internal/specializer"
	"github.com/Leif-Rydenfalk/krnl/internal/vk"
)

// SpecValue is one specialization-constant argument bound at Build time,
// encoded as the little-endian bytes of its declared scalar type's width.
type SpecValue struct {
	Type  ScalarType
	Bytes []byte
}

// KernelBuilder configures one specialization of a compiled artifact
// before Build turns it into a ready-to-dispatch Kernel.
type KernelBuilder struct {
	artifact *kerndesc.Descriptor
	threads  uint32
	specs    []SpecValue
}

// NewKernelBuilder decodes a binary kernel artifact, as produced by the
// offline SPIR-V compiler, into a builder defaulting to the artifact's
// declared thread-group size and no specialization constants.
func NewKernelBuilder(artifact []byte) (*KernelBuilder, error) {
	d, err := kerndesc.Decode(artifact)
	if err != nil {
		return nil, fmt.Errorf("krnl: %w", err)
	}
	return &KernelBuilder{artifact: d, threads: d.Threads}, nil
}

// WithThreads overrides the artifact's declared thread-group size.
func (kb *KernelBuilder) WithThreads(threads uint32) *KernelBuilder {
	kb.threads = threads
	return kb
}

// Specialize sets the specialization-constant values bound into the
// module at Build time, in the artifact's declared spec-constant order.
func (kb *KernelBuilder) Specialize(specs ...SpecValue) *KernelBuilder {
	kb.specs = specs
	return kb
}

// maxThreads is the Vulkan minimum guaranteed maxComputeWorkGroupInvocations;
// a real device may advertise more, but this runtime has no limits query
// wired up yet (see DESIGN.md), so Build rejects anything past the floor
// every conformant driver accepts rather than risk a silent pipeline-creation
// failure on a smaller device.
const maxThreads = 128

// Build specializes the artifact's SPIR-V for this builder's threads and
// spec values and compiles it into a pipeline on e, reusing an identical
// specialization already cached on e rather than recompiling it.
func (kb *KernelBuilder) Build(e *Engine) (*Kernel, error) {
	if kb.threads > maxThreads {
		return nil, &InvalidArgumentError{Reason: fmt.Sprintf("threads %d exceeds max_threads %d", kb.threads, maxThreads)}
	}
	required := Features(kb.artifact.Features)
	available := e.Features()
	if !available.ContainsAll(required) {
		return nil, &FeatureUnsupportedError{Required: required, Available: available}
	}

	key := engine.KernelKey{ID: artifactID(kb.artifact.Name), SpecBytes: kb.specKey()}
	entry, err := e.inner.Cache.Cached(key, func() (*engine.CacheEntry, error) {
		return kb.compile(e)
	})
	if err != nil {
		return nil, err
	}
	return &Kernel{engine: e, desc: kb.artifact, entry: entry}, nil
}

// artifactID derives a process-stable identifier for an artifact from its
// name, matching the compiler's guarantee that kernel names are unique
// within one build.
func artifactID(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}

// specKey packs threads and every spec value into a cache key distinct
// for every specialization this builder could produce.
func (kb *KernelBuilder) specKey() string {
	buf := make([]byte, 4, 4+4*len(kb.specs))
	binary.LittleEndian.PutUint32(buf, kb.threads)
	for _, s := range kb.specs {
		buf = append(buf, byte(s.Type))
		buf = append(buf, s.Bytes...)
	}
	return string(buf)
}

func (kb *KernelBuilder) compile(e *Engine) (*engine.CacheEntry, error) {
	specValues := make([]specializer.SpecValue, len(kb.specs))
	for i, s := range kb.specs {
		specValues[i] = specializer.SpecValue{Words: packSpecWords(s)}
	}

	specialized, err := specializer.Specialize(wordsToBytes(kb.artifact.SPIRV), kb.threads, specValues, e.debugPrintf)
	if err != nil {
		return nil, &SpecError{Reason: err.Error(), Cause: err}
	}
	words, err := bytesToWords(specialized)
	if err != nil {
		return nil, &SpecError{Reason: err.Error(), Cause: err}
	}

	cmds, device := e.inner.Device()
	return buildPipeline(cmds, device, kb.artifact, words)
}

// packSpecWords encodes a specialization value as the one or two
// little-endian words a SPIR-V literal of its width occupies: scalars up
// to 32 bits pack into a single word, 64-bit scalars into two.
func packSpecWords(s SpecValue) []uint32 {
	if s.Type.Size() <= 4 {
		var w uint32
		for i, b := range s.Bytes {
			w |= uint32(b) << uint(8*i)
		}
		return []uint32{w}
	}
	return []uint32{binary.LittleEndian.Uint32(s.Bytes[0:4]), binary.LittleEndian.Uint32(s.Bytes[4:8])}
}

func wordsToBytes(words []uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

func bytesToWords(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("specialized module is not word-aligned (%d bytes)", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words, nil
}

// buildPipeline creates the descriptor-set layout, pipeline layout, shader
// module, and compute pipeline for one specialized artifact. The shader
// module is destroyed once the pipeline is built; Vulkan does not require
// it to outlive pipeline creation.
func buildPipeline(cmds vk.Commander, device vk.Device, d *kerndesc.Descriptor, words []uint32) (*engine.CacheEntry, error) {
	bindings := make([]vk.DescriptorSetLayoutBinding, len(d.SliceDescs))
	for i := range d.SliceDescs {
		bindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         uint32(i),
			DescriptorType:  vk.DescriptorTypeStorageBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageComputeBit,
		}
	}
	layoutInfo := &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
	}
	if len(bindings) > 0 {
		layoutInfo.PBindings = &bindings[0]
	}
	var descLayout vk.DescriptorSetLayout
	if r := cmds.CreateDescriptorSetLayout(device, layoutInfo, &descLayout); r != vk.Success {
		return nil, fmt.Errorf("krnl: vkCreateDescriptorSetLayout: %s", r)
	}

	pushRange := vk.PushConstantRange{StageFlags: vk.ShaderStageComputeBit, Size: d.PushConstsRange()}
	layoutCreate := &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    &descLayout,
	}
	if pushRange.Size > 0 {
		layoutCreate.PushConstantRangeCount = 1
		layoutCreate.PPushConstantRanges = &pushRange
	}
	var layout vk.PipelineLayout
	if r := cmds.CreatePipelineLayout(device, layoutCreate, &layout); r != vk.Success {
		cmds.DestroyDescriptorSetLayout(device, descLayout)
		return nil, fmt.Errorf("krnl: vkCreatePipelineLayout: %s", r)
	}

	moduleInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uintptr(len(words) * 4),
		PCode:    &words[0],
	}
	var module vk.ShaderModule
	if r := cmds.CreateShaderModule(device, moduleInfo, &module); r != vk.Success {
		cmds.DestroyPipelineLayout(device, layout)
		cmds.DestroyDescriptorSetLayout(device, descLayout)
		return nil, fmt.Errorf("krnl: vkCreateShaderModule: %s", r)
	}
	defer cmds.DestroyShaderModule(device, module)

	entryPoint := append([]byte("main"), 0)
	pipelineInfo := &vk.ComputePipelineCreateInfo{
		SType: vk.StructureTypeComputePipelineCreateInfo,
		Stage: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageComputeBit,
			Module: module,
			PName:  &entryPoint[0],
		},
		Layout: layout,
	}
	var pipeline vk.Pipeline
	if r := cmds.CreateComputePipelines(device, pipelineInfo, &pipeline); r != vk.Success {
		cmds.DestroyPipelineLayout(device, layout)
		cmds.DestroyDescriptorSetLayout(device, descLayout)
		return nil, fmt.Errorf("krnl: vkCreateComputePipelines: %s", r)
	}

	return &engine.CacheEntry{Pipeline: pipeline, Layout: layout, DescLayout: descLayout}, nil
}

// Kernel is a compiled, specialized compute pipeline ready to dispatch.
type Kernel struct {
	engine *Engine
	desc   *kerndesc.Descriptor
	entry  *engine.CacheEntry

	groups        [3]uint32
	groupsSet     bool
	globalThreads uint32
	globalSet     bool
}

// Features returns the device features this kernel's artifact declared.
func (k *Kernel) Features() Features { return Features(k.desc.Features) }

// WithGroups fixes the dispatch's group count explicitly, overriding the
// item-bound computation Dispatch would otherwise perform.
func (k *Kernel) WithGroups(x, y, z uint32) *Kernel {
	k.groups = [3]uint32{x, y, z}
	k.groupsSet = true
	k.globalSet = false
	return k
}

// WithGlobalThreads requests enough one-dimensional groups to cover n
// total invocations, rounding up to the kernel's thread-group size.
func (k *Kernel) WithGlobalThreads(n uint32) *Kernel {
	k.globalThreads = n
	k.globalSet = true
	k.groupsSet = false
	return k
}
