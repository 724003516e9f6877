// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/Leif-Rydenfalk/krnl/internal/slab"
	"github.com/Leif-Rydenfalk/krnl/internal/vk"
)

// hostStageSize bounds the permanent staging buffer a transfer worker
// keeps mapped for the lifetime of the engine.
const hostStageSize = 32 << 20

// Worker owns one Vulkan queue, one command pool, and one fence. It pulls
// Ops off a shared channel, encodes a single command buffer per Op,
// submits, and waits for completion before looping.
type Worker struct {
	cmds   vk.Commander
	device vk.Device
	queue  vk.Queue
	logger *slog.Logger

	pool  vk.CommandPool
	fence vk.Fence

	// descPool is non-nil for workers that service Compute Ops.
	descPool vk.DescriptorPool
	// staging is non-nil for workers that service Upload/Download Ops.
	staging *slab.ChunkAlloc

	ch      <-chan Op
	seq     uint64
	pending atomic.Uint64 // last sequence number assigned; read by Engine.Wait
	done    atomic.Uint64
	exited  *atomic.Bool
}

// newWorker creates a command pool and fence for the queue and, if
// allocator is non-nil, a permanent staging buffer for transfer Ops.
func newWorker(cmds vk.Commander, device vk.Device, queue vk.Queue, familyIndex uint32, ch <-chan Op, exited *atomic.Bool, compute bool, allocator *slab.BufferAllocator, logger *slog.Logger) (*Worker, error) {
	w := &Worker{cmds: cmds, device: device, queue: queue, ch: ch, exited: exited, logger: logger}

	poolInfo := &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateResetCommandBufferBit,
		QueueFamilyIndex: familyIndex,
	}
	if r := cmds.CreateCommandPool(device, poolInfo, &w.pool); r != vk.Success {
		return nil, fmt.Errorf("engine: vkCreateCommandPool: %s", r)
	}

	fenceInfo := &vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo, Flags: vk.FenceCreateSignaledBit}
	if r := cmds.CreateFence(device, fenceInfo, &w.fence); r != vk.Success {
		cmds.DestroyCommandPool(device, w.pool)
		return nil, fmt.Errorf("engine: vkCreateFence: %s", r)
	}

	if compute {
		poolSizes := []vk.DescriptorPoolSize{{Type: vk.DescriptorTypeStorageBuffer, DescriptorCount: 64}}
		descInfo := &vk.DescriptorPoolCreateInfo{
			SType:         vk.StructureTypeDescriptorPoolCreateInfo,
			Flags:         vk.DescriptorPoolCreateFreeDescriptorSetBit,
			MaxSets:       8,
			PoolSizeCount: uint32(len(poolSizes)),
			PPoolSizes:    &poolSizes[0],
		}
		if r := cmds.CreateDescriptorPool(device, descInfo, &w.descPool); r != vk.Success {
			cmds.DestroyFence(device, w.fence)
			cmds.DestroyCommandPool(device, w.pool)
			return nil, fmt.Errorf("engine: vkCreateDescriptorPool: %s", r)
		}
	}

	if allocator != nil {
		staging, err := allocator.Alloc(slab.Host, hostStageSize)
		if err != nil {
			return nil, fmt.Errorf("engine: staging buffer: %w", err)
		}
		w.staging = staging
	}

	return w, nil
}

func (w *Worker) destroy() {
	if w.descPool != 0 {
		w.cmds.DestroyDescriptorPool(w.device, w.descPool)
	}
	w.cmds.DestroyFence(w.device, w.fence)
	w.cmds.DestroyCommandPool(w.device, w.pool)
}

// run is the Worker's main loop. It returns when ch is closed (engine
// shutdown) or when a Vulkan call fails unrecoverably; either way its own
// deferred store flips exited, mirroring the teacher's Drop-on-return idiom.
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()
	defer w.exited.Store(true)

	for op := range w.ch {
		if err := w.step(op); err != nil {
			if w.logger != nil {
				w.logger.Error("engine worker: op failed, shutting down", "err", err)
			}
			return
		}
	}
}

func (w *Worker) step(op Op) error {
	if r := w.cmds.ResetCommandPool(w.device, w.pool, 0); r != vk.Success {
		return fmt.Errorf("vkResetCommandPool: %s", r)
	}

	var cb vk.CommandBuffer
	allocInfo := &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        w.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	if r := w.cmds.AllocateCommandBuffers(w.device, allocInfo, &cb); r != vk.Success {
		return fmt.Errorf("vkAllocateCommandBuffers: %s", r)
	}

	beginInfo := &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageOneTimeSubmitBit,
	}
	if r := w.cmds.BeginCommandBuffer(cb, beginInfo); r != vk.Success {
		return fmt.Errorf("vkBeginCommandBuffer: %s", r)
	}

	if r := w.cmds.ResetFences(w.device, &w.fence); r != vk.Success {
		return fmt.Errorf("vkResetFences: %s", r)
	}

	switch op.Kind {
	case OpUpload:
		return w.stepUpload(cb, op.Upload)
	case OpDownload:
		return w.stepDownload(cb, op.Download)
	case OpCompute:
		return w.stepCompute(cb, op.Compute)
	default:
		return fmt.Errorf("unknown op kind %d", op.Kind)
	}
}

func (w *Worker) nextFuture() WorkerFuture {
	w.seq++
	w.pending.Store(w.seq)
	return WorkerFuture{pending: w.seq, completed: &w.done}
}

// submit ends and submits cb against the worker's fence without waiting.
func (w *Worker) submit(cb vk.CommandBuffer) error {
	if r := w.cmds.EndCommandBuffer(cb); r != vk.Success {
		return fmt.Errorf("vkEndCommandBuffer: %s", r)
	}
	submit := &vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    &cb,
	}
	if r := w.cmds.QueueSubmit(w.queue, submit, w.fence); r != vk.Success {
		return fmt.Errorf("vkQueueSubmit: %s", r)
	}
	return nil
}

// waitFence blocks until the worker's fence, signaled by its last submit,
// is reached.
func (w *Worker) waitFence() error {
	const forever = ^uint64(0)
	if r := w.cmds.WaitForFences(w.device, &w.fence, forever); r != vk.Success {
		return fmt.Errorf("vkWaitForFences: %s", r)
	}
	return nil
}

func (w *Worker) submitAndWait(cb vk.CommandBuffer) error {
	if err := w.submit(cb); err != nil {
		return err
	}
	return w.waitFence()
}

func (w *Worker) stepUpload(cb vk.CommandBuffer, op *uploadOp) error {
	op.stagingReady <- w.staging.Mapped()
	<-op.submitReady

	region := vk.BufferCopy{SrcOffset: w.staging.Offset, DstOffset: op.dstOffset, Size: op.length}
	w.cmds.CmdCopyBuffer(cb, w.staging.Buffer(), op.dstBuffer, 1, &region)

	future := w.nextFuture()
	if err := w.submit(cb); err != nil {
		return err
	}
	op.future <- future

	if err := w.waitFence(); err != nil {
		return err
	}
	w.done.Store(future.pending)
	return nil
}

func (w *Worker) stepDownload(cb vk.CommandBuffer, op *downloadOp) error {
	region := vk.BufferCopy{SrcOffset: op.srcOffset, DstOffset: w.staging.Offset, Size: op.length}
	w.cmds.CmdCopyBuffer(cb, op.srcBuffer, w.staging.Buffer(), 1, &region)

	future := w.nextFuture()
	if err := w.submitAndWait(cb); err != nil {
		return err
	}
	w.done.Store(future.pending)

	op.dataReady <- w.staging.Mapped()
	<-op.consumed
	return nil
}

func (w *Worker) stepCompute(cb vk.CommandBuffer, op *computeOp) error {
	for _, f := range op.inputFutures {
		if err := spinUntilReady(f, w.exited); err != nil {
			return err
		}
	}

	var set vk.DescriptorSet
	setAllocInfo := &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     w.descPool,
		DescriptorSetCount: 1,
		PSetLayouts:        &op.descLayout,
	}
	if r := w.cmds.AllocateDescriptorSets(w.device, setAllocInfo, &set); r != vk.Success {
		return fmt.Errorf("vkAllocateDescriptorSets: %s", r)
	}

	bufferInfos := make([]vk.DescriptorBufferInfo, len(op.bindings))
	writes := make([]vk.WriteDescriptorSet, len(op.bindings))
	for i, b := range op.bindings {
		bufferInfos[i] = vk.DescriptorBufferInfo{Buffer: b.Buffer, Offset: b.Offset, Range: b.Length}
		writes[i] = vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      uint32(i),
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeStorageBuffer,
			PBufferInfo:     &bufferInfos[i],
		}
	}
	if len(writes) > 0 {
		w.cmds.UpdateDescriptorSets(w.device, uint32(len(writes)), &writes[0])
	}

	w.cmds.CmdBindPipeline(cb, vk.PipelineBindPointCompute, op.pipeline)
	w.cmds.CmdBindDescriptorSets(cb, vk.PipelineBindPointCompute, op.layout, 0, 1, &set)
	if len(op.pushConsts) > 0 {
		w.cmds.CmdPushConstants(cb, op.layout, vk.ShaderStageComputeBit, 0, uint32(len(op.pushConsts)), unsafe.Pointer(&op.pushConsts[0]))
	}
	w.cmds.CmdDispatch(cb, op.groupsX, op.groupsY, op.groupsZ)

	future := w.nextFuture()
	if err := w.submit(cb); err != nil {
		return err
	}
	op.future <- future

	if err := w.waitFence(); err != nil {
		return err
	}
	w.done.Store(future.pending)

	if r := w.cmds.ResetDescriptorPool(w.device, w.descPool); r != vk.Success {
		return fmt.Errorf("vkResetDescriptorPool: %s", r)
	}
	return nil
}
