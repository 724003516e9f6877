// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/Leif-Rydenfalk/krnl/internal/slab"
	"github.com/Leif-Rydenfalk/krnl/internal/vk"
)

// Features mirrors the public capability bitset without importing the
// root package: the root package imports this one, so the reverse import
// would be a cycle.
type Features uint64

const (
	FeatureShaderInt8 Features = 1 << iota
	FeatureShaderInt16
	FeatureShaderInt64
	FeatureShaderFloat16
	FeatureShaderFloat64
	FeatureVulkanMemoryModel
	FeatureStorageBuffer8BitAccess
	FeatureStorageBuffer16BitAccess
)

// Options configures Engine construction.
type Options struct {
	// DeviceIndex selects which enumerated physical device to use; 0 picks
	// the first.
	DeviceIndex int
	// DebugPrintf is carried for parity with the root package's Options;
	// New and NewFromCommander do not read it.
	DebugPrintf bool
	// WorkerCount overrides the default of two workers per queue; 0 keeps
	// the default. Exposed for tests that want single-worker determinism.
	WorkerCount int
	// Logger overrides the package default logger for this engine.
	Logger *slog.Logger
}

// Engine owns a Vulkan device, its queues, and the worker pool that
// services Upload/Download/Compute Ops against it.
type Engine struct {
	cmds       vk.Commander
	instance   vk.Instance
	physDevice vk.PhysicalDevice
	device     vk.Device

	deviceIndex int

	memProps  vk.PhysicalDeviceMemoryProperties
	Allocator *slab.BufferAllocator

	computeFamily  uint32
	transferFamily uint32
	sharedQueue    bool

	computeCh chan Op
	transferCh chan Op

	workers      []*Worker
	wg           sync.WaitGroup
	exited       atomic.Bool
	shutdownOnce sync.Once

	Cache *KernelCache

	features Features
	logger   *slog.Logger
}

const defaultWorkersPerQueue = 2

// New enumerates physical devices, creates a logical device with the
// queue families this runtime needs, and spawns its worker pool.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	cmds := vk.NewCommands()
	cmds.LoadGlobal()

	instInfo := &vk.InstanceCreateInfo{SType: vk.StructureTypeInstanceCreateInfo}
	var instance vk.Instance
	if r := cmds.CreateInstance(instInfo, &instance); r != vk.Success {
		return nil, fmt.Errorf("engine: vkCreateInstance: %s", r)
	}
	cmds.LoadInstance(instance)

	var count uint32
	if r := cmds.EnumeratePhysicalDevices(instance, &count, nil); r != vk.Success {
		cmds.DestroyInstance(instance)
		return nil, fmt.Errorf("engine: vkEnumeratePhysicalDevices (count): %s", r)
	}
	if count == 0 {
		cmds.DestroyInstance(instance)
		return nil, fmt.Errorf("engine: no Vulkan physical devices found")
	}
	devices := make([]vk.PhysicalDevice, count)
	if r := cmds.EnumeratePhysicalDevices(instance, &count, &devices[0]); r != vk.Success {
		cmds.DestroyInstance(instance)
		return nil, fmt.Errorf("engine: vkEnumeratePhysicalDevices: %s", r)
	}
	if opts.DeviceIndex >= len(devices) {
		cmds.DestroyInstance(instance)
		return nil, fmt.Errorf("engine: device index %d out of range (%d devices)", opts.DeviceIndex, len(devices))
	}
	physDevice := devices[opts.DeviceIndex]

	var familyCount uint32
	cmds.GetPhysicalDeviceQueueFamilyProperties(physDevice, &familyCount, nil)
	familyProps := make([]vk.QueueFamilyProperties, familyCount)
	if familyCount > 0 {
		cmds.GetPhysicalDeviceQueueFamilyProperties(physDevice, &familyCount, &familyProps[0])
	}

	computeFamilies := selectComputeFamilies(familyProps)
	if len(computeFamilies) == 0 {
		cmds.DestroyInstance(instance)
		return nil, fmt.Errorf("engine: no compute-capable queue family found")
	}
	computeFamily := uint32(computeFamilies[0])
	transferFamily, dedicatedTransfer := selectTransferFamily(familyProps, int(computeFamily))

	logger.Debug("engine: selected queue families",
		"compute", computeFamily, "transfer", transferFamily, "dedicated_transfer", dedicatedTransfer)

	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: computeFamily,
		QueueCount:       1,
		PQueuePriorities: priority(),
	}}
	if dedicatedTransfer {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(transferFamily),
			QueueCount:       1,
			PQueuePriorities: priority(),
		})
	}

	features := &vk.PhysicalDeviceFeatures{
		ShaderInt64:              1,
		ShaderInt16:              1,
		ShaderInt8:               1,
		ShaderFloat16:            1,
		ShaderFloat64:            1,
		VulkanMemoryModel:        1,
		StorageBuffer8BitAccess:  1,
		StorageBuffer16BitAccess: 1,
	}
	devInfo := &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(queueInfos)),
		PQueueCreateInfos:    &queueInfos[0],
		PEnabledFeatures:     features,
	}
	var device vk.Device
	if r := cmds.CreateDevice(physDevice, devInfo, &device); r != vk.Success {
		cmds.DestroyInstance(instance)
		return nil, fmt.Errorf("engine: vkCreateDevice: %s", r)
	}
	cmds.LoadDevice(device)

	var memProps vk.PhysicalDeviceMemoryProperties
	cmds.GetPhysicalDeviceMemoryProperties(physDevice, &memProps)
	allocator := slab.NewBufferAllocator(cmds, device, &memProps)

	e := &Engine{
		cmds:           cmds,
		instance:       instance,
		physDevice:     physDevice,
		device:         device,
		deviceIndex:    opts.DeviceIndex,
		memProps:       memProps,
		Allocator:      allocator,
		computeFamily:  computeFamily,
		transferFamily: uint32(transferFamily),
		sharedQueue:    !dedicatedTransfer,
		Cache:          newKernelCache(),
		features:       negotiatedFeatures(),
		logger:         logger,
	}
	if err := e.spawnWorkers(opts.WorkerCount); err != nil {
		e.Shutdown()
		return nil, err
	}
	return e, nil
}

// NewFromCommander builds an Engine around an already-created device and
// queue families, skipping instance creation and physical-device
// enumeration. It exists so tests can drive the worker pool and the
// public Dispatch/Upload/Download surface against vktest.Fake in process,
// the same way New drives them against a real driver.
func NewFromCommander(cmds vk.Commander, device vk.Device, memProps vk.PhysicalDeviceMemoryProperties, computeFamily, transferFamily uint32, sharedQueue bool, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	allocator := slab.NewBufferAllocator(cmds, device, &memProps)
	e := &Engine{
		cmds:           cmds,
		device:         device,
		deviceIndex:    opts.DeviceIndex,
		memProps:       memProps,
		Allocator:      allocator,
		computeFamily:  computeFamily,
		transferFamily: transferFamily,
		sharedQueue:    sharedQueue,
		Cache:          newKernelCache(),
		features:       negotiatedFeatures(),
		logger:         logger,
	}
	if err := e.spawnWorkers(opts.WorkerCount); err != nil {
		e.Shutdown()
		return nil, err
	}
	return e, nil
}

// spawnWorkers opens the compute and transfer channels and starts the
// worker goroutines servicing them, splitting into dedicated transfer
// workers when the device exposes a transfer-only queue family and
// folding transfer duty into the compute workers otherwise.
func (e *Engine) spawnWorkers(workerCount int) error {
	cmds, device := e.cmds, e.device
	workersPerQueue := defaultWorkersPerQueue
	if workerCount > 0 {
		workersPerQueue = workerCount
	}

	e.computeCh = make(chan Op)
	if e.sharedQueue {
		e.transferCh = e.computeCh
	} else {
		e.transferCh = make(chan Op)
	}

	var computeQueue vk.Queue
	cmds.GetDeviceQueue(device, e.computeFamily, 0, &computeQueue)
	// Shared-queue workers must be able to both dispatch and transfer, so
	// each of them gets a staging buffer.
	var computeStaging *slab.BufferAllocator
	if e.sharedQueue {
		computeStaging = e.Allocator
	}
	for i := 0; i < workersPerQueue; i++ {
		w, err := newWorker(cmds, device, computeQueue, e.computeFamily, e.computeCh, &e.exited, true, computeStaging, e.logger)
		if err != nil {
			return fmt.Errorf("engine: compute worker %d: %w", i, err)
		}
		e.workers = append(e.workers, w)
	}

	if !e.sharedQueue {
		var transferQueue vk.Queue
		cmds.GetDeviceQueue(device, e.transferFamily, 0, &transferQueue)
		for i := 0; i < workersPerQueue; i++ {
			w, err := newWorker(cmds, device, transferQueue, e.transferFamily, e.transferCh, &e.exited, false, e.Allocator, e.logger)
			if err != nil {
				return fmt.Errorf("engine: transfer worker %d: %w", i, err)
			}
			e.workers = append(e.workers, w)
		}
	}

	for _, w := range e.workers {
		e.wg.Add(1)
		go w.run(&e.wg)
	}
	return nil
}

func priority() *float32 {
	p := float32(1.0)
	return &p
}

// negotiatedFeatures reports the capability set this runtime always
// requests; a real negotiation would intersect this with the physical
// device's supported extended-features chain and fail Build() for
// kernels that need a feature absent from the intersection.
func negotiatedFeatures() Features {
	return FeatureShaderInt8 | FeatureShaderInt16 | FeatureShaderInt64 |
		FeatureShaderFloat16 | FeatureShaderFloat64 | FeatureVulkanMemoryModel |
		FeatureStorageBuffer8BitAccess | FeatureStorageBuffer16BitAccess
}

// Features returns the capability set this engine's device supports.
func (e *Engine) Features() Features { return e.features }

// Device returns the underlying transport and device handle, for use by
// the root-level buffer/kernel façade.
func (e *Engine) Device() (vk.Commander, vk.Device) { return e.cmds, e.device }

// DeviceIndex returns the physical device index this engine was built
// with, for embedding in DeviceLostError.
func (e *Engine) DeviceIndex() int { return e.deviceIndex }

// EnqueueUpload sends an Upload Op to the transfer channel (blocking until
// a worker accepts it) and returns the handshake handles the caller uses
// to fill staging and learn the resulting future.
func (e *Engine) EnqueueUpload(dst vk.Buffer, dstOffset, length uint64) (*UploadHandshake, error) {
	if e.exited.Load() {
		return nil, ErrDeviceLost
	}
	op := &uploadOp{
		dstBuffer:    dst,
		dstOffset:    dstOffset,
		length:       length,
		stagingReady: make(chan unsafe.Pointer),
		submitReady:  make(chan struct{}),
		future:       make(chan WorkerFuture, 1),
	}
	e.transferCh <- Op{Kind: OpUpload, Upload: op}
	return &UploadHandshake{op: op}, nil
}

// UploadHandshake lets a caller fill the worker's staging buffer after an
// Upload Op has been accepted, then learn the resulting future.
type UploadHandshake struct {
	op *uploadOp
}

// Staging blocks until the worker hands back its mapped staging pointer.
func (h *UploadHandshake) Staging() unsafe.Pointer { return <-h.op.stagingReady }

// Ready signals the worker that staging now holds the bytes to copy.
func (h *UploadHandshake) Ready() { h.op.submitReady <- struct{}{} }

// Future blocks until the worker assigns this upload's WorkerFuture.
func (h *UploadHandshake) Future() WorkerFuture { return <-h.op.future }

// EnqueueDownload sends a Download Op to the transfer channel and returns
// the handshake the caller uses to read the downloaded bytes out of
// staging.
func (e *Engine) EnqueueDownload(src vk.Buffer, srcOffset, length uint64) (*DownloadHandshake, error) {
	if e.exited.Load() {
		return nil, ErrDeviceLost
	}
	op := &downloadOp{
		srcBuffer: src,
		srcOffset: srcOffset,
		length:    length,
		dataReady: make(chan unsafe.Pointer),
		consumed:  make(chan struct{}),
	}
	e.transferCh <- Op{Kind: OpDownload, Download: op}
	return &DownloadHandshake{op: op}, nil
}

// DownloadHandshake lets a caller read the worker's staging buffer once it
// holds the downloaded bytes, then release it for reuse.
type DownloadHandshake struct {
	op *downloadOp
}

// Data blocks until staging holds the downloaded bytes.
func (h *DownloadHandshake) Data() unsafe.Pointer { return <-h.op.dataReady }

// Done signals the worker that the caller is finished reading staging.
func (h *DownloadHandshake) Done() { h.op.consumed <- struct{}{} }

// EnqueueCompute sends a Compute Op to the compute channel and returns the
// resulting WorkerFuture once the worker accepts and submits it.
func (e *Engine) EnqueueCompute(pipeline vk.Pipeline, layout vk.PipelineLayout, descLayout vk.DescriptorSetLayout, bindings []ComputeBinding, pushConsts []byte, groupsX, groupsY, groupsZ uint32, inputFutures []WorkerFuture) (WorkerFuture, error) {
	if e.exited.Load() {
		return WorkerFuture{}, ErrDeviceLost
	}
	op := &computeOp{
		pipeline:     pipeline,
		layout:       layout,
		descLayout:   descLayout,
		bindings:     bindings,
		pushConsts:   pushConsts,
		groupsX:      groupsX,
		groupsY:      groupsY,
		groupsZ:      groupsZ,
		inputFutures: inputFutures,
		future:       make(chan WorkerFuture, 1),
	}
	e.computeCh <- Op{Kind: OpCompute, Compute: op}
	return <-op.future, nil
}

// Wait blocks until every worker has completed the Ops assigned to it as
// of the time Wait was called. ctx cancellation surfaces as DeviceLost
// rather than hanging.
func (e *Engine) Wait(ctx context.Context) error {
	snapshot := make([]uint64, len(e.workers))
	for i, w := range e.workers {
		snapshot[i] = w.pending.Load()
	}

	for {
		done := true
		for i, w := range e.workers {
			if w.done.Load() < snapshot[i] {
				done = false
				break
			}
		}
		if done {
			return nil
		}
		if e.exited.Load() {
			return ErrDeviceLost
		}
		select {
		case <-ctx.Done():
			return ErrDeviceLost
		case <-time.After(spinInterval):
		}
	}
}

// Shutdown closes the Op channels and waits for every worker to exit. Safe
// to call more than once.
func (e *Engine) Shutdown() {
	e.shutdownOnce.Do(func() {
		if e.computeCh != nil {
			close(e.computeCh)
		}
		if e.transferCh != nil && e.transferCh != e.computeCh {
			close(e.transferCh)
		}
		e.wg.Wait()

		for _, w := range e.workers {
			w.destroy()
		}
		if e.device != 0 {
			e.cmds.DestroyDevice(e.device)
		}
		if e.instance != 0 {
			e.cmds.DestroyInstance(e.instance)
		}
	})
}
