// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"unsafe"

	"github.com/Leif-Rydenfalk/krnl/internal/vk"
)

// OpKind tags which variant an Op carries.
type OpKind int

const (
	OpUpload OpKind = iota
	OpDownload
	OpCompute
)

// uploadOp copies caller-supplied bytes into a device buffer by way of the
// worker's permanent staging buffer. The handshake channels let the caller
// fill staging itself rather than have the worker copy twice.
type uploadOp struct {
	dstBuffer vk.Buffer
	dstOffset uint64
	length    uint64

	// stagingReady delivers the mapped staging pointer the caller should
	// write length bytes into.
	stagingReady chan unsafe.Pointer
	// submitReady signals the worker that staging now holds the bytes to
	// copy and it may record and submit the copy command.
	submitReady chan struct{}
	// future delivers the WorkerFuture assigned to this op, sent once the
	// worker has submitted the upload's command buffer.
	future chan WorkerFuture
}

// downloadOp copies a device buffer's bytes into the worker's staging
// buffer and hands the mapped pointer back to the caller to read from.
type downloadOp struct {
	srcBuffer vk.Buffer
	srcOffset uint64
	length    uint64

	// dataReady delivers the mapped staging pointer once it holds the
	// downloaded bytes (after the worker's fence wait completes).
	dataReady chan unsafe.Pointer
	// consumed signals the worker that the caller is done reading
	// staging and the worker may reuse it for its next iteration.
	consumed chan struct{}
}

// ComputeBinding is one storage-buffer argument of a dispatch.
type ComputeBinding struct {
	Buffer vk.Buffer
	Offset uint64
	Length uint64
}

// computeOp dispatches one specialized kernel.
type computeOp struct {
	pipeline     vk.Pipeline
	layout       vk.PipelineLayout
	descLayout   vk.DescriptorSetLayout
	bindings     []ComputeBinding
	pushConsts   []byte
	groupsX      uint32
	groupsY      uint32
	groupsZ      uint32
	inputFutures []WorkerFuture

	// future delivers the WorkerFuture assigned to this dispatch, sent once
	// the worker has submitted the dispatch's command buffer.
	future chan WorkerFuture
}

// Op is the tagged union of work a Worker pulls off its channel. Exactly
// one of Upload, Download, Compute is populated according to Kind.
type Op struct {
	Kind     OpKind
	Upload   *uploadOp
	Download *downloadOp
	Compute  *computeOp
}
