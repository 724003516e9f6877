// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package krnl

import (
	"context"
	"time"
	"unsafe"

	"github.com/Leif-Rydenfalk/krnl/internal/engine"
	"github.com/Leif-Rydenfalk/krnl/internal/slab"
	"github.com/Leif-Rydenfalk/krnl/internal/vk"
)

// uploadChunkSize bounds how many bytes a single Upload or Download Op
// moves through a worker's staging buffer at once, matching the worker's
// permanent staging allocation so neither side ever waits on a copy
// larger than what staging can hold in one pass.
const uploadChunkSize = 32 << 20

// DeviceBuffer is a byte range in device-local memory. Every Upload,
// Download, and Dispatch argument that touches it is ordered against the
// others through a future attached to the buffer: reads observe the last
// write, and a write waits for every prior read and write to finish before
// replacing the future.
type DeviceBuffer struct {
	engine *Engine
	alloc  *slab.ChunkAlloc
	owned  bool
	offset uint64
	length uint64
	cell   *engine.FutureCell
}

// UninitBuffer allocates length bytes of device-local memory without
// initializing its contents.
func (e *Engine) UninitBuffer(length uint64) (*DeviceBuffer, error) {
	alloc, err := e.inner.Allocator.Alloc(slab.Device, length)
	if err != nil {
		return nil, &OomError{Kind: AllocKindDevice, Cause: err}
	}
	return &DeviceBuffer{engine: e, alloc: alloc, owned: true, length: length, cell: engine.NewFutureCell()}, nil
}

// UploadBuffer allocates a device buffer sized to data and copies data
// into it through the engine's transfer workers.
func (e *Engine) UploadBuffer(data []byte) (*DeviceBuffer, error) {
	buf, err := e.UninitBuffer(uint64(len(data)))
	if err != nil {
		return nil, err
	}
	if err := buf.upload(data); err != nil {
		return nil, err
	}
	return buf, nil
}

func (b *DeviceBuffer) upload(data []byte) error {
	var future engine.WorkerFuture
	for off := 0; off < len(data); off += uploadChunkSize {
		end := off + uploadChunkSize
		if end > len(data) {
			end = len(data)
		}
		h, err := b.engine.inner.EnqueueUpload(b.vkBuffer(), b.absOffset()+uint64(off), uint64(end-off))
		if err != nil {
			return b.engine.deviceLostErr(err)
		}
		staging := h.Staging()
		copy(unsafe.Slice((*byte)(staging), end-off), data[off:end])
		h.Ready()
		future = h.Future()
	}
	b.cell.Store(future)
	return nil
}

// Download waits for every prior dispatch that touched this buffer, then
// copies its bytes into out. len(out) must equal b.Len().
func (b *DeviceBuffer) Download(out []byte) error {
	if uint64(len(out)) != b.length {
		return &InvalidArgumentError{Reason: "download length does not match buffer length"}
	}
	if err := b.waitReady(context.Background()); err != nil {
		return err
	}
	for off := 0; off < len(out); off += uploadChunkSize {
		end := off + uploadChunkSize
		if end > len(out) {
			end = len(out)
		}
		h, err := b.engine.inner.EnqueueDownload(b.vkBuffer(), b.absOffset()+uint64(off), uint64(end-off))
		if err != nil {
			return b.engine.deviceLostErr(err)
		}
		data := h.Data()
		copy(out[off:end], unsafe.Slice((*byte)(data), end-off))
		h.Done()
	}
	return nil
}

// Transfer downloads b into host memory and uploads it as a fresh buffer
// on dst. Cross-engine transfer routes through host memory; it is an
// escape hatch for moving data between devices, not a fast path.
func (b *DeviceBuffer) Transfer(dst *Engine) (*DeviceBuffer, error) {
	staged := make([]byte, b.length)
	if err := b.Download(staged); err != nil {
		return nil, err
	}
	return dst.UploadBuffer(staged)
}

// Len returns the buffer's length in bytes.
func (b *DeviceBuffer) Len() uint64 { return b.length }

// Slice returns a view of [offset, offset+length) within b, sharing its
// allocation and its future so dispatches against the slice are ordered
// against dispatches against b or any other overlapping slice of it.
func (b *DeviceBuffer) Slice(offset, length uint64) (*DeviceBuffer, error) {
	if offset+length < offset || offset+length > b.length {
		return nil, &InvalidArgumentError{Reason: "slice out of range"}
	}
	return &DeviceBuffer{
		engine: b.engine,
		alloc:  b.alloc,
		offset: b.offset + offset,
		length: length,
		cell:   b.cell,
	}, nil
}

// Free releases the buffer's allocation back to the engine's slab
// allocator. Only valid on a buffer returned directly by UninitBuffer or
// UploadBuffer; calling it on the result of Slice is a no-op, since the
// slice does not own the allocation.
func (b *DeviceBuffer) Free() {
	if !b.owned {
		return
	}
	b.engine.inner.Allocator.Release(slab.Device, b.alloc)
}

func (b *DeviceBuffer) vkBuffer() vk.Buffer { return b.alloc.Buffer() }

func (b *DeviceBuffer) absOffset() uint64 { return b.alloc.Offset + b.offset }

// waitReady blocks until every dispatch queued against b before the call
// has completed.
func (b *DeviceBuffer) waitReady(ctx context.Context) error {
	if err := b.cell.RLock(ctx); err != nil {
		return err
	}
	defer b.cell.RUnlock()

	f := b.cell.Future()
	for !f.Ready() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			time.Sleep(time.Microsecond)
		}
	}
	return nil
}
