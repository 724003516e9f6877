// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/Leif-Rydenfalk/krnl/internal/slab"
	"github.com/Leif-Rydenfalk/krnl/internal/vk"
	"github.com/Leif-Rydenfalk/krnl/internal/vk/vktest"
)

// TestWorkerUploadDownloadRoundTrip drives a real Worker and
// BufferAllocator, backed by the fake transport, through an upload
// followed by a download and checks the bytes survive the round trip.
// It exercises the exact handshake sequence EnqueueUpload/EnqueueDownload
// use, without going through Engine.New (which dlopens a real driver).
func TestWorkerUploadDownloadRoundTrip(t *testing.T) {
	fake := vktest.New()

	var device vk.Device
	fake.CreateDevice(0, &vk.DeviceCreateInfo{}, &device)

	var memProps vk.PhysicalDeviceMemoryProperties
	fake.GetPhysicalDeviceMemoryProperties(0, &memProps)

	allocator := slab.NewBufferAllocator(fake, device, &memProps)

	dst, err := allocator.Alloc(slab.Device, 256)
	if err != nil {
		t.Fatalf("Alloc(Device): %v", err)
	}

	var queue vk.Queue
	fake.GetDeviceQueue(device, 0, 0, &queue)

	ch := make(chan Op)
	var exited atomic.Bool
	w, err := newWorker(fake, device, queue, 0, ch, &exited, false, allocator, nil)
	if err != nil {
		t.Fatalf("newWorker: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go w.run(&wg)
	defer func() {
		close(ch)
		wg.Wait()
	}()

	want := make([]byte, 256)
	for i := range want {
		want[i] = byte(i)
	}

	upload := &uploadOp{
		dstBuffer:    dst.Buffer(),
		dstOffset:    dst.Offset,
		length:       256,
		stagingReady: make(chan unsafe.Pointer),
		submitReady:  make(chan struct{}),
		future:       make(chan WorkerFuture, 1),
	}
	ch <- Op{Kind: OpUpload, Upload: upload}

	staging := <-upload.stagingReady
	copy(unsafe.Slice((*byte)(staging), 256), want)
	upload.submitReady <- struct{}{}
	<-upload.future

	download := &downloadOp{
		srcBuffer: dst.Buffer(),
		srcOffset: dst.Offset,
		length:    256,
		dataReady: make(chan unsafe.Pointer),
		consumed:  make(chan struct{}),
	}
	ch <- Op{Kind: OpDownload, Download: download}

	got := <-download.dataReady
	gotBytes := append([]byte(nil), unsafe.Slice((*byte)(got), 256)...)
	download.consumed <- struct{}{}

	for i := range want {
		if gotBytes[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d", i, gotBytes[i], want[i])
		}
	}
}
