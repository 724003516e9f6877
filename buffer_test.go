// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package krnl

import (
	"bytes"
	"testing"
)

func TestUploadDownloadRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	want := make([]byte, 4096)
	for i := range want {
		want[i] = byte(i)
	}

	buf, err := e.UploadBuffer(want)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Free()

	got := make([]byte, len(want))
	if err := buf.Download(got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatal("downloaded bytes do not match uploaded bytes")
	}
}

func TestUploadSpanningMultipleChunks(t *testing.T) {
	e := newTestEngine(t)
	want := make([]byte, uploadChunkSize+1024)
	for i := range want {
		want[i] = byte(i * 7)
	}

	buf, err := e.UploadBuffer(want)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Free()

	got := make([]byte, len(want))
	if err := buf.Download(got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatal("a multi-chunk upload/download must round-trip exactly")
	}
}

func TestDownloadRejectsLengthMismatch(t *testing.T) {
	e := newTestEngine(t)
	buf, err := e.UploadBuffer(make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Free()

	err = buf.Download(make([]byte, 8))
	if _, ok := err.(*InvalidArgumentError); !ok {
		t.Fatalf("got %v (%T), want *InvalidArgumentError", err, err)
	}
}

func TestSliceSharesAllocationAndFuture(t *testing.T) {
	e := newTestEngine(t)
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i)
	}
	buf, err := e.UploadBuffer(data)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Free()

	slice, err := buf.Slice(16, 32)
	if err != nil {
		t.Fatal(err)
	}
	if slice.cell != buf.cell {
		t.Fatal("a slice must share its parent's future cell")
	}
	if slice.alloc != buf.alloc {
		t.Fatal("a slice must share its parent's allocation")
	}

	got := make([]byte, 32)
	if err := slice.Download(got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data[16:48]) {
		t.Fatal("slice download must read the parent's corresponding byte range")
	}

	// Free on a slice must not release the parent's allocation.
	slice.Free()
	got2 := make([]byte, 64)
	if err := buf.Download(got2); err != nil {
		t.Fatal(err)
	}
}

func TestSliceOutOfRangeRejected(t *testing.T) {
	e := newTestEngine(t)
	buf, err := e.UploadBuffer(make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Free()

	if _, err := buf.Slice(8, 16); err == nil {
		t.Fatal("expected an out-of-range error")
	}
	if _, err := buf.Slice(0, 17); err == nil {
		t.Fatal("expected an out-of-range error")
	}
}

func TestTransferBetweenEngines(t *testing.T) {
	src := newTestEngine(t)
	dst := newTestEngine(t)

	data := []byte{10, 20, 30, 40, 50}
	buf, err := src.UploadBuffer(data)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Free()

	moved, err := buf.Transfer(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer moved.Free()

	got := make([]byte, len(data))
	if err := moved.Download(got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("transferred buffer must carry the same bytes on the destination engine")
	}
}
