// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package slab

import "testing"

func newTestChunk(size uint64) *Chunk {
	return &Chunk{size: size}
}

func TestChunkAllocFirstFit(t *testing.T) {
	c := newTestChunk(4096)

	off1, ok := c.alloc(256)
	if !ok || off1 != 0 {
		t.Fatalf("alloc(256) = %d, %v, want 0, true", off1, ok)
	}
	off2, ok := c.alloc(512)
	if !ok || off2 != 256 {
		t.Fatalf("alloc(512) = %d, %v, want 256, true", off2, ok)
	}
	off3, ok := c.alloc(256)
	if !ok || off3 != 768 {
		t.Fatalf("alloc(256) = %d, %v, want 768, true", off3, ok)
	}
}

func TestChunkAllocFillsGapAfterFree(t *testing.T) {
	c := newTestChunk(4096)

	off1, _ := c.alloc(256)
	off2, _ := c.alloc(256)
	_, _ = c.alloc(256)

	c.free(off2)

	off4, ok := c.alloc(256)
	if !ok || off4 != off2 {
		t.Fatalf("alloc after free = %d, %v, want %d, true (first-fit should reuse the gap)", off4, ok, off2)
	}
	_ = off1
}

func TestChunkAllocRoundsUpToBlockAlign(t *testing.T) {
	c := newTestChunk(4096)

	off1, ok := c.alloc(1)
	if !ok || off1 != 0 {
		t.Fatalf("alloc(1) = %d, %v, want 0, true", off1, ok)
	}
	off2, ok := c.alloc(1)
	if !ok || off2 != BlockAlign {
		t.Fatalf("alloc(1) second = %d, %v, want %d, true", off2, ok, BlockAlign)
	}
}

func TestChunkAllocFailsWhenFull(t *testing.T) {
	c := newTestChunk(BlockAlign)

	if _, ok := c.alloc(BlockAlign); !ok {
		t.Fatal("first alloc should succeed")
	}
	if _, ok := c.alloc(1); ok {
		t.Fatal("alloc into a full chunk should fail")
	}
}

func TestChunkFreeTracksLiveCount(t *testing.T) {
	c := newTestChunk(4096)

	off1, _ := c.alloc(256)
	off2, _ := c.alloc(256)

	if empty := c.free(off1); empty {
		t.Fatal("chunk should not be empty with one live allocation left")
	}
	if empty := c.free(off2); !empty {
		t.Fatal("chunk should be empty once the last allocation is freed")
	}
}

func TestChunkFreeUnknownOffsetIsNoop(t *testing.T) {
	c := newTestChunk(4096)
	c.alloc(256)

	if empty := c.free(9999); empty {
		t.Fatal("freeing an offset that was never allocated must not report empty")
	}
}
