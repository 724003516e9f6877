// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package kerndesc

import (
	"testing"
)

func sampleDescriptor() *Descriptor {
	return &Descriptor{
		Name:     "saxpy",
		SPIRV:    []uint32{0x07230203, 1, 2, 3, 4, 5, 6, 7},
		Features: FeatureSet(0),
		Safe:     true,
		Threads:  64,
		SpecDescs: []SpecDesc{
			{Name: "threads", ScalarType: TagU32},
		},
		SliceDescs: []SliceDesc{
			{Name: "x", ScalarType: TagF32, Mutable: false, Item: true},
			{Name: "y", ScalarType: TagF32, Mutable: true, Item: true},
		},
		PushDescs: []PushDesc{
			{Name: "alpha", ScalarType: TagF32},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := sampleDescriptor()
	data, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.Name != want.Name {
		t.Errorf("Name = %q, want %q", got.Name, want.Name)
	}
	if len(got.SPIRV) != len(want.SPIRV) {
		t.Fatalf("SPIRV length = %d, want %d", len(got.SPIRV), len(want.SPIRV))
	}
	for i := range want.SPIRV {
		if got.SPIRV[i] != want.SPIRV[i] {
			t.Fatalf("SPIRV[%d] = %d, want %d", i, got.SPIRV[i], want.SPIRV[i])
		}
	}
	if got.Safe != want.Safe || got.Threads != want.Threads {
		t.Fatalf("got safe=%v threads=%d, want safe=%v threads=%d", got.Safe, got.Threads, want.Safe, want.Threads)
	}
	if len(got.SliceDescs) != len(want.SliceDescs) {
		t.Fatalf("SliceDescs length = %d, want %d", len(got.SliceDescs), len(want.SliceDescs))
	}
	for i := range want.SliceDescs {
		if got.SliceDescs[i] != want.SliceDescs[i] {
			t.Fatalf("SliceDescs[%d] = %+v, want %+v", i, got.SliceDescs[i], want.SliceDescs[i])
		}
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data, err := Encode(sampleDescriptor())
	if err != nil {
		t.Fatal(err)
	}
	data[0] ^= 0xff
	if _, err := Decode(data); err == nil {
		t.Fatal("expected an error for a corrupted magic number")
	}
}

func TestDecodeRejectsTruncatedPayload(t *testing.T) {
	data, err := Encode(sampleDescriptor())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(data[:len(data)-4]); err == nil {
		t.Fatal("expected an error for a truncated payload")
	}
}

func TestPushConstsRange(t *testing.T) {
	d := &Descriptor{
		PushDescs: []PushDesc{
			{Name: "a", ScalarType: TagU8},
			{Name: "b", ScalarType: TagF32},
		},
		SliceDescs: []SliceDesc{
			{Name: "x", ScalarType: TagF32},
			{Name: "y", ScalarType: TagF32},
		},
	}
	// a: offset 0, size 1 -> running 1; b needs 4-byte alignment -> pad to
	// 4, add 4 -> running 8, already a multiple of 4; plus 2 slices * 8
	// bytes each = 16; total 24.
	if got, want := d.PushConstsRange(), uint32(24); got != want {
		t.Fatalf("PushConstsRange() = %d, want %d", got, want)
	}
}

func TestRecompressBundlePreservesContent(t *testing.T) {
	original := sampleDescriptor()
	encoded, err := Encode(original)
	if err != nil {
		t.Fatal(err)
	}

	recompressed, err := RecompressBundle([][]byte{encoded})
	if err != nil {
		t.Fatalf("RecompressBundle: %v", err)
	}
	if len(recompressed) != 1 {
		t.Fatalf("got %d bundle entries, want 1", len(recompressed))
	}

	got, err := Decode(recompressed[0])
	if err != nil {
		t.Fatalf("Decode(recompressed): %v", err)
	}
	if got.Name != original.Name || len(got.SPIRV) != len(original.SPIRV) {
		t.Fatalf("recompressed descriptor does not match original: got %+v", got)
	}
	for i := range original.SPIRV {
		if got.SPIRV[i] != original.SPIRV[i] {
			t.Fatalf("SPIRV[%d] = %d, want %d", i, got.SPIRV[i], original.SPIRV[i])
		}
	}
}
