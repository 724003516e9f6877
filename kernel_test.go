// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package krnl

import (
	"testing"

	"github.com/Leif-Rydenfalk/krnl/internal/kerndesc"
)

func TestPackSpecWordsNarrowScalar(t *testing.T) {
	words := packSpecWords(SpecValue{Type: U32, Bytes: []byte{0x2a, 0, 0, 0}})
	if len(words) != 1 || words[0] != 42 {
		t.Fatalf("got %v, want [42]", words)
	}
}

func TestPackSpecWordsWideScalar(t *testing.T) {
	bytes := []byte{1, 0, 0, 0, 2, 0, 0, 0}
	words := packSpecWords(SpecValue{Type: U64, Bytes: bytes})
	if len(words) != 2 || words[0] != 1 || words[1] != 2 {
		t.Fatalf("got %v, want [1 2]", words)
	}
}

func TestWordsBytesRoundTrip(t *testing.T) {
	words := []uint32{1, 2, 3, 0xdeadbeef}
	b := wordsToBytes(words)
	back, err := bytesToWords(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != len(words) {
		t.Fatalf("length mismatch: got %d, want %d", len(back), len(words))
	}
	for i := range words {
		if back[i] != words[i] {
			t.Fatalf("word %d: got %#x, want %#x", i, back[i], words[i])
		}
	}
}

func TestBytesToWordsRejectsUnaligned(t *testing.T) {
	if _, err := bytesToWords([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error for a non-word-aligned byte slice")
	}
}

func TestSpecKeyDistinguishesThreadsAndValues(t *testing.T) {
	artifact := &kerndesc.Descriptor{Name: "k"}
	a := &KernelBuilder{artifact: artifact, threads: 64}
	b := &KernelBuilder{artifact: artifact, threads: 128}
	if a.specKey() == b.specKey() {
		t.Fatal("two builders with different thread counts must not collide")
	}

	c := &KernelBuilder{artifact: artifact, threads: 64, specs: []SpecValue{{Type: U32, Bytes: []byte{1, 0, 0, 0}}}}
	d := &KernelBuilder{artifact: artifact, threads: 64, specs: []SpecValue{{Type: U32, Bytes: []byte{2, 0, 0, 0}}}}
	if c.specKey() == d.specKey() {
		t.Fatal("two builders with different spec values must not collide")
	}
	if a.specKey() == c.specKey() {
		t.Fatal("a builder with no spec values must not collide with one that has them")
	}
}

func TestArtifactIDStableAndDistinct(t *testing.T) {
	if artifactID("saxpy") != artifactID("saxpy") {
		t.Fatal("artifactID must be a pure function of the name")
	}
	if artifactID("saxpy") == artifactID("axpy") {
		t.Fatal("different kernel names must not collide by coincidence")
	}
}

func TestKernelBuilderCachesIdenticalSpecialization(t *testing.T) {
	e := newTestEngine(t)
	artifact := buildArtifact(t, "identity", 64, nil, nil, nil)

	kb1, err := NewKernelBuilder(artifact)
	if err != nil {
		t.Fatal(err)
	}
	k1, err := kb1.Build(e)
	if err != nil {
		t.Fatal(err)
	}

	kb2, err := NewKernelBuilder(artifact)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := kb2.Build(e)
	if err != nil {
		t.Fatal(err)
	}

	if k1.entry != k2.entry {
		t.Fatal("two builders producing the same KernelKey must share one cache entry")
	}
}

func TestKernelBuilderDistinctThreadsGetDistinctPipelines(t *testing.T) {
	e := newTestEngine(t)
	artifact := buildArtifact(t, "scaled", 64, nil, nil, nil)

	small, err := NewKernelBuilder(artifact)
	if err != nil {
		t.Fatal(err)
	}
	k64, err := small.WithThreads(64).Build(e)
	if err != nil {
		t.Fatal(err)
	}

	large, err := NewKernelBuilder(artifact)
	if err != nil {
		t.Fatal(err)
	}
	k128, err := large.WithThreads(128).Build(e)
	if err != nil {
		t.Fatal(err)
	}

	if k64.entry == k128.entry {
		t.Fatal("two different thread-group sizes must compile to distinct cache entries")
	}
}

func TestKernelBuilderDistinctSpecValuesGetDistinctPipelines(t *testing.T) {
	e := newTestEngine(t)
	artifact := buildArtifact(t, "group_buffer", 64, nil, nil,
		[]kerndesc.SpecDesc{{Name: "group_n", ScalarType: kerndesc.TagU32}})

	small, err := NewKernelBuilder(artifact)
	if err != nil {
		t.Fatal(err)
	}
	k32, err := small.Specialize(SpecValue{Type: U32, Bytes: []byte{32, 0, 0, 0}}).Build(e)
	if err != nil {
		t.Fatal(err)
	}

	large, err := NewKernelBuilder(artifact)
	if err != nil {
		t.Fatal(err)
	}
	k128, err := large.Specialize(SpecValue{Type: U32, Bytes: []byte{128, 0, 0, 0}}).Build(e)
	if err != nil {
		t.Fatal(err)
	}

	if k32.entry == k128.entry {
		t.Fatal("two different spec-constant values must compile to distinct cache entries")
	}
}

func TestKernelBuilderRejectsThreadsOverMax(t *testing.T) {
	e := newTestEngine(t)
	artifact := buildArtifact(t, "too_wide", 64, nil, nil, nil)
	kb, err := NewKernelBuilder(artifact)
	if err != nil {
		t.Fatal(err)
	}
	_, err = kb.WithThreads(maxThreads + 1).Build(e)
	if _, ok := err.(*InvalidArgumentError); !ok {
		t.Fatalf("got %v (%T), want *InvalidArgumentError", err, err)
	}
}

func TestKernelBuilderRejectsUnsupportedFeature(t *testing.T) {
	e := newTestEngine(t)
	artifact := buildArtifact(t, "needs_f64", 64, nil, nil, nil)
	artifact = reencodeWithFeatures(t, artifact, 1<<62)

	kb, err := NewKernelBuilder(artifact)
	if err != nil {
		t.Fatal(err)
	}
	_, err = kb.Build(e)
	if _, ok := err.(*FeatureUnsupportedError); !ok {
		t.Fatalf("got %v (%T), want *FeatureUnsupportedError", err, err)
	}
}

// reencodeWithFeatures decodes artifact, overrides its feature bitset with
// an out-of-range bit no engine ever negotiates, and re-encodes it.
func reencodeWithFeatures(t *testing.T, artifact []byte, features uint64) []byte {
	t.Helper()
	d, err := kerndesc.Decode(artifact)
	if err != nil {
		t.Fatal(err)
	}
	d.Features = kerndesc.FeatureSet(features)
	out, err := kerndesc.Encode(d)
	if err != nil {
		t.Fatal(err)
	}
	return out
}
