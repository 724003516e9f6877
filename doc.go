// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package krnl dispatches Vulkan compute shaders against device-resident
// buffers as ordinary, apparently-synchronous operations.
//
// An Engine owns a Vulkan device and a small pool of workers that submit
// commands to its compute and transfer queues. DeviceBuffer values are
// backed by the internal chunk-slab allocator. Upload and Dispatch return
// once their work has been submitted by a worker, without waiting for the
// GPU to finish it; Download blocks until the bytes are read back. All
// three are ordered against one another through a happens-before future
// attached to every buffer, so callers never race a read against an
// in-flight write without an explicit Wait.
//
// Kernels are built from a compiled kernel artifact: a generic SPIR-V
// module plus descriptors of its spec-constant, push-constant and slice
// arguments and its required feature set. KernelBuilder.Build checks that
// feature set against the engine, specializes the module for a concrete
// thread-group size and spec-constant values, and caches the resulting
// pipeline by its specialization key.
package krnl
