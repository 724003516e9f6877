// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package engine owns a Vulkan device and the worker goroutines that submit
// command buffers against its compute and transfer queues. Callers enqueue
// upload, download, and compute Ops; workers encode and submit them and
// report completion through WorkerFuture cells attached to each buffer, so
// later Ops can wait on exactly the prior work they depend on without
// semaphores.
package engine
