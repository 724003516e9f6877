// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package vktest provides an in-process, software implementation of
// vk.Commander for tests that exercise the worker/engine/allocator
// plumbing without a real Vulkan device. It tracks instances, devices,
// buffers, and device memory as plain Go values and executes recorded
// command buffers synchronously at submit time, so copies move real
// bytes and fences are always already signaled by the time a wait call
// observes them. It never interprets SPIR-V: CmdDispatch is a no-op, so
// tests built on this transport can verify ordering, allocation, and
// future tracking, but never a kernel's numeric output.
package vktest
