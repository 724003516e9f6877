// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package vk provides the pure-Go, no-cgo Vulkan bindings used by the
// compute engine. It is trimmed from a general-purpose Vulkan backend down
// to the subset of entry points a headless compute engine needs: instance
// and device creation, queue and memory enumeration, command pool/buffer
// management, fences, buffers and device memory, descriptor sets, pipeline
// layouts, compute pipelines and shader modules. There is no surface,
// swapchain, render pass, or graphics pipeline support: this package never
// talks to a windowing system.
package vk
