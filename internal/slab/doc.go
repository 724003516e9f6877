// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package slab implements the chunk slab allocator that backs every device
// and host-visible buffer the compute engine hands out. Rather than issuing
// one VkDeviceMemory object per buffer, the allocator carves large chunks
// out of the largest matching heap and hands out first-fit blocks from
// within them, the way a bump-pointer slab allocator would.
package slab
