// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"sort"

	"github.com/Leif-Rydenfalk/krnl/internal/vk"
)

// selectComputeFamilies returns every queue family capable of compute work,
// sorted to prefer families that are *not* also graphics-capable: a
// compute-only family is less likely to be contended by a driver's
// internal graphics scheduling.
func selectComputeFamilies(props []vk.QueueFamilyProperties) []int {
	var families []int
	for i, p := range props {
		if p.QueueFlags&vk.QueueComputeBit != 0 {
			families = append(families, i)
		}
	}
	sort.SliceStable(families, func(a, b int) bool {
		aGraphics := props[families[a]].QueueFlags&vk.QueueGraphicsBit != 0
		bGraphics := props[families[b]].QueueFlags&vk.QueueGraphicsBit != 0
		return !aGraphics && bGraphics
	})
	return families
}

// selectTransferFamily returns a dedicated transfer-only queue family (one
// that advertises VK_QUEUE_TRANSFER_BIT but not VK_QUEUE_COMPUTE_BIT) if
// one exists, reporting dedicated=true. Otherwise it falls back to
// sharedComputeFamily, reporting dedicated=false so the caller can route
// transfer Ops onto the same channel as compute Ops.
//
// A prior implementation's comment said it preferred a dedicated family
// but its search unconditionally discarded that candidate before
// returning, so it always fell through to sharing. That was a bug, not a
// contract, and is fixed here: the first transfer-only, compute-excluding
// family is returned whenever one exists.
func selectTransferFamily(props []vk.QueueFamilyProperties, sharedComputeFamily int) (family int, dedicated bool) {
	for i, p := range props {
		if p.QueueFlags&vk.QueueTransferBit != 0 && p.QueueFlags&vk.QueueComputeBit == 0 {
			return i, true
		}
	}
	return sharedComputeFamily, false
}
