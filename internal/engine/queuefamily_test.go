// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"testing"

	"github.com/Leif-Rydenfalk/krnl/internal/vk"
)

func TestSelectComputeFamiliesPrefersNonGraphics(t *testing.T) {
	props := []vk.QueueFamilyProperties{
		{QueueFlags: vk.QueueGraphicsBit | vk.QueueComputeBit}, // 0: graphics+compute
		{QueueFlags: vk.QueueComputeBit},                       // 1: compute-only
		{QueueFlags: vk.QueueTransferBit},                       // 2: transfer-only, not a candidate
	}

	families := selectComputeFamilies(props)
	if len(families) != 2 {
		t.Fatalf("want 2 compute-capable families, got %d", len(families))
	}
	if families[0] != 1 {
		t.Fatalf("want compute-only family preferred first, got family %d", families[0])
	}
}

func TestSelectTransferFamilyPrefersDedicated(t *testing.T) {
	props := []vk.QueueFamilyProperties{
		{QueueFlags: vk.QueueGraphicsBit | vk.QueueComputeBit}, // 0
		{QueueFlags: vk.QueueTransferBit},                       // 1: dedicated transfer
	}

	family, dedicated := selectTransferFamily(props, 0)
	if !dedicated || family != 1 {
		t.Fatalf("selectTransferFamily = (%d, %v), want (1, true)", family, dedicated)
	}
}

func TestSelectTransferFamilyFallsBackToSharedCompute(t *testing.T) {
	props := []vk.QueueFamilyProperties{
		{QueueFlags: vk.QueueGraphicsBit | vk.QueueComputeBit},
	}

	family, dedicated := selectTransferFamily(props, 0)
	if dedicated || family != 0 {
		t.Fatalf("selectTransferFamily = (%d, %v), want (0, false)", family, dedicated)
	}
}

func TestSelectTransferFamilyIgnoresComputeCapableTransferFamily(t *testing.T) {
	// A family advertising both transfer and compute bits is not a
	// "dedicated" transfer family even though VK_QUEUE_TRANSFER_BIT is
	// implied by VK_QUEUE_COMPUTE_BIT on real hardware; the selection
	// must still require the bit pattern transfer-without-compute.
	props := []vk.QueueFamilyProperties{
		{QueueFlags: vk.QueueComputeBit | vk.QueueTransferBit},
	}

	family, dedicated := selectTransferFamily(props, 0)
	if dedicated || family != 0 {
		t.Fatalf("selectTransferFamily = (%d, %v), want (0, false)", family, dedicated)
	}
}
