// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package krnl

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/Leif-Rydenfalk/krnl/internal/engine"
)

// maxGroups bounds the group count a dispatch may request or compute,
// matching Vulkan's minimum guaranteed maxComputeWorkGroupCount per
// dimension.
const maxGroups = 65535

// PushValue is one push-constant argument to Dispatch, in the artifact's
// declared push-constant order. Its shape mirrors SpecValue: the same
// little-endian encoding rules apply, since both end up packed into a
// fixed-width block read by the same shader.
type PushValue = SpecValue

// Dispatch validates buffers against the kernel's declared slice
// descriptors, builds the push-constant block, determines the group
// count, and submits a Compute Op. It blocks until the worker pool
// accepts the Op; the dispatch itself runs asynchronously, ordered
// against every other dispatch that touches the same buffers through
// their future cells.
func (k *Kernel) Dispatch(buffers []*DeviceBuffer, pushConsts []PushValue) error {
	if len(buffers) != len(k.desc.SliceDescs) {
		return &InvalidArgumentError{Reason: fmt.Sprintf("expected %d slice arguments, got %d", len(k.desc.SliceDescs), len(buffers))}
	}
	if len(pushConsts) != len(k.desc.PushDescs) {
		return &InvalidArgumentError{Reason: fmt.Sprintf("expected %d push arguments, got %d", len(k.desc.PushDescs), len(pushConsts))}
	}

	for i, b := range buffers {
		desc := k.desc.SliceDescs[i]
		if b.engine != k.engine {
			return &InvalidArgumentError{Index: i, Reason: "buffer belongs to a different engine"}
		}
		if b.length == 0 {
			return &InvalidArgumentError{Index: i, Reason: "slice is empty"}
		}
		elemType := ScalarType(desc.ScalarType)
		if b.length%elemType.Size() != 0 {
			return &InvalidArgumentError{Index: i, Reason: fmt.Sprintf("length %d bytes is not a multiple of %s's size", b.length, elemType)}
		}
	}
	for i, p := range pushConsts {
		want := ScalarType(k.desc.PushDescs[i].ScalarType)
		if p.Type != want {
			return &InvalidArgumentError{Index: i, Reason: fmt.Sprintf("push argument: expected %s, got %s", want, p.Type)}
		}
	}

	groupsX, groupsY, groupsZ, err := k.resolveGroups(buffers)
	if err != nil {
		return err
	}

	cells := make([]*engine.FutureCell, len(buffers))
	cellMutable := make(map[*engine.FutureCell]bool, len(buffers))
	for i, b := range buffers {
		cells[i] = b.cell
		if k.desc.SliceDescs[i].Mutable {
			cellMutable[b.cell] = true
		}
	}
	order := sortCellsUnique(cells)

	ctx := context.Background()
	locked := 0
	defer func() {
		for _, c := range order[:locked] {
			if cellMutable[c] {
				c.Unlock()
			} else {
				c.RUnlock()
			}
		}
	}()
	for _, c := range order {
		var lockErr error
		if cellMutable[c] {
			lockErr = c.Lock(ctx)
		} else {
			lockErr = c.RLock(ctx)
		}
		if lockErr != nil {
			return lockErr
		}
		locked++
	}

	inputFutures := make([]engine.WorkerFuture, len(cells))
	for i, c := range cells {
		inputFutures[i] = c.Future()
	}

	bindings := make([]engine.ComputeBinding, len(buffers))
	for i, b := range buffers {
		bindings[i] = engine.ComputeBinding{Buffer: b.vkBuffer(), Offset: b.absOffset(), Length: b.length}
	}
	pushBlock := k.buildPushBlock(pushConsts, buffers)

	future, err := k.engine.inner.EnqueueCompute(k.entry.Pipeline, k.entry.Layout, k.entry.DescLayout, bindings, pushBlock, groupsX, groupsY, groupsZ, inputFutures)
	if err != nil {
		return k.engine.deviceLostErr(err)
	}

	for _, c := range order {
		if !cellMutable[c] {
			continue
		}
		if err := c.Upgrade(ctx); err != nil {
			return k.engine.deviceLostErr(err)
		}
		c.Store(future)
		c.Downgrade()
	}
	return nil
}

// resolveGroups determines the dispatch's group count: an explicit
// WithGroups or WithGlobalThreads value if set, otherwise the group count
// implied by the narrowest item-bound slice argument.
func (k *Kernel) resolveGroups(buffers []*DeviceBuffer) (x, y, z uint32, err error) {
	if k.groupsSet {
		if k.groups[0] > maxGroups || k.groups[1] > maxGroups || k.groups[2] > maxGroups {
			return 0, 0, 0, &InvalidArgumentError{Reason: "requested groups exceed max_groups"}
		}
		return k.groups[0], k.groups[1], k.groups[2], nil
	}
	if k.globalSet {
		g := ceilDiv(k.globalThreads, k.desc.Threads)
		if g > maxGroups {
			return 0, 0, 0, &InvalidArgumentError{Reason: "requested groups exceed max_groups"}
		}
		return g, 1, 1, nil
	}

	var minElems uint64
	found := false
	for i, desc := range k.desc.SliceDescs {
		if !desc.Item {
			continue
		}
		elems := buffers[i].length / ScalarType(desc.ScalarType).Size()
		if !found || elems < minElems {
			minElems, found = elems, true
		}
	}
	if !found {
		return 0, 0, 0, &InvalidArgumentError{Reason: "kernel is not item-bound; WithGroups or WithGlobalThreads is required"}
	}
	g := ceilDiv(uint32(minElems), k.desc.Threads)
	if g == 0 {
		g = 1
	}
	if g > maxGroups {
		g = maxGroups
	}
	return g, 1, 1, nil
}

// buildPushBlock packs pushConsts at their declared alignments, then
// appends an (offset_in_elems, len_in_elems) little-endian u32 pair per
// slice argument.
func (k *Kernel) buildPushBlock(pushConsts []PushValue, buffers []*DeviceBuffer) []byte {
	var buf []byte
	for i, desc := range k.desc.PushDescs {
		width := ScalarType(desc.ScalarType).Size()
		for uint64(len(buf))%width != 0 {
			buf = append(buf, 0)
		}
		buf = append(buf, pushConsts[i].Bytes...)
	}
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}

	var word [4]byte
	for i, desc := range k.desc.SliceDescs {
		elemSize := ScalarType(desc.ScalarType).Size()
		binary.LittleEndian.PutUint32(word[:], uint32(buffers[i].offset/elemSize))
		buf = append(buf, word[:]...)
		binary.LittleEndian.PutUint32(word[:], uint32(buffers[i].length/elemSize))
		buf = append(buf, word[:]...)
	}
	return buf
}

func ceilDiv(n, d uint32) uint32 {
	if d == 0 {
		return 0
	}
	return (n + d - 1) / d
}

// sortCellsUnique deduplicates cells (multiple slice arguments can share
// one buffer's future cell) and sorts the result by lock address,
// establishing a total lock order across a dispatch's arguments
// regardless of the order the caller passed them in.
func sortCellsUnique(cells []*engine.FutureCell) []*engine.FutureCell {
	seen := make(map[*engine.FutureCell]bool, len(cells))
	uniq := make([]*engine.FutureCell, 0, len(cells))
	for _, c := range cells {
		if !seen[c] {
			seen[c] = true
			uniq = append(uniq, c)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i].SortKey() < uniq[j].SortKey() })
	return uniq
}
