// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Leif-Rydenfalk/krnl/internal/vk"
)

// KernelKey identifies one specialization of a kernel: a process-stable id
// for the source declaration plus the packed bytes of every spec-constant
// value (including the implicit threads-per-group dimension).
type KernelKey struct {
	ID        uint64
	SpecBytes string
}

// CacheEntry is the compiled, specialized form of a kernel.
type CacheEntry struct {
	Pipeline   vk.Pipeline
	Layout     vk.PipelineLayout
	DescLayout vk.DescriptorSetLayout
}

// KernelCache interns (kernel-id, spec-bytes) pairs to compiled compute
// pipelines. Concurrent callers requesting the same key block on the first
// caller's builder rather than racing duplicate pipeline creation.
type KernelCache struct {
	entries sync.Map // KernelKey -> *CacheEntry
	group   singleflight.Group
}

func newKernelCache() *KernelCache {
	return &KernelCache{}
}

// Cached returns the cached entry for key, building it with build if
// absent. build's error is propagated to every concurrent caller and never
// cached, so a failed specialization can be retried.
func (c *KernelCache) Cached(key KernelKey, build func() (*CacheEntry, error)) (*CacheEntry, error) {
	if v, ok := c.entries.Load(key); ok {
		return v.(*CacheEntry), nil
	}

	v, err, _ := c.group.Do(key.groupKey(), func() (interface{}, error) {
		if v, ok := c.entries.Load(key); ok {
			return v.(*CacheEntry), nil
		}
		entry, err := build()
		if err != nil {
			return nil, err
		}
		c.entries.Store(key, entry)
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*CacheEntry), nil
}

// groupKey renders the key as a singleflight group key.
func (k KernelKey) groupKey() string {
	return strconv.FormatUint(k.ID, 16) + ":" + k.SpecBytes
}
