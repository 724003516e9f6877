// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// spinInterval bounds the busy-wait used while a worker or Wait() polls a
// WorkerFuture for completion.
const spinInterval = time.Microsecond

// WorkerFuture denotes the last operation that touched a buffer. completed
// is a pointer into the worker that serviced the operation, so Ready can be
// checked without contacting the worker.
type WorkerFuture struct {
	pending   uint64
	completed *atomic.Uint64
}

// Ready reports whether the operation this future names has finished.
// A zero-value WorkerFuture (freshly allocated buffers) is always ready.
func (f WorkerFuture) Ready() bool {
	if f.completed == nil {
		return true
	}
	return f.completed.Load() >= f.pending
}

// spinUntilReady busy-waits for f to become ready, checking exited between
// spins so a lost device doesn't hang a waiter forever.
func spinUntilReady(f WorkerFuture, exited *atomic.Bool) error {
	for !f.Ready() {
		if exited.Load() {
			return ErrDeviceLost
		}
		time.Sleep(spinInterval)
	}
	return nil
}

// maxReaders bounds the number of concurrent readers a futureLock admits;
// it only needs to exceed the realistic number of concurrently dispatched
// kernels sharing one buffer as an immutable argument.
const maxReaders = int64(1 << 20)

// futureLock is an upgradable reader/writer lock over a buffer's future
// cell, built on golang.org/x/sync/semaphore the way the design calls for:
// ordinary readers and at most one upgradable reader may hold it together;
// Upgrade drains the remaining readers to obtain exclusive access.
type futureLock struct {
	read    *semaphore.Weighted
	upgrade *semaphore.Weighted
}

func newFutureLock() *futureLock {
	return &futureLock{
		read:    semaphore.NewWeighted(maxReaders),
		upgrade: semaphore.NewWeighted(1),
	}
}

// RLock acquires a plain shared read lock.
func (l *futureLock) RLock(ctx context.Context) error {
	return l.read.Acquire(ctx, 1)
}

// RUnlock releases a lock acquired by RLock.
func (l *futureLock) RUnlock() {
	l.read.Release(1)
}

// Lock acquires an upgradable read lock: it coexists with ordinary readers,
// but only one caller may hold an upgradable lock at a time.
func (l *futureLock) Lock(ctx context.Context) error {
	if err := l.upgrade.Acquire(ctx, 1); err != nil {
		return err
	}
	if err := l.read.Acquire(ctx, 1); err != nil {
		l.upgrade.Release(1)
		return err
	}
	return nil
}

// Upgrade promotes a held upgradable read lock to exclusive access by
// draining every other outstanding reader.
func (l *futureLock) Upgrade(ctx context.Context) error {
	return l.read.Acquire(ctx, maxReaders-1)
}

// Downgrade reverses Upgrade, returning to upgradable-read.
func (l *futureLock) Downgrade() {
	l.read.Release(maxReaders - 1)
}

// Unlock releases a lock acquired by Lock.
func (l *futureLock) Unlock() {
	l.read.Release(1)
	l.upgrade.Release(1)
}

// futureCell pairs a buffer's current future with the lock dispatches use
// to order concurrent reads and serialize writes against it. Lock order
// across a single dispatch is established by sorting cells by the address
// of their futureLock.
type futureCell struct {
	lock   *futureLock
	future WorkerFuture
}

func newFutureCell() *futureCell {
	return &futureCell{lock: newFutureLock()}
}

// sortKey returns a value suitable for establishing a total lock order
// across a set of cells, independent of map/slice iteration order.
func (c *futureCell) sortKey() uintptr {
	return uintptrOf(c.lock)
}

// FutureCell is the handle a buffer keeps across the package boundary: one
// per DeviceBuffer, holding the future left by the last dispatch that
// touched it and the lock a batch of dispatches sorts by SortKey to
// acquire in a consistent order before reading or replacing that future.
type FutureCell struct {
	cell *futureCell
}

// NewFutureCell returns a cell whose future is ready (freshly allocated
// buffers have touched nothing yet).
func NewFutureCell() *FutureCell {
	return &FutureCell{cell: newFutureCell()}
}

// SortKey returns the value a batch of cells sorts by to establish a
// total lock order across a dispatch's arguments.
func (c *FutureCell) SortKey() uintptr { return c.cell.sortKey() }

// Future returns the future left by the last dispatch that touched this
// cell. Callers must hold at least RLock before calling.
func (c *FutureCell) Future() WorkerFuture { return c.cell.future }

// Store replaces the cell's future. Callers must hold Lock, then Upgrade,
// before calling.
func (c *FutureCell) Store(f WorkerFuture) { c.cell.future = f }

// RLock acquires a plain shared read lock over the cell.
func (c *FutureCell) RLock(ctx context.Context) error { return c.cell.lock.RLock(ctx) }

// RUnlock releases a lock acquired by RLock.
func (c *FutureCell) RUnlock() { c.cell.lock.RUnlock() }

// Lock acquires the cell's upgradable read lock.
func (c *FutureCell) Lock(ctx context.Context) error { return c.cell.lock.Lock(ctx) }

// Unlock releases a lock acquired by Lock.
func (c *FutureCell) Unlock() { c.cell.lock.Unlock() }

// Upgrade promotes a held upgradable read lock to exclusive access.
func (c *FutureCell) Upgrade(ctx context.Context) error { return c.cell.lock.Upgrade(ctx) }

// Downgrade reverses Upgrade, returning to upgradable-read.
func (c *FutureCell) Downgrade() { c.cell.lock.Downgrade() }
