// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package warehouse - a bounded container store guarded by a single
// exclusive lock
//
// The batch operations lock internally and are all-or-nothing.  A
// caller that needs to combine several stores into one atomic step
// (a berth transfer) takes the lock explicitly and uses the *Locked
// variants while holding it.
package warehouse

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/bitmark-inc/portd/fault"
)

// Warehouse - a bounded store of containers
type Warehouse struct {
	name       string
	capacity   int
	lock       *semaphore.Weighted
	containers []Container
	size       int64 // mirror of len(containers) for lock free reads
}

// New - create an empty warehouse
func New(name string, capacity int) (*Warehouse, error) {
	if capacity < 0 {
		return nil, fault.ErrInvalidCapacity
	}
	return &Warehouse{
		name:       name,
		capacity:   capacity,
		lock:       semaphore.NewWeighted(1),
		containers: make([]Container, 0, capacity),
	}, nil
}

// Name - label used in logs and status
func (w *Warehouse) Name() string {
	return w.name
}

// Capacity - fixed maximum number of containers
func (w *Warehouse) Capacity() int {
	return w.capacity
}

// Size - point in time count of stored containers
func (w *Warehouse) Size() int {
	return int(atomic.LoadInt64(&w.size))
}

// Free - point in time count of empty places
func (w *Warehouse) Free() int {
	return w.capacity - w.Size()
}

// Lock - take the exclusive lock, waiting no longer than timeout
// and giving up early if ctx is done; a timeout <= 0 waits only on
// ctx
func (w *Warehouse) Lock(ctx context.Context, timeout time.Duration) bool {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return nil == w.lock.Acquire(ctx, 1)
}

// TryLock - take the lock only if it is free now
func (w *Warehouse) TryLock() bool {
	return w.lock.TryAcquire(1)
}

// Unlock - release a lock obtained by Lock or TryLock
func (w *Warehouse) Unlock() {
	w.lock.Release(1)
}

// TryAddBatch - store the whole batch or nothing
func (w *Warehouse) TryAddBatch(batch []Container) bool {
	if !w.Lock(context.Background(), 0) {
		return false
	}
	defer w.Unlock()
	return w.AddLocked(batch)
}

// TryRemoveBatch - take n containers or nothing
func (w *Warehouse) TryRemoveBatch(n int) ([]Container, bool) {
	if !w.Lock(context.Background(), 0) {
		return nil, false
	}
	defer w.Unlock()
	return w.RemoveLocked(n)
}

// Contents - copy of the stored containers in arrival order
func (w *Warehouse) Contents() []Container {
	if !w.Lock(context.Background(), 0) {
		return nil
	}
	defer w.Unlock()
	c := make([]Container, len(w.containers))
	copy(c, w.containers)
	return c
}

// SizeLocked - count of containers; caller must hold the lock
func (w *Warehouse) SizeLocked() int {
	return len(w.containers)
}

// FreeLocked - count of empty places; caller must hold the lock
func (w *Warehouse) FreeLocked() int {
	return w.capacity - len(w.containers)
}

// AddLocked - append the whole batch if it fits; caller must hold
// the lock
func (w *Warehouse) AddLocked(batch []Container) bool {
	if len(batch) > w.FreeLocked() {
		return false
	}
	w.containers = append(w.containers, batch...)
	atomic.StoreInt64(&w.size, int64(len(w.containers)))
	return true
}

// RemoveLocked - detach the first n containers if that many are
// present; caller must hold the lock
func (w *Warehouse) RemoveLocked(n int) ([]Container, bool) {
	if n < 0 || n > len(w.containers) {
		return nil, false
	}
	batch := make([]Container, n)
	copy(batch, w.containers[:n])

	remaining := copy(w.containers, w.containers[n:])
	for i := remaining; i < len(w.containers); i += 1 {
		w.containers[i] = Container{}
	}
	w.containers = w.containers[:remaining]
	atomic.StoreInt64(&w.size, int64(remaining))
	return batch, true
}
