// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package port - allocation of a fixed set of berths to ships
//
// Every ship holds at most one berth.  When no berth is free a ship
// joins a FIFO queue; a release hands the berth directly to the ship
// at the head of the queue, so waiting ships are served in arrival
// order.  All bookkeeping (free berths, assignments, queue and
// violation counts) lives under one mutex.
package port

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"go.opentelemetry.io/otel/metric"

	"github.com/bitmark-inc/portd/berth"
	"github.com/bitmark-inc/portd/fault"
	"github.com/bitmark-inc/portd/warehouse"
)

// a ship blocked in Acquire
type waiter struct {
	id      string
	grant   chan *berth.Berth // buffered: a release never blocks
	element *list.Element
}

// Port - the berth pool
type Port struct {
	sync.Mutex

	store       *warehouse.Warehouse
	berths      []*berth.Berth
	free        []*berth.Berth
	assignments map[string]*berth.Berth
	queue       *list.List
	waiters     map[string]*waiter
	violations  map[string]int

	log     *logger.L
	metrics *instruments
}

// Option - optional Port setting
type Option func(*options)

type options struct {
	meterProvider metric.MeterProvider
}

// WithMeterProvider - record instruments somewhere other than the
// global provider
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = provider
	}
}

// New - create a port with berthCount berths serving store
func New(store *warehouse.Warehouse, berthCount int, lockTimeout time.Duration, opts ...Option) (*Port, error) {
	if berthCount < 1 {
		return nil, fault.ErrInvalidBerthCount
	}
	if nil == store {
		return nil, fault.ErrNotInitialised
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	metrics, err := newInstruments(o.meterProvider)
	if nil != err {
		return nil, err
	}

	p := &Port{
		store:       store,
		berths:      make([]*berth.Berth, berthCount),
		free:        make([]*berth.Berth, berthCount),
		assignments: make(map[string]*berth.Berth),
		queue:       list.New(),
		waiters:     make(map[string]*waiter),
		violations:  make(map[string]int),
		log:         logger.New("port"),
		metrics:     metrics,
	}
	for i := range p.berths {
		b := berth.New(i+1, store, lockTimeout)
		p.berths[i] = b
		p.free[i] = b
	}
	metrics.berths.Add(context.Background(), int64(berthCount))

	p.log.Infof("%d berths  warehouse: %d/%d", berthCount, store.Size(), store.Capacity())
	return p, nil
}

// Capacity - total number of berths
func (p *Port) Capacity() int {
	return len(p.berths)
}

// Warehouse - the shared port store
func (p *Port) Warehouse() *warehouse.Warehouse {
	return p.store
}

// InitClient - register a ship, resetting its violation count
func (p *Port) InitClient(id string) error {
	if "" == id {
		return fault.ErrInvalidClientID
	}
	p.Lock()
	p.violations[id] = 0
	p.Unlock()
	return nil
}

// Acquire - obtain a berth for the ship
//
// Returns false, nil if no berth became free within timeout or ctx
// was done first; a timeout <= 0 waits until ctx is done.  An error
// is returned only for misuse, in which case nothing changes.
func (p *Port) Acquire(ctx context.Context, id string, timeout time.Duration) (bool, error) {
	if "" == id {
		return false, fault.ErrInvalidClientID
	}

	start := time.Now()

	p.Lock()
	if _, ok := p.assignments[id]; ok {
		p.Unlock()
		p.metrics.acquired(resultRejected, start, false)
		return false, fault.ErrBerthHeld
	}
	if _, ok := p.waiters[id]; ok {
		p.Unlock()
		p.metrics.acquired(resultRejected, start, false)
		return false, fault.ErrAlreadyWaiting
	}

	if len(p.free) > 0 {
		b := p.free[0]
		p.free = p.free[1:]
		p.assignments[id] = b
		p.Unlock()

		p.metrics.acquired(resultGranted, start, true)
		p.log.Debugf("%s: %s", id, b)
		return true, nil
	}

	w := &waiter{
		id:    id,
		grant: make(chan *berth.Berth, 1),
	}
	w.element = p.queue.PushBack(w)
	p.waiters[id] = w
	queued := p.queue.Len()
	p.Unlock()

	p.log.Debugf("%s: waiting  queue: %d", id, queued)

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	result := resultTimeout
	select {
	case b := <-w.grant:
		p.metrics.acquired(resultGranted, start, false)
		p.log.Debugf("%s: %s after %s", id, b, time.Since(start))
		return true, nil
	case <-expired:
	case <-ctx.Done():
		result = resultCancelled
	}

	p.Lock()
	select {
	case b := <-w.grant:
		// a release handed over the berth while giving up, the
		// assignment is already recorded so keep it
		p.Unlock()
		p.metrics.acquired(resultGranted, start, false)
		p.log.Debugf("%s: %s at deadline", id, b)
		return true, nil
	default:
	}
	p.queue.Remove(w.element)
	delete(p.waiters, id)
	p.Unlock()

	p.metrics.acquired(result, start, false)
	p.log.Debugf("%s: %s after %s", id, result, time.Since(start))
	return false, nil
}

// Release - give back the ship's berth
func (p *Port) Release(id string) error {
	p.Lock()
	b, ok := p.assignments[id]
	if !ok {
		p.Unlock()
		p.log.Errorf("%s: release without a berth", id)
		return fault.ErrNotHoldingBerth
	}
	delete(p.assignments, id)

	handedOff := false
	if front := p.queue.Front(); nil != front {
		w := p.queue.Remove(front).(*waiter)
		delete(p.waiters, w.id)
		p.assignments[w.id] = b
		w.grant <- b
		handedOff = true
		p.log.Debugf("%s: %s handed to %s", id, b, w.id)
	} else {
		p.free = append(p.free, b)
		p.log.Debugf("%s: %s free", id, b)
	}
	p.Unlock()

	p.metrics.released(handedOff)
	return nil
}

// Berth - the berth currently held by the ship
func (p *Port) Berth(id string) (*berth.Berth, error) {
	p.Lock()
	defer p.Unlock()
	b, ok := p.assignments[id]
	if !ok {
		return nil, fault.ErrNotHoldingBerth
	}
	return b, nil
}

// Transfer - move containers through the ship's berth
//
// false, nil is the normal refusal (capacity or lock timeout); an
// error means the ship does not hold a berth.
func (p *Port) Transfer(ctx context.Context, id string, direction berth.Direction, ship *warehouse.Warehouse, count int) (bool, error) {
	b, err := p.Berth(id)
	if nil != err {
		return false, err
	}
	return b.Transfer(ctx, direction, ship, count), nil
}

// RecordViolation - add one to the ship's violation count
func (p *Port) RecordViolation(id string) error {
	p.Lock()
	defer p.Unlock()
	n, ok := p.violations[id]
	if !ok {
		return fault.ErrUnknownClient
	}
	p.violations[id] = n + 1
	p.log.Infof("%s: violation  total: %d", id, n+1)
	return nil
}

// Violations - the ship's violation count
func (p *Port) Violations(id string) (int, error) {
	p.Lock()
	defer p.Unlock()
	n, ok := p.violations[id]
	if !ok {
		return 0, fault.ErrUnknownClient
	}
	return n, nil
}
