// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ship - a ship that repeatedly sails in, takes a berth,
// loads or unloads a random batch and sails away again
package ship

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/portd/berth"
	"github.com/bitmark-inc/portd/fault"
	"github.com/bitmark-inc/portd/ledger"
	"github.com/bitmark-inc/portd/stats"
	"github.com/bitmark-inc/portd/warehouse"
)

// priority range
const (
	minimumPriority = 1
	maximumPriority = 10
	flagBonus       = 2
)

// Dispatcher - the port as seen from a ship
type Dispatcher interface {
	InitClient(id string) error
	Acquire(ctx context.Context, id string, timeout time.Duration) (bool, error)
	Release(id string) error
	Berth(id string) (*berth.Berth, error)
	Transfer(ctx context.Context, id string, direction berth.Direction, ship *warehouse.Warehouse, count int) (bool, error)
	RecordViolation(id string) error
	Violations(id string) (int, error)
}

// Journal - where completed visits are written
type Journal interface {
	Append(v *ledger.Visit) error
}

// Ship - one client of the port
type Ship struct {
	name     string
	store    *warehouse.Warehouse
	base     int
	port     Dispatcher
	timing   Timing
	pilot    *rate.Limiter
	recorder stats.Recorder
	journal  Journal
	rng      *rand.Rand
	log      *logger.L
}

// Option - optional collaborator
type Option func(*Ship)

// WithPilot - share a harbour entry limiter between ships
func WithPilot(pilot *rate.Limiter) Option {
	return func(s *Ship) { s.pilot = pilot }
}

// WithRecorder - send activity counters
func WithRecorder(recorder stats.Recorder) Option {
	return func(s *Ship) { s.recorder = recorder }
}

// WithJournal - write each visit to a journal
func WithJournal(journal Journal) Option {
	return func(s *Ship) { s.journal = journal }
}

// WithSeed - fixed random sequence
func WithSeed(seed int64) Option {
	return func(s *Ship) { s.rng = rand.New(rand.NewSource(seed)) }
}

// New - create a ship and register it with the port
func New(configuration Configuration, store *warehouse.Warehouse, port Dispatcher, timing Timing, opts ...Option) (*Ship, error) {
	if "" == configuration.Name {
		return nil, fault.ErrInvalidShipName
	}
	if nil == store || nil == port {
		return nil, fault.ErrNotInitialised
	}
	if timing.MaxBatch < 1 {
		return nil, fault.ErrInvalidBatchCount
	}

	h := fnv.New64a()
	h.Write([]byte(configuration.Name))

	s := &Ship{
		name:   configuration.Name,
		store:  store,
		base:   configuration.Priority,
		port:   port,
		timing: timing,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(h.Sum64()))),
		log:    logger.New("ship"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := port.InitClient(s.name); nil != err {
		return nil, err
	}
	return s, nil
}

// Name - ship identity at the port
func (s *Ship) Name() string {
	return s.name
}

// Warehouse - the ship's hold
func (s *Ship) Warehouse() *warehouse.Warehouse {
	return s.store
}

// Run - sail until shutdown
func (s *Ship) Run(args interface{}, shutdown <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.log.Infof("%s: starting…  hold: %d/%d", s.name, s.store.Size(), s.store.Capacity())

	for {
		if !sleep(ctx, s.seaTime(s.priority())) {
			break
		}
		if err := s.visit(ctx); nil != err {
			s.log.Errorf("%s: visit error: %s", s.name, err)
		}
		if nil != ctx.Err() {
			break
		}
	}

	s.log.Infof("%s: stopped  hold: %d/%d", s.name, s.store.Size(), s.store.Capacity())
}

// Priority - eagerness to return to port
func Priority(base int, violations int, important bool, urgent bool) int {
	p := base - violations
	if important {
		p += flagBonus
	}
	if urgent {
		p += flagBonus
	}
	if p < minimumPriority {
		return minimumPriority
	}
	if p > maximumPriority {
		return maximumPriority
	}
	return p
}

func (s *Ship) priority() int {
	violations, err := s.port.Violations(s.name)
	if nil != err {
		s.log.Errorf("%s: violations: %s", s.name, err)
	}
	return Priority(s.base, violations, 0 == s.rng.Intn(2), 0 == s.rng.Intn(2))
}

// higher priority ships spend less time at sea
func (s *Ship) seaTime(priority int) time.Duration {
	return s.timing.AtSea * time.Duration(maximumPriority+1-priority) / maximumPriority
}

// choose direction and batch size from the current hold
func (s *Ship) plan() (berth.Direction, int) {
	size := s.store.Size()
	free := s.store.Free()
	count := 1 + s.rng.Intn(s.timing.MaxBatch)

	if size > 0 && (0 == free || 0 == s.rng.Intn(2)) {
		if count > size {
			count = size
		}
		return berth.ToPort, count
	}
	if count > free {
		count = free
	}
	return berth.FromPort, count
}

// time spent moving count containers
func (s *Ship) handling(count int) time.Duration {
	d := time.Duration(0)
	for i := 0; i < count; i += 1 {
		d += s.timing.ContainerMin
		if s.timing.ContainerSpread > 0 {
			d += time.Duration(s.rng.Int63n(int64(s.timing.ContainerSpread)))
		}
	}
	return d
}

// one complete visit: berth, transfer, leave
func (s *Ship) visit(ctx context.Context) error {
	if nil != s.pilot {
		if err := s.pilot.Wait(ctx); nil != err {
			return nil
		}
	}

	arrived := time.Now()
	ok, err := s.port.Acquire(ctx, s.name, s.timing.AcquireTimeout)
	if nil != err {
		return err
	}
	if !ok {
		if nil == ctx.Err() {
			s.log.Warnf("%s: no berth after %s", s.name, time.Since(arrived))
			s.record(ctx, stats.Refused, 0)
		}
		return nil
	}
	defer func() {
		if err := s.port.Release(s.name); nil != err {
			s.log.Errorf("%s: release: %s", s.name, err)
		}
	}()

	b, err := s.port.Berth(s.name)
	if nil != err {
		return err
	}
	s.log.Infof("%s: berthed at %s  hold: %d/%d", s.name, b, s.store.Size(), s.store.Capacity())
	s.record(ctx, stats.Berthed, 0)

	if !sleep(ctx, s.timing.Berthing) {
		return nil
	}

	direction, count := s.plan()
	if 0 == count {
		s.log.Infof("%s: nothing to move  hold: %d/%d", s.name, s.store.Size(), s.store.Capacity())
		sleep(ctx, s.timing.Berthing)
		return nil
	}
	budget := time.Duration(count) * s.timing.ContainerBudget

	v := ledger.Visit{
		Ship:      s.name,
		Berth:     b.ID(),
		Direction: direction.String(),
		Requested: count,
		Budget:    budget,
		Arrived:   arrived,
	}

	start := time.Now()
	moved, err := s.port.Transfer(ctx, s.name, direction, s.store, count)
	if nil != err {
		return err
	}
	v.Moved = moved

	if moved {
		sleep(ctx, s.handling(count))
		v.Elapsed = time.Since(start)

		kind := stats.Unloaded
		if berth.FromPort == direction {
			kind = stats.Loaded
		}
		s.record(ctx, kind, count)
		s.log.Infof("%s: %s %d containers in %s  budget: %s", s.name, kind, count, v.Elapsed, budget)

		if v.Elapsed > budget {
			v.Violation = true
			if err := s.port.RecordViolation(s.name); nil != err {
				return err
			}
			s.record(ctx, stats.Violation, 0)
			s.log.Warnf("%s: over budget by %s", s.name, v.Elapsed-budget)
		}
	} else {
		v.Elapsed = time.Since(start)
		s.record(ctx, stats.Failed, 0)
		s.log.Warnf("%s: could not move %d %s", s.name, count, direction)
		sleep(ctx, s.timing.Refused)
	}

	sleep(ctx, s.timing.Berthing)
	v.Departed = time.Now()

	if nil != s.journal {
		if err := s.journal.Append(&v); nil != err {
			s.log.Errorf("%s: journal: %s", s.name, err)
		}
	}
	return nil
}

func (s *Ship) record(ctx context.Context, kind stats.Kind, count int) {
	if nil == s.recorder {
		return
	}
	ev := stats.Event{
		Ship:  s.name,
		Kind:  kind,
		Count: count,
		At:    time.Now(),
	}
	if err := s.recorder.Record(ctx, ev); nil != err {
		s.log.Warnf("%s: stats: %s", s.name, err)
	}
}

// wait for d, returning false if ctx finished first
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return nil == ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
