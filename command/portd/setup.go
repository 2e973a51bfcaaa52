// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/bitmark-inc/logger"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/portd/background"
	"github.com/bitmark-inc/portd/fault"
	"github.com/bitmark-inc/portd/ledger"
	"github.com/bitmark-inc/portd/port"
	"github.com/bitmark-inc/portd/reporter"
	"github.com/bitmark-inc/portd/ship"
	"github.com/bitmark-inc/portd/stats"
	"github.com/bitmark-inc/portd/warehouse"
)

// harbour - every component of a running port
type harbour struct {
	port     *port.Port
	ships    []*ship.Ship
	ledger   *ledger.Ledger
	memory   *stats.MemoryRecorder
	redis    *stats.RedisRecorder
	reporter *reporter.Reporter
	log      *logger.L
}

// build the port, its ships and their collaborators
func newHarbour(configuration *Configuration, p *parameters, provider metric.MeterProvider) (*harbour, error) {
	h := &harbour{
		memory: stats.NewMemoryRecorder(),
		log:    logger.New("harbour"),
	}

	// one sequence so container ids are unique across every warehouse
	sequence := &warehouse.Sequence{}

	store, err := preloaded("port", configuration.Port.Capacity, configuration.Port.Stock, sequence)
	if nil != err {
		return nil, err
	}

	h.port, err = port.New(store, configuration.Port.Berths, p.lockTimeout, port.WithMeterProvider(provider))
	if nil != err {
		return nil, err
	}

	h.ledger, err = ledger.Create(configuration.Ledger.Directory, p.ledgerRecent)
	if nil != err {
		return nil, err
	}

	recorder := stats.Recorder(h.memory)
	if "" != configuration.Stats.Redis.Address {
		h.redis, err = stats.NewRedisRecorder(&configuration.Stats.Redis)
		if nil != err {
			h.Close()
			return nil, err
		}
		recorder = stats.Tee(h.memory, h.redis)
		h.log.Infof("redis stats: %s", configuration.Stats.Redis.Address)
	}

	limit := rate.Inf
	if configuration.Harbour.Rate > 0 {
		limit = rate.Limit(configuration.Harbour.Rate)
	}
	burst := configuration.Harbour.Burst
	if burst < 1 {
		burst = 1
	}
	pilot := rate.NewLimiter(limit, burst)

	holds := make([]reporter.Hold, 0, len(configuration.Ships))
	for _, c := range configuration.Ships {
		hold, err := preloaded(c.Name, c.Capacity, c.Stock, sequence)
		if nil != err {
			h.Close()
			return nil, err
		}
		s, err := ship.New(c, hold, h.port, p.timing,
			ship.WithPilot(pilot),
			ship.WithRecorder(recorder),
			ship.WithJournal(h.ledger),
		)
		if nil != err {
			h.Close()
			return nil, fmt.Errorf("ship: %q  error: %w", c.Name, err)
		}
		h.ships = append(h.ships, s)
		holds = append(holds, s)
	}

	h.reporter = reporter.New(h.port, holds, h.ledger, h.memory, p.statusInterval)

	h.log.Infof("port: %d berths  stock: %d/%d  ships: %d", configuration.Port.Berths, store.Size(), store.Capacity(), len(h.ships))
	return h, nil
}

// a warehouse holding its initial stock
func preloaded(name string, capacity int, stock int, sequence *warehouse.Sequence) (*warehouse.Warehouse, error) {
	w, err := warehouse.New(name, capacity)
	if nil != err {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if stock > capacity || stock < 0 {
		return nil, fmt.Errorf("%s: %w", name, fault.ErrInvalidStock)
	}
	if stock > 0 && !w.TryAddBatch(sequence.Batch(stock)) {
		return nil, fmt.Errorf("%s: %w", name, fault.ErrPreloadFailed)
	}
	return w, nil
}

// every ship plus the reporter
func (h *harbour) processes() background.Processes {
	processes := make(background.Processes, 0, len(h.ships)+1)
	for _, s := range h.ships {
		processes = append(processes, s)
	}
	return append(processes, h.reporter)
}

// containers held by the port and all ships
func (h *harbour) containers() int {
	total := h.port.Warehouse().Size()
	for _, s := range h.ships {
		total += s.Warehouse().Size()
	}
	return total
}

// log the final counters
func (h *harbour) summary() {
	t := h.memory.Total()
	h.log.Infof("totals: berthed: %d  refused: %d  unloaded: %d in %d  loaded: %d in %d  failed: %d  violations: %d",
		t.Berthed, t.Refused, t.Unloaded, t.Unloads, t.Loaded, t.Loads, t.Failed, t.Violations)
	for _, s := range h.ships {
		c := h.memory.Ship(s.Name())
		h.log.Infof("%s: berthed: %d  unloaded: %d  loaded: %d  violations: %d", s.Name(), c.Berthed, c.Unloaded, c.Loaded, c.Violations)
	}
	if nil != h.ledger {
		h.log.Infof("ledger: %d visits", h.ledger.Count())
	}
	h.log.Infof("containers: %d", h.containers())
}

// release the ledger and redis connection
func (h *harbour) Close() {
	if nil != h.redis {
		if err := h.redis.Close(); nil != err {
			h.log.Errorf("redis close error: %s", err)
		}
		h.redis = nil
	}
	if nil != h.ledger {
		if err := h.ledger.Close(); nil != err {
			h.log.Errorf("ledger close error: %s", err)
		}
		h.ledger = nil
	}
}
