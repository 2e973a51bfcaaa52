// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package reporter - periodic log of the port condition
package reporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/portd/ledger"
	"github.com/bitmark-inc/portd/port"
	"github.com/bitmark-inc/portd/stats"
	"github.com/bitmark-inc/portd/warehouse"
)

// StatusSource - something that can take a port snapshot
type StatusSource interface {
	Status() port.Status
}

// Hold - a named ship warehouse
type Hold interface {
	Name() string
	Warehouse() *warehouse.Warehouse
}

// RecentVisits - latest visit per ship
type RecentVisits interface {
	Recent(ship string) (ledger.Visit, bool)
}

// Totals - overall activity counters
type Totals interface {
	Total() stats.Counters
}

// Reporter - background process logging snapshots
type Reporter struct {
	port     StatusSource
	holds    []Hold
	visits   RecentVisits
	totals   Totals
	interval time.Duration
	log      *logger.L
}

// New - create a reporter; visits and totals may be nil
func New(source StatusSource, holds []Hold, visits RecentVisits, totals Totals, interval time.Duration) *Reporter {
	return &Reporter{
		port:     source,
		holds:    holds,
		visits:   visits,
		totals:   totals,
		interval: interval,
		log:      logger.New("reporter"),
	}
}

// Run - log a report every interval until shutdown, and once more
// on the way out
func (r *Reporter) Run(args interface{}, shutdown <-chan struct{}) {
	r.log.Info("starting…")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			r.write()
		}
	}

	r.write()
	r.log.Info("stopped")
	r.log.Flush()
}

func (r *Reporter) write() {
	for _, line := range r.Report() {
		r.log.Info(line)
	}
}

// Report - the current condition as log lines
func (r *Reporter) Report() []string {
	s := r.port.Status()
	lines := make([]string, 0, 4+len(s.Assignments)+len(r.holds))

	lines = append(lines, fmt.Sprintf("port: %d/%d containers  berths free: %d/%d", s.Stock, s.Capacity, s.Free, s.Berths))
	for _, a := range s.Assignments {
		lines = append(lines, fmt.Sprintf("berth-%d: %s", a.Berth, a.Ship))
	}
	if len(s.Waiting) > 0 {
		lines = append(lines, "waiting: "+strings.Join(s.Waiting, ", "))
	}

	for _, h := range r.holds {
		w := h.Warehouse()
		line := fmt.Sprintf("%s: hold: %d/%d  violations: %d", h.Name(), w.Size(), w.Capacity(), s.Violations[h.Name()])
		if nil != r.visits {
			if v, ok := r.visits.Recent(h.Name()); ok {
				outcome := "refused"
				if v.Moved {
					outcome = "moved"
				}
				line += fmt.Sprintf("  last: %s %d %s at berth-%d %s", outcome, v.Requested, v.Direction, v.Berth, v.Departed.Format("15:04:05"))
			}
		}
		lines = append(lines, line)
	}

	if nil != r.totals {
		c := r.totals.Total()
		lines = append(lines, fmt.Sprintf("totals: berthed: %d  refused: %d  unloaded: %d in %d  loaded: %d in %d  failed: %d  violations: %d",
			c.Berthed, c.Refused, c.Unloaded, c.Unloads, c.Loaded, c.Loads, c.Failed, c.Violations))
	}
	return lines
}
