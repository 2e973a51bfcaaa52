// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stats

import (
	"context"
	"sort"
	"sync"
)

// MemoryRecorder - in process totals, overall and per ship
type MemoryRecorder struct {
	sync.Mutex
	total  Counters
	byShip map[string]Counters
}

// NewMemoryRecorder - empty recorder
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		byShip: make(map[string]Counters),
	}
}

// Record - count one event
func (m *MemoryRecorder) Record(_ context.Context, ev Event) error {
	m.Lock()
	defer m.Unlock()

	m.total.add(ev)
	if "" != ev.Ship {
		c := m.byShip[ev.Ship]
		c.add(ev)
		m.byShip[ev.Ship] = c
	}
	return nil
}

// Total - overall counters
func (m *MemoryRecorder) Total() Counters {
	m.Lock()
	defer m.Unlock()
	return m.total
}

// Ship - counters for one ship
func (m *MemoryRecorder) Ship(name string) Counters {
	m.Lock()
	defer m.Unlock()
	return m.byShip[name]
}

// Ships - names of every ship seen, sorted
func (m *MemoryRecorder) Ships() []string {
	m.Lock()
	names := make([]string, 0, len(m.byShip))
	for name := range m.byShip {
		names = append(names, name)
	}
	m.Unlock()

	sort.Strings(names)
	return names
}
