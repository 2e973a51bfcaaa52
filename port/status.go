// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package port

import (
	"sort"
)

// Assignment - one ship at one berth
type Assignment struct {
	Ship  string `json:"ship"`
	Berth int    `json:"berth"`
}

// Status - read only snapshot of the port
type Status struct {
	Berths      int            `json:"berths"`
	Free        int            `json:"free"`
	Stock       int            `json:"stock"`
	Capacity    int            `json:"capacity"`
	Assignments []Assignment   `json:"assignments"`
	Waiting     []string       `json:"waiting"` // queue order
	Violations  map[string]int `json:"violations"`
}

// Status - take a snapshot
func (p *Port) Status() Status {
	p.Lock()
	s := Status{
		Berths:      len(p.berths),
		Free:        len(p.free),
		Assignments: make([]Assignment, 0, len(p.assignments)),
		Waiting:     make([]string, 0, p.queue.Len()),
		Violations:  make(map[string]int, len(p.violations)),
	}
	for id, b := range p.assignments {
		s.Assignments = append(s.Assignments, Assignment{Ship: id, Berth: b.ID()})
	}
	for e := p.queue.Front(); nil != e; e = e.Next() {
		s.Waiting = append(s.Waiting, e.Value.(*waiter).id)
	}
	for id, n := range p.violations {
		s.Violations[id] = n
	}
	p.Unlock()

	s.Stock = p.store.Size()
	s.Capacity = p.store.Capacity()

	sort.Slice(s.Assignments, func(i, j int) bool {
		return s.Assignments[i].Berth < s.Assignments[j].Berth
	})
	return s
}
