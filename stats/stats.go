// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package stats - counters of ship activity
//
// Recording is best effort: a failed recorder never stops a ship.
package stats

import (
	"context"
	"time"
)

// Kind - what happened
type Kind string

// event kinds
const (
	Berthed   Kind = "berthed"
	Refused   Kind = "refused"
	Unloaded  Kind = "unloaded"
	Loaded    Kind = "loaded"
	Failed    Kind = "failed"
	Violation Kind = "violation"
)

// Event - one occurrence; Count is the number of containers moved
// for Unloaded and Loaded
type Event struct {
	Ship  string
	Kind  Kind
	Count int
	At    time.Time
}

// Recorder - somewhere to send events
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Counters - totals per kind
type Counters struct {
	Berthed    int64 `json:"berthed"`
	Refused    int64 `json:"refused"`
	Unloads    int64 `json:"unloads"`
	Loads      int64 `json:"loads"`
	Failed     int64 `json:"failed"`
	Violations int64 `json:"violations"`
	Unloaded   int64 `json:"unloaded"` // containers
	Loaded     int64 `json:"loaded"`   // containers
}

func (c *Counters) add(ev Event) {
	switch ev.Kind {
	case Berthed:
		c.Berthed += 1
	case Refused:
		c.Refused += 1
	case Unloaded:
		c.Unloads += 1
		c.Unloaded += int64(ev.Count)
	case Loaded:
		c.Loads += 1
		c.Loaded += int64(ev.Count)
	case Failed:
		c.Failed += 1
	case Violation:
		c.Violations += 1
	}
}

type tee []Recorder

// Tee - send every event to all recorders, returning the first error
func Tee(recorders ...Recorder) Recorder {
	t := make(tee, 0, len(recorders))
	for _, r := range recorders {
		if nil != r {
			t = append(t, r)
		}
	}
	return t
}

func (t tee) Record(ctx context.Context, ev Event) error {
	var first error
	for _, r := range t {
		if err := r.Record(ctx, ev); nil != err && nil == first {
			first = err
		}
	}
	return first
}
