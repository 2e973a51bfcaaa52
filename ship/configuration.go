// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ship

import (
	"time"

	"github.com/bitmark-inc/portd/fault"
)

// Configuration - one ship from the configuration file
type Configuration struct {
	Name     string `gluamapper:"name" json:"name" yaml:"name"`
	Capacity int    `gluamapper:"capacity" json:"capacity" yaml:"capacity"`
	Stock    int    `gluamapper:"stock" json:"stock" yaml:"stock"`
	Priority int    `gluamapper:"priority" json:"priority" yaml:"priority"`
}

// TimingConfiguration - durations as strings for the configuration
// file
type TimingConfiguration struct {
	AtSea           string `gluamapper:"at_sea" json:"at_sea" yaml:"at_sea"`
	Berthing        string `gluamapper:"berthing" json:"berthing" yaml:"berthing"`
	Refused         string `gluamapper:"refused" json:"refused" yaml:"refused"`
	ContainerBudget string `gluamapper:"container_budget" json:"container_budget" yaml:"container_budget"`
	ContainerMin    string `gluamapper:"container_min" json:"container_min" yaml:"container_min"`
	ContainerSpread string `gluamapper:"container_spread" json:"container_spread" yaml:"container_spread"`
	MaxBatch        int    `gluamapper:"max_batch" json:"max_batch" yaml:"max_batch"`
}

// Timing - how a ship paces its visits
type Timing struct {
	AtSea           time.Duration // before each visit, scaled by priority
	Berthing        time.Duration // after docking and again before leaving
	Refused         time.Duration // after a refused transfer
	ContainerBudget time.Duration // allowed handling time per container
	ContainerMin    time.Duration // least handling time per container
	ContainerSpread time.Duration // random extra handling per container
	AcquireTimeout  time.Duration // <= 0 waits for a berth until shutdown
	MaxBatch        int
}

// DefaultTiming - the standard port rhythm
func DefaultTiming() Timing {
	return Timing{
		AtSea:           4 * time.Second,
		Berthing:        500 * time.Millisecond,
		Refused:         400 * time.Millisecond,
		ContainerBudget: 300 * time.Millisecond,
		ContainerMin:    240 * time.Millisecond,
		ContainerSpread: 120 * time.Millisecond,
		AcquireTimeout:  3 * time.Second,
		MaxBatch:        20,
	}
}

// Timing - convert, keeping defaults for blank entries
func (c TimingConfiguration) Timing(acquireTimeout time.Duration) (Timing, error) {
	t := DefaultTiming()
	t.AcquireTimeout = acquireTimeout

	items := []struct {
		text   string
		target *time.Duration
	}{
		{c.AtSea, &t.AtSea},
		{c.Berthing, &t.Berthing},
		{c.Refused, &t.Refused},
		{c.ContainerBudget, &t.ContainerBudget},
		{c.ContainerMin, &t.ContainerMin},
		{c.ContainerSpread, &t.ContainerSpread},
	}
	for _, item := range items {
		if "" == item.text {
			continue
		}
		d, err := time.ParseDuration(item.text)
		if nil != err {
			return t, err
		}
		if d < 0 {
			return t, fault.ErrInvalidDuration
		}
		*item.target = d
	}

	if c.MaxBatch < 0 {
		return t, fault.ErrInvalidBatchCount
	}
	if c.MaxBatch > 0 {
		t.MaxBatch = c.MaxBatch
	}
	return t, nil
}
