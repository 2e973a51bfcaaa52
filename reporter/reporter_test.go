// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reporter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/portd/background"
	"github.com/bitmark-inc/portd/ledger"
	"github.com/bitmark-inc/portd/port"
	"github.com/bitmark-inc/portd/reporter"
	"github.com/bitmark-inc/portd/stats"
	"github.com/bitmark-inc/portd/warehouse"
)

type hold struct {
	name string
	w    *warehouse.Warehouse
}

func (h hold) Name() string                    { return h.name }
func (h hold) Warehouse() *warehouse.Warehouse { return h.w }

type visits map[string]ledger.Visit

func (v visits) Recent(ship string) (ledger.Visit, bool) {
	visit, ok := v[ship]
	return visit, ok
}

func setupPort(t *testing.T) (*port.Port, []reporter.Hold) {
	var seq warehouse.Sequence
	store, _ := warehouse.New("port", 90)
	assert.True(t, store.TryAddBatch(seq.Batch(50)))
	p, err := port.New(store, 2, time.Second)
	assert.Nil(t, err)

	holds := []reporter.Hold{}
	for _, name := range []string{"aurora", "borealis", "cygnus"} {
		w, _ := warehouse.New(name, 40)
		assert.True(t, w.TryAddBatch(seq.Batch(15)))
		assert.Nil(t, p.InitClient(name))
		holds = append(holds, hold{name, w})
	}
	return p, holds
}

func TestReport(t *testing.T) {
	p, holds := setupPort(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, name := range []string{"aurora", "borealis"} {
		ok, _ := p.Acquire(ctx, name, 0)
		assert.True(t, ok)
	}
	go func() {
		_, _ = p.Acquire(ctx, "cygnus", 0)
	}()
	for 0 == len(p.Status().Waiting) {
		time.Sleep(time.Millisecond)
	}
	assert.Nil(t, p.RecordViolation("borealis"))

	departed := time.Date(2020, 1, 2, 13, 14, 15, 0, time.UTC)
	recent := visits{
		"aurora": {Ship: "aurora", Berth: 1, Direction: "to-port", Requested: 4, Moved: true, Departed: departed},
	}
	totals := stats.NewMemoryRecorder()
	_ = totals.Record(ctx, stats.Event{Ship: "aurora", Kind: stats.Unloaded, Count: 4})

	r := reporter.New(p, holds, recent, totals, time.Hour)
	assert.Equal(t, []string{
		"port: 50/90 containers  berths free: 0/2",
		"berth-1: aurora",
		"berth-2: borealis",
		"waiting: cygnus",
		"aurora: hold: 15/40  violations: 0  last: moved 4 to-port at berth-1 13:14:15",
		"borealis: hold: 15/40  violations: 1",
		"cygnus: hold: 15/40  violations: 0",
		"totals: berthed: 0  refused: 0  unloaded: 4 in 1  loaded: 0 in 0  failed: 0  violations: 0",
	}, r.Report())

	// reporting never changes the port
	before := p.Status()
	_ = r.Report()
	assert.Equal(t, before, p.Status())
}

func TestReportWithoutOptional(t *testing.T) {
	p, holds := setupPort(t)
	r := reporter.New(p, holds[:1], nil, nil, time.Hour)
	assert.Equal(t, []string{
		"port: 50/90 containers  berths free: 2/2",
		"aurora: hold: 15/40  violations: 0",
	}, r.Report())
}

func TestRunStops(t *testing.T) {
	p, holds := setupPort(t)
	r := reporter.New(p, holds, nil, nil, 5*time.Millisecond)

	bg := background.Start(background.Processes{r}, nil)
	time.Sleep(20 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		bg.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("reporter did not stop")
	}
}
