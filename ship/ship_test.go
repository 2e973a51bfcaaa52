// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ship

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/portd/background"
	"github.com/bitmark-inc/portd/berth"
	"github.com/bitmark-inc/portd/fault"
	"github.com/bitmark-inc/portd/ledger"
	"github.com/bitmark-inc/portd/port"
	"github.com/bitmark-inc/portd/ship/mocks"
	"github.com/bitmark-inc/portd/stats"
	"github.com/bitmark-inc/portd/warehouse"
)

const shipName = "aurora"

func quickTiming() Timing {
	return Timing{
		AtSea:           time.Millisecond,
		Berthing:        time.Millisecond,
		Refused:         time.Millisecond,
		ContainerBudget: time.Hour,
		ContainerMin:    time.Millisecond,
		ContainerSpread: time.Millisecond,
		AcquireTimeout:  10 * time.Millisecond,
		MaxBatch:        20,
	}
}

func newHold(t *testing.T, capacity int, stock int) *warehouse.Warehouse {
	var seq warehouse.Sequence
	w, err := warehouse.New(shipName, capacity)
	assert.Nil(t, err)
	assert.True(t, w.TryAddBatch(seq.Batch(stock)))
	return w
}

func newShip(t *testing.T, hold *warehouse.Warehouse, dispatcher Dispatcher, timing Timing, opts ...Option) *Ship {
	s, err := New(Configuration{Name: shipName, Capacity: hold.Capacity(), Priority: 5}, hold, dispatcher, timing, append(opts, WithSeed(1))...)
	assert.Nil(t, err, "ship.New")
	return s
}

func TestPriority(t *testing.T) {
	items := []struct {
		base       int
		violations int
		important  bool
		urgent     bool
		expected   int
	}{
		{5, 0, false, false, 5},
		{5, 2, false, false, 3},
		{5, 0, true, false, 7},
		{5, 0, true, true, 9},
		{9, 0, true, true, 10},
		{0, 4, false, false, 1},
		{3, 10, true, true, 1},
		{-3, 0, true, false, 1},
	}
	for i, item := range items {
		actual := Priority(item.base, item.violations, item.important, item.urgent)
		assert.Equal(t, item.expected, actual, "%d: %+v", i, item)
	}
}

func TestSeaTime(t *testing.T) {
	s := &Ship{timing: Timing{AtSea: 10 * time.Second}}
	assert.Equal(t, 10*time.Second, s.seaTime(1))
	assert.Equal(t, 6*time.Second, s.seaTime(5))
	assert.Equal(t, time.Second, s.seaTime(10))
}

func TestNewValidation(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	m := mocks.NewMockDispatcher(ctl)
	hold := newHold(t, 5, 0)

	_, err := New(Configuration{}, hold, m, quickTiming())
	assert.Equal(t, fault.ErrInvalidShipName, err)

	_, err = New(Configuration{Name: shipName}, nil, m, quickTiming())
	assert.Equal(t, fault.ErrNotInitialised, err)

	timing := quickTiming()
	timing.MaxBatch = 0
	_, err = New(Configuration{Name: shipName}, hold, m, timing)
	assert.Equal(t, fault.ErrInvalidBatchCount, err)

	m.EXPECT().InitClient(shipName).Return(fault.ErrInvalidClientID).Times(1)
	_, err = New(Configuration{Name: shipName}, hold, m, quickTiming())
	assert.Equal(t, fault.ErrInvalidClientID, err)
}

func TestPlan(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	m := mocks.NewMockDispatcher(ctl)
	m.EXPECT().InitClient(shipName).Return(nil).AnyTimes()

	full := newShip(t, newHold(t, 3, 3), m, quickTiming())
	empty := newShip(t, newHold(t, 3, 0), m, quickTiming())
	middle := newShip(t, newHold(t, 40, 15), m, quickTiming())

	for i := 0; i < 100; i += 1 {
		direction, count := full.plan()
		assert.Equal(t, berth.ToPort, direction, "full ship must unload")
		assert.True(t, count >= 1 && count <= 3, "count: %d", count)

		direction, count = empty.plan()
		assert.Equal(t, berth.FromPort, direction, "empty ship must load")
		assert.True(t, count >= 1 && count <= 3, "count: %d", count)

		direction, count = middle.plan()
		switch direction {
		case berth.ToPort:
			assert.True(t, count >= 1 && count <= 15, "unload count: %d", count)
		case berth.FromPort:
			assert.True(t, count >= 1 && count <= 20, "load count: %d", count)
		}
	}
}

func TestVisitUnload(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	hold := newHold(t, 1, 1)
	portStore, _ := warehouse.New("port", 10)
	b := berth.New(2, portStore, time.Second)

	m := mocks.NewMockDispatcher(ctl)
	journal := mocks.NewMockJournal(ctl)
	recorder := stats.NewMemoryRecorder()

	var written ledger.Visit
	gomock.InOrder(
		m.EXPECT().InitClient(shipName).Return(nil).Times(1),
		m.EXPECT().Acquire(gomock.Any(), shipName, 10*time.Millisecond).Return(true, nil).Times(1),
		m.EXPECT().Berth(shipName).Return(b, nil).Times(1),
		m.EXPECT().Transfer(gomock.Any(), shipName, berth.ToPort, hold, 1).Return(true, nil).Times(1),
		journal.EXPECT().Append(gomock.Any()).DoAndReturn(func(v *ledger.Visit) error {
			written = *v
			return nil
		}).Times(1),
		m.EXPECT().Release(shipName).Return(nil).Times(1),
	)

	s := newShip(t, hold, m, quickTiming(), WithJournal(journal), WithRecorder(recorder))
	assert.Nil(t, s.visit(context.Background()))

	assert.Equal(t, shipName, written.Ship)
	assert.Equal(t, 2, written.Berth)
	assert.Equal(t, "to-port", written.Direction)
	assert.Equal(t, 1, written.Requested)
	assert.True(t, written.Moved)
	assert.False(t, written.Violation)
	assert.Equal(t, time.Hour, written.Budget)
	assert.False(t, written.Departed.Before(written.Arrived))

	assert.Equal(t, stats.Counters{Berthed: 1, Unloads: 1, Unloaded: 1}, recorder.Ship(shipName))
}

func TestVisitViolation(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	hold := newHold(t, 1, 0)
	portStore, _ := warehouse.New("port", 10)
	b := berth.New(1, portStore, time.Second)

	timing := quickTiming()
	timing.ContainerBudget = 0

	m := mocks.NewMockDispatcher(ctl)
	m.EXPECT().InitClient(shipName).Return(nil)
	m.EXPECT().Acquire(gomock.Any(), shipName, gomock.Any()).Return(true, nil)
	m.EXPECT().Berth(shipName).Return(b, nil)
	m.EXPECT().Transfer(gomock.Any(), shipName, berth.FromPort, hold, 1).Return(true, nil)
	m.EXPECT().RecordViolation(shipName).Return(nil).Times(1)
	m.EXPECT().Release(shipName).Return(nil).Times(1)

	recorder := stats.NewMemoryRecorder()
	s := newShip(t, hold, m, timing, WithRecorder(recorder))
	assert.Nil(t, s.visit(context.Background()))

	assert.Equal(t, stats.Counters{Berthed: 1, Loads: 1, Loaded: 1, Violations: 1}, recorder.Total())
}

func TestVisitRefused(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	hold := newHold(t, 5, 2)
	m := mocks.NewMockDispatcher(ctl)
	m.EXPECT().InitClient(shipName).Return(nil)
	m.EXPECT().Acquire(gomock.Any(), shipName, gomock.Any()).Return(false, nil).Times(1)

	recorder := stats.NewMemoryRecorder()
	s := newShip(t, hold, m, quickTiming(), WithRecorder(recorder))
	assert.Nil(t, s.visit(context.Background()))

	assert.Equal(t, int64(1), recorder.Total().Refused)
	assert.Equal(t, 2, hold.Size())
}

func TestVisitTransferFailed(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	hold := newHold(t, 1, 1)
	portStore, _ := warehouse.New("port", 0)
	b := berth.New(1, portStore, time.Second)

	m := mocks.NewMockDispatcher(ctl)
	journal := mocks.NewMockJournal(ctl)
	m.EXPECT().InitClient(shipName).Return(nil)
	m.EXPECT().Acquire(gomock.Any(), shipName, gomock.Any()).Return(true, nil)
	m.EXPECT().Berth(shipName).Return(b, nil)
	m.EXPECT().Transfer(gomock.Any(), shipName, berth.ToPort, hold, 1).Return(false, nil)
	journal.EXPECT().Append(gomock.Any()).DoAndReturn(func(v *ledger.Visit) error {
		assert.False(t, v.Moved)
		assert.False(t, v.Violation)
		return nil
	})
	m.EXPECT().Release(shipName).Return(nil).Times(1)

	recorder := stats.NewMemoryRecorder()
	s := newShip(t, hold, m, quickTiming(), WithRecorder(recorder), WithJournal(journal))
	assert.Nil(t, s.visit(context.Background()))
	assert.Equal(t, int64(1), recorder.Total().Failed)
}

func TestVisitUsageError(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	hold := newHold(t, 5, 2)
	m := mocks.NewMockDispatcher(ctl)
	m.EXPECT().InitClient(shipName).Return(nil)
	m.EXPECT().Acquire(gomock.Any(), shipName, gomock.Any()).Return(false, fault.ErrBerthHeld)

	s := newShip(t, hold, m, quickTiming())
	assert.Equal(t, fault.ErrBerthHeld, s.visit(context.Background()))
}

func TestVisitCancelledWhileBerthed(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	hold := newHold(t, 5, 2)
	portStore, _ := warehouse.New("port", 10)
	b := berth.New(1, portStore, time.Second)

	timing := quickTiming()
	timing.Berthing = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	m := mocks.NewMockDispatcher(ctl)
	m.EXPECT().InitClient(shipName).Return(nil)
	m.EXPECT().Acquire(gomock.Any(), shipName, gomock.Any()).Return(true, nil)
	m.EXPECT().Berth(shipName).DoAndReturn(func(string) (*berth.Berth, error) {
		cancel()
		return b, nil
	})
	m.EXPECT().Release(shipName).Return(nil).Times(1)

	s := newShip(t, hold, m, timing)
	assert.Nil(t, s.visit(ctx))
}

func TestPilotCancelled(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	m := mocks.NewMockDispatcher(ctl)
	m.EXPECT().InitClient(shipName).Return(nil)

	pilot := rate.NewLimiter(rate.Every(time.Hour), 1)
	assert.True(t, pilot.Allow(), "burst should allow one entry")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newShip(t, newHold(t, 5, 2), m, quickTiming(), WithPilot(pilot))
	assert.Nil(t, s.visit(ctx), "cancelled pilot wait is not an error")
}

// an empty hold with no room moves nothing, so no transfer is
// attempted and no budget can be exceeded
func TestVisitNothingToMove(t *testing.T) {
	var seq warehouse.Sequence
	portStore, _ := warehouse.New("port", 10)
	assert.True(t, portStore.TryAddBatch(seq.Batch(5)))
	p, err := port.New(portStore, 1, time.Second)
	assert.Nil(t, err)

	timing := quickTiming()
	timing.ContainerBudget = 0

	recorder := stats.NewMemoryRecorder()
	s := newShip(t, newHold(t, 0, 0), p, timing, WithRecorder(recorder))

	for i := 0; i < 3; i += 1 {
		assert.Nil(t, s.visit(context.Background()), "visit %d", i)
	}

	violations, err := p.Violations(shipName)
	assert.Nil(t, err)
	assert.Equal(t, 0, violations, "violation charged for an empty visit")
	assert.Equal(t, stats.Counters{Berthed: 3}, recorder.Ship(shipName))
	assert.Equal(t, 5, portStore.Size(), "port stock changed")
	assert.Equal(t, 1, p.Status().Free, "berth not released")
}

// ships sailing against a real port: every berth comes back on
// shutdown and no container is lost
func TestRunAgainstPort(t *testing.T) {
	var seq warehouse.Sequence
	portStore, _ := warehouse.New("port", 30)
	assert.True(t, portStore.TryAddBatch(seq.Batch(15)))
	p, err := port.New(portStore, 2, 50*time.Millisecond)
	assert.Nil(t, err)

	recorder := stats.NewMemoryRecorder()
	pilot := rate.NewLimiter(rate.Inf, 1)

	processes := background.Processes{}
	holds := []*warehouse.Warehouse{}
	for i, name := range []string{"one", "two", "three", "four"} {
		hold, _ := warehouse.New(name, 10)
		assert.True(t, hold.TryAddBatch(seq.Batch(5)))
		holds = append(holds, hold)

		s, err := New(Configuration{Name: name, Capacity: 10, Priority: i}, hold, p, quickTiming(), WithRecorder(recorder), WithPilot(pilot), WithSeed(int64(i)))
		assert.Nil(t, err)
		processes = append(processes, s)
	}

	bg := background.Start(processes, nil)
	time.Sleep(150 * time.Millisecond)
	bg.Stop()

	status := p.Status()
	assert.Equal(t, 2, status.Free, "berth not released on shutdown")
	assert.Equal(t, 0, len(status.Assignments))
	assert.Equal(t, 0, len(status.Waiting))

	total := portStore.Size()
	for _, hold := range holds {
		total += hold.Size()
	}
	assert.Equal(t, 35, total, "containers not conserved")
	assert.True(t, recorder.Total().Berthed > 0, "no ship ever berthed")
}
