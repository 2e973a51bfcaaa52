// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/portd/background"
	"github.com/bitmark-inc/portd/fault"
	"github.com/bitmark-inc/portd/ledger"
	"github.com/bitmark-inc/portd/warehouse"
)

const fastHarbour = `
data_directory: .
port:
  berths: 2
  capacity: 40
  stock: 20
  acquire_timeout: 50ms
  lock_timeout: 1s
ships:
  - name: aurora
    capacity: 20
    stock: 5
    priority: 8
  - name: borealis
    capacity: 30
    stock: 20
    priority: 5
  - name: cassiopeia
    capacity: 10
    stock: 0
    priority: 2
timing:
  at_sea: 20ms
  berthing: 2ms
  refused: 2ms
  container_budget: 2ms
  container_min: 1ms
  container_spread: 1ms
  max_batch: 4
harbour:
  rate: 200
  burst: 2
status:
  interval: 25ms
telemetry:
  file: metrics.json
  interval: 20ms
`

func TestHarbourConservesContainers(t *testing.T) {
	c, err := getConfiguration(writeConfiguration(t, "portd.yaml", fastHarbour))
	if !assert.Nil(t, err, "wrong getConfiguration") {
		return
	}
	p, err := c.parameters()
	if !assert.Nil(t, err, "wrong parameters") {
		return
	}

	metrics, err := newTelemetry(c.Telemetry.File, p.telemetryInterval)
	if !assert.Nil(t, err, "wrong newTelemetry") {
		return
	}

	h, err := newHarbour(c, p, metrics.MeterProvider())
	if !assert.Nil(t, err, "wrong newHarbour") {
		return
	}

	initial := h.containers()
	assert.Equal(t, 45, initial, "wrong initial containers")
	assert.Equal(t, 3, len(h.ships), "wrong fleet")
	assert.Equal(t, 4, len(h.processes()), "wrong process count")

	processes := background.Start(h.processes(), nil)
	time.Sleep(500 * time.Millisecond)
	processes.Stop()

	assert.Equal(t, initial, h.containers(), "containers created or lost")

	status := h.port.Status()
	assert.Equal(t, 0, len(status.Assignments), "berth held after shutdown")
	assert.Equal(t, 0, len(status.Waiting), "ship waiting after shutdown")
	assert.Equal(t, 2, status.Free, "wrong free berths")

	total := h.memory.Total()
	assert.True(t, total.Berthed > 0, "no ship berthed")
	visits := h.ledger.Count()
	assert.True(t, visits > 0, "no visit journalled")
	assert.True(t, int64(visits) <= total.Berthed, "more visits than berthings")

	h.summary()
	ledgerDirectory := c.Ledger.Directory
	h.Close()
	h.Close()

	assert.Nil(t, metrics.Shutdown(), "wrong telemetry shutdown")
	_, err = os.Stat(c.Telemetry.File)
	assert.Nil(t, err, "no telemetry file")

	l, err := ledger.Open(ledgerDirectory)
	if assert.Nil(t, err, "wrong ledger.Open") {
		assert.Equal(t, visits, l.Count(), "wrong reopened count")
		l.Close()
	}
}

func TestPreloaded(t *testing.T) {
	sequence := &warehouse.Sequence{}

	w, err := preloaded("hold", 10, 4, sequence)
	assert.Nil(t, err, "wrong preloaded")
	assert.Equal(t, 4, w.Size(), "wrong size")

	w, err = preloaded("hold", 10, 0, sequence)
	assert.Nil(t, err, "wrong empty preloaded")
	assert.Equal(t, 0, w.Size(), "wrong empty size")

	_, err = preloaded("hold", 3, 4, sequence)
	assert.True(t, errors.Is(err, fault.ErrInvalidStock), "wrong overfull error: %v", err)

	_, err = preloaded("hold", -1, 0, sequence)
	assert.True(t, errors.Is(err, fault.ErrInvalidCapacity), "wrong capacity error: %v", err)
}

func TestTelemetryDisabled(t *testing.T) {
	metrics, err := newTelemetry("", time.Second)
	assert.Nil(t, err, "wrong newTelemetry")
	assert.NotNil(t, metrics.MeterProvider(), "no meter provider")
	assert.Nil(t, metrics.Shutdown(), "wrong shutdown")
}
