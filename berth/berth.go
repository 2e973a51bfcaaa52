// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package berth - a docking place that moves containers between the
// port warehouse and a ship
//
// Locks are always taken port first, ship second, each with a bounded
// wait.  A transfer either moves the whole batch or leaves both
// warehouses untouched.
package berth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/portd/warehouse"
)

// Direction - which way containers flow
type Direction int

// transfer directions
const (
	ToPort   Direction = iota // ship unloads into the port
	FromPort                  // ship loads from the port
)

func (d Direction) String() string {
	switch d {
	case ToPort:
		return "to-port"
	case FromPort:
		return "from-port"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Berth - one of the port's docking places
type Berth struct {
	sync.Mutex // one transfer at a time

	id          int
	port        *warehouse.Warehouse
	lockTimeout time.Duration
	log         *logger.L
}

// New - create a berth attached to the port warehouse
func New(id int, port *warehouse.Warehouse, lockTimeout time.Duration) *Berth {
	return &Berth{
		id:          id,
		port:        port,
		lockTimeout: lockTimeout,
		log:         logger.New(fmt.Sprintf("berth-%d", id)),
	}
}

// ID - berth number
func (b *Berth) ID() int {
	return b.id
}

func (b *Berth) String() string {
	return fmt.Sprintf("berth-%d", b.id)
}

// Deposit - move count containers from the ship into the port
func (b *Berth) Deposit(ctx context.Context, ship *warehouse.Warehouse, count int) bool {
	return b.Transfer(ctx, ToPort, ship, count)
}

// Withdraw - move count containers from the port onto the ship
func (b *Berth) Withdraw(ctx context.Context, ship *warehouse.Warehouse, count int) bool {
	return b.Transfer(ctx, FromPort, ship, count)
}

// Transfer - move exactly count containers in the given direction,
// or nothing at all
func (b *Berth) Transfer(ctx context.Context, direction Direction, ship *warehouse.Warehouse, count int) bool {
	if count < 0 || nil == ship || ship == b.port {
		b.log.Warnf("rejected transfer: direction: %s  count: %d", direction, count)
		return false
	}
	if direction != ToPort && direction != FromPort {
		b.log.Warnf("rejected transfer: %s", direction)
		return false
	}
	if 0 == count {
		return true
	}

	b.Lock()
	defer b.Unlock()

	if !b.port.Lock(ctx, b.lockTimeout) {
		b.log.Warnf("%s: port lock timed out", ship.Name())
		return false
	}
	defer b.port.Unlock()

	// check the port side before waiting on the ship
	if ToPort == direction && count > b.port.FreeLocked() {
		b.log.Debugf("%s: port has space for %d, wanted %d", ship.Name(), b.port.FreeLocked(), count)
		return false
	}
	if FromPort == direction && count > b.port.SizeLocked() {
		b.log.Debugf("%s: port holds %d, wanted %d", ship.Name(), b.port.SizeLocked(), count)
		return false
	}

	if !ship.Lock(ctx, b.lockTimeout) {
		b.log.Warnf("%s: ship lock timed out", ship.Name())
		return false
	}
	defer ship.Unlock()

	from, to := ship, b.port
	if FromPort == direction {
		from, to = b.port, ship
	}

	if count > from.SizeLocked() || count > to.FreeLocked() {
		b.log.Debugf("%s: cannot move %d %s  ship size: %d  free: %d", ship.Name(), count, direction, ship.SizeLocked(), ship.FreeLocked())
		return false
	}

	batch, ok := from.RemoveLocked(count)
	if !ok {
		logger.Panicf("%s: remove of %d failed after check", b, count)
	}
	if !to.AddLocked(batch) {
		logger.Panicf("%s: add of %d failed after check", b, count)
	}

	b.log.Tracef("%s: moved %d %s  port: %d/%d", ship.Name(), count, direction, b.port.SizeLocked(), b.port.Capacity())
	return true
}
