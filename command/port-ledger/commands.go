// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/portd/ledger"
)

// ShipSummary - totals for one ship
type ShipSummary struct {
	Ship       string        `json:"ship"`
	Visits     int           `json:"visits"`
	Refused    int           `json:"refused"`
	Unloaded   int           `json:"unloaded"`
	Loaded     int           `json:"loaded"`
	Violations int           `json:"violations"`
	Berthed    time.Duration `json:"berthed"`
}

func getLedger(c *cli.Context) (*ledger.Ledger, error) {
	l, ok := c.App.Metadata["ledger"].(*ledger.Ledger)
	if !ok {
		return nil, fmt.Errorf("ledger is not open")
	}
	return l, nil
}

func runList(c *cli.Context) error {
	l, err := getLedger(c)
	if nil != err {
		return err
	}

	limit := c.Int("count")
	if limit < 0 {
		return fmt.Errorf("invalid count: %d", limit)
	}

	visits := make([]ledger.Visit, 0)
	err = l.Visits(func(v ledger.Visit) bool {
		visits = append(visits, v)
		return 0 == limit || len(visits) < limit
	})
	if nil != err {
		return err
	}
	return output(c, visits)
}

func runShip(c *cli.Context) error {
	name := c.Args().Get(0)
	if "" == name {
		return fmt.Errorf("missing ship name")
	}

	l, err := getLedger(c)
	if nil != err {
		return err
	}

	visits := make([]ledger.Visit, 0)
	err = l.ShipVisits(name, func(v ledger.Visit) bool {
		visits = append(visits, v)
		return true
	})
	if nil != err {
		return err
	}
	return output(c, visits)
}

func runVisit(c *cli.Context) error {
	n, err := strconv.ParseUint(c.Args().Get(0), 10, 64)
	if nil != err {
		return fmt.Errorf("invalid sequence: %s", err)
	}

	l, err := getLedger(c)
	if nil != err {
		return err
	}

	v, err := l.Get(n)
	if nil != err {
		return err
	}
	return output(c, []ledger.Visit{v})
}

func runSummary(c *cli.Context) error {
	l, err := getLedger(c)
	if nil != err {
		return err
	}

	summaries, err := summarise(l)
	if nil != err {
		return err
	}

	if c.GlobalBool("json") {
		return printJson(c.App.Writer, summaries)
	}
	for _, s := range summaries {
		fmt.Fprintf(c.App.Writer, "%-12s visits: %4d  refused: %3d  unloaded: %5d  loaded: %5d  violations: %3d  berthed: %s\n",
			s.Ship, s.Visits, s.Refused, s.Unloaded, s.Loaded, s.Violations, s.Berthed.Round(time.Millisecond))
	}
	return nil
}

// per ship totals sorted by name
func summarise(l *ledger.Ledger) ([]ShipSummary, error) {
	ships := make(map[string]*ShipSummary)

	err := l.Visits(func(v ledger.Visit) bool {
		s, ok := ships[v.Ship]
		if !ok {
			s = &ShipSummary{Ship: v.Ship}
			ships[v.Ship] = s
		}
		s.Visits += 1
		s.Berthed += v.Departed.Sub(v.Arrived)
		if v.Violation {
			s.Violations += 1
		}
		switch {
		case !v.Moved:
			s.Refused += 1
		case "to-port" == v.Direction:
			s.Unloaded += v.Requested
		case "from-port" == v.Direction:
			s.Loaded += v.Requested
		}
		return true
	})
	if nil != err {
		return nil, err
	}

	summaries := make([]ShipSummary, 0, len(ships))
	for _, s := range ships {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Ship < summaries[j].Ship
	})
	return summaries, nil
}

func output(c *cli.Context, visits []ledger.Visit) error {
	if c.GlobalBool("json") {
		return printJson(c.App.Writer, visits)
	}
	for _, v := range visits {
		printVisit(c.App.Writer, v)
	}
	return nil
}

func printVisit(w io.Writer, v ledger.Visit) {
	result := "moved"
	if !v.Moved {
		result = "refused"
	}
	flag := ""
	if v.Violation {
		flag = "  VIOLATION"
	}
	fmt.Fprintf(w, "%6d  %s  %-12s berth-%d  %-9s %3d %-7s elapsed: %s  budget: %s%s\n",
		v.Sequence, v.Arrived.Format("15:04:05.000"), v.Ship, v.Berth, v.Direction, v.Requested, result,
		v.Elapsed.Round(time.Millisecond), v.Budget, flag)
}
