// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/portd/ledger"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "port-ledger"
	app.Usage = "inspect the visit journal written by portd"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "ledger, l",
			Value: "ledger",
			Usage: " ledger `DIRECTORY`",
		},
		cli.BoolFlag{
			Name:  "json, j",
			Usage: " output JSON instead of text",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "list",
			Usage:     "list every visit in order",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "count, c",
					Value: 0,
					Usage: " stop after `COUNT` visits, 0 = all",
				},
			},
			Action: runList,
		},
		{
			Name:      "ship",
			Usage:     "list the visits of one ship",
			ArgsUsage: "NAME\n   (* = required)",
			Action:    runShip,
		},
		{
			Name:      "visit",
			Usage:     "show a single visit",
			ArgsUsage: "SEQUENCE\n   (* = required)",
			Action:    runVisit,
		},
		{
			Name:   "summary",
			Usage:  "per ship totals",
			Action: runSummary,
		},
		{
			Name:  "version",
			Usage: "display port-ledger version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// open the ledger
	app.Before = func(c *cli.Context) error {
		command := c.Args().Get(0)
		if "version" == command || "help" == command || "h" == command || "" == command {
			return nil
		}

		l, err := ledger.Open(c.GlobalString("ledger"))
		if nil != err {
			return err
		}
		c.App.Metadata["ledger"] = l
		return nil
	}

	app.After = func(c *cli.Context) error {
		l, ok := c.App.Metadata["ledger"].(*ledger.Ledger)
		if !ok {
			return nil
		}
		return l.Close()
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
