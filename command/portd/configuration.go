// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/portd/configuration"
	"github.com/bitmark-inc/portd/fault"
	"github.com/bitmark-inc/portd/ship"
	"github.com/bitmark-inc/portd/stats"
	"github.com/bitmark-inc/portd/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultBerths         = 3
	defaultPortCapacity   = 90
	defaultPortStock      = 50
	defaultAcquireTimeout = "3s"
	defaultLockTimeout    = "30s"

	defaultHarbourBurst  = 1
	defaultStatusPeriod  = "5s"
	defaultLedgerDir     = "ledger"
	defaultLedgerRecent  = "10m"
	defaultTelemetryTick = "5s"

	defaultLogDirectory = "log"
	defaultLogFile      = "portd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		"main":            "info",
		logger.DefaultTag: "critical",
	}

	// the fleet used when the configuration names no ships
	defaultShips = []ship.Configuration{
		{Name: "ship-1", Capacity: 40, Stock: 15, Priority: 4},
		{Name: "ship-2", Capacity: 70, Stock: 25, Priority: 6},
		{Name: "ship-3", Capacity: 60, Stock: 40, Priority: 5},
		{Name: "ship-4", Capacity: 80, Stock: 30, Priority: 7},
		{Name: "ship-5", Capacity: 50, Stock: 5, Priority: 3},
	}
)

type PortType struct {
	Berths         int    `gluamapper:"berths" json:"berths" yaml:"berths"`
	Capacity       int    `gluamapper:"capacity" json:"capacity" yaml:"capacity"`
	Stock          int    `gluamapper:"stock" json:"stock" yaml:"stock"`
	AcquireTimeout string `gluamapper:"acquire_timeout" json:"acquire_timeout" yaml:"acquire_timeout"`
	LockTimeout    string `gluamapper:"lock_timeout" json:"lock_timeout" yaml:"lock_timeout"`
}

// HarbourType - pilot service: entries per second, 0 = unlimited
type HarbourType struct {
	Rate  float64 `gluamapper:"rate" json:"rate" yaml:"rate"`
	Burst int     `gluamapper:"burst" json:"burst" yaml:"burst"`
}

type StatusType struct {
	Interval string `gluamapper:"interval" json:"interval" yaml:"interval"`
}

type LedgerType struct {
	Directory string `gluamapper:"directory" json:"directory" yaml:"directory"`
	Recent    string `gluamapper:"recent" json:"recent" yaml:"recent"`
}

type StatsType struct {
	Redis stats.RedisConfiguration `gluamapper:"redis" json:"redis" yaml:"redis"`
}

type TelemetryType struct {
	File     string `gluamapper:"file" json:"file" yaml:"file"`
	Interval string `gluamapper:"interval" json:"interval" yaml:"interval"`
}

type Configuration struct {
	DataDirectory string                   `gluamapper:"data_directory" json:"data_directory" yaml:"data_directory"`
	PidFile       string                   `gluamapper:"pidfile" json:"pidfile" yaml:"pidfile"`
	RunTime       string                   `gluamapper:"run_time" json:"run_time" yaml:"run_time"`
	Port          PortType                 `gluamapper:"port" json:"port" yaml:"port"`
	Ships         []ship.Configuration     `gluamapper:"ships" json:"ships" yaml:"ships"`
	Timing        ship.TimingConfiguration `gluamapper:"timing" json:"timing" yaml:"timing"`
	Harbour       HarbourType              `gluamapper:"harbour" json:"harbour" yaml:"harbour"`
	Status        StatusType               `gluamapper:"status" json:"status" yaml:"status"`
	Ledger        LedgerType               `gluamapper:"ledger" json:"ledger" yaml:"ledger"`
	Stats         StatsType                `gluamapper:"stats" json:"stats" yaml:"stats"`
	Telemetry     TelemetryType            `gluamapper:"telemetry" json:"telemetry" yaml:"telemetry"`
	Logging       logger.Configuration     `gluamapper:"logging" json:"logging" yaml:"logging"`
}

// parsed durations and other derived values
type parameters struct {
	acquireTimeout    time.Duration
	lockTimeout       time.Duration
	statusInterval    time.Duration
	runTime           time.Duration
	ledgerRecent      time.Duration
	telemetryInterval time.Duration
	timing            ship.Timing
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	levels := make(LoglevelMap, len(defaultLogLevels))
	for tag, level := range defaultLogLevels {
		levels[tag] = level
	}

	options := &Configuration{
		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Port: PortType{
			Berths:         defaultBerths,
			Capacity:       defaultPortCapacity,
			Stock:          defaultPortStock,
			AcquireTimeout: defaultAcquireTimeout,
			LockTimeout:    defaultLockTimeout,
		},

		Harbour: HarbourType{
			Burst: defaultHarbourBurst,
		},

		Status: StatusType{
			Interval: defaultStatusPeriod,
		},

		Ledger: LedgerType{
			Directory: defaultLedgerDir,
			Recent:    defaultLedgerRecent,
		},

		Telemetry: TelemetryType{
			Interval: defaultTelemetryTick,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    levels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	if 0 == len(options.Ships) {
		options.Ships = make([]ship.Configuration, len(defaultShips))
		copy(options.Ships, defaultShips)
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
		&options.Ledger.Directory,
		&options.Telemetry.File,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// the log file must be a plain name inside the log directory
	switch filepath.Dir(options.Logging.File) {
	case "", ".":
	default:
		return nil, fmt.Errorf("Files: %q is not plain name", options.Logging.File)
	}

	options.Logging.Directory, err = util.EnsureDirectory(options.DataDirectory, options.Logging.Directory)
	if nil != err {
		return nil, err
	}

	if err := options.validate(); nil != err {
		return nil, err
	}

	// done
	return options, nil
}

// check the port and fleet are consistent
func (c *Configuration) validate() error {
	if c.Port.Berths < 1 {
		return fault.ErrInvalidBerthCount
	}
	if c.Port.Capacity < 0 {
		return fault.ErrInvalidCapacity
	}
	if c.Port.Stock < 0 || c.Port.Stock > c.Port.Capacity {
		return fault.ErrInvalidStock
	}
	if c.Harbour.Rate < 0 || c.Harbour.Burst < 0 {
		return fault.ErrInvalidDuration
	}

	names := make(map[string]struct{}, len(c.Ships))
	for _, s := range c.Ships {
		if "" == s.Name {
			return fault.ErrInvalidShipName
		}
		if _, ok := names[s.Name]; ok {
			return fmt.Errorf("%w: %q", fault.ErrDuplicateShipName, s.Name)
		}
		names[s.Name] = struct{}{}

		if s.Capacity < 0 {
			return fmt.Errorf("%s: %w", s.Name, fault.ErrInvalidCapacity)
		}
		if s.Stock < 0 || s.Stock > s.Capacity {
			return fmt.Errorf("%s: %w", s.Name, fault.ErrInvalidStock)
		}
	}

	_, err := c.parameters()
	return err
}

// convert the textual durations
func (c *Configuration) parameters() (*parameters, error) {
	p := &parameters{}

	items := []struct {
		name     string
		text     string
		target   *time.Duration
		optional bool
	}{
		{"port.acquire_timeout", c.Port.AcquireTimeout, &p.acquireTimeout, true},
		{"port.lock_timeout", c.Port.LockTimeout, &p.lockTimeout, false},
		{"status.interval", c.Status.Interval, &p.statusInterval, false},
		{"run_time", c.RunTime, &p.runTime, true},
		{"ledger.recent", c.Ledger.Recent, &p.ledgerRecent, true},
		{"telemetry.interval", c.Telemetry.Interval, &p.telemetryInterval, false},
	}
	for _, item := range items {
		if "" == item.text && item.optional {
			continue
		}
		d, err := time.ParseDuration(item.text)
		if nil != err {
			return nil, fmt.Errorf("%s: %w", item.name, err)
		}
		if d < 0 || (!item.optional && 0 == d) {
			return nil, fmt.Errorf("%s: %w", item.name, fault.ErrInvalidDuration)
		}
		*item.target = d
	}

	timing, err := c.Timing.Timing(p.acquireTimeout)
	if nil != err {
		return nil, fmt.Errorf("timing: %w", err)
	}
	p.timing = timing

	return p, nil
}
