// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package port

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/bitmark-inc/portd/port"

// acquire outcomes
const (
	resultGranted   = "granted"
	resultTimeout   = "timeout"
	resultCancelled = "cancelled"
	resultRejected  = "rejected"
)

type instruments struct {
	acquires metric.Int64Counter
	releases metric.Int64Counter
	wait     metric.Float64Histogram
	inUse    metric.Int64UpDownCounter
	berths   metric.Int64UpDownCounter
}

func newInstruments(provider metric.MeterProvider) (*instruments, error) {
	if nil == provider {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(instrumentationName)

	acquires, err := meter.Int64Counter("port.acquire",
		metric.WithDescription("Berth acquire attempts by outcome"),
		metric.WithUnit("{acquire}"))
	if err != nil {
		return nil, err
	}

	releases, err := meter.Int64Counter("port.release",
		metric.WithDescription("Berths released by ships"),
		metric.WithUnit("{release}"))
	if err != nil {
		return nil, err
	}

	wait, err := meter.Float64Histogram("port.acquire.wait",
		metric.WithDescription("Time spent waiting for a berth"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30))
	if err != nil {
		return nil, err
	}

	inUse, err := meter.Int64UpDownCounter("port.berths.in_use",
		metric.WithDescription("Berths currently assigned to a ship"),
		metric.WithUnit("{berth}"))
	if err != nil {
		return nil, err
	}

	berths, err := meter.Int64UpDownCounter("port.berths",
		metric.WithDescription("Total berths in the port"),
		metric.WithUnit("{berth}"))
	if err != nil {
		return nil, err
	}

	return &instruments{
		acquires: acquires,
		releases: releases,
		wait:     wait,
		inUse:    inUse,
		berths:   berths,
	}, nil
}

func (i *instruments) acquired(result string, start time.Time, immediate bool) {
	ctx := context.Background()
	i.acquires.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	i.wait.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("result", result)))
	if immediate {
		i.inUse.Add(ctx, 1)
	}
}

func (i *instruments) released(handedOff bool) {
	ctx := context.Background()
	i.releases.Add(ctx, 1, metric.WithAttributes(attribute.Bool("handoff", handedOff)))
	if !handedOff {
		i.inUse.Add(ctx, -1)
	}
}
