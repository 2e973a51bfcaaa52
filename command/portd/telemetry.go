// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const telemetryShutdownTimeout = 5 * time.Second

// telemetry - port instruments periodically written to a file
type telemetry struct {
	file     *os.File
	provider *sdkmetric.MeterProvider
}

// start the meter provider; a blank file name leaves the global
// (no-op) provider in place
func newTelemetry(fileName string, interval time.Duration) (*telemetry, error) {
	if "" == fileName {
		return &telemetry{}, nil
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if nil != err {
		return nil, err
	}

	exporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(file),
		stdoutmetric.WithPrettyPrint(),
	)
	if nil != err {
		file.Close()
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(interval),
		)),
	)
	otel.SetMeterProvider(provider)

	return &telemetry{
		file:     file,
		provider: provider,
	}, nil
}

// MeterProvider - provider for the port instruments
func (t *telemetry) MeterProvider() metric.MeterProvider {
	if nil == t.provider {
		return otel.GetMeterProvider()
	}
	return t.provider
}

// flush the last readings and close the file
func (t *telemetry) Shutdown() error {
	if nil == t.provider {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()

	err := t.provider.Shutdown(ctx)
	if e := t.file.Close(); nil == err {
		err = e
	}
	return err
}
