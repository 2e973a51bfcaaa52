// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package port_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/bitmark-inc/portd/port"
	"github.com/bitmark-inc/portd/warehouse"
)

// sum of an integer counter's data points, optionally filtered by
// the "result" attribute
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string, result string) int64 {
	var rm metricdata.ResourceMetrics
	assert.Nil(t, reader.Collect(context.Background(), &rm))

	total := int64(0)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is not an integer sum", name)
			}
			for _, dp := range sum.DataPoints {
				if "" != result {
					v, ok := dp.Attributes.Value(attribute.Key("result"))
					if !ok || v.AsString() != result {
						continue
					}
				}
				total += dp.Value
			}
		}
	}
	return total
}

func TestInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	store, _ := warehouse.New("port", 10)
	p, err := port.New(store, 2, lockTimeout, port.WithMeterProvider(provider))
	assert.Nil(t, err)

	assert.Equal(t, int64(2), counterValue(t, reader, "port.berths", ""))

	ctx := context.Background()
	for _, id := range []string{"one", "two"} {
		ok, _ := p.Acquire(ctx, id, time.Second)
		assert.True(t, ok)
	}
	ok, _ := p.Acquire(ctx, "three", 5*time.Millisecond)
	assert.False(t, ok)
	_, err = p.Acquire(ctx, "one", 0)
	assert.NotNil(t, err)

	assert.Equal(t, int64(2), counterValue(t, reader, "port.acquire", "granted"))
	assert.Equal(t, int64(1), counterValue(t, reader, "port.acquire", "timeout"))
	assert.Equal(t, int64(1), counterValue(t, reader, "port.acquire", "rejected"))
	assert.Equal(t, int64(2), counterValue(t, reader, "port.berths.in_use", ""))

	assert.Nil(t, p.Release("one"))
	assert.Equal(t, int64(1), counterValue(t, reader, "port.berths.in_use", ""))
	assert.Equal(t, int64(1), counterValue(t, reader, "port.release", ""))
}
