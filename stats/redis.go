// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "portd:stats"
	defaultRedisTTL    = 24 * time.Hour
)

// RedisConfiguration - where to send counters
type RedisConfiguration struct {
	Address  string `gluamapper:"address" json:"address" yaml:"address"`
	Password string `gluamapper:"password" json:"password" yaml:"password"`
	DB       int    `gluamapper:"db" json:"db" yaml:"db"`
	Prefix   string `gluamapper:"prefix" json:"prefix" yaml:"prefix"`
	TTL      string `gluamapper:"ttl" json:"ttl" yaml:"ttl"`
}

// RedisRecorder - counters kept in redis hashes
//
//   <prefix>:total               kind -> count
//   <prefix>:minute:<YYYYmmddHHMM> kind -> count, expires after ttl
//   <prefix>:ship:<name>         kind -> count
//
// moves also add "<kind>:containers"
type RedisRecorder struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRecorder - connect a recorder; nothing is sent until the
// first event
func NewRedisRecorder(configuration *RedisConfiguration) (*RedisRecorder, error) {
	ttl := defaultRedisTTL
	if "" != configuration.TTL {
		d, err := time.ParseDuration(configuration.TTL)
		if nil != err {
			return nil, err
		}
		ttl = d
	}

	prefix := strings.Trim(configuration.Prefix, ":")
	if "" == prefix {
		prefix = defaultRedisPrefix
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     configuration.Address,
		Password: configuration.Password,
		DB:       configuration.DB,
	})
	return &RedisRecorder{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

// Record - pipeline the increments for one event
func (r *RedisRecorder) Record(ctx context.Context, ev Event) error {
	if nil == r || nil == r.rdb {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := string(ev.Kind)
	containers := field + ":containers"

	pipe := r.rdb.Pipeline()

	incr := func(key string) {
		pipe.HIncrBy(ctx, key, field, 1)
		if ev.Count > 0 {
			pipe.HIncrBy(ctx, key, containers, int64(ev.Count))
		}
	}

	incr(r.prefix + ":total")

	bucketKey := fmt.Sprintf("%s:minute:%s", r.prefix, at.UTC().Format("200601021504"))
	incr(bucketKey)
	if r.ttl > 0 {
		pipe.Expire(ctx, bucketKey, r.ttl)
	}

	if ship := strings.TrimSpace(ev.Ship); "" != ship {
		incr(r.prefix + ":ship:" + ship)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Close - drop the connection
func (r *RedisRecorder) Close() error {
	if nil == r || nil == r.rdb {
		return nil
	}
	return r.rdb.Close()
}
