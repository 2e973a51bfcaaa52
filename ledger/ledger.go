// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - journal of ship visits for one run of the port
//
// Records are kept in LevelDB under two prefixes:
//
//   'V' + sequence         -> JSON visit
//   'S' + ship + 0x00 + sequence -> empty (per ship index)
//
// the sequence is big-endian so iteration is chronological.  The
// most recent visit of each ship is also held in an expiring cache.
package ledger

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/portd/fault"
)

const (
	visitPrefix = 'V'
	shipPrefix  = 'S'

	defaultRecent = 10 * time.Minute
)

// Visit - one berth visit by one ship
type Visit struct {
	ID        string        `json:"id"`
	Sequence  uint64        `json:"sequence"`
	Ship      string        `json:"ship"`
	Berth     int           `json:"berth"`
	Direction string        `json:"direction"`
	Requested int           `json:"requested"`
	Moved     bool          `json:"moved"`
	Budget    time.Duration `json:"budget"`
	Elapsed   time.Duration `json:"elapsed"`
	Violation bool          `json:"violation"`
	Arrived   time.Time     `json:"arrived"`
	Departed  time.Time     `json:"departed"`
}

// Ledger - handle to an open journal
type Ledger struct {
	sync.Mutex
	db       *leveldb.DB
	sequence uint64
	recent   *cache.Cache
	readOnly bool
}

// Create - start an empty journal, discarding any previous run
func Create(directory string, recent time.Duration) (*Ledger, error) {
	if err := os.RemoveAll(directory); nil != err {
		return nil, err
	}
	db, err := leveldb.OpenFile(directory, nil)
	if nil != err {
		return nil, err
	}
	if recent <= 0 {
		recent = defaultRecent
	}
	return &Ledger{
		db:     db,
		recent: cache.New(recent, 2*recent),
	}, nil
}

// Open - read an existing journal
func Open(directory string) (*Ledger, error) {
	options := &ldb_opt.Options{
		ErrorIfMissing: true,
		ReadOnly:       true,
	}
	db, err := leveldb.OpenFile(directory, options)
	if nil != err {
		return nil, err
	}

	l := &Ledger{
		db:       db,
		recent:   cache.New(defaultRecent, 2*defaultRecent),
		readOnly: true,
	}

	iter := db.NewIterator(ldb_util.BytesPrefix([]byte{visitPrefix}), nil)
	if iter.Last() {
		l.sequence = binary.BigEndian.Uint64(iter.Key()[1:])
	}
	iter.Release()
	if err := iter.Error(); nil != err {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Close - flush and close the database
func (l *Ledger) Close() error {
	l.Lock()
	defer l.Unlock()
	if nil == l.db {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// Append - store a visit, assigning its id and sequence
func (l *Ledger) Append(v *Visit) error {
	l.Lock()
	defer l.Unlock()

	if nil == l.db {
		return fault.ErrLedgerClosed
	}
	if l.readOnly {
		return fault.ErrLedgerReadOnly
	}

	if "" == v.ID {
		v.ID = uuid.New().String()
	}
	v.Sequence = l.sequence + 1

	data, err := json.Marshal(v)
	if nil != err {
		return err
	}

	batch := new(leveldb.Batch)
	batch.Put(visitKey(v.Sequence), data)
	batch.Put(shipKey(v.Ship, v.Sequence), []byte{})
	if err := l.db.Write(batch, nil); nil != err {
		return err
	}

	l.sequence = v.Sequence
	l.recent.Set(v.Ship, *v, cache.DefaultExpiration)
	return nil
}

// Recent - the latest visit of a ship
func (l *Ledger) Recent(ship string) (Visit, bool) {
	if item, ok := l.recent.Get(ship); ok {
		return item.(Visit), true
	}

	l.Lock()
	defer l.Unlock()
	if nil == l.db {
		return Visit{}, false
	}

	iter := l.db.NewIterator(ldb_util.BytesPrefix(shipPrefixKey(ship)), nil)
	defer iter.Release()
	if !iter.Last() {
		return Visit{}, false
	}
	key := iter.Key()
	v, err := l.get(binary.BigEndian.Uint64(key[len(key)-8:]))
	if nil != err {
		return Visit{}, false
	}
	l.recent.Set(ship, v, cache.DefaultExpiration)
	return v, true
}

// Get - fetch a visit by sequence
func (l *Ledger) Get(sequence uint64) (Visit, error) {
	l.Lock()
	defer l.Unlock()
	if nil == l.db {
		return Visit{}, fault.ErrLedgerClosed
	}
	return l.get(sequence)
}

func (l *Ledger) get(sequence uint64) (Visit, error) {
	data, err := l.db.Get(visitKey(sequence), nil)
	if leveldb.ErrNotFound == err {
		return Visit{}, fault.ErrVisitNotFound
	}
	if nil != err {
		return Visit{}, err
	}
	var v Visit
	err = json.Unmarshal(data, &v)
	return v, err
}

// Count - number of visits stored
func (l *Ledger) Count() uint64 {
	l.Lock()
	defer l.Unlock()
	return l.sequence
}

// Visits - call fn for every visit in order until it returns false
func (l *Ledger) Visits(fn func(Visit) bool) error {
	l.Lock()
	defer l.Unlock()
	if nil == l.db {
		return fault.ErrLedgerClosed
	}

	iter := l.db.NewIterator(ldb_util.BytesPrefix([]byte{visitPrefix}), nil)
	defer iter.Release()
	for iter.Next() {
		var v Visit
		if err := json.Unmarshal(iter.Value(), &v); nil != err {
			return err
		}
		if !fn(v) {
			break
		}
	}
	return iter.Error()
}

// ShipVisits - call fn for each visit of one ship in order until it
// returns false
func (l *Ledger) ShipVisits(ship string, fn func(Visit) bool) error {
	l.Lock()
	defer l.Unlock()
	if nil == l.db {
		return fault.ErrLedgerClosed
	}

	iter := l.db.NewIterator(ldb_util.BytesPrefix(shipPrefixKey(ship)), nil)
	defer iter.Release()
	for iter.Next() {
		key := iter.Key()
		v, err := l.get(binary.BigEndian.Uint64(key[len(key)-8:]))
		if nil != err {
			return err
		}
		if !fn(v) {
			break
		}
	}
	return iter.Error()
}

func visitKey(sequence uint64) []byte {
	key := make([]byte, 9)
	key[0] = visitPrefix
	binary.BigEndian.PutUint64(key[1:], sequence)
	return key
}

func shipPrefixKey(ship string) []byte {
	key := make([]byte, 0, len(ship)+2)
	key = append(key, shipPrefix)
	key = append(key, ship...)
	return append(key, 0x00)
}

func shipKey(ship string, sequence uint64) []byte {
	key := shipPrefixKey(ship)
	n := len(key)
	key = append(key, make([]byte, 8)...)
	binary.BigEndian.PutUint64(key[n:], sequence)
	return key
}
