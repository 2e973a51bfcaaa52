// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package counter - lock-free identifier allocation
package counter

import (
	"sync/atomic"
)

// Counter - last identifier handed out, zero means none yet
type Counter uint64

// Next - allocate one identifier
func (ic *Counter) Next() uint64 {
	return atomic.AddUint64((*uint64)(ic), 1)
}

// Reserve - allocate n consecutive identifiers and return the first;
// n == 0 allocates nothing and returns zero
func (ic *Counter) Reserve(n uint64) uint64 {
	if 0 == n {
		return 0
	}
	return atomic.AddUint64((*uint64)(ic), n) - n + 1
}

// Last - the most recently allocated identifier
func (ic *Counter) Last() uint64 {
	return atomic.LoadUint64((*uint64)(ic))
}
