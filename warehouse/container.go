// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package warehouse

import (
	"fmt"

	"github.com/bitmark-inc/portd/counter"
)

// Container - an indivisible unit of cargo
type Container struct {
	ID uint64
}

func (c Container) String() string {
	return fmt.Sprintf("container-%d", c.ID)
}

// Sequence - hands out containers with unique identifiers
type Sequence struct {
	last counter.Counter
}

// Batch - create n new containers
func (s *Sequence) Batch(n int) []Container {
	if n <= 0 {
		return []Container{}
	}
	first := s.last.Reserve(uint64(n))
	batch := make([]Container, n)
	for i := range batch {
		batch[i].ID = first + uint64(i)
	}
	return batch
}
