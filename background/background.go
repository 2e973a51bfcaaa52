// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - run a set of long lived goroutines that can
// all be shut down together
package background

import (
	"sync"
)

// Process - a long running task; Run must return soon after
// shutdown is closed
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of processes to start
type Processes []Process

// T - handle for a started set of processes
type T struct {
	sync.Mutex
	shutdown []chan struct{}
	finished sync.WaitGroup
	done     chan struct{}
	stopped  bool
}

// Start - start up a set of background processes
func Start(processes Processes, args interface{}) *T {

	register := &T{
		shutdown: make([]chan struct{}, len(processes)),
		done:     make(chan struct{}),
	}

	for i, p := range processes {
		shutdown := make(chan struct{})
		register.shutdown[i] = shutdown
		register.finished.Add(1)
		go func(p Process) {
			defer register.finished.Done()
			p.Run(args, shutdown)
		}(p)
	}

	go func() {
		register.finished.Wait()
		close(register.done)
	}()

	return register
}

// Stop - signal every process to shut down and wait for all of them
// to return, a second call does nothing
func (t *T) Stop() {
	t.Lock()
	if t.stopped {
		t.Unlock()
		return
	}
	t.stopped = true
	for _, shutdown := range t.shutdown {
		close(shutdown)
	}
	t.Unlock()

	t.finished.Wait()
}

// Done - returns a channel that is closed when every process has
// returned, whether or not Stop was called
func (t *T) Done() <-chan struct{} {
	return t.done
}
