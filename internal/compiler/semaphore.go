// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import "context"

type semaphore struct {
	x chan bool
}

func newSemaphore(v int) *semaphore {
	return &semaphore{
		x: make(chan bool, v),
	}
}

// Lock blocks until a slot is free or the context is done.
func (self *semaphore) Lock(ctx context.Context) error {
	select {
	case self.x <- false:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (self *semaphore) Unlock() {
	<-self.x
}
