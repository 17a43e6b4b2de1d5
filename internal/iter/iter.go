// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"context"

	"gopkg.microglot.org/fnc.go/internal/idl"
	"gopkg.microglot.org/fnc.go/internal/optional"
)

// NewSlice iterates over the values of vs in order.
func NewSlice[T any](vs []T) idl.Iterator[T] {
	return &sliceIterator[T]{values: vs}
}

type sliceIterator[T any] struct {
	values []T
	next   int
}

func (self *sliceIterator[T]) Next(ctx context.Context) optional.Optional[T] {
	if self.next >= len(self.values) {
		return optional.None[T]()
	}
	v := self.values[self.next]
	self.next = self.next + 1
	return optional.Some(v)
}

func (self *sliceIterator[T]) Close(ctx context.Context) error {
	return nil
}

// Collect drains an iterator into a slice and closes it.
func Collect[T any](ctx context.Context, it idl.Iterator[T]) ([]T, error) {
	var result []T
	for v := it.Next(ctx); v.IsPresent(); v = it.Next(ctx) {
		result = append(result, v.Value())
	}
	if err := it.Close(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// NewIteratorFilter skips every value that f does not keep.
func NewIteratorFilter[T any](it idl.Iterator[T], f idl.Filter[T]) idl.Iterator[T] {
	return &filterIterator[T]{
		source: it,
		keep:   f,
	}
}

type filterIterator[T any] struct {
	source idl.Iterator[T]
	keep   idl.Filter[T]
}

func (self *filterIterator[T]) Next(ctx context.Context) optional.Optional[T] {
	v := self.source.Next(ctx)
	for v.IsPresent() && !self.keep.Keep(ctx, v.Value()) {
		v = self.source.Next(ctx)
	}
	return v
}

func (self *filterIterator[T]) Close(ctx context.Context) error {
	return self.source.Close(ctx)
}

// NewLookahead buffers n values of it so they can be inspected before they
// are consumed. Lookahead(ctx, 0) is the value most recently returned by Next
// and is empty until Next is first called.
func NewLookahead[T any](it idl.Iterator[T], n uint8) idl.Lookahead[T] {
	return &ring[T]{
		source: it,
		depth:  int(n),
	}
}

// ring keeps the current value and the next depth values in a circular
// buffer. head is the slot of the current value.
type ring[T any] struct {
	source idl.Iterator[T]
	depth  int
	slots  []optional.Optional[T]
	head   int
}

func (self *ring[T]) fill(ctx context.Context) {
	if self.slots != nil {
		return
	}
	self.slots = make([]optional.Optional[T], self.depth+1)
	for x := 1; x <= self.depth; x = x + 1 {
		self.slots[x] = self.source.Next(ctx)
	}
}

func (self *ring[T]) slot(offset int) int {
	return (self.head + offset) % len(self.slots)
}

func (self *ring[T]) Next(ctx context.Context) optional.Optional[T] {
	self.fill(ctx)
	self.head = self.slot(1)
	self.slots[self.slot(self.depth)] = self.source.Next(ctx)
	return self.slots[self.head]
}

func (self *ring[T]) Lookahead(ctx context.Context, n uint8) optional.Optional[T] {
	if int(n) > self.depth {
		return optional.None[T]()
	}
	self.fill(ctx)
	return self.slots[self.slot(int(n))]
}

func (self *ring[T]) Close(ctx context.Context) error {
	return self.source.Close(ctx)
}

// FilterFunc adapts a plain function to idl.Filter.
type FilterFunc[T any] func(ctx context.Context, val T) bool

func (f FilterFunc[T]) Keep(ctx context.Context, val T) bool {
	return f(ctx, val)
}
