// Package pool implements a fixed-capacity arena with a free list, used
// to back block arrays, mesh buffers, and collision records from a pool
// sized to the working set rather than the heap. No pack library
// specializes in slab/arena allocation, and sync.Pool does not fit:
// membership here must be keyed by slot index and stay put for the
// arena's lifetime, not left to GC timing.
package pool

import "fmt"

// Arena is a fixed-size set of T values, each either free or checked
// out to a slot index. It never grows past its initial capacity.
type Arena[T any] struct {
	items []T
	free  []int
	inUse []bool
}

// New allocates an Arena of the given capacity. newItem is called once
// per item here, up front, to construct every item; Acquire does not
// call it again.
func New[T any](capacity int, newItem func() T) *Arena[T] {
	a := &Arena[T]{
		items: make([]T, capacity),
		free:  make([]int, capacity),
		inUse: make([]bool, capacity),
	}
	for i := 0; i < capacity; i++ {
		a.items[i] = newItem()
		a.free[i] = capacity - 1 - i
	}
	return a
}

// Cap returns the arena's fixed capacity.
func (a *Arena[T]) Cap() int {
	return len(a.items)
}

// Acquire checks out a free slot and returns its index and item.
// Panics if the arena is exhausted: a caller must size the arena to
// POOL_SIZE so this never happens in steady state.
func (a *Arena[T]) Acquire() (int, *T) {
	if len(a.free) == 0 {
		panic(fmt.Sprintf("pool: arena of capacity %d exhausted", len(a.items)))
	}
	idx := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	a.inUse[idx] = true
	return idx, &a.items[idx]
}

// Release returns a checked-out item to the free list.
func (a *Arena[T]) Release(idx int) {
	if !a.inUse[idx] {
		panic(fmt.Sprintf("pool: release of idx %d which is not in use", idx))
	}
	a.inUse[idx] = false
	a.free = append(a.free, idx)
}

// At returns the item at idx regardless of checkout state, for direct
// slot-indexed access (the working set addresses chunks by slot index,
// not by acquire/release order).
func (a *Arena[T]) At(idx int) *T {
	return &a.items[idx]
}

// InUse reports whether idx is currently checked out.
func (a *Arena[T]) InUse(idx int) bool {
	return a.inUse[idx]
}
