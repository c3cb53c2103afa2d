package grid

import (
	"slices"
	"sync"
)

// Allocator hands out local handle ids and recycles freed ones.
//
// Freed ids are reused lowest first. An Allocator may be shared by several
// grids and is safe for concurrent use.
type Allocator struct {
	mu   sync.Mutex
	next uint64
	free []uint64
}

// NewAllocator returns an allocator whose first id is 0.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate returns an id that is not currently in use.
func (a *Allocator) Allocate() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.free); n > 0 {
		id := a.free[0]
		a.free = a.free[1:]
		return id
	}
	id := a.next
	a.next++
	return id
}

// Free returns ids to the pool. Ids never allocated or already free are
// ignored.
func (a *Allocator) Free(ids ...uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, id := range ids {
		if id >= a.next {
			continue
		}
		if i, found := slices.BinarySearch(a.free, id); !found {
			a.free = slices.Insert(a.free, i, id)
		}
	}
}

// InUse returns the number of ids currently allocated.
func (a *Allocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.next) - len(a.free)
}
