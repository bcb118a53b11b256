// Package idmap implements the ID Mapper (C3): assigning stable wire
// ids to every node, bus, and buffer the compiler emits, once per
// compile (spec.md §4.3).
package idmap

import (
	"sort"

	"github.com/scsess/scsess/internal/errors"
)

// freeRange is a contiguous run of free ids, [Start, Start+Length).
type freeRange struct {
	start, length int
}

// BlockAllocator is a first-fit free-list allocator over a contiguous
// integer id space (spec.md §4.3, §9). It supports allocate and free;
// a compile pass only ever allocates.
type BlockAllocator struct {
	heapMinimum int
	free        []freeRange
}

// NewBlockAllocator returns an allocator whose lowest allocatable id
// is heapMinimum.
func NewBlockAllocator(heapMinimum int) *BlockAllocator {
	return &BlockAllocator{
		heapMinimum: heapMinimum,
		free:        []freeRange{{start: heapMinimum, length: -1}}, // -1 == unbounded
	}
}

// Allocate reserves n contiguous ids and returns the first one.
func (a *BlockAllocator) Allocate(n int) (int, error) {
	if n <= 0 {
		return 0, errors.InvalidDuration("allocation size must be positive")
	}
	for i, r := range a.free {
		if r.length == -1 || r.length >= n {
			start := r.start
			if r.length == -1 {
				a.free[i] = freeRange{start: start + n, length: -1}
			} else if r.length == n {
				a.free = append(a.free[:i], a.free[i+1:]...)
			} else {
				a.free[i] = freeRange{start: start + n, length: r.length - n}
			}
			return start, nil
		}
	}
	return 0, errors.AllocatorExhausted("no free block large enough for the requested allocation")
}

// Free returns n ids starting at start to the free list, coalescing
// adjacent ranges.
func (a *BlockAllocator) Free(start, n int) {
	if n <= 0 {
		return
	}
	a.free = append(a.free, freeRange{start: start, length: n})
	sort.Slice(a.free, func(i, j int) bool { return a.free[i].start < a.free[j].start })

	merged := a.free[:0]
	for _, r := range a.free {
		if len(merged) > 0 {
			last := merged[len(merged)-1]
			if last.length != -1 && last.start+last.length == r.start {
				if r.length == -1 {
					merged[len(merged)-1].length = -1
				} else {
					merged[len(merged)-1].length = last.length + r.length
				}
				continue
			}
		}
		merged = append(merged, r)
	}
	a.free = merged
}
