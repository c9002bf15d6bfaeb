package intervallist

import (
	"math"
	"slices"

	"github.com/henderiw/idxrange/pkg/interval"
)

// Get returns the interval containing point.
func (r *List[T]) Get(point int64) (interval.Interval[T], bool) {
	idx, found := r.search(point)
	if !found {
		return interval.Interval[T]{}, false
	}
	return r.list[idx], true
}

// Overlapping returns a copy of the intervals sharing at least one id with
// [from, to].
func (r *List[T]) Overlapping(from, to int64) []interval.Interval[T] {
	indices := r.findOverlappingIndices(from, to)
	entries := make([]interval.Interval[T], 0, len(indices))
	for _, idx := range indices {
		entries = append(entries, r.list[idx])
	}
	return entries
}

// Gaps returns the sub-ranges of [from, to] not covered by any interval, in
// ascending order.
func (r *List[T]) Gaps(from, to int64) ([]interval.Interval[struct{}], error) {
	if err := interval.Validate(from, to); err != nil {
		return nil, err
	}
	free := newRemainder(from, to)
	for _, idx := range r.findOverlappingIndices(from, to) {
		free.subtract(r.list[idx].OverlapZone(from, to))
	}
	return free.spans(), nil
}

// Covered returns the total number of ids held by the list, saturating at
// math.MaxUint64.
func (r *List[T]) Covered() uint64 {
	var total uint64
	for _, iv := range r.list {
		size := iv.Size()
		if total > math.MaxUint64-size {
			return math.MaxUint64
		}
		total += size
	}
	return total
}

// Clone creates an identical copy of the list
// - Note: the payloads are not deep copied
func (r *List[T]) Clone() *List[T] {
	return &List[T]{
		list:   slices.Clone(r.list),
		equals: r.equals,
		log:    r.log,
	}
}
