package intervallist

import (
	"slices"

	"github.com/henderiw/idxrange/pkg/interval"
)

// replace swaps the interval at idx for pieces, which may be empty.
func (r *List[T]) replace(idx int, pieces ...interval.Interval[T]) {
	r.list = slices.Replace(r.list, idx, idx+1, pieces...)
}

// mergeable returns whether left and right touch and carry equal data.
func (r *List[T]) mergeable(left, right interval.Interval[T]) bool {
	return left.Touches(right) && r.equals(right.Data(), left.Data())
}

// tryMerge merges the interval at idx with its left and then its right
// neighbour when they touch and carry equal data. Neighbours further away
// never need merging since the list held no mergeable pair before.
func (r *List[T]) tryMerge(idx int) {
	if idx < 0 || idx >= len(r.list) {
		return
	}
	current := r.list[idx]

	if idx > 0 {
		left := r.list[idx-1]
		if r.mergeable(left, current) {
			current = interval.MustNew(left.From(), current.To(), current.Data())
			r.list = slices.Replace(r.list, idx-1, idx+1, current)
			idx--
			r.log.V(1).Info("merged left", "range", current.String())
		}
	}

	if idx+1 < len(r.list) {
		right := r.list[idx+1]
		if r.mergeable(current, right) {
			current = interval.MustNew(current.From(), right.To(), current.Data())
			r.list = slices.Replace(r.list, idx, idx+2, current)
			r.log.V(1).Info("merged right", "range", current.String())
		}
	}
}
