package idxtable

import "github.com/henderiw/idxrange/pkg/interval"

// Iterator walks a snapshot of the ranges of a table in ascending order.
type Iterator[T1 any] struct {
	current int
	entries []interval.Interval[T1]
}

func (r *Iterator[T1]) Value() interval.Interval[T1] {
	return r.entries[r.current]
}

func (r *Iterator[T1]) From() int64 {
	return r.entries[r.current].From()
}

func (r *Iterator[T1]) To() int64 {
	return r.entries[r.current].To()
}

func (r *Iterator[T1]) Data() T1 {
	return r.entries[r.current].Data()
}

func (r *Iterator[T1]) Next() bool {
	r.current++
	return r.current < len(r.entries)
}

// IsConsecutive returns whether the current range starts right after the
// previous one ends.
func (r *Iterator[T1]) IsConsecutive() bool {
	if r.current < 1 {
		return false
	}
	return r.entries[r.current-1].To() == r.entries[r.current].From()-1
}
