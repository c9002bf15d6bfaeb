package intervallist

import (
	"slices"

	"github.com/henderiw/idxrange/pkg/interval"
)

// remainder tracks the parts of an incoming range that are not committed to
// the list yet. It is a sorted set of disjoint spans.
type remainder struct {
	list []interval.Interval[struct{}]
}

func newRemainder(from, to int64) *remainder {
	return &remainder{
		list: []interval.Interval[struct{}]{interval.MustNew(from, to, struct{}{})},
	}
}

// subtract takes [from, to] out of the set.
func (r *remainder) subtract(from, to int64) {
	for i := 0; i < len(r.list); {
		s := r.list[i]
		if s.From() > to {
			return
		}
		if !s.Overlaps(from, to) {
			i++
			continue
		}
		pieces := s.Cut(s.OverlapZone(from, to))
		r.list = slices.Replace(r.list, i, i+1, pieces...)
		i += len(pieces)
	}
}

func (r *remainder) spans() []interval.Interval[struct{}] {
	return r.list
}
