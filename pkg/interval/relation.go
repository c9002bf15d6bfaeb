package interval

// EntirelyBefore returns whether r lies entirely before other.
func (r Interval[T]) EntirelyBefore(other Interval[T]) bool {
	return r.to < other.from
}

// CoveredBy returns whether r is entirely contained within other.
func (r Interval[T]) CoveredBy(other Interval[T]) bool {
	return other.from <= r.from && r.to <= other.to
}

// InMiddleOf returns whether r is inside other, but not touching the
// edges of other.
func (r Interval[T]) InMiddleOf(other Interval[T]) bool {
	return other.from < r.from && r.to < other.to
}

// OverlapsStartOf returns whether r entirely overlaps the start of
// other, but not all of other.
func (r Interval[T]) OverlapsStartOf(other Interval[T]) bool {
	return r.from <= other.from && r.to < other.to && other.from <= r.to
}

// OverlapsEndOf returns whether r entirely overlaps the end of
// other, but not all of other.
func (r Interval[T]) OverlapsEndOf(other Interval[T]) bool {
	return other.from < r.from && other.to <= r.to && r.from <= other.to
}

// Touches returns whether other starts at most one id after r ends, i.e.
// the two are adjacent or overlapping. r is expected to start before other.
func (r Interval[T]) Touches(other Interval[T]) bool {
	return r.to >= other.from || r.to == other.from-1
}
