package intervallist

// search locates the interval containing point. When no interval contains
// it, the returned index is where an interval starting at point belongs.
func (r *List[T]) search(point int64) (int, bool) {
	if len(r.list) == 0 {
		return 0, false
	}

	left, right := 0, len(r.list)-1

	if point < r.list[left].From() {
		return left, false
	}
	if r.list[right].To() < point {
		return right + 1, false
	}

	// the bracket strictly narrows until point is found or left and right
	// are neighbours, in which case point sits in the gap between them
	for {
		if r.list[left].Contains(point) {
			return left, true
		}
		if r.list[right].Contains(point) {
			return right, true
		}
		if right-left <= 1 {
			return right, false
		}

		middle := (left + right) / 2
		switch m := r.list[middle]; {
		case m.To() < point:
			left = middle
		case point < m.From():
			right = middle
		default:
			return middle, true
		}
	}
}

// findOverlappingIndices returns the indices of all intervals sharing at
// least one id with [from, to].
func (r *List[T]) findOverlappingIndices(from, to int64) []int {
	var indices []int

	idx, _ := r.search(from)
	for i := idx; i < len(r.list); i++ {
		entry := r.list[i]
		if entry.From() > to {
			break
		}
		if entry.Overlaps(from, to) {
			indices = append(indices, i)
		}
	}
	return indices
}

// findFirstConflictingIndex returns the first interval overlapping
// [from, to] whose data differs from data.
func (r *List[T]) findFirstConflictingIndex(from, to int64, data T) (int, bool) {
	idx, _ := r.search(from)
	for i := idx; i < len(r.list); i++ {
		entry := r.list[i]
		if entry.From() > to {
			break
		}
		if entry.Overlaps(from, to) && !r.equals(entry.Data(), data) {
			return i, true
		}
	}
	return 0, false
}
