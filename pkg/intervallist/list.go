// Package intervallist maintains a sorted set of non-overlapping integer
// intervals, each carrying a payload. Adding a range splits, trims or merges
// the stored intervals so that no two of them overlap and no two touching
// neighbours carry equal data.
//
// A List is not safe for concurrent use; callers serialize access.
package intervallist

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"
	"github.com/henderiw/idxrange/pkg/interval"
)

// EqualsFunc is called to check if two payloads are equal. It governs both
// conflict detection and merge eligibility.
type EqualsFunc[T any] func(a, b T) bool

// Option configures a List.
type Option[T any] func(*List[T]) error

// WithEquals overrides the payload equality of the list.
func WithEquals[T any](fn EqualsFunc[T]) Option[T] {
	return func(r *List[T]) error {
		if fn == nil {
			return fmt.Errorf("%w: equals must be a function", interval.ErrInvalidType)
		}
		r.equals = fn
		return nil
	}
}

func WithLogger[T any](log logr.Logger) Option[T] {
	return func(r *List[T]) error {
		r.log = log
		return nil
	}
}

// structuralEqual is the default payload equality.
func structuralEqual[T any](a, b T) bool {
	return cmp.Equal(a, b, cmp.Exporter(func(reflect.Type) bool { return true }))
}

// Equal compares comparable payloads with ==.
func Equal[T comparable](a, b T) bool { return a == b }

type List[T any] struct {
	list   []interval.Interval[T]
	equals EqualsFunc[T]
	log    logr.Logger
}

// New returns an empty list. Unless WithEquals is given, payloads are compared
// structurally with cmp.Equal, unexported fields included.
func New[T any](opts ...Option[T]) (*List[T], error) {
	r := &List[T]{
		list:   []interval.Interval[T]{},
		equals: structuralEqual[T],
		log:    logr.Discard(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add stores data on [from, to], both inclusive. Data already stored on any
// part of the range is overwritten; touching intervals with equal data are
// merged.
func (r *List[T]) Add(from, to int64, data T) error {
	if err := interval.Validate(from, to); err != nil {
		return err
	}

	pending := newRemainder(from, to)

	for {
		idx, ok := r.findFirstConflictingIndex(from, to, data)
		if !ok {
			break
		}
		current := r.list[idx]
		overlapFrom, overlapTo := current.OverlapZone(from, to)

		pieces := splitInsert(current, overlapFrom, overlapTo, data)
		r.replace(idx, pieces...)

		// the remainders keep the data of the split interval, which already
		// differs from its outer neighbours, so only the middle can merge
		middle := idx
		if current.From() < overlapFrom {
			middle++
		}
		r.tryMerge(middle)

		pending.subtract(overlapFrom, overlapTo)

		r.log.V(1).Info("conflict resolved", "range", current.String(), "from", overlapFrom, "to", overlapTo)
	}

	// what is left of [from, to] and already carries data is done as well
	for _, idx := range r.findOverlappingIndices(from, to) {
		overlapFrom, overlapTo := r.list[idx].OverlapZone(from, to)
		pending.subtract(overlapFrom, overlapTo)
	}

	for _, s := range pending.spans() {
		r.insert(s.From(), s.To(), data)
	}
	return nil
}

// Remove deletes every stored id within [from, to], both inclusive.
// Intervals partially overlapping the range are truncated at its edges.
func (r *List[T]) Remove(from, to int64) error {
	if err := interval.Validate(from, to); err != nil {
		return err
	}

	offset := 0
	for _, i := range r.findOverlappingIndices(from, to) {
		idx := i + offset
		current := r.list[idx]

		if from <= current.From() && current.To() <= to {
			r.replace(idx)
			offset--
			continue
		}

		overlapFrom, overlapTo := current.OverlapZone(from, to)
		pieces := current.Cut(overlapFrom, overlapTo)
		r.replace(idx, pieces...)
		offset += len(pieces) - 1

		r.log.V(1).Info("interval truncated", "range", current.String(), "pieces", len(pieces))
	}
	return nil
}

// Size returns the number of stored intervals.
func (r *List[T]) Size() int {
	return len(r.list)
}

// List returns the stored intervals in ascending order. The slice is the
// live storage of the list and must not be modified by the caller.
func (r *List[T]) List() []interval.Interval[T] {
	return r.list
}

func (r *List[T]) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, iv := range r.list {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%s:%v", iv.String(), iv.Data())
	}
	sb.WriteString("]")
	return sb.String()
}

// insert places a conflict free range at its sorted position.
func (r *List[T]) insert(from, to int64, data T) {
	idx, found := r.search(from)
	if found {
		// only an equal-data interval can hold from at this point; it
		// already covers the head of the range
		existing := r.list[idx]
		r.log.V(1).Info("range absorbed", "range", existing.String(), "from", from, "to", to)
		if existing.To() >= to {
			return
		}
		r.insert(existing.To()+1, to, data)
		return
	}
	r.list = slices.Insert(r.list, idx, interval.MustNew(from, to, data))
	r.log.V(1).Info("range inserted", "from", from, "to", to)
	r.tryMerge(idx)
}

// splitInsert splits current into up to three pieces, the middle one being
// [from, to] with the incoming data.
func splitInsert[T any](current interval.Interval[T], from, to int64, data T) []interval.Interval[T] {
	pieces := make([]interval.Interval[T], 0, 3)
	if current.From() < from {
		pieces = append(pieces, interval.MustNew(current.From(), from-1, current.Data()))
	}
	pieces = append(pieces, interval.MustNew(from, to, data))
	if to < current.To() {
		pieces = append(pieces, interval.MustNew(to+1, current.To(), current.Data()))
	}
	return pieces
}
