package interval

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidType is returned when a bound or option is not of the expected type.
	ErrInvalidType = errors.New("invalid type")
	// ErrInvalidRange is returned when from is bigger than to.
	ErrInvalidRange = errors.New("invalid range")
)

// Interval is an inclusive integer range [from, to] carrying a payload.
type Interval[T any] struct {
	from int64
	to   int64
	data T
}

func New[T any](from, to int64, data T) (Interval[T], error) {
	if err := Validate(from, to); err != nil {
		return Interval[T]{}, err
	}
	return Interval[T]{
		from: from,
		to:   to,
		data: data,
	}, nil
}

// MustNew is like New but panics when from > to.
func MustNew[T any](from, to int64, data T) Interval[T] {
	r, err := New(from, to, data)
	if err != nil {
		panic(err)
	}
	return r
}

// Validate checks the ordering of a from/to pair.
func Validate(from, to int64) error {
	if from > to {
		return fmt.Errorf("%w: from %d must be smaller or equal than to %d", ErrInvalidRange, from, to)
	}
	return nil
}

// From returns the lower bound of r.
func (r Interval[T]) From() int64 { return r.from }

// To returns the upper bound of r.
func (r Interval[T]) To() int64 { return r.to }

func (r Interval[T]) Data() T { return r.data }

// Size returns the number of ids covered by r. The full int64 span holds
// 2^64 ids and is reported as math.MaxUint64.
func (r Interval[T]) Size() uint64 {
	if r.from == math.MinInt64 && r.to == math.MaxInt64 {
		return math.MaxUint64
	}
	return uint64(r.to) - uint64(r.from) + 1
}

func (r *Interval[T]) SetFrom(from int64) error {
	if from > r.to {
		return fmt.Errorf("%w: from %d must be smaller or equal than to %d", ErrInvalidRange, from, r.to)
	}
	r.from = from
	return nil
}

func (r *Interval[T]) SetTo(to int64) error {
	if r.from > to {
		return fmt.Errorf("%w: to %d must be bigger or equal than from %d", ErrInvalidRange, to, r.from)
	}
	r.to = to
	return nil
}

func (r *Interval[T]) SetData(data T) {
	r.data = data
}

func (r Interval[T]) String() string {
	return fmt.Sprintf("%d-%d", r.from, r.to)
}

// Contains returns whether point lies within r.
func (r Interval[T]) Contains(point int64) bool {
	return r.from <= point && point <= r.to
}

// Overlaps returns whether r shares at least one id with [from, to].
func (r Interval[T]) Overlaps(from, to int64) bool {
	return from <= r.to && r.from <= to
}

// OverlapZone returns the intersection of r and [from, to]. The result is
// only meaningful when the two overlap.
func (r Interval[T]) OverlapZone(from, to int64) (int64, int64) {
	return max(r.from, from), min(r.to, to)
}

// Cut returns what is left of r once [from, to] is taken out of it: zero,
// one or two pieces, all carrying the data of r.
func (r Interval[T]) Cut(from, to int64) []Interval[T] {
	pieces := make([]Interval[T], 0, 2)
	if r.from < from {
		pieces = append(pieces, Interval[T]{from: r.from, to: min(from-1, r.to), data: r.data})
	}
	if to < r.to {
		pieces = append(pieces, Interval[T]{from: max(to+1, r.from), to: r.to, data: r.data})
	}
	return pieces
}

// ParseRange parses "from-to" or a single "id" into inclusive bounds.
func ParseRange(s string) (int64, int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("%w: empty range", ErrInvalidType)
	}
	// skip a leading sign so "-5--1" splits on the second hyphen
	h := strings.IndexByte(s[1:], '-')
	if h == -1 {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: invalid id %q", ErrInvalidType, s)
		}
		return id, id, nil
	}
	h++
	from, to := s[:h], s[h+1:]
	fromID, err := strconv.ParseInt(from, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid from id %q in range %q", ErrInvalidType, from, s)
	}
	toID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid to id %q in range %q", ErrInvalidType, to, s)
	}
	if err := Validate(fromID, toID); err != nil {
		return 0, 0, err
	}
	return fromID, toID, nil
}
