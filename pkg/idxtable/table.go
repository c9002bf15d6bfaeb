package idxtable

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/henderiw/idxrange/pkg/interval"
	"github.com/henderiw/idxrange/pkg/intervallist"
)

type Table[T1 any] interface {
	Get(id int64) (T1, error)
	Claim(id int64, d T1) error
	ClaimDynamic(d T1) (int64, error)
	ClaimRange(start, size int64, d T1) error
	ClaimSize(size int64, d T1) (int64, error)
	Release(id int64) error
	ReleaseRange(start, size int64) error
	Update(id int64, d T1) error

	Iterate() *Iterator[T1]
	IterateFree() *Iterator[struct{}]

	Count() int
	Has(id int64) bool

	IsFree(id int64) bool
	FindFree() (int64, error)
	FindFreeRange(min, size int64) (int64, error)
	FindFreeSize(size int64) (int64, error)

	GetAll() []interval.Interval[T1]
}

type ValidationFn func(id int64) error

// NewTable returns a table holding ids 0 to s-1. Init entries bypass the
// validation function; the table is returned together with the joined errors
// of the init entries that could not be added.
func NewTable[T1 any](s int64, initEntries map[int64]T1, v ValidationFn, opts ...intervallist.Option[T1]) (Table[T1], error) {
	l, err := intervallist.New(opts...)
	if err != nil {
		return nil, err
	}
	r := &table[T1]{
		m:          new(sync.RWMutex),
		table:      l,
		size:       s,
		validateFn: v,
	}

	var errm error
	for id, d := range initEntries {
		if err := r.add(id, id, d, true); err != nil {
			errm = errors.Join(errm, err)
		}
	}

	return r, errm
}

type table[T1 any] struct {
	m          *sync.RWMutex
	table      *intervallist.List[T1]
	size       int64
	validateFn ValidationFn
}

func (r *table[T1]) validate(id int64, init bool) error {
	if id < 0 {
		return fmt.Errorf("id %d cannot be negative", id)
	}
	if id > r.size-1 {
		return fmt.Errorf("id %d is bigger then max allowed entries: %d", id, r.size-1)
	}
	if r.validateFn != nil && !init {
		if err := r.validateFn(id); err != nil {
			return err
		}
	}
	return nil
}

func (r *table[T1]) validateRange(from, to int64, init bool) error {
	if err := interval.Validate(from, to); err != nil {
		return err
	}
	if err := r.validate(from, true); err != nil {
		return err
	}
	if err := r.validate(to, true); err != nil {
		return err
	}
	if r.validateFn == nil || init {
		return nil
	}
	for id := from; id <= to; id++ {
		if err := r.validateFn(id); err != nil {
			return err
		}
	}
	return nil
}

func (r *table[T1]) Get(id int64) (T1, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	var d T1

	if err := r.validate(id, false); err != nil {
		return d, err
	}

	e, ok := r.table.Get(id)
	if !ok {
		return d, fmt.Errorf("no match found for: %v", id)
	}
	return e.Data(), nil
}

func (r *table[T1]) Claim(id int64, d T1) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.add(id, id, d, false)
}

func (r *table[T1]) ClaimDynamic(d T1) (int64, error) {
	r.m.Lock()
	defer r.m.Unlock()

	id, err := r.findFreeRange(0, 1)
	if err != nil {
		return 0, fmt.Errorf("no free entry found")
	}
	if err := r.add(id, id, d, false); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *table[T1]) ClaimRange(start, size int64, d T1) error {
	r.m.Lock()
	defer r.m.Unlock()

	if size < 1 {
		return fmt.Errorf("size %d must be at least 1", size)
	}
	return r.add(start, start+size-1, d, false)
}

func (r *table[T1]) ClaimSize(size int64, d T1) (int64, error) {
	r.m.Lock()
	defer r.m.Unlock()

	start, err := r.findFreeRange(0, size)
	if err != nil {
		return 0, err
	}
	// getting an error is unlikely as we have a lock
	if err := r.add(start, start+size-1, d, false); err != nil {
		return 0, err
	}
	return start, nil
}

func (r *table[T1]) Release(id int64) error {
	r.m.Lock()
	defer r.m.Unlock()

	if err := r.validate(id, false); err != nil {
		return err
	}
	return r.table.Remove(id, id)
}

func (r *table[T1]) ReleaseRange(start, size int64) error {
	r.m.Lock()
	defer r.m.Unlock()

	if size < 1 {
		return fmt.Errorf("size %d must be at least 1", size)
	}
	if err := r.validateRange(start, start+size-1, true); err != nil {
		return err
	}
	return r.table.Remove(start, start+size-1)
}

func (r *table[T1]) Update(id int64, d T1) error {
	r.m.Lock()
	defer r.m.Unlock()

	if err := r.validate(id, false); err != nil {
		return err
	}
	if r.isFree(id) {
		return fmt.Errorf("entry %d not found", id)
	}
	return r.table.Add(id, id, d)
}

func (r *table[T1]) Iterate() *Iterator[T1] {
	r.m.RLock()
	defer r.m.RUnlock()

	return &Iterator[T1]{current: -1, entries: slices.Clone(r.table.List())}
}

func (r *table[T1]) IterateFree() *Iterator[struct{}] {
	r.m.RLock()
	defer r.m.RUnlock()

	return &Iterator[struct{}]{current: -1, entries: r.free(0)}
}

// free returns the unclaimed ranges from min onwards.
func (r *table[T1]) free(min int64) []interval.Interval[struct{}] {
	if min > r.size-1 {
		return nil
	}
	gaps, err := r.table.Gaps(max(min, 0), r.size-1)
	if err != nil {
		return nil
	}
	return gaps
}

func (r *table[T1]) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()

	return int(r.table.Covered())
}

func (r *table[T1]) Has(id int64) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	return !r.isFree(id)
}

func (r *table[T1]) IsFree(id int64) bool {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.isFree(id)
}

func (r *table[T1]) isFree(id int64) bool {
	_, ok := r.table.Get(id)
	return !ok
}

func (r *table[T1]) FindFree() (int64, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	id, err := r.findFreeRange(0, 1)
	if err != nil {
		return 0, fmt.Errorf("no free entry found")
	}
	return id, nil
}

func (r *table[T1]) FindFreeRange(min, size int64) (int64, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.findFreeRange(min, size)
}

func (r *table[T1]) FindFreeSize(size int64) (int64, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.findFreeRange(0, size)
}

// findFreeRange returns the start of the first block of size consecutive
// free ids at or after min that all pass validation.
func (r *table[T1]) findFreeRange(min, size int64) (int64, error) {
	if size < 1 {
		return 0, fmt.Errorf("size %d must be at least 1", size)
	}
	if size > r.size {
		return 0, fmt.Errorf("size %d is bigger then max allowed entries: %d", size, r.size)
	}
	if min > r.size-1 {
		return 0, fmt.Errorf("start %d is bigger then max allowed entries: %d", min, r.size)
	}

	for _, gap := range r.free(min) {
		if r.validateFn == nil {
			if gap.Size() >= uint64(size) {
				return gap.From(), nil
			}
			continue
		}
		start, run := gap.From(), int64(0)
		for id := gap.From(); id <= gap.To(); id++ {
			if r.validateFn(id) != nil {
				start, run = id+1, 0
				continue
			}
			run++
			if run == size {
				return start, nil
			}
		}
	}
	return 0, fmt.Errorf("could not find free range that fit in start %d, size %d", min, size)
}

func (r *table[T1]) add(from, to int64, d T1, init bool) error {
	if err := r.validateRange(from, to, init); err != nil {
		return err
	}
	if taken := r.table.Overlapping(from, to); len(taken) > 0 {
		if from == to {
			return fmt.Errorf("entry %d already exists", from)
		}
		return fmt.Errorf("range %d-%d overlaps claimed entries %s", from, to, taken[0].String())
	}
	return r.table.Add(from, to, d)
}

func (r *table[T1]) GetAll() []interval.Interval[T1] {
	r.m.RLock()
	defer r.m.RUnlock()

	return slices.Clone(r.table.List())
}
