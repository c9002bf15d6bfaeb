package vxlantable

import (
	"fmt"

	"github.com/henderiw/idxrange/pkg/idxtable"
	"github.com/henderiw/idxrange/pkg/intervallist"
	"k8s.io/apimachinery/pkg/labels"
)

type VXLANTable interface {
	Get(id int64) (labels.Set, error)
	Claim(id int64, d labels.Set) error
	ClaimDynamic(d labels.Set) (int64, error)
	ClaimRange(start, size int64, d labels.Set) error
	Release(id int64) error
	ReleaseRange(start, size int64) error
	Update(id int64, d labels.Set) error

	Count() int
	Has(id int64) bool

	IsFree(id int64) bool
	FindFree() (int64, error)

	GetAll() map[int64]labels.Set
}

// New returns a table of the VNIs offset to max, both inclusive.
func New(offset, max int64) (VXLANTable, error) {
	if offset > max {
		return nil, fmt.Errorf("offset %d cannot be bigger then max %d", offset, max)
	}
	t, err := idxtable.NewTable[labels.Set](
		max-offset+1,
		map[int64]labels.Set{},
		nil,
		intervallist.WithEquals[labels.Set](labels.Equals),
	)
	if err != nil {
		return nil, err
	}
	return &vxlanTable{
		table:  t,
		offset: offset,
		max:    max,
	}, nil

}

type vxlanTable struct {
	table  idxtable.Table[labels.Set]
	offset int64
	max    int64
}

func (r *vxlanTable) Get(id int64) (labels.Set, error) {
	if err := r.validate(id); err != nil {
		return nil, err
	}
	return r.table.Get(r.calculateIndex(id))
}

func (r *vxlanTable) Claim(id int64, d labels.Set) error {
	if err := r.validate(id); err != nil {
		return err
	}
	return r.table.Claim(r.calculateIndex(id), d)
}

func (r *vxlanTable) ClaimDynamic(d labels.Set) (int64, error) {
	id, err := r.table.ClaimDynamic(d)
	if err != nil {
		return -1, err
	}
	return id + r.offset, nil
}

func (r *vxlanTable) ClaimRange(start, size int64, d labels.Set) error {
	if err := r.validate(start); err != nil {
		return err
	}
	return r.table.ClaimRange(r.calculateIndex(start), size, d)
}

func (r *vxlanTable) Release(id int64) error {
	if err := r.validate(id); err != nil {
		return err
	}
	return r.table.Release(r.calculateIndex(id))
}

func (r *vxlanTable) ReleaseRange(start, size int64) error {
	if err := r.validate(start); err != nil {
		return err
	}
	return r.table.ReleaseRange(r.calculateIndex(start), size)
}

func (r *vxlanTable) Update(id int64, d labels.Set) error {
	if err := r.validate(id); err != nil {
		return err
	}
	return r.table.Update(r.calculateIndex(id), d)
}

func (r *vxlanTable) Count() int {
	return r.table.Count()
}

func (r *vxlanTable) Has(id int64) bool {
	return r.table.Has(r.calculateIndex(id))
}

func (r *vxlanTable) IsFree(id int64) bool {
	if r.validate(id) != nil {
		return false
	}
	return r.table.IsFree(r.calculateIndex(id))
}

func (r *vxlanTable) FindFree() (int64, error) {
	id, err := r.table.FindFree()
	if err != nil {
		return -1, err
	}
	return id + r.offset, nil
}

func (r *vxlanTable) GetAll() map[int64]labels.Set {
	entries := map[int64]labels.Set{}
	for _, rng := range r.table.GetAll() {
		for id := rng.From(); id <= rng.To(); id++ {
			entries[id+r.offset] = rng.Data()
		}
	}
	return entries
}

func (r *vxlanTable) validate(id int64) error {
	if id < r.offset || id > r.max {
		return fmt.Errorf("vni %d outside range %d-%d", id, r.offset, r.max)
	}
	return nil
}

func (r *vxlanTable) calculateIndex(id int64) int64 {
	return id - r.offset
}
