package vlantable

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/henderiw/idxrange/pkg/idxtable"
	"github.com/henderiw/idxrange/pkg/intervallist"
	"k8s.io/apimachinery/pkg/labels"
)

type VLANTable interface {
	Get(id int64) (labels.Set, error)
	Claim(id int64, d labels.Set) error
	ClaimDynamic(d labels.Set) (int64, error)
	ClaimRange(start, size int64, d labels.Set) error
	ClaimSize(size int64, d labels.Set) (int64, error)
	Release(id int64) error
	ReleaseRange(start, size int64) error
	Update(id int64, d labels.Set) error

	Count() int
	Has(id int64) bool

	IsFree(id int64) bool
	FindFree() (int64, error)

	GetAll() map[int64]labels.Set
	GetByLabel(selector labels.Selector) map[int64]labels.Set
	Ranges() []string
}

var initEntries = map[int64]labels.Set{
	0:    map[string]string{"type": "untagged", "status": "reserved"},
	1:    map[string]string{"type": "untagged", "status": "reserved"},
	4095: map[string]string{"type": "untagged", "status": "reserved"},
}

func New() (VLANTable, error) {
	return NewWithLogger(logr.Discard())
}

// NewWithLogger returns a VLAN table whose range bookkeeping logs to log.
func NewWithLogger(log logr.Logger) (VLANTable, error) {
	t, err := idxtable.NewTable[labels.Set](
		4096,
		initEntries,
		func(id int64) error {
			switch id {
			case 0:
				return fmt.Errorf("VLAN %d is the untagged VLAN, cannot be added to the database", id)
			case 1:
				return fmt.Errorf("VLAN %d is the default VLAN, cannot be added to the database", id)
			case 4095:
				return fmt.Errorf("VLAN %d is reserved, cannot be added to the database", id)
			}
			return nil
		},
		intervallist.WithEquals[labels.Set](labels.Equals),
		intervallist.WithLogger[labels.Set](log.WithName("vlantable")),
	)
	if err != nil {
		return nil, err
	}
	return &vlanTable{
		table:  t,
		offset: 0,
		max:    4095,
	}, nil
}

type vlanTable struct {
	table  idxtable.Table[labels.Set]
	offset int64
	max    int64
}

func (r *vlanTable) Get(id int64) (labels.Set, error) {
	return r.table.Get(r.calculateIndex(id))
}

func (r *vlanTable) Claim(id int64, d labels.Set) error {
	return r.table.Claim(r.calculateIndex(id), d)
}

func (r *vlanTable) ClaimDynamic(d labels.Set) (int64, error) {
	id, err := r.table.ClaimDynamic(d)
	if err != nil {
		return -1, err
	}
	return id + r.offset, nil
}

func (r *vlanTable) ClaimRange(start, size int64, d labels.Set) error {
	return r.table.ClaimRange(r.calculateIndex(start), size, d)
}

func (r *vlanTable) ClaimSize(size int64, d labels.Set) (int64, error) {
	id, err := r.table.ClaimSize(size, d)
	if err != nil {
		return -1, err
	}
	return id + r.offset, nil
}

func (r *vlanTable) Release(id int64) error {
	return r.table.Release(r.calculateIndex(id))
}

func (r *vlanTable) ReleaseRange(start, size int64) error {
	return r.table.ReleaseRange(r.calculateIndex(start), size)
}

func (r *vlanTable) Update(id int64, d labels.Set) error {
	return r.table.Update(r.calculateIndex(id), d)
}

func (r *vlanTable) Count() int {
	return r.table.Count()
}

func (r *vlanTable) Has(id int64) bool {
	return r.table.Has(r.calculateIndex(id))
}

func (r *vlanTable) IsFree(id int64) bool {
	return r.table.IsFree(r.calculateIndex(id))
}

func (r *vlanTable) FindFree() (int64, error) {
	id, err := r.table.FindFree()
	if err != nil {
		return -1, err
	}
	return id + r.offset, nil
}

func (r *vlanTable) GetAll() map[int64]labels.Set {
	entries := map[int64]labels.Set{}
	for _, rng := range r.table.GetAll() {
		for id := rng.From(); id <= rng.To(); id++ {
			entries[id+r.offset] = rng.Data()
		}
	}
	return entries
}

func (r *vlanTable) GetByLabel(selector labels.Selector) map[int64]labels.Set {
	entries := map[int64]labels.Set{}

	iter := r.table.Iterate()
	for iter.Next() {
		if selector.Matches(iter.Data()) {
			for id := iter.From(); id <= iter.To(); id++ {
				entries[id+r.offset] = iter.Data()
			}
		}
	}
	return entries
}

// Ranges returns the claimed VLAN ranges, consecutive VLANs with equal labels
// reported as one range.
func (r *vlanTable) Ranges() []string {
	ranges := []string{}
	for _, rng := range r.table.GetAll() {
		if rng.From() == rng.To() {
			ranges = append(ranges, fmt.Sprintf("%d", rng.From()+r.offset))
			continue
		}
		ranges = append(ranges, fmt.Sprintf("%d-%d", rng.From()+r.offset, rng.To()+r.offset))
	}
	return ranges
}

func (r *vlanTable) calculateIndex(id int64) int64 {
	return id - r.offset
}
