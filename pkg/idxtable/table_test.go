package idxtable

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/henderiw/idxrange/pkg/intervallist"
	"github.com/stretchr/testify/assert"
)

var initEntries = map[int64]string{
	0:   "a",
	1:   "b",
	999: "c",
}

func TestNewTable(t *testing.T) {
	cases := map[string]struct {
		size            int64
		initEntries     map[int64]string
		validation      ValidationFn
		opts            []intervallist.Option[string]
		expectedEntries int
		expectedErr     bool
	}{

		"NewWithoutInitEntries": {
			size:            1000,
			initEntries:     nil,
			expectedEntries: 0,
		},
		"NewWithInitEntries": {
			size:            1000,
			initEntries:     initEntries,
			validation:      func(id int64) error { return nil },
			expectedEntries: 3,
		},
		"NewErrorMaxEntries": {
			size:        100,
			initEntries: initEntries,
			expectedErr: true,
		},
		"NewInitEntriesSkipValidation": {
			size:        1000,
			initEntries: initEntries,
			validation: func(id int64) error {
				if id == 999 {
					return errors.New("validation")
				}
				return nil
			},
			expectedEntries: 3,
		},
		"NewErrorOption": {
			size:        1000,
			opts:        []intervallist.Option[string]{intervallist.WithEquals[string](nil)},
			expectedErr: true,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := NewTable[string](tc.size, tc.initEntries, tc.validation, tc.opts...)
			if tc.expectedErr {
				assert.Error(t, err)
				return
			} else {
				assert.NoError(t, err)
			}
			if r.Count() != tc.expectedEntries {
				t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, r.Count())
			}
		})
	}
}

func TestClaim(t *testing.T) {
	cases := map[string]struct {
		size              int64
		initEntries       map[int64]string
		newSuccessEntries map[int64]string
		newFailedEntries  map[int64]string
		expectedEntries   int
	}{

		"Normal": {
			size:        1000,
			initEntries: initEntries,
			newSuccessEntries: map[int64]string{
				10: "a",
				11: "b",
			},
			newFailedEntries: map[int64]string{
				1000: "x",
				-1:   "x",
				0:    "x",
			},
			expectedEntries: 5,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := NewTable[string](tc.size, tc.initEntries, nil)
			assert.NoError(t, err)

			for id, d := range tc.newSuccessEntries {
				err := r.Claim(id, d)
				assert.NoError(t, err)

			}
			for id, d := range tc.newFailedEntries {
				err := r.Claim(id, d)
				assert.Error(t, err)
			}
			// check table
			for id, d := range tc.initEntries {
				got, err := r.Get(id)
				assert.NoError(t, err)
				assert.Equal(t, d, got)
			}
			for id := range tc.newSuccessEntries {
				if !r.Has(id) {
					t.Errorf("%s expecting success claim entry: %d\n", name, id)
				}
			}
			if r.Has(1000) || r.Has(-1) {
				t.Errorf("%s no expecting failed claim entries\n", name)
			}
			if r.Count() != tc.expectedEntries {
				t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, r.Count())
			}
		})
	}
}

func TestRelease(t *testing.T) {
	cases := map[string]struct {
		size                 int64
		initEntries          map[int64]string
		newSuccessEntries    map[int64]string
		expectedEntries      int
		deleteSuccessEntries []int64
		deleteFreeEntries    []int64
	}{

		"Normal": {
			size:        1000,
			initEntries: initEntries,
			newSuccessEntries: map[int64]string{
				10: "a",
				11: "b",
			},
			deleteSuccessEntries: []int64{0, 10, 11},
			deleteFreeEntries:    []int64{20, 21},

			expectedEntries: 2,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := NewTable[string](tc.size, tc.initEntries, nil)
			assert.NoError(t, err)

			for id, d := range tc.newSuccessEntries {
				err := r.Claim(id, d)
				assert.NoError(t, err)
			}
			// delete entries
			for _, id := range tc.deleteSuccessEntries {
				err := r.Release(id)
				assert.NoError(t, err)
			}
			for _, id := range tc.deleteFreeEntries {
				err := r.Release(id)
				assert.NoError(t, err)
			}
			for _, id := range tc.deleteSuccessEntries {
				_, err := r.Get(id)
				assert.Error(t, err)
				if r.Has(id) {
					t.Errorf("%s not expecting deleted claim entry: %d\n", name, id)
				}
			}
			for _, id := range []int64{1, 999} {
				_, err := r.Get(id)
				assert.NoError(t, err)
			}

			if r.Count() != tc.expectedEntries {
				t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, r.Count())
			}
			assert.Error(t, r.Release(1000))
		})
	}
}

func TestUpdate(t *testing.T) {
	r, err := NewTable[string](100, nil, nil)
	assert.NoError(t, err)

	assert.NoError(t, r.ClaimRange(10, 10, "a"))
	assert.Error(t, r.Update(50, "b"))

	// updating an id in the middle splits the claimed range
	assert.NoError(t, r.Update(15, "b"))
	got, err := r.Get(15)
	assert.NoError(t, err)
	assert.Equal(t, "b", got)
	assert.Len(t, r.GetAll(), 3)
	assert.Equal(t, 10, r.Count())

	// and updating it back merges it again
	assert.NoError(t, r.Update(15, "a"))
	assert.Len(t, r.GetAll(), 1)
}

func TestIterate(t *testing.T) {
	cases := map[string]struct {
		size        int64
		initEntries map[int64]string
		ranges      []string
		consecutive []bool
	}{

		"Normal": {
			size:        1000,
			initEntries: initEntries,
			ranges:      []string{"0-0", "1-1", "999-999"},
			consecutive: []bool{false, true, false},
		},
		"None": {
			size:        1000,
			initEntries: nil,
			ranges:      []string{},
			consecutive: []bool{},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := NewTable[string](tc.size, tc.initEntries, nil)
			assert.NoError(t, err)

			ranges := []string{}
			consecutive := []bool{}
			i := r.Iterate()
			for i.Next() {
				ranges = append(ranges, i.Value().String())
				consecutive = append(consecutive, i.IsConsecutive())
				assert.Equal(t, tc.initEntries[i.From()], i.Data())
			}
			if diff := cmp.Diff(tc.ranges, ranges); diff != "" {
				t.Errorf("%s: -want, +got:\n%s", name, diff)
			}
			if diff := cmp.Diff(tc.consecutive, consecutive); diff != "" {
				t.Errorf("%s: -want, +got:\n%s", name, diff)
			}
		})
	}
}

func TestIterateFree(t *testing.T) {
	r, err := NewTable[string](1000, initEntries, nil)
	assert.NoError(t, err)

	free := []string{}
	i := r.IterateFree()
	for i.Next() {
		free = append(free, i.Value().String())
	}
	assert.Equal(t, []string{"2-998"}, free)
}

func TestClaimRange(t *testing.T) {
	cases := map[string]struct {
		size            int64
		initEntries     map[int64]string
		start           int64
		total           int64
		expectedEntries int
		expectedErr     bool
	}{

		"Normal": {
			size:            10,
			initEntries:     nil,
			start:           5,
			total:           5,
			expectedEntries: 5,
		},
		"ErrorMax": {
			size:            10,
			initEntries:     nil,
			start:           5,
			total:           6,
			expectedEntries: 0,
			expectedErr:     true,
		},
		"ErrorOverlap": {
			size:            1000,
			initEntries:     initEntries,
			start:           0,
			total:           5,
			expectedEntries: 3,
			expectedErr:     true,
		},
		"ErrorSize": {
			size:        1000,
			start:       0,
			total:       0,
			expectedErr: true,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := NewTable[string](tc.size, tc.initEntries, nil)
			assert.NoError(t, err)

			err = r.ClaimRange(tc.start, tc.total, "a")
			if tc.expectedErr {
				assert.Error(t, err)
				assert.Equal(t, tc.expectedEntries, r.Count())
				return
			}
			assert.NoError(t, err)
			for id := tc.start; id < tc.start+tc.total; id++ {
				if !r.Has(id) {
					t.Errorf("%s expecting entry: %d\n", name, id)
				}
			}

			if r.Count() != tc.expectedEntries {
				t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, r.Count())
			}
		})
	}
}

func TestReleaseRange(t *testing.T) {
	r, err := NewTable[string](100, nil, nil)
	assert.NoError(t, err)

	assert.NoError(t, r.ClaimRange(0, 50, "a"))
	assert.NoError(t, r.ReleaseRange(10, 10))
	assert.Equal(t, 40, r.Count())
	assert.True(t, r.IsFree(15))
	assert.False(t, r.IsFree(20))

	assert.Error(t, r.ReleaseRange(90, 20))
	assert.Error(t, r.ReleaseRange(10, 0))
}

func TestClaimSize(t *testing.T) {
	cases := map[string]struct {
		size            int64
		initEntries     map[int64]string
		total           int64
		expectedStart   int64
		expectedEntries int
		expectedErr     bool
	}{

		"Normal": {
			size:            1000,
			total:           1000,
			expectedStart:   0,
			expectedEntries: 1000,
		},
		"SkipTooSmallGap": {
			size:            1000,
			initEntries:     initEntries,
			total:           10,
			expectedStart:   2,
			expectedEntries: 13,
		},
		"ErrorMax": {
			size:            10,
			total:           11,
			expectedEntries: 0,
			expectedErr:     true,
		},
		"ErrorNoBlock": {
			size:            1000,
			initEntries:     map[int64]string{500: "x"},
			total:           600,
			expectedEntries: 1,
			expectedErr:     true,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := NewTable[string](tc.size, tc.initEntries, nil)
			assert.NoError(t, err)

			start, err := r.ClaimSize(tc.total, "a")
			if tc.expectedErr {
				assert.Error(t, err)
				assert.Equal(t, tc.expectedEntries, r.Count())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expectedStart, start)

			if r.Count() != tc.expectedEntries {
				t.Errorf("%s: -want %d, +got: %d\n", name, tc.expectedEntries, r.Count())
			}
		})
	}
}

func TestFindFreeWithValidation(t *testing.T) {
	reserved := func(id int64) error {
		if id < 3 || id == 7 {
			return errors.New("reserved")
		}
		return nil
	}
	r, err := NewTable[string](20, nil, reserved)
	assert.NoError(t, err)

	id, err := r.FindFree()
	assert.NoError(t, err)
	assert.Equal(t, int64(3), id)

	// 3-6 holds only 4 valid ids
	start, err := r.FindFreeSize(5)
	assert.NoError(t, err)
	assert.Equal(t, int64(8), start)

	start, err = r.FindFreeRange(10, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), start)

	assert.Error(t, r.Claim(7, "x"))
	assert.Error(t, r.ClaimRange(5, 5, "x"))

	id, err = r.ClaimDynamic("x")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), id)

	_, err = r.FindFreeRange(20, 1)
	assert.Error(t, err)
}
