package iptable

import (
	"fmt"
	"math/big"
	"net/netip"

	"github.com/hansthienpondt/nipam/pkg/table"
	"github.com/henderiw/idxrange/pkg/idxtable"
	"github.com/henderiw/idxrange/pkg/intervallist"
	"go4.org/netipx"
	"k8s.io/apimachinery/pkg/labels"
)

type IPTable interface {
	Get(addr string) (table.Route, error)
	Claim(addr string, d table.Route) error
	ClaimRange(rng string, d table.Route) error
	Release(addr string) error
	ReleaseRange(rng string) error
	Update(addr string, d table.Route) error

	Count() int
	Has(addr string) bool

	IsFree(addr string) bool
	FindFree() (netip.Addr, error)

	GetAll() table.Routes
	GetByLabel(selector labels.Selector) table.Routes
	Ranges() []netipx.IPRange
	Free() (*netipx.IPSet, error)
}

// New returns a table of the addresses from to to, both inclusive. Routes are
// stored per address range; consecutive addresses whose routes carry equal
// labels share one range.
func New(from, to netip.Addr) (IPTable, error) {
	ipRange := netipx.IPRangeFrom(from, to)
	if !ipRange.IsValid() {
		return nil, fmt.Errorf("invalid ip range from %s to %s", from.String(), to.String())
	}
	size, err := numIPs(from, to)
	if err != nil {
		return nil, err
	}
	t, err := idxtable.NewTable[table.Route](
		size,
		nil,
		nil,
		intervallist.WithEquals[table.Route](func(a, b table.Route) bool {
			return labels.Equals(a.Labels(), b.Labels())
		}),
	)
	if err != nil {
		return nil, err
	}
	return &ipTable{
		table:   t,
		ipRange: ipRange,
	}, nil
}

type ipTable struct {
	table   idxtable.Table[table.Route]
	ipRange netipx.IPRange
}

func (r *ipTable) Get(addr string) (table.Route, error) {
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return table.Route{}, err
	}
	return r.table.Get(calculateIndex(claimIP, r.ipRange.From()))
}

func (r *ipTable) Claim(addr string, d table.Route) error {
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return err
	}
	if err := r.table.Claim(calculateIndex(claimIP, r.ipRange.From()), d); err != nil {
		return fmt.Errorf("claim failed ip %s: %w", addr, err)
	}
	return nil
}

func (r *ipTable) ClaimRange(rng string, d table.Route) error {
	from, size, err := r.validateRange(rng)
	if err != nil {
		return err
	}
	if err := r.table.ClaimRange(from, size, d); err != nil {
		return fmt.Errorf("claim failed range %s: %w", rng, err)
	}
	return nil
}

func (r *ipTable) Release(addr string) error {
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return err
	}
	return r.table.Release(calculateIndex(claimIP, r.ipRange.From()))
}

func (r *ipTable) ReleaseRange(rng string) error {
	from, size, err := r.validateRange(rng)
	if err != nil {
		return err
	}
	return r.table.ReleaseRange(from, size)
}

func (r *ipTable) Update(addr string, d table.Route) error {
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return err
	}
	if err := r.table.Update(calculateIndex(claimIP, r.ipRange.From()), d); err != nil {
		return fmt.Errorf("update failed ip %s: %w", addr, err)
	}
	return nil
}

func (r *ipTable) Count() int {
	return r.table.Count()
}

func (r *ipTable) Has(addr string) bool {
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return false
	}
	return r.table.Has(calculateIndex(claimIP, r.ipRange.From()))
}

func (r *ipTable) IsFree(addr string) bool {
	claimIP, err := r.validateIP(addr)
	if err != nil {
		return false
	}
	return r.table.IsFree(calculateIndex(claimIP, r.ipRange.From()))
}

func (r *ipTable) FindFree() (netip.Addr, error) {
	id, err := r.table.FindFree()
	if err != nil {
		return netip.Addr{}, err
	}
	return calculateIPFromIndex(r.ipRange.From(), id), nil
}

// GetAll returns one route per claimed range.
func (r *ipTable) GetAll() table.Routes {
	var routes table.Routes
	for _, entry := range r.table.GetAll() {
		routes = append(routes, entry.Data())
	}
	return routes
}

func (r *ipTable) GetByLabel(selector labels.Selector) table.Routes {
	var routes table.Routes

	iter := r.table.Iterate()
	for iter.Next() {
		if selector.Matches(iter.Data().Labels()) {
			routes = append(routes, iter.Data())
		}
	}
	return routes
}

// Ranges returns the claimed address ranges in ascending order.
func (r *ipTable) Ranges() []netipx.IPRange {
	ranges := []netipx.IPRange{}
	iter := r.table.Iterate()
	for iter.Next() {
		ranges = append(ranges, r.toIPRange(iter.From(), iter.To()))
	}
	return ranges
}

// Free returns the set of unclaimed addresses.
func (r *ipTable) Free() (*netipx.IPSet, error) {
	var b netipx.IPSetBuilder
	iter := r.table.IterateFree()
	for iter.Next() {
		b.AddRange(r.toIPRange(iter.From(), iter.To()))
	}
	return b.IPSet()
}

func (r *ipTable) toIPRange(from, to int64) netipx.IPRange {
	return netipx.IPRangeFrom(
		calculateIPFromIndex(r.ipRange.From(), from),
		calculateIPFromIndex(r.ipRange.From(), to),
	)
}

func (r *ipTable) validateIP(addr string) (netip.Addr, error) {
	claimIP, err := netip.ParseAddr(addr)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("ip address %s is invalid", addr)
	}
	if !r.ipRange.Contains(claimIP) {
		return netip.Addr{}, fmt.Errorf("ip address %s, does not fit in the range from %s to %s", addr, r.ipRange.From().String(), r.ipRange.To().String())
	}
	return claimIP, nil
}

// validateRange parses a "from-to" address range and returns its first index
// and number of addresses.
func (r *ipTable) validateRange(rng string) (int64, int64, error) {
	ipRange, err := netipx.ParseIPRange(rng)
	if err != nil {
		return 0, 0, fmt.Errorf("ip range %s is invalid: %w", rng, err)
	}
	if !r.ipRange.Contains(ipRange.From()) || !r.ipRange.Contains(ipRange.To()) {
		return 0, 0, fmt.Errorf("ip range %s, does not fit in the range from %s to %s", rng, r.ipRange.From().String(), r.ipRange.To().String())
	}
	from := calculateIndex(ipRange.From(), r.ipRange.From())
	to := calculateIndex(ipRange.To(), r.ipRange.From())
	return from, to - from + 1, nil
}

func calculateIndex(ip, start netip.Addr) int64 {
	return new(big.Int).Sub(ipToInt(ip), ipToInt(start)).Int64()
}

func numIPs(startIP, endIP netip.Addr) (int64, error) {
	diff := new(big.Int).Sub(ipToInt(endIP), ipToInt(startIP))
	// the last index must stay addressable as an int64
	if !diff.IsInt64() || diff.Int64() == (1<<63)-1 {
		return 0, fmt.Errorf("ip range from %s to %s holds too many addresses", startIP.String(), endIP.String())
	}
	return diff.Int64() + 1, nil
}

func ipToInt(ip netip.Addr) *big.Int {
	bytes := ip.As16()
	ipInt := new(big.Int)
	ipInt.SetBytes(bytes[:])
	return ipInt
}

func calculateIPFromIndex(startIP netip.Addr, id int64) netip.Addr {
	ipInt := new(big.Int).Add(ipToInt(startIP), big.NewInt(id))
	ipBytes := ipInt.Bytes()

	if len(ipBytes) < 16 {
		// pad with leading zeros
		paddedBytes := make([]byte, 16-len(ipBytes))
		ipBytes = append(paddedBytes, ipBytes...)
	}

	var ip16 [16]byte
	copy(ip16[:], ipBytes)

	if startIP.Is4() {
		return netip.AddrFrom4(netip.AddrFrom16(ip16).As4())
	}
	return netip.AddrFrom16(ip16)
}
