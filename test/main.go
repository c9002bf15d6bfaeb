package main

import (
	"flag"
	"fmt"
	"net/netip"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/hansthienpondt/nipam/pkg/table"
	"github.com/henderiw/idxrange/pkg/interval"
	"github.com/henderiw/idxrange/pkg/intervallist"
	"github.com/henderiw/idxrange/pkg/iptable"
	"github.com/henderiw/idxrange/pkg/vlantable"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/selection"
	"k8s.io/klog/v2"
)

var values = []struct {
	from   int64
	to     int64
	labels map[string]string
}{
	{from: 100, to: 100, labels: map[string]string{"a": "b"}},
	{from: 101, to: 101, labels: map[string]string{"a": "b"}},
	{from: 200, to: 210},
	{from: 300, to: 300},
	{from: 2000, to: 3000, labels: map[string]string{"range": "range1"}},
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	log := klog.NewKlogr()

	collapse(log, 10_000)

	vt, err := vlantable.NewWithLogger(log)
	if err != nil {
		panic(err)
	}
	for _, v := range values {
		if err := vt.ClaimRange(v.from, v.to-v.from+1, v.labels); err != nil {
			panic(err)
		}
	}
	fmt.Println("vlan ranges", vt.Ranges())

	ls, err := GetLabelSelector(map[string]string{"a": "b"})
	if err != nil {
		panic(err)
	}
	for id, l := range vt.GetByLabel(ls) {
		fmt.Println("entries by label", id, l)
	}

	from, to, err := interval.ParseRange("1000-1999")
	if err != nil {
		panic(err)
	}
	if err := vt.ClaimRange(from, to-from+1, map[string]string{"range": "test"}); err != nil {
		fmt.Println(err)
	}

	handleId(vt, 2500)
	handleId(vt, 1000)
	handleId(vt, 4000)
	fmt.Println("vlan ranges", vt.Ranges())

	it, err := iptable.New(netip.MustParseAddr("10.0.0.0"), netip.MustParseAddr("10.0.0.255"))
	if err != nil {
		panic(err)
	}
	if err := it.ClaimRange("10.0.0.1-10.0.0.10", table.Route{}); err != nil {
		panic(err)
	}
	free, err := it.Free()
	if err != nil {
		panic(err)
	}
	fmt.Println("ip ranges", it.Ranges(), "free", free.Ranges())
}

// collapse adds n singletons with distinct data and overwrites them with one
// spanning range.
func collapse(log logr.Logger, n int64) {
	l, err := intervallist.New(
		intervallist.WithEquals[string](intervallist.Equal[string]),
		intervallist.WithLogger[string](log.WithName("collapse").V(2)),
	)
	if err != nil {
		panic(err)
	}
	for i := int64(0); i < n; i++ {
		if err := l.Add(i, i, strconv.FormatInt(i, 10)); err != nil {
			panic(err)
		}
	}
	log.Info("singletons added", "intervals", l.Size())

	if err := l.Add(0, n, "all"); err != nil {
		panic(err)
	}
	log.Info("collapsed", "intervals", l.Size(), "list", l.String())
}

func handleId(vt vlantable.VLANTable, id int64) {
	l, err := vt.Get(id)
	if err != nil {
		fmt.Println(err)
		if err := vt.Claim(id, nil); err != nil {
			fmt.Println(err)
		}
		if _, err := vt.Get(id); err != nil {
			panic(err)
		}
		return
	}
	fmt.Println("entry exists", id, l)
}

func GetLabelSelector(l map[string]string) (labels.Selector, error) {
	fullselector := labels.NewSelector()
	for k, v := range l {
		req, err := labels.NewRequirement(k, selection.Equals, []string{v})
		if err != nil {
			return nil, err
		}
		fullselector = fullselector.Add(*req)
	}
	return fullselector, nil
}
