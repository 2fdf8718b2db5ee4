package types

import (
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/gaissmai/bart"
)

type snapshot struct {
	set     PrefixSet
	table   *bart.Table[Prefix]
	updated time.Time
}

// BlackList holds the latest published prefix set.
// WARNING: lock free, but NOT thread safe for concurrent Store
type BlackList struct {
	list atomic.Pointer[snapshot]
}

func NewBlackList() *BlackList {
	var l BlackList
	l.list.Store(&snapshot{table: new(bart.Table[Prefix])})

	return &l
}

func (l *BlackList) Load() PrefixSet {
	return l.list.Load().set
}

func (l *BlackList) Updated() time.Time {
	return l.list.Load().updated
}

func (l *BlackList) Store(set PrefixSet) {
	table := new(bart.Table[Prefix])
	for i := 0; i < set.Len(); i++ {
		prefix := set.At(i)
		table.Insert(prefix.Netip(), prefix)
	}

	l.list.Store(&snapshot{
		set:     set,
		table:   table,
		updated: time.Now(),
	})
}

// LookupPrefix returns the most specific published prefix covering addr.
func (l *BlackList) LookupPrefix(addr netip.Addr) (Prefix, bool) {
	return l.list.Load().table.Lookup(addr)
}
