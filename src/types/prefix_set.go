package types

import (
	"slices"

	"github.com/gaissmai/bart"
)

// PrefixSet is an immutable collection of prefixes denoting the union of their ranges.
// It is sorted by address, then by prefix length, but not necessarily minimal.
type PrefixSet struct {
	prefixes []Prefix
}

func NewPrefixSet(prefixes []Prefix) PrefixSet {
	list := slices.Clone(prefixes)
	slices.SortFunc(list, Prefix.Compare)

	return PrefixSet{prefixes: list}
}

// NewSortedPrefixSet takes ownership of an already sorted slice.
func NewSortedPrefixSet(prefixes []Prefix) PrefixSet {
	return PrefixSet{prefixes: prefixes}
}

func ParsePrefixSet(prefixes ...string) PrefixSet {
	list := make([]Prefix, len(prefixes))
	for i, prefix := range prefixes {
		list[i] = MustParsePrefix(prefix)
	}

	return NewPrefixSet(list)
}

func (s PrefixSet) Len() int {
	return len(s.prefixes)
}

func (s PrefixSet) IsEmpty() bool {
	return len(s.prefixes) == 0
}

func (s PrefixSet) At(i int) Prefix {
	return s.prefixes[i]
}

func (s PrefixSet) Prefixes() []Prefix {
	return slices.Clone(s.prefixes)
}

// Size is the count of addresses, counting overlaps once per member.
func (s PrefixSet) Size() uint64 {
	var size uint64
	for _, prefix := range s.prefixes {
		size += prefix.Size()
	}

	return size
}

func (s PrefixSet) Equal(o PrefixSet) bool {
	return slices.Equal(s.prefixes, o.prefixes)
}

func (s PrefixSet) Strings(hostSuffix bool) []string {
	out := make([]string, len(s.prefixes))
	for i, prefix := range s.prefixes {
		if hostSuffix {
			out[i] = prefix.String()
		} else {
			out[i] = prefix.HostString()
		}
	}

	return out
}

// Table indexes the set for fast containment and overlap queries.
func (s PrefixSet) Table() *bart.Lite {
	table := new(bart.Lite)
	for _, prefix := range s.prefixes {
		table.Insert(prefix.Netip())
	}

	return table
}
