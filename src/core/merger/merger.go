// Package merger aggregates prefixes into the minimal set covering the same addresses.
package merger

import (
	"cmp"
	"math"
	"math/bits"
	"slices"

	"github.com/cnaize/blgen/lib/util"
	"github.com/cnaize/blgen/src/types"
)

// Merge returns the minimal prefix set covering exactly the addresses of set.
func Merge(set types.PrefixSet) types.PrefixSet {
	return FromRanges(Ranges(set.Prefixes()))
}

// Ranges converts prefixes to the sorted list of maximal disjoint, non-adjacent ranges.
func Ranges(prefixes []types.Prefix) []types.Range {
	if len(prefixes) == 0 {
		return nil
	}

	ranges := make([]types.Range, len(prefixes))
	for i, prefix := range prefixes {
		ranges[i] = prefix.Range()
	}
	sortRanges(ranges)

	return sweep(ranges)
}

// MergeRanges merges an unsorted list of ranges.
func MergeRanges(ranges []types.Range) []types.Range {
	if len(ranges) == 0 {
		return nil
	}

	sorted := slices.Clone(ranges)
	sortRanges(sorted)

	return sweep(sorted)
}

// sortRanges orders by start, longest first, so a covering range precedes the ones it covers.
func sortRanges(ranges []types.Range) {
	slices.SortFunc(ranges, func(a, b types.Range) int {
		if c := cmp.Compare(a.First, b.First); c != 0 {
			return c
		}
		return cmp.Compare(b.Last, a.Last)
	})
}

func sweep(sorted []types.Range) []types.Range {
	merged := make([]types.Range, 0, len(sorted))
	cur := sorted[0]
	for _, r := range sorted[1:] {
		// uint64 avoids wrapping when cur ends at 255.255.255.255
		if uint64(r.First) <= uint64(cur.Last)+1 {
			cur.Last = max(cur.Last, r.Last)
			continue
		}

		merged = append(merged, cur)
		cur = r
	}

	return append(merged, cur)
}

// Decompose splits a range into the fewest CIDR prefixes covering exactly it.
func Decompose(r types.Range) []types.Prefix {
	var prefixes []types.Prefix

	start, end := uint64(r.First), uint64(r.Last)
	for start <= end {
		// largest block aligned at start
		size := bits.TrailingZeros32(uint32(start))
		for size > 0 && start+(uint64(1)<<size)-1 > end {
			size--
		}

		prefixes = append(prefixes, types.NewPrefix(uint32(start), uint8(types.MaxBits-size)))
		start += uint64(1) << size
	}

	return prefixes
}

// FromRanges decomposes sorted, disjoint, non-adjacent ranges into a minimal prefix set.
func FromRanges(ranges []types.Range) types.PrefixSet {
	var prefixes []types.Prefix
	for _, r := range ranges {
		prefixes = append(prefixes, Decompose(r)...)
	}

	set := types.NewSortedPrefixSet(prefixes)
	Verify(set)

	return set
}

// Verify panics if set is not in minimal form.
func Verify(set types.PrefixSet) {
	for i := 0; i < set.Len(); i++ {
		cur := set.At(i)
		util.Assert(cur == types.NewPrefix(cur.Addr, cur.Bits), "%s: host bits set", cur)

		if i == 0 {
			continue
		}

		prev := set.At(i - 1)
		util.Assert(prev.Last() < cur.First(), "%s and %s: overlap or out of order", prev, cur)
		util.Assert(!mergeable(prev, cur), "%s and %s: unmerged siblings", prev, cur)
	}
}

// Minimal reports whether set is in minimal form without panicking.
func Minimal(set types.PrefixSet) bool {
	for i := 1; i < set.Len(); i++ {
		prev, cur := set.At(i-1), set.At(i)
		if prev.Last() >= cur.First() || mergeable(prev, cur) {
			return false
		}
	}

	return true
}

func mergeable(a, b types.Prefix) bool {
	if a.Bits != b.Bits || a.Bits == 0 {
		return false
	}

	parent := types.NewPrefix(a.Addr, a.Bits-1)
	return parent.Addr == a.Addr && a.Last() != math.MaxUint32 && a.Last()+1 == b.First() && parent.Covers(b)
}
