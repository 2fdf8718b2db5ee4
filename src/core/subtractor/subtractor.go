// Package subtractor removes whitelisted address space from a blacklist.
package subtractor

import (
	"github.com/cnaize/blgen/src/core/merger"
	"github.com/cnaize/blgen/src/types"
)

// Subtract returns the minimal prefix set covering every address of blacklist
// that is not covered by whitelist. A blacklist prefix partially overlapped by a
// whitelist prefix is split into the remainders.
func Subtract(blacklist, whitelist types.PrefixSet) types.PrefixSet {
	return merger.FromRanges(merger.MergeRanges(SubtractRanges(
		merger.Ranges(blacklist.Prefixes()),
		merger.Ranges(whitelist.Prefixes()),
	)))
}

// SubtractRanges subtracts w from b. Both must be sorted and disjoint.
func SubtractRanges(b, w []types.Range) []types.Range {
	var out []types.Range

	j := 0
	for _, br := range b {
		// skip whitelist ranges that end before this blacklist range
		for j < len(w) && w[j].Last < br.First {
			j++
		}

		// next uncovered address, uint64 to step past 255.255.255.255
		next := uint64(br.First)
		last := uint64(br.Last)
		for k := j; k < len(w) && uint64(w[k].First) <= last; k++ {
			wFirst, wLast := uint64(w[k].First), uint64(w[k].Last)
			if wFirst > next {
				// left remainder
				out = append(out, types.Range{First: uint32(next), Last: uint32(wFirst - 1)})
			}
			next = max(next, wLast+1)
			if next > last {
				break
			}
		}

		if next <= last {
			// right remainder
			out = append(out, types.Range{First: uint32(next), Last: uint32(last)})
		}
	}

	return out
}
