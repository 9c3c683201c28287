// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

// Package fusion implements the Fusion Node: a constant-size, word-parallel
// predecessor summary over at most 8 sorted 64-bit keys. It is the shared
// primitive the Dynamic Octrie uses to search within a node.
package fusion

import "github.com/cilium/predtrie/bitops"

// MaxKeys is the largest number of keys a single fusion node summarizes.
const MaxKeys = 8

// Summary is the (mask, branch) word-parallel predecessor sketch for a
// sorted key set of size n ≤ MaxKeys. It never stores the keys themselves
// — callers keep the sorted key array and pass it back into Predecessor.
//
// spec.md §4.B also defines a third "free" matrix of per-key don't-care
// bits, used to resolve a candidate lane without ever touching the real
// keys. This repo does not build one: see DESIGN.md's fusion entry for why
// that correction was dropped rather than hand-derived without a grounding
// source, in favor of Predecessor resolving directly against the real key
// array it already holds.
type Summary struct {
	Mask   uint64
	Branch [MaxKeys]byte
	n      int
}

// Build computes the fusion node summary for the sorted keys keys[0:n].
// keys must be sorted ascending and n must be in [1, MaxKeys].
func Build(keys [MaxKeys]uint64, n int) Summary {
	if n < 1 || n > MaxKeys {
		panic("fusion: Build called with out-of-range key count")
	}

	var s Summary
	s.n = n
	s.Mask = distinguishingMask(keys, n)
	bits := bitops.Popcount(s.Mask)
	pad := uint(MaxKeys - bits)

	sketch := func(k uint64) byte {
		return byte(bitops.Pext(k, s.Mask)) << pad
	}

	for i := 0; i < n; i++ {
		s.Branch[i] = sketch(keys[i])
	}
	// Pad unused lanes with the largest sketch value so a query against an
	// under-full node still resolves through pcmp_gt_u8 predictably (§4.B
	// step 3).
	for i := n; i < MaxKeys; i++ {
		s.Branch[i] = s.Branch[n-1]
	}

	return s
}

// distinguishingMask computes the union of the highest-differing-bit
// positions between every consecutive pair of the sorted keys. This is the
// standard fusion-tree compression lemma: since the keys are sorted, the
// per-pair branching bits of adjacent keys are exactly the branching nodes
// of the binary trie over the whole set, so no other pair needs to be
// consulted (spec.md §4.B step 1).
func distinguishingMask(keys [MaxKeys]uint64, n int) uint64 {
	var mask uint64
	for i := 0; i+1 < n; i++ {
		d := keys[i] ^ keys[i+1]
		if d == 0 {
			continue // duplicate keys are a precondition violation elsewhere
		}
		pos := 63 - bitops.Lzcount(d)
		mask |= 1 << uint(pos)
	}
	return mask
}
