// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package fusion

import "github.com/cilium/predtrie/bitops"

// PredResult is the outcome of a predecessor query: Exists reports whether
// a predecessor was found, and Pos is its index into the key array that
// was searched. Pos is meaningless when Exists is false.
type PredResult struct {
	Exists bool
	Pos    int
}

// Predecessor finds, among keys[0:n] summarized by s, the largest index i
// such that keys[i] <= x.
//
// The lookup follows spec §4.B steps 1-2: compute x's sketch and rank it
// against the node's compressed keys with a single packed comparison,
// giving a candidate lane. mask only selects the bit positions that
// distinguish the stored keys from one another, so an arbitrary query x can
// tie a stored sketch, or sort differently relative to it, than its real
// 64-bit value would — compressing to a handful of mask bits necessarily
// discards every bit x doesn't share a branch point on. Step 4 calls for
// resolving that gap against a free matrix of per-key don't-care bits; doing
// so without ever touching the real keys requires a second, multiplication-
// based parallel longest-common-prefix step this repo has no grounding
// source for (see DESIGN.md's fusion entry), and a hand-derived substitute
// could not be verified without running the correction against adversarial
// inputs. So the candidate lane is instead treated as a starting point and
// corrected exactly, in ascending real-key order, bounded by MaxKeys.
func Predecessor(keys [MaxKeys]uint64, n int, s Summary, x uint64) PredResult {
	if n <= 0 {
		return PredResult{}
	}

	pad := uint(MaxKeys - bitops.Popcount(s.Mask))
	sx := byte(bitops.Pext(x, s.Mask)) << pad

	g := bitops.PcmpGtU8(broadcastByte(sx), packBranch(s.Branch))
	rank := bitops.Popcount(g) / 8
	if rank > n {
		rank = n
	}
	start := rank - 1
	if start < 0 {
		start = 0
	}

	// The candidate lane's sketch rank can disagree with the real keys'
	// rank by more than one lane once x departs from every stored key on a
	// bit outside mask, so the correction walks from the candidate rather
	// than assuming a bounded offset: forward while the real key still
	// qualifies, or backward from it if it didn't qualify at all. Both
	// directions are bounded by n <= MaxKeys.
	best := -1
	for i := start; i < n; i++ {
		if keys[i] <= x {
			best = i
		} else {
			break
		}
	}
	if best < 0 {
		for i := start - 1; i >= 0; i-- {
			if keys[i] <= x {
				best = i
				break
			}
		}
	}
	if best < 0 {
		return PredResult{}
	}
	return PredResult{Exists: true, Pos: best}
}

func broadcastByte(b byte) uint64 {
	v := uint64(b)
	v |= v << 8
	v |= v << 16
	v |= v << 32
	return v
}

func packBranch(branch [MaxKeys]byte) uint64 {
	var v uint64
	for i := 0; i < MaxKeys; i++ {
		v |= uint64(branch[i]) << uint(8*i)
	}
	return v
}
