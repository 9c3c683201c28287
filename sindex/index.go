// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

// Package sindex implements the Sampling Index (spec.md §4.E): a two-level
// universe-partitioned predecessor structure over 64-bit keys, parameterized
// by a sampling width s that trades top-layer memory for bucket scan cost.
package sindex

import (
	"github.com/cilium/predtrie/predresult"
	"github.com/cilium/stream"
)

// Index is a Sampling Index over a 2^40 effective universe, sampled at s
// bits (spec.md §4.E). The zero value is not usable; construct with New.
// Deletion is not supported: Index has no Remove method.
type Index struct {
	s        uint
	kind     BucketKind
	sufMask  uint64
	xf       []*bucket // xf[p] is the bucket responsible for prefix p
	first    *bucket
	mMin     uint64
	mMax     uint64
	size     int
	changes  stream.Observable[uint64]
	emit     func(uint64)
	complete func(error)
}

// New returns an empty Sampling Index sampled at s bits using the given
// bucket representation.
func New(s uint, kind BucketKind) *Index {
	idx := &Index{s: s, kind: kind, sufMask: (uint64(1) << s) - 1}
	idx.changes, idx.emit, idx.complete = stream.Multicast[uint64]()
	return idx
}

// Size returns the number of keys inserted so far.
func (idx *Index) Size() int { return idx.size }

// Changes streams the key from every Insert call.
func (idx *Index) Changes() stream.Observable[uint64] { return idx.changes }

// Close releases the Changes observable. Call once the Index is no longer
// written to.
func (idx *Index) Close() { idx.complete(nil) }

// Insert adds k to the index (spec.md §4.E insert(k), Cases A-E).
func (idx *Index) Insert(k uint64) {
	pre := k >> idx.s
	suf := k & idx.sufMask
	var nb *bucket

	switch {
	case pre >= uint64(len(idx.xf)):
		if idx.size != 0 {
			// Case B: k extends the universe upward.
			last := idx.xf[len(idx.xf)-1]
			nb = newBucket(idx.kind, idx.s, pre, idx.mMax)
			nb.insertSuffix(suf)
			last.next = nb

			grown := make([]*bucket, pre+1)
			copy(grown, idx.xf)
			for i := len(idx.xf); i <= int(pre); i++ {
				grown[i] = last
			}
			idx.xf = grown
		} else {
			// Case A: the very first key.
			idx.mMin, idx.mMax = k, k
			nb = newBucket(idx.kind, idx.s, pre, 0)
			nb.next = idx.first
			idx.first = nb
			nb.insertSuffix(suf)
			idx.xf = make([]*bucket, pre+1)
		}

	case pre < idx.mMin>>idx.s:
		// Case C: k precedes every existing bucket.
		idx.first.prevPred = k
		nb = newBucket(idx.kind, idx.s, pre, 0)
		nb.next = idx.first
		idx.first = nb
		nb.insertSuffix(suf)

	default:
		keyBucket := idx.xf[pre]
		if keyBucket.prefix == pre {
			// Case D: exact bucket already exists.
			keyBucket.insertSuffix(suf)
			if keyBucket.next != nil && k > keyBucket.next.prevPred {
				keyBucket.next.prevPred = k
			}
			if k < idx.mMin {
				idx.mMin = k
			}
			if k > idx.mMax {
				idx.mMax = k
			}
			idx.size++
			idx.emit(k)
			return
		}

		// Case E: xf[pre] is a gap covered by a smaller-prefix bucket;
		// splice a new bucket in between it and its successor.
		nb = newBucket(idx.kind, idx.s, pre, 0)
		nb.next = keyBucket.next
		nb.insertSuffix(suf)
		keyBucket.next = nb
		nb.prevPred = nb.next.prevPred
		nb.next.prevPred = k
	}

	if k < idx.mMin {
		idx.mMin = k
	}
	if k > idx.mMax {
		idx.mMax = k
	}
	idx.xf[pre] = nb
	if pre+1 < uint64(len(idx.xf)) {
		nextBucket := idx.xf[pre+1]
		if nextBucket == nil || nextBucket.prefix < pre {
			for j := pre + 1; j < uint64(len(idx.xf)) && idx.xf[j] == nextBucket; j++ {
				idx.xf[j] = nb
			}
		}
	}
	idx.size++
	idx.emit(k)
}

// Predecessor returns the predecessor of x in the index's key set
// (spec.md §4.E predecessor(x)). For x >= the largest key, including x
// equal to it, the answer is that largest key, returned directly without
// consulting any bucket.
func (idx *Index) Predecessor(x uint64) predresult.PredResult {
	if idx.size == 0 {
		return predresult.PredResult{Exists: false, Pos: 1}
	}
	if x < idx.mMin {
		return predresult.PredResult{Exists: false, Pos: 0}
	}
	if x >= idx.mMax {
		return predresult.PredResult{Exists: true, Pos: idx.mMax}
	}

	pre := x >> idx.s
	suf := x & idx.sufMask
	b := idx.xf[pre]
	if b.prefix < pre {
		// Every suffix of a gap-covering bucket lies below x.
		suf = idx.sufMask
	}
	if v, ok := b.pred(suf); ok {
		// b may cover a gap at a smaller prefix than pre (Case E), so the
		// key is reconstructed from the bucket's own prefix, not pre's.
		return predresult.PredResult{Exists: true, Pos: v | (b.prefix << idx.s)}
	}
	// b holds nothing <= suf: b.prevPred is guaranteed a real key of S
	// whenever m_min <= x < m_max (spec.md §4.E invariant).
	return predresult.PredResult{Exists: true, Pos: b.prevPred}
}
