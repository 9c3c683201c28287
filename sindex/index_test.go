// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package sindex_test

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"testing/quick"

	"github.com/cilium/predtrie/predresult"
	"github.com/cilium/predtrie/sindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearPredecessor(s []uint64, x uint64) predresult.PredResult {
	best := -1
	for i, k := range s {
		if k <= x && (best < 0 || k > s[best]) {
			best = i
		}
	}
	if best < 0 {
		return predresult.PredResult{}
	}
	return predresult.PredResult{Exists: true, Pos: s[best]}
}

func TestIndex_BoundaryScenarios(t *testing.T) {
	cases := []struct {
		keys []uint64
		x    uint64
		want predresult.PredResult
	}{
		{nil, 0, predresult.PredResult{Exists: false, Pos: 1}},
		{[]uint64{5}, 4, predresult.PredResult{Exists: false, Pos: 0}},
		{[]uint64{5}, 5, predresult.PredResult{Exists: true, Pos: 5}},
		{[]uint64{5}, 6, predresult.PredResult{Exists: true, Pos: 5}},
		{[]uint64{1, 3, 7, 15, 31}, 10, predresult.PredResult{Exists: true, Pos: 7}},
		{[]uint64{1, 3, 7, 15, 31}, 31, predresult.PredResult{Exists: true, Pos: 31}},
		{[]uint64{1, 3, 7, 15, 31}, 100, predresult.PredResult{Exists: true, Pos: 31}},
	}
	for _, kind := range []sindex.BucketKind{sindex.Bitset, sindex.List} {
		for _, c := range cases {
			idx := sindex.New(4, kind)
			for _, k := range c.keys {
				idx.Insert(k)
			}
			got := idx.Predecessor(c.x)
			assert.Equal(t, c.want, got, "kind=%v keys=%v x=%d", kind, c.keys, c.x)
		}
	}
}

// TestEndToEndScenario is spec.md §8's literal Octrie+Index agreement
// scenario, checked against a reference sorted slice for both bucket kinds.
func TestEndToEndScenario(t *testing.T) {
	seq := []uint64{17, 3, 29, 11, 41, 5, 23, 37, 13, 19, 31, 7, 43, 47, 2, 53, 61, 59, 67, 71}
	for _, kind := range []sindex.BucketKind{sindex.Bitset, sindex.List} {
		idx := sindex.New(3, kind)
		var ref []uint64
		for _, k := range seq {
			idx.Insert(k)
			ref = append(ref, k)
		}
		sort.Slice(ref, func(i, j int) bool { return ref[i] < ref[j] })

		for x := uint64(0); x <= 80; x++ {
			want := linearPredecessor(ref, x)
			got := idx.Predecessor(x)
			assert.Equal(t, want, got, "kind=%v x=%d", kind, x)
		}
	}
}

// TestIndexKindsAgree is testable property 6: bitset and list Indexes
// (and, elsewhere, the Octrie) agree on predecessor for identical input.
func TestIndexKindsAgree(t *testing.T) {
	f := func(raw []uint16, x uint16) bool {
		bIdx := sindex.New(5, sindex.Bitset)
		lIdx := sindex.New(5, sindex.List)
		seen := map[uint64]bool{}
		for _, v := range raw {
			k := uint64(v)
			if seen[k] {
				continue
			}
			seen[k] = true
			bIdx.Insert(k)
			lIdx.Insert(k)
		}
		return bIdx.Predecessor(uint64(x)) == lIdx.Predecessor(uint64(x))
	}
	cfg := &quick.Config{MaxCount: 300, Rand: rand.New(rand.NewSource(5))}
	require.NoError(t, quick.Check(f, cfg))
}

// TestQuick_MatchesLinearScan fuzzes random insertion sequences across a
// spread of sampling widths, including cases that exercise upward universe
// growth (Case B), prepending (Case C), and gap-splice (Case E).
func TestQuick_MatchesLinearScan(t *testing.T) {
	f := func(raw []uint16, x uint16, sBits uint8) bool {
		s := uint(sBits%6) + 1
		idx := sindex.New(s, sindex.Bitset)
		seen := map[uint64]bool{}
		var ref []uint64
		for _, v := range raw {
			k := uint64(v)
			if seen[k] {
				continue
			}
			seen[k] = true
			ref = append(ref, k)
			idx.Insert(k)
		}
		sort.Slice(ref, func(i, j int) bool { return ref[i] < ref[j] })
		return idx.Predecessor(uint64(x)) == linearPredecessor(ref, uint64(x))
	}
	cfg := &quick.Config{MaxCount: 500, Rand: rand.New(rand.NewSource(6))}
	require.NoError(t, quick.Check(f, cfg))
}

func TestIndex_Size(t *testing.T) {
	idx := sindex.New(4, sindex.Bitset)
	for i, k := range []uint64{17, 3, 29, 11} {
		idx.Insert(k)
		assert.Equal(t, i+1, idx.Size())
	}
}

func TestIndex_Changes(t *testing.T) {
	idx := sindex.New(4, sindex.Bitset)
	var got []uint64
	done := make(chan struct{})
	idx.Changes().Observe(context.Background(), func(k uint64) { got = append(got, k) }, func(error) { close(done) })

	idx.Insert(5)
	idx.Insert(9)
	idx.Close()
	<-done

	assert.Equal(t, []uint64{5, 9}, got)
}
