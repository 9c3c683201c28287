// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

// Package batch implements the Batched Index (spec.md §4.F): a Sampling
// Index fronted by a deferred insert buffer, amortizing repeated top-layer
// updates when inserts arrive in clusters.
package batch

import (
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/cilium/predtrie/predresult"
	"github.com/cilium/predtrie/sindex"
)

// defaultThreshold is the buffer size at which Insert wants to flush.
const defaultThreshold = 1024

// hardCapFactor bounds how many threshold-crossings the rate limiter may
// defer before Insert flushes unconditionally, so a denied Allow() can
// throttle repeated threshold-crossings without letting the buffer grow
// without bound.
const hardCapFactor = 4

// Index wraps a sindex.Index with a deferred insert buffer (spec.md §4.F).
// Insertions accumulate in the buffer; a flush sorts the buffer ascending
// and streams it into the underlying Index. A flush happens when the
// buffer has crossed its size threshold and the rate limiter allows it
// (amortizing repeated top-layer updates for clustered inserts without
// letting a pathological re-crossing pattern thrash the underlying Index),
// when the buffer has grown well past the threshold regardless of the
// limiter, on an explicit Flush call, or before any query.
type Index struct {
	underlying *sindex.Index
	buf        []uint64
	threshold  int
	limiter    *rate.Limiter
}

// New returns an empty Batched Index over a Sampling Index sampled at s
// bits using the given bucket representation.
func New(s uint, kind sindex.BucketKind) *Index {
	return &Index{
		underlying: sindex.New(s, kind),
		threshold:  defaultThreshold,
		limiter:    rate.NewLimiter(rate.Every(10*time.Millisecond), 1),
	}
}

// Insert buffers k for the next flush.
func (idx *Index) Insert(k uint64) {
	idx.buf = append(idx.buf, k)
	crossed := len(idx.buf) >= idx.threshold
	if crossed && idx.limiter.Allow() {
		idx.Flush()
		return
	}
	if len(idx.buf) >= idx.threshold*hardCapFactor {
		idx.Flush()
	}
}

// Flush sorts the buffer ascending and streams it into the underlying
// Index, then empties the buffer.
func (idx *Index) Flush() {
	if len(idx.buf) == 0 {
		return
	}
	sort.Slice(idx.buf, func(i, j int) bool { return idx.buf[i] < idx.buf[j] })
	for _, k := range idx.buf {
		idx.underlying.Insert(k)
	}
	idx.buf = idx.buf[:0]
}

// Predecessor flushes any buffered inserts, then queries the underlying
// Index (spec.md §4.F: "Queries force a flush first").
func (idx *Index) Predecessor(x uint64) predresult.PredResult {
	idx.Flush()
	return idx.underlying.Predecessor(x)
}

// Size flushes any buffered inserts, then reports the underlying Index's
// size.
func (idx *Index) Size() int {
	idx.Flush()
	return idx.underlying.Size()
}
