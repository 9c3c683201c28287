// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package fusion

// Node owns a tiny sorted set of at most MaxKeys keys together with their
// fusion-node summary, rebuilding the summary on every mutation — correct
// because n <= MaxKeys bounds the rebuild cost by a constant (spec.md
// §4.C).
type Node struct {
	keys    [MaxKeys]uint64
	summary Summary
	n       int
}

// Len reports the number of keys currently held.
func (fn *Node) Len() int { return fn.n }

// Keys returns the live prefix of the key array, in ascending order. The
// returned slice aliases Node's storage and must not be retained past the
// next mutation.
func (fn *Node) Keys() []uint64 { return fn.keys[:fn.n] }

// Insert adds x to the node in sorted order and rebuilds the summary.
// Panics if the node is already full (spec.md §7:
// precondition-violated is fatal) or if x is already present, since
// duplicate keys are unsupported (spec.md §1 Non-goals).
func (fn *Node) Insert(x uint64) {
	if fn.n >= MaxKeys {
		panic("fusion: Insert called on a full node")
	}
	idx := 0
	for idx < fn.n && fn.keys[idx] < x {
		idx++
	}
	if idx < fn.n && fn.keys[idx] == x {
		panic("fusion: Insert called with a duplicate key")
	}
	copy(fn.keys[idx+1:fn.n+1], fn.keys[idx:fn.n])
	fn.keys[idx] = x
	fn.n++
	fn.rebuild()
}

// Remove deletes x from the node if present, reporting whether it was
// found, and rebuilds the summary.
func (fn *Node) Remove(x uint64) bool {
	idx := -1
	for i := 0; i < fn.n; i++ {
		if fn.keys[i] == x {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	copy(fn.keys[idx:fn.n-1], fn.keys[idx+1:fn.n])
	fn.n--
	if fn.n > 0 {
		fn.rebuild()
	} else {
		fn.summary = Summary{}
	}
	return true
}

// Predecessor returns the predecessor of x among the node's current keys.
func (fn *Node) Predecessor(x uint64) PredResult {
	if fn.n == 0 {
		return PredResult{}
	}
	return Predecessor(fn.keys, fn.n, fn.summary, x)
}

func (fn *Node) rebuild() {
	fn.summary = Build(fn.keys, fn.n)
}

// BuildFrom constructs a Node directly from a sorted slice of up to
// MaxKeys keys, for bulk construction (e.g. an Octrie leaf split).
func BuildFrom(sorted []uint64) Node {
	if len(sorted) > MaxKeys {
		panic("fusion: BuildFrom called with more than MaxKeys keys")
	}
	var fn Node
	fn.n = copy(fn.keys[:], sorted)
	if fn.n > 0 {
		fn.rebuild()
	}
	return fn
}

// ResetFrom replaces the node's contents with sorted (up to MaxKeys keys,
// ascending) and rebuilds the summary. Used by the Octrie to reuse a node's
// storage in place after a split rather than allocating a fresh one.
func (fn *Node) ResetFrom(sorted []uint64) {
	if len(sorted) > MaxKeys {
		panic("fusion: ResetFrom called with more than MaxKeys keys")
	}
	fn.n = copy(fn.keys[:], sorted)
	for i := fn.n; i < MaxKeys; i++ {
		fn.keys[i] = 0
	}
	if fn.n > 0 {
		fn.rebuild()
	} else {
		fn.summary = Summary{}
	}
}
