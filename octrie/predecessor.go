// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package octrie

import "github.com/cilium/predtrie/predresult"

// Predecessor returns the largest key in the tree that is <= x (spec.md
// §4.D step 3). Descent tracks a running candidate: whenever a node holds
// an in-node predecessor, that key becomes the new candidate and the
// search continues one child to its right (the only place a closer
// predecessor could still be hiding); otherwise it continues into the
// leftmost child, since every key in this node is already greater than x.
func (t *Tree) Predecessor(x uint64) predresult.PredResult {
	if t.root == noRef {
		return predresult.PredResult{}
	}

	var best predresult.PredResult
	cur := t.root
	for {
		n := t.at(cur)
		res := n.Predecessor(x)
		childIdx := 0
		if res.Exists {
			best = predresult.PredResult{Exists: true, Pos: n.Keys()[res.Pos]}
			childIdx = res.Pos + 1
		}
		if n.isLeaf {
			return best
		}
		cur = n.children[childIdx]
	}
}
