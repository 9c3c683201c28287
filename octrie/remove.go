// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package octrie

import "github.com/cilium/predtrie/fusion"

// Remove deletes x from the tree if present, reporting whether it was
// found (spec.md §4.D "Deletions").
func (t *Tree) Remove(x uint64) bool {
	if t.root == noRef {
		return false
	}
	ref, idx, found := t.find(x)
	if !found {
		return false
	}

	n := t.at(ref)
	if n.isLeaf {
		n.Node.Remove(x)
		t.size--
		t.rebalance(ref)
		return true
	}

	// x lives in an internal node: replace it with its in-order
	// predecessor (the rightmost key of the left child's subtree), which
	// is always a leaf key, then delete that leaf key instead.
	predRef, predIdx := t.maxLeaf(n.children[idx])
	predNode := t.at(predRef)
	predKey := predNode.Keys()[predIdx]

	n.Node.Remove(x)
	n.Node.Insert(predKey)
	predNode.Node.Remove(predKey)
	t.size--
	t.rebalance(predRef)
	return true
}

// find locates x, returning the node holding it and its index within that
// node's keys, mirroring the descent in Insert/Predecessor.
func (t *Tree) find(x uint64) (nodeRef, int, bool) {
	cur := t.root
	for cur != noRef {
		n := t.at(cur)
		res := n.Predecessor(x)
		if res.Exists && n.Keys()[res.Pos] == x {
			return cur, res.Pos, true
		}
		if n.isLeaf {
			return noRef, 0, false
		}
		childIdx := 0
		if res.Exists {
			childIdx = res.Pos + 1
		}
		cur = n.children[childIdx]
	}
	return noRef, 0, false
}

// maxLeaf descends to the rightmost leaf of the subtree rooted at ref,
// returning that leaf and the index of its largest key.
func (t *Tree) maxLeaf(ref nodeRef) (nodeRef, int) {
	cur := ref
	for {
		n := t.at(cur)
		if n.isLeaf {
			return cur, n.Len() - 1
		}
		cur = n.children[n.childCount-1]
	}
}

// rebalance restores the minKeys invariant on the path from ref up to the
// root after a single-key deletion, borrowing from a sibling when one has
// spare keys or merging with one otherwise, cascading upward as needed
// (spec.md §4.D: "rotation with sibling, merge on underflow").
func (t *Tree) rebalance(ref nodeRef) {
	for {
		n := t.at(ref)
		if ref == t.root {
			if !n.isLeaf && n.childCount == 1 {
				child := n.children[0]
				t.at(child).parent = noRef
				t.root = child
				t.release(ref)
			}
			return
		}
		if n.Len() >= minKeys {
			return
		}

		parentRef := n.parent
		parent := t.at(parentRef)
		idx := n.idx

		if idx > 0 && t.at(parent.children[idx-1]).Len() > minKeys {
			t.borrowFromLeft(parentRef, idx)
			return
		}
		if idx < parent.childCount-1 && t.at(parent.children[idx+1]).Len() > minKeys {
			t.borrowFromRight(parentRef, idx)
			return
		}

		if idx > 0 {
			t.mergeChildren(parentRef, idx-1)
		} else {
			t.mergeChildren(parentRef, idx)
		}
		ref = parentRef
	}
}

// borrowFromLeft rotates a key through the parent from the left sibling of
// parent.children[idx] into that child.
func (t *Tree) borrowFromLeft(parentRef nodeRef, idx int) {
	parent := t.at(parentRef)
	leftRef := parent.children[idx-1]
	nRef := parent.children[idx]
	left := t.at(leftRef)
	n := t.at(nRef)

	sepKey := parent.Keys()[idx-1]
	leftKeys := left.Keys()
	borrowed := leftKeys[len(leftKeys)-1]

	newNKeys := make([]uint64, 0, n.Len()+1)
	newNKeys = append(newNKeys, sepKey)
	newNKeys = append(newNKeys, n.Keys()...)
	n.Node.ResetFrom(newNKeys)

	newParentKeys := append([]uint64(nil), parent.Keys()...)
	newParentKeys[idx-1] = borrowed
	parent.Node.ResetFrom(newParentKeys)

	newLeftKeys := append([]uint64(nil), leftKeys[:len(leftKeys)-1]...)

	isLeaf := n.isLeaf
	var movedChild nodeRef
	if !isLeaf {
		movedChild = left.children[left.childCount-1]
		left.childCount--
	}
	left.Node.ResetFrom(newLeftKeys)

	if !isLeaf {
		oldCount := n.childCount
		for i := oldCount; i > 0; i-- {
			t.setChild(nRef, i, n.children[i-1])
		}
		t.setChild(nRef, 0, movedChild)
		n.childCount++
	}
}

// borrowFromRight rotates a key through the parent from the right sibling
// of parent.children[idx] into that child.
func (t *Tree) borrowFromRight(parentRef nodeRef, idx int) {
	parent := t.at(parentRef)
	nRef := parent.children[idx]
	rightRef := parent.children[idx+1]
	n := t.at(nRef)
	right := t.at(rightRef)

	sepKey := parent.Keys()[idx]
	rightKeys := right.Keys()
	borrowed := rightKeys[0]

	newNKeys := append(append([]uint64(nil), n.Keys()...), sepKey)
	n.Node.ResetFrom(newNKeys)

	newParentKeys := append([]uint64(nil), parent.Keys()...)
	newParentKeys[idx] = borrowed
	parent.Node.ResetFrom(newParentKeys)

	newRightKeys := append([]uint64(nil), rightKeys[1:]...)

	isLeaf := n.isLeaf
	var movedChild nodeRef
	if !isLeaf {
		movedChild = right.children[0]
		for i := 0; i < right.childCount-1; i++ {
			t.setChild(rightRef, i, right.children[i+1])
		}
		right.childCount--
	}
	right.Node.ResetFrom(newRightKeys)

	if !isLeaf {
		t.setChild(nRef, n.childCount, movedChild)
		n.childCount++
	}
}

// mergeChildren folds parent.children[leftIdx+1] and the separator key
// parent.Keys()[leftIdx] into parent.children[leftIdx], releasing the
// right sibling. The merged node never exceeds fusion.MaxKeys keys: the
// rebalance loop only ever merges a node holding minKeys-1 keys with a
// sibling holding exactly minKeys keys, since a sibling with fewer would
// itself already have been rebalanced.
func (t *Tree) mergeChildren(parentRef nodeRef, leftIdx int) {
	parent := t.at(parentRef)
	leftRef := parent.children[leftIdx]
	rightRef := parent.children[leftIdx+1]
	left := t.at(leftRef)
	right := t.at(rightRef)

	sepKey := parent.Keys()[leftIdx]
	merged := make([]uint64, 0, fusion.MaxKeys)
	merged = append(merged, left.Keys()...)
	merged = append(merged, sepKey)
	merged = append(merged, right.Keys()...)

	isLeaf := left.isLeaf
	var mergedChildren []nodeRef
	if !isLeaf {
		mergedChildren = append(mergedChildren, left.children[:left.childCount]...)
		mergedChildren = append(mergedChildren, right.children[:right.childCount]...)
	}

	left.Node.ResetFrom(merged)
	if !isLeaf {
		left.childCount = len(mergedChildren)
		for i, c := range mergedChildren {
			t.setChild(leftRef, i, c)
		}
	}
	t.release(rightRef)

	newParentKeys := make([]uint64, 0, parent.Len()-1)
	for i, k := range parent.Keys() {
		if i != leftIdx {
			newParentKeys = append(newParentKeys, k)
		}
	}
	parent.Node.ResetFrom(newParentKeys)

	for i := leftIdx + 1; i < parent.childCount-1; i++ {
		t.setChild(parentRef, i, parent.children[i+1])
	}
	parent.childCount--
}
