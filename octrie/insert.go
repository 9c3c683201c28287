// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package octrie

import "github.com/cilium/predtrie/fusion"

// Insert adds x to the tree. Re-inserting an existing key is a no-op
// (spec.md §4.D step 2, and testable property 4: idempotence).
func (t *Tree) Insert(x uint64) {
	if t.root == noRef {
		root := t.alloc()
		n := t.at(root)
		n.isLeaf = true
		n.Node.Insert(x)
		t.root = root
		t.size++
		return
	}

	cur := t.root
	for {
		n := t.at(cur)
		res := n.Predecessor(x)
		if res.Exists && n.Keys()[res.Pos] == x {
			return // duplicate: no-op
		}
		if n.isLeaf {
			t.insertIntoLeaf(cur, x)
			t.size++
			return
		}
		childIdx := 0
		if res.Exists {
			childIdx = res.Pos + 1
		}
		cur = n.children[childIdx]
	}
}

func (t *Tree) insertIntoLeaf(ref nodeRef, x uint64) {
	n := t.at(ref)
	if n.Len() < fusion.MaxKeys {
		n.Node.Insert(x)
		return
	}
	t.overflowInsert(ref, x, noRef)
}

// overflowInsert inserts newKey (and, when ref is internal, newChild
// immediately to its right) into the already-full node ref, splitting it
// and cascading the median key upward as needed (spec.md §4.D step 4).
func (t *Tree) overflowInsert(ref nodeRef, newKey uint64, newChild nodeRef) {
	n := t.at(ref)
	oldKeys := n.Keys() // length 8

	pos := 0
	for pos < len(oldKeys) && oldKeys[pos] < newKey {
		pos++
	}

	var merged [fusion.MaxKeys + 1]uint64
	copy(merged[:pos], oldKeys[:pos])
	merged[pos] = newKey
	copy(merged[pos+1:], oldKeys[pos:])

	isLeaf := n.isLeaf
	var mergedChildren [branchingFactor + 1]nodeRef
	if !isLeaf {
		oldChildren := n.children[:n.childCount] // length 9
		copy(mergedChildren[:pos+1], oldChildren[:pos+1])
		mergedChildren[pos+1] = newChild
		copy(mergedChildren[pos+2:], oldChildren[pos+1:])
	}

	const medianIdx = 4
	median := merged[medianIdx]
	leftKeys := merged[:medianIdx]
	rightKeys := merged[medianIdx+1:]

	// Reuse ref as the left half.
	n.Node.ResetFrom(leftKeys)
	if !isLeaf {
		n.childCount = medianIdx + 1
		for i := 0; i < n.childCount; i++ {
			t.setChild(ref, i, mergedChildren[i])
		}
	}

	rightRef := t.alloc()
	right := t.at(rightRef)
	right.isLeaf = isLeaf
	right.Node.ResetFrom(rightKeys)
	if !isLeaf {
		right.childCount = len(mergedChildren) - (medianIdx + 1)
		for i := 0; i < right.childCount; i++ {
			t.setChild(rightRef, i, mergedChildren[medianIdx+1+i])
		}
	}

	if ref == t.root {
		newRoot := t.alloc()
		rn := t.at(newRoot)
		rn.isLeaf = false
		rn.Node.Insert(median)
		rn.childCount = 2
		t.setChild(newRoot, 0, ref)
		t.setChild(newRoot, 1, rightRef)
		t.root = newRoot
		return
	}

	parentRef := n.parent
	parent := t.at(parentRef)
	if parent.Len() < fusion.MaxKeys {
		t.insertKeyAndChild(parentRef, median, rightRef)
		return
	}
	t.overflowInsert(parentRef, median, rightRef)
}

// insertKeyAndChild inserts key into a non-full internal node and places
// child immediately to its right, shifting later children down by one.
func (t *Tree) insertKeyAndChild(ref nodeRef, key uint64, child nodeRef) {
	n := t.at(ref)
	oldKeys := append([]uint64(nil), n.Keys()...)
	pos := 0
	for pos < len(oldKeys) && oldKeys[pos] < key {
		pos++
	}
	n.Node.Insert(key)

	oldChildren := append([]nodeRef(nil), n.children[:n.childCount]...)
	n.childCount++
	for i := n.childCount - 1; i > pos+1; i-- {
		t.setChild(ref, i, oldChildren[i-1])
	}
	t.setChild(ref, pos+1, child)
	for i := 0; i <= pos; i++ {
		t.setChild(ref, i, oldChildren[i])
	}
}
