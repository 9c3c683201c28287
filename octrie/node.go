// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

// Package octrie implements the Dynamic Octrie: a B-tree of branching
// factor 9 whose internal nodes are searched with a Fusion Node instead of
// a per-key comparison loop (spec.md §4.D).
//
// Parent pointers are a cyclic ownership graph in a naive port of the
// design — the Design Notes (spec.md §9) call this out explicitly. Nodes
// here are therefore identified by an arena index (nodeRef) rather than a
// pointer: the Tree owns a slice of nodes and every parent/child link is
// an index into that slice, giving the same O(1) parent navigation without
// the cyclic pointer graph, freed as a unit when the Tree itself goes away.
package octrie

import "github.com/cilium/predtrie/fusion"

// branchingFactor is B in spec.md §4.D.
const branchingFactor = 9

// minKeys is the minimum key count for a non-root internal node,
// ⌈B/2⌉-1 = 4.
const minKeys = 4

type nodeRef int32

// noRef is the sentinel for "no node" (nil parent, absent child).
const noRef nodeRef = -1

type node struct {
	fusion.Node
	children   [branchingFactor]nodeRef
	childCount int
	parent     nodeRef
	idx        int // this node's position within parent.children
	isLeaf     bool
}

// Tree is a Dynamic Octrie over 64-bit keys.
type Tree struct {
	arena []node
	free  []nodeRef
	root  nodeRef
	size  int
}

// New returns an empty Dynamic Octrie.
func New() *Tree {
	return &Tree{root: noRef}
}

// Size returns the number of keys currently stored.
func (t *Tree) Size() int { return t.size }

func (t *Tree) at(ref nodeRef) *node {
	return &t.arena[ref]
}

func (t *Tree) alloc() nodeRef {
	if n := len(t.free); n > 0 {
		ref := t.free[n-1]
		t.free = t.free[:n-1]
		t.arena[ref] = node{parent: noRef, idx: -1}
		for i := range t.arena[ref].children {
			t.arena[ref].children[i] = noRef
		}
		return ref
	}
	t.arena = append(t.arena, node{parent: noRef, idx: -1})
	ref := nodeRef(len(t.arena) - 1)
	for i := range t.arena[ref].children {
		t.arena[ref].children[i] = noRef
	}
	return ref
}

func (t *Tree) release(ref nodeRef) {
	t.free = append(t.free, ref)
}

// setChild makes child the node at position pos within parent's children,
// updating the child's parent/idx bookkeeping.
func (t *Tree) setChild(parentRef nodeRef, pos int, child nodeRef) {
	p := t.at(parentRef)
	p.children[pos] = child
	if child != noRef {
		c := t.at(child)
		c.parent = parentRef
		c.idx = pos
	}
}
