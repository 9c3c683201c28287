// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

// Package predresult holds the PredResult type shared by the Dynamic
// Octrie and the Sampling Index (spec.md §3), so neither package needs to
// import the other to agree on a query result shape.
package predresult

// PredResult is the outcome of a predecessor query over a structure's full
// key set: Exists reports whether a predecessor was found, and Pos is that
// predecessor's key value. Pos is meaningless when Exists is false.
//
// This is distinct from fusion.PredResult, whose Pos is an index into a
// single node's local key array rather than a key value from the whole
// structure.
type PredResult struct {
	Exists bool
	Pos    uint64
}
