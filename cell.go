// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

// Package predtrie implements the predecessor data structures described in
// SPEC_FULL.md §4: Fusion Nodes (fusion), the Dynamic Octrie (octrie), and
// the Sampling Index (sindex, batch). This root package also wires a
// Sampling Index into a Hive application (SPEC_FULL.md §4.G).
package predtrie

import (
	"github.com/cilium/hive/cell"
	"github.com/spf13/pflag"

	"github.com/cilium/predtrie/batch"
	"github.com/cilium/predtrie/predresult"
	"github.com/cilium/predtrie/sindex"
)

// Cell provides a predecessor Index, configured by Config, to the
// enclosing Hive application.
var Cell = cell.Module(
	"predtrie",
	"Fusion-node predecessor index",

	cell.Config(defaultConfig),
	cell.Provide(newIndex),
)

// Index is the surface common to a plain Sampling Index and a Batched
// Index, and is what Cell provides: callers that don't care about the
// flush-amortization difference can depend on just this.
type Index interface {
	Insert(k uint64)
	Predecessor(x uint64) predresult.PredResult
	Size() int
}

// Config configures the Sampling Index provided by Cell.
type Config struct {
	SampleBits uint8  `mapstructure:"predtrie-sample-bits"`
	BucketKind string `mapstructure:"predtrie-bucket-kind"` // "bitset" or "list"
	Batched    bool   `mapstructure:"predtrie-batched"`
}

var defaultConfig = Config{
	SampleBits: 10,
	BucketKind: "bitset",
}

// Flags registers Config's fields on flags, in the shape of
// reconciler/example/types.go's Config.Flags.
func (def Config) Flags(flags *pflag.FlagSet) {
	flags.Uint8("predtrie-sample-bits", def.SampleBits, "Sampling Index top-layer width in bits")
	flags.String("predtrie-bucket-kind", def.BucketKind, "Sampling Index bucket representation: bitset or list")
	flags.Bool("predtrie-batched", def.Batched, "Wrap the Sampling Index in a deferred-insert batch buffer")
}

func (cfg Config) bucketKind() sindex.BucketKind {
	if cfg.BucketKind == "list" {
		return sindex.List
	}
	return sindex.Bitset
}

type params struct {
	cell.In

	Config Config
}

func newIndex(p params) (Index, error) {
	s := uint(p.Config.SampleBits)
	kind := p.Config.bucketKind()
	if p.Config.Batched {
		return batch.New(s, kind), nil
	}
	return sindex.New(s, kind), nil
}
