// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/cilium/predtrie/batch"
	"github.com/cilium/predtrie/octrie"
	"github.com/cilium/predtrie/predresult"
	"github.com/cilium/predtrie/sindex"
)

// structure is the surface every backing structure shares; predctl doesn't
// care which one it's driving beyond that.
type structure interface {
	Insert(k uint64)
	Predecessor(x uint64) predresult.PredResult
	Size() int
}

// remover is implemented only by the Octrie (spec.md §6: "remove ...
// Octrie only").
type remover interface {
	Remove(k uint64) bool
}

// globalFlags backs --structure, --sample-bits, and --keys, the CLI's
// stand-in for persistent storage: every invocation rebuilds the structure
// fresh from --keys before performing its one operation (spec.md Non-goals
// exclude persistence; SPEC_FULL.md §4.H calls this tool a manual driver,
// not the benchmark harness).
type globalFlags struct {
	structureName string
	sampleBits    uint8
	keys          string
}

func newGlobalFlags() *globalFlags {
	return &globalFlags{structureName: "octrie", sampleBits: 10}
}

func (f *globalFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.structureName, "structure", f.structureName,
		"Backing structure: octrie, bitset, list, or batched")
	flags.Uint8Var(&f.sampleBits, "sample-bits", f.sampleBits,
		"Sampling Index top-layer width in bits (ignored for octrie)")
	flags.StringVar(&f.keys, "keys", f.keys,
		"Comma-separated keys to preload before the command runs")
}

// build constructs a fresh structure and preloads it with --keys in the
// order given.
func (f *globalFlags) build() (structure, []uint64, error) {
	preload, err := parseKeys(f.keys)
	if err != nil {
		return nil, nil, err
	}

	var s structure
	switch f.structureName {
	case "octrie":
		s = octrie.New()
	case "bitset":
		s = sindex.New(uint(f.sampleBits), sindex.Bitset)
	case "list":
		s = sindex.New(uint(f.sampleBits), sindex.List)
	case "batched":
		s = batch.New(uint(f.sampleBits), sindex.Bitset)
	default:
		return nil, nil, fmt.Errorf("unknown --structure %q", f.structureName)
	}

	for _, k := range preload {
		s.Insert(k)
	}
	return s, preload, nil
}

func parseKeys(csv string) ([]uint64, error) {
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	keys := make([]uint64, 0, len(parts))
	for _, p := range parts {
		k, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid key %q: %w", p, err)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func parseKeyArgs(args []string) ([]uint64, error) {
	keys := make([]uint64, 0, len(args))
	for _, a := range args {
		k, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid key %q: %w", a, err)
		}
		keys = append(keys, k)
	}
	return keys, nil
}
