// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

// Command predctl manually drives an Octrie or Sampling Index from the
// command line (SPEC_FULL.md §4.H). It is a thin demonstration wrapper, not
// the benchmark harness, which remains out of scope.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	root := &cobra.Command{
		Use:   "predctl",
		Short: "Manually drive a predecessor data structure",
	}

	flags := newGlobalFlags()
	flags.register(root.PersistentFlags())

	root.AddCommand(
		newInsertCmd(flags),
		newPredCmd(flags),
		newRemoveCmd(flags),
		newSizeCmd(flags),
		newDumpCmd(flags),
	)

	if err := root.Execute(); err != nil {
		log.Error("predctl failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
