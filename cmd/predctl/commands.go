// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/liggitt/tabwriter"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

func newInsertCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <key> [<key>...]",
		Short: "Insert one or more keys and print the resulting size",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := flags.build()
			if err != nil {
				return err
			}
			toInsert, err := parseKeyArgs(args)
			if err != nil {
				return err
			}
			for _, k := range toInsert {
				s.Insert(k)
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Size())
			return nil
		},
	}
}

func newPredCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pred <x>",
		Short: "Print the predecessor of x",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := flags.build()
			if err != nil {
				return err
			}
			x, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid key %q: %w", args[0], err)
			}
			res := s.Predecessor(x)
			if !res.Exists {
				fmt.Fprintln(cmd.OutOrStdout(), "none")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Pos)
			return nil
		},
	}
}

func newRemoveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove a key (octrie only) and print whether it was found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := flags.build()
			if err != nil {
				return err
			}
			r, ok := s.(remover)
			if !ok {
				return fmt.Errorf("--structure %s does not support remove", flags.structureName)
			}
			k, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid key %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Remove(k))
			return nil
		},
	}
}

func newSizeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Print the number of keys currently held",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := flags.build()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Size())
			return nil
		},
	}
}

func newDumpCmd(flags *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the loaded keys and basic stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, preload, err := flags.build()
			if err != nil {
				return err
			}
			sorted := append([]uint64(nil), preload...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

			switch format {
			case "", "table":
				return dumpTable(cmd.OutOrStdout(), flags.structureName, s.Size(), sorted)
			case "yaml":
				return dumpYAML(cmd.OutOrStdout(), flags.structureName, s.Size(), sorted)
			default:
				return fmt.Errorf("unknown --format %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or yaml")
	return cmd
}

func dumpTable(w io.Writer, structureName string, size int, keys []uint64) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "STRUCTURE\t%s\n", structureName)
	fmt.Fprintf(tw, "SIZE\t%d\n", size)
	if len(keys) > 0 {
		fmt.Fprintf(tw, "MIN\t%d\n", keys[0])
		fmt.Fprintf(tw, "MAX\t%d\n", keys[len(keys)-1])
	}
	fmt.Fprintln(tw, "KEYS\t"+joinKeys(keys))
	return tw.Flush()
}

func dumpYAML(w io.Writer, structureName string, size int, keys []uint64) error {
	doc := struct {
		Structure string   `yaml:"structure"`
		Size      int      `yaml:"size"`
		Keys      []uint64 `yaml:"keys"`
	}{structureName, size, keys}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(doc)
}

func joinKeys(keys []uint64) string {
	if len(keys) == 0 {
		return "-"
	}
	s := strconv.FormatUint(keys[0], 10)
	for _, k := range keys[1:] {
		s += "," + strconv.FormatUint(k, 10)
	}
	return s
}
