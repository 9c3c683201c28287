// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// Catch any leaks of goroutines from these tests.
	goleak.VerifyTestMain(m)
}

func newTestRoot() (*cobra.Command, *bytes.Buffer) {
	flags := newGlobalFlags()
	root := &cobra.Command{Use: "predctl"}
	flags.register(root.PersistentFlags())
	root.AddCommand(
		newInsertCmd(flags),
		newPredCmd(flags),
		newRemoveCmd(flags),
		newSizeCmd(flags),
		newDumpCmd(flags),
	)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	return root, &out
}

func TestPredCmd_OctrieDefault(t *testing.T) {
	root, out := newTestRoot()
	root.SetArgs([]string{"--keys=17,3,29,11,41", "pred", "20"})
	require.NoError(t, root.Execute())
	require.Equal(t, "17\n", out.String())
}

func TestPredCmd_NoPredecessor(t *testing.T) {
	root, out := newTestRoot()
	root.SetArgs([]string{"--keys=17,3,29", "pred", "1"})
	require.NoError(t, root.Execute())
	require.Equal(t, "none\n", out.String())
}

func TestInsertCmd_PrintsSize(t *testing.T) {
	root, out := newTestRoot()
	root.SetArgs([]string{"--keys=1,2,3", "insert", "4", "5"})
	require.NoError(t, root.Execute())
	require.Equal(t, "5\n", out.String())
}

func TestSizeCmd(t *testing.T) {
	root, out := newTestRoot()
	root.SetArgs([]string{"--keys=1,2,3,4", "size"})
	require.NoError(t, root.Execute())
	require.Equal(t, "4\n", out.String())
}

func TestRemoveCmd_OctrieOnly(t *testing.T) {
	root, out := newTestRoot()
	root.SetArgs([]string{"--keys=1,2,3", "remove", "2"})
	require.NoError(t, root.Execute())
	require.Equal(t, "true\n", out.String())
}

func TestRemoveCmd_RejectsSamplingIndex(t *testing.T) {
	root, _ := newTestRoot()
	root.SetArgs([]string{"--structure=bitset", "--keys=1,2,3", "remove", "2"})
	err := root.Execute()
	require.Error(t, err)
}

func TestDumpCmd_Table(t *testing.T) {
	root, out := newTestRoot()
	root.SetArgs([]string{"--keys=3,1,2", "dump"})
	require.NoError(t, root.Execute())
	require.True(t, strings.Contains(out.String(), "KEYS"))
	require.True(t, strings.Contains(out.String(), "1,2,3"))
}

func TestDumpCmd_YAML(t *testing.T) {
	root, out := newTestRoot()
	root.SetArgs([]string{"--keys=3,1,2", "dump", "--format=yaml"})
	require.NoError(t, root.Execute())
	require.True(t, strings.Contains(out.String(), "structure:"))
}

func TestSampleBits_SelectsSamplingIndex(t *testing.T) {
	root, out := newTestRoot()
	root.SetArgs([]string{"--structure=list", "--sample-bits=4", "--keys=17,3,29,11,41", "pred", "20"})
	require.NoError(t, root.Execute())
	require.Equal(t, "17\n", out.String())
}
