package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aquasecurity/table"
	"github.com/spf13/cobra"

	"github.com/bladecoder/ink-go/ink"
)

func newDumpCmd() *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "dump <story.json>",
		Short: "Print a diagnostic view of a compiled story's container tree.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading story: %w", err)
			}
			st, err := ink.New(string(raw), ink.Options{})
			if err != nil {
				return fmt.Errorf("loading story: %w", err)
			}
			if tree {
				fmt.Fprint(cmd.OutOrStdout(), st.BuildStringOfHierarchy())
				return nil
			}
			return dumpVisitTable(cmd.OutOrStdout(), st)
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "print the indented tree view instead of the visit-count table")
	return cmd
}

func dumpVisitTable(out io.Writer, st *ink.Story) error {
	t := table.New(out)
	t.SetHeaders("Path", "Visits", "Turn index")
	for _, row := range st.ContainerVisitReport() {
		indent := strings.Repeat("  ", row.Depth)
		turns := "-"
		if row.Turns > 0 {
			turns = strconv.Itoa(row.Turns)
		}
		t.AddRow(indent+row.Path, strconv.Itoa(row.Visits), turns)
	}
	t.Render()
	return nil
}
