package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/cwbudde/dlogsolve/internal/store"
)

var traceDir string

var traceCmd = &cobra.Command{
	Use:   "trace <run-id>",
	Short: "Print the generation trace of a search run",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrace,
}

func init() {
	traceCmd.Flags().StringVar(&traceDir, "trace-dir", defaultDataDir, "Directory holding run traces")
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	runID := args[0]
	out := cmd.OutOrStdout()

	entries, err := store.ReadTrace(traceDir, runID)
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Generation", "Evaluated", "Non-convergent", "Matched", "Time"})
	for _, e := range entries {
		table.Append([]string{
			strconv.Itoa(e.Generation),
			strconv.Itoa(e.Evaluated),
			strconv.Itoa(e.NonConvergent),
			strconv.FormatBool(e.Matched),
			e.Timestamp.Format("15:04:05.000"),
		})
	}
	table.Render()

	fmt.Fprintf(out, "\nTotal generations: %d\n", len(entries))
	return nil
}
