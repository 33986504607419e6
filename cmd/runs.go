package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/cwbudde/dlogsolve/internal/jobs"
	"github.com/cwbudde/dlogsolve/internal/store"
)

var (
	runsDataDir   string
	keepLast      int
	olderThanDays int
	forceClean    bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage recorded search runs",
	Long:  `List and clean the run summaries and traces written by "search".`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runListRuns,
}

var cleanRunsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old runs",
	Long:  `Delete runs beyond the newest N, or runs older than N days.`,
	Args:  cobra.NoArgs,
	RunE:  runCleanRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(cleanRunsCmd)

	runsCmd.PersistentFlags().StringVar(&runsDataDir, "trace-dir", defaultDataDir, "Directory holding run traces")

	cleanRunsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N runs (0 = keep all)")
	cleanRunsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete runs older than N days (0 = no age limit)")
	cleanRunsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListRuns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	runStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	runs, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Run ID", "Started", "Strategy", "Target", "State", "Generations", "Elapsed", "Result", "Size"})
	for _, run := range runs {
		sizeStr := "unknown"
		if size, err := getDirSize(filepath.Join(runStore.BaseDir(), "runs", run.ID)); err == nil {
			sizeStr = formatBytes(size)
		}

		result := "-"
		if run.Found {
			result = fmt.Sprintf("(%d, %d)", run.Value, run.Formula)
		}

		table.Append([]string{
			shortID(run.ID),
			run.StartTime.Format("2006-01-02 15:04:05"),
			run.Strategy,
			strconv.FormatInt(run.Target, 10),
			string(run.State),
			strconv.Itoa(run.Generation),
			run.Elapsed().Round(time.Millisecond).String(),
			result,
			sizeStr,
		})
	}
	table.Render()

	fmt.Fprintf(out, "\nTotal runs: %d\n", len(runs))
	return nil
}

func runCleanRuns(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	runStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	runs, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	toDelete := selectRunsForDeletion(runs, keepLast, olderThanDays, time.Now())
	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No runs match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d run(s) to delete:\n", len(toDelete))
	for _, run := range toDelete {
		fmt.Fprintf(out, "  - %s (%s, %s)\n", shortID(run.ID), run.State, run.StartTime.Format("2006-01-02 15:04:05"))
	}

	if !forceClean {
		answer, err := newPrompter(cmd.InOrStdin(), out).valueOr("", "\nProceed with deletion? [y/N]: ")
		if err != nil || (answer != "y" && answer != "Y") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	deleted, failed := 0, 0
	for _, run := range toDelete {
		if err := runStore.DeleteRun(run.ID); err != nil {
			slog.Error("Failed to delete run", "run_id", run.ID, "error", err)
			failed++
			continue
		}
		slog.Info("Deleted run", "run_id", run.ID)
		deleted++
	}

	fmt.Fprintf(out, "\nDeleted %d run(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRunsForDeletion applies the retention policy: runs started before
// now minus olderThanDays, plus every run beyond the newest keepLast.
func selectRunsForDeletion(runs []jobs.Run, keepLast, olderThanDays int, now time.Time) []jobs.Run {
	selected := make(map[string]bool)
	var toDelete []jobs.Run

	if olderThanDays > 0 {
		cutoff := now.AddDate(0, 0, -olderThanDays)
		for _, run := range runs {
			if run.StartTime.Before(cutoff) {
				selected[run.ID] = true
				toDelete = append(toDelete, run)
			}
		}
	}

	if keepLast > 0 && len(runs) > keepLast {
		sorted := make([]jobs.Run, len(runs))
		copy(sorted, runs)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		})

		for _, run := range sorted[:len(sorted)-keepLast] {
			if !selected[run.ID] {
				selected[run.ID] = true
				toDelete = append(toDelete, run)
			}
		}
	}

	return toDelete
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
