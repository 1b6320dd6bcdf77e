package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/transitsync/internal/core/domain"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete stored appointments and transit records older than the retention period",
	Long: `Deletes stored appointments and transit segments dated before today minus
--days (default: retention_days from the config file). Fingerprints are kept
so that recurring appointments are not treated as new when they return.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [task-id]",
	Short: "Show scheduled task state and recent runs",
	Long: `Without arguments, lists the scheduled tasks and when they last ran.
With a task ID, lists that task's recent runs, newest first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", -1, "retention in days (default: retention_days setting)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(historyCmd)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := requireEngine(ctx); err != nil {
		return err
	}

	days := cleanupDays
	if days < 0 {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		days = settings.RetentionDays
	}

	result, err := syncOrchestrator.CleanupOldData(ctx, days)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	cmd.Printf("Removed data dated before %s: %d appointments, %d transit segments.\n",
		result.Cutoff, result.EventsDeleted, result.SegmentsDeleted)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := requireEngine(ctx); err != nil {
		return err
	}

	if len(args) == 0 {
		tasks, err := taskScheduler.Tasks(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		if len(tasks) == 0 {
			cmd.Println("No tasks have run yet.")
			return nil
		}
		for _, t := range tasks {
			cmd.Printf("%-16s %-24s %-14s last run: %s\n", t.ID, t.Name, t.Schedule, formatTime(t.LastRun))
			if t.LastError != "" {
				cmd.Printf("%16s last error: %s\n", "", t.LastError)
			}
		}
		return nil
	}

	results, err := taskScheduler.History(ctx, args[0], historyLimit)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}
	if len(results) == 0 {
		cmd.Printf("No runs recorded for %s.\n", args[0])
		return nil
	}
	for _, r := range results {
		cmd.Printf("%s  %-7s  %4d items  %s\n", formatTime(r.StartedAt), resultStatus(r),
			r.ItemsProcessed, r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond))
		if r.Error != "" {
			cmd.Printf("    %s\n", r.Error)
		}
	}
	return nil
}

func resultStatus(r domain.TaskResult) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Success:
		return "ok"
	default:
		return "failed"
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
