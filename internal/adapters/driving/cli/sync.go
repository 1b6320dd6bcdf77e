package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driving"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the source calendar for changes",
	Long: `Fetches the look-forward window from the source calendar, detects new,
changed and deleted appointments, and rebuilds the transit events of every
affected date.`,
	Args: cobra.NoArgs,
	RunE: runSweep(func(ctx context.Context, _ []string) (*driving.SweepResult, error) {
		return syncOrchestrator.CheckForUpdates(ctx)
	}),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Rebuild every date in the look-forward window",
	Long: `Refreshes the stored appointments from the source calendar and rebuilds
the transit events of every date from today to the end of the window,
whether or not anything changed.`,
	Args: cobra.NoArgs,
	RunE: runSweep(func(ctx context.Context, _ []string) (*driving.SweepResult, error) {
		return syncOrchestrator.ResetWindow(ctx)
	}),
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Rebuild the date entering the look-forward window",
	Args:  cobra.NoArgs,
	RunE: runSweep(func(ctx context.Context, _ []string) (*driving.SweepResult, error) {
		return syncOrchestrator.DailyUpdate(ctx)
	}),
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <date>...",
	Short: "Rebuild the transit events of specific dates",
	Long: `Rebuilds the transit events of each date (YYYY-MM-DD) from the stored
appointments. The source calendar is not consulted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSweep(func(ctx context.Context, dates []string) (*driving.SweepResult, error) {
		return syncOrchestrator.RebuildDates(ctx, dates)
	}),
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(rebuildCmd)
}

// runSweep wraps one orchestrator entry point as a command.
func runSweep(
	sweep func(ctx context.Context, args []string) (*driving.SweepResult, error),
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		if err := requireEngine(ctx); err != nil {
			return err
		}

		result, err := sweep(ctx, args)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		printSweep(cmd, result)
		return nil
	}
}

func printSweep(cmd *cobra.Command, r *driving.SweepResult) {
	if r == nil {
		return
	}
	cmd.Printf("%s finished in %s\n", r.Kind, r.EndedAt.Sub(r.StartedAt).Round(time.Millisecond))
	if r.Kind != "rebuild" {
		cmd.Printf("  Fetched: %d  Changed: %d  Deleted: %d\n", r.Fetched, r.Changed, r.Deleted)
	}
	if len(r.Rebuilds) == 0 {
		cmd.Println("  No dates needed rebuilding.")
		return
	}
	for i := range r.Rebuilds {
		printRebuild(cmd, &r.Rebuilds[i])
	}
	cmd.Printf("  Total: %d dates, %d transit events created, %d failures\n",
		len(r.Rebuilds), r.SegmentsCreated(), r.Failures())
}

func printRebuild(cmd *cobra.Command, rb *domain.RebuildResult) {
	switch {
	case rb.Orphaned:
		cmd.Printf("  %s: no appointments, cleared %d\n", rb.Date, rb.RemoteCleared)
	default:
		cmd.Printf("  %s: %d appointments, %d/%d transit events created (cleared %d)\n",
			rb.Date, rb.Events, rb.Created, rb.Segments, rb.RemoteCleared)
	}
	for _, msg := range rb.Errors {
		cmd.Printf("    error: %s\n", msg)
	}
}
