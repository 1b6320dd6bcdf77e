// Package cli implements the transitsync command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/transitsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/transitsync/internal/core/ports/driving"
	"github.com/custodia-labs/transitsync/internal/core/services"
	"github.com/custodia-labs/transitsync/internal/logger"
)

var (
	version = "dev"

	configPath string
	verbose    bool
)

// Services used by the commands. setup fills in whatever is still nil, so
// tests can inject their own.
var (
	settingsService  driving.SettingsService
	syncOrchestrator driving.SyncOrchestrator
	taskScheduler    driving.Scheduler

	// current is the engine built by requireEngine, if any.
	current *engine
)

var rootCmd = &cobra.Command{
	Use:   "transitsync",
	Short: "Keep a transit calendar in step with your appointments",
	Long: `transitsync reads located appointments from a source calendar, works out
the travel between them and your home, and writes the travel blocks to a
dedicated transit calendar.

Run "transitsync init" once to create the configuration, then
"transitsync run" to keep the transit calendar up to date.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default ~/.transitsync/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// setup opens the config file. The engine is built on demand by the
// commands that need it.
func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if settingsService != nil {
		return nil
	}
	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settingsService = services.NewSettingsService(store)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if current == nil {
		return nil
	}
	err := current.Close()
	current = nil
	syncOrchestrator = nil
	taskScheduler = nil
	return err
}

// requireEngine makes sure the sync services are available.
func requireEngine(ctx context.Context) error {
	if syncOrchestrator != nil && taskScheduler != nil {
		return nil
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	e, err := newEngine(ctx, settingsService, nil)
	if err != nil {
		return err
	}
	current = e
	syncOrchestrator = e.orchestrator
	taskScheduler = e.scheduler
	return nil
}
