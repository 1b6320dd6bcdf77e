package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/transitsync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/logger"
)

var skipInitialCheck bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sync daemon",
	Long: `Validates both calendars, runs an initial check and then keeps the transit
calendar up to date on the configured schedule:

  schedule.check_interval    change check (default 15m)
  schedule.daily_update_time lookahead rebuild (default 01:00)
  schedule.weekly_cleanup    retention cleanup (default Sunday 02:00)

When http.listen is set, a status server is started on that address.
Edits to the config file are picked up without a restart for the home
address, window size and transit cap. Other changes, the timezone
included, need a restart.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	runCmd.Flags().BoolVar(&skipInitialCheck, "no-initial-check", false, "do not check for changes at start-up")
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := requireEngine(ctx); err != nil {
		return err
	}
	if current == nil {
		return errors.New("sync engine not configured")
	}
	e := current

	logger.Info("transitsync %s starting (config %s)", version, settingsService.Path())
	if err := e.Validate(ctx); err != nil {
		return fmt.Errorf("calendar validation failed: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := e.scheduler.Start(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if !skipInitialCheck {
		g.Go(func() error {
			result, err := e.scheduler.RunNow(gctx, domain.TaskIDCalendarCheck)
			switch {
			case err != nil:
				logger.Warn("initial check: %v", err)
			case !result.Success:
				logger.Warn("initial check failed: %s", result.Error)
			default:
				logger.Info("initial check rebuilt %d dates", result.ItemsProcessed)
			}
			return nil
		})
	}

	if addr := e.settings.HTTPListen; addr != "" {
		g.Go(func() error {
			return httpapi.Serve(gctx, addr, httpapi.NewRouter(e.orchestrator, e.scheduler))
		})
	}

	g.Go(func() error {
		if err := watchConfig(gctx, settingsService.Path(), func() { reloadSettings(e) }); err != nil {
			logger.Warn("config hot reload disabled: %v", err)
		}
		return nil
	})

	err := g.Wait()
	logger.Info("transitsync stopped")
	return err
}

// reloadSettings applies a changed config file to the running engine.
// Settings that need new connections are reported, not applied.
func reloadSettings(e *engine) {
	settings, err := settingsService.Reload()
	if err != nil {
		logger.Warn("config reload failed: %v", err)
		return
	}
	if err := settings.Validate(); err != nil {
		logger.Warn("config reload ignored: %v", err)
		return
	}

	if settings.Source != e.settings.Source || settings.Destination != e.settings.Destination ||
		settings.Store != e.settings.Store || settings.Schedule != e.settings.Schedule ||
		settings.Transit != e.settings.Transit || settings.HTTPListen != e.settings.HTTPListen ||
		settings.Timezone != e.settings.Timezone {
		logger.Warn("calendar, store, transit, schedule, timezone and http changes take effect after a restart")
	}

	// The connectors and the scheduler keep the zone they were built with,
	// so the running engine keeps it too.
	live := *e.settings
	live.HomeAddress = settings.HomeAddress
	live.LookForwardDays = settings.LookForwardDays
	live.MaxTransit = settings.MaxTransit
	e.orchestrator.UpdateSettings(live)
	*e.settings = live
	logger.Info("configuration reloaded: home=%q window=%d days cap=%s",
		settings.HomeAddress, settings.LookForwardDays, settings.MaxTransit)
}
