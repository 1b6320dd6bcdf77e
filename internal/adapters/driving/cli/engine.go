package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/transitsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/transitsync/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/transitsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/transitsync/internal/connectors/factory"
	"github.com/custodia-labs/transitsync/internal/core/domain"
	"github.com/custodia-labs/transitsync/internal/core/ports/driven"
	"github.com/custodia-labs/transitsync/internal/core/ports/driving"
	"github.com/custodia-labs/transitsync/internal/core/services"
	"github.com/custodia-labs/transitsync/internal/logger"
)

// engine is the wired sync engine with everything it owns.
type engine struct {
	settings     *domain.Settings
	orchestrator *services.SyncOrchestrator
	scheduler    *services.Scheduler
	source       driven.CalendarSource
	destination  driven.CalendarDestination
	closers      []func() error
}

// newEngine resolves and validates settings, opens the record store and
// builds the connectors and services. A nil connectors uses factory.New.
func newEngine(ctx context.Context, svc driving.SettingsService, connectors driven.ConnectorFactory) (*engine, error) {
	settings, err := svc.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", svc.Path(), err)
	}
	if connectors == nil {
		connectors = factory.New()
	}

	e := &engine{settings: settings}
	if err := e.configureLogging(); err != nil {
		return nil, err
	}

	st, err := openStores(ctx, settings.Store)
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	e.closers = append(e.closers, st.close)

	if e.source, err = connectors.CreateSource(ctx, settings); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("source calendar: %w", err)
	}
	if e.destination, err = connectors.CreateDestination(ctx, settings); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("destination calendar: %w", err)
	}
	lookup, err := connectors.CreateTransitLookup(ctx, settings)
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("transit lookup: %w", err)
	}

	schedCfg, err := svc.GetSchedulerConfig(settings)
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("scheduler config: %w", err)
	}

	rebuilder := services.NewDateRebuilder(st.events, st.transits, e.destination, lookup,
		services.SynthesisOptions(*settings))
	e.orchestrator = services.NewSyncOrchestrator(e.source, st.events, st.fingerprints, st.transits,
		rebuilder, *settings)
	e.scheduler = services.NewScheduler(schedCfg, st.scheduler, e.orchestrator,
		settings.RetentionDays, settings.Location)

	logger.Debug("engine ready: source=%s destination=%s store=%s mode=%s",
		settings.Source.Type, settings.Destination.Type, settings.Store.Driver, settings.Transit.Mode)
	return e, nil
}

// Validate checks both calendars. All failures are reported together.
func (e *engine) Validate(ctx context.Context) error {
	var errs []error
	if err := e.source.Validate(ctx); err != nil {
		errs = append(errs, fmt.Errorf("source: %w", err))
	}
	if err := e.destination.Validate(ctx); err != nil {
		errs = append(errs, fmt.Errorf("destination: %w", err))
	}
	return errors.Join(errs...)
}

// Close releases the store and log file, newest first.
func (e *engine) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i]())
	}
	e.closers = nil
	return errors.Join(errs...)
}

// configureLogging applies log.level and log.file. --verbose wins over log.level.
func (e *engine) configureLogging() error {
	if !verbose && e.settings.LogLevel != "" {
		level, err := logger.ParseLevel(e.settings.LogLevel)
		if err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
		logger.SetLevel(level)
	}
	if e.settings.LogFile == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(e.settings.LogFile), 0700); err != nil {
		return fmt.Errorf("log.file: %w", err)
	}
	f, err := os.OpenFile(e.settings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("log.file: %w", err)
	}
	previous := logger.Output()
	logger.SetOutput(io.MultiWriter(previous, f))
	e.closers = append(e.closers, func() error {
		logger.SetOutput(previous)
		return f.Close()
	})
	return nil
}

// stores groups the record stores of one backend.
type stores struct {
	events       driven.EventStore
	fingerprints driven.FingerprintStore
	transits     driven.TransitStore
	scheduler    driven.SchedulerStore
	close        func() error
}

// openStores opens the backend named by cfg.Driver.
func openStores(ctx context.Context, cfg domain.StoreSettings) (*stores, error) {
	switch cfg.Driver {
	case domain.StoreSQLite, "":
		db, err := sqlite.NewStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Debug("using sqlite store at %s", db.Path())
		return &stores{
			events:       db.EventStore(),
			fingerprints: db.FingerprintStore(),
			transits:     db.TransitStore(),
			scheduler:    db.SchedulerStore(),
			close:        db.Close,
		}, nil

	case domain.StorePostgres:
		db, err := postgres.NewStore(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		return &stores{
			events:       db.EventStore(),
			fingerprints: db.FingerprintStore(),
			transits:     db.TransitStore(),
			scheduler:    db.SchedulerStore(),
			close: func() error {
				db.Close()
				return nil
			},
		}, nil

	case domain.StoreMemory:
		logger.Warn("using in-memory store: state is lost on exit")
		return &stores{
			events:       memory.NewEventStore(),
			fingerprints: memory.NewFingerprintStore(),
			transits:     memory.NewTransitStore(),
			scheduler:    memory.NewSchedulerStore(),
			close:        func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("%w: store driver %q", domain.ErrUnsupportedType, cfg.Driver)
	}
}
