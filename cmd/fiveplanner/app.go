package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/alecgard/fiveplanner/internal/config"
	"github.com/alecgard/fiveplanner/internal/metrics"
	"github.com/alecgard/fiveplanner/internal/planner"
	"github.com/alecgard/fiveplanner/internal/roster"
	"github.com/alecgard/fiveplanner/internal/session"
	"github.com/alecgard/fiveplanner/internal/storage"
	"github.com/alecgard/fiveplanner/internal/storage/postgres"
	"github.com/alecgard/fiveplanner/internal/storage/sqlite"
)

// backend is an opened storage driver.
type backend struct {
	gw    storage.Gateway
	ping  func(context.Context) error // nil for memory and file
	stats metrics.PoolStatFunc        // nil when the driver has no pool
	close func()
}

// openBackend opens the configured storage driver.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return &backend{gw: storage.NewMemory(), close: func() {}}, nil

	case config.DriverFile:
		f, err := storage.NewFile(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return &backend{gw: f, close: func() {}}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return &backend{
			gw:   db,
			ping: db.Ping,
			stats: func() (int32, int32, int32) {
				st := db.Stats()
				return int32(st.OpenConnections), int32(st.Idle), int32(st.InUse)
			},
			close: func() { _ = db.Close() },
		}, nil

	case config.DriverPostgres:
		if err := postgres.MigrateUp(cfg.DatabaseURLForMigrate()); err != nil {
			return nil, err
		}
		db, err := postgres.Connect(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &backend{gw: db, ping: db.Ping, stats: db.PoolStats, close: db.Close}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// app wires the stores and the planner over one backend.
type app struct {
	cfg     *config.Config
	backend *backend
	gw      storage.Gateway
	planner *planner.Service
}

type appOptions struct {
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func openApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	logger := opts.logger
	if logger == nil {
		logger = slog.Default()
	}
	policy, err := cfg.WritePolicy()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}

	gw := b.gw
	var observer session.Observer
	if opts.metrics != nil {
		gw = storage.Instrument(gw, opts.metrics)
		observer = opts.metrics
	}

	r, err := roster.Open(ctx, gw, roster.Options{Policy: policy, Logger: logger})
	if err != nil {
		b.close()
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	s, err := session.Open(ctx, gw, session.Options{
		Clock:    clockwork.NewRealClock(),
		Policy:   policy,
		Defaults: cfg.SessionDefaults(),
		Observer: observer,
		Logger:   logger,
	})
	if err != nil {
		b.close()
		return nil, fmt.Errorf("opening sessions: %w", err)
	}

	return &app{
		cfg:     cfg,
		backend: b,
		gw:      gw,
		planner: planner.NewService(r, s, planner.Options{Location: loc, Logger: logger}),
	}, nil
}

func (a *app) Close() {
	a.backend.close()
}

// state reports collection sizes for the metrics collector.
func (a *app) state() metrics.State {
	return metrics.State{
		Players:        len(a.planner.Roster().Players()),
		Pitches:        len(a.planner.Roster().Pitches()),
		ActiveSessions: len(a.planner.Sessions().Active()),
		History:        len(a.planner.Sessions().History()),
	}
}

// withApp loads the config, opens the app for a CLI command and closes it
// afterwards.
func withApp(run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := openApp(ctx, cfg, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		return run(ctx, a, args)
	}
}
