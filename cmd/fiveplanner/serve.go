package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alecgard/fiveplanner/internal/api"
	"github.com/alecgard/fiveplanner/internal/auth"
	"github.com/alecgard/fiveplanner/internal/metrics"
	"github.com/alecgard/fiveplanner/internal/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Five Planner HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// pingFunc adapts a driver ping to api.Pinger.
type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	a, err := openApp(ctx, cfg, appOptions{metrics: m, logger: logger})
	if err != nil {
		return err
	}
	defer a.Close()
	slog.Info("storage opened", "driver", cfg.Storage.Driver)

	if a.backend.stats != nil {
		m.RegisterPoolCollector(a.backend.stats)
	}
	m.RegisterStateCollector(a.state)

	verifier := auth.NewVerifier(cfg.Auth.AdminKeyHash)
	if !verifier.Enabled() {
		slog.Warn("no admin key hash configured, mutations are unauthenticated")
	}

	trusted, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return err
	}

	deps := api.RouterDeps{
		Planner:        a.planner,
		Metrics:        m,
		Verifier:       verifier,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		TrustedProxies: trusted,
	}
	if a.backend.ping != nil {
		deps.Storage = pingFunc(a.backend.ping)
	}
	if cfg.Server.RateLimit > 0 {
		limiter := ratelimit.New(cfg.Server.RateLimit, time.Minute, nil)
		deps.RateLimiter = limiter
		go sweepLimiter(ctx, limiter, 5*time.Minute)
	} else {
		slog.Warn("API rate limiting disabled")
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
	case err := <-errCh:
		slog.Error("server error", "error", err)
		return err
	}
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}

// sweepLimiter drops idle client buckets until ctx is done.
func sweepLimiter(ctx context.Context, l *ratelimit.Limiter, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := l.Sweep(); n > 0 {
				slog.Debug("rate limiter swept", "dropped", n, "tracked", l.Len())
			}
		}
	}
}
