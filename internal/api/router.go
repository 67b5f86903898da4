package api

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alecgard/fiveplanner/internal/auth"
	"github.com/alecgard/fiveplanner/internal/metrics"
	"github.com/alecgard/fiveplanner/internal/planner"
	"github.com/alecgard/fiveplanner/internal/ratelimit"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps holds all dependencies for the API router.
type RouterDeps struct {
	Planner        *planner.Service
	Metrics        *metrics.Metrics
	Verifier       *auth.Verifier
	Storage        Pinger // optional; memory and file gateways have nothing to ping
	AllowedOrigins []string
	RateLimiter    *ratelimit.Limiter // optional; nil disables throttling
	TrustedProxies []netip.Prefix     // peers whose X-Forwarded-For is believed
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	var (
		obs      HTTPObserver
		rec      auth.Recorder
		onReject func()
	)
	if deps.Metrics != nil {
		obs, rec = deps.Metrics, deps.Metrics
		onReject = deps.Metrics.IncRateLimited
	}
	verifier := deps.Verifier
	if verifier == nil {
		verifier = auth.NewVerifier("")
	}

	// Global middleware.
	r.Use(chimw.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(clientIPMiddleware(deps.TrustedProxies))
	r.Use(secureHeaders)
	r.Use(corsMiddleware(deps.AllowedOrigins))
	r.Use(slogRequestLogger(obs))

	r.Get("/health", healthHandler(deps.Storage))
	r.Get("/.well-known/fiveplanner.json", WellKnownHandler)

	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry(), promhttp.HandlerOpts{}))
		r.Get("/api/v1/metrics", deps.Metrics.Handler())
	}

	if deps.Planner == nil {
		return r
	}

	roster := newRosterHandler(deps.Planner)
	sessions := newSessionsHandler(deps.Planner)
	stats := newStatsHandler(deps.Planner)

	r.Route("/api/v1", func(ar chi.Router) {
		if deps.RateLimiter != nil {
			ar.Use(ratelimit.Middleware(deps.RateLimiter, clientIP, onReject))
		}

		// Public reads.
		ar.Get("/players", roster.ListPlayers)
		ar.Get("/players/{id}", roster.GetPlayer)
		ar.Get("/players/{id}/stats", stats.GetPlayerStats)
		ar.Get("/groups", roster.ListGroups)
		ar.Get("/groups/{id}", roster.GetGroup)
		ar.Get("/pitches", roster.ListPitches)
		ar.Get("/pitches/{id}", roster.GetPitch)

		ar.Get("/sessions", sessions.ListActive)
		ar.Get("/sessions/selected", sessions.GetSelected)
		ar.Get("/sessions/{id}", sessions.GetSession)
		ar.Get("/sessions/{id}/summary", sessions.GetSummary)
		ar.Get("/sessions/{id}/calendar", sessions.GetCalendar)
		ar.Get("/history", sessions.ListHistory)
		ar.Get("/stats", stats.GetLeaderboard)

		ar.Post("/email/parse", stats.ParseEmail)

		// Mutations (require the admin key when one is configured).
		ar.Group(func(mr chi.Router) {
			mr.Use(auth.AdminKeyMiddleware(verifier, rec))

			mr.Post("/players", roster.CreatePlayer)
			mr.Post("/players/bulk", roster.BulkCreatePlayers)
			mr.Put("/players/{id}", roster.UpdatePlayer)
			mr.Delete("/players/{id}", roster.DeletePlayer)

			mr.Post("/groups", roster.CreateGroup)
			mr.Put("/groups/{id}", roster.UpdateGroup)
			mr.Delete("/groups/{id}", roster.DeleteGroup)

			mr.Post("/pitches", roster.CreatePitch)
			mr.Put("/pitches/{id}", roster.UpdatePitch)
			mr.Delete("/pitches/{id}", roster.DeletePitch)

			mr.Post("/sessions", sessions.CreateSession)
			mr.Post("/sessions/from-email", sessions.CreateFromEmail)
			mr.Put("/sessions/selected", sessions.SelectSession)
			mr.Put("/sessions/{id}/responses/{playerID}", sessions.Respond)
			mr.Post("/sessions/{id}/complete", sessions.Complete)
			mr.Post("/sessions/{id}/cancel", sessions.Cancel)
			mr.Delete("/sessions/{id}", sessions.ClearSession)
			mr.Delete("/history/{id}", sessions.DeleteHistory)

			mr.Post("/avatars/reset", stats.ResetAvatars)
		})
	})

	return r
}

// healthHandler reports ok, and the storage state when a pinger is configured.
func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		if err := p.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "degraded",
				"storage": "unreachable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "storage": "connected"})
	}
}
