// Package schedule serves the latest converted timetable over HTTP.
package schedule

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kilianp07/timetable/core/emit"
	"github.com/kilianp07/timetable/core/history"
	"github.com/kilianp07/timetable/infra/logger"
)

// SnapshotSource provides the latest payload.
type SnapshotSource interface {
	Latest() (emit.Snapshot, bool)
}

// Deps are the collaborators of the router. Runs and Metrics are optional.
type Deps struct {
	Snapshots SnapshotSource
	Runs      history.RunStore
	Metrics   http.Handler
	// Token, when set, is required as a bearer token on /api routes.
	Token string
}

// NewRouter creates the chi router with all routes and middleware.
func NewRouter(d Deps) *chi.Mux {
	log := logger.New("http")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	h := &Handler{snapshots: d.Snapshots, runs: d.Runs}

	r.Get("/health", h.Health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(BearerAuth(d.Token))
		r.Get("/schedule", h.Schedule)
		r.Get("/subjects", h.Subjects)
		r.Get("/subjects/{code}/groups", h.Groups)
		r.Post("/plan", h.Plan)
		if d.Runs != nil {
			r.Get("/runs", h.Runs)
		}
	})
	return r
}
