package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/timetable/core/history"
	"github.com/kilianp07/timetable/core/planner"
	"github.com/kilianp07/timetable/pkg/export"
)

// Handler serves the schedule routes.
type Handler struct {
	snapshots SnapshotSource
	runs      history.RunStore
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok"}
	if snap, ok := h.snapshots.Latest(); ok {
		body["run_id"] = snap.RunID
		body["sessions"] = len(snap.Sessions)
	}
	writeJSON(w, http.StatusOK, body)
}

// Schedule handles GET /api/schedule with the exact bytes written to disk.
func (h *Handler) Schedule(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.snapshots.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no schedule converted yet")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Run-ID", snap.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(snap.Payload)
}

// Subjects handles GET /api/subjects.
func (h *Handler) Subjects(w http.ResponseWriter, _ *http.Request) {
	p, ok := h.planner(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Subjects())
}

// Groups handles GET /api/subjects/{code}/groups.
func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	p, ok := h.planner(w)
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")
	groups := p.Groups(code)
	if groups == nil {
		writeError(w, http.StatusNotFound, "unknown subject "+code)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// Plan handles POST /api/plan. ?format=csv returns CSV instead of JSON.
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	p, ok := h.planner(w)
	if !ok {
		return
	}
	var req planner.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	schedules, err := p.Plan(req)
	switch {
	case errors.Is(err, planner.ErrUnknownSubject):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		_ = export.WriteCSV(w, schedules)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = export.WriteJSON(w, schedules)
}

// Runs handles GET /api/runs?start=&end=&status=&limit=.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	q, err := parseRunQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recs, err := h.runs.Query(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []history.RunRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) planner(w http.ResponseWriter) (*planner.Planner, bool) {
	snap, ok := h.snapshots.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no schedule converted yet")
		return nil, false
	}
	return planner.New(snap.Sessions), true
}

func parseRunQuery(r *http.Request) (history.RunQuery, error) {
	v := r.URL.Query()
	q := history.RunQuery{Status: v.Get("status")}
	if s := v.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, errors.New("start must be RFC3339")
		}
		q.Start = t
	}
	if s := v.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, errors.New("end must be RFC3339")
		}
		q.End = t
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, errors.New("limit must be a non-negative integer")
		}
		q.Limit = n
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
