package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"techtrack/internal/render"
	"techtrack/internal/scanner"
	"techtrack/internal/sector"
	"techtrack/pkg/model"
)

// RecordsResponse is the body of /api/records
type RecordsResponse struct {
	RunID   string         `json:"run_id"`
	AsOf    string         `json:"as_of"`
	Count   int            `json:"count"`
	Records []model.Record `json:"records"`
}

// SummaryResponse is the body of /api/summary
type SummaryResponse struct {
	RunID   string         `json:"run_id"`
	AsOf    string         `json:"as_of"`
	Summary sector.Summary `json:"summary"`
	Totals  render.Totals  `json:"totals"`
}

// ErrorsResponse is the body of /api/errors
type ErrorsResponse struct {
	RunID  string   `json:"run_id"`
	Errors []string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// published returns the latest result or answers 503 when there is none
func (s *Server) published(w http.ResponseWriter, r *http.Request) (runState, bool) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return runState{}, false
	}
	st, ok := s.snapshot()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no completed run yet")
		return runState{}, false
	}
	return st, true
}

// handleRecords returns the latest records, optionally filtered by
// ?sector= (raw code or display name) and ?failed=true|false.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	st, ok := s.published(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	sectorFilter := q.Get("sector")
	failed := q.Get("failed")

	records := make([]model.Record, 0, len(st.result.Records))
	for _, rec := range st.result.Records {
		if sectorFilter != "" && rec.Sector != sectorFilter && s.opts.Taxonomy.Resolve(rec.Sector) != sectorFilter {
			continue
		}
		if failed == "true" && !rec.Failed() || failed == "false" && rec.Failed() {
			continue
		}
		records = append(records, rec)
	}

	writeJSON(w, http.StatusOK, RecordsResponse{
		RunID:   st.result.RunID,
		AsOf:    st.result.AsOf.Format("2006-01-02"),
		Count:   len(records),
		Records: records,
	})
}

// handleRecord returns one ticker's record: /api/records/VCB
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	st, ok := s.published(w, r)
	if !ok {
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/records/")))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker required")
		return
	}
	for _, rec := range st.result.Records {
		if rec.Ticker == ticker {
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}
	writeError(w, http.StatusNotFound, "unknown ticker "+ticker)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	st, ok := s.published(w, r)
	if !ok {
		return
	}

	var analysed []model.Record
	for _, rec := range st.result.Records {
		if !rec.Failed() {
			analysed = append(analysed, rec)
		}
	}

	writeJSON(w, http.StatusOK, SummaryResponse{
		RunID:   st.result.RunID,
		AsOf:    st.result.AsOf.Format("2006-01-02"),
		Summary: st.summary,
		Totals:  render.ComputeTotals(analysed),
	})
}

func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	st, ok := s.published(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ErrorsResponse{
		RunID:  st.result.RunID,
		Errors: st.result.Errors,
	})
}

// handleStatus reports the refresh state
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, _ := s.snapshot()
	resp := map[string]any{
		"status":      st.Status,
		"message":     st.Message,
		"started_at":  st.StartedAt,
		"finished_at": st.FinishedAt,
	}
	if st.result != nil {
		resp["run_id"] = st.result.RunID
		resp["as_of"] = st.result.AsOf.Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRefresh starts an async refresh (POST); clients poll /api/status.
// An optional ?date=YYYY-MM-DD overrides the as-of date.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed, use POST", http.StatusMethodNotAllowed)
		return
	}

	var asOf time.Time
	if d := r.URL.Query().Get("date"); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		asOf = t
	}

	if st, _ := s.snapshot(); st.Status == "running" {
		writeJSON(w, http.StatusConflict, map[string]string{"status": "already_running"})
		return
	}

	go func() {
		err := s.Refresh(s.baseCtx, asOf)
		if err != nil && !errors.Is(err, ErrRunning) {
			s.opts.Logger.Error().Err(err).Msg("refresh failed")
		}
	}()

	s.opts.Logger.Info().Str("date", r.URL.Query().Get("date")).Msg("refresh requested over HTTP")
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// compile-time check that the scanner satisfies Runner
var _ Runner = (*scanner.Scanner)(nil)
