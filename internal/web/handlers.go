package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pfrederiksen/regional-events/internal/calendar"
	"github.com/pfrederiksen/regional-events/internal/compare"
	"github.com/pfrederiksen/regional-events/internal/event"
	"github.com/pfrederiksen/regional-events/internal/filter"
	"github.com/pfrederiksen/regional-events/internal/logger"
	"github.com/pfrederiksen/regional-events/internal/render"
	"github.com/pfrederiksen/regional-events/internal/storage"
)

// regionsFromQuery reads base and target, falling back to the server defaults.
// The returned regions are always valid, even alongside an error.
func (s *Server) regionsFromQuery(r *http.Request) (event.Region, event.Region, error) {
	base, target := s.opts.Base, s.opts.Target
	q := r.URL.Query()
	if v := q.Get("base"); v != "" {
		parsed, err := event.ParseRegion(v)
		if err != nil {
			return base, target, err
		}
		base = parsed
	}
	if v := q.Get("target"); v != "" {
		parsed, err := event.ParseRegion(v)
		if err != nil {
			return base, target, err
		}
		target = parsed
	}
	return base, target, nil
}

// queryError marks a malformed query parameter
type queryError struct {
	err error
}

func (e *queryError) Error() string { return e.err.Error() }

func (e *queryError) Unwrap() error { return e.err }

// buildTable loads a fresh snapshot and builds the table for the requested regions,
// narrowed by the type, title, range and kind parameters
func (s *Server) buildTable(r *http.Request) (*compare.Table, event.Region, event.Region, error) {
	base, target, err := s.regionsFromQuery(r)
	if err != nil {
		return nil, base, target, err
	}

	q := r.URL.Query()
	f, err := filter.Parse(q.Get("type"), q.Get("title"), q.Get("range"), q.Get("kind"))
	if err != nil {
		return nil, base, target, &queryError{err: err}
	}

	s.mu.RLock()
	records, err := s.store.Load()
	s.mu.RUnlock()
	if err != nil {
		return nil, base, target, err
	}

	start := time.Now()
	table, err := compare.Build(records, base, target)
	logger.RecordTiming("web.build_table", time.Since(start))
	if err != nil {
		return nil, base, target, err
	}
	return f.Apply(table), base, target, nil
}

// statusOf maps a table error to an HTTP status
func statusOf(err error) int {
	var unknown *event.UnknownRegionError
	var query *queryError
	if errors.As(err, &unknown) || errors.As(err, &query) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func logFailure(r *http.Request, status int, err error) {
	fields := logger.Fields{"path": r.URL.Path, "query": r.URL.RawQuery, "status": status}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields, err)
	} else {
		logger.Warn("Bad request", fields)
	}
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	table, base, target, err := s.buildTable(r)
	w.Header().Set("Content-Type", render.FormatHTML.ContentType())
	if err != nil {
		status := statusOf(err)
		logFailure(r, status, err)
		w.WriteHeader(status)
		_ = s.html.RenderError(w, base, target, err.Error())
		return
	}

	if err := s.html.Render(w, table, render.Options{OldestFirst: r.URL.Query().Has("oldest")}); err != nil {
		logger.Error("Rendering table failed", nil, err)
	}
}

func (s *Server) handleTableJSON(w http.ResponseWriter, r *http.Request) {
	table, _, _, err := s.buildTable(r)
	if err != nil {
		status := statusOf(err)
		logFailure(r, status, err)
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", render.FormatJSON.ContentType())
	if err := (render.JSONRenderer{}).Render(w, table, render.Options{OldestFirst: r.URL.Query().Has("oldest")}); err != nil {
		logger.Error("Rendering table failed", nil, err)
	}
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	table, _, _, err := s.buildTable(r)
	if err != nil {
		status := statusOf(err)
		logFailure(r, status, err)
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="`+string(table.Base)+"-"+string(table.Target)+`.ics"`)
	if err := calendar.WriteICS(w, table, time.Now()); err != nil {
		logger.Error("Writing calendar failed", nil, err)
	}
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	records, err := s.store.Load()
	s.mu.RUnlock()
	if err != nil {
		logFailure(r, http.StatusInternalServerError, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	data, err := storage.Encode(records)
	if err != nil {
		logFailure(r, http.StatusInternalServerError, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
