package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/smartnotify/console/internal/alerts"
	"github.com/smartnotify/console/internal/events"
	"github.com/smartnotify/console/internal/model"
	"github.com/smartnotify/console/internal/monitor"
	"github.com/smartnotify/console/internal/storage"
)

// Server exposes the rule views and mutations over HTTP for the browser
// front end. The publisher is optional; without a broker configured,
// mutations simply go unannounced.
type Server struct {
	logger    *zap.Logger
	sessions  *alerts.SessionManager
	publisher *events.Publisher
	collector *monitor.Collector
}

// NewServer creates the API server
func NewServer(logger *zap.Logger, sessions *alerts.SessionManager, publisher *events.Publisher, collector *monitor.Collector) *Server {
	return &Server{
		logger:    logger.Named("api"),
		sessions:  sessions,
		publisher: publisher,
		collector: collector,
	}
}

// Routes returns the HTTP handler for the console API
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/rules", s.handleList)
	mux.HandleFunc("GET /api/rules/summary", s.handleSummary)
	mux.HandleFunc("POST /api/rules", s.handleCreate)
	mux.HandleFunc("POST /api/rules/{id}/toggle", s.handleToggle)
	mux.HandleFunc("DELETE /api/rules/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return mux
}

// handleList serves the filtered rule list plus the summary counts.
// Filters come from the query string; a fetch failure downgrades to a
// message in the response rather than an error status, so the page keeps
// rendering the last known collection.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	s.collector.CountFetch()

	session := s.sessions.Session(viewer)
	var fetchErr error
	if !session.Loaded() || r.URL.Query().Get("refresh") != "" {
		fetchErr = session.Refresh(r.Context())
	}

	spec := specFromQuery(r)
	view := session.View(spec)

	resp := listResponse{
		Rules:   renderRules(view.Rules, time.Now()),
		Summary: view.Summary,
	}
	if fetchErr != nil {
		s.collector.CountFailure()
		resp.Error = "failed to load alert rules"
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleSummary serves the filter-independent aggregate counts
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}

	session := s.sessions.Session(viewer)
	if !session.Loaded() {
		if err := session.Refresh(r.Context()); err != nil {
			s.collector.CountFailure()
		}
	}

	writeJSON(w, http.StatusOK, session.View(alerts.FilterSpec{}).Summary)
}

// handleCreate proxies a CRUD form submission to the store
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	s.collector.CountMutation()

	var rule model.AlertRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	session := s.sessions.Session(viewer)
	created, err := session.Create(r.Context(), rule)
	if err != nil {
		s.collector.CountFailure()
		writeJSONError(w, http.StatusBadGateway, "failed to create alert rule")
		return
	}

	if s.publisher != nil {
		s.publisher.RuleCreated(created.ID, viewer.ID)
	}

	writeJSON(w, http.StatusCreated, renderRule(created, time.Now()))
}

// handleToggle flips the active flag of one rule
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	s.collector.CountMutation()

	id := r.PathValue("id")
	session := s.sessions.Session(viewer)

	active, err := session.Toggle(r.Context(), id)
	if err != nil {
		s.collector.CountFailure()
		if errors.Is(err, alerts.ErrRuleNotVisible) || errors.Is(err, storage.ErrRuleNotFound) {
			writeJSONError(w, http.StatusNotFound, "alert rule not found")
			return
		}
		writeJSONError(w, http.StatusBadGateway, "failed to toggle alert rule")
		return
	}

	if s.publisher != nil {
		s.publisher.RuleToggled(id, viewer.ID, active)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"is_active": active,
	})
}

// handleDelete removes one rule
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireViewer(w, r)
	if !ok {
		return
	}
	s.collector.CountMutation()

	id := r.PathValue("id")
	session := s.sessions.Session(viewer)

	if err := session.Delete(r.Context(), id); err != nil {
		s.collector.CountFailure()
		if errors.Is(err, alerts.ErrRuleNotVisible) || errors.Is(err, storage.ErrRuleNotFound) {
			writeJSONError(w, http.StatusNotFound, "alert rule not found")
			return
		}
		writeJSONError(w, http.StatusBadGateway, "failed to delete alert rule")
		return
	}

	if s.publisher != nil {
		s.publisher.RuleDeleted(id, viewer.ID)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "alert rule deleted"})
}

// handleHealth serves the process status snapshot
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.collector.Snapshot())
}

// specFromQuery reads the filter criteria from the query string. Absent
// parameters select everything.
func specFromQuery(r *http.Request) alerts.FilterSpec {
	q := r.URL.Query()
	return alerts.FilterSpec{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Severity: q.Get("severity"),
		Module:   q.Get("module"),
		Date:     q.Get("date"),
	}
}
