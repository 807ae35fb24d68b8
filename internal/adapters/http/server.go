package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"reperio/internal/domain"
	"reperio/internal/ports"
	"reperio/internal/workers/scraperunner"
)

// Server exposes the run/session operations to the surrounding product.
// The UI layer is a thin consumer polling progress; everything stateful
// lives in the session store.
type Server struct {
	scraper   ports.Scraper
	jobs      ports.JobRepository
	processor scraperunner.ScrapeProcessor
	orch      *scraperunner.Orchestrator
	log       *slog.Logger
}

func New(scraper ports.Scraper, jobs ports.JobRepository, processor scraperunner.ScrapeProcessor, orch *scraperunner.Orchestrator, logger *slog.Logger) *Server {
	return &Server{scraper: scraper, jobs: jobs, processor: processor, orch: orch, log: logger}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.handleStartRun)
		r.Get("/{id}", s.handleRunStatus)
		r.Post("/{id}/cancel", s.handleCancelRun)
	})
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Get("/{id}/results", s.handleSessionResults)
		r.Post("/{id}/resume", s.handleResumeSession)
		r.Post("/{id}/import", s.handleImportSession)
		r.Delete("/{id}", s.handleDeleteSession)
	})
	return r
}

type startRunRequest struct {
	Scope   domain.Scope       `json:"scope"`
	Queries domain.QueryConfig `json:"queries"`
}

type progressResponse struct {
	SessionID         string               `json:"session_id"`
	Status            domain.SessionStatus `json:"status"`
	Percent           float64              `json:"percent"`
	Message           string               `json:"message"`
	PartialCount      int                  `json:"partial_count"`
	Counts            domain.RunCounts     `json:"counts"`
	DurabilityWarning bool                 `json:"durability_warning,omitempty"`
}

func progressFrom(sess domain.ScrapeSession) progressResponse {
	return progressResponse{
		SessionID:         sess.ID,
		Status:            sess.Status,
		Percent:           sess.Progress * 100,
		Message:           sess.Message,
		PartialCount:      len(sess.Results),
		Counts:            sess.Counts,
		DurabilityWarning: sess.DurabilityWarning,
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req startRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	sessionID, err := s.scraper.StartRun(r.Context(), req.Scope, req.Queries)
	if err != nil {
		s.log.Error("start run failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "could not start run")
		return
	}

	// Blocking path, mainly for tests and small city-scoped runs.
	if r.URL.Query().Get("wait") == "true" {
		timeout := 30
		if t, err := strconv.Atoi(r.URL.Query().Get("timeout")); err == nil && t > 0 {
			timeout = t
		}
		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(timeout)*time.Second)
		defer cancel()
		if err := scraperunner.ProcessInline(ctx, s.jobs, s.processor, sessionID); err != nil {
			s.log.Error("inline run failed", "session", sessionID, "err", err)
			s.writeError(w, http.StatusInternalServerError, "run failed")
			return
		}
		sess, err := s.scraper.Status(ctx, sessionID)
		if err != nil {
			s.notFoundOr500(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, progressFrom(sess))
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{"session_id": sessionID})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	sess, err := s.scraper.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.notFoundOr500(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, progressFrom(sess))
}

func (s *Server) handleCancelRun(w http.ResponseWriter, r *http.Request) {
	if !s.orch.Cancel(chi.URLParam(r, "id")) {
		s.writeError(w, http.StatusConflict, "no run in flight for this session")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.scraper.ListPendingSessions(r.Context())
	if err != nil {
		s.log.Error("list sessions failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "could not list sessions")
		return
	}
	out := make([]progressResponse, 0, len(sessions))
	for _, sess := range sessions {
		p := progressFrom(sess)
		// Listing omits result payloads; report the stored count instead.
		p.PartialCount = sess.Counts.Discovered
		out = append(out, p)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSessionResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.scraper.Results(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.notFoundOr500(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.scraper.Resume(r.Context(), id); err != nil {
		s.notFoundOr500(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"session_id": id})
}

func (s *Server) handleImportSession(w http.ResponseWriter, r *http.Request) {
	if err := s.scraper.MarkImported(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.notFoundOr500(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// Stop any in-flight run first; deletion of a running session is a
	// cancellation plus discard.
	s.orch.Cancel(id)
	if err := s.scraper.DeleteSession(r.Context(), id); err != nil {
		s.notFoundOr500(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) notFoundOr500(w http.ResponseWriter, err error) {
	if errors.Is(err, ports.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.log.Error("request failed", "err", err)
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}
