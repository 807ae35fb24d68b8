// Package scrape owns the run lifecycle: creating sessions, enqueueing
// their jobs, and exposing session operations to the API layer.
package scrape

import (
	"context"
	"fmt"

	"reperio/internal/domain"
	"reperio/internal/ports"
)

type Service struct {
	sessions ports.SessionRepository
	jobs     ports.JobRepository
}

func New(sessions ports.SessionRepository, jobs ports.JobRepository) *Service {
	return &Service{sessions: sessions, jobs: jobs}
}

// StartRun creates a session and queues its job. If no session id can be
// obtained the run aborts before any work starts; nothing partial exists.
func (s *Service) StartRun(ctx context.Context, scope domain.Scope, queries domain.QueryConfig) (string, error) {
	sessionID, err := s.sessions.CreateSession(ctx, scope, queries)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if _, err := s.jobs.EnqueueForSession(ctx, sessionID); err != nil {
		return "", fmt.Errorf("enqueue run: %w", err)
	}
	return sessionID, nil
}

func (s *Service) Status(ctx context.Context, sessionID string) (domain.ScrapeSession, error) {
	return s.sessions.GetSession(ctx, sessionID)
}

func (s *Service) ListPendingSessions(ctx context.Context) ([]domain.ScrapeSession, error) {
	return s.sessions.ListPendingSessions(ctx)
}

func (s *Service) Results(ctx context.Context, sessionID string) ([]domain.Candidate, error) {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Results, nil
}

// Resume re-queues an interrupted session; the orchestrator continues from
// the checkpointed locality index instead of restarting the scope.
func (s *Service) Resume(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.ResumeSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Status == domain.SessionImported {
		return fmt.Errorf("session %s already imported", sessionID)
	}
	_, err = s.jobs.EnqueueForSession(ctx, sessionID)
	return err
}

func (s *Service) MarkImported(ctx context.Context, sessionID string) error {
	return s.sessions.MarkImported(ctx, sessionID)
}

func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.DeleteSession(ctx, sessionID)
}
