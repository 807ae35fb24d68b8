package ports

import (
	"context"
	"errors"

	"reperio/internal/domain"
)

// ErrNotFound is returned by repositories for missing sessions.
var ErrNotFound = errors.New("not found")

// SessionRepository is the durable side of scrape sessions. It is the only
// writer to durable session storage.
type SessionRepository interface {
	CreateSession(ctx context.Context, scope domain.Scope, queries domain.QueryConfig) (sessionID string, err error)
	// SaveCheckpoint is an idempotent upsert. A write carrying fewer results
	// than the stored checkpoint must leave the stored record untouched
	// (monotonic growth per session).
	SaveCheckpoint(ctx context.Context, sessionID string, results []domain.Candidate, meta domain.CheckpointMeta) error
	// FinalizeSession writes the post-filter result set of a completed run.
	// Unlike SaveCheckpoint it may shrink the stored record: dedup and the
	// exclusion filter run after the last intermediate checkpoint.
	FinalizeSession(ctx context.Context, sessionID string, results []domain.Candidate, meta domain.CheckpointMeta) error
	GetSession(ctx context.Context, sessionID string) (domain.ScrapeSession, error)
	ListPendingSessions(ctx context.Context) ([]domain.ScrapeSession, error)
	// ResumeSession returns the last saved checkpoint so the orchestrator
	// can continue from a partial locality index.
	ResumeSession(ctx context.Context, sessionID string) (domain.ScrapeSession, error)
	MarkImported(ctx context.Context, sessionID string) error
	DeleteSession(ctx context.Context, sessionID string) error
	SetStatus(ctx context.Context, sessionID string, status domain.SessionStatus) error
	SetDurabilityWarning(ctx context.Context, sessionID string) error
}

// VerificationRepository stores registry verdicts keyed by registry id.
// Upsert semantics; last writer wins — entries are idempotent facts about
// the external world, not run-specific state.
type VerificationRepository interface {
	// GetVerification returns the stored verdict for a registry id.
	// Freshness is the classifier's policy; implementations may additionally
	// drop entries older than domain.VerificationTTL at read time.
	GetVerification(ctx context.Context, registryID string) (entry domain.VerificationCacheEntry, found bool, err error)
	PutVerification(ctx context.Context, entry domain.VerificationCacheEntry) error
}

// DenylistRepository stores confirmed-closed businesses keyed by
// (name, locality). Records are permanent.
type DenylistRepository interface {
	IsClosed(ctx context.Context, name, locality string) (bool, error)
	RecordClosed(ctx context.Context, rec domain.ClosedBusinessRecord) error
}
