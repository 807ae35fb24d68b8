package ports

import "context"

type ScrapeJob struct {
	ID        string
	SessionID string
}

// JobRepository supports claiming and updating scrape jobs.
type JobRepository interface {
	ClaimNext(ctx context.Context) (job ScrapeJob, found bool, err error)
	EnqueueForSession(ctx context.Context, sessionID string) (jobID string, err error)
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
	StartJobForSession(ctx context.Context, sessionID string) (jobID string, err error)
}
