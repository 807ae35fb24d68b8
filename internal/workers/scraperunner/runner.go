package scraperunner

import (
	"context"
	"log/slog"
	"time"

	"reperio/internal/ports"
)

// ScrapeProcessor performs the scrape work for a job's session id.
type ScrapeProcessor interface {
	Process(ctx context.Context, sessionID string) error
}

// Run starts worker goroutines that claim jobs and process them.
func Run(ctx context.Context, repo ports.JobRepository, processor ScrapeProcessor, concurrency int, pollInterval time.Duration, logger *slog.Logger) {
	if concurrency < 1 {
		return
	}
	jobsCh := make(chan ports.ScrapeJob, concurrency)

	// dispatcher loop
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(jobsCh)
				return
			case <-ticker.C:
				for {
					job, found, err := repo.ClaimNext(ctx)
					if err != nil {
						logger.Error("job claim failed", "err", err)
						break
					}
					if !found {
						break
					}
					jobsCh <- job
				}
			}
		}
	}()

	// workers
	for i := 0; i < concurrency; i++ {
		go func(idx int) {
			for job := range jobsCh {
				if err := processor.Process(ctx, job.SessionID); err != nil {
					_ = repo.MarkFailed(ctx, job.ID, err.Error())
					logger.Error("job failed", "worker", idx, "job", job.ID, "err", err)
					continue
				}
				if err := repo.MarkCompleted(ctx, job.ID); err != nil {
					logger.Error("job completion failed", "worker", idx, "job", job.ID, "err", err)
				}
			}
		}(i)
	}
}

// ProcessInline starts and processes a specific session's queued job
// synchronously using the same processor logic as the background workers.
func ProcessInline(ctx context.Context, repo ports.JobRepository, processor ScrapeProcessor, sessionID string) error {
	jobID, err := repo.StartJobForSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := processor.Process(ctx, sessionID); err != nil {
		_ = repo.MarkFailed(ctx, jobID, err.Error())
		return err
	}
	return repo.MarkCompleted(ctx, jobID)
}
