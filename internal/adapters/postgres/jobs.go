package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"reperio/internal/ports"
)

// ClaimNext selects the next queued job using SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context) (job ports.ScrapeJob, found bool, err error) {
	// Use explicit transaction to safely lock and transition state
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	// Lock the next queued job
	err = tx.QueryRow(ctx, `
        SELECT id, session_id FROM scrape_jobs
        WHERE status = 'queued'
        ORDER BY queued_at
        FOR UPDATE SKIP LOCKED
        LIMIT 1
    `).Scan(&job.ID, &job.SessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}

	if _, err = tx.Exec(ctx, `
        UPDATE scrape_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1
    `, job.ID); err != nil {
		return job, false, err
	}
	// Ensure the session reflects running
	if _, err = tx.Exec(ctx, `
        UPDATE scrape_sessions SET status='running', updated_at=now() WHERE id=$1
    `, job.SessionID); err != nil {
		return job, false, err
	}
	return job, true, nil
}

// EnqueueForSession creates a queued job row for a session, typically when
// starting or resuming a run.
func (db *DB) EnqueueForSession(ctx context.Context, sessionID string) (string, error) {
	var jobID string
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO scrape_jobs (session_id) VALUES ($1) RETURNING id
    `, sessionID).Scan(&jobID)
	return jobID, err
}

func (db *DB) MarkCompleted(ctx context.Context, jobID string) error {
	// complete job and session atomically
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	var sessionID string
	if err = tx.QueryRow(ctx, `SELECT session_id FROM scrape_jobs WHERE id=$1`, jobID).Scan(&sessionID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE scrape_jobs SET status='completed', finished_at=now() WHERE id=$1`, jobID); err != nil {
		return err
	}
	// The session stays pending until the user imports or deletes it; a
	// finished or interrupted run is still resumable and listable. Progress
	// is owned by the checkpoint writes, not the job transition.
	if _, err = tx.Exec(ctx, `
        UPDATE scrape_sessions SET status='pending', updated_at=now() WHERE id=$1
    `, sessionID); err != nil {
		return err
	}
	return nil
}

func (db *DB) MarkFailed(ctx context.Context, jobID string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()
	var sessionID string
	if err = tx.QueryRow(ctx, `SELECT session_id FROM scrape_jobs WHERE id=$1`, jobID).Scan(&sessionID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE scrape_jobs SET status='failed', finished_at=now(), reason=$2 WHERE id=$1`, jobID, reason); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE scrape_sessions SET status='failed', updated_at=now() WHERE id=$1`, sessionID); err != nil {
		return err
	}
	return nil
}

// StartJobForSession marks the queued job for a specific session as running
// and returns the job id. Used by the blocking request path.
func (db *DB) StartJobForSession(ctx context.Context, sessionID string) (string, error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	var jobID string
	err = tx.QueryRow(ctx, `
        SELECT id FROM scrape_jobs
        WHERE session_id = $1 AND status = 'queued'
        FOR UPDATE SKIP LOCKED
    `, sessionID).Scan(&jobID)
	if err != nil {
		return "", err
	}
	if _, err = tx.Exec(ctx, `UPDATE scrape_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1`, jobID); err != nil {
		return "", err
	}
	if _, err = tx.Exec(ctx, `UPDATE scrape_sessions SET status='running', updated_at=now() WHERE id=$1`, sessionID); err != nil {
		return "", err
	}
	return jobID, nil
}
