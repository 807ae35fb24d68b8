package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"reperio/internal/domain"
)

// SessionRepository

func (db *DB) CreateSession(ctx context.Context, scope domain.Scope, queries domain.QueryConfig) (string, error) {
	scopeJSON, err := json.Marshal(scope)
	if err != nil {
		return "", err
	}
	queriesJSON, err := json.Marshal(queries)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = db.Pool.Exec(ctx, `
        INSERT INTO scrape_sessions (id, scope, queries, status)
        VALUES ($1, $2, $3, 'pending')
    `, id, scopeJSON, queriesJSON)
	if err != nil {
		return "", err
	}
	return id, nil
}

// SaveCheckpoint upserts the session's accumulated results. The
// result_count guard makes the write a no-op when it would shrink the
// stored record, so a stale or smaller write can never lose checkpointed
// entries.
func (db *DB) SaveCheckpoint(ctx context.Context, sessionID string, results []domain.Candidate, meta domain.CheckpointMeta) error {
	return db.writeCheckpoint(ctx, sessionID, results, meta, true)
}

// FinalizeSession writes the post-filter result set. The monotonic guard is
// deliberately bypassed here: dedup and the exclusion filter run after the
// last intermediate checkpoint and may legitimately shrink the record.
func (db *DB) FinalizeSession(ctx context.Context, sessionID string, results []domain.Candidate, meta domain.CheckpointMeta) error {
	return db.writeCheckpoint(ctx, sessionID, results, meta, false)
}

func (db *DB) writeCheckpoint(ctx context.Context, sessionID string, results []domain.Candidate, meta domain.CheckpointMeta, guarded bool) error {
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return err
	}
	countsJSON, err := json.Marshal(meta.Counts)
	if err != nil {
		return err
	}
	query := `
        UPDATE scrape_sessions
        SET results = $2,
            result_count = $3,
            progress = $4,
            message = $5,
            locality_index = $6,
            total_localities = $7,
            counts = $8,
            status = 'running',
            updated_at = now()
        WHERE id = $1`
	if guarded {
		query += ` AND result_count <= $3`
	}
	tag, err := db.Pool.Exec(ctx, query,
		sessionID, resultsJSON, len(results), meta.Progress, meta.Message,
		meta.LocalityIndex, meta.TotalLocalities, countsJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if !guarded {
			return ErrNotFound
		}
		// Either the session is gone or the write would have shrunk it.
		var exists bool
		if err := db.Pool.QueryRow(ctx, `SELECT true FROM scrape_sessions WHERE id = $1`, sessionID).Scan(&exists); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
	}
	return nil
}

func (db *DB) GetSession(ctx context.Context, sessionID string) (domain.ScrapeSession, error) {
	return db.scanSession(ctx, `
        SELECT id, scope, queries, status, progress, message, locality_index,
               total_localities, results, counts, durability_warning,
               created_at, updated_at
        FROM scrape_sessions WHERE id = $1
    `, sessionID)
}

func (db *DB) ListPendingSessions(ctx context.Context) ([]domain.ScrapeSession, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, scope, queries, status, progress, message, locality_index,
               total_localities, '[]'::jsonb, counts, durability_warning,
               created_at, updated_at
        FROM scrape_sessions
        WHERE status <> 'imported'
        ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScrapeSession
	for rows.Next() {
		s, err := scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ResumeSession returns the last saved checkpoint, results included.
func (db *DB) ResumeSession(ctx context.Context, sessionID string) (domain.ScrapeSession, error) {
	return db.GetSession(ctx, sessionID)
}

func (db *DB) MarkImported(ctx context.Context, sessionID string) error {
	return db.setStatus(ctx, sessionID, domain.SessionImported)
}

func (db *DB) DeleteSession(ctx context.Context, sessionID string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM scrape_sessions WHERE id = $1`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) SetStatus(ctx context.Context, sessionID string, status domain.SessionStatus) error {
	return db.setStatus(ctx, sessionID, status)
}

func (db *DB) SetDurabilityWarning(ctx context.Context, sessionID string) error {
	_, err := db.Pool.Exec(ctx, `
        UPDATE scrape_sessions SET durability_warning = true, updated_at = now() WHERE id = $1
    `, sessionID)
	return err
}

func (db *DB) setStatus(ctx context.Context, sessionID string, status domain.SessionStatus) error {
	tag, err := db.Pool.Exec(ctx, `
        UPDATE scrape_sessions SET status = $2, updated_at = now() WHERE id = $1
    `, sessionID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanSession(ctx context.Context, query string, args ...any) (domain.ScrapeSession, error) {
	s, err := scanSessionRow(db.Pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ScrapeSession{}, ErrNotFound
	}
	return s, err
}

func scanSessionRow(row rowScanner) (domain.ScrapeSession, error) {
	var (
		s           domain.ScrapeSession
		scopeJSON   []byte
		queriesJSON []byte
		resultsJSON []byte
		countsJSON  []byte
		status      string
		created     time.Time
		updated     time.Time
	)
	err := row.Scan(&s.ID, &scopeJSON, &queriesJSON, &status, &s.Progress, &s.Message,
		&s.LocalityIndex, &s.TotalLocalities, &resultsJSON, &countsJSON,
		&s.DurabilityWarning, &created, &updated)
	if err != nil {
		return s, err
	}
	s.Status = domain.SessionStatus(status)
	s.CreatedAt = created
	s.UpdatedAt = updated
	if err := json.Unmarshal(scopeJSON, &s.Scope); err != nil {
		return s, err
	}
	if len(queriesJSON) > 0 && string(queriesJSON) != "{}" {
		if err := json.Unmarshal(queriesJSON, &s.Queries); err != nil {
			return s, err
		}
	}
	if err := json.Unmarshal(resultsJSON, &s.Results); err != nil {
		return s, err
	}
	if len(countsJSON) > 0 && string(countsJSON) != "{}" {
		if err := json.Unmarshal(countsJSON, &s.Counts); err != nil {
			return s, err
		}
	}
	return s, nil
}
