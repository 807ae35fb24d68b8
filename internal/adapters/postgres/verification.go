package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"reperio/internal/domain"
)

// VerificationRepository

// GetVerification returns the cached verdict for a registry id. Entries
// older than domain.VerificationTTL are reported as absent so the caller
// re-verifies instead of trusting a stale status.
func (db *DB) GetVerification(ctx context.Context, registryID string) (domain.VerificationCacheEntry, bool, error) {
	var e domain.VerificationCacheEntry
	var status string
	err := db.Pool.QueryRow(ctx, `
        SELECT siret, is_active, business_status, last_verified_at
        FROM verification_cache
        WHERE siret = $1 AND last_verified_at > now() - make_interval(secs => $2)
    `, registryID, domain.VerificationTTL.Seconds()).
		Scan(&e.RegistryID, &e.IsActive, &status, &e.LastVerifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return e, false, nil
	}
	if err != nil {
		return e, false, err
	}
	e.BusinessStatus = domain.BusinessStatus(status)
	return e, true, nil
}

func (db *DB) PutVerification(ctx context.Context, entry domain.VerificationCacheEntry) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO verification_cache (siret, is_active, business_status, last_verified_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (siret) DO UPDATE SET
            is_active = EXCLUDED.is_active,
            business_status = EXCLUDED.business_status,
            last_verified_at = now()
    `, entry.RegistryID, entry.IsActive, string(entry.BusinessStatus))
	return err
}

// DenylistRepository

func (db *DB) IsClosed(ctx context.Context, name, locality string) (bool, error) {
	var found bool
	err := db.Pool.QueryRow(ctx, `
        SELECT true FROM closed_businesses WHERE name = $1 AND locality = $2
    `, name, locality).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return found, err
}

func (db *DB) RecordClosed(ctx context.Context, rec domain.ClosedBusinessRecord) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO closed_businesses (name, locality)
        VALUES ($1, $2)
        ON CONFLICT (name, locality) DO NOTHING
    `, rec.Name, rec.Locality)
	return err
}
