package ports

import (
	"context"

	"reperio/internal/domain"
)

// PlaceSearcher performs text searches and detail fetches against a
// place-search provider. Both may fail or return empty; the provider has
// undocumented rate limits, so implementations pace their own calls.
type PlaceSearcher interface {
	// TextSearch drains all result pages up to a provider hard cap and
	// returns sparsely populated listings (id, name, address only).
	TextSearch(ctx context.Context, query string, loc domain.Locality) ([]domain.RawListing, error)
	// FetchDetails returns the fully populated listing, or nil when the
	// provider has no record or the call failed.
	FetchDetails(ctx context.Context, providerID string) (*domain.RawListing, error)
}

// Geocoder resolves a postal address to coordinates. Implementations never
// return an error for unresolvable addresses; they substitute a tagged
// fallback centroid instead.
type Geocoder interface {
	Geocode(ctx context.Context, address string, loc domain.Locality) domain.GeocodeResult
}

// RegistryLookup is the business-registry collaborator used to confirm a
// candidate's administrative status.
type RegistryLookup interface {
	LookupByID(ctx context.Context, registryID string) (domain.BusinessStatus, error)
	// SearchByName returns the resolved registry id and status of the best
	// match above the similarity threshold, or ("", unknown, nil) when no
	// match is good enough.
	SearchByName(ctx context.Context, name, locality string) (string, domain.BusinessStatus, error)
}

// Scraper is the run/session lifecycle surface consumed by the HTTP layer.
type Scraper interface {
	StartRun(ctx context.Context, scope domain.Scope, queries domain.QueryConfig) (sessionID string, err error)
	Status(ctx context.Context, sessionID string) (domain.ScrapeSession, error)
	ListPendingSessions(ctx context.Context) ([]domain.ScrapeSession, error)
	Results(ctx context.Context, sessionID string) ([]domain.Candidate, error)
	Resume(ctx context.Context, sessionID string) error
	MarkImported(ctx context.Context, sessionID string) error
	DeleteSession(ctx context.Context, sessionID string) error
}
