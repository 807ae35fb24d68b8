package domain

import "time"

// Core domain models used internally. HTTP request/response shapes live in
// the http adapter; keep these decoupled where helpful.

// Locality is a named place used as a geographic search anchor. Immutable
// once enumerated.
type Locality struct {
	Name           string `json:"name"`
	PostalCode     string `json:"postal_code,omitempty"`
	DepartmentCode string `json:"department_code,omitempty"`
}

// QuerySpec is one free-text search phrase, possibly generated from brand or
// service selections.
type QuerySpec struct {
	Text string `json:"text"`
}

// WorkItem is the atomic unit of search-and-detail retrieval.
type WorkItem struct {
	Locality Locality
	Query    QuerySpec
}

// RawListing is a provider-returned candidate. Identity is ProviderID: two
// listings with equal ProviderID are the same entity regardless of which
// work item produced them.
type RawListing struct {
	ProviderID       string   `json:"provider_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Phone            *string  `json:"phone,omitempty"`
	Website          *string  `json:"website,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	ReviewCount      *int     `json:"review_count,omitempty"`
}

type BusinessStatus string

const (
	StatusActive  BusinessStatus = "active"
	StatusCeased  BusinessStatus = "ceased"
	StatusUnknown BusinessStatus = "unknown"
)

type VerificationMethod string

const (
	VerifyRegistryDirect VerificationMethod = "registry_direct"
	VerifyRegistrySearch VerificationMethod = "registry_search"
	VerifyCached         VerificationMethod = "cached"
	VerifyCachedClosed   VerificationMethod = "cached_closed"
	VerifyNone           VerificationMethod = "no_verification"
	VerifyError          VerificationMethod = "error"
)

// ClassificationVerdict is attached to a RawListing before persistence.
type ClassificationVerdict struct {
	IsRepairer         bool               `json:"is_repairer"`
	Confidence         float64            `json:"confidence"`
	Services           []string           `json:"services,omitempty"`
	BusinessStatus     BusinessStatus     `json:"business_status"`
	VerificationMethod VerificationMethod `json:"verification_method"`
	RegistryID         string             `json:"registry_id,omitempty"`
}

type GeoAccuracy string

const (
	AccuracyPrecise     GeoAccuracy = "precise"
	AccuracyApproximate GeoAccuracy = "approximate"
)

// GeocodeResult carries coordinates plus their provenance. Fallback results
// (department centroid + jitter) are tagged so consumers can tell them apart
// from provider-resolved coordinates.
type GeocodeResult struct {
	Lat      float64     `json:"lat"`
	Lng      float64     `json:"lng"`
	Accuracy GeoAccuracy `json:"accuracy"`
	Fallback bool        `json:"fallback"`
}

// Candidate is a classified, geocoded listing accumulated by a run.
type Candidate struct {
	Listing RawListing            `json:"listing"`
	Verdict ClassificationVerdict `json:"verdict"`
	Geo     *GeocodeResult        `json:"geo,omitempty"`
}

// VerificationCacheEntry is keyed by registry id (SIRET). Entries older than
// VerificationTTL are treated as absent, never as authoritative.
type VerificationCacheEntry struct {
	RegistryID     string
	IsActive       bool
	BusinessStatus BusinessStatus
	LastVerifiedAt time.Time
}

// VerificationTTL is how long a registry verdict stays authoritative.
const VerificationTTL = 7 * 24 * time.Hour

// ClosedBusinessRecord denylists a confirmed-closed business by (name,
// locality) when no registry id is known. Permanent, no TTL.
type ClosedBusinessRecord struct {
	Name       string
	Locality   string
	RecordedAt time.Time
}

type SessionStatus string

const (
	SessionPending  SessionStatus = "pending"
	SessionRunning  SessionStatus = "running"
	SessionImported SessionStatus = "imported"
	SessionFailed   SessionStatus = "failed"
)

type ScopeKind string

const (
	ScopeCity       ScopeKind = "city"
	ScopeDepartment ScopeKind = "department"
	ScopeRegion     ScopeKind = "region"
)

// Scope describes the geographic extent of a run.
type Scope struct {
	Kind       ScopeKind `json:"kind"`
	City       string    `json:"city,omitempty"`
	Department string    `json:"department,omitempty"`
	Region     string    `json:"region,omitempty"`
	Exhaustive bool      `json:"exhaustive,omitempty"`
}

// QueryConfig describes how query specs are built for a run.
type QueryConfig struct {
	Text            string   `json:"text,omitempty"`
	Combined        bool     `json:"combined,omitempty"`
	Brands          []string `json:"brands,omitempty"`
	Services        []string `json:"services,omitempty"`
	ApplyExclusions bool     `json:"apply_exclusions,omitempty"`
}

// RunCounts is the per-run outcome breakdown reported to the caller.
// Partial failures surface here as counts, not as a pass/fail flag.
type RunCounts struct {
	Discovered int `json:"discovered"`
	Verified   int `json:"verified"`
	Excluded   int `json:"excluded"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}

// ScrapeSession is the durable, resumable record of one orchestrator run.
// The orchestrator owns the in-memory copy during a run; the checkpoint
// store owns the durable copy.
type ScrapeSession struct {
	ID                string
	Scope             Scope
	Queries           QueryConfig
	Status            SessionStatus
	Progress          float64
	Message           string
	LocalityIndex     int
	TotalLocalities   int
	Results           []Candidate
	Counts            RunCounts
	DurabilityWarning bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CheckpointMeta is the progress metadata written alongside results.
type CheckpointMeta struct {
	Progress        float64
	Message         string
	LocalityIndex   int
	TotalLocalities int
	Counts          RunCounts
}
