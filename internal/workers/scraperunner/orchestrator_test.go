package scraperunner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"

	"reperio/internal/domain"
	"reperio/internal/ports"
	"reperio/internal/services/classify"
	"reperio/internal/services/enumerate"
)

// In-memory fakes for the ports; the session store mirrors the SQL
// monotonicity guard.

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*domain.ScrapeSession
	saves    []int
	nextID   int
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]*domain.ScrapeSession{}}
}

func (m *memSessions) CreateSession(_ context.Context, scope domain.Scope, queries domain.QueryConfig) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("session-%d", m.nextID)
	m.sessions[id] = &domain.ScrapeSession{ID: id, Scope: scope, Queries: queries, Status: domain.SessionPending}
	return id, nil
}

func (m *memSessions) SaveCheckpoint(_ context.Context, id string, results []domain.Candidate, meta domain.CheckpointMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ports.ErrNotFound
	}
	m.saves = append(m.saves, len(results))
	if len(results) < len(s.Results) {
		// Mirror of the store guard: never shrink the durable record.
		return nil
	}
	s.Results = append([]domain.Candidate(nil), results...)
	s.Progress = meta.Progress
	s.Message = meta.Message
	s.LocalityIndex = meta.LocalityIndex
	s.TotalLocalities = meta.TotalLocalities
	s.Counts = meta.Counts
	return nil
}

func (m *memSessions) FinalizeSession(_ context.Context, id string, results []domain.Candidate, meta domain.CheckpointMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ports.ErrNotFound
	}
	s.Results = append([]domain.Candidate(nil), results...)
	s.Progress = meta.Progress
	s.Message = meta.Message
	s.LocalityIndex = meta.LocalityIndex
	s.TotalLocalities = meta.TotalLocalities
	s.Counts = meta.Counts
	return nil
}

func (m *memSessions) GetSession(_ context.Context, id string) (domain.ScrapeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.ScrapeSession{}, ports.ErrNotFound
	}
	return *s, nil
}

func (m *memSessions) ListPendingSessions(context.Context) ([]domain.ScrapeSession, error) {
	return nil, nil
}

func (m *memSessions) ResumeSession(ctx context.Context, id string) (domain.ScrapeSession, error) {
	return m.GetSession(ctx, id)
}

func (m *memSessions) MarkImported(context.Context, string) error { return nil }

func (m *memSessions) DeleteSession(context.Context, string) error { return nil }

func (m *memSessions) SetStatus(context.Context, string, domain.SessionStatus) error { return nil }

func (m *memSessions) SetDurabilityWarning(context.Context, string) error { return nil }

type fakeSearcher struct {
	mu        sync.Mutex
	listings  map[string][]domain.RawListing // locality name -> sparse listings
	details   map[string]*domain.RawListing  // provider id -> full listing
	searched  []string
	onSearch  func(loc string)
	searchErr error
}

func (f *fakeSearcher) TextSearch(_ context.Context, _ string, loc domain.Locality) ([]domain.RawListing, error) {
	f.mu.Lock()
	f.searched = append(f.searched, loc.Name)
	f.mu.Unlock()
	if f.onSearch != nil {
		f.onSearch(loc.Name)
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.listings[loc.Name], nil
}

func (f *fakeSearcher) FetchDetails(_ context.Context, id string) (*domain.RawListing, error) {
	return f.details[id], nil
}

type fakeGeocoder struct{ calls int }

func (f *fakeGeocoder) Geocode(context.Context, string, domain.Locality) domain.GeocodeResult {
	f.calls++
	return domain.GeocodeResult{Lat: 45.76, Lng: 4.83, Accuracy: domain.AccuracyPrecise}
}

type nullCache struct{}

func (nullCache) GetVerification(context.Context, string) (domain.VerificationCacheEntry, bool, error) {
	return domain.VerificationCacheEntry{}, false, nil
}
func (nullCache) PutVerification(context.Context, domain.VerificationCacheEntry) error { return nil }

type nullDenylist struct{}

func (nullDenylist) IsClosed(context.Context, string, string) (bool, error) { return false, nil }
func (nullDenylist) RecordClosed(context.Context, domain.ClosedBusinessRecord) error { return nil }

type nullRegistry struct{}

func (nullRegistry) LookupByID(context.Context, string) (domain.BusinessStatus, error) {
	return domain.StatusUnknown, fmt.Errorf("unavailable")
}
func (nullRegistry) SearchByName(context.Context, string, string) (string, domain.BusinessStatus, error) {
	return "", domain.StatusUnknown, nil
}

func phone(s string) *string { return &s }

func sparse(ids ...string) []domain.RawListing {
	out := make([]domain.RawListing, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.RawListing{ProviderID: id, Name: "Réparation téléphone " + id})
	}
	return out
}

func newTestOrchestrator(store *memSessions, searcher *fakeSearcher, geo *fakeGeocoder) *Orchestrator {
	logger := slog.New(slog.DiscardHandler)
	classifier := classify.New(nullCache{}, nullDenylist{}, nullRegistry{}, clockwork.NewFakeClock(), logger)
	return NewOrchestrator(OrchestratorConfig{CheckpointEvery: 1}, enumerate.New(logger),
		searcher, classifier, geo, store, logger)
}

func TestRunDropsPhonelessListings(t *testing.T) {
	// Five raw listings in Lyon, two without a phone number.
	searcher := &fakeSearcher{
		listings: map[string][]domain.RawListing{"Lyon": sparse("a", "b", "c", "d", "e")},
		details: map[string]*domain.RawListing{
			"a": {ProviderID: "a", Name: "Réparation téléphone A", Phone: phone("04 78 00 00 01")},
			"b": {ProviderID: "b", Name: "Réparation téléphone B", Phone: phone("04 78 00 00 02")},
			"c": {ProviderID: "c", Name: "Réparation téléphone C"},
			"d": {ProviderID: "d", Name: "Réparation téléphone D", Phone: phone("04 78 00 00 04")},
			"e": {ProviderID: "e", Name: "Réparation téléphone E"},
		},
	}
	store := newMemSessions()
	geo := &fakeGeocoder{}
	orch := newTestOrchestrator(store, searcher, geo)

	ctx := context.Background()
	id, _ := store.CreateSession(ctx, domain.Scope{Kind: domain.ScopeCity, City: "Lyon"},
		domain.QueryConfig{Text: "réparation téléphone"})

	if err := orch.Process(ctx, id); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	sess, _ := store.GetSession(ctx, id)
	if len(sess.Results) != 3 {
		t.Fatalf("got %d results, want 3 (phoneless dropped)", len(sess.Results))
	}
	if sess.Counts.Discovered != 3 {
		t.Errorf("discovered = %d, want 3", sess.Counts.Discovered)
	}
	if sess.Progress != 1 {
		t.Errorf("progress = %v, want 1", sess.Progress)
	}
	if geo.calls != 3 {
		t.Errorf("geocode calls = %d, want one per kept repairer", geo.calls)
	}
}

func TestRunResumesFromLocalityIndex(t *testing.T) {
	searcher := &fakeSearcher{
		listings: map[string][]domain.RawListing{
			"Ajaccio": sparse("aj1"),
			"Bastia":  sparse("ba1"),
		},
		details: map[string]*domain.RawListing{
			"aj1": {ProviderID: "aj1", Name: "Réparation téléphone Ajaccio", Phone: phone("04 95 00 00 01")},
			"ba1": {ProviderID: "ba1", Name: "Réparation téléphone Bastia", Phone: phone("04 95 00 00 02")},
		},
	}
	store := newMemSessions()
	orch := newTestOrchestrator(store, searcher, &fakeGeocoder{})

	ctx := context.Background()
	id, _ := store.CreateSession(ctx, domain.Scope{Kind: domain.ScopeRegion, Region: "corse"},
		domain.QueryConfig{Text: "réparation téléphone"})

	// Simulate an interrupted run checkpointed after Ajaccio.
	prior := domain.Candidate{
		Listing: domain.RawListing{ProviderID: "aj1", Name: "Réparation téléphone Ajaccio", Phone: phone("04 95 00 00 01")},
		Verdict: domain.ClassificationVerdict{IsRepairer: true, Confidence: 0.8},
	}
	if err := store.SaveCheckpoint(ctx, id, []domain.Candidate{prior}, domain.CheckpointMeta{
		Progress: 0.5, LocalityIndex: 1, TotalLocalities: 2,
		Counts: domain.RunCounts{Discovered: 1},
	}); err != nil {
		t.Fatal(err)
	}

	if err := orch.Process(ctx, id); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	for _, loc := range searcher.searched {
		if loc == "Ajaccio" {
			t.Error("resume reprocessed an already completed locality")
		}
	}
	sess, _ := store.GetSession(ctx, id)
	if len(sess.Results) != 2 {
		t.Fatalf("resumed run lost or duplicated results: %d", len(sess.Results))
	}
	if sess.Counts.Discovered != 2 {
		t.Errorf("discovered = %d, want prior 1 + new 1", sess.Counts.Discovered)
	}
}

func TestRunDeduplicatesAcrossLocalities(t *testing.T) {
	// The same business surfaces in both Corsican localities; the final
	// filtered set must replace the larger intermediate checkpoint.
	listing := domain.RawListing{ProviderID: "dup", Name: "Réparation téléphone Corse", Phone: phone("04 95 00 00 09")}
	searcher := &fakeSearcher{
		listings: map[string][]domain.RawListing{
			"Ajaccio": sparse("dup"),
			"Bastia":  sparse("dup"),
		},
		details: map[string]*domain.RawListing{"dup": &listing},
	}
	store := newMemSessions()
	orch := newTestOrchestrator(store, searcher, &fakeGeocoder{})

	ctx := context.Background()
	id, _ := store.CreateSession(ctx, domain.Scope{Kind: domain.ScopeRegion, Region: "corse"},
		domain.QueryConfig{Text: "réparation téléphone"})

	if err := orch.Process(ctx, id); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	sess, _ := store.GetSession(ctx, id)
	if len(sess.Results) != 1 {
		t.Fatalf("got %d results, want 1 after cross-locality dedup", len(sess.Results))
	}
	if sess.Counts.Duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", sess.Counts.Duplicates)
	}
	if sess.Counts.Discovered != 2 {
		t.Errorf("discovered = %d, want 2 (dedup happens after counting)", sess.Counts.Discovered)
	}
	if !strings.HasPrefix(sess.Message, "done:") {
		t.Errorf("message = %q, want the final summary", sess.Message)
	}
}

func TestCancelStopsAtWorkItemBoundary(t *testing.T) {
	store := newMemSessions()
	searcher := &fakeSearcher{
		listings: map[string][]domain.RawListing{},
		details:  map[string]*domain.RawListing{},
	}
	orch := newTestOrchestrator(store, searcher, &fakeGeocoder{})

	ctx := context.Background()
	id, _ := store.CreateSession(ctx, domain.Scope{Kind: domain.ScopeRegion, Region: "corse"},
		domain.QueryConfig{Text: "réparation téléphone"})

	searcher.onSearch = func(string) { orch.Cancel(id) }

	if err := orch.Process(ctx, id); err != nil {
		t.Fatalf("cancelled run must not fail the job: %v", err)
	}

	if got := len(searcher.searched); got != 1 {
		t.Errorf("searched %d localities after cancel, want 1", got)
	}
	sess, _ := store.GetSession(ctx, id)
	if sess.LocalityIndex != 1 {
		t.Errorf("checkpoint locality index = %d, want 1 (resumable boundary)", sess.LocalityIndex)
	}
	if sess.TotalLocalities != 2 {
		t.Errorf("total localities = %d, want 2", sess.TotalLocalities)
	}
}

func TestEmptyScopeFinishesCleanly(t *testing.T) {
	store := newMemSessions()
	orch := newTestOrchestrator(store, &fakeSearcher{}, &fakeGeocoder{})

	ctx := context.Background()
	id, _ := store.CreateSession(ctx, domain.Scope{Kind: domain.ScopeRegion, Region: "atlantide"},
		domain.QueryConfig{Text: "réparation téléphone"})

	if err := orch.Process(ctx, id); err != nil {
		t.Fatalf("empty enumeration must not fail the run: %v", err)
	}
	sess, _ := store.GetSession(ctx, id)
	if sess.Progress != 1 || len(sess.Results) != 0 {
		t.Errorf("session = %+v, want finished and empty", sess)
	}
}

func TestSearchFailureCountsNotAborts(t *testing.T) {
	store := newMemSessions()
	searcher := &fakeSearcher{searchErr: fmt.Errorf("quota exceeded")}
	orch := newTestOrchestrator(store, searcher, &fakeGeocoder{})

	ctx := context.Background()
	id, _ := store.CreateSession(ctx, domain.Scope{Kind: domain.ScopeRegion, Region: "corse"},
		domain.QueryConfig{Text: "réparation téléphone"})

	if err := orch.Process(ctx, id); err != nil {
		t.Fatalf("provider failures must stay local: %v", err)
	}
	sess, _ := store.GetSession(ctx, id)
	if sess.Counts.Failed != 2 {
		t.Errorf("failed = %d, want one per work item", sess.Counts.Failed)
	}
	if sess.Progress != 1 {
		t.Errorf("progress = %v, want 1", sess.Progress)
	}
}

func TestCheckpointMonotonicity(t *testing.T) {
	store := newMemSessions()
	ctx := context.Background()
	id, _ := store.CreateSession(ctx, domain.Scope{Kind: domain.ScopeCity, City: "Lyon"}, domain.QueryConfig{})

	batch := func(n int) []domain.Candidate {
		out := make([]domain.Candidate, n)
		for i := range out {
			out[i] = domain.Candidate{Listing: domain.RawListing{ProviderID: fmt.Sprintf("p%d", i)}}
		}
		return out
	}

	for _, n := range []int{3, 7, 7, 12} {
		if err := store.SaveCheckpoint(ctx, id, batch(n), domain.CheckpointMeta{}); err != nil {
			t.Fatal(err)
		}
	}
	// A stale smaller write must not shrink the record.
	if err := store.SaveCheckpoint(ctx, id, batch(5), domain.CheckpointMeta{}); err != nil {
		t.Fatal(err)
	}

	sess, _ := store.GetSession(ctx, id)
	if len(sess.Results) != 12 {
		t.Errorf("stored results = %d, want 12 after [3,7,7,12,5]", len(sess.Results))
	}

	// The finalize path is exempt: the post-filter set may be smaller.
	if err := store.FinalizeSession(ctx, id, batch(4), domain.CheckpointMeta{}); err != nil {
		t.Fatal(err)
	}
	sess, _ = store.GetSession(ctx, id)
	if len(sess.Results) != 4 {
		t.Errorf("finalized results = %d, want 4", len(sess.Results))
	}
}
