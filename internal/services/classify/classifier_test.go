package classify

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"reperio/internal/domain"
)

type fakeCache struct {
	entries map[string]domain.VerificationCacheEntry
	puts    int
}

func (f *fakeCache) GetVerification(_ context.Context, id string) (domain.VerificationCacheEntry, bool, error) {
	e, ok := f.entries[id]
	return e, ok, nil
}

func (f *fakeCache) PutVerification(_ context.Context, e domain.VerificationCacheEntry) error {
	f.entries[e.RegistryID] = e
	f.puts++
	return nil
}

type fakeDenylist struct {
	closed  map[string]bool
	records int
}

func key(name, loc string) string { return name + "|" + loc }

func (f *fakeDenylist) IsClosed(_ context.Context, name, loc string) (bool, error) {
	return f.closed[key(name, loc)], nil
}

func (f *fakeDenylist) RecordClosed(_ context.Context, rec domain.ClosedBusinessRecord) error {
	f.closed[key(rec.Name, rec.Locality)] = true
	f.records++
	return nil
}

type fakeRegistry struct {
	byID       map[string]domain.BusinessStatus
	searchID   string
	searchStat domain.BusinessStatus
	err        error
	idCalls    int
	nameCalls  int
}

func (f *fakeRegistry) LookupByID(_ context.Context, id string) (domain.BusinessStatus, error) {
	f.idCalls++
	if f.err != nil {
		return domain.StatusUnknown, f.err
	}
	if st, ok := f.byID[id]; ok {
		return st, nil
	}
	return domain.StatusUnknown, errors.New("no record")
}

func (f *fakeRegistry) SearchByName(_ context.Context, _, _ string) (string, domain.BusinessStatus, error) {
	f.nameCalls++
	if f.err != nil {
		return "", domain.StatusUnknown, f.err
	}
	return f.searchID, f.searchStat, nil
}

type fixture struct {
	cache    *fakeCache
	denylist *fakeDenylist
	registry *fakeRegistry
	clock    *clockwork.FakeClock
	c        *Classifier
}

func newFixture() *fixture {
	f := &fixture{
		cache:    &fakeCache{entries: map[string]domain.VerificationCacheEntry{}},
		denylist: &fakeDenylist{closed: map[string]bool{}},
		registry: &fakeRegistry{byID: map[string]domain.BusinessStatus{}},
		clock:    clockwork.NewFakeClock(),
	}
	f.c = New(f.cache, f.denylist, f.registry, f.clock, slog.New(slog.DiscardHandler))
	return f
}

var lyon = domain.Locality{Name: "Lyon", PostalCode: "69001", DepartmentCode: "69"}

func TestKeywordStage(t *testing.T) {
	tests := []struct {
		name     string
		listing  string
		positive bool
	}{
		{"repair shop", "Réparation Téléphone Lyon", true},
		{"accent-free repair shop", "Reparation smartphone express", true},
		{"computer shop vetoed", "Réparation ordinateur Lyon", false},
		{"car shop vetoed", "Réparation automobile Dupont", false},
		{"bakery irrelevant", "Boulangerie du Parc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			v := f.c.Classify(context.Background(), domain.RawListing{Name: tt.listing}, lyon)
			if v.IsRepairer != tt.positive {
				t.Errorf("IsRepairer = %v, want %v", v.IsRepairer, tt.positive)
			}
			want := 0.2
			if tt.positive {
				want = 0.8
			}
			// Registry fakes return no match here, so the keyword
			// confidence survives verification.
			if v.Confidence != want {
				t.Errorf("Confidence = %v, want %v", v.Confidence, want)
			}
		})
	}
}

func TestNegativeListingSpendsNoRegistryCall(t *testing.T) {
	f := newFixture()
	f.c.Classify(context.Background(), domain.RawListing{Name: "Boulangerie du Parc"}, lyon)
	if f.registry.idCalls+f.registry.nameCalls != 0 {
		t.Error("keyword-negative listing must not reach the registry")
	}
}

func TestDenylistShortCircuits(t *testing.T) {
	f := newFixture()
	f.denylist.closed[key("Répar'Phone réparation téléphone", "Lyon")] = true

	v := f.c.Classify(context.Background(), domain.RawListing{Name: "Répar'Phone réparation téléphone"}, lyon)

	if v.IsRepairer || v.Confidence != 0 {
		t.Errorf("denylisted business must be rejected: %+v", v)
	}
	if v.BusinessStatus != domain.StatusCeased || v.VerificationMethod != domain.VerifyCachedClosed {
		t.Errorf("verdict = %+v, want ceased/cached_closed", v)
	}
	if f.registry.idCalls+f.registry.nameCalls != 0 {
		t.Error("denylist hit must skip the registry entirely")
	}
}

func TestCeasedDowngradesAndDenylists(t *testing.T) {
	f := newFixture()
	f.registry.byID["12345678901234"] = domain.StatusCeased

	listing := domain.RawListing{
		Name:             "Réparation Smartphone Martin",
		FormattedAddress: "SIRET 12345678901234, 3 rue Childebert, Lyon",
	}
	v := f.c.Classify(context.Background(), listing, lyon)

	if v.IsRepairer || v.Confidence != 0 {
		t.Errorf("ceased business still accepted: %+v", v)
	}
	if v.BusinessStatus != domain.StatusCeased || v.VerificationMethod != domain.VerifyRegistryDirect {
		t.Errorf("verdict = %+v", v)
	}
	if f.denylist.records != 1 {
		t.Errorf("denylist inserts = %d, want 1", f.denylist.records)
	}
	if f.cache.puts != 1 {
		t.Errorf("negative lookups must be cached too, puts = %d", f.cache.puts)
	}
}

func TestActiveVerification(t *testing.T) {
	f := newFixture()
	f.registry.byID["12345678901234"] = domain.StatusActive

	listing := domain.RawListing{
		Name:             "Réparation Smartphone Martin",
		FormattedAddress: "SIRET 12345678901234, Lyon",
	}
	v := f.c.Classify(context.Background(), listing, lyon)

	if !v.IsRepairer || v.BusinessStatus != domain.StatusActive {
		t.Errorf("verdict = %+v", v)
	}
	if v.VerificationMethod != domain.VerifyRegistryDirect {
		t.Errorf("method = %s, want registry_direct", v.VerificationMethod)
	}
	if v.RegistryID != "12345678901234" {
		t.Errorf("registry id not carried: %+v", v)
	}
}

func TestCacheHitSkipsRegistry(t *testing.T) {
	f := newFixture()
	f.cache.entries["12345678901234"] = domain.VerificationCacheEntry{
		RegistryID:     "12345678901234",
		IsActive:       true,
		BusinessStatus: domain.StatusActive,
		LastVerifiedAt: f.clock.Now(),
	}

	listing := domain.RawListing{Name: "Réparation GSM 12345678901234"}
	v := f.c.Classify(context.Background(), listing, lyon)

	if v.VerificationMethod != domain.VerifyCached {
		t.Errorf("method = %s, want cached", v.VerificationMethod)
	}
	if f.registry.idCalls != 0 {
		t.Error("fresh cache entry must short-circuit the registry")
	}
}

func TestStaleCacheEntryForcesReverification(t *testing.T) {
	f := newFixture()
	f.registry.byID["12345678901234"] = domain.StatusActive
	f.cache.entries["12345678901234"] = domain.VerificationCacheEntry{
		RegistryID:     "12345678901234",
		IsActive:       true,
		BusinessStatus: domain.StatusActive,
		LastVerifiedAt: f.clock.Now(),
	}

	f.clock.Advance(domain.VerificationTTL + time.Hour)

	listing := domain.RawListing{Name: "Réparation GSM 12345678901234"}
	v := f.c.Classify(context.Background(), listing, lyon)

	if f.registry.idCalls != 1 {
		t.Errorf("stale entry must trigger a fresh registry call, calls = %d", f.registry.idCalls)
	}
	if v.VerificationMethod != domain.VerifyRegistryDirect {
		t.Errorf("method = %s, want registry_direct", v.VerificationMethod)
	}
}

func TestRegistryErrorFailsOpen(t *testing.T) {
	f := newFixture()
	f.registry.err = errors.New("registry down")

	listing := domain.RawListing{Name: "Réparation Téléphone Lyon"}
	v := f.c.Classify(context.Background(), listing, lyon)

	if !v.IsRepairer || v.Confidence != 0.8 {
		t.Errorf("registry failure must keep the keyword verdict: %+v", v)
	}
	if v.VerificationMethod != domain.VerifyError {
		t.Errorf("method = %s, want error", v.VerificationMethod)
	}
}

func TestNoMatchIsProvisionallyAccepted(t *testing.T) {
	f := newFixture()
	// Search returns nothing acceptable; absence of proof of closure is
	// not proof of closure.
	v := f.c.Classify(context.Background(), domain.RawListing{Name: "Réparation Téléphone Lyon"}, lyon)

	if !v.IsRepairer {
		t.Errorf("unverifiable candidate must stay accepted: %+v", v)
	}
	if v.BusinessStatus != domain.StatusUnknown || v.VerificationMethod != domain.VerifyNone {
		t.Errorf("verdict = %+v, want unknown/no_verification", v)
	}
}

func TestServiceExtraction(t *testing.T) {
	f := newFixture()
	v := f.c.Classify(context.Background(), domain.RawListing{
		Name: "Réparation écran et batterie smartphone",
	}, lyon)

	if len(v.Services) != 2 {
		t.Fatalf("services = %v, want écran + batterie", v.Services)
	}
	found := map[string]bool{}
	for _, s := range v.Services {
		found[s] = true
	}
	if !found["écran"] || !found["batterie"] {
		t.Errorf("services = %v", v.Services)
	}
}
