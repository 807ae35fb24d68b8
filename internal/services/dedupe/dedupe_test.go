package dedupe

import (
	"reflect"
	"testing"

	"reperio/internal/domain"
)

func candidate(id, name, address string) domain.Candidate {
	return domain.Candidate{
		Listing: domain.RawListing{ProviderID: id, Name: name, FormattedAddress: address},
	}
}

func TestDeduplicateFirstWriteWins(t *testing.T) {
	first := candidate("p1", "Répar'Phone", "1 rue de la Paix, Lyon")
	later := candidate("p1", "Répar'Phone (variant)", "other address")

	res := Deduplicate([]domain.Candidate{first, later, candidate("p2", "FixMobile", "Lyon")})

	if len(res.Kept) != 2 {
		t.Fatalf("kept %d, want 2", len(res.Kept))
	}
	if res.Duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", res.Duplicates)
	}
	if res.Kept[0].Listing.Name != "Répar'Phone" {
		t.Errorf("duplicate dropped the first-seen instance: %q", res.Kept[0].Listing.Name)
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	in := []domain.Candidate{
		candidate("a", "A", "x"),
		candidate("b", "B", "y"),
		candidate("a", "A2", "z"),
	}
	once := Deduplicate(in)
	twice := Deduplicate(once.Kept)

	if !reflect.DeepEqual(once.Kept, twice.Kept) {
		t.Errorf("dedup(dedup(S)) != dedup(S): %v vs %v", once.Kept, twice.Kept)
	}
	if twice.Duplicates != 0 {
		t.Errorf("second pass reported %d duplicates, want 0", twice.Duplicates)
	}
}

func TestFilterExcludesComputerRepair(t *testing.T) {
	in := []domain.Candidate{
		candidate("p1", "Dépannage Informatique Lyon", "10 rue Garibaldi, Lyon"),
		candidate("p2", "Répar'Phone Lyon", "12 rue Garibaldi, Lyon"),
	}

	res := Filter(in, true)

	if len(res.Kept) != 1 || res.Kept[0].Listing.ProviderID != "p2" {
		t.Fatalf("kept = %v, want only p2", res.Kept)
	}
	if res.Excluded != 1 {
		t.Errorf("excluded = %d, want 1", res.Excluded)
	}
	if res.Duplicates != 0 {
		t.Errorf("exclusion must not count as duplicate, got %d", res.Duplicates)
	}
}

func TestFilterDisabledKeepsExcludables(t *testing.T) {
	in := []domain.Candidate{candidate("p1", "Dépannage Informatique", "Lyon")}
	res := Filter(in, false)
	if len(res.Kept) != 1 || res.Excluded != 0 {
		t.Errorf("filter disabled must keep everything: %+v", res)
	}
}

func TestFilterMatchesAccentedKeywords(t *testing.T) {
	// "électroménager" in the listing, folded keyword in the list.
	in := []domain.Candidate{candidate("p1", "SOS Électroménager", "Paris")}
	res := Filter(in, true)
	if res.Excluded != 1 {
		t.Errorf("accented exclusion keyword not matched: %+v", res)
	}
}
