// Package dedupe merges candidates across query variants and localities by
// provider identity and removes listings matching the exclusion list.
package dedupe

import (
	"strings"

	"reperio/internal/domain"
	"reperio/internal/textnorm"
)

// exclusionKeywords drop listings that match "repair" queries but are not
// device-repair businesses. Matched against folded name+address.
var exclusionKeywords = []string{
	"ordinateur",
	"informatique",
	"depannage informatique",
	"automobile",
	"carrosserie",
	"electromenager",
	"serrurerie",
	"cordonnerie",
}

// Result reports what a filter pass kept and dropped. Excluded and
// duplicate counts are tracked distinctly from "not found".
type Result struct {
	Kept       []domain.Candidate
	Duplicates int
	Excluded   int
}

// Deduplicate keeps the first-seen candidate per provider id. First write
// wins; later duplicates are dropped without field merging, so re-running
// on its own output is a no-op.
func Deduplicate(in []domain.Candidate) Result {
	seen := make(map[string]bool, len(in))
	out := Result{Kept: make([]domain.Candidate, 0, len(in))}
	for _, c := range in {
		id := c.Listing.ProviderID
		if id == "" || seen[id] {
			out.Duplicates++
			continue
		}
		seen[id] = true
		out.Kept = append(out.Kept, c)
	}
	return out
}

// Filter applies dedup and then, when enabled, the exclusion keyword list.
func Filter(in []domain.Candidate, applyExclusions bool) Result {
	res := Deduplicate(in)
	if !applyExclusions {
		return res
	}
	kept := res.Kept[:0]
	for _, c := range res.Kept {
		if excluded(c.Listing) {
			res.Excluded++
			continue
		}
		kept = append(kept, c)
	}
	res.Kept = kept
	return res
}

func excluded(listing domain.RawListing) bool {
	text := textnorm.Fold(listing.Name + " " + listing.FormattedAddress)
	for _, kw := range exclusionKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
