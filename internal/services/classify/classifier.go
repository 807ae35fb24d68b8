// Package classify decides whether a raw listing is a genuine device-repair
// business: a keyword heuristic, escalated for likely positives to a
// business-registry lookup through a cache and a closed-business denylist.
package classify

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jonboulle/clockwork"

	"reperio/internal/domain"
	"reperio/internal/ports"
	"reperio/internal/textnorm"
)

const (
	positiveConfidence = 0.8
	negativeConfidence = 0.2
	// Registry verification is only worth a rate-limited external call for
	// candidates above this confidence.
	verifyThreshold = 0.5
)

// siretPattern matches a SIRET-shaped 14-digit run in listing text. Length
// is the only local validation; the registry call is the real validator.
var siretPattern = regexp.MustCompile(`\b\d{14}\b`)

type Classifier struct {
	cache    ports.VerificationRepository
	denylist ports.DenylistRepository
	registry ports.RegistryLookup
	clock    clockwork.Clock
	log      *slog.Logger
}

func New(cache ports.VerificationRepository, denylist ports.DenylistRepository, registry ports.RegistryLookup, clock clockwork.Clock, logger *slog.Logger) *Classifier {
	return &Classifier{cache: cache, denylist: denylist, registry: registry, clock: clock, log: logger}
}

// Classify runs the keyword stage, the denylist check, and — for confident
// candidates — registry verification. It never returns an error: registry
// failures degrade to the keyword verdict.
func (c *Classifier) Classify(ctx context.Context, listing domain.RawListing, loc domain.Locality) domain.ClassificationVerdict {
	verdict := c.keywordStage(listing)
	if !verdict.IsRepairer {
		// Obviously irrelevant listings never spend a registry call.
		return verdict
	}

	closed, err := c.denylist.IsClosed(ctx, listing.Name, loc.Name)
	if err != nil {
		c.log.Warn("denylist check failed", "name", listing.Name, "err", err)
	} else if closed {
		return domain.ClassificationVerdict{
			IsRepairer:         false,
			Confidence:         0,
			BusinessStatus:     domain.StatusCeased,
			VerificationMethod: domain.VerifyCachedClosed,
		}
	}

	if verdict.Confidence > verifyThreshold {
		c.verify(ctx, listing, loc, &verdict)
	}
	return verdict
}

func (c *Classifier) keywordStage(listing domain.RawListing) domain.ClassificationVerdict {
	text := textnorm.Fold(listing.Name + " " + listing.FormattedAddress)

	positive := false
	for _, kw := range repairKeywords {
		if strings.Contains(text, kw) {
			positive = true
			break
		}
	}
	if positive {
		for _, kw := range exclusionKeywords {
			if strings.Contains(text, kw) {
				positive = false
				break
			}
		}
	}

	verdict := domain.ClassificationVerdict{
		IsRepairer:         positive,
		Confidence:         negativeConfidence,
		BusinessStatus:     domain.StatusUnknown,
		VerificationMethod: domain.VerifyNone,
	}
	if positive {
		verdict.Confidence = positiveConfidence
		verdict.Services = matchedServices(text)
	}
	return verdict
}

func matchedServices(foldedText string) []string {
	seen := map[string]bool{}
	var out []string
	for kw, label := range serviceKeywords {
		if strings.Contains(foldedText, kw) && !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	return out
}

// verify resolves the business's administrative status: direct id lookup
// when a SIRET is visible in the listing, otherwise a name+locality registry
// search. Absence of proof of closure is not proof of closure, so an
// unverifiable candidate stays provisionally accepted.
func (c *Classifier) verify(ctx context.Context, listing domain.RawListing, loc domain.Locality, verdict *domain.ClassificationVerdict) {
	registryID := siretPattern.FindString(listing.Name + " " + listing.FormattedAddress)

	if registryID != "" {
		if entry, ok := c.cachedVerdict(ctx, registryID); ok {
			c.apply(ctx, listing, loc, verdict, registryID, entry.BusinessStatus, domain.VerifyCached)
			return
		}
		status, err := c.registry.LookupByID(ctx, registryID)
		if err == nil {
			c.record(ctx, registryID, status)
			c.apply(ctx, listing, loc, verdict, registryID, status, domain.VerifyRegistryDirect)
			return
		}
		c.log.Warn("registry id lookup failed, trying name search", "siret", registryID, "err", err)
	}

	resolvedID, status, err := c.registry.SearchByName(ctx, listing.Name, loc.Name)
	if err != nil {
		c.log.Warn("registry search failed, keeping keyword verdict", "name", listing.Name, "err", err)
		verdict.VerificationMethod = domain.VerifyError
		return
	}
	if resolvedID == "" {
		verdict.BusinessStatus = domain.StatusUnknown
		verdict.VerificationMethod = domain.VerifyNone
		return
	}
	if entry, ok := c.cachedVerdict(ctx, resolvedID); ok {
		c.apply(ctx, listing, loc, verdict, resolvedID, entry.BusinessStatus, domain.VerifyCached)
		return
	}
	c.record(ctx, resolvedID, status)
	c.apply(ctx, listing, loc, verdict, resolvedID, status, domain.VerifyRegistrySearch)
}

// cachedVerdict reads the verification cache, discarding entries older than
// the TTL so a stale status is re-verified instead of trusted.
func (c *Classifier) cachedVerdict(ctx context.Context, registryID string) (domain.VerificationCacheEntry, bool) {
	entry, found, err := c.cache.GetVerification(ctx, registryID)
	if err != nil {
		c.log.Warn("verification cache read failed", "siret", registryID, "err", err)
		return entry, false
	}
	if !found {
		return entry, false
	}
	if c.clock.Since(entry.LastVerifiedAt) > domain.VerificationTTL {
		return entry, false
	}
	return entry, true
}

// record writes every successful lookup into the cache, positive or
// negative, so repeat candidates in later runs short-circuit.
func (c *Classifier) record(ctx context.Context, registryID string, status domain.BusinessStatus) {
	err := c.cache.PutVerification(ctx, domain.VerificationCacheEntry{
		RegistryID:     registryID,
		IsActive:       status == domain.StatusActive,
		BusinessStatus: status,
		LastVerifiedAt: c.clock.Now(),
	})
	if err != nil {
		c.log.Warn("verification cache write failed", "siret", registryID, "err", err)
	}
}

func (c *Classifier) apply(ctx context.Context, listing domain.RawListing, loc domain.Locality, verdict *domain.ClassificationVerdict, registryID string, status domain.BusinessStatus, method domain.VerificationMethod) {
	verdict.RegistryID = registryID
	verdict.BusinessStatus = status
	verdict.VerificationMethod = method
	if status == domain.StatusCeased {
		verdict.IsRepairer = false
		verdict.Confidence = 0
		if err := c.denylist.RecordClosed(ctx, domain.ClosedBusinessRecord{
			Name:       listing.Name,
			Locality:   loc.Name,
			RecordedAt: c.clock.Now(),
		}); err != nil {
			c.log.Warn("denylist write failed", "name", listing.Name, "err", err)
		}
	}
}
