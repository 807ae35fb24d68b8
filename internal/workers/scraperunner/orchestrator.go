package scraperunner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"reperio/internal/domain"
	"reperio/internal/ports"
	"reperio/internal/services/classify"
	"reperio/internal/services/dedupe"
	"reperio/internal/services/enumerate"
)

type OrchestratorConfig struct {
	// CheckpointEvery is K: a checkpoint is written every K localities and
	// at each department boundary, never mid-work-item.
	CheckpointEvery int
	// WorkItemDelay paces successive work items, on top of the search
	// client's own per-call pacing.
	WorkItemDelay time.Duration
}

// Orchestrator drives enumeration -> search -> classify -> geocode ->
// dedupe for one session at a time. A single logical worker processes work
// items sequentially: the providers are rate-limited by caller, so
// concurrency would trigger throttling rather than speed-up.
type Orchestrator struct {
	cfg        OrchestratorConfig
	enum       *enumerate.Service
	places     ports.PlaceSearcher
	classifier *classify.Classifier
	geocoder   ports.Geocoder
	sessions   ports.SessionRepository
	log        *slog.Logger

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

func NewOrchestrator(cfg OrchestratorConfig, enum *enumerate.Service, places ports.PlaceSearcher, classifier *classify.Classifier, geocoder ports.Geocoder, sessions ports.SessionRepository, logger *slog.Logger) *Orchestrator {
	if cfg.CheckpointEvery < 1 {
		cfg.CheckpointEvery = 3
	}
	return &Orchestrator{
		cfg:        cfg,
		enum:       enum,
		places:     places,
		classifier: classifier,
		geocoder:   geocoder,
		sessions:   sessions,
		log:        logger,
		running:    map[string]context.CancelFunc{},
	}
}

// Cancel requests cooperative cancellation of an in-flight run. The run
// stops at the next work-item boundary, leaving a valid resumable
// checkpoint.
func (o *Orchestrator) Cancel(sessionID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	cancel, ok := o.running[sessionID]
	if ok {
		cancel()
	}
	return ok
}

func (o *Orchestrator) register(sessionID string, cancel context.CancelFunc) {
	o.mu.Lock()
	o.running[sessionID] = cancel
	o.mu.Unlock()
}

func (o *Orchestrator) unregister(sessionID string) {
	o.mu.Lock()
	delete(o.running, sessionID)
	o.mu.Unlock()
}

// Process runs (or resumes) the pipeline for a session. It loads the last
// checkpoint, continues from the stored locality index, and returns an
// error only when the session itself is unusable — provider failures are
// absorbed into counts.
func (o *Orchestrator) Process(ctx context.Context, sessionID string) error {
	sess, err := o.sessions.ResumeSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.register(sessionID, cancel)
	defer o.unregister(sessionID)

	localities := o.enum.Localities(sess.Scope)
	specs := enumerate.BuildQueries(sess.Queries)
	total := len(localities)

	log := o.log.With("session", sessionID)
	log.Info("run starting", "localities", total, "queries", len(specs), "resume_at", sess.LocalityIndex)

	results := sess.Results
	counts := sess.Counts

	if total == 0 {
		// Configuration degraded to an empty enumeration; surface an empty
		// result set, not a failure.
		meta := domain.CheckpointMeta{Progress: 1, Message: "nothing to search for this scope", Counts: counts}
		o.finalize(ctx, sessionID, results, meta, log)
		return nil
	}

	sinceCheckpoint := 0
	for li := sess.LocalityIndex; li < total; li++ {
		loc := localities[li]

		for _, spec := range specs {
			// Cooperative cancellation between work items only, so every
			// checkpoint sits on a safe boundary.
			if runCtx.Err() != nil {
				meta := o.meta(li, total, counts, "interrupted — resumable")
				o.checkpoint(ctx, sessionID, results, meta, log)
				log.Info("run interrupted", "locality_index", li)
				return nil
			}

			found := o.processWorkItem(runCtx, domain.WorkItem{Locality: loc, Query: spec}, &counts)
			results = append(results, found...)

			o.pause(runCtx, o.cfg.WorkItemDelay)
		}

		sinceCheckpoint++
		msg := fmt.Sprintf("%s (%d/%d)", loc.Name, li+1, total)
		if sinceCheckpoint >= o.cfg.CheckpointEvery || o.departmentBoundary(localities, li) {
			meta := o.meta(li+1, total, counts, msg)
			o.checkpoint(ctx, sessionID, results, meta, log)
			sinceCheckpoint = 0
		}
	}

	// Final pass across the whole accumulated set.
	filtered := dedupe.Filter(results, sess.Queries.ApplyExclusions)
	counts.Duplicates += filtered.Duplicates
	counts.Excluded += filtered.Excluded

	meta := o.meta(total, total, counts, fmt.Sprintf(
		"done: %d discovered, %d verified, %d excluded, %d duplicates, %d failed",
		counts.Discovered, counts.Verified, counts.Excluded, counts.Duplicates, counts.Failed))
	o.finalize(ctx, sessionID, filtered.Kept, meta, log)
	log.Info("run finished", "kept", len(filtered.Kept), "counts", counts)
	return nil
}

// processWorkItem performs one search-and-detail cycle. Every failure is
// local: a failed detail fetch drops one listing, a failed search drops the
// work item, and the run continues either way.
func (o *Orchestrator) processWorkItem(ctx context.Context, item domain.WorkItem, counts *domain.RunCounts) []domain.Candidate {
	log := o.log.With("locality", item.Locality.Name, "query", item.Query.Text)

	sparse, err := o.places.TextSearch(ctx, item.Query.Text, item.Locality)
	if err != nil {
		log.Warn("text search failed, work item skipped", "err", err)
		counts.Failed++
		return nil
	}

	var out []domain.Candidate
	for _, s := range sparse {
		listing, err := o.places.FetchDetails(ctx, s.ProviderID)
		if err != nil {
			log.Warn("detail fetch failed, listing dropped", "provider_id", s.ProviderID, "err", err)
			counts.Failed++
			continue
		}
		if listing == nil {
			continue
		}
		if listing.Phone == nil || *listing.Phone == "" {
			// No reliable contact channel; not worth surfacing.
			continue
		}

		verdict := o.classifier.Classify(ctx, *listing, item.Locality)
		counts.Discovered++

		cand := domain.Candidate{Listing: *listing, Verdict: verdict}
		if verdict.IsRepairer {
			geo := o.geocoder.Geocode(ctx, listing.FormattedAddress, item.Locality)
			cand.Geo = &geo
			if verdict.BusinessStatus == domain.StatusActive {
				counts.Verified++
			}
		}
		out = append(out, cand)
	}
	return out
}

// checkpoint persists the session's accumulated results, retrying with
// backoff because a failed write only degrades durability, not the
// in-memory run. After retries are exhausted the run continues with the
// session flagged so the caller knows resumability is at risk.
func (o *Orchestrator) checkpoint(ctx context.Context, sessionID string, results []domain.Candidate, meta domain.CheckpointMeta, log *slog.Logger) {
	o.persist(ctx, sessionID, log, func(ctx context.Context) error {
		return o.sessions.SaveCheckpoint(ctx, sessionID, results, meta)
	})
}

// finalize writes the run's last state through the store's unguarded path:
// the post-filter set can be smaller than the last intermediate checkpoint.
func (o *Orchestrator) finalize(ctx context.Context, sessionID string, results []domain.Candidate, meta domain.CheckpointMeta, log *slog.Logger) {
	o.persist(ctx, sessionID, log, func(ctx context.Context) error {
		return o.sessions.FinalizeSession(ctx, sessionID, results, meta)
	})
}

func (o *Orchestrator) persist(ctx context.Context, sessionID string, log *slog.Logger, write func(context.Context) error) {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(write(ctx))
	})
	if err != nil {
		log.Error("checkpoint write failed, continuing without durability", "err", err)
		if werr := o.sessions.SetDurabilityWarning(ctx, sessionID); werr != nil {
			log.Error("durability warning write failed", "err", werr)
		}
	}
}

func (o *Orchestrator) meta(localityIndex, total int, counts domain.RunCounts, msg string) domain.CheckpointMeta {
	return domain.CheckpointMeta{
		Progress:        float64(localityIndex) / float64(total),
		Message:         msg,
		LocalityIndex:   localityIndex,
		TotalLocalities: total,
		Counts:          counts,
	}
}

// departmentBoundary reports whether the next locality starts a different
// department, the forced checkpoint point when iterating a region.
func (o *Orchestrator) departmentBoundary(localities []domain.Locality, li int) bool {
	if li+1 >= len(localities) {
		return false
	}
	return localities[li].DepartmentCode != localities[li+1].DepartmentCode
}

func (o *Orchestrator) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
