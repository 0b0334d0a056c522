package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	matcherrors "match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/common/observability"
	"match-engine/internal/engine/eligibility"
	"match-engine/internal/engine/embedding"
	"match-engine/internal/engine/matchcache"
	"match-engine/internal/engine/reasoning"
	"match-engine/internal/models"
	"match-engine/internal/repository"
)

// ==========================
// Collaborator interfaces
// ==========================

type BriefSource interface {
	GetBrief(ctx context.Context, id string) (*models.Brief, error)
}

type DesignerSource interface {
	GetProfile(ctx context.Context, id string) (*models.DesignerProfile, error)
}

type Retriever interface {
	EmbedQuery(ctx context.Context, brief *models.Brief) ([]float32, error)
	TopK(ctx context.Context, vector []float32, k int, excludeIDs []string) ([]embedding.Hit, error)
}

type Scorer interface {
	Score(brief *models.Brief, eligible []*models.Candidate) []*models.ScoredCandidate
}

type ReasonGenerator interface {
	GenerateReasons(ctx context.Context, brief *models.Brief, top *models.ScoredCandidate) *reasoning.Result
}

type MatchStore interface {
	CreateIfAbsent(ctx context.Context, m *models.Match) (*models.Match, bool, error)
	GetForBrief(ctx context.Context, briefID string) (*models.Match, error)
}

type ResultCache interface {
	Get(ctx context.Context, fingerprint string) *matchcache.Entry
	Put(ctx context.Context, fingerprint string, entry *matchcache.Entry)
	PoolVersion(ctx context.Context) (int64, error)
}

// ==========================
// Orchestrator
// ==========================

// Result is the outcome of one match request.
type Result struct {
	Match     *models.Match
	FromCache bool
}

// Orchestrator runs the match pipeline for a brief: validate, cache check,
// retrieval, eligibility, scoring, reasoning, persist. Exactly one active
// match per brief regardless of concurrent requests.
type Orchestrator struct {
	briefs    BriefSource
	designers DesignerSource
	retriever Retriever
	scorer    Scorer
	reasons   ReasonGenerator
	matches   MatchStore
	cache     ResultCache
	topK      int
	logger    logger.Logger
}

func New(
	briefs BriefSource,
	designers DesignerSource,
	retriever Retriever,
	scorer Scorer,
	reasons ReasonGenerator,
	matches MatchStore,
	cache ResultCache,
	topK int,
	log logger.Logger,
) *Orchestrator {
	if topK <= 0 {
		topK = 20
	}
	return &Orchestrator{
		briefs:    briefs,
		designers: designers,
		retriever: retriever,
		scorer:    scorer,
		reasons:   reasons,
		matches:   matches,
		cache:     cache,
		topK:      topK,
		logger:    log.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
}

// FindMatch pairs the brief with its single best designer. Callers only ever
// see the documented error codes; everything else is normalized upstream.
func (o *Orchestrator) FindMatch(ctx context.Context, briefID string) (*Result, error) {
	log := o.logger.WithFields(map[string]interface{}{"brief_id": briefID})
	tracer := observability.Tracer("orchestrator")

	ctx, span := tracer.Start(ctx, "find_match")
	defer span.End()

	result, err := o.run(ctx, log, briefID)
	if err != nil {
		metrics.MatchRequestsTotal.WithLabelValues(string(matcherrors.CodeOf(err))).Inc()
		return nil, err
	}

	outcome := "matched"
	if result.FromCache {
		outcome = "cache_hit"
	}
	metrics.MatchRequestsTotal.WithLabelValues(outcome).Inc()
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, log logger.Logger, briefID string) (*Result, error) {
	// Validating
	brief, err := o.timedBrief(ctx, briefID)
	if err != nil {
		return nil, o.stageError(ctx, StageValidating, err)
	}

	// CacheCheck
	fingerprint, entry := o.checkCache(ctx, log, brief)
	if entry != nil {
		log.Info("serving match from cache", map[string]interface{}{
			"match_id":    entry.MatchID,
			"designer_id": entry.DesignerID,
		})
		return &Result{Match: matchFromEntry(entry), FromCache: true}, nil
	}

	// Retrieving: embed and search while checking for an existing match.
	hits, err := o.retrieve(ctx, brief)
	if err != nil {
		return nil, o.stageError(ctx, StageRetrieving, err)
	}

	candidates, err := o.loadCandidates(ctx, log, hits)
	if err != nil {
		return nil, o.stageError(ctx, StageRetrieving, err)
	}

	// Filtering
	start := time.Now()
	eligible := eligibility.Apply(brief, candidates, nil)
	o.observeStage(StageFiltering, start)
	if len(eligible) == 0 {
		log.Info("no eligible designers for brief", map[string]interface{}{
			"retrieved": len(candidates),
		})
		return nil, matcherrors.NewNoEligibleDesignersError(brief.ID)
	}

	// Scoring
	start = time.Now()
	scored := o.scorer.Score(brief, eligible)
	o.observeStage(StageScoring, start)
	top := scored[0]

	// Reasoning never fails the pipeline.
	start = time.Now()
	reasonResult := o.reasons.GenerateReasons(ctx, brief, top)
	o.observeStage(StageReasoning, start)

	if err := o.stageError(ctx, StagePersisting, nil); err != nil {
		return nil, err
	}

	// Persisting
	start = time.Now()
	match := &models.Match{
		ID:         uuid.NewString(),
		BriefID:    brief.ID,
		DesignerID: top.Profile.ID,
		Score:      top.FinalScore,
		Reasons:    reasonResult.Reasons,
		Degraded:   reasonResult.Degraded,
		Status:     models.MatchStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	persisted, created, err := o.matches.CreateIfAbsent(ctx, match)
	o.observeStage(StagePersisting, start)
	if err != nil {
		return nil, o.stageError(ctx, StagePersisting, err)
	}
	if !created {
		// A concurrent request won the persist race; its match is the match.
		log.Info("concurrent request already persisted a match", map[string]interface{}{
			"match_id": persisted.ID,
		})
		return &Result{Match: persisted}, nil
	}

	o.cache.Put(ctx, fingerprint, entryFromMatch(persisted))

	log.Info("match created", map[string]interface{}{
		"match_id":    persisted.ID,
		"designer_id": persisted.DesignerID,
		"score":       persisted.Score,
		"degraded":    persisted.Degraded,
	})
	return &Result{Match: persisted}, nil
}

func (o *Orchestrator) timedBrief(ctx context.Context, briefID string) (*models.Brief, error) {
	start := time.Now()
	defer o.observeStage(StageValidating, start)
	return o.briefs.GetBrief(ctx, briefID)
}

func (o *Orchestrator) checkCache(ctx context.Context, log logger.Logger, brief *models.Brief) (string, *matchcache.Entry) {
	start := time.Now()
	defer o.observeStage(StageCacheCheck, start)

	poolVersion, err := o.cache.PoolVersion(ctx)
	if err != nil {
		log.WithError(err).Warn("pool version unavailable, using zero", nil)
		poolVersion = 0
	}
	fingerprint := matchcache.Fingerprint(brief, poolVersion)
	return fingerprint, o.cache.Get(ctx, fingerprint)
}

// retrieve runs the embedding search concurrently with the existing-match
// check so an already matched brief never waits on Elasticsearch.
func (o *Orchestrator) retrieve(ctx context.Context, brief *models.Brief) ([]embedding.Hit, error) {
	start := time.Now()
	defer o.observeStage(StageRetrieving, start)

	var hits []embedding.Hit
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		vector, err := o.retriever.EmbedQuery(gctx, brief)
		if err != nil {
			return err
		}
		hits, err = o.retriever.TopK(gctx, vector, o.topK, nil)
		return err
	})

	g.Go(func() error {
		existing, err := o.matches.GetForBrief(gctx, brief.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return matcherrors.NewAlreadyMatchedError(brief.ID, existing.ID)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hits, nil
}

// loadCandidates resolves retrieval hits into full profiles, preserving the
// similarity order. Profiles deleted since indexing are skipped.
func (o *Orchestrator) loadCandidates(ctx context.Context, log logger.Logger, hits []embedding.Hit) ([]*models.Candidate, error) {
	candidates := make([]*models.Candidate, 0, len(hits))
	for _, hit := range hits {
		profile, err := o.designers.GetProfile(ctx, hit.DesignerID)
		if err != nil {
			if errors.Is(err, repository.ErrDesignerNotFound) {
				log.Warn("indexed designer missing from store, skipping", map[string]interface{}{
					"designer_id": hit.DesignerID,
				})
				continue
			}
			return nil, matcherrors.NewPersistenceFailedError(err)
		}
		candidates = append(candidates, &models.Candidate{
			Profile:    profile,
			Similarity: hit.Similarity,
		})
	}
	return candidates, nil
}

// stageError folds context expiry into the caller-visible timeout code. A nil
// err with a live context stays nil.
func (o *Orchestrator) stageError(ctx context.Context, stage Stage, err error) error {
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return matcherrors.NewTimeoutError(string(stage))
	}
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return matcherrors.NewTimeoutError(string(stage))
	}
	return err
}

func (o *Orchestrator) observeStage(stage Stage, start time.Time) {
	metrics.MatchStageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
}

func matchFromEntry(entry *matchcache.Entry) *models.Match {
	return &models.Match{
		ID:         entry.MatchID,
		BriefID:    entry.BriefID,
		DesignerID: entry.DesignerID,
		Score:      entry.Score,
		Reasons:    entry.Reasons,
		Degraded:   entry.Degraded,
		Status:     models.MatchStatusPending,
	}
}

func entryFromMatch(m *models.Match) *matchcache.Entry {
	return &matchcache.Entry{
		MatchID:    m.ID,
		BriefID:    m.BriefID,
		DesignerID: m.DesignerID,
		Score:      m.Score,
		Reasons:    m.Reasons,
		Degraded:   m.Degraded,
	}
}
