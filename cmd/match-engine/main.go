package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"match-engine/internal/common/config"
	"match-engine/internal/common/database"
	matcherrors "match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/observability"
	"match-engine/internal/engine/embedding"
	"match-engine/internal/engine/matchcache"
	"match-engine/internal/engine/orchestrator"
	"match-engine/internal/engine/reasoning"
	"match-engine/internal/engine/scoring"
	"match-engine/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting match engine", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ==========================
	// Infrastructure clients
	// ==========================

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		log.WithError(err).Error("postgres client init failed", nil)
		os.Exit(1)
	}
	defer pg.Close()

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		log.WithError(err).Error("redis client init failed", nil)
		os.Exit(1)
	}
	defer rdb.Close()

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		log.WithError(err).Error("elasticsearch client init failed", nil)
		os.Exit(1)
	}

	if err := waitForDependencies(ctx, log, pg, rdb, es); err != nil {
		log.WithError(err).Error("dependencies unavailable", nil)
		os.Exit(1)
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	if cfg.Tracing.Enabled {
		tracing, err := observability.NewTracing(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			log.WithError(err).Warn("tracing init failed, continuing without traces", nil)
		} else {
			defer tracing.Shutdown()
		}
	}

	// ==========================
	// Engine wiring
	// ==========================

	gemini, err := reasoning.NewGeminiClient(ctx, cfg.GenAI.APIKey, cfg.GenAI.Model)
	if err != nil {
		log.WithError(err).Error("gemini client init failed", nil)
		os.Exit(1)
	}

	embedder, err := embedding.NewGeminiEmbedder(gemini.Raw(), cfg.GenAI.EmbeddingModel)
	if err != nil {
		log.WithError(err).Error("embedder init failed", nil)
		os.Exit(1)
	}
	store := embedding.NewStore(es.Client, embedder, embedding.LoadConfig(cfg.Database.Elasticsearch.Index), log)

	reasonCfg := reasoning.LoadConfig()
	reasonCfg.Timeout = time.Duration(cfg.GenAI.Timeout) * time.Millisecond
	reasonCfg.MaxRetries = cfg.GenAI.MaxRetries
	generator := reasoning.NewGenerator(gemini, reasonCfg, log)

	scorer := scoring.NewScorer(scoring.FromMatching(cfg.Matching), log)
	cache := matchcache.NewCache(rdb.GetClient(), matchcache.LoadConfig(cfg.Matching.CacheTTL), log)

	briefs := repository.NewBriefRepository(pg.GetDB(), log)
	designers := repository.NewDesignerRepository(pg.GetDB(), log)
	matches := repository.NewMatchRepository(pg.GetDB(), log)

	engine := orchestrator.New(briefs, designers, store, scorer, generator, matches, cache, cfg.Matching.TopK, log)

	// ==========================
	// HTTP surface
	// ==========================

	requestTimeout := time.Duration(cfg.Server.RequestTimeout) * time.Millisecond
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /v1/briefs/{briefID}/match", matchHandler(engine, obs, requestTimeout, log))
	mux.HandleFunc("GET /v1/briefs/{briefID}/match", matchHandler(engine, obs, requestTimeout, log))

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: mux,
	}

	go func() {
		log.Info("http server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server failed", nil)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown incomplete", nil)
	}
}

// waitForDependencies pings each backing store with exponential backoff so a
// fleet restart does not flap on slow-starting databases.
func waitForDependencies(ctx context.Context, log logger.Logger, pg *database.PostgresClient, rdb *database.RedisClient, es *database.ElasticsearchClient) error {
	checks := []struct {
		name string
		ping func() error
	}{
		{"postgres", func() error { return pg.Ping(ctx) }},
		{"redis", func() error { return rdb.Ping(ctx) }},
		{"elasticsearch", es.Ping},
	}

	for _, check := range checks {
		delay := time.Second
		var err error
		for attempt := 1; attempt <= 5; attempt++ {
			if err = check.ping(); err == nil {
				break
			}
			log.WithError(err).Warn("dependency not ready, retrying", map[string]interface{}{
				"dependency": check.name,
				"attempt":    attempt,
			})
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if err != nil {
			return err
		}
		log.Info("dependency ready", map[string]interface{}{"dependency": check.name})
	}
	return nil
}

type matchResponse struct {
	MatchID    string   `json:"matchId"`
	BriefID    string   `json:"briefId"`
	DesignerID string   `json:"designerId"`
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
	Degraded   bool     `json:"degraded"`
	Status     string   `json:"status"`
	FromCache  bool     `json:"fromCache"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func matchHandler(engine *orchestrator.Orchestrator, obs *observability.Observability, timeout time.Duration, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		briefID := r.PathValue("briefID")
		if briefID == "" {
			writeError(w, matcherrors.NewValidationError("briefID path parameter is required"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		start := time.Now()
		result, err := engine.FindMatch(ctx, briefID)
		if err != nil {
			matchErr := matcherrors.Normalize(err)
			obs.RecordMatchProcessed(ctx, string(matchErr.Code))
			obs.RecordMatchDuration(ctx, time.Since(start), string(matchErr.Code))
			if !matcherrors.IsCallerVisible(matchErr.Code) {
				log.WithError(err).Error("match request failed", map[string]interface{}{"brief_id": briefID})
			}
			writeError(w, matchErr)
			return
		}

		obs.RecordMatchProcessed(ctx, "matched")
		obs.RecordMatchDuration(ctx, time.Since(start), "matched")

		writeJSON(w, http.StatusOK, matchResponse{
			MatchID:    result.Match.ID,
			BriefID:    result.Match.BriefID,
			DesignerID: result.Match.DesignerID,
			Score:      result.Match.Score,
			Reasons:    result.Match.Reasons,
			Degraded:   result.Match.Degraded,
			Status:     string(result.Match.Status),
			FromCache:  result.FromCache,
		})
	}
}

func writeError(w http.ResponseWriter, matchErr *matcherrors.MatchError) {
	writeJSON(w, matcherrors.HTTPStatus(matchErr.Code), errorResponse{
		Code:    string(matchErr.Code),
		Message: matchErr.Message,
		Details: matchErr.Details,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
