package main

import (
	"context"
	"flag"
	"os"
	"time"

	"match-engine/internal/common/config"
	"match-engine/internal/common/database"
	"match-engine/internal/common/logger"
	"match-engine/internal/engine/embedding"
	"match-engine/internal/engine/matchcache"
	"match-engine/internal/engine/reasoning"
	"match-engine/internal/models"
	"match-engine/internal/repository"
)

// pool-reindexer walks every designer profile, regenerates stale embeddings
// and bumps the pool version so cached match results keyed on the old pool
// stop serving.
func main() {
	dryRun := flag.Bool("dry-run", false, "report stale profiles without writing anything")
	timeout := flag.Duration("timeout", 30*time.Minute, "overall run deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log = log.WithFields(map[string]interface{}{"tool": "pool-reindexer"})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

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

	designers := repository.NewDesignerRepository(pg.GetDB(), log)
	cache := matchcache.NewCache(rdb.GetClient(), matchcache.LoadConfig(cfg.Matching.CacheTTL), log)

	var scanned, stale, updated, failed int
	err = designers.IterateProfiles(ctx, func(profile *models.DesignerProfile) error {
		scanned++
		if !profile.EmbeddingStale() {
			return nil
		}
		stale++

		if *dryRun {
			log.Info("stale embedding", map[string]interface{}{"designer_id": profile.ID})
			return nil
		}

		vector, err := embedder.Embed(ctx, profile.EmbeddingText())
		if err != nil {
			failed++
			log.WithError(err).Warn("embed failed, skipping profile", map[string]interface{}{
				"designer_id": profile.ID,
			})
			return nil
		}
		if err := store.IndexProfile(ctx, profile.ID, vector); err != nil {
			failed++
			log.WithError(err).Warn("index failed, skipping profile", map[string]interface{}{
				"designer_id": profile.ID,
			})
			return nil
		}
		if err := designers.MarkEmbedded(ctx, profile.ID, profile.ContentHash()); err != nil {
			failed++
			log.WithError(err).Warn("version update failed", map[string]interface{}{
				"designer_id": profile.ID,
			})
			return nil
		}

		updated++
		return nil
	})
	if err != nil {
		log.WithError(err).Error("profile iteration aborted", nil)
		os.Exit(1)
	}

	if updated > 0 && !*dryRun {
		version, err := cache.BumpPoolVersion(ctx)
		if err != nil {
			log.WithError(err).Warn("pool version bump failed, cached results may serve stale pool", nil)
		} else {
			log.Info("pool version bumped", map[string]interface{}{"version": version})
		}
	}

	log.Info("reindex complete", map[string]interface{}{
		"scanned": scanned,
		"stale":   stale,
		"updated": updated,
		"failed":  failed,
		"dry_run": *dryRun,
	})
}
