// Package embedding implements the engine's vector retrieval layer: query
// embedding through Gemini and nearest-neighbor lookup over an Elasticsearch
// dense_vector index.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"

	matcherrors "match-engine/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Hit is one nearest-neighbor result.
type Hit struct {
	DesignerID string
	Similarity float64
}

// Store retrieves designer candidates by vector similarity. If Elasticsearch
// is unreachable the whole request fails with RETRIEVAL_UNAVAILABLE; an
// unranked result is worse than a loud failure.
type Store struct {
	es       *elasticsearch.Client
	embedder Embedder
	config   *Config
	logger   logger.Logger
}

func NewStore(es *elasticsearch.Client, embedder Embedder, config *Config, log logger.Logger) *Store {
	return &Store{
		es:       es,
		embedder: embedder,
		config:   config,
		logger:   log.WithFields(map[string]interface{}{"component": "embedding-store"}),
	}
}

// EmbedQuery derives the query vector for a brief.
func (s *Store) EmbedQuery(ctx context.Context, brief *models.Brief) ([]float32, error) {
	vector, err := s.embedder.Embed(ctx, brief.EmbeddingText())
	if err != nil {
		return nil, matcherrors.NewRetrievalUnavailableError(err)
	}
	return vector, nil
}

// TopK returns up to k designers ordered by cosine similarity descending,
// ties broken by designer id ascending. A pool smaller than k returns fewer
// results, never an error.
func (s *Store) TopK(ctx context.Context, vector []float32, k int, excludeIDs []string) ([]Hit, error) {
	knn := map[string]interface{}{
		"field":          "embedding",
		"query_vector":   vector,
		"k":              k,
		"num_candidates": s.config.NumCandidates,
	}
	if len(excludeIDs) > 0 {
		knn["filter"] = map[string]interface{}{
			"bool": map[string]interface{}{
				"must_not": []interface{}{
					map[string]interface{}{"ids": map[string]interface{}{"values": excludeIDs}},
				},
			},
		}
	}

	body, _ := json.Marshal(map[string]interface{}{
		"knn":     knn,
		"size":    k,
		"_source": false,
	})

	req := esapi.SearchRequest{
		Index: []string{s.config.Index},
		Body:  bytes.NewReader(body),
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		return nil, matcherrors.NewRetrievalUnavailableError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, matcherrors.NewRetrievalUnavailableError(
			fmt.Errorf("elasticsearch search error: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID    string  `json:"_id"`
				Score float64 `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, matcherrors.NewRetrievalUnavailableError(fmt.Errorf("decode search response: %w", err))
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, Hit{
			DesignerID: h.ID,
			Similarity: cosineFromESScore(h.Score),
		})
	}

	// Elasticsearch orders by score only; pin the id tie-break so results
	// are reproducible.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].DesignerID < hits[j].DesignerID
	})

	return hits, nil
}

// IndexProfile writes a designer's vector into the index. Used by the bulk
// re-embedding job.
func (s *Store) IndexProfile(ctx context.Context, designerID string, vector []float32) error {
	doc, _ := json.Marshal(map[string]interface{}{
		"embedding": vector,
	})

	req := esapi.IndexRequest{
		Index:      s.config.Index,
		DocumentID: designerID,
		Body:       bytes.NewReader(doc),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("index profile %s: %w", designerID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index profile %s: %s", designerID, res.Status())
	}
	return nil
}

// cosineFromESScore maps the score Elasticsearch reports for cosine-indexed
// dense vectors, (1+cosine)/2, back to the raw cosine in [-1,1].
func cosineFromESScore(score float64) float64 {
	cos := 2*score - 1
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	return cos
}
