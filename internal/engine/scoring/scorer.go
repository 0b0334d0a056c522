// Package scoring combines retrieval similarity with weighted rule signals
// into one normalized score per eligible candidate.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

type Scorer struct {
	config *Config
	logger logger.Logger
}

func NewScorer(config *Config, log logger.Logger) *Scorer {
	return &Scorer{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "scorer"}),
	}
}

// Score ranks the eligible candidates descending by final score.
// Final = w1*similarity + w2*experienceFit + w3*styleOverlap + w4*industryOverlap,
// each term normalized to [0,1], scaled to 0-100. Ties break on higher raw
// similarity, then lower designer id, so the top candidate is deterministic
// regardless of input order.
func (s *Scorer) Score(brief *models.Brief, eligible []*models.Candidate) []*models.ScoredCandidate {
	w := s.config.Weights

	scored := make([]*models.ScoredCandidate, 0, len(eligible))
	for _, c := range eligible {
		similarity := normalizeSimilarity(c.Similarity)
		experience := s.experienceFit(brief, c.Profile)
		style := jaccard(brief.Styles, c.Profile.Styles)
		industry := jaccard(brief.Industries, c.Profile.Industries)

		final := (w.Similarity*similarity +
			w.Experience*experience +
			w.Style*style +
			w.Industry*industry) * 100
		final = math.Min(math.Max(final, 0), 100)

		sc := &models.ScoredCandidate{
			Candidate:       *c,
			FinalScore:      final,
			ExperienceFit:   experience,
			StyleOverlap:    style,
			IndustryOverlap: industry,
		}
		sc.ReasonTags = reasonTags(brief, sc)
		scored = append(scored, sc)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].FinalScore != scored[j].FinalScore {
			return scored[i].FinalScore > scored[j].FinalScore
		}
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Profile.ID < scored[j].Profile.ID
	})

	if len(scored) > 0 {
		s.logger.Debug("scoring completed", map[string]interface{}{
			"briefId":    brief.ID,
			"candidates": len(scored),
			"topId":      scored[0].Profile.ID,
			"topScore":   scored[0].FinalScore,
		})
	}

	return scored
}

// experienceFit is 1.0 inside the band centered on the brief-implied target
// years and decays linearly to 0 outside it.
func (s *Scorer) experienceFit(brief *models.Brief, profile *models.DesignerProfile) float64 {
	target := s.config.targetYears(brief.Seniority)
	half := s.config.ExperienceBandYears / 2
	distance := math.Abs(float64(profile.YearsExperience) - target)
	if distance <= half {
		return 1.0
	}
	decay := s.config.ExperienceDecayYears
	if decay <= 0 {
		return 0
	}
	fit := 1.0 - (distance-half)/decay
	return math.Max(fit, 0)
}

// jaccard is |a ∩ b| / |a ∪ b|; an empty set on either side is a no-signal 0,
// not an error.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(a))
	for _, v := range a {
		setA[v] = true
	}
	setB := make(map[string]bool, len(b))
	for _, v := range b {
		setB[v] = true
	}

	intersection := 0
	for v := range setB {
		if setA[v] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

// normalizeSimilarity maps raw cosine [-1,1] into [0,1].
func normalizeSimilarity(cos float64) float64 {
	n := (cos + 1) / 2
	return math.Min(math.Max(n, 0), 1)
}

// reasonTags derives the machine reasons used for logging and as the
// deterministic fallback when AI reasoning is degraded.
func reasonTags(brief *models.Brief, sc *models.ScoredCandidate) []string {
	var tags []string

	if normalizeSimilarity(sc.Similarity) >= 0.75 {
		tags = append(tags, "strong_semantic_match")
	}
	if sc.ExperienceFit >= 0.8 {
		tags = append(tags, "experience_fit")
	}
	for _, style := range shared(brief.Styles, sc.Profile.Styles) {
		tags = append(tags, fmt.Sprintf("style:%s", style))
	}
	for _, industry := range shared(brief.Industries, sc.Profile.Industries) {
		tags = append(tags, fmt.Sprintf("industry:%s", industry))
	}
	for _, category := range shared(brief.Categories, sc.Profile.Categories) {
		tags = append(tags, fmt.Sprintf("category:%s", category))
	}

	return tags
}

func shared(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	var out []string
	for _, v := range b {
		if set[v] {
			out = append(out, v)
			delete(set, v)
		}
	}
	sort.Strings(out)
	return out
}
