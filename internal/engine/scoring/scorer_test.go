package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	appconfig "match-engine/internal/common/config"
	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestScoringConfig() *Config {
	return &Config{
		Weights: appconfig.WeightsConfig{
			Similarity: 0.50,
			Experience: 0.20,
			Style:      0.15,
			Industry:   0.15,
		},
		ExperienceBandYears:  2,
		ExperienceDecayYears: 6,
		SeniorityTargets:     map[string]float64{"junior": 2, "mid": 5, "senior": 9},
	}
}

func createTestScorer(t *testing.T) *Scorer {
	return NewScorer(createTestScoringConfig(), logger.NewTestLogger(t))
}

func scoringBrief() *models.Brief {
	return &models.Brief{
		ID:         "brief-123",
		Categories: []string{"branding"},
		Seniority:  models.SeniorityMid,
		Styles:     []string{"minimalist", "bold"},
		Industries: []string{"fintech"},
	}
}

func eligibleCandidate(id string, similarity float64, mutate func(*models.DesignerProfile)) *models.Candidate {
	profile := &models.DesignerProfile{
		ID:              id,
		Categories:      []string{"branding"},
		YearsExperience: 5,
		Availability:    models.AvailabilityAvailable,
		Styles:          []string{"minimalist"},
		Industries:      []string{"fintech"},
	}
	if mutate != nil {
		mutate(profile)
	}
	return &models.Candidate{Profile: profile, Similarity: similarity, Eligible: true}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestScore_WeightedSum(t *testing.T) {
	scorer := createTestScorer(t)
	brief := scoringBrief()

	// similarity 0.6 cosine → 0.8 normalized; experience in band → 1.0;
	// styles {minimalist} vs {minimalist, bold} → 0.5; industries exact → 1.0.
	candidate := eligibleCandidate("designer-1", 0.6, nil)

	scored := scorer.Score(brief, []*models.Candidate{candidate})

	assert.Len(t, scored, 1)
	expected := (0.50*0.8 + 0.20*1.0 + 0.15*0.5 + 0.15*1.0) * 100
	assert.InDelta(t, expected, scored[0].FinalScore, 1e-9)
	assert.InDelta(t, 1.0, scored[0].ExperienceFit, 1e-9)
	assert.InDelta(t, 0.5, scored[0].StyleOverlap, 1e-9)
	assert.InDelta(t, 1.0, scored[0].IndustryOverlap, 1e-9)
}

func TestScore_DeterministicUnderReordering(t *testing.T) {
	scorer := createTestScorer(t)
	brief := scoringBrief()

	build := func() []*models.Candidate {
		return []*models.Candidate{
			eligibleCandidate("designer-a", 0.9, nil),
			eligibleCandidate("designer-b", 0.4, nil),
			eligibleCandidate("designer-c", 0.7, nil),
		}
	}

	forward := scorer.Score(brief, build())

	reversed := build()
	reversed[0], reversed[2] = reversed[2], reversed[0]
	backward := scorer.Score(brief, reversed)

	assert.Equal(t, len(forward), len(backward))
	for i := range forward {
		assert.Equal(t, forward[i].Profile.ID, backward[i].Profile.ID)
		assert.Equal(t, forward[i].FinalScore, backward[i].FinalScore)
	}
	assert.Equal(t, "designer-a", forward[0].Profile.ID)
}

func TestScore_TieBreaks(t *testing.T) {
	scorer := createTestScorer(t)
	brief := scoringBrief()

	t.Run("equal scores break on id even when input order differs", func(t *testing.T) {
		a := eligibleCandidate("designer-a", 0.8, nil)
		b := eligibleCandidate("designer-b", 0.8, nil)

		scored := scorer.Score(brief, []*models.Candidate{b, a})

		assert.Equal(t, "designer-a", scored[0].Profile.ID)
	})

	t.Run("identical candidates break on id ascending", func(t *testing.T) {
		x := eligibleCandidate("designer-x", 0.5, nil)
		w := eligibleCandidate("designer-w", 0.5, nil)

		scored := scorer.Score(brief, []*models.Candidate{x, w})

		assert.Equal(t, "designer-w", scored[0].Profile.ID)
	})
}

func TestScore_EmptyTagSetsGiveZeroOverlap(t *testing.T) {
	scorer := createTestScorer(t)
	brief := scoringBrief()
	brief.Industries = nil

	candidate := eligibleCandidate("designer-1", 0.0, func(p *models.DesignerProfile) {
		p.Styles = nil
	})

	scored := scorer.Score(brief, []*models.Candidate{candidate})

	assert.Zero(t, scored[0].StyleOverlap)
	assert.Zero(t, scored[0].IndustryOverlap)
}

func TestExperienceFit_BandAndDecay(t *testing.T) {
	scorer := createTestScorer(t)

	tests := []struct {
		name      string
		seniority string
		years     int
		expected  float64
	}{
		{"center of mid band", models.SeniorityMid, 5, 1.0},
		{"edge of mid band", models.SeniorityMid, 6, 1.0},
		{"one year outside band", models.SeniorityMid, 7, 1.0 - 1.0/6},
		{"far outside decays to zero", models.SeniorityMid, 20, 0},
		{"junior target", models.SeniorityJunior, 2, 1.0},
		{"senior target", models.SenioritySenior, 9, 1.0},
		{"unknown seniority centers on mid", "unknown", 5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brief := scoringBrief()
			brief.Seniority = tt.seniority
			profile := &models.DesignerProfile{YearsExperience: tt.years}

			assert.InDelta(t, tt.expected, scorer.experienceFit(brief, profile), 1e-9)
		})
	}
}

func TestScore_ClampsToRange(t *testing.T) {
	scorer := createTestScorer(t)
	brief := scoringBrief()

	// Cosine below -1 should not push the score negative.
	candidate := eligibleCandidate("designer-1", -1.5, func(p *models.DesignerProfile) {
		p.YearsExperience = 30
		p.Styles = nil
		p.Industries = nil
	})

	scored := scorer.Score(brief, []*models.Candidate{candidate})

	assert.GreaterOrEqual(t, scored[0].FinalScore, 0.0)
	assert.LessOrEqual(t, scored[0].FinalScore, 100.0)
}

func TestReasonTags(t *testing.T) {
	scorer := createTestScorer(t)
	brief := scoringBrief()

	// cosine 0.6 → 0.8 normalized similarity, above the 0.75 tag threshold.
	candidate := eligibleCandidate("designer-1", 0.6, nil)

	scored := scorer.Score(brief, []*models.Candidate{candidate})

	tags := scored[0].ReasonTags
	assert.Contains(t, tags, "strong_semantic_match")
	assert.Contains(t, tags, "experience_fit")
	assert.Contains(t, tags, "style:minimalist")
	assert.Contains(t, tags, "industry:fintech")
	assert.Contains(t, tags, "category:branding")
}
