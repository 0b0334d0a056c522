package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"match-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func floatPtr(v float64) *float64 {
	return &v
}

func createTestBrief() *models.Brief {
	return &models.Brief{
		ID:         "brief-123",
		ClientID:   "client-1",
		Categories: []string{"branding"},
		BudgetMin:  floatPtr(1000),
		BudgetMax:  floatPtr(5000),
		Styles:     []string{"minimalist"},
		Industries: []string{"fintech"},
	}
}

func createCandidate(id string, mutate func(*models.DesignerProfile)) *models.Candidate {
	profile := &models.DesignerProfile{
		ID:              id,
		Categories:      []string{"branding", "web"},
		YearsExperience: 5,
		Availability:    models.AvailabilityAvailable,
		RateMin:         floatPtr(1500),
		RateMax:         floatPtr(4000),
		Styles:          []string{"minimalist"},
		Industries:      []string{"fintech"},
	}
	if mutate != nil {
		mutate(profile)
	}
	return &models.Candidate{Profile: profile, Similarity: 0.8}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestApply_Gates(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.DesignerProfile)
		eligible bool
	}{
		{
			name:     "passes all gates",
			mutate:   nil,
			eligible: true,
		},
		{
			name: "unavailable designer excluded",
			mutate: func(p *models.DesignerProfile) {
				p.Availability = models.AvailabilityUnavailable
			},
			eligible: false,
		},
		{
			name: "busy designer still eligible",
			mutate: func(p *models.DesignerProfile) {
				p.Availability = models.AvailabilityBusy
			},
			eligible: true,
		},
		{
			name: "no category overlap excluded",
			mutate: func(p *models.DesignerProfile) {
				p.Categories = []string{"illustration"}
			},
			eligible: false,
		},
		{
			name: "empty categories excluded",
			mutate: func(p *models.DesignerProfile) {
				p.Categories = nil
			},
			eligible: false,
		},
		{
			name: "rate floor above budget ceiling excluded",
			mutate: func(p *models.DesignerProfile) {
				p.RateMin = floatPtr(6000)
			},
			eligible: false,
		},
		{
			name: "rate ceiling below budget floor excluded",
			mutate: func(p *models.DesignerProfile) {
				p.RateMax = floatPtr(500)
			},
			eligible: false,
		},
		{
			name: "missing rates mean no budget constraint",
			mutate: func(p *models.DesignerProfile) {
				p.RateMin = nil
				p.RateMax = nil
			},
			eligible: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := createCandidate("designer-1", tt.mutate)

			result := Apply(createTestBrief(), []*models.Candidate{candidate}, nil)

			if tt.eligible {
				assert.Len(t, result, 1)
				assert.True(t, candidate.Eligible)
			} else {
				assert.Empty(t, result)
				assert.False(t, candidate.Eligible)
			}
		})
	}
}

func TestApply_CategoryGateBeatsSimilarity(t *testing.T) {
	// A semantically closer designer in the wrong category loses to a less
	// similar designer in the requested one.
	brief := createTestBrief()

	closer := createCandidate("designer-close", func(p *models.DesignerProfile) {
		p.Categories = []string{"illustration"}
	})
	closer.Similarity = 0.95

	inCategory := createCandidate("designer-cat", nil)
	inCategory.Similarity = 0.70

	result := Apply(brief, []*models.Candidate{closer, inCategory}, nil)

	assert.Len(t, result, 1)
	assert.Equal(t, "designer-cat", result[0].Profile.ID)
}

func TestApply_PreservesInputOrder(t *testing.T) {
	brief := createTestBrief()
	candidates := []*models.Candidate{
		createCandidate("designer-a", nil),
		createCandidate("designer-b", func(p *models.DesignerProfile) {
			p.Availability = models.AvailabilityUnavailable
		}),
		createCandidate("designer-c", nil),
	}

	result := Apply(brief, candidates, nil)

	assert.Len(t, result, 2)
	assert.Equal(t, "designer-a", result[0].Profile.ID)
	assert.Equal(t, "designer-c", result[1].Profile.ID)
}

func TestApply_ExcludesAlreadyMatched(t *testing.T) {
	brief := createTestBrief()
	candidates := []*models.Candidate{
		createCandidate("designer-a", nil),
		createCandidate("designer-b", nil),
	}

	result := Apply(brief, candidates, map[string]bool{"designer-a": true})

	assert.Len(t, result, 1)
	assert.Equal(t, "designer-b", result[0].Profile.ID)
}

func TestApply_BudgetOverlapAtBoundary(t *testing.T) {
	// Touching ranges overlap: rate floor equal to budget ceiling passes.
	brief := createTestBrief()
	candidate := createCandidate("designer-1", func(p *models.DesignerProfile) {
		p.RateMin = floatPtr(5000)
		p.RateMax = floatPtr(9000)
	})

	result := Apply(brief, []*models.Candidate{candidate}, nil)

	assert.Len(t, result, 1)
}
