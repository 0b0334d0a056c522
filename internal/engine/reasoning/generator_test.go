package reasoning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

// fakeGenerator scripts one response per attempt.
type fakeGenerator struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func createTestReasoningConfig() *Config {
	return &Config{
		Timeout:    time.Second,
		MaxRetries: 2,
		Backoff:    []time.Duration{0, 0},
	}
}

func createTestGenerator(t *testing.T, fake *fakeGenerator) *Generator {
	return NewGenerator(fake, createTestReasoningConfig(), logger.NewTestLogger(t))
}

func reasoningBrief() *models.Brief {
	return &models.Brief{
		ID:          "brief-123",
		Categories:  []string{"branding"},
		Seniority:   models.SeniorityMid,
		Styles:      []string{"minimalist"},
		Industries:  []string{"fintech"},
		Description: "Rebrand for a payments startup",
	}
}

func topCandidate(tags ...string) *models.ScoredCandidate {
	sc := &models.ScoredCandidate{
		Candidate: models.Candidate{
			Profile: &models.DesignerProfile{
				ID:              "designer-1",
				Categories:      []string{"branding"},
				YearsExperience: 6,
				Styles:          []string{"minimalist"},
				Industries:      []string{"fintech"},
				Bio:             "Brand designer focused on fintech",
			},
			Similarity: 0.7,
		},
		FinalScore: 85,
		ReasonTags: tags,
	}
	return sc
}

// ==========================
// Core Functionality Tests
// ==========================

func TestGenerateReasons_Success(t *testing.T) {
	fake := &fakeGenerator{responses: []string{"Strong fintech background.\nMinimalist style matches."}}
	gen := createTestGenerator(t, fake)

	result := gen.GenerateReasons(context.Background(), reasoningBrief(), topCandidate("style:minimalist"))

	assert.False(t, result.Degraded)
	assert.Equal(t, []string{"Strong fintech background.", "Minimalist style matches."}, result.Reasons)
	assert.Equal(t, 1, fake.calls)
}

func TestGenerateReasons_RetriesTransientThenSucceeds(t *testing.T) {
	fake := &fakeGenerator{
		errs:      []error{errors.New("connection reset"), genai.APIError{Code: 503}, nil},
		responses: []string{"", "", "Deep experience in the requested category."},
	}
	gen := createTestGenerator(t, fake)

	result := gen.GenerateReasons(context.Background(), reasoningBrief(), topCandidate())

	assert.False(t, result.Degraded)
	assert.Equal(t, 3, fake.calls)
	assert.Equal(t, []string{"Deep experience in the requested category."}, result.Reasons)
}

func TestGenerateReasons_ExhaustedRetriesDegrades(t *testing.T) {
	fake := &fakeGenerator{
		errs: []error{genai.APIError{Code: 500}, genai.APIError{Code: 500}, genai.APIError{Code: 500}},
	}
	gen := createTestGenerator(t, fake)

	result := gen.GenerateReasons(context.Background(), reasoningBrief(), topCandidate("experience_fit"))

	assert.True(t, result.Degraded)
	assert.Equal(t, 3, fake.calls)
	assert.NotEmpty(t, result.Reasons)
}

func TestGenerateReasons_QuotaDegradesImmediately(t *testing.T) {
	fake := &fakeGenerator{errs: []error{genai.APIError{Code: 429}}}
	gen := createTestGenerator(t, fake)

	result := gen.GenerateReasons(context.Background(), reasoningBrief(), topCandidate("style:minimalist", "industry:fintech"))

	assert.True(t, result.Degraded)
	assert.Equal(t, 1, fake.calls, "quota exhaustion must not burn retries")
	assert.Len(t, result.Reasons, 2)
}

func TestGenerateReasons_MalformedRequestDegradesImmediately(t *testing.T) {
	fake := &fakeGenerator{errs: []error{genai.APIError{Code: 400}}}
	gen := createTestGenerator(t, fake)

	result := gen.GenerateReasons(context.Background(), reasoningBrief(), topCandidate())

	assert.True(t, result.Degraded)
	assert.Equal(t, 1, fake.calls)
	assert.NotEmpty(t, result.Reasons)
}

func TestGenerateReasons_EmptyResponseDegrades(t *testing.T) {
	fake := &fakeGenerator{responses: []string{"   \n  \n"}}
	gen := createTestGenerator(t, fake)

	result := gen.GenerateReasons(context.Background(), reasoningBrief(), topCandidate())

	assert.True(t, result.Degraded)
	assert.NotEmpty(t, result.Reasons, "degraded reasons must never be empty")
}

func TestGenerateReasons_PromptExcludesVectors(t *testing.T) {
	fake := &fakeGenerator{responses: []string{"Fits the brief."}}
	gen := createTestGenerator(t, fake)

	gen.GenerateReasons(context.Background(), reasoningBrief(), topCandidate())

	assert.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "Rebrand for a payments startup")
	assert.Contains(t, fake.prompts[0], "fintech")
	assert.NotContains(t, fake.prompts[0], "embedding")
}

// ==========================
// Parsing and Fallback Tests
// ==========================

func TestParseReasons(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "strips bullets and numbering",
			input:    "- first reason\n2. second reason\n* third reason",
			expected: []string{"first reason", "second reason", "third reason"},
		},
		{
			name:     "caps at four reasons",
			input:    "a\nb\nc\nd\ne\nf",
			expected: []string{"a", "b", "c", "d"},
		},
		{
			name:     "skips blank lines",
			input:    "one\n\n  \ntwo",
			expected: []string{"one", "two"},
		},
		{
			name:     "empty input yields nothing",
			input:    "   ",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseReasons(tt.input))
		})
	}
}

func TestBuildFallbackReasons(t *testing.T) {
	t.Run("derives readable reasons from tags", func(t *testing.T) {
		reasons := BuildFallbackReasons([]string{
			"strong_semantic_match",
			"experience_fit",
			"style:minimalist",
			"industry:fintech",
		})

		assert.Len(t, reasons, 4)
		for _, reason := range reasons {
			assert.NotEmpty(t, reason)
		}
	})

	t.Run("empty tags yield the placeholder", func(t *testing.T) {
		reasons := BuildFallbackReasons(nil)

		assert.Equal(t, []string{fallbackPlaceholder}, reasons)
	})

	t.Run("unknown tags are skipped", func(t *testing.T) {
		reasons := BuildFallbackReasons([]string{"mystery_tag"})

		assert.Equal(t, []string{fallbackPlaceholder}, reasons)
	})
}

func TestClassifyAIError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"deadline exceeded is transient", context.DeadlineExceeded, "AI_TRANSIENT"},
		{"server error is transient", genai.APIError{Code: 502}, "AI_TRANSIENT"},
		{"rate limit is quota", genai.APIError{Code: 429}, "AI_QUOTA_EXHAUSTED"},
		{"bad request is malformed", genai.APIError{Code: 400}, "AI_MALFORMED_REQUEST"},
		{"auth failure is malformed", genai.APIError{Code: 401}, "AI_MALFORMED_REQUEST"},
		{"unknown error is transient", errors.New("boom"), "AI_TRANSIENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(classifyAIError(tt.err)))
		})
	}
}
