package reasoning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	matcherrors "match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"
)

const maxReasons = 4

// Result is the reasoning outcome attached to a match. Degraded marks that
// the reasons are rule-derived rather than AI-generated.
type Result struct {
	Reasons  []string
	Degraded bool
}

// Generator produces client-facing match reasons, falling back to rule-derived
// text when the AI is unavailable. GenerateReasons never hard-fails a match.
type Generator struct {
	gen    ContentGenerator
	config *Config
	logger logger.Logger
}

func NewGenerator(gen ContentGenerator, config *Config, log logger.Logger) *Generator {
	if config == nil {
		config = LoadConfig()
	}
	return &Generator{
		gen:    gen,
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "reasoning"}),
	}
}

// GenerateReasons asks the AI for short reasons explaining why the top
// candidate fits the brief. Transient failures are retried on the configured
// backoff schedule; quota exhaustion and permanent request errors degrade
// immediately to the tag-derived fallback.
func (g *Generator) GenerateReasons(ctx context.Context, brief *models.Brief, top *models.ScoredCandidate) *Result {
	log := g.logger.WithFields(map[string]interface{}{
		"brief_id":    brief.ID,
		"designer_id": top.Profile.ID,
	})

	prompt := buildPrompt(brief, top)

	var lastErr error
	attempts := g.config.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			metrics.ReasoningRetriesTotal.Inc()
			if err := sleepCtx(ctx, g.config.backoffFor(attempt-1)); err != nil {
				lastErr = err
				break
			}
		}

		text, err := g.generateOnce(ctx, prompt)
		if err == nil {
			reasons := parseReasons(text)
			if len(reasons) == 0 {
				log.Warn("ai response contained no usable reasons, degrading", nil)
				break
			}
			return &Result{Reasons: reasons, Degraded: false}
		}

		lastErr = err
		code := classifyAIError(err)
		log.WithError(err).Warn("reasoning attempt failed", map[string]interface{}{
			"attempt": attempt,
			"code":    string(code),
		})

		if code != matcherrors.ErrCodeAITransient {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	if lastErr != nil {
		log.WithError(lastErr).Warn("reasoning degraded to rule-derived fallback", nil)
	}
	metrics.ReasoningDegradedTotal.Inc()

	return &Result{Reasons: BuildFallbackReasons(top.ReasonTags), Degraded: true}
}

func (g *Generator) generateOnce(ctx context.Context, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	return g.gen.GenerateContent(attemptCtx, prompt)
}

// classifyAIError maps provider failures onto the engine's retry policy.
func classifyAIError(err error) matcherrors.ErrorCode {
	if err == nil {
		return matcherrors.ErrCodeAITransient
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return matcherrors.ErrCodeAITransient
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return matcherrors.ErrCodeAIQuotaExhausted
		case apiErr.Code >= 500:
			return matcherrors.ErrCodeAITransient
		case apiErr.Code == 400 || apiErr.Code == 401 || apiErr.Code == 403:
			return matcherrors.ErrCodeAIMalformedRequest
		}
	}

	// Unclassified errors (network resets, partial reads) are worth a retry.
	return matcherrors.ErrCodeAITransient
}

func buildPrompt(brief *models.Brief, top *models.ScoredCandidate) string {
	var sb strings.Builder
	sb.WriteString("You are matching a client brief with a designer on a design marketplace.\n")
	sb.WriteString("Write up to 4 short reasons, one per line, explaining why this designer fits the brief.\n")
	sb.WriteString("Each reason must be a single plain sentence. No numbering, no markdown.\n\n")

	sb.WriteString("Brief:\n")
	sb.WriteString(fmt.Sprintf("- categories: %s\n", strings.Join(brief.Categories, ", ")))
	if brief.Seniority != "" {
		sb.WriteString(fmt.Sprintf("- seniority: %s\n", brief.Seniority))
	}
	if len(brief.Styles) > 0 {
		sb.WriteString(fmt.Sprintf("- styles: %s\n", strings.Join(brief.Styles, ", ")))
	}
	if len(brief.Industries) > 0 {
		sb.WriteString(fmt.Sprintf("- industries: %s\n", strings.Join(brief.Industries, ", ")))
	}
	if brief.Timeline != "" {
		sb.WriteString(fmt.Sprintf("- timeline: %s\n", brief.Timeline))
	}
	if brief.Description != "" {
		sb.WriteString(fmt.Sprintf("- description: %s\n", brief.Description))
	}

	profile := top.Profile
	sb.WriteString("\nDesigner:\n")
	sb.WriteString(fmt.Sprintf("- categories: %s\n", strings.Join(profile.Categories, ", ")))
	sb.WriteString(fmt.Sprintf("- years of experience: %d\n", profile.YearsExperience))
	if len(profile.Styles) > 0 {
		sb.WriteString(fmt.Sprintf("- styles: %s\n", strings.Join(profile.Styles, ", ")))
	}
	if len(profile.Industries) > 0 {
		sb.WriteString(fmt.Sprintf("- industries: %s\n", strings.Join(profile.Industries, ", ")))
	}
	if profile.Bio != "" {
		sb.WriteString(fmt.Sprintf("- bio: %s\n", profile.Bio))
	}

	return sb.String()
}

// parseReasons splits the model output into at most maxReasons clean lines.
func parseReasons(text string) []string {
	lines := strings.Split(text, "\n")
	reasons := make([]string, 0, maxReasons)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789. ")
		if line == "" {
			continue
		}
		reasons = append(reasons, line)
		if len(reasons) == maxReasons {
			break
		}
	}
	return reasons
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
