// Package eligibility removes designers who fail hard constraints before
// scoring. Pure, deterministic, no I/O: every input the gates need is passed
// in by the orchestrator.
package eligibility

import "match-engine/internal/models"

// Apply returns the candidates that pass every gate, preserving the input
// ordering from the embedding store. alreadyMatched holds designer ids that
// hold a non-expired match for this brief.
func Apply(brief *models.Brief, candidates []*models.Candidate, alreadyMatched map[string]bool) []*models.Candidate {
	eligible := make([]*models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		c.Eligible = passes(brief, c.Profile, alreadyMatched)
		if c.Eligible {
			eligible = append(eligible, c)
		}
	}
	return eligible
}

func passes(brief *models.Brief, profile *models.DesignerProfile, alreadyMatched map[string]bool) bool {
	if profile == nil {
		return false
	}
	if profile.Availability == models.AvailabilityUnavailable {
		return false
	}
	if alreadyMatched[profile.ID] {
		return false
	}
	if !intersects(profile.Categories, brief.Categories) {
		return false
	}
	return budgetOverlaps(brief, profile)
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if set[v] {
			return true
		}
	}
	return false
}

// budgetOverlaps checks the designer's rate range against the brief's budget
// band. A missing bound on either side means "no constraint", not a failure.
func budgetOverlaps(brief *models.Brief, profile *models.DesignerProfile) bool {
	if brief.BudgetMax != nil && profile.RateMin != nil && *profile.RateMin > *brief.BudgetMax {
		return false
	}
	if brief.BudgetMin != nil && profile.RateMax != nil && *profile.RateMax < *brief.BudgetMin {
		return false
	}
	return true
}
