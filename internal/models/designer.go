package models

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
)

// Availability states a designer profile can be in.
const (
	AvailabilityAvailable   = "available"
	AvailabilityBusy        = "busy"
	AvailabilityUnavailable = "unavailable"
)

// DesignerProfile is a designer's marketplace profile. Mutated externally via
// profile edits; the embedding must be regenerated whenever bio, styles or
// industries change (EmbeddingVersion must equal ContentHash).
type DesignerProfile struct {
	ID               string   `json:"id"`
	Categories       []string `json:"categories"`
	YearsExperience  int      `json:"yearsExperience"`
	Availability     string   `json:"availability"`
	RateMin          *float64 `json:"rateMin,omitempty"`
	RateMax          *float64 `json:"rateMax,omitempty"`
	Styles           []string `json:"styles"`
	Industries       []string `json:"industries"`
	Bio              string   `json:"bio"`
	EmbeddingVersion string   `json:"embeddingVersion,omitempty"`
}

// ContentHash covers the embedding-relevant profile content. A profile whose
// EmbeddingVersion differs from this hash has a stale vector.
func (d *DesignerProfile) ContentHash() string {
	var sb strings.Builder
	sb.WriteString(d.Bio)
	sb.WriteString("|")
	sb.WriteString(strings.Join(d.Styles, ","))
	sb.WriteString("|")
	sb.WriteString(strings.Join(d.Industries, ","))

	sum := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%x", sum[:])
}

// EmbeddingStale reports whether the stored vector no longer matches the
// profile content.
func (d *DesignerProfile) EmbeddingStale() bool {
	return d.EmbeddingVersion != d.ContentHash()
}

// EmbeddingText is the profile text sent to the embedder during reindexing.
func (d *DesignerProfile) EmbeddingText() string {
	parts := []string{d.Bio}
	if len(d.Styles) > 0 {
		parts = append(parts, "styles: "+strings.Join(d.Styles, ", "))
	}
	if len(d.Industries) > 0 {
		parts = append(parts, "industries: "+strings.Join(d.Industries, ", "))
	}
	if len(d.Categories) > 0 {
		parts = append(parts, "categories: "+strings.Join(d.Categories, ", "))
	}
	parts = append(parts, "experience: "+strconv.Itoa(d.YearsExperience)+" years")
	return strings.Join(parts, "\n")
}
