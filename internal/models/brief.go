package models

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Seniority levels a brief may imply. Used to center the experience band.
const (
	SeniorityJunior = "junior"
	SeniorityMid    = "mid"
	SenioritySenior = "senior"
)

// Brief is a client's project request. Immutable once created; owned by the
// client that submitted it. Budget fields are the canonical hourly band;
// collaborator-side variants (budget vs budget_range) are normalized before
// the engine sees them.
type Brief struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"clientId"`
	Categories  []string  `json:"categories"`
	BudgetMin   *float64  `json:"budgetMin,omitempty"`
	BudgetMax   *float64  `json:"budgetMax,omitempty"`
	Timeline    string    `json:"timeline"`
	Seniority   string    `json:"seniority,omitempty"`
	Styles      []string  `json:"styles"`
	Industries  []string  `json:"industries"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ContentHash fingerprints the fields that affect matching. Timestamps and
// ownership are deliberately excluded so cache keys survive re-reads.
func (b *Brief) ContentHash() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(b.Categories, ","))
	sb.WriteString("|")
	sb.WriteString(formatBound(b.BudgetMin))
	sb.WriteString("|")
	sb.WriteString(formatBound(b.BudgetMax))
	sb.WriteString("|")
	sb.WriteString(b.Seniority)
	sb.WriteString("|")
	sb.WriteString(strings.Join(b.Styles, ","))
	sb.WriteString("|")
	sb.WriteString(strings.Join(b.Industries, ","))
	sb.WriteString("|")
	sb.WriteString(b.Description)

	sum := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%x", sum[:])
}

// EmbeddingText is the text sent to the embedder for query vectors.
// Raw embeddings never leave the engine; this is plain brief content.
func (b *Brief) EmbeddingText() string {
	parts := []string{b.Description}
	if len(b.Categories) > 0 {
		parts = append(parts, "categories: "+strings.Join(b.Categories, ", "))
	}
	if len(b.Styles) > 0 {
		parts = append(parts, "styles: "+strings.Join(b.Styles, ", "))
	}
	if len(b.Industries) > 0 {
		parts = append(parts, "industries: "+strings.Join(b.Industries, ", "))
	}
	return strings.Join(parts, "\n")
}

func formatBound(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
