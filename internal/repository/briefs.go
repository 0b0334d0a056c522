// Package repository holds the Postgres-backed collaborators of the matching
// engine: the brief source, the designer pool source, and the match store.
// Schema management is external; the queries here assume the marketplace
// tables already exist.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"match-engine/internal/common/logger"
	"match-engine/internal/common/validation"
	"match-engine/internal/models"

	matcherrors "match-engine/internal/common/errors"
)

// BriefRepository reads client briefs.
type BriefRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewBriefRepository(db *sql.DB, log logger.Logger) *BriefRepository {
	return &BriefRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"repository": "briefs"}),
	}
}

// GetBrief loads a brief by id. Tag columns are JSON arrays written by the
// marketplace side; they are validated and normalized here, at the boundary.
func (r *BriefRepository) GetBrief(ctx context.Context, id string) (*models.Brief, error) {
	const query = `
		SELECT id, client_id, categories, budget_min, budget_max, timeline,
		       seniority, styles, industries, description, created_at
		FROM briefs
		WHERE id = $1`

	var (
		b                              models.Brief
		categories, styles, industries []byte
		budgetMin, budgetMax           sql.NullFloat64
		seniority                      sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.ClientID, &categories, &budgetMin, &budgetMax, &b.Timeline,
		&seniority, &styles, &industries, &b.Description, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, matcherrors.NewBriefNotFoundError(id)
		}
		return nil, fmt.Errorf("query brief %s: %w", id, err)
	}

	if budgetMin.Valid {
		v := budgetMin.Float64
		b.BudgetMin = &v
	}
	if budgetMax.Valid {
		v := budgetMax.Float64
		b.BudgetMax = &v
	}
	if seniority.Valid {
		b.Seniority = seniority.String
	}

	if b.Categories, err = validation.DecodeTagArray(categories); err != nil {
		return nil, matcherrors.NewValidationError(fmt.Sprintf("brief %s categories: %v", id, err))
	}
	if b.Styles, err = validation.DecodeTagArray(styles); err != nil {
		return nil, matcherrors.NewValidationError(fmt.Sprintf("brief %s styles: %v", id, err))
	}
	if b.Industries, err = validation.DecodeTagArray(industries); err != nil {
		return nil, matcherrors.NewValidationError(fmt.Sprintf("brief %s industries: %v", id, err))
	}

	if len(b.Categories) == 0 {
		return nil, matcherrors.NewValidationError(fmt.Sprintf("brief %s has no categories", id))
	}

	return &b, nil
}
