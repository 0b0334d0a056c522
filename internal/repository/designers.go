package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"match-engine/internal/common/logger"
	"match-engine/internal/common/validation"
	"match-engine/internal/models"
)

// ErrDesignerNotFound is returned when a retrieved id no longer exists in the
// pool. The pool may change between retrieval and profile load; callers skip
// such candidates instead of failing the request.
var ErrDesignerNotFound = errors.New("designer profile not found")

// DesignerRepository reads designer profiles.
type DesignerRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewDesignerRepository(db *sql.DB, log logger.Logger) *DesignerRepository {
	return &DesignerRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"repository": "designers"}),
	}
}

const designerColumns = `
	id, categories, years_experience, availability, rate_min, rate_max,
	styles, industries, bio, embedding_version`

// GetProfile loads a single designer profile.
func (r *DesignerRepository) GetProfile(ctx context.Context, id string) (*models.DesignerProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM designer_profiles WHERE id = $1`, designerColumns)

	row := r.db.QueryRowContext(ctx, query, id)
	profile, err := scanDesigner(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDesignerNotFound
		}
		return nil, fmt.Errorf("query designer %s: %w", id, err)
	}
	return profile, nil
}

// IterateProfiles streams every designer profile to fn, in id order.
// Used by the bulk re-embedding job; a non-nil error from fn stops iteration.
func (r *DesignerRepository) IterateProfiles(ctx context.Context, fn func(*models.DesignerProfile) error) error {
	query := fmt.Sprintf(`SELECT %s FROM designer_profiles ORDER BY id`, designerColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query designer profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		profile, err := scanDesigner(rows)
		if err != nil {
			return fmt.Errorf("scan designer profile: %w", err)
		}
		if err := fn(profile); err != nil {
			return err
		}
	}
	return rows.Err()
}

// MarkEmbedded records the content hash the stored vector was computed from.
func (r *DesignerRepository) MarkEmbedded(ctx context.Context, designerID, version string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE designer_profiles SET embedding_version = $2 WHERE id = $1`,
		designerID, version,
	)
	if err != nil {
		return fmt.Errorf("mark designer %s embedded: %w", designerID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDesigner(row rowScanner) (*models.DesignerProfile, error) {
	var (
		d                              models.DesignerProfile
		categories, styles, industries []byte
		rateMin, rateMax               sql.NullFloat64
		embeddingVersion               sql.NullString
	)

	err := row.Scan(
		&d.ID, &categories, &d.YearsExperience, &d.Availability,
		&rateMin, &rateMax, &styles, &industries, &d.Bio, &embeddingVersion,
	)
	if err != nil {
		return nil, err
	}

	if rateMin.Valid {
		v := rateMin.Float64
		d.RateMin = &v
	}
	if rateMax.Valid {
		v := rateMax.Float64
		d.RateMax = &v
	}
	if embeddingVersion.Valid {
		d.EmbeddingVersion = embeddingVersion.String
	}

	if d.Categories, err = validation.DecodeTagArray(categories); err != nil {
		return nil, fmt.Errorf("designer %s categories: %w", d.ID, err)
	}
	if d.Styles, err = validation.DecodeTagArray(styles); err != nil {
		return nil, fmt.Errorf("designer %s styles: %w", d.ID, err)
	}
	if d.Industries, err = validation.DecodeTagArray(industries); err != nil {
		return nil, fmt.Errorf("designer %s industries: %w", d.ID, err)
	}

	return &d, nil
}
