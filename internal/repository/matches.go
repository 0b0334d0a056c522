package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"

	matcherrors "match-engine/internal/common/errors"
)

// MatchRepository persists matching decisions. Uniqueness of the non-expired
// match per brief relies on the partial unique index
//
//	CREATE UNIQUE INDEX matches_active_brief ON matches (brief_id)
//	WHERE status <> 'expired';
//
// so CreateIfAbsent is a single atomic insert, not a read-then-write.
type MatchRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewMatchRepository(db *sql.DB, log logger.Logger) *MatchRepository {
	return &MatchRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"repository": "matches"}),
	}
}

// CreateIfAbsent inserts the match unless the brief already holds a
// non-expired one. Returns the authoritative record and whether this call
// created it. On a lost race the locally computed match is discarded and the
// existing record wins.
func (r *MatchRepository) CreateIfAbsent(ctx context.Context, m *models.Match) (*models.Match, bool, error) {
	reasons, err := json.Marshal(m.Reasons)
	if err != nil {
		return nil, false, matcherrors.NewPersistenceFailedError(err)
	}

	const insert = `
		INSERT INTO matches (id, brief_id, designer_id, score, reasons, degraded, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (brief_id) WHERE status <> 'expired' DO NOTHING`

	res, err := r.db.ExecContext(ctx, insert,
		m.ID, m.BriefID, m.DesignerID, m.Score, reasons, m.Degraded, string(m.Status), m.CreatedAt,
	)
	if err != nil {
		return nil, false, matcherrors.NewPersistenceFailedError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, matcherrors.NewPersistenceFailedError(err)
	}
	if affected == 1 {
		return m, true, nil
	}

	// Another request won the insert; return its record.
	existing, err := r.GetForBrief(ctx, m.BriefID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		// The winner expired between our insert and read. Treat as a conflict
		// the caller can retry rather than guessing.
		return nil, false, matcherrors.NewPersistenceConflictError(m.BriefID)
	}

	r.logger.Info("create-if-absent lost the race, returning existing match", map[string]interface{}{
		"briefId": m.BriefID,
		"matchId": existing.ID,
	})
	return existing, false, nil
}

// GetForBrief returns the non-expired match for a brief, or nil when none exists.
func (r *MatchRepository) GetForBrief(ctx context.Context, briefID string) (*models.Match, error) {
	const query = `
		SELECT id, brief_id, designer_id, score, reasons, degraded, status, created_at
		FROM matches
		WHERE brief_id = $1 AND status <> 'expired'`

	var (
		m       models.Match
		reasons []byte
		status  string
	)

	err := r.db.QueryRowContext(ctx, query, briefID).Scan(
		&m.ID, &m.BriefID, &m.DesignerID, &m.Score, &reasons, &m.Degraded, &status, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query match for brief %s: %w", briefID, err)
	}

	m.Status = models.MatchStatus(status)
	if len(reasons) > 0 {
		if err := json.Unmarshal(reasons, &m.Reasons); err != nil {
			return nil, fmt.Errorf("decode reasons for match %s: %w", m.ID, err)
		}
	}

	return &m, nil
}

// UpdateStatus applies a status transition. Matches are never re-scored;
// status is the only mutable field.
func (r *MatchRepository) UpdateStatus(ctx context.Context, matchID string, from, to models.MatchStatus) error {
	if !models.CanTransition(from, to) {
		return fmt.Errorf("invalid match status transition %s -> %s", from, to)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = $3 WHERE id = $1 AND status = $2`,
		matchID, string(from), string(to),
	)
	if err != nil {
		return matcherrors.NewPersistenceFailedError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return matcherrors.NewPersistenceFailedError(err)
	}
	if affected == 0 {
		return fmt.Errorf("match %s is not in status %s", matchID, from)
	}
	return nil
}
