package models

import "time"

// MatchStatus is the lifecycle state of a persisted match.
type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusUnlocked MatchStatus = "unlocked"
	MatchStatusExpired  MatchStatus = "expired"
)

// Match is the persisted matching decision. At most one non-expired Match may
// exist per brief; the repository enforces this with an atomic
// create-if-absent write, never a read-then-write race. A Match is created
// once and only transitions status afterward; it is never re-scored.
type Match struct {
	ID         string      `json:"id"`
	BriefID    string      `json:"briefId"`
	DesignerID string      `json:"designerId"`
	Score      float64     `json:"score"`
	Reasons    []string    `json:"reasons"`
	Degraded   bool        `json:"degraded"`
	Status     MatchStatus `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Active reports whether the match still blocks new matching for its brief.
func (m *Match) Active() bool {
	return m.Status != MatchStatusExpired
}

// validTransitions holds the allowed status edges.
var validTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusPending:  {MatchStatusUnlocked, MatchStatusExpired},
	MatchStatusUnlocked: {MatchStatusExpired},
}

// CanTransition reports whether a status change is allowed.
func CanTransition(from, to MatchStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
