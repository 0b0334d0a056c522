package models

// Candidate joins a designer profile with its retrieval similarity for one
// matching request. Never persisted.
type Candidate struct {
	Profile    *DesignerProfile `json:"profile"`
	Similarity float64          `json:"similarity"`
	Eligible   bool             `json:"eligible"`
}

// ScoredCandidate is a Candidate with its final normalized score (0-100) and
// the machine-derived reason tags computed before any AI call.
type ScoredCandidate struct {
	Candidate
	FinalScore float64  `json:"finalScore"`
	ReasonTags []string `json:"reasonTags"`

	// Component terms, each normalized to [0,1], kept for logging and tests.
	ExperienceFit   float64 `json:"experienceFit"`
	StyleOverlap    float64 `json:"styleOverlap"`
	IndustryOverlap float64 `json:"industryOverlap"`
}
