package orchestrator

// Stage names the steps of a single match request. Used as the metric label
// for per-stage durations and as the stage on timeout errors.
type Stage string

const (
	StageValidating Stage = "validating"
	StageCacheCheck Stage = "cache_check"
	StageRetrieving Stage = "retrieving"
	StageFiltering  Stage = "filtering"
	StageScoring    Stage = "scoring"
	StageReasoning  Stage = "reasoning"
	StagePersisting Stage = "persisting"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)
