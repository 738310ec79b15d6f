package entity

import "time"

// Stage is a named pipeline step.
type Stage struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// HistoryEntry records a candidate entering a stage. Entries are append-only.
type HistoryEntry struct {
	ID          int64     `db:"id" json:"id"`
	CandidateID int64     `db:"candidate_id" json:"candidateId"`
	StageID     int64     `db:"stage_id" json:"stageId"`
	Notes       *string   `db:"notes" json:"notes"`
	ChangedAt   time.Time `db:"changed_at" json:"changedAt"`
	Stage       Stage     `db:"stage" json:"stage"`
}
