package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ats/internal/stage/entity"
)

// Repo provides data access for stages and the stage history log.
type Repo struct {
	db sqlx.ExtContext
}

func NewRepo(db sqlx.ExtContext) *Repo { return &Repo{db: db} }

// CreateStage inserts a stage and returns it with its id.
func (r *Repo) CreateStage(ctx context.Context, name string) (entity.Stage, error) {
	var s entity.Stage
	err := sqlx.GetContext(ctx, r.db, &s, `INSERT INTO stages (name) VALUES ($1) RETURNING id, name`, name)
	return s, err
}

func (r *Repo) ListStages(ctx context.Context) ([]entity.Stage, error) {
	out := []entity.Stage{}
	if err := sqlx.SelectContext(ctx, r.db, &out, `SELECT id, name FROM stages ORDER BY id`); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStage returns the stage with id or sql.ErrNoRows.
func (r *Repo) GetStage(ctx context.Context, id int64) (entity.Stage, error) {
	var s entity.Stage
	err := sqlx.GetContext(ctx, r.db, &s, `SELECT id, name FROM stages WHERE id = $1`, id)
	return s, err
}

// CandidateExists takes a share lock on the candidate row so it cannot be
// deleted before the history entry referencing it is written.
func (r *Repo) CandidateExists(ctx context.Context, id int64) (bool, error) {
	var got int64
	err := sqlx.GetContext(ctx, r.db, &got, `SELECT id FROM candidates WHERE id = $1 FOR SHARE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// InsertHistory appends an entry and fills ID and ChangedAt.
func (r *Repo) InsertHistory(ctx context.Context, e *entity.HistoryEntry) error {
	const q = `INSERT INTO candidate_stage_history (candidate_id, stage_id, notes)
		VALUES ($1, $2, $3) RETURNING id, changed_at`
	return r.db.QueryRowxContext(ctx, q, e.CandidateID, e.StageID, e.Notes).Scan(&e.ID, &e.ChangedAt)
}

const selectHistory = `SELECT h.id, h.candidate_id, h.stage_id, h.notes, h.changed_at,
	s.id AS "stage.id", s.name AS "stage.name"
FROM candidate_stage_history h JOIN stages s ON s.id = h.stage_id`

// ListHistory returns the entries of a candidate newest first.
func (r *Repo) ListHistory(ctx context.Context, candidateID int64) ([]entity.HistoryEntry, error) {
	out := []entity.HistoryEntry{}
	q := selectHistory + ` WHERE h.candidate_id = $1 ORDER BY h.changed_at DESC, h.id DESC`
	if err := sqlx.SelectContext(ctx, r.db, &out, q, candidateID); err != nil {
		return nil, err
	}
	return out, nil
}
