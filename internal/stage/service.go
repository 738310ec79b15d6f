package stage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ats/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ats/internal/stage/entity"
	"github.com/ovaphlow/pitchfork/service-ats/internal/stage/repo"
	"github.com/ovaphlow/pitchfork/service-ats/internal/validation"
	"github.com/ovaphlow/pitchfork/service-ats/pkg/database"
)

type StageInput struct {
	Name string `json:"name" validate:"min=2,max=100"`
}

type StageHistoryInput struct {
	CandidateID int64   `json:"candidateId" validate:"gt=0"`
	StageID     int64   `json:"stageId" validate:"gt=0"`
	Notes       *string `json:"notes" validate:"omitempty,max=500"`
}

// Service manages pipeline stages and the per-candidate stage history.
type Service struct {
	db   *sqlx.DB
	repo *repo.Repo
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db, repo: repo.NewRepo(db)}
}

func (s *Service) CreateStage(ctx context.Context, in StageInput) (entity.Stage, error) {
	if err := validation.Struct(in); err != nil {
		return entity.Stage{}, err
	}
	st, err := s.repo.CreateStage(ctx, in.Name)
	if database.IsUniqueViolation(err) {
		return entity.Stage{}, apperr.Conflict("stage %q already exists", in.Name)
	}
	return st, err
}

func (s *Service) ListStages(ctx context.Context) ([]entity.Stage, error) {
	return s.repo.ListStages(ctx)
}

// RecordTransition appends a history entry after checking that both the
// candidate and the stage exist. Nothing is written when either is missing.
func (s *Service) RecordTransition(ctx context.Context, in StageHistoryInput) (entity.HistoryEntry, error) {
	if err := validation.Struct(in); err != nil {
		return entity.HistoryEntry{}, err
	}
	e := entity.HistoryEntry{CandidateID: in.CandidateID, StageID: in.StageID, Notes: in.Notes}
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		r := repo.NewRepo(tx)
		ok, err := r.CandidateExists(ctx, in.CandidateID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("Candidate")
		}
		e.Stage, err = r.GetStage(ctx, in.StageID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Stage")
		}
		if err != nil {
			return err
		}
		return r.InsertHistory(ctx, &e)
	})
	if err != nil {
		return entity.HistoryEntry{}, err
	}
	return e, nil
}

// ListHistory returns a candidate's entries newest first. An unknown
// candidate has an empty history.
func (s *Service) ListHistory(ctx context.Context, candidateID int64) ([]entity.HistoryEntry, error) {
	return s.repo.ListHistory(ctx, candidateID)
}
