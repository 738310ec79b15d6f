package repo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ats/internal/candidate/entity"
)

const selectEducations = `SELECT e.id, e.candidate_id, e.institution, e.degree, e.start_date, e.end_date, e.type_id,
	t.id AS "type.id", t.name AS "type.name"
FROM candidate_educations e JOIN education_types t ON t.id = e.type_id
WHERE e.candidate_id = $1 ORDER BY e.id`

const selectExperiences = `SELECT x.id, x.candidate_id, x.company, x.position, x.start_date, x.end_date, x.description, x.type_id,
	t.id AS "type.id", t.name AS "type.name"
FROM candidate_experiences x JOIN experience_types t ON t.id = x.type_id
WHERE x.candidate_id = $1 ORDER BY x.id`

func (r *Repo) ListEducations(ctx context.Context, candidateID int64) ([]entity.Education, error) {
	out := []entity.Education{}
	if err := sqlx.SelectContext(ctx, r.ext, &out, selectEducations, candidateID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) InsertEducation(ctx context.Context, e *entity.Education) error {
	const q = `INSERT INTO candidate_educations (candidate_id, institution, degree, start_date, end_date, type_id)
		VALUES (:candidate_id, :institution, :degree, :start_date, :end_date, :type_id) RETURNING id`
	return translate(r.insertReturningID(ctx, q, e, &e.ID), "Education")
}

func (r *Repo) ListExperiences(ctx context.Context, candidateID int64) ([]entity.Experience, error) {
	out := []entity.Experience{}
	if err := sqlx.SelectContext(ctx, r.ext, &out, selectExperiences, candidateID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) InsertExperience(ctx context.Context, e *entity.Experience) error {
	const q = `INSERT INTO candidate_experiences (candidate_id, company, position, start_date, end_date, description, type_id)
		VALUES (:candidate_id, :company, :position, :start_date, :end_date, :description, :type_id) RETURNING id`
	return translate(r.insertReturningID(ctx, q, e, &e.ID), "Experience")
}

func (r *Repo) insertReturningID(ctx context.Context, q string, arg any, id *int64) error {
	rows, err := sqlx.NamedQueryContext(ctx, r.ext, q, arg)
	if err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return errors.New("no id returned")
	}
	return rows.Scan(id)
}
