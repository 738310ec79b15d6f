package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ats/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ats/internal/candidate/entity"
	"github.com/ovaphlow/pitchfork/service-ats/pkg/database"
)

// Repo is the Postgres Store. A Repo returned by NewRepo owns the pool; the
// one handed to InTx callbacks is bound to the transaction.
type Repo struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

var _ Store = (*Repo)(nil)

func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db, ext: db} }

func (r *Repo) InTx(ctx context.Context, fn func(Store) error) error {
	if r.db == nil {
		return fn(r)
	}
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&Repo{ext: tx})
	})
}

// translate turns constraint violations into client-facing errors.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case database.IsUniqueViolation(err):
		return apperr.Conflict("%s conflicts with an existing record", what)
	case database.IsForeignKeyViolation(err):
		return apperr.Conflict("%s references a record that does not exist", what)
	case database.IsCheckViolation(err):
		return apperr.Conflict("%s violates a data constraint", what)
	}
	return err
}

func (r *Repo) LockCandidate(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT id FROM candidates WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repo) CandidateExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT id FROM candidates WHERE id = $1`, id)
}

func (r *Repo) exists(ctx context.Context, q string, id int64) (bool, error) {
	var got int64
	err := sqlx.GetContext(ctx, r.ext, &got, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

const candidateColumns = `id, personal_id, first_name, second_name, first_surname, second_surname, resume_url, created_at, updated_at`

// GetCandidate returns the candidate row without sub-collections or sql.ErrNoRows.
func (r *Repo) GetCandidate(ctx context.Context, id int64) (entity.Candidate, error) {
	var c entity.Candidate
	err := sqlx.GetContext(ctx, r.ext, &c, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	return c, err
}

// ListCandidates returns summaries ordered by id. limit 0 means no limit.
func (r *Repo) ListCandidates(ctx context.Context, limit, offset int) ([]entity.Summary, error) {
	const q = `SELECT c.id, c.created_at, c.personal_id, c.first_name, c.second_name,
		c.first_surname, c.second_surname, c.resume_url, c.updated_at,
		COALESCE((SELECT e.email FROM candidate_emails e WHERE e.candidate_id = c.id
			ORDER BY e.is_primary DESC, e.id LIMIT 1), '') AS email,
		COALESCE((SELECT p.phone FROM candidate_phones p WHERE p.candidate_id = c.id
			ORDER BY p.is_primary DESC, p.id LIMIT 1), '') AS phone
	FROM candidates c
	ORDER BY c.id
	LIMIT $1 OFFSET $2`
	var lim any
	if limit > 0 {
		lim = limit
	}
	out := []entity.Summary{}
	if err := sqlx.SelectContext(ctx, r.ext, &out, q, lim, offset); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertCandidate inserts the candidate row and fills ID and timestamps.
func (r *Repo) InsertCandidate(ctx context.Context, c *entity.Candidate) error {
	const q = `INSERT INTO candidates (personal_id, first_name, second_name, first_surname, second_surname, resume_url)
		VALUES (:personal_id, :first_name, :second_name, :first_surname, :second_surname, :resume_url)
		RETURNING id, created_at, updated_at`
	rows, err := sqlx.NamedQueryContext(ctx, r.ext, q, c)
	if err != nil {
		return translate(err, "personalId "+c.PersonalID)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return translate(err, "personalId "+c.PersonalID)
		}
		return errors.New("no id returned")
	}
	return rows.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// UpdateCandidate applies the present fields and always bumps updated_at.
func (r *Repo) UpdateCandidate(ctx context.Context, id int64, p CandidatePatch) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	add := func(col string, v *string) {
		if v != nil {
			args = append(args, *v)
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	add("personal_id", p.PersonalID)
	add("first_name", p.FirstName)
	add("second_name", p.SecondName)
	add("first_surname", p.FirstSurname)
	add("second_surname", p.SecondSurname)
	add("resume_url", p.ResumeURL)
	args = append(args, id)
	q := fmt.Sprintf("UPDATE candidates SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	_, err := r.ext.ExecContext(ctx, q, args...)
	return translate(err, "personalId")
}

// DeleteCandidate removes the candidate; owned rows cascade.
func (r *Repo) DeleteCandidate(ctx context.Context, id int64) (bool, error) {
	res, err := r.ext.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClearSubCollection deletes every row of kind owned by candidateID.
func (r *Repo) ClearSubCollection(ctx context.Context, kind entity.Kind, candidateID int64) error {
	t, ok := subTables[kind]
	if !ok {
		return fmt.Errorf("unknown sub-collection %q", kind)
	}
	_, err := r.ext.ExecContext(ctx, "DELETE FROM "+t+" WHERE candidate_id = $1", candidateID)
	return err
}

var subTables = map[entity.Kind]string{
	entity.Emails:      "candidate_emails",
	entity.Phones:      "candidate_phones",
	entity.Addresses:   "candidate_addresses",
	entity.Educations:  "candidate_educations",
	entity.Experiences: "candidate_experiences",
}
