package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-ats/internal/catalog/entity"
)

// Repo reads and seeds the lookup catalogs.
type Repo struct {
	db sqlx.ExtContext
}

func NewRepo(db sqlx.ExtContext) *Repo { return &Repo{db: db} }

func table(kind entity.Kind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown catalog %q", kind)
	}
	return string(kind), nil
}

// List returns every entry of kind ordered by id.
func (r *Repo) List(ctx context.Context, kind entity.Kind) ([]entity.Type, error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}
	out := []entity.Type{}
	if err := sqlx.SelectContext(ctx, r.db, &out, "SELECT id, name FROM "+t+" ORDER BY id"); err != nil {
		return nil, err
	}
	return out, nil
}

// ExistingIDs returns the subset of ids present in kind.
func (r *Repo) ExistingIDs(ctx context.Context, kind entity.Kind, ids []int64) ([]int64, error) {
	t, err := table(kind)
	if err != nil {
		return nil, err
	}
	var out []int64
	if err := sqlx.SelectContext(ctx, r.db, &out, "SELECT id FROM "+t+" WHERE id = ANY($1)", pq.Array(ids)); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert adds name to kind unless it already exists. It reports whether a row was inserted.
func (r *Repo) Insert(ctx context.Context, kind entity.Kind, name string) (bool, error) {
	t, err := table(kind)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, "INSERT INTO "+t+" (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
