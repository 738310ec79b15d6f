package candidate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/ovaphlow/pitchfork/service-ats/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ats/internal/candidate/entity"
	"github.com/ovaphlow/pitchfork/service-ats/internal/candidate/repo"
	catalog "github.com/ovaphlow/pitchfork/service-ats/internal/catalog/entity"
	"github.com/ovaphlow/pitchfork/service-ats/internal/validation"
)

// TypeChecker resolves catalog references.
type TypeChecker interface {
	MissingIDs(ctx context.Context, kind catalog.Kind, ids []int64) ([]int64, error)
}

// Service implements the candidate aggregate: create, fetch, partial update
// with collection replacement, and per-row contact maintenance.
type Service struct {
	store   repo.Store
	catalog TypeChecker
}

func NewService(store repo.Store, catalog TypeChecker) *Service {
	return &Service{store: store, catalog: catalog}
}

var errCandidateNotFound = apperr.NotFound("Candidate")

// Create validates in and stores the candidate with all of its rows in one
// transaction. Primary flags are stored as supplied.
func (s *Service) Create(ctx context.Context, in CreateCandidateInput) (entity.Candidate, error) {
	if err := validation.Struct(in); err != nil {
		return entity.Candidate{}, err
	}
	if err := s.checkCollections(ctx, in.collections()...); err != nil {
		return entity.Candidate{}, err
	}
	c := in.candidate()
	err := s.store.InTx(ctx, func(st repo.Store) error {
		if err := st.InsertCandidate(ctx, &c); err != nil {
			return err
		}
		for _, col := range in.collections() {
			if err := col.insert(ctx, st, c.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return entity.Candidate{}, err
	}
	return s.Get(ctx, c.ID)
}

// Get returns the candidate joined with every sub-collection.
func (s *Service) Get(ctx context.Context, id int64) (entity.Candidate, error) {
	c, err := s.store.GetCandidate(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Candidate{}, errCandidateNotFound
	}
	if err != nil {
		return entity.Candidate{}, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c.Emails, err = s.store.ListContacts(gctx, entity.Emails, id)
		return err
	})
	g.Go(func() (err error) {
		c.Phones, err = s.store.ListContacts(gctx, entity.Phones, id)
		return err
	})
	g.Go(func() (err error) {
		c.Addresses, err = s.store.ListContacts(gctx, entity.Addresses, id)
		return err
	})
	g.Go(func() (err error) {
		c.Educations, err = s.store.ListEducations(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		c.Experiences, err = s.store.ListExperiences(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return entity.Candidate{}, fmt.Errorf("load candidate %d: %w", id, err)
	}
	return c, nil
}

// List returns candidate summaries ordered by id. limit 0 returns every row.
func (s *Service) List(ctx context.Context, limit, offset int) ([]entity.Summary, error) {
	rows, err := s.store.ListCandidates(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		r := &rows[i]
		r.FullName = entity.FullName(r.FirstName, r.SecondName, r.FirstSurname, r.SecondSurname)
	}
	return rows, nil
}

// Update applies the present scalar fields and replaces every present
// collection. Replaced rows get new ids.
func (s *Service) Update(ctx context.Context, id int64, in UpdateCandidateInput) (entity.Candidate, error) {
	if err := validation.Struct(in); err != nil {
		return entity.Candidate{}, err
	}
	cols := in.collections()
	if err := s.checkCollections(ctx, cols...); err != nil {
		return entity.Candidate{}, err
	}
	err := s.store.InTx(ctx, func(st repo.Store) error {
		if err := lockCandidate(ctx, st, id); err != nil {
			return err
		}
		if err := st.UpdateCandidate(ctx, id, in.patch()); err != nil {
			return err
		}
		for _, col := range cols {
			if err := replace(ctx, st, id, col); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return entity.Candidate{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes the candidate and, through the foreign keys, its rows.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.store.DeleteCandidate(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errCandidateNotFound
	}
	return nil
}

// ReplaceSubCollection swaps every row of one kind for rows and returns the
// refreshed candidate.
func (s *Service) ReplaceSubCollection(ctx context.Context, candidateID int64, rows SubCollection) (entity.Candidate, error) {
	var fields []apperr.FieldError
	for i := 0; i < rows.Len(); i++ {
		err := validation.Struct(rows.item(i))
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			fields = append(fields, ve.Prefixed(itemPath(rows.Kind(), i))...)
		} else if err != nil {
			return entity.Candidate{}, err
		}
	}
	if rows.Kind().IsContact() && rows.Len() == 0 {
		fields = append(fields, apperr.Field(string(rows.Kind()), "must contain at least 1 item(s)"))
	}
	if len(fields) > 0 {
		return entity.Candidate{}, apperr.Validation(fields...)
	}
	if err := s.checkCollections(ctx, rows); err != nil {
		return entity.Candidate{}, err
	}
	err := s.store.InTx(ctx, func(st repo.Store) error {
		if err := lockCandidate(ctx, st, candidateID); err != nil {
			return err
		}
		return replace(ctx, st, candidateID, rows)
	})
	if err != nil {
		return entity.Candidate{}, err
	}
	return s.Get(ctx, candidateID)
}

func replace(ctx context.Context, st repo.Store, candidateID int64, rows SubCollection) error {
	if err := st.ClearSubCollection(ctx, rows.Kind(), candidateID); err != nil {
		return err
	}
	return rows.insert(ctx, st, candidateID)
}

func lockCandidate(ctx context.Context, st repo.Store, id int64) error {
	ok, err := st.LockCandidate(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errCandidateNotFound
	}
	return nil
}

// ListSubRows returns the rows of one kind: []entity.Contact for contacts,
// []entity.Education or []entity.Experience otherwise.
func (s *Service) ListSubRows(ctx context.Context, candidateID int64, kind entity.Kind) (any, error) {
	ok, err := s.store.CandidateExists(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errCandidateNotFound
	}
	switch {
	case kind.IsContact():
		return s.store.ListContacts(ctx, kind, candidateID)
	case kind == entity.Educations:
		return s.store.ListEducations(ctx, candidateID)
	case kind == entity.Experiences:
		return s.store.ListExperiences(ctx, candidateID)
	}
	return nil, fmt.Errorf("unknown sub-collection %q", kind)
}

// AddSubRow inserts one contact row. A primary row demotes its siblings
// first; both writes share a transaction holding the candidate row lock.
func (s *Service) AddSubRow(ctx context.Context, candidateID int64, in ContactInput) (entity.Contact, error) {
	if err := validation.Struct(in); err != nil {
		return entity.Contact{}, err
	}
	kind := in.Kind()
	c := in.contact(candidateID)
	if c.TypeID != nil {
		if err := s.checkType(ctx, kind, "typeId", *c.TypeID); err != nil {
			return entity.Contact{}, err
		}
	}
	var out entity.Contact
	err := s.store.InTx(ctx, func(st repo.Store) error {
		if err := lockCandidate(ctx, st, candidateID); err != nil {
			return err
		}
		if c.IsPrimary {
			if err := st.DemoteContacts(ctx, kind, candidateID); err != nil {
				return err
			}
		}
		if err := st.InsertContact(ctx, &c); err != nil {
			return err
		}
		var err error
		out, err = st.GetContact(ctx, kind, c.ID)
		return err
	})
	return out, err
}

// UpdateSubRow applies p to a contact row owned by candidateID. Setting
// isPrimary demotes the siblings in the same transaction.
func (s *Service) UpdateSubRow(ctx context.Context, candidateID, rowID int64, p ContactPatch) (entity.Contact, error) {
	if err := validation.Struct(p); err != nil {
		return entity.Contact{}, err
	}
	kind := p.Kind()
	if t := p.typeID(); t != nil {
		if err := s.checkType(ctx, kind, "typeId", *t); err != nil {
			return entity.Contact{}, err
		}
	}
	patch := p.patch()
	var out entity.Contact
	err := s.store.InTx(ctx, func(st repo.Store) error {
		if err := lockCandidate(ctx, st, candidateID); err != nil {
			return err
		}
		if err := s.owned(ctx, st, kind, candidateID, rowID); err != nil {
			return err
		}
		if patch.IsPrimary != nil && *patch.IsPrimary {
			if err := st.DemoteContacts(ctx, kind, candidateID); err != nil {
				return err
			}
		}
		if err := st.UpdateContact(ctx, kind, rowID, patch); err != nil {
			return err
		}
		var err error
		out, err = st.GetContact(ctx, kind, rowID)
		return err
	})
	return out, err
}

// DeleteSubRow removes a contact row owned by candidateID.
func (s *Service) DeleteSubRow(ctx context.Context, candidateID int64, kind entity.Kind, rowID int64) error {
	if !kind.IsContact() {
		return apperr.BadRequest(fmt.Sprintf("%s rows are replaced through the candidate update", kind))
	}
	return s.store.InTx(ctx, func(st repo.Store) error {
		if err := s.owned(ctx, st, kind, candidateID, rowID); err != nil {
			return err
		}
		return st.DeleteContact(ctx, kind, rowID)
	})
}

// owned fails with not-found unless the row exists under candidateID.
func (s *Service) owned(ctx context.Context, st repo.Store, kind entity.Kind, candidateID, rowID int64) error {
	c, err := st.GetContact(ctx, kind, rowID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && c.CandidateID != candidateID) {
		return apperr.NotFound(kind.Entity())
	}
	return err
}

// checkCollections rejects more than one primary row per collection and
// type ids missing from the catalogs.
func (s *Service) checkCollections(ctx context.Context, cols ...SubCollection) error {
	var fields []apperr.FieldError
	for _, col := range cols {
		kind := col.Kind()
		primaries := 0
		for i := 0; i < col.Len(); i++ {
			if col.primary(i) {
				primaries++
			}
		}
		if primaries > 1 {
			fields = append(fields, apperr.Field(string(kind), "at most one primary entry is allowed"))
		}
		cat := kind.Catalog()
		if cat == "" || col.Len() == 0 {
			continue
		}
		ids := make([]int64, col.Len())
		for i := range ids {
			ids[i] = col.typeID(i)
		}
		missing, err := s.catalog.MissingIDs(ctx, cat, ids)
		if err != nil {
			return err
		}
		for i, id := range ids {
			if slices.Contains(missing, id) {
				fields = append(fields, apperr.Field(itemPath(kind, i)+".typeId", unknownType(id)))
			}
		}
	}
	if len(fields) > 0 {
		return apperr.Validation(fields...)
	}
	return nil
}

func (s *Service) checkType(ctx context.Context, kind entity.Kind, path string, id int64) error {
	missing, err := s.catalog.MissingIDs(ctx, kind.Catalog(), []int64{id})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperr.Validation(apperr.Field(path, unknownType(id)))
	}
	return nil
}

func unknownType(id int64) string {
	return fmt.Sprintf("unknown type id %d", id)
}
