package candidate

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/ovaphlow/pitchfork/service-ats/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ats/internal/candidate/entity"
	"github.com/ovaphlow/pitchfork/service-ats/internal/candidate/repo"
	catalog "github.com/ovaphlow/pitchfork/service-ats/internal/catalog/entity"
)

// fakeCatalog knows the type ids 1 and 2 of every catalog.
type fakeCatalog struct{}

var typeNames = map[catalog.Kind]map[int64]string{
	catalog.PhoneTypes:      {1: "Celular", 2: "Casa"},
	catalog.AddressTypes:    {1: "Casa", 2: "Trabajo"},
	catalog.EducationTypes:  {1: "Universidad", 2: "Maestría"},
	catalog.ExperienceTypes: {1: "Trabajo", 2: "Práctica"},
}

func (fakeCatalog) MissingIDs(_ context.Context, kind catalog.Kind, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if _, ok := typeNames[kind][id]; !ok && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

type fakeData struct {
	nextID      int64
	candidates  map[int64]entity.Candidate
	contacts    map[int64]entity.Contact
	educations  map[int64]entity.Education
	experiences map[int64]entity.Experience
}

func (d fakeData) clone() fakeData {
	return fakeData{
		nextID:      d.nextID,
		candidates:  maps.Clone(d.candidates),
		contacts:    maps.Clone(d.contacts),
		educations:  maps.Clone(d.educations),
		experiences: maps.Clone(d.experiences),
	}
}

// fakeStore is an in-memory repo.Store. Transactions are serialized and
// rolled back by restoring a snapshot. The primary flag carries the same
// one-per-candidate constraint as the partial unique index.
type fakeStore struct {
	tx   sync.Mutex
	mu   sync.Mutex
	data fakeData
	// failOn makes the named operation return an error.
	failOn string
}

var _ repo.Store = (*fakeStore)(nil)

var errPrimaryTaken = apperr.Conflict("Phone conflicts with an existing record")

func newFakeStore() *fakeStore {
	return &fakeStore{data: fakeData{
		candidates:  map[int64]entity.Candidate{},
		contacts:    map[int64]entity.Contact{},
		educations:  map[int64]entity.Education{},
		experiences: map[int64]entity.Experience{},
	}}
}

// fakeTx is the Store handed to InTx callbacks.
type fakeTx struct {
	*fakeStore
}

func (t fakeTx) InTx(_ context.Context, fn func(repo.Store) error) error { return fn(t) }

func (f *fakeStore) InTx(_ context.Context, fn func(repo.Store) error) error {
	f.tx.Lock()
	defer f.tx.Unlock()
	f.mu.Lock()
	snapshot := f.data.clone()
	f.mu.Unlock()
	if err := fn(fakeTx{f}); err != nil {
		f.mu.Lock()
		f.data = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStore) id() int64 {
	f.data.nextID++
	return f.data.nextID
}

func (f *fakeStore) fail(op string) error {
	if f.failOn == op {
		return errors.New(op + " failed")
	}
	return nil
}

func (f *fakeStore) LockCandidate(ctx context.Context, id int64) (bool, error) {
	return f.CandidateExists(ctx, id)
}

func (f *fakeStore) CandidateExists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data.candidates[id]
	return ok, nil
}

func (f *fakeStore) GetCandidate(_ context.Context, id int64) (entity.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.data.candidates[id]
	if !ok {
		return entity.Candidate{}, sql.ErrNoRows
	}
	return c, nil
}

func (f *fakeStore) ListCandidates(_ context.Context, limit, offset int) ([]entity.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := slices.Sorted(maps.Keys(f.data.candidates))
	out := []entity.Summary{}
	for _, id := range ids {
		c := f.data.candidates[id]
		out = append(out, entity.Summary{
			ID:            c.ID,
			EntryDate:     c.CreatedAt,
			PersonalID:    c.PersonalID,
			FirstName:     c.FirstName,
			SecondName:    c.SecondName,
			FirstSurname:  c.FirstSurname,
			SecondSurname: c.SecondSurname,
			ResumeURL:     c.ResumeURL,
			Email:         f.headline(entity.Emails, id),
			Phone:         f.headline(entity.Phones, id),
			UpdatedAt:     c.UpdatedAt,
		})
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// headline is the primary row's value, else the first row's.
func (f *fakeStore) headline(kind entity.Kind, candidateID int64) string {
	rows := f.contactsOf(kind, candidateID)
	for _, c := range rows {
		if c.IsPrimary {
			return c.Value
		}
	}
	if len(rows) > 0 {
		return rows[0].Value
	}
	return ""
}

func (f *fakeStore) InsertCandidate(_ context.Context, c *entity.Candidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.data.candidates {
		if other.PersonalID == c.PersonalID {
			return apperr.Conflict("personalId %s conflicts with an existing record", c.PersonalID)
		}
	}
	c.ID = f.id()
	c.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.UpdatedAt = c.CreatedAt
	f.data.candidates[c.ID] = *c
	return nil
}

func (f *fakeStore) UpdateCandidate(_ context.Context, id int64, p repo.CandidatePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.data.candidates[id]
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.PersonalID, p.PersonalID)
	set(&c.FirstName, p.FirstName)
	set(&c.SecondName, p.SecondName)
	set(&c.FirstSurname, p.FirstSurname)
	set(&c.SecondSurname, p.SecondSurname)
	set(&c.ResumeURL, p.ResumeURL)
	c.UpdatedAt = c.UpdatedAt.Add(time.Minute)
	f.data.candidates[id] = c
	return nil
}

func (f *fakeStore) DeleteCandidate(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data.candidates[id]; !ok {
		return false, nil
	}
	delete(f.data.candidates, id)
	maps.DeleteFunc(f.data.contacts, func(_ int64, c entity.Contact) bool { return c.CandidateID == id })
	maps.DeleteFunc(f.data.educations, func(_ int64, e entity.Education) bool { return e.CandidateID == id })
	maps.DeleteFunc(f.data.experiences, func(_ int64, e entity.Experience) bool { return e.CandidateID == id })
	return true, nil
}

func (f *fakeStore) contactsOf(kind entity.Kind, candidateID int64) []entity.Contact {
	out := []entity.Contact{}
	for _, id := range slices.Sorted(maps.Keys(f.data.contacts)) {
		c := f.data.contacts[id]
		if c.Kind == kind && c.CandidateID == candidateID {
			out = append(out, f.withType(c))
		}
	}
	return out
}

func (f *fakeStore) withType(c entity.Contact) entity.Contact {
	if c.TypeID != nil {
		c.TypeName = typeNames[c.Kind.Catalog()][*c.TypeID]
	}
	return c
}

func (f *fakeStore) ListContacts(_ context.Context, kind entity.Kind, candidateID int64) ([]entity.Contact, error) {
	if err := f.fail("ListContacts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contactsOf(kind, candidateID), nil
}

func (f *fakeStore) GetContact(_ context.Context, kind entity.Kind, id int64) (entity.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.data.contacts[id]
	if !ok || c.Kind != kind {
		return entity.Contact{}, sql.ErrNoRows
	}
	return f.withType(c), nil
}

// primaryTaken reports whether another row of the candidate's kind is primary.
func (f *fakeStore) primaryTaken(c entity.Contact) bool {
	for id, other := range f.data.contacts {
		if id != c.ID && other.Kind == c.Kind && other.CandidateID == c.CandidateID && other.IsPrimary {
			return true
		}
	}
	return false
}

func (f *fakeStore) InsertContact(_ context.Context, c *entity.Contact) error {
	if err := f.fail("InsertContact"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.IsPrimary && f.primaryTaken(*c) {
		return errPrimaryTaken
	}
	c.ID = f.id()
	f.data.contacts[c.ID] = *c
	return nil
}

func (f *fakeStore) UpdateContact(_ context.Context, kind entity.Kind, id int64, p repo.ContactPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.data.contacts[id]
	if !ok || c.Kind != kind {
		return nil
	}
	if p.Value != nil {
		c.Value = *p.Value
	}
	if p.TypeID != nil && c.TypeID != nil {
		t := *p.TypeID
		c.TypeID = &t
	}
	if p.IsPrimary != nil {
		c.IsPrimary = *p.IsPrimary
	}
	if c.IsPrimary && f.primaryTaken(c) {
		return errPrimaryTaken
	}
	f.data.contacts[id] = c
	return nil
}

func (f *fakeStore) DemoteContacts(_ context.Context, kind entity.Kind, candidateID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, c := range f.data.contacts {
		if c.Kind == kind && c.CandidateID == candidateID {
			c.IsPrimary = false
			f.data.contacts[id] = c
		}
	}
	return nil
}

func (f *fakeStore) DeleteContact(_ context.Context, _ entity.Kind, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data.contacts, id)
	return nil
}

func (f *fakeStore) ListEducations(_ context.Context, candidateID int64) ([]entity.Education, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Education{}
	for _, id := range slices.Sorted(maps.Keys(f.data.educations)) {
		if e := f.data.educations[id]; e.CandidateID == candidateID {
			e.Type = entity.TypeRef{ID: e.TypeID, Name: typeNames[catalog.EducationTypes][e.TypeID]}
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertEducation(_ context.Context, e *entity.Education) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = f.id()
	f.data.educations[e.ID] = *e
	return nil
}

func (f *fakeStore) ListExperiences(_ context.Context, candidateID int64) ([]entity.Experience, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Experience{}
	for _, id := range slices.Sorted(maps.Keys(f.data.experiences)) {
		if e := f.data.experiences[id]; e.CandidateID == candidateID {
			e.Type = entity.TypeRef{ID: e.TypeID, Name: typeNames[catalog.ExperienceTypes][e.TypeID]}
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertExperience(_ context.Context, e *entity.Experience) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = f.id()
	f.data.experiences[e.ID] = *e
	return nil
}

func (f *fakeStore) ClearSubCollection(_ context.Context, kind entity.Kind, candidateID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch kind {
	case entity.Educations:
		maps.DeleteFunc(f.data.educations, func(_ int64, e entity.Education) bool { return e.CandidateID == candidateID })
	case entity.Experiences:
		maps.DeleteFunc(f.data.experiences, func(_ int64, e entity.Experience) bool { return e.CandidateID == candidateID })
	default:
		maps.DeleteFunc(f.data.contacts, func(_ int64, c entity.Contact) bool {
			return c.Kind == kind && c.CandidateID == candidateID
		})
	}
	return nil
}

// rowCount counts stored rows owned by candidateID across every sub-collection.
func (f *fakeStore) rowCount(candidateID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.data.contacts {
		if c.CandidateID == candidateID {
			n++
		}
	}
	for _, e := range f.data.educations {
		if e.CandidateID == candidateID {
			n++
		}
	}
	for _, e := range f.data.experiences {
		if e.CandidateID == candidateID {
			n++
		}
	}
	return n
}
