package repo

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-ats/internal/candidate/entity"
)

// Store is the persistence boundary of the candidate aggregate. Lookups of a
// single row return sql.ErrNoRows when it does not exist.
type Store interface {
	// InTx runs fn against a Store bound to one transaction. Nested calls
	// reuse the outer transaction.
	InTx(ctx context.Context, fn func(Store) error) error

	// LockCandidate takes a row lock on the candidate for the rest of the
	// transaction and reports whether it exists.
	LockCandidate(ctx context.Context, id int64) (bool, error)
	CandidateExists(ctx context.Context, id int64) (bool, error)
	GetCandidate(ctx context.Context, id int64) (entity.Candidate, error)
	ListCandidates(ctx context.Context, limit, offset int) ([]entity.Summary, error)
	InsertCandidate(ctx context.Context, c *entity.Candidate) error
	UpdateCandidate(ctx context.Context, id int64, p CandidatePatch) error
	DeleteCandidate(ctx context.Context, id int64) (bool, error)

	ListContacts(ctx context.Context, kind entity.Kind, candidateID int64) ([]entity.Contact, error)
	GetContact(ctx context.Context, kind entity.Kind, id int64) (entity.Contact, error)
	InsertContact(ctx context.Context, c *entity.Contact) error
	UpdateContact(ctx context.Context, kind entity.Kind, id int64, p ContactPatch) error
	// DemoteContacts clears the primary flag on every row of kind owned by the candidate.
	DemoteContacts(ctx context.Context, kind entity.Kind, candidateID int64) error
	DeleteContact(ctx context.Context, kind entity.Kind, id int64) error

	ListEducations(ctx context.Context, candidateID int64) ([]entity.Education, error)
	InsertEducation(ctx context.Context, e *entity.Education) error
	ListExperiences(ctx context.Context, candidateID int64) ([]entity.Experience, error)
	InsertExperience(ctx context.Context, e *entity.Experience) error

	// ClearSubCollection deletes every row of kind owned by the candidate.
	ClearSubCollection(ctx context.Context, kind entity.Kind, candidateID int64) error
}

// CandidatePatch holds the scalar columns to change; nil fields are left alone.
type CandidatePatch struct {
	PersonalID    *string
	FirstName     *string
	SecondName    *string
	FirstSurname  *string
	SecondSurname *string
	ResumeURL     *string
}

// ContactPatch holds the contact columns to change; nil fields are left alone.
type ContactPatch struct {
	Value     *string
	TypeID    *int64
	IsPrimary *bool
}
