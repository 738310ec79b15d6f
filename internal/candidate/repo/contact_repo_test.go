package repo

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-ats/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-ats/internal/candidate/entity"
)

func TestListContactsTyped(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT c.id, c.candidate_id, c.phone AS value, c.type_id, ct.name AS type_name, c.is_primary\s+FROM candidate_phones c JOIN phone_types ct`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "candidate_id", "value", "type_id", "type_name", "is_primary"}).
			AddRow(1, 4, "5551234567", 2, "Casa", true))

	rows, err := r.ListContacts(context.Background(), entity.Phones, 4)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, entity.Phones, rows[0].Kind)
	assert.Equal(t, int64(2), *rows[0].TypeID)
	assert.Equal(t, "Casa", rows[0].TypeName)
}

func TestGetContactEmailMissing(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT c.id, c.candidate_id, c.email AS value, c.is_primary FROM candidate_emails c WHERE c.id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "candidate_id", "value", "is_primary"}))

	_, err := r.GetContact(context.Background(), entity.Emails, 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestInsertContact(t *testing.T) {
	r, mock := newMockRepo(t)
	typeID := int64(1)
	mock.ExpectQuery(`INSERT INTO candidate_addresses \(candidate_id, address, type_id, is_primary\)`).
		WithArgs(int64(3), "123 Main St", &typeID, true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
	mock.ExpectQuery(`INSERT INTO candidate_emails \(candidate_id, email, is_primary\)`).
		WithArgs(int64(3), "a@x.com", false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(22))

	addr := entity.Contact{Kind: entity.Addresses, CandidateID: 3, Value: "123 Main St", TypeID: &typeID, IsPrimary: true}
	require.NoError(t, r.InsertContact(context.Background(), &addr))
	assert.Equal(t, int64(21), addr.ID)

	email := entity.Contact{Kind: entity.Emails, CandidateID: 3, Value: "a@x.com"}
	require.NoError(t, r.InsertContact(context.Background(), &email))
	assert.Equal(t, int64(22), email.ID)
}

func TestInsertContactSecondPrimaryIsConflict(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectQuery(`INSERT INTO candidate_emails`).WillReturnError(&pq.Error{Code: "23505"})

	err := r.InsertContact(context.Background(), &entity.Contact{Kind: entity.Emails, CandidateID: 1, Value: "a@x.com", IsPrimary: true})
	assert.Equal(t, 409, apperr.Status(err))
}

func TestUpdateContact(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE candidate_phones SET phone = \$1, is_primary = \$2 WHERE id = \$3`).
		WithArgs("5550000000", true, int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	value, primary := "5550000000", true
	require.NoError(t, r.UpdateContact(context.Background(), entity.Phones, 8, ContactPatch{Value: &value, IsPrimary: &primary}))

	// an empty patch issues no statement
	require.NoError(t, r.UpdateContact(context.Background(), entity.Phones, 8, ContactPatch{}))
}

func TestDemoteAndDeleteContact(t *testing.T) {
	r, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE candidate_addresses SET is_primary = false WHERE candidate_id = \$1 AND is_primary`).
		WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM candidate_addresses WHERE id = \$1`).
		WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.DemoteContacts(context.Background(), entity.Addresses, 2))
	require.NoError(t, r.DeleteContact(context.Background(), entity.Addresses, 5))
}

func TestContactKindGuard(t *testing.T) {
	r, _ := newMockRepo(t)
	_, err := r.ListContacts(context.Background(), entity.Educations, 1)
	assert.Error(t, err)
}
