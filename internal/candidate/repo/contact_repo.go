package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-ats/internal/candidate/entity"
)

// contactTable describes one of the three contact tables. Phones and
// addresses reference a type catalog, emails do not.
type contactTable struct {
	name      string
	column    string
	typeTable string
}

var contactTables = map[entity.Kind]contactTable{
	entity.Emails:    {name: "candidate_emails", column: "email"},
	entity.Phones:    {name: "candidate_phones", column: "phone", typeTable: "phone_types"},
	entity.Addresses: {name: "candidate_addresses", column: "address", typeTable: "address_types"},
}

func contactTableFor(kind entity.Kind) (contactTable, error) {
	t, ok := contactTables[kind]
	if !ok {
		return contactTable{}, fmt.Errorf("%q is not a contact collection", kind)
	}
	return t, nil
}

func (t contactTable) typed() bool { return t.typeTable != "" }

func (t contactTable) selectSQL(where string) string {
	if !t.typed() {
		return fmt.Sprintf(`SELECT c.id, c.candidate_id, c.%s AS value, c.is_primary FROM %s c WHERE %s ORDER BY c.id`,
			t.column, t.name, where)
	}
	return fmt.Sprintf(`SELECT c.id, c.candidate_id, c.%s AS value, c.type_id, ct.name AS type_name, c.is_primary
		FROM %s c JOIN %s ct ON ct.id = c.type_id WHERE %s ORDER BY c.id`,
		t.column, t.name, t.typeTable, where)
}

func (r *Repo) ListContacts(ctx context.Context, kind entity.Kind, candidateID int64) ([]entity.Contact, error) {
	t, err := contactTableFor(kind)
	if err != nil {
		return nil, err
	}
	out := []entity.Contact{}
	if err := sqlx.SelectContext(ctx, r.ext, &out, t.selectSQL("c.candidate_id = $1"), candidateID); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Kind = kind
	}
	return out, nil
}

// GetContact returns the row with id or sql.ErrNoRows.
func (r *Repo) GetContact(ctx context.Context, kind entity.Kind, id int64) (entity.Contact, error) {
	t, err := contactTableFor(kind)
	if err != nil {
		return entity.Contact{}, err
	}
	var c entity.Contact
	if err := sqlx.GetContext(ctx, r.ext, &c, t.selectSQL("c.id = $1"), id); err != nil {
		return entity.Contact{}, err
	}
	c.Kind = kind
	return c, nil
}

func (r *Repo) InsertContact(ctx context.Context, c *entity.Contact) error {
	t, err := contactTableFor(c.Kind)
	if err != nil {
		return err
	}
	var (
		q    string
		args []any
	)
	if t.typed() {
		q = fmt.Sprintf(`INSERT INTO %s (candidate_id, %s, type_id, is_primary) VALUES ($1, $2, $3, $4) RETURNING id`, t.name, t.column)
		args = []any{c.CandidateID, c.Value, c.TypeID, c.IsPrimary}
	} else {
		q = fmt.Sprintf(`INSERT INTO %s (candidate_id, %s, is_primary) VALUES ($1, $2, $3) RETURNING id`, t.name, t.column)
		args = []any{c.CandidateID, c.Value, c.IsPrimary}
	}
	return translate(sqlx.GetContext(ctx, r.ext, &c.ID, q, args...), c.Kind.Entity())
}

func (r *Repo) UpdateContact(ctx context.Context, kind entity.Kind, id int64, p ContactPatch) error {
	t, err := contactTableFor(kind)
	if err != nil {
		return err
	}
	var (
		sets []string
		args []any
	)
	if p.Value != nil {
		args = append(args, *p.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", t.column, len(args)))
	}
	if p.TypeID != nil && t.typed() {
		args = append(args, *p.TypeID)
		sets = append(sets, fmt.Sprintf("type_id = $%d", len(args)))
	}
	if p.IsPrimary != nil {
		args = append(args, *p.IsPrimary)
		sets = append(sets, fmt.Sprintf("is_primary = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", t.name, strings.Join(sets, ", "), len(args))
	_, err = r.ext.ExecContext(ctx, q, args...)
	return translate(err, kind.Entity())
}

func (r *Repo) DemoteContacts(ctx context.Context, kind entity.Kind, candidateID int64) error {
	t, err := contactTableFor(kind)
	if err != nil {
		return err
	}
	_, err = r.ext.ExecContext(ctx, "UPDATE "+t.name+" SET is_primary = false WHERE candidate_id = $1 AND is_primary", candidateID)
	return err
}

func (r *Repo) DeleteContact(ctx context.Context, kind entity.Kind, id int64) error {
	t, err := contactTableFor(kind)
	if err != nil {
		return err
	}
	_, err = r.ext.ExecContext(ctx, "DELETE FROM "+t.name+" WHERE id = $1", id)
	return err
}
