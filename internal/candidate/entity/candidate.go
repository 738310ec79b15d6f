package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	catalog "github.com/ovaphlow/pitchfork/service-ats/internal/catalog/entity"
)

// Kind names a sub-collection owned by a candidate.
type Kind string

const (
	Emails      Kind = "emails"
	Phones      Kind = "phones"
	Addresses   Kind = "addresses"
	Educations  Kind = "educations"
	Experiences Kind = "experiences"
)

// Kinds lists every sub-collection.
var Kinds = []Kind{Emails, Phones, Addresses, Educations, Experiences}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// IsContact reports whether k carries the primary flag.
func (k Kind) IsContact() bool {
	return k == Emails || k == Phones || k == Addresses
}

// Entity is the singular name used in not-found messages.
func (k Kind) Entity() string {
	switch k {
	case Emails:
		return "Email"
	case Phones:
		return "Phone"
	case Addresses:
		return "Address"
	case Educations:
		return "Education"
	case Experiences:
		return "Experience"
	}
	return string(k)
}

// ValueField is the JSON field holding a contact's value.
func (k Kind) ValueField() string {
	switch k {
	case Emails:
		return "email"
	case Phones:
		return "phone"
	case Addresses:
		return "address"
	}
	return "value"
}

// Catalog is the lookup catalog referenced by typeId, or "" for emails.
func (k Kind) Catalog() catalog.Kind {
	switch k {
	case Phones:
		return catalog.PhoneTypes
	case Addresses:
		return catalog.AddressTypes
	case Educations:
		return catalog.EducationTypes
	case Experiences:
		return catalog.ExperienceTypes
	}
	return ""
}

// Candidate is the aggregate root. Sub-collections are loaded separately.
type Candidate struct {
	ID            int64     `db:"id" json:"id"`
	PersonalID    string    `db:"personal_id" json:"personalId"`
	FirstName     string    `db:"first_name" json:"firstName"`
	SecondName    string    `db:"second_name" json:"secondName"`
	FirstSurname  string    `db:"first_surname" json:"firstSurname"`
	SecondSurname string    `db:"second_surname" json:"secondSurname"`
	ResumeURL     string    `db:"resume_url" json:"resumeUrl"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`

	Emails      []Contact    `db:"-" json:"emails"`
	Phones      []Contact    `db:"-" json:"phones"`
	Addresses   []Contact    `db:"-" json:"addresses"`
	Educations  []Education  `db:"-" json:"educations"`
	Experiences []Experience `db:"-" json:"experiences"`
}

// TypeRef is the catalog entry embedded in typed rows.
type TypeRef struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Contact is an email, phone or address row. Emails have no type.
type Contact struct {
	Kind        Kind   `db:"-"`
	ID          int64  `db:"id"`
	CandidateID int64  `db:"candidate_id"`
	Value       string `db:"value"`
	TypeID      *int64 `db:"type_id"`
	TypeName    string `db:"type_name"`
	IsPrimary   bool   `db:"is_primary"`
}

// MarshalJSON names the value field after the kind, e.g. {"phone": "..."}.
func (c Contact) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":          c.ID,
		"candidateId": c.CandidateID,
		"isPrimary":   c.IsPrimary,
	}
	out[c.Kind.ValueField()] = c.Value
	if c.TypeID != nil {
		out["typeId"] = *c.TypeID
		out["type"] = TypeRef{ID: *c.TypeID, Name: c.TypeName}
	}
	return json.Marshal(out)
}

// Date is a calendar date without a time component.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate truncates t to its calendar date in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	*d = NewDate(t)
	return nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) parse(s string) error {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	*d = NewDate(t)
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

type Education struct {
	ID          int64   `db:"id" json:"id"`
	CandidateID int64   `db:"candidate_id" json:"candidateId"`
	Institution string  `db:"institution" json:"institution"`
	Degree      string  `db:"degree" json:"degree"`
	StartDate   Date    `db:"start_date" json:"startDate"`
	EndDate     *Date   `db:"end_date" json:"endDate,omitempty"`
	TypeID      int64   `db:"type_id" json:"typeId"`
	Type        TypeRef `db:"type" json:"type"`
}

type Experience struct {
	ID          int64   `db:"id" json:"id"`
	CandidateID int64   `db:"candidate_id" json:"candidateId"`
	Company     string  `db:"company" json:"company"`
	Position    string  `db:"position" json:"position"`
	StartDate   Date    `db:"start_date" json:"startDate"`
	EndDate     *Date   `db:"end_date" json:"endDate,omitempty"`
	Description string  `db:"description" json:"description"`
	TypeID      int64   `db:"type_id" json:"typeId"`
	Type        TypeRef `db:"type" json:"type"`
}

// Summary is one row of the candidate list.
type Summary struct {
	ID            int64     `db:"id" json:"id"`
	EntryDate     time.Time `db:"created_at" json:"entryDate"`
	PersonalID    string    `db:"personal_id" json:"personalId"`
	FullName      string    `db:"-" json:"fullName"`
	FirstName     string    `db:"first_name" json:"firstName"`
	SecondName    string    `db:"second_name" json:"secondName"`
	FirstSurname  string    `db:"first_surname" json:"firstSurname"`
	SecondSurname string    `db:"second_surname" json:"secondSurname"`
	ResumeURL     string    `db:"resume_url" json:"resumeUrl"`
	Email         string    `db:"email" json:"email"`
	Phone         string    `db:"phone" json:"phone"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins the non-empty name parts with single spaces.
func FullName(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
