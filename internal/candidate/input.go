package candidate

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ovaphlow/pitchfork/service-ats/internal/candidate/entity"
	"github.com/ovaphlow/pitchfork/service-ats/internal/candidate/repo"
	"github.com/ovaphlow/pitchfork/service-ats/internal/validation"
)

func init() {
	validation.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(EducationInput)
		checkPeriod(sl, in.StartDate, in.EndDate)
	}, EducationInput{})
	validation.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(ExperienceInput)
		checkPeriod(sl, in.StartDate, in.EndDate)
	}, ExperienceInput{})
}

// checkPeriod reports endDate when it precedes startDate. Malformed dates
// are left to the isodate tag.
func checkPeriod(sl validator.StructLevel, start, end string) {
	if end == "" {
		return
	}
	s, err := validation.ParseDate(start)
	if err != nil {
		return
	}
	e, err := validation.ParseDate(end)
	if err != nil {
		return
	}
	if e.Before(s) {
		sl.ReportError(end, "endDate", "EndDate", "datefrom", "startDate")
	}
}

// dates converts already validated date strings.
func dates(start, end string) (entity.Date, *entity.Date) {
	s, _ := validation.ParseDate(start)
	if end == "" {
		return entity.NewDate(s), nil
	}
	e, _ := validation.ParseDate(end)
	ed := entity.NewDate(e)
	return entity.NewDate(s), &ed
}

type EmailInput struct {
	Email     string `json:"email" validate:"required,email"`
	IsPrimary bool   `json:"isPrimary"`
}

type PhoneInput struct {
	Phone     string `json:"phone" validate:"required,phone"`
	TypeID    int64  `json:"typeId" validate:"gt=0"`
	IsPrimary bool   `json:"isPrimary"`
}

type AddressInput struct {
	Address   string `json:"address" validate:"required,min=5"`
	TypeID    int64  `json:"typeId" validate:"gt=0"`
	IsPrimary bool   `json:"isPrimary"`
}

type EducationInput struct {
	Institution string `json:"institution" validate:"min=2"`
	Degree      string `json:"degree" validate:"min=2"`
	StartDate   string `json:"startDate" validate:"required,isodate"`
	EndDate     string `json:"endDate" validate:"isodate"`
	TypeID      int64  `json:"typeId" validate:"gt=0"`
}

type ExperienceInput struct {
	Company     string `json:"company" validate:"min=2"`
	Position    string `json:"position" validate:"min=2"`
	StartDate   string `json:"startDate" validate:"required,isodate"`
	EndDate     string `json:"endDate" validate:"isodate"`
	Description string `json:"description"`
	TypeID      int64  `json:"typeId" validate:"gt=0"`
}

// EmailPatch and its siblings are partial updates of one contact row.
type EmailPatch struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	IsPrimary *bool   `json:"isPrimary"`
}

type PhonePatch struct {
	Phone     *string `json:"phone" validate:"omitempty,phone"`
	TypeID    *int64  `json:"typeId" validate:"omitempty,gt=0"`
	IsPrimary *bool   `json:"isPrimary"`
}

type AddressPatch struct {
	Address   *string `json:"address" validate:"omitempty,min=5"`
	TypeID    *int64  `json:"typeId" validate:"omitempty,gt=0"`
	IsPrimary *bool   `json:"isPrimary"`
}

// ContactInput is a new email, phone or address row.
type ContactInput interface {
	Kind() entity.Kind
	contact(candidateID int64) entity.Contact
}

// ContactPatch is a partial update of an email, phone or address row.
type ContactPatch interface {
	Kind() entity.Kind
	patch() repo.ContactPatch
	typeID() *int64
}

func (EmailInput) Kind() entity.Kind   { return entity.Emails }
func (PhoneInput) Kind() entity.Kind   { return entity.Phones }
func (AddressInput) Kind() entity.Kind { return entity.Addresses }
func (EmailPatch) Kind() entity.Kind   { return entity.Emails }
func (PhonePatch) Kind() entity.Kind   { return entity.Phones }
func (AddressPatch) Kind() entity.Kind { return entity.Addresses }

func (in EmailInput) contact(candidateID int64) entity.Contact {
	return entity.Contact{Kind: entity.Emails, CandidateID: candidateID, Value: in.Email, IsPrimary: in.IsPrimary}
}

func (in PhoneInput) contact(candidateID int64) entity.Contact {
	typeID := in.TypeID
	return entity.Contact{Kind: entity.Phones, CandidateID: candidateID, Value: in.Phone, TypeID: &typeID, IsPrimary: in.IsPrimary}
}

func (in AddressInput) contact(candidateID int64) entity.Contact {
	typeID := in.TypeID
	return entity.Contact{Kind: entity.Addresses, CandidateID: candidateID, Value: in.Address, TypeID: &typeID, IsPrimary: in.IsPrimary}
}

func (p EmailPatch) patch() repo.ContactPatch {
	return repo.ContactPatch{Value: p.Email, IsPrimary: p.IsPrimary}
}

func (p PhonePatch) patch() repo.ContactPatch {
	return repo.ContactPatch{Value: p.Phone, TypeID: p.TypeID, IsPrimary: p.IsPrimary}
}

func (p AddressPatch) patch() repo.ContactPatch {
	return repo.ContactPatch{Value: p.Address, TypeID: p.TypeID, IsPrimary: p.IsPrimary}
}

func (EmailPatch) typeID() *int64     { return nil }
func (p PhonePatch) typeID() *int64   { return p.TypeID }
func (p AddressPatch) typeID() *int64 { return p.TypeID }

// SubCollection is a full replacement array for one sub-collection kind.
type SubCollection interface {
	Kind() entity.Kind
	Len() int
	item(i int) any
	typeID(i int) int64
	primary(i int) bool
	insert(ctx context.Context, st repo.Store, candidateID int64) error
}

type (
	EmailList      []EmailInput
	PhoneList      []PhoneInput
	AddressList    []AddressInput
	EducationList  []EducationInput
	ExperienceList []ExperienceInput
)

func (EmailList) Kind() entity.Kind      { return entity.Emails }
func (PhoneList) Kind() entity.Kind      { return entity.Phones }
func (AddressList) Kind() entity.Kind    { return entity.Addresses }
func (EducationList) Kind() entity.Kind  { return entity.Educations }
func (ExperienceList) Kind() entity.Kind { return entity.Experiences }

func (l EmailList) Len() int      { return len(l) }
func (l PhoneList) Len() int      { return len(l) }
func (l AddressList) Len() int    { return len(l) }
func (l EducationList) Len() int  { return len(l) }
func (l ExperienceList) Len() int { return len(l) }

func (l EmailList) item(i int) any      { return l[i] }
func (l PhoneList) item(i int) any      { return l[i] }
func (l AddressList) item(i int) any    { return l[i] }
func (l EducationList) item(i int) any  { return l[i] }
func (l ExperienceList) item(i int) any { return l[i] }

func (EmailList) typeID(int) int64          { return 0 }
func (l PhoneList) typeID(i int) int64      { return l[i].TypeID }
func (l AddressList) typeID(i int) int64    { return l[i].TypeID }
func (l EducationList) typeID(i int) int64  { return l[i].TypeID }
func (l ExperienceList) typeID(i int) int64 { return l[i].TypeID }

func (l EmailList) primary(i int) bool   { return l[i].IsPrimary }
func (l PhoneList) primary(i int) bool   { return l[i].IsPrimary }
func (l AddressList) primary(i int) bool { return l[i].IsPrimary }
func (EducationList) primary(int) bool   { return false }
func (ExperienceList) primary(int) bool  { return false }

func insertContacts[T ContactInput](ctx context.Context, st repo.Store, candidateID int64, rows []T) error {
	for _, in := range rows {
		c := in.contact(candidateID)
		if err := st.InsertContact(ctx, &c); err != nil {
			return err
		}
	}
	return nil
}

func (l EmailList) insert(ctx context.Context, st repo.Store, candidateID int64) error {
	return insertContacts(ctx, st, candidateID, l)
}

func (l PhoneList) insert(ctx context.Context, st repo.Store, candidateID int64) error {
	return insertContacts(ctx, st, candidateID, l)
}

func (l AddressList) insert(ctx context.Context, st repo.Store, candidateID int64) error {
	return insertContacts(ctx, st, candidateID, l)
}

func (l EducationList) insert(ctx context.Context, st repo.Store, candidateID int64) error {
	for _, in := range l {
		start, end := dates(in.StartDate, in.EndDate)
		e := entity.Education{
			CandidateID: candidateID,
			Institution: in.Institution,
			Degree:      in.Degree,
			StartDate:   start,
			EndDate:     end,
			TypeID:      in.TypeID,
		}
		if err := st.InsertEducation(ctx, &e); err != nil {
			return err
		}
	}
	return nil
}

func (l ExperienceList) insert(ctx context.Context, st repo.Store, candidateID int64) error {
	for _, in := range l {
		start, end := dates(in.StartDate, in.EndDate)
		e := entity.Experience{
			CandidateID: candidateID,
			Company:     in.Company,
			Position:    in.Position,
			StartDate:   start,
			EndDate:     end,
			Description: in.Description,
			TypeID:      in.TypeID,
		}
		if err := st.InsertExperience(ctx, &e); err != nil {
			return err
		}
	}
	return nil
}

// CreateCandidateInput is the payload of a new candidate with its collections.
type CreateCandidateInput struct {
	PersonalID    string         `json:"personalId" validate:"required"`
	FirstName     string         `json:"firstName" validate:"required"`
	SecondName    string         `json:"secondName"`
	FirstSurname  string         `json:"firstSurname" validate:"required"`
	SecondSurname string         `json:"secondSurname"`
	ResumeURL     string         `json:"resumeUrl" validate:"optionalurl"`
	Emails        EmailList      `json:"emails" validate:"min=1,dive"`
	Phones        PhoneList      `json:"phones" validate:"min=1,dive"`
	Addresses     AddressList    `json:"addresses" validate:"min=1,dive"`
	Educations    EducationList  `json:"educations" validate:"omitempty,dive"`
	Experiences   ExperienceList `json:"experiences" validate:"omitempty,dive"`
}

func (in CreateCandidateInput) collections() []SubCollection {
	return []SubCollection{in.Emails, in.Phones, in.Addresses, in.Educations, in.Experiences}
}

func (in CreateCandidateInput) candidate() entity.Candidate {
	return entity.Candidate{
		PersonalID:    in.PersonalID,
		FirstName:     in.FirstName,
		SecondName:    in.SecondName,
		FirstSurname:  in.FirstSurname,
		SecondSurname: in.SecondSurname,
		ResumeURL:     in.ResumeURL,
	}
}

// UpdateCandidateInput is a partial update. Absent fields (nil) are kept; a
// present collection replaces the stored one.
type UpdateCandidateInput struct {
	PersonalID    *string        `json:"personalId" validate:"omitempty,min=1"`
	FirstName     *string        `json:"firstName" validate:"omitempty,min=1"`
	SecondName    *string        `json:"secondName"`
	FirstSurname  *string        `json:"firstSurname" validate:"omitempty,min=1"`
	SecondSurname *string        `json:"secondSurname"`
	ResumeURL     *string        `json:"resumeUrl" validate:"omitempty,optionalurl"`
	Emails        EmailList      `json:"emails" validate:"omitempty,min=1,dive"`
	Phones        PhoneList      `json:"phones" validate:"omitempty,min=1,dive"`
	Addresses     AddressList    `json:"addresses" validate:"omitempty,min=1,dive"`
	Educations    EducationList  `json:"educations" validate:"omitempty,dive"`
	Experiences   ExperienceList `json:"experiences" validate:"omitempty,dive"`
}

// collections returns the present collections. A non-nil empty slice is
// present and clears the stored rows.
func (in UpdateCandidateInput) collections() []SubCollection {
	var out []SubCollection
	if in.Emails != nil {
		out = append(out, in.Emails)
	}
	if in.Phones != nil {
		out = append(out, in.Phones)
	}
	if in.Addresses != nil {
		out = append(out, in.Addresses)
	}
	if in.Educations != nil {
		out = append(out, in.Educations)
	}
	if in.Experiences != nil {
		out = append(out, in.Experiences)
	}
	return out
}

func (in UpdateCandidateInput) patch() repo.CandidatePatch {
	return repo.CandidatePatch{
		PersonalID:    in.PersonalID,
		FirstName:     in.FirstName,
		SecondName:    in.SecondName,
		FirstSurname:  in.FirstSurname,
		SecondSurname: in.SecondSurname,
		ResumeURL:     in.ResumeURL,
	}
}

func itemPath(kind entity.Kind, i int) string {
	return fmt.Sprintf("%s[%d]", kind, i)
}
