package entity

// Kind names a lookup catalog. The value is also its table name.
type Kind string

const (
	PhoneTypes      Kind = "phone_types"
	AddressTypes    Kind = "address_types"
	EducationTypes  Kind = "education_types"
	ExperienceTypes Kind = "experience_types"
)

// Kinds lists every catalog in seeding order.
var Kinds = []Kind{PhoneTypes, AddressTypes, EducationTypes, ExperienceTypes}

// Valid reports whether k is a known catalog.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Type is a catalog entry.
type Type struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Seed maps each catalog to the names it should contain.
type Seed map[Kind][]string
