package model

import "regexp"

// Gender is the closed set of genders a guest may declare.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// MaxAdditionalGuests is how many people may join the primary booker.
const MaxAdditionalGuests = 4

var (
	// phonePattern accepts +CC-NNNNNNNNNN with a one to three digit country code.
	phonePattern = regexp.MustCompile(`^\+\d{1,3}-\d{10}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]*$`)
)

// Guest is a person attached to a booking.  It has no identity of its own;
// two guests are the same only if every field matches.
//
// FullName holds letters and whitespace, 2 to 50 characters.  PhoneNumber
// is +CC-NNNNNNNNNN, Age is 18 to 100 inclusive and Gender is male, female
// or other.
type Guest struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Age         int    `json:"age"`
	Gender      Gender `json:"gender"`
}

// ValidPhone reports whether s has the +CC-NNNNNNNNNN shape.
func ValidPhone(s string) bool { return phonePattern.MatchString(s) }

// Validate checks every field of the guest.  field is used as the prefix of
// the reported field path, e.g. "primaryBooker" or "additionalGuests[2]".
func (g Guest) Validate(field string) error {
	switch {
	case len(g.FullName) < 2:
		return invalid(field+".fullName", "must be at least 2 characters")
	case len(g.FullName) > 50:
		return invalid(field+".fullName", "must be less than 50 characters")
	case !namePattern.MatchString(g.FullName):
		return invalid(field+".fullName", "must contain only letters and spaces")
	}
	if !ValidPhone(g.PhoneNumber) {
		return invalid(field+".phoneNumber", "must be in format: +XX-XXXXXXXXXX")
	}
	if g.Age < 18 {
		return invalid(field+".age", "must be at least 18 years old")
	}
	if g.Age > 100 {
		return invalid(field+".age", "must be at most 100 years old")
	}
	switch g.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return invalid(field+".gender", "must be one of male, female, other")
	}
	return nil
}

// ValidateParty checks the primary booker and the additional guests that
// travel with them.
func ValidateParty(primary Guest, additional []Guest) error {
	if err := primary.Validate("primaryBooker"); err != nil {
		return err
	}
	if len(additional) > MaxAdditionalGuests {
		return invalid("additionalGuests", "maximum 4 additional guests allowed")
	}
	for i, g := range additional {
		if err := g.Validate(indexed("additionalGuests", i)); err != nil {
			return err
		}
	}
	return nil
}
