package model

import (
	"net/mail"
	"strings"
)

// Profile is the single personal record kept alongside the bookings.  It is
// not date-scoped and takes no part in capacity rules.
type Profile struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"`
	Address     string `json:"address"`
	Bio         string `json:"bio"`
}

// Validate applies the profile form rules.
func (p Profile) Validate() error {
	if n := len(strings.TrimSpace(p.FullName)); n < 2 {
		return invalid("fullName", "must be at least 2 characters")
	}
	if len(p.FullName) > 50 {
		return invalid("fullName", "must be less than 50 characters")
	}
	if addr, err := mail.ParseAddress(p.Email); err != nil || addr.Address != p.Email {
		return invalid("email", "invalid email address")
	}
	if !ValidPhone(p.Phone) {
		return invalid("phone", "must be in format: +XX-XXXXXXXXXX")
	}
	if p.DateOfBirth != "" {
		if _, err := ParseDate(p.DateOfBirth); err != nil {
			return invalid("dateOfBirth", "must be a date in yyyy-MM-dd format")
		}
	}
	if len(strings.TrimSpace(p.Address)) < 5 {
		return invalid("address", "must be at least 5 characters")
	}
	if len(p.Bio) > 200 {
		return invalid("bio", "must be less than 200 characters")
	}
	return nil
}
