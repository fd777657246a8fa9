package model

import (
	"time"
)

// DateLayout is the calendar-date format used for partition keys.
const DateLayout = "2006-01-02"

// MaxBookingsPerDay caps the size of a day partition.
const MaxBookingsPerDay = 5

// Booking is one reservation of a calendar date.  It belongs to exactly one
// day partition and never moves between partitions: Date and CreatedAt are
// fixed at creation, only the guests can be edited.
type Booking struct {
	ID               string    `json:"id"`
	Date             string    `json:"date"`
	PrimaryBooker    Guest     `json:"primaryBooker"`
	AdditionalGuests []Guest   `json:"additionalGuests"`
	CreatedAt        time.Time `json:"createdAt"`
}

// HasPhone reports whether the primary booker or any additional guest uses
// phone.
func (b Booking) HasPhone(phone string) bool {
	if b.PrimaryBooker.PhoneNumber == phone {
		return true
	}
	for _, g := range b.AdditionalGuests {
		if g.PhoneNumber == phone {
			return true
		}
	}
	return false
}

// PartySize counts the primary booker plus additional guests.
func (b Booking) PartySize() int { return 1 + len(b.AdditionalGuests) }

// DayBookings maps a date (DateLayout) to its bookings in insertion order.
type DayBookings map[string][]Booking

// ParseDate validates s as a yyyy-MM-dd calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, invalid("date", "must be a calendar date in yyyy-MM-dd format")
	}
	return t, nil
}
