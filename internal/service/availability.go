package service

import "github.com/iliyamo/day-booking/internal/model"

// Availability evaluates the capacity and phone rules against one snapshot
// of the day partitions.  It holds no state of its own; build a new one
// from the latest load for every decision.
type Availability struct {
	Days model.DayBookings
}

// IsDateAvailable reports whether date can take one more booking.
func (a Availability) IsDateAvailable(date string) bool {
	return len(a.Days[date]) < model.MaxBookingsPerDay
}

// IsPhoneNumberUnique reports whether no booking on date, other than
// excludeID, uses phone for its primary booker or an additional guest.
// Pass an empty excludeID when creating.
func (a Availability) IsPhoneNumberUnique(date, phone, excludeID string) bool {
	for _, b := range a.Days[date] {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if b.HasPhone(phone) {
			return false
		}
	}
	return true
}

// RemainingSlots is MaxBookingsPerDay minus the bookings on date, never
// below zero.
func (a Availability) RemainingSlots(date string) int {
	n := model.MaxBookingsPerDay - len(a.Days[date])
	if n < 0 {
		return 0
	}
	return n
}
