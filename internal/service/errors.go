// Package service holds the booking rules: the availability policy, the
// booking lifecycle, backup and restore of the whole store, the profile and
// the calendar view.  Every failure is returned to the caller; handlers
// match on the sentinels below with errors.Is.
package service

import "errors"

var (
	// ErrDateFull is returned when a date already holds MaxBookingsPerDay
	// bookings.
	ErrDateFull = errors.New("date is fully booked")
	// ErrDuplicatePhone is returned when the phone number is already used
	// by a booking on the same date.
	ErrDuplicatePhone = errors.New("phone number already exists for this date")
	// ErrBookingNotFound is returned when no partition holds the booking id.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrInvalidBackupFormat is returned by RestoreBackup for snapshots
	// that do not parse or miss timestamp, version or data.
	ErrInvalidBackupFormat = errors.New("invalid backup format")
)
