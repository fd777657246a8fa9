package service

import (
	"context"
	"time"

	"github.com/iliyamo/day-booking/internal/model"
)

// MonthLayout is the yyyy-MM format a calendar month is requested in.
const MonthLayout = "2006-01"

// DayAvailability is one cell of the month grid.
type DayAvailability struct {
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	Booked    int    `json:"booked"`
	Remaining int    `json:"remaining"`
	Available bool   `json:"available"`
	// Selectable is false for past dates and full dates.
	Selectable bool `json:"selectable"`
}

// CalendarService renders the monthly grid from one load of the bookings.
type CalendarService struct {
	bookings *BookingService
	now      func() time.Time
}

func NewCalendarService(bookings *BookingService) *CalendarService {
	if bookings == nil {
		panic("nil booking service passed to NewCalendarService")
	}
	return &CalendarService{bookings: bookings, now: time.Now}
}

// Month returns every day of month (yyyy-MM) with its capacity figures.
func (s *CalendarService) Month(ctx context.Context, month string) ([]DayAvailability, error) {
	first, err := time.Parse(MonthLayout, month)
	if err != nil {
		return nil, &model.ValidationError{Field: "month", Message: "must be in yyyy-MM format"}
	}
	policy, err := s.bookings.Availability(ctx)
	if err != nil {
		return nil, err
	}
	today := s.now().Format(model.DateLayout)

	out := make([]DayAvailability, 0, 31)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		date := d.Format(model.DateLayout)
		available := policy.IsDateAvailable(date)
		out = append(out, DayAvailability{
			Date:       date,
			Weekday:    d.Weekday().String()[:3],
			Booked:     len(policy.Days[date]),
			Remaining:  policy.RemainingSlots(date),
			Available:  available,
			Selectable: available && date >= today,
		})
	}
	return out, nil
}
