package repository

import (
	"context"

	"github.com/iliyamo/day-booking/internal/model"
)

// BookingRepo reads and writes the whole day-partition map stored under
// BookingsKey.  Callers load the full map, mutate it in memory and save it
// back in one write.
type BookingRepo struct {
	store *RecordStore
}

// NewBookingRepo returns a BookingRepo bound to store.
func NewBookingRepo(store *RecordStore) *BookingRepo { return &BookingRepo{store: store} }

// LoadDays returns the current map; an absent or malformed value yields an
// empty map.
func (r *BookingRepo) LoadDays(ctx context.Context) (model.DayBookings, error) {
	days := model.DayBookings{}
	if _, err := r.store.Load(ctx, BookingsKey, &days); err != nil {
		return nil, err
	}
	if days == nil {
		// the stored value was JSON null
		days = model.DayBookings{}
	}
	return days, nil
}

// SaveDays persists days after dropping empty partitions, so a date key only
// exists while it has at least one booking.
func (r *BookingRepo) SaveDays(ctx context.Context, days model.DayBookings) error {
	for date, list := range days {
		if len(list) == 0 {
			delete(days, date)
		}
	}
	return r.store.Save(ctx, BookingsKey, days)
}
