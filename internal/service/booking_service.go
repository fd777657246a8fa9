package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/day-booking/internal/logger"
	"github.com/iliyamo/day-booking/internal/metrics"
	"github.com/iliyamo/day-booking/internal/model"
	"github.com/iliyamo/day-booking/internal/queue"
	"github.com/iliyamo/day-booking/internal/repository"
)

// BookingService is the only writer of booking data.  Each mutation loads
// the full day-partition map, checks the availability rules against it,
// mutates it in memory and persists it in one write.  mu serialises those
// read-modify-write cycles because the HTTP server calls in concurrently.
type BookingService struct {
	repo    *repository.BookingRepo
	events  queue.Publisher
	metrics *metrics.Metrics
	log     logger.Logger

	now   func() time.Time
	newID func() string

	mu sync.Mutex
}

// NewBookingService wires the service.  repo is required; a nil publisher,
// metrics or logger disables that concern.
func NewBookingService(repo *repository.BookingRepo, events queue.Publisher, m *metrics.Metrics, log logger.Logger) *BookingService {
	if repo == nil {
		panic("nil repository passed to NewBookingService")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &BookingService{
		repo:    repo,
		events:  events,
		metrics: m,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Create books date for primary and the additional guests.  The date must
// have a free slot and the primary booker's phone must not already be used
// by any guest booked on that date.  Additional guests' phones are checked
// for format only, so an additional guest may reuse a phone that is already
// booked on the date and two bookings can then share a number.
func (s *BookingService) Create(ctx context.Context, date string, primary model.Guest, additional []model.Guest) (*model.Booking, error) {
	if _, err := model.ParseDate(date); err != nil {
		s.metrics.Rejected("invalid")
		return nil, err
	}
	if err := model.ValidateParty(primary, additional); err != nil {
		s.metrics.Rejected("invalid")
		return nil, err
	}

	s.mu.Lock()
	days, err := s.repo.LoadDays(ctx)
	if err != nil {
		s.mu.Unlock()
		s.metrics.StoreError("load")
		return nil, err
	}
	policy := Availability{Days: days}
	if !policy.IsDateAvailable(date) {
		s.mu.Unlock()
		s.metrics.Rejected("date_full")
		return nil, fmt.Errorf("%w: %s", ErrDateFull, date)
	}
	if !policy.IsPhoneNumberUnique(date, primary.PhoneNumber, "") {
		s.mu.Unlock()
		s.metrics.Rejected("duplicate_phone")
		return nil, fmt.Errorf("%w: %s on %s", ErrDuplicatePhone, primary.PhoneNumber, date)
	}

	b := model.Booking{
		ID:               s.newID(),
		Date:             date,
		PrimaryBooker:    primary,
		AdditionalGuests: copyGuests(additional),
		CreatedAt:        s.now().UTC(),
	}
	days[date] = append(days[date], b)
	if err := s.repo.SaveDays(ctx, days); err != nil {
		s.mu.Unlock()
		s.metrics.StoreError("save")
		return nil, fmt.Errorf("create booking: %w", err)
	}
	s.mu.Unlock()

	s.metrics.Created()
	s.log.Info("booking created", "booking_id", b.ID, "date", date, "party", b.PartySize())
	s.publish(ctx, queue.BookingCreated, b)
	return &b, nil
}

// Update replaces the guests of an existing booking.  As in Create only the
// primary booker's phone is checked for uniqueness.  The booking keeps its
// id, date and creation time; the phone check excludes the booking itself
// so an unchanged phone number is accepted.
func (s *BookingService) Update(ctx context.Context, id string, primary model.Guest, additional []model.Guest) (*model.Booking, error) {
	if err := model.ValidateParty(primary, additional); err != nil {
		s.metrics.Rejected("invalid")
		return nil, err
	}

	s.mu.Lock()
	days, err := s.repo.LoadDays(ctx)
	if err != nil {
		s.mu.Unlock()
		s.metrics.StoreError("load")
		return nil, err
	}
	date, idx, ok := locate(days, id)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	if !(Availability{Days: days}).IsPhoneNumberUnique(date, primary.PhoneNumber, id) {
		s.mu.Unlock()
		s.metrics.Rejected("duplicate_phone")
		return nil, fmt.Errorf("%w: %s on %s", ErrDuplicatePhone, primary.PhoneNumber, date)
	}

	b := days[date][idx]
	b.PrimaryBooker = primary
	b.AdditionalGuests = copyGuests(additional)
	days[date][idx] = b
	if err := s.repo.SaveDays(ctx, days); err != nil {
		s.mu.Unlock()
		s.metrics.StoreError("save")
		return nil, fmt.Errorf("update booking: %w", err)
	}
	s.mu.Unlock()

	s.metrics.Updated()
	s.log.Info("booking updated", "booking_id", id, "date", date)
	s.publish(ctx, queue.BookingUpdated, b)
	return &b, nil
}

// Delete removes a booking from its partition; the date disappears from the
// map once its last booking is gone.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	days, err := s.repo.LoadDays(ctx)
	if err != nil {
		s.mu.Unlock()
		s.metrics.StoreError("load")
		return err
	}
	date, idx, ok := locate(days, id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	removed := days[date][idx]
	list := append(days[date][:idx:idx], days[date][idx+1:]...)
	if len(list) == 0 {
		delete(days, date)
	} else {
		days[date] = list
	}
	if err := s.repo.SaveDays(ctx, days); err != nil {
		s.mu.Unlock()
		s.metrics.StoreError("save")
		return fmt.Errorf("delete booking: %w", err)
	}
	s.mu.Unlock()

	s.metrics.Deleted()
	s.log.Info("booking deleted", "booking_id", id, "date", date)
	s.publish(ctx, queue.BookingDeleted, removed)
	return nil
}

// Get returns a single booking by id.
func (s *BookingService) Get(ctx context.Context, id string) (*model.Booking, error) {
	days, err := s.repo.LoadDays(ctx)
	if err != nil {
		return nil, err
	}
	date, idx, ok := locate(days, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	b := days[date][idx]
	return &b, nil
}

// ListAll flattens every partition, ascending by date and in insertion
// order within a date.
func (s *BookingService) ListAll(ctx context.Context) ([]model.Booking, error) {
	days, err := s.repo.LoadDays(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Booking, 0)
	for _, date := range sortedDates(days) {
		out = append(out, days[date]...)
	}
	return out, nil
}

// ListRange is ListAll restricted to from <= date <= to.
func (s *BookingService) ListRange(ctx context.Context, from, to string) ([]model.Booking, error) {
	if _, err := model.ParseDate(from); err != nil {
		return nil, err
	}
	if _, err := model.ParseDate(to); err != nil {
		return nil, err
	}
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Booking, 0, len(all))
	for _, b := range all {
		// yyyy-MM-dd orders lexicographically
		if b.Date >= from && b.Date <= to {
			out = append(out, b)
		}
	}
	return out, nil
}

// ListForDate returns the bookings of one date in insertion order.
func (s *BookingService) ListForDate(ctx context.Context, date string) ([]model.Booking, error) {
	if _, err := model.ParseDate(date); err != nil {
		return nil, err
	}
	days, err := s.repo.LoadDays(ctx)
	if err != nil {
		return nil, err
	}
	return append(make([]model.Booking, 0, len(days[date])), days[date]...), nil
}

// Dates lists the dates that currently hold at least one booking.
func (s *BookingService) Dates(ctx context.Context) ([]string, error) {
	days, err := s.repo.LoadDays(ctx)
	if err != nil {
		return nil, err
	}
	return sortedDates(days), nil
}

// Availability returns the policy evaluated against the latest stored state.
func (s *BookingService) Availability(ctx context.Context) (Availability, error) {
	days, err := s.repo.LoadDays(ctx)
	if err != nil {
		return Availability{}, err
	}
	return Availability{Days: days}, nil
}

func (s *BookingService) IsDateAvailable(ctx context.Context, date string) (bool, error) {
	a, err := s.Availability(ctx)
	if err != nil {
		return false, err
	}
	return a.IsDateAvailable(date), nil
}

func (s *BookingService) IsPhoneNumberUnique(ctx context.Context, date, phone, excludeID string) (bool, error) {
	a, err := s.Availability(ctx)
	if err != nil {
		return false, err
	}
	return a.IsPhoneNumberUnique(date, phone, excludeID), nil
}

func (s *BookingService) RemainingSlots(ctx context.Context, date string) (int, error) {
	a, err := s.Availability(ctx)
	if err != nil {
		return 0, err
	}
	return a.RemainingSlots(date), nil
}

// publish sends the lifecycle event.  The mutation is already persisted, so
// a broker failure is logged and otherwise ignored.
func (s *BookingService) publish(ctx context.Context, kind string, b model.Booking) {
	ev := queue.BookingEvent{
		BookingID:     b.ID,
		Date:          b.Date,
		PrimaryBooker: b.PrimaryBooker.FullName,
		PrimaryPhone:  b.PrimaryBooker.PhoneNumber,
		PartySize:     b.PartySize(),
		OccurredAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, kind, ev); err != nil {
		s.log.Error("failed to publish booking event", "event", kind, "booking_id", b.ID, "error", err)
	}
}

// locate finds the partition and index holding id.
func locate(days model.DayBookings, id string) (string, int, bool) {
	for date, list := range days {
		for i, b := range list {
			if b.ID == id {
				return date, i, true
			}
		}
	}
	return "", -1, false
}

func sortedDates(days model.DayBookings) []string {
	dates := make([]string, 0, len(days))
	for d, list := range days {
		if len(list) > 0 {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	return dates
}

// copyGuests never returns nil so the stored JSON carries [] rather than
// null.
func copyGuests(in []model.Guest) []model.Guest {
	return append(make([]model.Guest, 0, len(in)), in...)
}
