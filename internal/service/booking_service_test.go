package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iliyamo/day-booking/internal/metrics"
	"github.com/iliyamo/day-booking/internal/model"
	"github.com/iliyamo/day-booking/internal/queue"
	"github.com/iliyamo/day-booking/internal/repository"
	"github.com/iliyamo/day-booking/internal/storage"
)

// recordingPublisher captures events; err makes every publish fail.
type recordingPublisher struct {
	mu     sync.Mutex
	kinds  []string
	events []queue.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, kind string, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kinds = append(p.kinds, kind)
	p.events = append(p.events, ev)
	return p.err
}

type fixture struct {
	backend  *storage.MemoryBackend
	store    *repository.RecordStore
	bookings *BookingService
	events   *recordingPublisher
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := storage.NewMemoryBackend(0)
	store := repository.NewRecordStore(backend, nil)
	events := &recordingPublisher{}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	svc := NewBookingService(repository.NewBookingRepo(store), events, m, nil)
	seq := 0
	svc.newID = func() string { seq++; return fmt.Sprintf("id-%d", seq) }
	svc.now = func() time.Time { return time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC) }
	return &fixture{backend: backend, store: store, bookings: svc, events: events, metrics: m}
}

func guest(name, phone string) model.Guest {
	return model.Guest{FullName: name, PhoneNumber: phone, Age: 30, Gender: model.GenderOther}
}

func TestBookingScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const date = "2025-06-01"
	const phone = "+1-5551234567"

	a, err := f.bookings.Create(ctx, date, guest("Alice", phone), nil)
	if err != nil {
		t.Fatalf("create A: %v", err)
	}
	if n, _ := f.bookings.RemainingSlots(ctx, date); n != 4 {
		t.Fatalf("remaining after A = %d, want 4", n)
	}

	if _, err := f.bookings.Create(ctx, date, guest("Bob", phone), nil); !errors.Is(err, ErrDuplicatePhone) {
		t.Fatalf("create B: expected ErrDuplicatePhone, got %v", err)
	}

	for i, name := range []string{"Carol", "Dave", "Erin"} {
		if _, err := f.bookings.Create(ctx, date, guest(name, fmt.Sprintf("+1-555000000%d", i)), nil); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	if _, err := f.bookings.Create(ctx, date, guest("Frank", "+1-5550000003"), nil); err != nil {
		t.Fatalf("create fifth: %v", err)
	}
	before, _ := f.bookings.ListForDate(ctx, date)
	if _, err := f.bookings.Create(ctx, date, guest("Grace", "+1-5550000009"), nil); !errors.Is(err, ErrDateFull) {
		t.Fatalf("sixth create: expected ErrDateFull, got %v", err)
	}
	after, _ := f.bookings.ListForDate(ctx, date)
	if !reflect.DeepEqual(before, after) {
		t.Fatal("failed create changed the partition")
	}
	if ok, _ := f.bookings.IsDateAvailable(ctx, date); ok {
		t.Fatal("full date reported available")
	}

	if err := f.bookings.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete A: %v", err)
	}
	if n, _ := f.bookings.RemainingSlots(ctx, date); n != 1 {
		t.Fatalf("remaining after delete = %d, want 1", n)
	}
	if _, err := f.bookings.Create(ctx, date, guest("Alice", phone), nil); err != nil {
		t.Fatalf("re-create with freed phone: %v", err)
	}

	if got := testutil.ToFloat64(f.metrics.Rejections.WithLabelValues("date_full")); got != 1 {
		t.Fatalf("date_full rejections = %v", got)
	}
	if got := testutil.ToFloat64(f.metrics.Rejections.WithLabelValues("duplicate_phone")); got != 1 {
		t.Fatalf("duplicate_phone rejections = %v", got)
	}
}

func TestCreateAssignsIdentityAndPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b, err := f.bookings.Create(ctx, "2025-06-01", guest("Alice", "+1-5551234567"), []model.Guest{guest("Bob", "+1-5550000001")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.ID != "id-1" || !b.CreatedAt.Equal(f.bookings.now()) {
		t.Fatalf("unexpected identity: %+v", b)
	}

	// a fresh service over the same backend sees the booking
	other := NewBookingService(repository.NewBookingRepo(repository.NewRecordStore(f.backend, nil)), nil, nil, nil)
	got, err := other.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Date != b.Date || !got.CreatedAt.Equal(b.CreatedAt) || !reflect.DeepEqual(got.AdditionalGuests, b.AdditionalGuests) {
		t.Fatalf("persisted booking = %+v, want %+v", got, b)
	}
	if len(f.events.kinds) != 1 || f.events.kinds[0] != queue.BookingCreated || f.events.events[0].PartySize != 2 {
		t.Fatalf("unexpected events: %v %+v", f.events.kinds, f.events.events)
	}
}

func TestCreateRejectsMalformedInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	var ve *model.ValidationError

	if _, err := f.bookings.Create(ctx, "06/01/2025", guest("Alice", "+1-5551234567"), nil); !errors.As(err, &ve) || ve.Field != "date" {
		t.Fatalf("bad date: %v", err)
	}
	if _, err := f.bookings.Create(ctx, "2025-06-01", guest("Alice", "5551234567"), nil); !errors.As(err, &ve) || ve.Field != "primaryBooker.phoneNumber" {
		t.Fatalf("bad phone: %v", err)
	}
	young := guest("Alice", "+1-5551234567")
	young.Age = 16
	if _, err := f.bookings.Create(ctx, "2025-06-01", young, nil); !errors.As(err, &ve) || ve.Field != "primaryBooker.age" {
		t.Fatalf("bad age: %v", err)
	}
	if keys, _ := f.store.Keys(ctx); len(keys) != 0 {
		t.Fatalf("rejected input reached the store: %v", keys)
	}
}

func TestDuplicatePhoneMatchesAdditionalGuests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.bookings.Create(ctx, "2025-06-01", guest("Alice", "+1-5551234567"), []model.Guest{guest("Bob", "+1-5550000001")}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.bookings.Create(ctx, "2025-06-01", guest("Bob", "+1-5550000001"), nil); !errors.Is(err, ErrDuplicatePhone) {
		t.Fatalf("expected ErrDuplicatePhone, got %v", err)
	}
	if _, err := f.bookings.Create(ctx, "2025-06-02", guest("Bob", "+1-5550000001"), nil); err != nil {
		t.Fatalf("other date should accept the phone: %v", err)
	}
}

func TestAdditionalGuestPhoneIsNotCheckedForUniqueness(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.bookings.Create(ctx, "2025-06-01", guest("Alice", "+1-5551234567"), nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := f.bookings.Create(ctx, "2025-06-01", guest("Bob", "+1-5550000001"), []model.Guest{guest("Carl", "+1-5551234567")})
	if err != nil {
		t.Fatalf("additional guest reusing a booked phone should be accepted: %v", err)
	}
	if unique, _ := f.bookings.IsPhoneNumberUnique(ctx, "2025-06-01", "+1-5551234567", b.ID); unique {
		t.Fatal("phone still held by the first booking")
	}
}

func TestUpdateInPlace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, _ := f.bookings.Create(ctx, "2025-06-01", guest("Alice", "+1-5551234567"), nil)
	b, _ := f.bookings.Create(ctx, "2025-06-01", guest("Bob", "+1-5550000001"), nil)

	// keeping the same phone is allowed for the booking itself
	updated, err := f.bookings.Update(ctx, a.ID, guest("Alice Smith", "+1-5551234567"), []model.Guest{guest("Carl", "+1-5550000002")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != a.ID || updated.Date != a.Date || !updated.CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("identity changed: %+v vs %+v", updated, a)
	}
	if updated.PrimaryBooker.FullName != "Alice Smith" || len(updated.AdditionalGuests) != 1 {
		t.Fatalf("guests not replaced: %+v", updated)
	}

	list, _ := f.bookings.ListForDate(ctx, "2025-06-01")
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
		t.Fatalf("order changed: %+v", list)
	}

	snapshot, _ := f.store.Snapshot(ctx)
	if _, err := f.bookings.Update(ctx, b.ID, guest("Bob", "+1-5551234567"), nil); !errors.Is(err, ErrDuplicatePhone) {
		t.Fatalf("expected ErrDuplicatePhone, got %v", err)
	}
	if after, _ := f.store.Snapshot(ctx); !reflect.DeepEqual(snapshot, after) {
		t.Fatal("failed update changed the store")
	}

	if _, err := f.bookings.Update(ctx, "missing", guest("Bob", "+1-5550000001"), nil); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
	if f.events.kinds[len(f.events.kinds)-1] != queue.BookingUpdated {
		t.Fatalf("last event = %s", f.events.kinds[len(f.events.kinds)-1])
	}
}

func TestDeleteRemovesEmptyPartition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, _ := f.bookings.Create(ctx, "2025-06-01", guest("Alice", "+1-5551234567"), nil)
	_, _ = f.bookings.Create(ctx, "2025-06-02", guest("Bob", "+1-5550000001"), nil)

	if err := f.bookings.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	dates, _ := f.bookings.Dates(ctx)
	if !reflect.DeepEqual(dates, []string{"2025-06-02"}) {
		t.Fatalf("Dates = %v", dates)
	}
	raw, _, _ := f.backend.Get(ctx, repository.BookingsKey)
	if strings.Contains(raw, `"2025-06-01"`) {
		t.Fatalf("empty partition still stored: %s", raw)
	}
	list, _ := f.bookings.ListForDate(ctx, "2025-06-01")
	if len(list) != 0 {
		t.Fatalf("deleted booking still listed: %+v", list)
	}
	if err := f.bookings.Delete(ctx, a.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("second delete: expected ErrBookingNotFound, got %v", err)
	}
}

func TestListAllOrdersByDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _ = f.bookings.Create(ctx, "2025-07-01", guest("Late", "+1-5550000001"), nil)
	_, _ = f.bookings.Create(ctx, "2025-06-01", guest("Early", "+1-5550000002"), nil)
	_, _ = f.bookings.Create(ctx, "2025-06-01", guest("Second", "+1-5550000003"), nil)

	first, err := f.bookings.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	var names []string
	for _, b := range first {
		names = append(names, b.PrimaryBooker.FullName)
	}
	if want := []string{"Early", "Second", "Late"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("order = %v, want %v", names, want)
	}
	second, _ := f.bookings.ListAll(ctx)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("ListAll is not stable without mutation")
	}

	june, err := f.bookings.ListRange(ctx, "2025-06-01", "2025-06-30")
	if err != nil || len(june) != 2 {
		t.Fatalf("ListRange = %v err=%v", june, err)
	}
	if _, err := f.bookings.ListRange(ctx, "june", "2025-06-30"); err == nil {
		t.Fatal("expected validation error for bad range")
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.events.err = errors.New("broker down")
	if _, err := f.bookings.Create(ctx, "2025-06-01", guest("Alice", "+1-5551234567"), nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n, _ := f.bookings.RemainingSlots(ctx, "2025-06-01"); n != 4 {
		t.Fatalf("booking not persisted, remaining = %d", n)
	}
}

func TestCreateSurfacesPersistenceError(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend(64)
	svc := NewBookingService(repository.NewBookingRepo(repository.NewRecordStore(backend, nil)), nil, nil, nil)
	_, err := svc.Create(ctx, "2025-06-01", guest("Alice", "+1-5551234567"), nil)
	if !errors.Is(err, repository.ErrPersistence) || !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Fatalf("expected quota PersistenceError, got %v", err)
	}
	if dates, _ := svc.Dates(ctx); len(dates) != 0 {
		t.Fatalf("rejected write visible: %v", dates)
	}
}

func TestConcurrentCreatesRespectCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	seq := 0
	var seqMu sync.Mutex
	f.bookings.newID = func() string {
		seqMu.Lock()
		defer seqMu.Unlock()
		seq++
		return fmt.Sprintf("c-%d", seq)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = f.bookings.Create(ctx, "2025-06-01", guest("Guest", fmt.Sprintf("+1-55500000%02d", i)), nil)
		}(i)
	}
	wg.Wait()
	list, _ := f.bookings.ListForDate(ctx, "2025-06-01")
	if len(list) != model.MaxBookingsPerDay {
		t.Fatalf("partition size = %d, want %d", len(list), model.MaxBookingsPerDay)
	}
}
