// Package memory keeps bookings in process. It is used for local runs and
// tests; every write holds one mutex across check and insert.
package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"roomBooker/internal/booking"
	"roomBooker/internal/lib/password"
	"roomBooker/internal/models"
	"roomBooker/internal/storage"

	"github.com/google/uuid"
)

type Storage struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking
	now      func() time.Time
}

// New returns an empty store. now supplies the current time for the booking
// window; nil means time.Now.
func New(now func() time.Time) *Storage {
	if now == nil {
		now = time.Now
	}

	return &Storage{
		bookings: make(map[string]models.Booking),
		now:      now,
	}
}

func (s *Storage) Close() error {
	return nil
}

func (s *Storage) ListBookings(_ context.Context) ([]models.Booking, error) {
	s.mu.RLock()
	out := s.snapshot()
	s.mu.RUnlock()

	sortBookings(out)

	return out, nil
}

func sortBookings(bookings []models.Booking) {
	slices.SortFunc(bookings, func(a, b models.Booking) int {
		return cmp.Or(
			strings.Compare(a.Date, b.Date),
			cmp.Compare(a.StartMinutes, b.StartMinutes),
		)
	})
}

func (s *Storage) snapshot() []models.Booking {
	out := make([]models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}

	return out
}

func (s *Storage) CheckBooking(_ context.Context, p booking.Proposal) (models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return booking.Validate(p, s.snapshot(), s.now())
}

func (s *Storage) CreateBooking(ctx context.Context, p booking.Proposal) (models.Booking, error) {
	const op = "storage.memory.CreateBooking"

	if _, err := booking.Validate(p, nil, s.now()); err != nil {
		return models.Booking{}, err
	}

	hash, err := password.Hash(p.Password)
	if err != nil {
		return models.Booking{}, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	if err = ctx.Err(); err != nil {
		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	b, err := booking.Validate(p, s.snapshot(), now)
	if err != nil {
		return models.Booking{}, err
	}

	b.ID = uuid.NewString()
	b.PasswordHash = hash
	b.CreatedAt = now.UTC()

	s.bookings[b.ID] = b

	return b, nil
}

func (s *Storage) DeleteBooking(_ context.Context, id, plain string) error {
	const op = "storage.memory.DeleteBooking"

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return storage.ErrNotFound
	}

	if err := password.Compare(b.PasswordHash, plain); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return storage.ErrUnauthorized
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	delete(s.bookings, id)

	return nil
}

func (s *Storage) DeleteAllBookings(_ context.Context) error {
	s.mu.Lock()
	clear(s.bookings)
	s.mu.Unlock()

	return nil
}

func (s *Storage) PurgeBookingsBefore(_ context.Context, date string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, b := range s.bookings {
		if b.Date < date {
			delete(s.bookings, id)
			removed++
		}
	}

	return removed, nil
}
