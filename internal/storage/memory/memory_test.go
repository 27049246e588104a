package memory

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"roomBooker/internal/booking"
	"roomBooker/internal/lib/password"
	"roomBooker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	password.Cost = bcrypt.MinCost
	os.Exit(m.Run())
}

func fixedClock() time.Time {
	return time.Date(2024, 1, 10, 8, 0, 0, 0, time.Local)
}

func proposal(team, date, start string, duration int) booking.Proposal {
	return booking.Proposal{
		TeamName:  team,
		Date:      date,
		StartTime: start,
		Duration:  strconv.Itoa(duration),
		Password:  "pass-" + team,
	}
}

func TestCreateAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(fixedClock)

	_, err := s.CreateBooking(ctx, proposal("c", "2024-01-15", "09:00", 30))
	require.NoError(t, err)
	_, err = s.CreateBooking(ctx, proposal("a", "2024-01-11", "14:00", 60))
	require.NoError(t, err)
	_, err = s.CreateBooking(ctx, proposal("b", "2024-01-13", "08:00", 45))
	require.NoError(t, err)
	_, err = s.CreateBooking(ctx, proposal("a2", "2024-01-11", "09:00", 60))
	require.NoError(t, err)

	list, err := s.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)

	var order []string
	for _, b := range list {
		order = append(order, b.TeamName)
	}
	assert.Equal(t, []string{"a2", "a", "b", "c"}, order)
}

func TestCreateBookingFields(t *testing.T) {
	t.Parallel()

	s := New(fixedClock)

	b, err := s.CreateBooking(context.Background(), proposal(" Infra ", "2024-01-12", "23:00", 60))
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "Infra", b.TeamName)
	assert.Equal(t, "24:00", b.EndTime)
	assert.Equal(t, 1380, b.StartMinutes)
	assert.Equal(t, 1440, b.EndMinutes)
	assert.Equal(t, fixedClock().UTC(), b.CreatedAt)
	assert.NotEqual(t, "pass- Infra ", b.PasswordHash)
	assert.NoError(t, password.Compare(b.PasswordHash, "pass- Infra "))
}

func TestCreateBookingConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(fixedClock)

	_, err := s.CreateBooking(ctx, proposal("first", "2024-01-12", "10:00", 60))
	require.NoError(t, err)

	_, err = s.CreateBooking(ctx, proposal("adjacent", "2024-01-12", "11:00", 30))
	require.NoError(t, err)

	_, err = s.CreateBooking(ctx, proposal("overlap", "2024-01-12", "10:59", 5))
	assert.ErrorIs(t, err, booking.ErrConflict)

	_, err = s.CreateBooking(ctx, proposal("late", "2024-01-18", "10:00", 30))
	assert.ErrorIs(t, err, booking.ErrOutOfWindow)

	list, err := s.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCheckBookingDoesNotPersist(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(fixedClock)

	_, err := s.CreateBooking(ctx, proposal("first", "2024-01-12", "10:00", 60))
	require.NoError(t, err)

	preview, err := s.CheckBooking(ctx, proposal("second", "2024-01-12", "11:00", 15))
	require.NoError(t, err)
	assert.Empty(t, preview.ID)
	assert.Equal(t, "11:15", preview.EndTime)

	_, err = s.CheckBooking(ctx, proposal("second", "2024-01-12", "10:30", 15))
	assert.ErrorIs(t, err, booking.ErrConflict)

	list, err := s.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDeleteBooking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(fixedClock)

	b, err := s.CreateBooking(ctx, proposal("team", "2024-01-12", "10:00", 60))
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteBooking(ctx, b.ID, "wrong"), storage.ErrUnauthorized)
	assert.ErrorIs(t, s.DeleteBooking(ctx, "missing", "pass-team"), storage.ErrNotFound)

	require.NoError(t, s.DeleteBooking(ctx, b.ID, "pass-team"))
	assert.ErrorIs(t, s.DeleteBooking(ctx, b.ID, "pass-team"), storage.ErrNotFound)

	// the freed slot can be booked again
	_, err = s.CreateBooking(ctx, proposal("other", "2024-01-12", "10:00", 60))
	assert.NoError(t, err)
}

func TestDeleteAllBookings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(fixedClock)

	for i := 0; i < 3; i++ {
		_, err := s.CreateBooking(ctx, proposal(fmt.Sprintf("t%d", i), "2024-01-12", fmt.Sprintf("%02d:00", 9+i), 60))
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteAllBookings(ctx))

	list, err := s.ListBookings(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPurgeBookingsBefore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(fixedClock)

	for _, date := range []string{"2024-01-10", "2024-01-11", "2024-01-12"} {
		_, err := s.CreateBooking(ctx, proposal("t", date, "09:00", 60))
		require.NoError(t, err)
	}

	removed, err := s.PurgeBookingsBefore(ctx, "2024-01-12")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	list, err := s.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-01-12", list[0].Date)
}

func TestConcurrentCreateNeverOverlaps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(fixedClock)

	const workers = 48

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()

			// every proposal overlaps at least one other
			start := fmt.Sprintf("%02d:%02d", 10+(i%6)/2, (i%2)*30)
			_, err := s.CreateBooking(ctx, proposal(fmt.Sprintf("w%d", i), "2024-01-12", start, 45))
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, booking.ErrConflict)
		}(i)
	}
	wg.Wait()

	list, err := s.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, list, accepted)
	assert.Less(t, accepted, workers)

	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			a, b := list[i], list[j]
			if a.Date != b.Date {
				continue
			}
			assert.False(t, booking.Overlaps(a.StartMinutes, a.EndMinutes, b.StartMinutes, b.EndMinutes),
				"%s %s-%s overlaps %s-%s", a.Date, a.StartTime, a.EndTime, b.StartTime, b.EndTime)
		}
	}
}
