package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"roomBooker/internal/booking"
	"roomBooker/internal/config"
	"roomBooker/internal/lib/password"
	"roomBooker/internal/models"
	"roomBooker/internal/storage"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// exclusion_violation, raised by bookings_no_overlap.
const exclusionViolation = "23P01"

type Storage struct {
	DB  *sql.DB
	now func() time.Time
}

func InitDB(dbCfg *config.Database) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.DBName,
		dbCfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return New(db, time.Now), nil
}

// New wraps an open connection. now supplies the current time for the
// booking window; nil means time.Now.
func New(db *sql.DB, now func() time.Time) *Storage {
	if now == nil {
		now = time.Now
	}

	return &Storage{DB: db, now: now}
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.UpContext(ctx, s.DB, "migrations"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

const selectColumns = `id, team_name, date, start_time, end_time, duration, start_minutes, end_minutes, password_hash, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID,
		&b.TeamName,
		&b.Date,
		&b.StartTime,
		&b.EndTime,
		&b.Duration,
		&b.StartMinutes,
		&b.EndMinutes,
		&b.PasswordHash,
		&b.CreatedAt,
	)

	return b, err
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryBookings(ctx context.Context, q querier, query string, args ...any) ([]models.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}

func (s *Storage) ListBookings(ctx context.Context) ([]models.Booking, error) {
	const op = "storage.postgres.ListBookings"

	query := `
		SELECT ` + selectColumns + `
		FROM bookings
		ORDER BY date ASC, start_minutes ASC`

	bookings, err := queryBookings(ctx, s.DB, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

func (s *Storage) bookingsOn(ctx context.Context, q querier, date string) ([]models.Booking, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM bookings
		WHERE date = $1
		ORDER BY start_minutes ASC`

	return queryBookings(ctx, q, query, date)
}

// CheckBooking validates p against the stored bookings without persisting it.
func (s *Storage) CheckBooking(ctx context.Context, p booking.Proposal) (models.Booking, error) {
	const op = "storage.postgres.CheckBooking"

	now := s.now()

	draft, err := booking.Validate(p, nil, now)
	if err != nil {
		return models.Booking{}, err
	}

	existing, err := s.bookingsOn(ctx, s.DB, draft.Date)
	if err != nil {
		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	return booking.Validate(p, existing, now)
}

// CreateBooking validates and inserts p. Inserts for the same date are
// serialized by a transaction-scoped advisory lock; bookings_no_overlap
// rejects anything that slips past it.
func (s *Storage) CreateBooking(ctx context.Context, p booking.Proposal) (models.Booking, error) {
	const op = "storage.postgres.CreateBooking"

	now := s.now()

	draft, err := booking.Validate(p, nil, now)
	if err != nil {
		return models.Booking{}, err
	}

	hash, err := password.Hash(p.Password)
	if err != nil {
		return models.Booking{}, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Booking{}, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, draft.Date); err != nil {
		return models.Booking{}, fmt.Errorf("%s: failed to lock date: %w", op, err)
	}

	existing, err := s.bookingsOn(ctx, tx, draft.Date)
	if err != nil {
		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	b, err := booking.Validate(p, existing, now)
	if err != nil {
		return models.Booking{}, err
	}

	b.ID = uuid.NewString()
	b.PasswordHash = hash
	b.CreatedAt = now.UTC()

	insertQuery := `
		INSERT INTO bookings (id, team_name, date, start_time, end_time, duration, start_minutes, end_minutes, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.ExecContext(ctx, insertQuery,
		b.ID,
		b.TeamName,
		b.Date,
		b.StartTime,
		b.EndTime,
		b.Duration,
		b.StartMinutes,
		b.EndMinutes,
		b.PasswordHash,
		b.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == exclusionViolation {
			return models.Booking{}, booking.ErrConflict
		}
		return models.Booking{}, fmt.Errorf("%s: failed to insert booking: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return models.Booking{}, fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return b, nil
}

func (s *Storage) DeleteBooking(ctx context.Context, id, plain string) error {
	const op = "storage.postgres.DeleteBooking"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	var hash string
	err = tx.QueryRowContext(ctx, `SELECT password_hash FROM bookings WHERE id = $1 FOR UPDATE`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("%s: failed to get booking: %w", op, err)
	}

	if err = password.Compare(hash, plain); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return storage.ErrUnauthorized
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: failed to delete booking: %w", op, err)
	}

	return tx.Commit()
}

func (s *Storage) DeleteAllBookings(ctx context.Context) error {
	const op = "storage.postgres.DeleteAllBookings"

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM bookings`); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PurgeBookingsBefore deletes bookings dated strictly before date
// ("YYYY-MM-DD") and reports how many were removed.
func (s *Storage) PurgeBookingsBefore(ctx context.Context, date string) (int64, error) {
	const op = "storage.postgres.PurgeBookingsBefore"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM bookings WHERE date < $1`, date)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, _ := result.RowsAffected()

	return rowsAffected, nil
}
