// Package booking decides whether a proposed reservation is admissible.
//
// The rules are independent of storage: a store passes the bookings it
// currently holds and receives either a normalized models.Booking or the
// first rule the proposal violates.
package booking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"roomBooker/internal/models"
)

const (
	DateLayout = "2006-01-02"

	MaxTeamNameLength = 50
	MaxDuration       = 120
	WindowDays        = 7
	MinutesPerDay     = 24 * 60
)

var (
	ErrMissingField     = errors.New("team name, date, start time and duration are required")
	ErrFieldTooLong     = errors.New("team name must be at most 50 characters")
	ErrOutOfWindow      = errors.New("bookings are only allowed from today up to 7 days ahead")
	ErrInvalidDuration  = errors.New("duration must be a whole number of minutes between 1 and 120")
	ErrInvalidStartTime = errors.New("start time must be in HH:MM format")
	ErrCrossesMidnight  = errors.New("booking cannot end after midnight")
	ErrConflict         = errors.New("the requested time overlaps an existing booking")
)

// Proposal is an unvalidated booking request. Duration holds the submitted
// text so that an absent value and a malformed one are reported differently.
type Proposal struct {
	TeamName  string
	Date      string
	StartTime string
	Duration  string
	Password  string
}

// IsValidation reports whether err is one of the rule violations returned by Validate.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrMissingField,
		ErrFieldTooLong,
		ErrOutOfWindow,
		ErrInvalidDuration,
		ErrInvalidStartTime,
		ErrCrossesMidnight,
		ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// ParseTime converts strict "HH:MM" into minutes since midnight.
func ParseTime(text string) (int, bool) {
	if len(text) != 5 || text[2] != ':' {
		return 0, false
	}

	for _, i := range []int{0, 1, 3, 4} {
		if text[i] < '0' || text[i] > '9' {
			return 0, false
		}
	}

	hours := int(text[0]-'0')*10 + int(text[1]-'0')
	minutes := int(text[3]-'0')*10 + int(text[4]-'0')
	if hours > 23 || minutes > 59 {
		return 0, false
	}

	return hours*60 + minutes, true
}

// FormatTime renders minutes since midnight as zero-padded "HH:MM".
// The end of the day is rendered as "24:00".
func FormatTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Window is an inclusive range of calendar days, both ends at local midnight.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(day time.Time) bool {
	return !day.Before(w.From) && !day.After(w.To)
}

// ComputeWindow returns [today, today+7] for the calendar day of now,
// in now's location.
func ComputeWindow(now time.Time) Window {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	return Window{
		From: from,
		To:   from.AddDate(0, 0, WindowDays),
	}
}

// ParseDate reads a "YYYY-MM-DD" calendar date at midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, false
	}

	return day, true
}

func WithinWindow(date string, now time.Time) bool {
	day, ok := ParseDate(date, now.Location())
	if !ok {
		return false
	}

	return ComputeWindow(now).Contains(day)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Overlaps is the half-open interval test: [s1,e1) and [s2,e2) intersect.
// Shared endpoints do not overlap.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && e1 > s2
}

// Validate checks p against the rules in a fixed order and returns the first
// violation. existing may contain bookings of any date; only those on p's
// date are considered for conflicts.
func Validate(p Proposal, existing []models.Booking, now time.Time) (models.Booking, error) {
	teamName := strings.TrimSpace(p.TeamName)
	durationText := strings.TrimSpace(p.Duration)

	if teamName == "" || isBlank(p.Date) || isBlank(p.StartTime) || durationText == "" {
		return models.Booking{}, ErrMissingField
	}

	if utf8.RuneCountInString(teamName) > MaxTeamNameLength {
		return models.Booking{}, ErrFieldTooLong
	}

	day, ok := ParseDate(p.Date, now.Location())
	if !ok || !ComputeWindow(now).Contains(day) {
		return models.Booking{}, ErrOutOfWindow
	}
	date := day.Format(DateLayout)

	duration, err := strconv.Atoi(durationText)
	if err != nil || duration <= 0 || duration > MaxDuration {
		return models.Booking{}, ErrInvalidDuration
	}

	startMinutes, ok := ParseTime(p.StartTime)
	if !ok {
		return models.Booking{}, ErrInvalidStartTime
	}

	endMinutes := startMinutes + duration
	if endMinutes > MinutesPerDay {
		return models.Booking{}, ErrCrossesMidnight
	}

	for _, b := range existing {
		if b.Date != date {
			continue
		}
		if Overlaps(startMinutes, endMinutes, b.StartMinutes, b.EndMinutes) {
			return models.Booking{}, ErrConflict
		}
	}

	return models.Booking{
		TeamName:     teamName,
		Date:         date,
		StartTime:    FormatTime(startMinutes),
		EndTime:      FormatTime(endMinutes),
		Duration:     duration,
		StartMinutes: startMinutes,
		EndMinutes:   endMinutes,
	}, nil
}
