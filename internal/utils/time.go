package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/threethings/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// DateIn returns the calendar date of t in loc (YYYY-MM-DD).
func DateIn(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constants.DateFormat)
}

// TodayFunc returns a function reporting today's local date for the given clock.
// Business logic takes the returned function instead of calling time.Now itself.
func TodayFunc(now func() time.Time, loc *time.Location) func() string {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return func() string {
		return DateIn(now(), loc)
	}
}

// NextDate returns the calendar date following date.
func NextDate(date string) (string, error) {
	t, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.AddDate(0, 0, 1).Format(constants.DateFormat), nil
}

// ValidateDate checks that date is a YYYY-MM-DD string.
func ValidateDate(date string) bool {
	_, err := time.Parse(constants.DateFormat, date)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}
