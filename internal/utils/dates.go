package utils

import (
	"fmt"
	"strings"
	"time"

	"skyrent-backend/internal/domain"
)

// ParseDate converts a yyyy-mm-dd formatted string into a UTC calendar date
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	t, err := time.ParseInLocation(domain.DateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date format %q, expected yyyy-mm-dd", domain.ErrInvalidInput, dateStr)
	}
	return t, nil
}

// TruncateToDate drops the clock part, keeping the calendar date in UTC
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateDateRange checks that end is not before start.
// A same-day rental is allowed.
func ValidateDateRange(start, end time.Time) error {
	if TruncateToDate(end).Before(TruncateToDate(start)) {
		return fmt.Errorf("%w: %s is before %s", domain.ErrInvalidDateRange,
			end.Format(domain.DateLayout), start.Format(domain.DateLayout))
	}
	return nil
}

// RentalDays returns the number of calendar days covered, both ends included
func RentalDays(start, end time.Time) int {
	days := int(TruncateToDate(end).Sub(TruncateToDate(start)).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}
