package utils

import (
	"errors"
	"testing"
	"time"

	"skyrent-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("Valid date", func(t *testing.T) {
		date, err := ParseDate("2024-01-15")
		require.NoError(t, err)
		assert.Equal(t, 2024, date.Year())
		assert.Equal(t, time.January, date.Month())
		assert.Equal(t, 15, date.Day())
		assert.Equal(t, time.UTC, date.Location())
	})

	t.Run("Invalid format", func(t *testing.T) {
		_, err := ParseDate("2024/01/15")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		assert.Contains(t, err.Error(), "expected yyyy-mm-dd")
	})

	t.Run("Invalid day", func(t *testing.T) {
		_, err := ParseDate("2024-02-30")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := ParseDate("  ")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestValidateDateRange(t *testing.T) {
	start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateDateRange(start, start))
	assert.NoError(t, ValidateDateRange(start, start.AddDate(0, 0, 3)))

	err := ValidateDateRange(start, start.AddDate(0, 0, -1))
	assert.True(t, errors.Is(err, domain.ErrInvalidDateRange))
	assert.Contains(t, err.Error(), "2024-05-09")
}

func TestRentalDays(t *testing.T) {
	tests := []struct {
		start, end string
		expected   int
	}{
		{"2024-01-15", "2024-01-15", 1},
		{"2024-01-15", "2024-01-20", 6},
		{"2024-02-28", "2024-03-01", 3}, // leap year
		{"2023-12-31", "2024-01-01", 2},
	}

	for _, tt := range tests {
		t.Run(tt.start+"_"+tt.end, func(t *testing.T) {
			start, err := ParseDate(tt.start)
			require.NoError(t, err)
			end, err := ParseDate(tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, RentalDays(start, end))
		})
	}
}
