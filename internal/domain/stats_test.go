package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccountAge(t *testing.T) {
	testCases := []struct {
		name      string
		createdAt time.Time
		now       time.Time
		expected  string
	}{
		{
			name:      "plain span",
			createdAt: time.Date(2020, 3, 10, 0, 0, 0, 0, time.UTC),
			now:       time.Date(2024, 8, 25, 0, 0, 0, 0, time.UTC),
			expected:  "4 years, 5 months, 15 days",
		},
		{
			name:      "singular units",
			createdAt: time.Date(2023, 7, 24, 0, 0, 0, 0, time.UTC),
			now:       time.Date(2024, 8, 25, 0, 0, 0, 0, time.UTC),
			expected:  "1 year, 1 month, 1 day",
		},
		{
			name:      "anniversary gets a cake",
			createdAt: time.Date(2019, 8, 25, 0, 0, 0, 0, time.UTC),
			now:       time.Date(2024, 8, 25, 0, 0, 0, 0, time.UTC),
			expected:  "5 years, 0 months, 0 days 🎂",
		},
		{
			name:      "end-of-month creation date falls back to days",
			createdAt: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			now:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			expected:  "0 years, 0 months, 30 days",
		},
		{
			name:      "month borrow crosses a year boundary",
			createdAt: time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC),
			now:       time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
			expected:  "0 years, 3 months, 0 days",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AccountAge(tc.createdAt, tc.now))
		})
	}
}
