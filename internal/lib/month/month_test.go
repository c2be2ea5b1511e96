package month

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{
			name:     "обычный месяц",
			start:    time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "конец января прижимается к концу февраля",
			start:    time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "високосный февраль",
			start:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "31 мая плюс месяц",
			start:    time.Date(2025, 5, 31, 12, 30, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2025, 6, 30, 12, 30, 0, 0, time.UTC),
		},
		{
			name:     "переход через год",
			start:    time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC),
			months:   3,
			expected: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "двенадцать месяцев",
			start:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			months:   12,
			expected: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Add(tt.start, tt.months))
		})
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, DaysIn(2024, time.February))
	assert.Equal(t, 28, DaysIn(2025, time.February))
	assert.Equal(t, 31, DaysIn(2025, time.December))
	assert.Equal(t, 30, DaysIn(2025, time.April))
}

func TestStartOfMonth(t *testing.T) {
	got := StartOfMonth(time.Date(2025, 8, 17, 15, 42, 11, 5, time.UTC))
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(time.Date(2025, 8, 17, 15, 42, 11, 5, time.UTC))
	assert.Equal(t, time.Date(2025, 8, 17, 0, 0, 0, 0, time.UTC), got)
}
