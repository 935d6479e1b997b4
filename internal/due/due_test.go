package due

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		want int
	}{
		{"ten days ahead", "2025-06-20", 9},
		{"tomorrow", "2025-06-11", 0},
		{"today", "2025-06-10", 0},
		{"yesterday", "2025-06-09", -1},
		{"last month", "2025-05-10", -31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, ok, err := DaysUntil(tt.date, now)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, days)
		})
	}
}

func TestDaysUntilEmpty(t *testing.T) {
	_, ok, err := DaysUntil("", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDaysUntilMalformed(t *testing.T) {
	_, ok, err := DaysUntil("10/06/2025", time.Now())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "5 days until due", Describe(5))
	assert.Equal(t, "1 day until due", Describe(1))
	assert.Equal(t, "Due today!", Describe(0))
	assert.Equal(t, "1 day overdue", Describe(-1))
	assert.Equal(t, "3 days overdue", Describe(-3))
}
