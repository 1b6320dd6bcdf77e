package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf_UsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	ts := time.Date(2025, 3, 9, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-09", DateOf(ts, time.UTC))
	assert.Equal(t, "2025-03-10", DateOf(ts, tokyo))
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("2025/03/09", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDayBounds(t *testing.T) {
	start, end, err := DayBounds("2025-03-09", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		date string
		n    int
		want string
	}{
		{"2025-01-31", 1, "2025-02-01"},
		{"2025-03-01", -1, "2025-02-28"},
		{"2024-12-04", 28, "2025-01-01"},
		{"2025-06-15", 0, "2025-06-15"},
	}
	for _, tt := range tests {
		got, err := AddDays(tt.date, tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := AddDays("not-a-date", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTransitSegment_Duration(t *testing.T) {
	start := time.Date(2025, 3, 9, 8, 15, 0, 0, time.UTC)
	seg := TransitSegment{Start: start, End: start.Add(45 * time.Minute)}
	assert.Equal(t, 45*time.Minute, seg.Duration())
}

func TestTimeAnchor_String(t *testing.T) {
	assert.Equal(t, "arrive-by", ArriveBy.String())
	assert.Equal(t, "depart-at", DepartAt.String())
	assert.Equal(t, "unknown", TimeAnchor(9).String())
}

func TestRebuildResult_AddError(t *testing.T) {
	var r RebuildResult
	r.AddError(nil)
	assert.True(t, r.OK())

	r.AddError(ErrNoRoute)
	assert.False(t, r.OK())
	assert.Equal(t, 1, r.Failures)
	assert.Equal(t, []string{"no route"}, r.Errors)
}
