package timeutil_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/repcheck/internal/timeutil"
)

func TestFromStr(t *testing.T) {
	now := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		Name  string
		Input string
		Want  time.Time
	}{
		{
			Name:  "date only",
			Input: "2026-03-01",
			Want:  time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Name:  "date and time",
			Input: "2026-03-01 14:30",
			Want:  time.Date(2026, time.March, 1, 14, 30, 0, 0, time.UTC),
		},
		{
			Name:  "surrounding space",
			Input: "  2026-03-01  ",
			Want:  time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			Name:  "relative",
			Input: "2 days ago",
			Want:  now.AddDate(0, 0, -2),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := timeutil.FromStr(tc.Input, now)
			require.NoError(t, err)

			assert.WithinDuration(t, tc.Want, got, time.Minute)
		})
	}
}

func TestFromStrInvalid(t *testing.T) {
	_, err := timeutil.FromStr("not a date at all", time.Now())
	assert.Error(t, err)
}

func TestRoundToDay(t *testing.T) {
	ts := time.Date(2026, time.October, 18, 15, 4, 5, 6, time.UTC)

	assert.Equal(t, time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC), timeutil.RoundToStart(ts))
	assert.Equal(t, time.Date(2026, time.October, 18, 23, 59, 59, 999999999, time.UTC), timeutil.RoundToEnd(ts))
	assert.True(t, timeutil.IsDateOnly(timeutil.RoundToStart(ts)))
	assert.False(t, timeutil.IsDateOnly(ts))
}

func TestHuman(t *testing.T) {
	testCases := []struct {
		Name  string
		Want  string
		Input time.Duration
	}{
		{Name: "zero", Input: 0, Want: "0 seconds"},
		{Name: "rounded to the second", Input: 17600 * time.Millisecond, Want: "18 seconds"},
		{Name: "two units", Input: 90 * time.Second, Want: "1 minute 30 seconds"},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Want, timeutil.Human(tc.Input))
		})
	}
}

func TestToKeySortsChronologically(t *testing.T) {
	base := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

	earlier := timeutil.ToKey(base)
	later := timeutil.ToKey(base.Add(500 * time.Millisecond))
	offset := timeutil.ToKey(base.In(time.FixedZone("WAT", 3600)).Add(time.Nanosecond))

	assert.Equal(t, -1, bytes.Compare(earlier, later))
	assert.Equal(t, -1, bytes.Compare(earlier, offset))
	assert.Len(t, later, len(earlier))
}
