// Package timeutil provides utility functions and types for working with
// time-related operations.
package timeutil

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/hako/durafmt"
	"github.com/markusmobius/go-dateparser"
)

// keyLayout is fixed width so that keys sort chronologically.
const keyLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FromStr parses an absolute date ("2025-03-01", "2025-03-01 14:30") or a
// relative one ("yesterday", "3 days ago") against now.
func FromStr(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)

	t, err := dateparse.ParseIn(s, now.Location())
	if err == nil {
		return t, nil
	}

	dt, relErr := dateparser.Parse(&dateparser.Configuration{
		CurrentTime:     now,
		DefaultTimezone: now.Location(),
	}, s)
	if relErr != nil {
		return time.Time{}, err
	}

	return dt.Time, nil
}

// IsDateOnly reports whether t falls exactly on the start of a day, as a
// bare date like "2025-03-01" does.
func IsDateOnly(t time.Time) bool {
	return t.Equal(RoundToStart(t))
}

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		0,
		0,
		0,
		0,
		t.Location(),
	)
}

// RoundToEnd resets the given time to the end of the day.
func RoundToEnd(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		23,
		59,
		59,
		999999999,
		t.Location(),
	)
}

// Human renders d to the second with at most two units, e.g.
// "1 minute 30 seconds".
func Human(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0 seconds"
	}

	return durafmt.Parse(d).LimitFirstN(2).String()
}

// ToKey converts a time value to a database key for Bolt.
func ToKey(t time.Time) []byte {
	return []byte(t.UTC().Format(keyLayout))
}
