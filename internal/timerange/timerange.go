// Package timerange parses optional ISO 8601 bounds and filters meetings by
// start time.
package timerange

import (
	"sort"
	"strings"
	"time"

	"meeting-scheduler-api/internal/errs"
	"meeting-scheduler-api/internal/model"
)

// Range bounds are inclusive. A nil bound is open.
type Range struct {
	Start *time.Time
	End   *time.Time
}

func (r Range) Unbounded() bool { return r.Start == nil && r.End == nil }

// Contains reports whether t lies within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// Layouts carrying an explicit zone.
var zoned = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
}

// Zone-less layouts, read as UTC.
var naive = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts the ISO 8601 forms clients send in query strings. The
// result is in UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	// A '+' offset arrives as a space when the client forgot to escape it.
	if n := len(s); n > 6 && s[n-6] == ' ' && s[n-3] == ':' && strings.Contains(s[:n-6], ":") {
		s = s[:n-6] + "+" + s[n-5:]
	}
	for _, layout := range zoned {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range naive {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseBounds builds a Range from the raw start_date and end_date values.
// Empty strings leave the bound open.
func ParseBounds(start, end string) (Range, error) {
	var r Range
	if strings.TrimSpace(start) != "" {
		t, ok := ParseTime(start)
		if !ok {
			return Range{}, &errs.DateParseError{Bound: "start_date", Value: start}
		}
		r.Start = &t
	}
	if strings.TrimSpace(end) != "" {
		t, ok := ParseTime(end)
		if !ok {
			return Range{}, &errs.DateParseError{Bound: "end_date", Value: end}
		}
		r.End = &t
	}
	return r, nil
}

// Filter returns the meetings whose start time lies in r, sorted ascending by
// start. meetings is left untouched.
func Filter(meetings []model.Meeting, r Range) []model.Meeting {
	out := make([]model.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if r.Contains(m.StartTime) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}
