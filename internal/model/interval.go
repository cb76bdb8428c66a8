package model

import "time"

// Interval is a half-open time span [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the spans intersect. Spans that only touch
// (one ends exactly when the other starts) do not overlap.
func (a Interval) Overlaps(b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Duration is the length of the span.
func (a Interval) Duration() time.Duration { return a.End.Sub(a.Start) }

// UTC returns the span with both ends converted to UTC.
func (a Interval) UTC() Interval {
	return Interval{Start: a.Start.UTC(), End: a.End.UTC()}
}
