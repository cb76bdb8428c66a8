package timerange

import (
	"errors"
	"testing"
	"time"

	"meeting-scheduler-api/internal/errs"
	"meeting-scheduler-api/internal/model"
)

var day0 = time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)

func at(days int) model.Meeting {
	start := day0.AddDate(0, 0, days)
	return model.Meeting{ID: start.Format("0102"), StartTime: start, EndTime: start.Add(time.Hour)}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-12-01T10:00:00Z", want},
		{"2025-12-01T10:00:00+00:00", want},
		{"2025-12-01T12:00:00+02:00", want},
		{"2025-12-01T10:00:00 00:00", want},
		{"2025-12-01T10:00:00.000Z", want},
		{"2025-12-01T10:00:00", want},
		{"2025-12-01 10:00:00", want},
		{"2025-12-01T10:00", want},
		{"2025-12-01 10:00", want},
		{"2025-12-01", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTime(tt.in)
			if !ok {
				t.Fatalf("ParseTime(%q) failed", tt.in)
			}
			if !got.Equal(tt.want) || got.Location() != time.UTC {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"tomorrow", "2025-13-01", "01/12/2025", "2025-12-01T25:00:00Z"} {
		if _, ok := ParseTime(bad); ok {
			t.Errorf("ParseTime(%q) should fail", bad)
		}
	}
}

func TestParseBounds(t *testing.T) {
	r, err := ParseBounds("", "")
	if err != nil || !r.Unbounded() {
		t.Fatalf("empty bounds: %+v, %v", r, err)
	}

	r, err = ParseBounds("2025-12-01", "")
	if err != nil || r.Start == nil || r.End != nil {
		t.Fatalf("start only: %+v, %v", r, err)
	}

	_, err = ParseBounds("2025-12-01", "not-a-date")
	var dpe *errs.DateParseError
	if !errors.As(err, &dpe) || dpe.Bound != "end_date" || dpe.Value != "not-a-date" {
		t.Fatalf("expected end_date parse error, got %v", err)
	}
	if !errors.Is(err, errs.ErrValidation) {
		t.Error("parse error should be a validation error")
	}

	_, err = ParseBounds("garbage", "2025-12-01")
	if !errors.As(err, &dpe) || dpe.Bound != "start_date" {
		t.Fatalf("expected start_date parse error, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	// Scenario: meetings at +1d, +5d and +10d.
	meetings := []model.Meeting{at(10), at(1), at(5)}
	snapshot := append([]model.Meeting(nil), meetings...)

	s := day0.AddDate(0, 0, 3)
	e := day0.AddDate(0, 0, 7)
	got := Filter(meetings, Range{Start: &s, End: &e})
	if len(got) != 1 || !got[0].StartTime.Equal(day0.AddDate(0, 0, 5)) {
		t.Errorf("window [+3d,+7d]: got %v", got)
	}

	got = Filter(meetings, Range{})
	if len(got) != 3 {
		t.Fatalf("unbounded filter dropped meetings: %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].StartTime.Before(got[i-1].StartTime) {
			t.Fatalf("result not sorted: %v", got)
		}
	}

	got = Filter(meetings, Range{Start: &s})
	if len(got) != 2 {
		t.Errorf("start only: got %d meetings", len(got))
	}
	got = Filter(meetings, Range{End: &e})
	if len(got) != 2 {
		t.Errorf("end only: got %d meetings", len(got))
	}

	for i := range meetings {
		if meetings[i].ID != snapshot[i].ID {
			t.Fatal("input slice was reordered")
		}
	}
}

func TestFilterBoundsAreInclusive(t *testing.T) {
	m := at(5)
	exact := m.StartTime
	if got := Filter([]model.Meeting{m}, Range{Start: &exact, End: &exact}); len(got) != 1 {
		t.Errorf("meeting starting exactly on both bounds should be kept")
	}
	after := exact.Add(time.Nanosecond)
	if got := Filter([]model.Meeting{m}, Range{Start: &after}); len(got) != 0 {
		t.Errorf("meeting starting before the start bound should be dropped")
	}
}

func TestFilterStableOnEqualStarts(t *testing.T) {
	a, b := at(2), at(2)
	a.ID, b.ID = "a", "b"
	got := Filter([]model.Meeting{b, a}, Range{})
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("equal starts should keep input order, got %s,%s", got[0].ID, got[1].ID)
	}
}
