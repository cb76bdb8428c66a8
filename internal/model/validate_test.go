package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"meeting-scheduler-api/internal/errs"
)

func TestNewMeeting(t *testing.T) {
	now := time.Now()
	start := base
	end := base.Add(time.Hour)

	m, err := NewMeeting("  Planning  ", "", start, end, now)
	if err != nil {
		t.Fatalf("NewMeeting: %v", err)
	}
	if m.ID == "" {
		t.Error("expected generated id")
	}
	if m.Title != "Planning" {
		t.Errorf("title not trimmed: %q", m.Title)
	}

	tests := []struct {
		name  string
		title string
		start time.Time
		end   time.Time
		field string
	}{
		{"empty title", "   ", start, end, "title"},
		{"long title", strings.Repeat("x", 201), start, end, "title"},
		{"end equals start", "X", start, start, "end_time"},
		{"end before start", "X", start, start.Add(-time.Minute), "end_time"},
		{"missing start", "X", time.Time{}, end, "start_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMeeting(tt.title, "", tt.start, tt.end, now)
			var ve *errs.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := ve.Fields[tt.field]; !ok {
				t.Errorf("expected error on %s, got %v", tt.field, ve.Fields)
			}
		})
	}
}

func TestMeetingPatchUsesOldValues(t *testing.T) {
	m, err := NewMeeting("Review", "desc", base, base.Add(time.Hour), base)
	if err != nil {
		t.Fatal(err)
	}

	// moving only the start past the existing end must fail
	late := base.Add(2 * time.Hour)
	if _, err := (MeetingPatch{StartTime: &late}).Apply(m, base); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	title := "Review v2"
	later := base.Add(90 * time.Minute)
	out, err := MeetingPatch{Title: &title, EndTime: &later}.Apply(m, base.Add(time.Minute))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Title != title || !out.EndTime.Equal(later) || !out.StartTime.Equal(base) {
		t.Errorf("unexpected result %+v", out)
	}
	if out.Description != "desc" {
		t.Errorf("description should be kept, got %q", out.Description)
	}
	if m.Title != "Review" {
		t.Error("original meeting was modified")
	}
	if !out.UpdatedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("updated_at not bumped: %v", out.UpdatedAt)
	}
}

func TestNewParticipant(t *testing.T) {
	p, err := NewParticipant("m1", "  Alice@Example.COM ", " Alice ", base)
	if err != nil {
		t.Fatalf("NewParticipant: %v", err)
	}
	if p.Email != "alice@example.com" || p.Name != "Alice" {
		t.Errorf("not normalized: %+v", p)
	}

	for _, tt := range []struct{ email, name, field string }{
		{"", "A", "email"},
		{"not-an-email", "A", "email"},
		{"Bob <bob@example.com>", "A", "email"},
		{"a@example.com", "  ", "name"},
	} {
		_, err := NewParticipant("m1", tt.email, tt.name, base)
		var ve *errs.ValidationError
		if !errors.As(err, &ve) || ve.Fields[tt.field] == "" {
			t.Errorf("NewParticipant(%q, %q): expected %s error, got %v", tt.email, tt.name, tt.field, err)
		}
	}
}
