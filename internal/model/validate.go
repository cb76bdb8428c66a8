package model

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"meeting-scheduler-api/internal/errs"
)

const (
	MaxTitleLen = 200
	MaxNameLen  = 100
)

// NewMeeting validates the input and returns a meeting ready to persist.
// Times are normalized to UTC.
func NewMeeting(title, description string, start, end time.Time, now time.Time) (*Meeting, error) {
	m := &Meeting{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(title),
		Description: description,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := ValidateMeeting(m); err != nil {
		return nil, err
	}
	return m, nil
}

func ValidateMeeting(m *Meeting) error {
	fields := map[string]string{}
	switch {
	case m.Title == "":
		fields["title"] = "Title cannot be empty"
	case utf8.RuneCountInString(m.Title) > MaxTitleLen:
		fields["title"] = "Title must be at most 200 characters"
	}
	if m.StartTime.IsZero() {
		fields["start_time"] = "This field is required"
	}
	if m.EndTime.IsZero() {
		fields["end_time"] = "This field is required"
	}
	if !m.StartTime.IsZero() && !m.EndTime.IsZero() && !m.EndTime.After(m.StartTime) {
		fields["end_time"] = "End time must be after start time"
	}
	if len(fields) > 0 {
		return &errs.ValidationError{Fields: fields}
	}
	return nil
}

// MeetingPatch holds the fields of a partial update. Nil means unchanged.
type MeetingPatch struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
}

// Apply returns a copy of m with the patch applied, re-validated against the
// merged values. m itself is never modified.
func (p MeetingPatch) Apply(m *Meeting, now time.Time) (*Meeting, error) {
	out := *m
	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.StartTime != nil {
		out.StartTime = p.StartTime.UTC()
	}
	if p.EndTime != nil {
		out.EndTime = p.EndTime.UTC()
	}
	if err := ValidateMeeting(&out); err != nil {
		return nil, err
	}
	out.UpdatedAt = now.UTC()
	return &out, nil
}

// NewParticipant normalizes email and name and validates them.
func NewParticipant(meetingID, email, name string, now time.Time) (*Participant, error) {
	p := &Participant{
		ID:        uuid.New().String(),
		MeetingID: meetingID,
		Email:     NormalizeEmail(email),
		Name:      strings.TrimSpace(name),
		CreatedAt: now.UTC(),
	}
	fields := map[string]string{}
	if p.Email == "" {
		fields["email"] = "Email address cannot be empty"
	} else if a, err := mail.ParseAddress(p.Email); err != nil || a.Address != p.Email {
		fields["email"] = "Enter a valid email address"
	}
	switch {
	case p.Name == "":
		fields["name"] = "Name cannot be empty"
	case utf8.RuneCountInString(p.Name) > MaxNameLen:
		fields["name"] = "Name must be at most 100 characters"
	}
	if len(fields) > 0 {
		return nil, &errs.ValidationError{Fields: fields}
	}
	return p, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
