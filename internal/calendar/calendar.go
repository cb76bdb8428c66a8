// Package calendar renders a meeting as an RFC 5545 iCalendar document.
package calendar

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	ics "github.com/arran4/golang-ical"

	"meeting-scheduler-api/internal/model"
)

const (
	ProductID   = "-//Meeting Scheduler//Meeting Scheduler API//EN"
	ContentType = "text/calendar; charset=utf-8"
)

// Attendee is one ATTENDEE property: the calendar address and its parameters.
type Attendee struct {
	Address    string
	CommonName string
	Role       ics.ParticipationRole
	RSVP       bool
}

// property renders the ATTENDEE name and parameter list. golang-ical escapes
// every parameter value with backslashes, which RFC 5545 does not allow, so
// the list is written here and the library only folds the line.
func (a Attendee) property() ics.ComponentProperty {
	var b strings.Builder
	b.WriteString(string(ics.ComponentPropertyAttendee))
	if a.CommonName != "" {
		b.WriteString(";" + string(ics.ParameterCn) + "=")
		b.WriteString(paramValue(a.CommonName))
	}
	if a.Role != "" {
		b.WriteString(";" + string(ics.ParameterRole) + "=" + string(a.Role))
	}
	b.WriteString(";" + string(ics.ParameterRsvp) + "=")
	if a.RSVP {
		b.WriteString("TRUE")
	} else {
		b.WriteString("FALSE")
	}
	return ics.ComponentProperty(b.String())
}

// paramValue quotes v when it holds ',', ';' or ':'. DQUOTE cannot appear in
// a parameter value at all and becomes a single quote; line breaks become
// spaces.
func paramValue(v string) string {
	v = strings.NewReplacer(`"`, "'", "\r\n", " ", "\n", " ", "\r", " ").Replace(v)
	if strings.ContainsAny(v, ",;:") {
		return `"` + v + `"`
	}
	return v
}

// FormatAttendees maps participants to required, RSVP-requested attendees in
// the order given.
func FormatAttendees(participants []model.Participant) []Attendee {
	out := make([]Attendee, 0, len(participants))
	for _, p := range participants {
		out = append(out, Attendee{
			Address:    "MAILTO:" + p.Email,
			CommonName: p.Name,
			Role:       ics.ParticipationRoleReqParticipant,
			RSVP:       true,
		})
	}
	return out
}

// BuildEvent creates the VEVENT for m, attendees excluded. All timestamps are
// written in UTC.
func BuildEvent(m *model.Meeting) *ics.VEvent {
	e := ics.NewEvent(m.ID)
	e.SetSummary(text(m.Title))
	if m.Description != "" {
		e.SetDescription(text(m.Description))
	}
	e.SetStartAt(m.StartTime.UTC())
	e.SetEndAt(m.EndTime.UTC())
	e.SetDtStampTime(m.CreatedAt.UTC())
	e.SetCreatedTime(m.CreatedAt.UTC())
	e.SetModifiedAt(m.UpdatedAt.UTC())
	return e
}

// text normalizes line breaks to LF; golang-ical escapes LF as \n but writes
// a bare CR through.
func text(s string) string {
	return strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(s)
}

// Generate returns the serialized calendar holding m as its only event.
func Generate(m *model.Meeting) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("generate calendar: nil meeting")
	}
	// Built by hand rather than with ics.NewCalendar to keep PRODID first.
	cal := &ics.Calendar{}
	cal.SetProductId(ProductID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)

	e := BuildEvent(m)
	for _, a := range FormatAttendees(m.Participants) {
		e.AddProperty(a.property(), a.Address)
	}
	cal.AddVEvent(e)

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf, ics.WithNewLineWindows); err != nil {
		return nil, fmt.Errorf("serialize calendar: %w", err)
	}
	return buf.Bytes(), nil
}

// SanitizeFilename derives a download name from the meeting title. Spaces
// become underscores and anything other than letters, digits, '_', '-' and
// '.' is dropped. Falls back to the meeting id.
func SanitizeFilename(m *model.Meeting) string {
	var b strings.Builder
	lastDot := false
	for _, r := range m.Title {
		switch {
		case r == ' ':
			r = '_'
		case r == '.':
			if lastDot {
				continue
			}
		case r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r):
		default:
			continue
		}
		lastDot = r == '.'
		b.WriteRune(r)
	}
	name := strings.Trim(b.String(), ".")
	if name == "" {
		name = m.ID
	}
	return name + ".ics"
}

func ContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
