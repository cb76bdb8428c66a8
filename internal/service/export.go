package service

import (
	"context"
	"fmt"

	"meeting-scheduler-api/internal/calendar"
)

type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Export renders the meeting and its attendees as an iCalendar file.
func (s *MeetingService) Export(ctx context.Context, meetingID string) (*Export, error) {
	m, err := s.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	body, err := calendar.Generate(m)
	if err != nil {
		return nil, fmt.Errorf("export meeting %s: %w", meetingID, err)
	}
	if s.metrics != nil {
		s.metrics.Exports.Inc()
	}
	s.log.InfoContext(ctx, "meeting exported", "meeting_id", m.ID, "attendees", len(m.Participants))
	return &Export{
		Filename:    calendar.SanitizeFilename(m),
		ContentType: calendar.ContentType,
		Body:        body,
	}, nil
}
