package service

import (
	"context"
	"sort"

	"meeting-scheduler-api/internal/conflict"
	"meeting-scheduler-api/internal/model"
	"meeting-scheduler-api/internal/timerange"
)

// ConflictReport lists, per participant, the meetings that overlap one
// meeting. Conflicts only holds participants with at least one overlap.
type ConflictReport struct {
	MeetingID    string
	MeetingTitle string
	HasConflicts bool
	Conflicts    map[string][]model.Meeting
}

// Emails returns the keys of Conflicts in sorted order.
func (r *ConflictReport) Emails() []string {
	out := make([]string, 0, len(r.Conflicts))
	for e := range r.Conflicts {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// CheckConflicts backs both the conflicts and check-conflicts routes as well
// as the CheckConflicts RPC.
func (s *MeetingService) CheckConflicts(ctx context.Context, meetingID string) (*ConflictReport, error) {
	m, err := s.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	found, err := s.detector.Aggregate(ctx, m)
	if err != nil {
		s.log.ErrorContext(ctx, "conflict check failed", "meeting_id", meetingID, "err", err)
		return nil, err
	}
	if s.metrics != nil {
		n := 0
		for _, list := range found {
			n += len(list)
		}
		s.metrics.ConflictsFound.Add(float64(n))
	}
	return &ConflictReport{
		MeetingID:    m.ID,
		MeetingTitle: m.Title,
		HasConflicts: len(found) > 0,
		Conflicts:    found,
	}, nil
}

// ParticipantConflicts checks each of email's meetings starting within r
// against the rest of their schedule.
func (s *MeetingService) ParticipantConflicts(ctx context.Context, email string, r timerange.Range) ([]conflict.ParticipantConflict, error) {
	ms, err := s.ParticipantMeetings(ctx, email, r)
	if err != nil {
		return nil, err
	}
	report, err := s.detector.ParticipantReport(ctx, email, ms)
	if err != nil {
		s.log.ErrorContext(ctx, "participant conflict check failed", "email", email, "err", err)
		return nil, err
	}
	return report, nil
}
