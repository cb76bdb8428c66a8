package service

import (
	"context"
	"fmt"

	"meeting-scheduler-api/internal/model"
	"meeting-scheduler-api/internal/timerange"
)

// AddParticipant adds email to the meeting. A second add of the same address
// fails with errs.ErrDuplicateParticipant.
func (s *MeetingService) AddParticipant(ctx context.Context, meetingID, email, name string) (*model.Participant, error) {
	if _, err := s.Get(ctx, meetingID); err != nil {
		return nil, err
	}
	p, err := model.NewParticipant(meetingID, email, name, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.InsertParticipant(ctx, p); err != nil {
		return nil, fmt.Errorf("add participant to %s: %w", meetingID, err)
	}
	s.log.InfoContext(ctx, "participant added", "meeting_id", meetingID, "email", p.Email)
	return p, nil
}

func (s *MeetingService) RemoveParticipant(ctx context.Context, meetingID, email string) error {
	if _, err := s.Get(ctx, meetingID); err != nil {
		return err
	}
	email = model.NormalizeEmail(email)
	if err := s.repo.DeleteParticipant(ctx, meetingID, email); err != nil {
		return fmt.Errorf("remove participant %s from %s: %w", email, meetingID, err)
	}
	s.log.InfoContext(ctx, "participant removed", "meeting_id", meetingID, "email", email)
	return nil
}

// ParticipantMeetings lists the meetings email attends that start within r.
// An unknown address yields an empty list.
func (s *MeetingService) ParticipantMeetings(ctx context.Context, email string, r timerange.Range) ([]model.Meeting, error) {
	email = model.NormalizeEmail(email)
	ms, err := s.repo.MeetingsWithParticipant(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("meetings of %s: %w", email, err)
	}
	return timerange.Filter(ms, r), nil
}
