// Package service orchestrates the scheduler: it validates input, talks to
// the repository and runs the conflict, range and calendar components.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"meeting-scheduler-api/internal/conflict"
	"meeting-scheduler-api/internal/metrics"
	"meeting-scheduler-api/internal/model"
	"meeting-scheduler-api/internal/store"
	"meeting-scheduler-api/internal/timerange"
)

type MeetingService struct {
	repo     store.Repository
	detector *conflict.Detector
	log      *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*MeetingService)

func WithLogger(l *slog.Logger) Option { return func(s *MeetingService) { s.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *MeetingService) { s.metrics = m } }

// WithClock replaces time.Now for created_at/updated_at stamps.
func WithClock(now func() time.Time) Option { return func(s *MeetingService) { s.now = now } }

func New(repo store.Repository, opts ...Option) *MeetingService {
	s := &MeetingService{
		repo:     repo,
		detector: conflict.New(repo),
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// MeetingInput is the payload of create and full update. Zero times are
// reported as missing fields.
type MeetingInput struct {
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
}

func (s *MeetingService) Create(ctx context.Context, in MeetingInput) (*model.Meeting, error) {
	m, err := model.NewMeeting(in.Title, in.Description, in.StartTime, in.EndTime, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateMeeting(ctx, m); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}
	m.Participants = []model.Participant{}
	s.log.InfoContext(ctx, "meeting created", "meeting_id", m.ID, "start", m.StartTime)
	return m, nil
}

func (s *MeetingService) Get(ctx context.Context, id string) (*model.Meeting, error) {
	m, err := s.repo.GetMeeting(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get meeting %s: %w", id, err)
	}
	return m, nil
}

// List returns every meeting starting within r, ascending by start.
func (s *MeetingService) List(ctx context.Context, r timerange.Range) ([]model.Meeting, error) {
	all, err := s.repo.ListMeetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return timerange.Filter(all, r), nil
}

// Update replaces title, description and times. All of title, start and end
// are required.
func (s *MeetingService) Update(ctx context.Context, id string, in MeetingInput) (*model.Meeting, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	title, desc := in.Title, in.Description
	start, end := in.StartTime, in.EndTime
	next, err := model.MeetingPatch{Title: &title, Description: &desc, StartTime: &start, EndTime: &end}.Apply(cur, s.now())
	if err != nil {
		return nil, err
	}
	return s.save(ctx, next)
}

// Patch applies a partial update, validating the merged result.
func (s *MeetingService) Patch(ctx context.Context, id string, p model.MeetingPatch) (*model.Meeting, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := p.Apply(cur, s.now())
	if err != nil {
		return nil, err
	}
	return s.save(ctx, next)
}

func (s *MeetingService) save(ctx context.Context, m *model.Meeting) (*model.Meeting, error) {
	if err := s.repo.UpdateMeeting(ctx, m); err != nil {
		return nil, fmt.Errorf("update meeting %s: %w", m.ID, err)
	}
	s.log.InfoContext(ctx, "meeting updated", "meeting_id", m.ID)
	return m, nil
}

// Delete removes the meeting and its participants.
func (s *MeetingService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteMeetingCascade(ctx, id); err != nil {
		return fmt.Errorf("delete meeting %s: %w", id, err)
	}
	s.log.InfoContext(ctx, "meeting deleted", "meeting_id", id)
	return nil
}
