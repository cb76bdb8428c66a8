// Package store defines the persistence contract for meetings and participants.
// Backends live in the postgres and sqlite subpackages.
package store

import (
	"context"

	"meeting-scheduler-api/internal/model"
)

// Repository is implemented by every storage backend.
//
// Not-found conditions are reported as errs.ErrNotFound and uniqueness
// violations on (meeting, email) as errs.ErrDuplicateParticipant. Lists of
// meetings are ordered by start time.
type Repository interface {
	CreateMeeting(ctx context.Context, m *model.Meeting) error
	// GetMeeting loads the meeting together with its participants.
	GetMeeting(ctx context.Context, id string) (*model.Meeting, error)
	ListMeetings(ctx context.Context) ([]model.Meeting, error)
	UpdateMeeting(ctx context.Context, m *model.Meeting) error
	// DeleteMeetingCascade removes the meeting and its participants in one
	// transaction.
	DeleteMeetingCascade(ctx context.Context, id string) error

	ParticipantsOf(ctx context.Context, meetingID string) ([]model.Participant, error)
	MeetingsWithParticipant(ctx context.Context, email string) ([]model.Meeting, error)
	InsertParticipant(ctx context.Context, p *model.Participant) error
	DeleteParticipant(ctx context.Context, meetingID, email string) error

	Ping(ctx context.Context) error
	Close()
}

// OverlapFinder is implemented by backends that can evaluate the overlap
// predicate themselves. excludeID may be empty.
type OverlapFinder interface {
	MeetingsOverlapping(ctx context.Context, email string, iv model.Interval, excludeID string) ([]model.Meeting, error)
}
