package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meeting-scheduler-api/internal/errs"
	"meeting-scheduler-api/internal/model"
)

const meetingColumns = "m.id, m.title, m.description, m.start_time, m.end_time, m.created_at, m.updated_at"

func (s *Store) CreateMeeting(ctx context.Context, m *model.Meeting) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO meetings (id, title, description, start_time, end_time, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.Title, m.Description, nanos(m.StartTime), nanos(m.EndTime), nanos(m.CreatedAt), nanos(m.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert meeting: %w", err)
	}
	return nil
}

func (s *Store) GetMeeting(ctx context.Context, id string) (*model.Meeting, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+meetingColumns+" FROM meetings m WHERE m.id = ?", id)
	m, err := scanMeeting(row)
	if err != nil {
		return nil, mapError(err)
	}
	if m.Participants, err = s.ParticipantsOf(ctx, id); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) ListMeetings(ctx context.Context) ([]model.Meeting, error) {
	return s.queryMeetings(ctx, "SELECT "+meetingColumns+" FROM meetings m ORDER BY m.start_time, m.id")
}

func (s *Store) UpdateMeeting(ctx context.Context, m *model.Meeting) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE meetings SET title = ?, description = ?, start_time = ?, end_time = ?, updated_at = ? WHERE id = ?",
		m.Title, m.Description, nanos(m.StartTime), nanos(m.EndTime), nanos(m.UpdatedAt), m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteMeetingCascade(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE meeting_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM meetings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) MeetingsWithParticipant(ctx context.Context, email string) ([]model.Meeting, error) {
	return s.queryMeetings(ctx,
		`SELECT `+meetingColumns+` FROM meetings m
		 WHERE EXISTS (SELECT 1 FROM participants p WHERE p.meeting_id = m.id AND p.email = ?)
		 ORDER BY m.start_time, m.id`, email)
}

func (s *Store) MeetingsOverlapping(ctx context.Context, email string, iv model.Interval, excludeID string) ([]model.Meeting, error) {
	q := `SELECT ` + meetingColumns + ` FROM meetings m
		WHERE EXISTS (SELECT 1 FROM participants p WHERE p.meeting_id = m.id AND p.email = ?)
		  AND m.start_time < ? AND m.end_time > ?`
	args := []any{email, nanos(iv.End), nanos(iv.Start)}
	if excludeID != "" {
		q += " AND m.id <> ?"
		args = append(args, excludeID)
	}
	q += " ORDER BY m.start_time, m.id"
	return s.queryMeetings(ctx, q, args...)
}

func (s *Store) queryMeetings(ctx context.Context, q string, args ...any) ([]model.Meeting, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetings: %w", err)
	}
	var out []model.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		out = append(out, *m)
	}
	// release the only connection before loading participants
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meetings: %w", err)
	}
	if err := s.attachParticipants(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row scanner) (*model.Meeting, error) {
	var (
		m                          model.Meeting
		start, end, created, updat int64
	)
	if err := row.Scan(&m.ID, &m.Title, &m.Description, &start, &end, &created, &updat); err != nil {
		return nil, err
	}
	m.StartTime = fromNanos(start)
	m.EndTime = fromNanos(end)
	m.CreatedAt = fromNanos(created)
	m.UpdatedAt = fromNanos(updat)
	return &m, nil
}

func nanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
