package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"meeting-scheduler-api/internal/errs"
	"meeting-scheduler-api/internal/model"
)

const meetingColumns = `m.id, m.title, m.description, m.start_time, m.end_time, m.created_at, m.updated_at`

func (s *Store) CreateMeeting(ctx context.Context, m *model.Meeting) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO meetings (id, title, description, start_time, end_time, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.Title, m.Description, m.StartTime, m.EndTime, m.CreatedAt, m.UpdatedAt,
	)
	return mapPgError(err)
}

func (s *Store) GetMeeting(ctx context.Context, id string) (*model.Meeting, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings m WHERE m.id = $1`, id)
	m, err := scanMeeting(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	if m.Participants, err = s.ParticipantsOf(ctx, id); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) ListMeetings(ctx context.Context) ([]model.Meeting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+meetingColumns+` FROM meetings m ORDER BY m.start_time, m.id`)
	if err != nil {
		return nil, err
	}
	out, err := collectMeetings(rows)
	if err != nil {
		return nil, err
	}
	return out, s.attachParticipants(ctx, out)
}

func (s *Store) UpdateMeeting(ctx context.Context, m *model.Meeting) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE meetings
		 SET title=$1, description=$2, start_time=$3, end_time=$4, updated_at=$5
		 WHERE id=$6`,
		m.Title, m.Description, m.StartTime, m.EndTime, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteMeetingCascade(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// lock the meeting so a concurrent participant insert waits for us
	var found string
	if err := tx.QueryRow(ctx, `SELECT id FROM meetings WHERE id=$1 FOR UPDATE`, id).Scan(&found); err != nil {
		return mapPgError(err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM participants WHERE meeting_id=$1`, id); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM meetings WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) MeetingsWithParticipant(ctx context.Context, email string) ([]model.Meeting, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+meetingColumns+`
		 FROM meetings m
		 WHERE EXISTS (SELECT 1 FROM participants p WHERE p.meeting_id = m.id AND p.email = $1)
		 ORDER BY m.start_time, m.id`, email)
	if err != nil {
		return nil, err
	}
	out, err := collectMeetings(rows)
	if err != nil {
		return nil, err
	}
	return out, s.attachParticipants(ctx, out)
}

func (s *Store) MeetingsOverlapping(ctx context.Context, email string, iv model.Interval, excludeID string) ([]model.Meeting, error) {
	q := `SELECT ` + meetingColumns + `
		FROM meetings m
		WHERE EXISTS (SELECT 1 FROM participants p WHERE p.meeting_id = m.id AND p.email = $1)
		  AND m.start_time < $3
		  AND m.end_time > $2`
	args := []any{email, iv.Start, iv.End}
	if excludeID != "" {
		q += ` AND m.id::text <> $4`
		args = append(args, excludeID)
	}
	q += ` ORDER BY m.start_time, m.id`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	out, err := collectMeetings(rows)
	if err != nil {
		return nil, err
	}
	return out, s.attachParticipants(ctx, out)
}

func scanMeeting(row pgx.Row) (*model.Meeting, error) {
	m := &model.Meeting{}
	if err := row.Scan(&m.ID, &m.Title, &m.Description, &m.StartTime, &m.EndTime, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.StartTime = m.StartTime.UTC()
	m.EndTime = m.EndTime.UTC()
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return m, nil
}

func collectMeetings(rows pgx.Rows) ([]model.Meeting, error) {
	defer rows.Close()
	var out []model.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
