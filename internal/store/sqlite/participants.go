package sqlite

import (
	"context"
	"fmt"
	"slices"

	"meeting-scheduler-api/internal/errs"
	"meeting-scheduler-api/internal/model"
)

func (s *Store) ParticipantsOf(ctx context.Context, meetingID string) ([]model.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, meeting_id, email, name, created_at FROM participants WHERE meeting_id = ? ORDER BY created_at, rowid",
		meetingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var out []model.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return out, nil
}

// InsertParticipant is atomic: the UNIQUE (meeting_id, email) constraint
// rejects a second insert of the same address.
func (s *Store) InsertParticipant(ctx context.Context, p *model.Participant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM meetings WHERE id = ?", p.MeetingID).Scan(&exists); err != nil {
		return mapError(err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO participants (id, meeting_id, email, name, created_at) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.MeetingID, p.Email, p.Name, nanos(p.CreatedAt),
	)
	if err != nil {
		return mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) DeleteParticipant(ctx context.Context, meetingID, email string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM participants WHERE meeting_id = ? AND email = ?", meetingID, email)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// participantBatch keeps IN lists well under SQLite's bound variable limit.
const participantBatch = 500

func (s *Store) attachParticipants(ctx context.Context, meetings []model.Meeting) error {
	idx := make(map[string]int, len(meetings))
	ids := make([]any, len(meetings))
	for i, m := range meetings {
		ids[i] = m.ID
		idx[m.ID] = i
	}
	for batch := range slices.Chunk(ids, participantBatch) {
		if err := s.loadParticipants(ctx, batch, func(p model.Participant) {
			i := idx[p.MeetingID]
			meetings[i].Participants = append(meetings[i].Participants, p)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadParticipants(ctx context.Context, meetingIDs []any, add func(model.Participant)) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, meeting_id, email, name, created_at FROM participants WHERE meeting_id IN ("+placeholders(len(meetingIDs))+") ORDER BY created_at, rowid",
		meetingIDs...,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return err
		}
		add(p)
	}
	return rows.Err()
}

func scanParticipant(row scanner) (model.Participant, error) {
	var (
		p       model.Participant
		created int64
	)
	if err := row.Scan(&p.ID, &p.MeetingID, &p.Email, &p.Name, &created); err != nil {
		return p, fmt.Errorf("failed to scan participant: %w", err)
	}
	p.CreatedAt = fromNanos(created)
	return p, nil
}
