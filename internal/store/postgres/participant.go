package postgres

import (
	"context"

	"meeting-scheduler-api/internal/errs"
	"meeting-scheduler-api/internal/model"
)

const participantColumns = `id, meeting_id, email, name, created_at`

func (s *Store) ParticipantsOf(ctx context.Context, meetingID string) ([]model.Participant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE meeting_id = $1 ORDER BY created_at, seq`,
		meetingID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.MeetingID, &p.Email, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertParticipant relies on the (meeting_id, email) unique constraint, so two
// concurrent inserts of the same address cannot both succeed.
func (s *Store) InsertParticipant(ctx context.Context, p *model.Participant) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// shared lock keeps the meeting alive until commit
	var id string
	if err := tx.QueryRow(ctx, `SELECT id FROM meetings WHERE id=$1 FOR SHARE`, p.MeetingID).Scan(&id); err != nil {
		return mapPgError(err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO participants (id, meeting_id, email, name, created_at) VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.MeetingID, p.Email, p.Name, p.CreatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}
	return tx.Commit(ctx)
}

func (s *Store) DeleteParticipant(ctx context.Context, meetingID, email string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM participants WHERE meeting_id=$1 AND email=$2`, meetingID, email)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) attachParticipants(ctx context.Context, meetings []model.Meeting) error {
	if len(meetings) == 0 {
		return nil
	}
	ids := make([]string, len(meetings))
	idx := make(map[string]int, len(meetings))
	for i, m := range meetings {
		ids[i] = m.ID
		idx[m.ID] = i
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+participantColumns+` FROM participants
		 WHERE meeting_id::text = ANY($1) ORDER BY created_at, seq`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.MeetingID, &p.Email, &p.Name, &p.CreatedAt); err != nil {
			return err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		i := idx[p.MeetingID]
		meetings[i].Participants = append(meetings[i].Participants, p)
	}
	return rows.Err()
}
