package handler

import (
	"time"

	"meeting-scheduler-api/internal/conflict"
	"meeting-scheduler-api/internal/model"
	"meeting-scheduler-api/internal/service"
)

type participantJSON struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type meetingJSON struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      time.Time         `json:"end_time"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Participants []participantJSON `json:"participants"`
}

// conflictJSON is the short form used inside conflict reports.
type conflictJSON struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

type conflictReportJSON struct {
	MeetingID    string                    `json:"meeting_id"`
	MeetingTitle string                    `json:"meeting_title"`
	HasConflicts bool                      `json:"has_conflicts"`
	Conflicts    map[string][]conflictJSON `json:"conflicts"`
}

type participantConflictJSON struct {
	Meeting         meetingJSON   `json:"meeting"`
	ConflictingWith []meetingJSON `json:"conflicting_with"`
}

type participantReportJSON struct {
	ParticipantEmail string                    `json:"participant_email"`
	HasConflicts     bool                      `json:"has_conflicts"`
	Conflicts        []participantConflictJSON `json:"conflicts"`
}

func toParticipantJSON(p model.Participant) participantJSON {
	return participantJSON{ID: p.ID, Email: p.Email, Name: p.Name, CreatedAt: p.CreatedAt.UTC()}
}

func toMeetingJSON(m *model.Meeting) meetingJSON {
	ps := make([]participantJSON, len(m.Participants))
	for i, p := range m.Participants {
		ps[i] = toParticipantJSON(p)
	}
	return meetingJSON{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		StartTime:    m.StartTime.UTC(),
		EndTime:      m.EndTime.UTC(),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
		Participants: ps,
	}
}

func toMeetingList(ms []model.Meeting) []meetingJSON {
	out := make([]meetingJSON, len(ms))
	for i := range ms {
		out[i] = toMeetingJSON(&ms[i])
	}
	return out
}

func toConflictReportJSON(r *service.ConflictReport) conflictReportJSON {
	out := conflictReportJSON{
		MeetingID:    r.MeetingID,
		MeetingTitle: r.MeetingTitle,
		HasConflicts: r.HasConflicts,
		Conflicts:    make(map[string][]conflictJSON, len(r.Conflicts)),
	}
	for email, ms := range r.Conflicts {
		list := make([]conflictJSON, len(ms))
		for i, m := range ms {
			list[i] = conflictJSON{
				ID:          m.ID,
				Title:       m.Title,
				Description: m.Description,
				StartTime:   m.StartTime.UTC(),
				EndTime:     m.EndTime.UTC(),
			}
		}
		out.Conflicts[email] = list
	}
	return out
}

func toParticipantReportJSON(email string, pcs []conflict.ParticipantConflict) participantReportJSON {
	out := participantReportJSON{
		ParticipantEmail: email,
		HasConflicts:     len(pcs) > 0,
		Conflicts:        make([]participantConflictJSON, len(pcs)),
	}
	for i, pc := range pcs {
		out.Conflicts[i] = participantConflictJSON{
			Meeting:         toMeetingJSON(&pc.Meeting),
			ConflictingWith: toMeetingList(pc.ConflictingWith),
		}
	}
	return out
}

// Request bodies carry times as strings so every accepted ISO 8601 form can
// be parsed, not only RFC 3339.
type meetingRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
}

type participantRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
