package rpc

import (
	"time"

	"meeting-scheduler-api/internal/model"
	"meeting-scheduler-api/internal/service"
)

type CheckConflictsRequest struct {
	MeetingID string `json:"meeting_id"`
}

type ConflictingMeeting struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

type CheckConflictsResponse struct {
	MeetingID    string                          `json:"meeting_id"`
	MeetingTitle string                          `json:"meeting_title"`
	HasConflicts bool                            `json:"has_conflicts"`
	Conflicts    map[string][]ConflictingMeeting `json:"conflicts"`
}

type ExportCalendarRequest struct {
	MeetingID string `json:"meeting_id"`
}

type ExportCalendarResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Calendar    string `json:"calendar"`
}

// ListParticipantMeetingsRequest bounds are ISO 8601 strings. Empty means
// unbounded.
type ListParticipantMeetingsRequest struct {
	Email     string `json:"email"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type Participant struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Meeting struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Participants []Participant `json:"participants"`
}

type ListParticipantMeetingsResponse struct {
	Meetings []Meeting `json:"meetings"`
}

func fromReport(r *service.ConflictReport) *CheckConflictsResponse {
	out := &CheckConflictsResponse{
		MeetingID:    r.MeetingID,
		MeetingTitle: r.MeetingTitle,
		HasConflicts: r.HasConflicts,
		Conflicts:    make(map[string][]ConflictingMeeting, len(r.Conflicts)),
	}
	for email, ms := range r.Conflicts {
		list := make([]ConflictingMeeting, len(ms))
		for i, m := range ms {
			list[i] = ConflictingMeeting{ID: m.ID, Title: m.Title, Description: m.Description, StartTime: m.StartTime, EndTime: m.EndTime}
		}
		out.Conflicts[email] = list
	}
	return out
}

func fromMeeting(m *model.Meeting) Meeting {
	ps := make([]Participant, len(m.Participants))
	for i, p := range m.Participants {
		ps[i] = Participant{Email: p.Email, Name: p.Name}
	}
	return Meeting{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		Participants: ps,
	}
}
