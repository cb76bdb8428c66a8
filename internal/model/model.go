package model

import "time"

type Meeting struct {
	ID           string
	Title        string
	Description  string
	StartTime    time.Time
	EndTime      time.Time
	Participants []Participant
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Participant struct {
	ID        string
	MeetingID string
	Email     string
	Name      string
	CreatedAt time.Time
}

func (m *Meeting) Interval() Interval {
	return Interval{Start: m.StartTime, End: m.EndTime}
}
