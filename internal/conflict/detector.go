// Package conflict finds meetings that overlap in time and share a participant.
package conflict

import (
	"context"
	"fmt"
	"sort"

	"meeting-scheduler-api/internal/model"
)

// Source is the part of the repository the detector reads from.
type Source interface {
	MeetingsWithParticipant(ctx context.Context, email string) ([]model.Meeting, error)
}

// overlapSource is satisfied by backends that evaluate the overlap predicate
// themselves (see store.OverlapFinder).
type overlapSource interface {
	MeetingsOverlapping(ctx context.Context, email string, iv model.Interval, excludeID string) ([]model.Meeting, error)
}

// Detector is stateless apart from its source and safe for concurrent use.
type Detector struct {
	src Source
}

func New(src Source) *Detector {
	return &Detector{src: src}
}

// Overlaps is the half-open interval test: a.start < b.end && b.start < a.end.
func Overlaps(a, b model.Interval) bool {
	return a.Overlaps(b)
}

// FindForParticipant returns the meetings, other than excludeID, that list
// email and overlap target. The result is ordered by start time and is empty
// (not nil error) when nothing conflicts.
func (d *Detector) FindForParticipant(ctx context.Context, email string, target model.Interval, excludeID string) ([]model.Meeting, error) {
	email = model.NormalizeEmail(email)
	if of, ok := d.src.(overlapSource); ok {
		found, err := of.MeetingsOverlapping(ctx, email, target, excludeID)
		if err != nil {
			return nil, fmt.Errorf("overlap query for %s: %w", email, err)
		}
		sortByStart(found)
		return nonNil(found), nil
	}

	candidates, err := d.src.MeetingsWithParticipant(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("meetings for %s: %w", email, err)
	}
	return scan(candidates, target, excludeID), nil
}

// scan keeps the candidates overlapping target. Candidates are sorted by
// start, so everything from the first start >= target.End onward is skipped
// with a binary search.
func scan(candidates []model.Meeting, target model.Interval, excludeID string) []model.Meeting {
	sorted := make([]model.Meeting, len(candidates))
	copy(sorted, candidates)
	sortByStart(sorted)

	cut := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].StartTime.Before(target.End)
	})
	out := []model.Meeting{}
	for _, m := range sorted[:cut] {
		if excludeID != "" && m.ID == excludeID {
			continue
		}
		if Overlaps(m.Interval(), target) {
			out = append(out, m)
		}
	}
	return out
}

// Aggregate maps each participant email of m to the meetings it conflicts
// with. Participants without conflicts are left out. Any lookup failure fails
// the whole aggregation.
func (d *Detector) Aggregate(ctx context.Context, m *model.Meeting) (map[string][]model.Meeting, error) {
	out := map[string][]model.Meeting{}
	for _, p := range m.Participants {
		found, err := d.FindForParticipant(ctx, p.Email, m.Interval(), m.ID)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			out[p.Email] = found
		}
	}
	return out, nil
}

func (d *Detector) HasConflicts(ctx context.Context, m *model.Meeting) (bool, error) {
	c, err := d.Aggregate(ctx, m)
	if err != nil {
		return false, err
	}
	return len(c) > 0, nil
}

// ParticipantConflict pairs one of a participant's meetings with the meetings
// it collides with.
type ParticipantConflict struct {
	Meeting         model.Meeting
	ConflictingWith []model.Meeting
}

// ParticipantReport checks each of meetings (typically the participant's
// range-filtered schedule) against the participant's other meetings. Only
// meetings that have conflicts are reported, in the order given.
func (d *Detector) ParticipantReport(ctx context.Context, email string, meetings []model.Meeting) ([]ParticipantConflict, error) {
	out := []ParticipantConflict{}
	for _, m := range meetings {
		found, err := d.FindForParticipant(ctx, email, m.Interval(), m.ID)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			out = append(out, ParticipantConflict{Meeting: m, ConflictingWith: found})
		}
	}
	return out, nil
}

func sortByStart(ms []model.Meeting) {
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].StartTime.Before(ms[j].StartTime)
	})
}

func nonNil(ms []model.Meeting) []model.Meeting {
	if ms == nil {
		return []model.Meeting{}
	}
	return ms
}
