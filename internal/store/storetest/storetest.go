// Package storetest holds the behaviour every store.Repository must show.
// Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"meeting-scheduler-api/internal/errs"
	"meeting-scheduler-api/internal/model"
	"meeting-scheduler-api/internal/store"
)

// Run exercises repo. Emails and ids are random so a shared database can be
// reused between runs.
func Run(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second).Add(24 * time.Hour)
	tag := uuid.New().String()[:8]
	email := func(name string) string { return fmt.Sprintf("%s-%s@example.com", name, tag) }

	create := func(t *testing.T, title string, startH, endH float64) *model.Meeting {
		t.Helper()
		start := base.Add(time.Duration(startH * float64(time.Hour)))
		end := base.Add(time.Duration(endH * float64(time.Hour)))
		m, err := model.NewMeeting(title, "", start, end, base)
		if err != nil {
			t.Fatalf("NewMeeting: %v", err)
		}
		if err := repo.CreateMeeting(ctx, m); err != nil {
			t.Fatalf("CreateMeeting: %v", err)
		}
		return m
	}
	join := func(t *testing.T, m *model.Meeting, addr, name string) {
		t.Helper()
		p, err := model.NewParticipant(m.ID, addr, name, base)
		if err != nil {
			t.Fatalf("NewParticipant: %v", err)
		}
		if err := repo.InsertParticipant(ctx, p); err != nil {
			t.Fatalf("InsertParticipant: %v", err)
		}
	}

	t.Run("GetMeeting round trip", func(t *testing.T) {
		m := create(t, "Round trip", 1, 2)
		join(t, m, email("alice"), "Alice")
		join(t, m, email("bob"), "Bob")

		got, err := repo.GetMeeting(ctx, m.ID)
		if err != nil {
			t.Fatalf("GetMeeting: %v", err)
		}
		if got.Title != m.Title || !got.StartTime.Equal(m.StartTime) || !got.EndTime.Equal(m.EndTime) {
			t.Errorf("meeting mismatch: got %+v want %+v", got, m)
		}
		if got.StartTime.Location() != time.UTC {
			t.Errorf("start time not UTC: %v", got.StartTime.Location())
		}
		if len(got.Participants) != 2 || got.Participants[0].Email != email("alice") {
			t.Errorf("participants: %+v", got.Participants)
		}
	})

	t.Run("GetMeeting unknown id", func(t *testing.T) {
		if _, err := repo.GetMeeting(ctx, uuid.New().String()); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListMeetings ordered by start", func(t *testing.T) {
		late := create(t, "Late", 50, 51)
		early := create(t, "Early", 40, 41)

		all, err := repo.ListMeetings(ctx)
		if err != nil {
			t.Fatalf("ListMeetings: %v", err)
		}
		pos := map[string]int{}
		for i, m := range all {
			pos[m.ID] = i
		}
		if pos[early.ID] >= pos[late.ID] {
			t.Errorf("expected %s before %s", early.Title, late.Title)
		}
		for i := 1; i < len(all); i++ {
			if all[i].StartTime.Before(all[i-1].StartTime) {
				t.Fatalf("list not sorted at %d", i)
			}
		}
	})

	t.Run("UpdateMeeting", func(t *testing.T) {
		m := create(t, "Before", 3, 4)
		title := "After"
		out, err := model.MeetingPatch{Title: &title}.Apply(m, base.Add(time.Minute))
		if err != nil {
			t.Fatal(err)
		}
		if err := repo.UpdateMeeting(ctx, out); err != nil {
			t.Fatalf("UpdateMeeting: %v", err)
		}
		got, err := repo.GetMeeting(ctx, m.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Title != "After" || !got.UpdatedAt.Equal(base.Add(time.Minute)) {
			t.Errorf("update not stored: %+v", got)
		}

		ghost := *out
		ghost.ID = uuid.New().String()
		if err := repo.UpdateMeeting(ctx, &ghost); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate participant rejected", func(t *testing.T) {
		m := create(t, "Dup", 5, 6)
		join(t, m, email("x"), "X")

		p, _ := model.NewParticipant(m.ID, email("x"), "X again", base)
		err := repo.InsertParticipant(ctx, p)
		if !errors.Is(err, errs.ErrDuplicateParticipant) {
			t.Fatalf("expected ErrDuplicateParticipant, got %v", err)
		}
		ps, err := repo.ParticipantsOf(ctx, m.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(ps) != 1 {
			t.Errorf("expected 1 participant, got %d", len(ps))
		}
	})

	t.Run("concurrent duplicate inserts", func(t *testing.T) {
		m := create(t, "Race", 7, 8)
		const n = 8
		var wg sync.WaitGroup
		results := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p, _ := model.NewParticipant(m.ID, email("race"), "Racer", base)
				results <- repo.InsertParticipant(ctx, p)
			}()
		}
		wg.Wait()
		close(results)

		ok, dup := 0, 0
		for err := range results {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, errs.ErrDuplicateParticipant):
				dup++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		if ok != 1 || dup != n-1 {
			t.Errorf("expected 1 success and %d duplicates, got %d and %d", n-1, ok, dup)
		}
	})

	t.Run("participant for unknown meeting", func(t *testing.T) {
		p, _ := model.NewParticipant(uuid.New().String(), email("nobody"), "N", base)
		if err := repo.InsertParticipant(ctx, p); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteParticipant", func(t *testing.T) {
		m := create(t, "Leave", 9, 10)
		join(t, m, email("leaver"), "L")
		if err := repo.DeleteParticipant(ctx, m.ID, email("leaver")); err != nil {
			t.Fatalf("DeleteParticipant: %v", err)
		}
		if err := repo.DeleteParticipant(ctx, m.ID, email("leaver")); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("second delete: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteMeetingCascade", func(t *testing.T) {
		m := create(t, "Doomed", 11, 12)
		join(t, m, email("cascade"), "C")

		if err := repo.DeleteMeetingCascade(ctx, m.ID); err != nil {
			t.Fatalf("DeleteMeetingCascade: %v", err)
		}
		if _, err := repo.GetMeeting(ctx, m.ID); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("meeting still present: %v", err)
		}
		ps, err := repo.ParticipantsOf(ctx, m.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(ps) != 0 {
			t.Errorf("participants survived cascade: %+v", ps)
		}
		found, err := repo.MeetingsWithParticipant(ctx, email("cascade"))
		if err != nil {
			t.Fatal(err)
		}
		if len(found) != 0 {
			t.Errorf("participant still listed in %d meetings", len(found))
		}
		if err := repo.DeleteMeetingCascade(ctx, m.ID); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("second delete: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("MeetingsWithParticipant", func(t *testing.T) {
		a := create(t, "Shared B", 21, 22)
		b := create(t, "Shared A", 20, 21)
		other := create(t, "Other", 20, 22)
		join(t, a, email("carol"), "Carol")
		join(t, b, email("carol"), "Carol")
		join(t, other, email("dave"), "Dave")

		got, err := repo.MeetingsWithParticipant(ctx, email("carol"))
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].ID != b.ID || got[1].ID != a.ID {
			t.Fatalf("expected [%s %s], got %+v", b.Title, a.Title, got)
		}
		if len(got[0].Participants) != 1 {
			t.Errorf("participants not attached: %+v", got[0].Participants)
		}
	})

	if of, ok := repo.(store.OverlapFinder); ok {
		t.Run("MeetingsOverlapping", func(t *testing.T) {
			m1 := create(t, "M1", 30, 31)
			m2 := create(t, "M2", 30.5, 31.5)
			m3 := create(t, "Touching", 31.5, 32)
			for _, m := range []*model.Meeting{m1, m2, m3} {
				join(t, m, email("erin"), "Erin")
			}

			got, err := of.MeetingsOverlapping(ctx, email("erin"), m2.Interval(), m2.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 || got[0].ID != m1.ID {
				t.Errorf("expected only M1, got %+v", got)
			}

			got, err = of.MeetingsOverlapping(ctx, email("erin"), m2.Interval(), "")
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 2 {
				t.Errorf("expected M1 and M2 without exclusion, got %d", len(got))
			}
		})
	}
}
