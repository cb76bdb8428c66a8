// Package audit periodically counts upcoming meetings that have conflicts
// and publishes the figure as a gauge.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"meeting-scheduler-api/internal/conflict"
	"meeting-scheduler-api/internal/metrics"
	"meeting-scheduler-api/internal/store"
	"meeting-scheduler-api/internal/timerange"
)

type Result struct {
	Checked     int
	Conflicting []string // meeting ids, ascending by start
}

type Auditor struct {
	repo     store.Repository
	detector *conflict.Detector
	metrics  *metrics.Metrics
	log      *slog.Logger
	horizon  time.Duration
	now      func() time.Time
}

// New audits meetings starting within horizon from now. m may be nil.
func New(repo store.Repository, m *metrics.Metrics, log *slog.Logger, horizon time.Duration) *Auditor {
	if log == nil {
		log = slog.Default()
	}
	return &Auditor{
		repo:     repo,
		detector: conflict.New(repo),
		metrics:  m,
		log:      log,
		horizon:  horizon,
		now:      time.Now,
	}
}

func (a *Auditor) Run(ctx context.Context) (*Result, error) {
	all, err := a.repo.ListMeetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit: list meetings: %w", err)
	}
	from := a.now().UTC()
	to := from.Add(a.horizon)
	upcoming := timerange.Filter(all, timerange.Range{Start: &from, End: &to})

	res := &Result{Checked: len(upcoming), Conflicting: []string{}}
	for i := range upcoming {
		has, err := a.detector.HasConflicts(ctx, &upcoming[i])
		if err != nil {
			return nil, fmt.Errorf("audit: meeting %s: %w", upcoming[i].ID, err)
		}
		if has {
			res.Conflicting = append(res.Conflicting, upcoming[i].ID)
		}
	}

	if a.metrics != nil {
		a.metrics.AuditConflicting.Set(float64(len(res.Conflicting)))
		a.metrics.AuditLastRun.SetToCurrentTime()
	}
	a.log.InfoContext(ctx, "conflict audit finished",
		"checked", res.Checked, "conflicting", len(res.Conflicting), "horizon", a.horizon)
	return res, nil
}

// Schedule registers Run on spec (standard cron syntax or @every) and returns
// the unstarted cron. Overlapping runs are skipped.
func (a *Auditor) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	logger := cron.PrintfLogger(slog.NewLogLogger(a.log.Handler(), slog.LevelWarn))
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	_, err := c.AddFunc(spec, func() {
		if _, err := a.Run(ctx); err != nil {
			a.log.ErrorContext(ctx, "conflict audit failed", "err", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("audit schedule %q: %w", spec, err)
	}
	return c, nil
}
