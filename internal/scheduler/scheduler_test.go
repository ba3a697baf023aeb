package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KotFed0t/invest_tracker/utils"
)

func newScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestIntervalJobRunsWithRequestID(t *testing.T) {
	s := newScheduler(t)

	ids := make(chan string, 8)
	err := s.Add(Job{
		Name:             "revalue",
		Interval:         time.Hour,
		StartImmediately: true,
		Fn: func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("missing deadline")
			}
			ids <- utils.GetRequestIDFromCtx(ctx)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Start()

	select {
	case id := <-ids:
		if id == "" {
			t.Error("job ran without request id")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestPanickingJobDoesNotStopOthers(t *testing.T) {
	s := newScheduler(t)

	ran := make(chan struct{}, 1)
	err := s.Add(
		Job{
			Name:             "broken",
			Interval:         time.Hour,
			StartImmediately: true,
			Fn:               func(context.Context) error { panic("boom") },
		},
		Job{
			Name:             "healthy",
			Interval:         time.Hour,
			StartImmediately: true,
			Fn: func(context.Context) error {
				ran <- struct{}{}
				return nil
			},
		},
	)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	s.Start()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("healthy job did not run")
	}
}

func TestAddRejectsInvalidJobs(t *testing.T) {
	s := newScheduler(t)
	noop := func(context.Context) error { return nil }

	tests := []struct {
		name string
		job  Job
	}{
		{"no schedule", Job{Name: "a", Fn: noop}},
		{"both schedules", Job{Name: "b", Interval: time.Minute, Crontab: "0 3 * * *", Fn: noop}},
		{"bad crontab", Job{Name: "c", Crontab: "not a cron", Fn: noop}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Add(tt.job); err == nil {
				t.Error("expected error")
			}
		})
	}

	if err := s.Add(Job{Name: "cleanup", Crontab: "0 3 * * *", Fn: noop}); err != nil {
		t.Errorf("valid crontab rejected: %v", err)
	}
}
