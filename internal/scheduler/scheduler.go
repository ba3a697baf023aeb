package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/go-co-op/gocron/v2"
)

type TaskFn func(ctx context.Context) error

// Job describes a recurring task. Exactly one of Interval or Crontab is set.
type Job struct {
	Name             string
	Interval         time.Duration
	Crontab          string
	StartImmediately bool
	Fn               TaskFn
}

type Scheduler struct {
	scheduler gocron.Scheduler
	timeout   time.Duration
}

// New creates a scheduler. Each run gets a context bounded by timeout when
// timeout is positive.
func New(timeout time.Duration) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{scheduler: scheduler, timeout: timeout}, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) Add(jobs ...Job) error {
	for _, job := range jobs {
		var definition gocron.JobDefinition
		switch {
		case job.Interval > 0 && job.Crontab == "":
			definition = gocron.DurationJob(job.Interval)
		case job.Crontab != "" && job.Interval == 0:
			definition = gocron.CronJob(job.Crontab, false)
		default:
			return fmt.Errorf("job %q: %w", job.Name, errInvalidJob)
		}

		if err := s.createJob(definition, job); err != nil {
			return err
		}
	}
	return nil
}

var errInvalidJob = errors.New("exactly one of interval or crontab must be set")

func (s *Scheduler) createJob(definition gocron.JobDefinition, job Job) error {
	opts := []gocron.JobOption{
		gocron.WithName(job.Name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if job.StartImmediately {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	_, err := s.scheduler.NewJob(definition, gocron.NewTask(s.run(job)), opts...)
	if err != nil {
		slog.Error("scheduler: creating job failed", slog.String("jobName", job.Name), slog.String("err", err.Error()))
		return fmt.Errorf("job %q: %w", job.Name, err)
	}
	return nil
}

// run wraps a task with a fresh request id, an optional timeout and panic
// recovery.
func (s *Scheduler) run(job Job) func() {
	return func() {
		ctx := utils.CreateCtxWithRqID(context.Background(), "")
		rqID := utils.GetRequestIDFromCtx(ctx)

		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		defer func() {
			if r := recover(); r != nil {
				slog.Error(
					"panic recovered in scheduler job",
					slog.String("rqID", rqID),
					slog.String("jobName", job.Name),
					slog.Any("panic", r),
					slog.String("stacktrace", string(debug.Stack())),
				)
			}
		}()

		slog.Debug("job start", slog.String("rqID", rqID), slog.String("jobName", job.Name))

		if err := job.Fn(ctx); err != nil {
			slog.Error("job failed", slog.String("rqID", rqID), slog.String("jobName", job.Name), slog.String("err", err.Error()))
			return
		}

		slog.Debug("job completed", slog.String("rqID", rqID), slog.String("jobName", job.Name))
	}
}
