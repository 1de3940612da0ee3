package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/solarflow/internal/clock"
	"github.com/smallbiznis/solarflow/internal/events"
	obsmetrics "github.com/smallbiznis/solarflow/internal/observability/metrics"
	"github.com/smallbiznis/solarflow/internal/project/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	JobTaskDeadlines = "task_deadlines"

	taskDeadlinesLockKey = "solarflow:scheduler:task_deadlines"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log     *zap.Logger
	Project domain.Service
	GenID   *snowflake.Node
	Clock   clock.Clock
	Locker  *events.Locker               `optional:"true"`
	Metrics *obsmetrics.SchedulerMetrics `optional:"true"`
	Config  Config                       `optional:"true"`
}

// locker is satisfied by *events.Locker.
type locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	genID   *snowflake.Node
	clock   clock.Clock
	project domain.Service
	locker  locker
	metrics *obsmetrics.SchedulerMetrics
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Project == nil || p.GenID == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	s := &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     p.Config.withDefaults(),
		genID:   p.GenID,
		clock:   p.Clock,
		project: p.Project,
		metrics: p.Metrics,
	}
	if s.metrics == nil {
		s.metrics = obsmetrics.Scheduler()
	}
	if p.Locker != nil {
		s.locker = p.Locker
	}
	return s, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	ctx, run, owner := s.ensureJobRun(ctx, name)
	if owner {
		s.logJobStart(ctx, run)
	}
	s.metrics.IncJobRun(name)

	err := fn(ctx)
	s.metrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if owner {
		run.failed = err != nil
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	s.metrics.IncJobError(name, err)
	if isTimeout {
		s.metrics.IncJobTimeout(name)
		s.logger(ctx).Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	var err error
	if s.isJobEnabled(JobTaskDeadlines) {
		err = errors.Join(err, s.runJob(ctx, JobTaskDeadlines, s.TaskDeadlinesJob))
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now()

	for {
		if lag := s.clock.Now().Sub(nextRun); lag > 0 {
			s.metrics.ObserveRunLoopLag(lag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// TaskDeadlinesJob publishes the overdue and near-deadline task counts. With
// Redis configured only the replica holding the lock sweeps.
func (s *Scheduler) TaskDeadlinesJob(ctx context.Context) error {
	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, taskDeadlinesLockKey, s.cfg.LockTTL)
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			s.metrics.IncJobSkipped(JobTaskDeadlines, obsmetrics.SchedulerSkipReasonLockHeld)
			jobRunFromContext(ctx).skip(obsmetrics.SchedulerSkipReasonLockHeld)
			return nil
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), taskDeadlinesLockKey, token); err != nil {
				s.logger(ctx).Warn("failed to release scheduler lock", zap.Error(err))
			}
		}()
	}

	report, err := s.project.CheckTaskDeadlines(ctx)
	if err != nil {
		return err
	}

	s.metrics.SetTaskDeadlines(len(report.Overdue), len(report.NearDeadline))
	s.metrics.AddBatchProcessed(JobTaskDeadlines, "tasks", len(report.Overdue)+len(report.NearDeadline))
	jobRunFromContext(ctx).recordDeadlines(len(report.Overdue), len(report.NearDeadline))

	log := s.logger(ctx)
	for _, task := range report.Overdue {
		log.Warn("task.overdue",
			zap.String("task_id", task.ID.String()),
			zap.String("customer_id", task.CustomerID.String()),
			zap.String("assigned_to", task.AssignedTo.String()),
			zap.String("end_date", task.EndDate),
			zap.String("status", string(task.Status)),
		)
	}
	if len(report.NearDeadline) > 0 {
		log.Info("tasks near deadline", zap.Int("count", len(report.NearDeadline)))
	}
	return nil
}
