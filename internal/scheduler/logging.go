package scheduler

import (
	"context"
	"time"

	obslogger "github.com/smallbiznis/solarflow/internal/observability/logger"
	"github.com/smallbiznis/solarflow/pkg/telemetry/correlation"
	"go.uber.org/zap"
)

// jobRun accumulates what one job invocation saw, for the finish log line.
type jobRun struct {
	job       string
	runID     string
	startedAt time.Time
	overdue   int
	near      int
	skipped   string
	failed    bool
}

type jobRunKey struct{}

func (r *jobRun) recordDeadlines(overdue, near int) {
	if r == nil {
		return
	}
	r.overdue, r.near = overdue, near
}

func (r *jobRun) skip(reason string) {
	if r != nil {
		r.skipped = reason
	}
}

// ensureJobRun attaches a run record and a correlation id to ctx. owner is
// false when ctx already carries a run.
func (s *Scheduler) ensureJobRun(ctx context.Context, job string) (context.Context, *jobRun, bool) {
	if existing := jobRunFromContext(ctx); existing != nil {
		return ctx, existing, false
	}
	run := &jobRun{
		job:       job,
		runID:     s.genID.Generate().String(),
		startedAt: s.clock.Now(),
	}
	ctx, _ = correlation.EnsureCorrelationID(context.WithValue(ctx, jobRunKey{}, run))
	return ctx, run, true
}

func jobRunFromContext(ctx context.Context) *jobRun {
	run, _ := ctx.Value(jobRunKey{}).(*jobRun)
	return run
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithActor(obslogger.WithContext(ctx, s.log), "System", "scheduler")
}

func (s *Scheduler) logJobStart(ctx context.Context, run *jobRun) {
	s.logger(ctx).Debug("scheduler.job.start",
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
	)
}

func (s *Scheduler) logJobFinish(ctx context.Context, run *jobRun) {
	fields := []zap.Field{
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
		zap.Int64("duration_ms", s.clock.Now().Sub(run.startedAt).Milliseconds()),
	}
	log := s.logger(ctx)
	switch {
	case run.failed:
		log.Warn("scheduler.job.finish", fields...)
	case run.skipped != "":
		log.Debug("scheduler.job.finish", append(fields, zap.String("skipped", run.skipped))...)
	default:
		log.Info("scheduler.job.finish", append(fields,
			zap.Int("overdue", run.overdue),
			zap.Int("near_deadline", run.near),
		)...)
	}
}
