package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/solarflow/internal/clock"
	obsmetrics "github.com/smallbiznis/solarflow/internal/observability/metrics"
	"github.com/smallbiznis/solarflow/internal/project/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubProject struct {
	domain.Service

	report domain.DeadlineReport
	err    error
	calls  int
}

func (p *stubProject) CheckTaskDeadlines(context.Context) (domain.DeadlineReport, error) {
	p.calls++
	return p.report, p.err
}

type stubLocker struct {
	acquire  bool
	err      error
	released []string
}

func (l *stubLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	return "token-1", l.acquire, nil
}

func (l *stubLocker) Release(_ context.Context, key, token string) error {
	l.released = append(l.released, key+"="+token)
	return nil
}

func newTestScheduler(t *testing.T, project domain.Service, cfg Config) (*Scheduler, *prometheus.Registry) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	registry := prometheus.NewRegistry()

	s, err := New(Params{
		Log:     zaptest.NewLogger(t),
		Project: project,
		GenID:   node,
		Clock:   clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
		Metrics: obsmetrics.NewSchedulerMetrics(registry, obsmetrics.Config{ServiceName: "solarflow", Environment: "test"}),
		Config:  cfg,
	})
	require.NoError(t, err)
	return s, registry
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTaskDeadlinesJobPublishesGauges(t *testing.T) {
	project := &stubProject{report: domain.DeadlineReport{
		Overdue:      []domain.Task{{ID: 1, EndDate: "2025-03-09"}},
		NearDeadline: []domain.Task{{ID: 2, EndDate: "2025-03-11"}, {ID: 3, EndDate: "2025-03-12"}},
	}}
	s, registry := newTestScheduler(t, project, Config{})

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, project.calls)

	expected := `
# HELP solarflow_tasks_near_deadline Open tasks due within three days.
# TYPE solarflow_tasks_near_deadline gauge
solarflow_tasks_near_deadline{env="test",service="solarflow"} 2
# HELP solarflow_tasks_overdue Open tasks whose end date has passed.
# TYPE solarflow_tasks_overdue gauge
solarflow_tasks_overdue{env="test",service="solarflow"} 1
# HELP solarflow_scheduler_job_runs_total Scheduler job runs by name.
# TYPE solarflow_scheduler_job_runs_total counter
solarflow_scheduler_job_runs_total{env="test",job="task_deadlines",service="solarflow"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"solarflow_tasks_overdue",
		"solarflow_tasks_near_deadline",
		"solarflow_scheduler_job_runs_total",
	))
}

func TestTaskDeadlinesJobSkipsWhenLockHeld(t *testing.T) {
	project := &stubProject{}
	s, registry := newTestScheduler(t, project, Config{})
	s.locker = &stubLocker{acquire: false}

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Zero(t, project.calls)

	expected := `
# HELP solarflow_scheduler_job_skipped_total Scheduler runs skipped because another replica holds the lock.
# TYPE solarflow_scheduler_job_skipped_total counter
solarflow_scheduler_job_skipped_total{env="test",job="task_deadlines",reason="lock_held",service="solarflow"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "solarflow_scheduler_job_skipped_total"))
}

func TestTaskDeadlinesJobReleasesLock(t *testing.T) {
	project := &stubProject{}
	s, _ := newTestScheduler(t, project, Config{})
	lock := &stubLocker{acquire: true}
	s.locker = lock

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, project.calls)
	assert.Equal(t, []string{taskDeadlinesLockKey + "=token-1"}, lock.released)
}

func TestRunOnceReportsJobErrors(t *testing.T) {
	project := &stubProject{err: errors.New("boom")}
	s, registry := newTestScheduler(t, project, Config{})

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), JobTaskDeadlines)

	expected := `
# HELP solarflow_scheduler_job_errors_total Scheduler job errors by low-cardinality reason.
# TYPE solarflow_scheduler_job_errors_total counter
solarflow_scheduler_job_errors_total{env="test",job="task_deadlines",reason="unknown",service="solarflow"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "solarflow_scheduler_job_errors_total"))
}

func TestRunOnceTreatsTimeoutAsSoftFailure(t *testing.T) {
	project := &stubProject{err: context.DeadlineExceeded}
	s, _ := newTestScheduler(t, project, Config{})

	assert.NoError(t, s.RunOnce(context.Background()))
}

func TestDisabledJobDoesNotRun(t *testing.T) {
	project := &stubProject{}
	s, _ := newTestScheduler(t, project, Config{EnabledJobs: []string{"something_else"}})

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Zero(t, project.calls)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, time.Hour, cfg.RunInterval)
	assert.Equal(t, 30*time.Second, cfg.JobTimeout)
	assert.Equal(t, time.Minute, cfg.LockTTL)
}
