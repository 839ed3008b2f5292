package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/smallbiznis/rentledger/internal/clock"
	invoicedomain "github.com/smallbiznis/rentledger/internal/invoice/domain"
	settingsdomain "github.com/smallbiznis/rentledger/internal/invoicesettings/domain"
	obsmetrics "github.com/smallbiznis/rentledger/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeInvoiceSvc struct {
	invoicedomain.Service

	mu        sync.Mutex
	autoSend  []snowflake.ID
	reminders []snowflake.ID
	failOrg   snowflake.ID
}

func (f *fakeInvoiceSvc) AutoSendDue(_ context.Context, orgID snowflake.ID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.autoSend = append(f.autoSend, orgID)
	if orgID == f.failOrg {
		return 0, errors.New("smtp down")
	}
	return 2, nil
}

func (f *fakeInvoiceSvc) SendDueReminders(_ context.Context, orgID snowflake.ID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders = append(f.reminders, orgID)
	return 1, nil
}

func (f *fakeInvoiceSvc) autoSendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.autoSend)
}

type fakeSettingsSvc struct {
	settingsdomain.Service
	automated []settingsdomain.InvoiceSettings
}

func (f *fakeSettingsSvc) ListAutomated(context.Context) ([]settingsdomain.InvoiceSettings, error) {
	return f.automated, nil
}

type fakeLocker struct {
	held     bool
	released []string
}

func (l *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	if l.held {
		return "", false, nil
	}
	return "token-" + key, true, nil
}

func (l *fakeLocker) Release(_ context.Context, key, _ string) error {
	l.released = append(l.released, key)
	return nil
}

type testScheduler struct {
	sched    *Scheduler
	invoices *fakeInvoiceSvc
	registry *prometheus.Registry
	clock    *clock.FakeClock
}

func newTestScheduler(t *testing.T, cfg Config, locker Locker) testScheduler {
	t.Helper()
	return newTestSchedulerWithLog(t, cfg, locker, zap.NewNop())
}

func newTestSchedulerWithLog(t *testing.T, cfg Config, locker Locker, log *zap.Logger) testScheduler {
	t.Helper()
	registry := prometheus.NewRegistry()
	schedMetrics := obsmetrics.NewSchedulerMetrics(registry, obsmetrics.Config{ServiceName: "rentledger", Environment: "test"})
	invoices := &fakeInvoiceSvc{}
	settings := &fakeSettingsSvc{automated: []settingsdomain.InvoiceSettings{
		{OrgID: 1, AutoSendEnabled: true, SendReminderEnabled: true},
		{OrgID: 2, AutoSendEnabled: true},
		{OrgID: 3, SendReminderEnabled: true},
	}}
	clk := clock.NewFakeClock(time.Date(2024, time.March, 10, 6, 0, 0, 0, time.UTC))

	sched, err := New(Params{
		Log:         log,
		Clock:       clk,
		InvoiceSvc:  invoices,
		SettingsSvc: settings,
		Config:      cfg,
		Locker:      locker,
		Metrics:     schedMetrics,
	})
	require.NoError(t, err)
	return testScheduler{sched: sched, invoices: invoices, registry: registry, clock: clk}
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunOnceVisitsAutomatedOrganizations(t *testing.T) {
	ts := newTestScheduler(t, Config{}, nil)

	require.NoError(t, ts.sched.RunOnce(context.Background()))
	assert.Equal(t, []snowflake.ID{1, 2}, ts.invoices.autoSend)
	assert.Equal(t, []snowflake.ID{1, 3}, ts.invoices.reminders)

	assert.Equal(t, float64(4), counterValue(t, ts.registry, "rentledger_scheduler_batch_processed_total",
		map[string]string{"job": JobAutoSend, "outcome": "success"}))
	assert.Equal(t, float64(2), counterValue(t, ts.registry, "rentledger_scheduler_batch_processed_total",
		map[string]string{"job": JobReminders, "outcome": "success"}))
	assert.Equal(t, float64(1), counterValue(t, ts.registry, "rentledger_scheduler_job_runs_total",
		map[string]string{"job": JobAutoSend}))
}

func TestRunOnceContinuesPastFailingOrganization(t *testing.T) {
	ts := newTestScheduler(t, Config{}, nil)
	ts.invoices.failOrg = 1

	err := ts.sched.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Equal(t, []snowflake.ID{1, 2}, ts.invoices.autoSend)
	assert.Equal(t, float64(1), counterValue(t, ts.registry, "rentledger_scheduler_job_errors_total",
		map[string]string{"job": JobAutoSend, "reason": obsmetrics.SchedulerJobReasonUnknown}))
}

func TestRunOnceLogsCarryRunID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ts := newTestSchedulerWithLog(t, Config{EnabledJobs: []string{JobAutoSend}}, nil, zap.New(core))
	ts.invoices.failOrg = 1

	require.Error(t, ts.sched.RunOnce(context.Background()))

	start := logs.FilterMessage("scheduler.job.start").All()
	failed := logs.FilterMessage("scheduler.org.failed").All()
	require.Len(t, start, 1)
	require.Len(t, failed, 1)

	runID, _ := start[0].ContextMap()["run_id"].(string)
	require.NotEmpty(t, runID)
	fields := failed[0].ContextMap()
	assert.Equal(t, runID, fields["run_id"])
	assert.Equal(t, "1", fields["org_id"])
	assert.Equal(t, "scheduler", fields["actor_id"])
}

func TestRunOnceSkipsDisabledJobs(t *testing.T) {
	ts := newTestScheduler(t, Config{EnabledJobs: []string{"REMINDERS"}}, nil)

	require.NoError(t, ts.sched.RunOnce(context.Background()))
	assert.Empty(t, ts.invoices.autoSend)
	assert.Len(t, ts.invoices.reminders, 2)
	assert.Equal(t, float64(1), counterValue(t, ts.registry, "rentledger_scheduler_job_skipped_total",
		map[string]string{"job": JobAutoSend, "reason": obsmetrics.SchedulerSkipReasonDisabled}))
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	locker := &fakeLocker{held: true}
	ts := newTestScheduler(t, Config{}, locker)

	require.NoError(t, ts.sched.RunOnce(context.Background()))
	assert.Empty(t, ts.invoices.autoSend)
	assert.Empty(t, ts.invoices.reminders)
	assert.Equal(t, float64(1), counterValue(t, ts.registry, "rentledger_scheduler_job_skipped_total",
		map[string]string{"job": JobReminders, "reason": obsmetrics.SchedulerSkipReasonLockHeld}))
}

func TestRunOnceReleasesLocks(t *testing.T) {
	locker := &fakeLocker{}
	ts := newTestScheduler(t, Config{}, locker)

	require.NoError(t, ts.sched.RunOnce(context.Background()))
	assert.Equal(t, []string{lockKey(JobAutoSend), lockKey(JobReminders)}, locker.released)
}

func TestRunJobTimeoutIsNotAnError(t *testing.T) {
	ts := newTestScheduler(t, Config{}, nil)

	err := ts.sched.runJob(context.Background(), "timeout_job", 5*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), counterValue(t, ts.registry, "rentledger_scheduler_job_timeouts_total",
		map[string]string{"job": "timeout_job"}))
	assert.Equal(t, float64(1), counterValue(t, ts.registry, "rentledger_scheduler_job_errors_total",
		map[string]string{"job": "timeout_job", "reason": obsmetrics.SchedulerJobReasonDeadlineExceeded}))
}

func TestRunForeverTicksOnClock(t *testing.T) {
	ts := newTestScheduler(t, Config{RunInterval: time.Hour, EnabledJobs: []string{JobAutoSend}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ts.sched.RunForever(ctx)
	}()

	require.Eventually(t, func() bool {
		return ts.invoices.autoSendCalls() == 2 && ts.clock.Waiters() == 1
	}, time.Second, time.Millisecond)

	ts.clock.Advance(time.Hour)
	require.Eventually(t, func() bool { return ts.invoices.autoSendCalls() == 4 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunForever did not stop after cancel")
	}
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.Metric {
			if labelsMatch(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

// labelsMatch ignores the constant service and env labels.
func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, label := range metric.Label {
		switch label.GetName() {
		case "service", "env":
			continue
		}
		if labels[label.GetName()] != label.GetValue() {
			return false
		}
		matched++
	}
	return matched == len(labels)
}
