package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	cashflowdomain "github.com/gestorhq/gestor/internal/cashflow/domain"
	"github.com/gestorhq/gestor/internal/clock"
	"github.com/gestorhq/gestor/internal/config"
	notificationdomain "github.com/gestorhq/gestor/internal/notification/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeNotificationSvc struct {
	calls int
	stats notificationdomain.Stats
	err   error
}

func (f *fakeNotificationSvc) Process(ctx context.Context) (notificationdomain.Stats, error) {
	f.calls++
	return f.stats, f.err
}

type fakeCashflowSvc struct {
	calls  int
	result cashflowdomain.SyncResult
	err    error
}

func (f *fakeCashflowSvc) SyncPaid(ctx context.Context) (cashflowdomain.SyncResult, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeCashflowSvc) Summarize(ctx context.Context, periodToken string) (cashflowdomain.Summary, error) {
	return cashflowdomain.Summary{}, nil
}

func (f *fakeCashflowSvc) SummarizeRange(ctx context.Context, start, end time.Time) (cashflowdomain.Summary, error) {
	return cashflowdomain.Summary{}, nil
}

func (f *fakeCashflowSvc) CreateEntry(ctx context.Context, req cashflowdomain.CreateEntryRequest) (cashflowdomain.CashFlowEntry, error) {
	return cashflowdomain.CashFlowEntry{}, nil
}

func newTestScheduler(t *testing.T, now time.Time, notif *fakeNotificationSvc, cash *fakeCashflowSvc, cfg config.NotificationConfig) *Scheduler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sched, err := New(Params{
		DB:              db,
		Log:             zap.NewNop(),
		Clock:           clock.NewFakeClock(now),
		NotificationSvc: notif,
		CashflowSvc:     cash,
		Holder:          config.NewStaticNotificationConfigHolder(cfg),
	})
	require.NoError(t, err)
	return sched
}

func TestInSendWindow(t *testing.T) {
	tolerance := 5 * time.Minute
	day := func(h, m int) time.Time {
		return time.Date(2024, time.April, 7, h, m, 0, 0, time.UTC)
	}

	cases := []struct {
		now  time.Time
		want bool
	}{
		{day(8, 0), true},
		{day(7, 55), true},
		{day(8, 5), true},
		{day(7, 54), false},
		{day(8, 6), false},
		{day(20, 0), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, inSendWindow(tc.now, "08:00", tolerance), "now=%s", tc.now)
	}
}

func TestInSendWindowBadSendTime(t *testing.T) {
	now := time.Date(2024, time.April, 7, 8, 0, 0, 0, time.UTC)
	assert.False(t, inSendWindow(now, "not-a-time", time.Hour))
}

func TestNotificationsJobRunsOnlyInsideWindow(t *testing.T) {
	cfg := config.NotificationConfig{SendTime: "08:00", ToleranceMinutes: 5, SyncCooldownSeconds: 0}

	notif := &fakeNotificationSvc{}
	sched := newTestScheduler(t, time.Date(2024, time.April, 7, 14, 0, 0, 0, time.UTC), notif, &fakeCashflowSvc{}, cfg)
	require.NoError(t, sched.NotificationsJob(context.Background()))
	assert.Equal(t, 0, notif.calls)

	notif = &fakeNotificationSvc{}
	sched = newTestScheduler(t, time.Date(2024, time.April, 7, 8, 2, 0, 0, time.UTC), notif, &fakeCashflowSvc{}, cfg)
	require.NoError(t, sched.NotificationsJob(context.Background()))
	assert.Equal(t, 1, notif.calls)
}

func TestCashflowSyncJobSwallowsGuardErrors(t *testing.T) {
	cfg := config.DefaultNotificationConfig()
	now := time.Date(2024, time.April, 7, 8, 0, 0, 0, time.UTC)

	for _, guardErr := range []error{cashflowdomain.ErrSyncInProgress, cashflowdomain.ErrSyncCooldown} {
		cash := &fakeCashflowSvc{err: guardErr}
		sched := newTestScheduler(t, now, &fakeNotificationSvc{}, cash, cfg)
		assert.NoError(t, sched.CashflowSyncJob(context.Background()))
	}

	cash := &fakeCashflowSvc{err: errors.New("db gone")}
	sched := newTestScheduler(t, now, &fakeNotificationSvc{}, cash, cfg)
	assert.Error(t, sched.CashflowSyncJob(context.Background()))
}

func TestRunOnceJoinsJobErrors(t *testing.T) {
	cfg := config.NotificationConfig{SendTime: "08:00", ToleranceMinutes: 5}
	now := time.Date(2024, time.April, 7, 8, 0, 0, 0, time.UTC)

	notif := &fakeNotificationSvc{err: errors.New("template store down")}
	cash := &fakeCashflowSvc{err: errors.New("payments store down")}
	sched := newTestScheduler(t, now, notif, cash, cfg)

	err := sched.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "billing_notifications")
	assert.Contains(t, err.Error(), "cashflow_sync")
}

func TestRunOnceRespectsEnabledJobs(t *testing.T) {
	cfg := config.NotificationConfig{SendTime: "08:00", ToleranceMinutes: 5}
	now := time.Date(2024, time.April, 7, 8, 0, 0, 0, time.UTC)

	notif := &fakeNotificationSvc{}
	cash := &fakeCashflowSvc{}
	sched := newTestScheduler(t, now, notif, cash, cfg)
	sched.cfg.EnabledJobs = []string{"cashflow_sync"}

	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 0, notif.calls)
	assert.Equal(t, 1, cash.calls)
}
