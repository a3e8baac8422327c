package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cashflowdomain "github.com/gestorhq/gestor/internal/cashflow/domain"
	"github.com/gestorhq/gestor/internal/clock"
	"github.com/gestorhq/gestor/internal/config"
	"github.com/gestorhq/gestor/internal/metrics"
	notificationdomain "github.com/gestorhq/gestor/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	Clock           clock.Clock
	NotificationSvc notificationdomain.Service
	CashflowSvc     cashflowdomain.Service
	Holder          *config.NotificationConfigHolder
	Config          Config `optional:"true"`
}

type Scheduler struct {
	db              *gorm.DB
	log             *zap.Logger
	cfg             Config
	clock           clock.Clock
	notificationSvc notificationdomain.Service
	cashflowSvc     cashflowdomain.Service
	holder          *config.NotificationConfigHolder
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.NotificationSvc == nil || p.CashflowSvc == nil || p.Holder == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:              p.DB,
		log:             p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:             p.Config.withDefaults(),
		clock:           p.Clock,
		notificationSvc: p.NotificationSvc,
		cashflowSvc:     p.CashflowSvc,
		holder:          p.Holder,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	schedMetrics := metrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	// Deadline is a soft timeout: the next tick picks up where this
	// run left off, so it is recorded but not propagated.
	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
	}
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

// NotificationsJob runs one reminder pass, but only inside the
// configured send window so reminders go out at a predictable hour
// instead of on every tick.
func (s *Scheduler) NotificationsJob(ctx context.Context) error {
	cfg := s.holder.Get()
	now := s.clock.Now()
	if !inSendWindow(now, cfg.SendTime, cfg.Tolerance()) {
		return nil
	}

	stats, err := s.notificationSvc.Process(ctx)
	if err != nil {
		return err
	}
	s.log.Info("notification job finished",
		zap.Int("processed", stats.Processed),
		zap.Int("sent", stats.Sent),
		zap.Int("errors", stats.Errors),
	)
	return nil
}

// CashflowSyncJob mirrors paid payments into the ledger. The service
// enforces its own cooldown; hitting it just means another trigger got
// there first.
func (s *Scheduler) CashflowSyncJob(ctx context.Context) error {
	result, err := s.cashflowSvc.SyncPaid(ctx)
	if errors.Is(err, cashflowdomain.ErrSyncInProgress) || errors.Is(err, cashflowdomain.ErrSyncCooldown) {
		return nil
	}
	if err != nil {
		return err
	}
	if result.Synced > 0 {
		s.log.Info("cash-flow sync job finished",
			zap.Int("synced", result.Synced),
			zap.Int("skipped", result.Skipped),
			zap.Int("errors", result.Errors),
		)
	}
	return nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name    string
		Enabled bool
		Run     func(context.Context) error
	}{
		{"billing_notifications", s.isJobEnabled("billing_notifications"), func(ctx context.Context) error {
			return s.runJob(ctx, "billing_notifications", s.cfg.JobTimeout, s.NotificationsJob)
		}},
		{"cashflow_sync", s.isJobEnabled("cashflow_sync"), func(ctx context.Context) error {
			return s.runJob(ctx, "cashflow_sync", s.cfg.JobTimeout, s.CashflowSyncJob)
		}},
	}

	for _, job := range jobs {
		if job.Enabled {
			err = errors.Join(err, job.Run(parent))
		}
	}

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)
	schedMetrics := metrics.Scheduler()

	for {
		runLag := time.Since(nextRun)
		if runLag > 0 {
			schedMetrics.ObserveRunLoopLag(runLag)
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
