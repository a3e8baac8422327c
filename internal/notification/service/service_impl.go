package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/gestorhq/gestor/internal/billing/domain"
	clientdomain "github.com/gestorhq/gestor/internal/client/domain"
	"github.com/gestorhq/gestor/internal/clock"
	"github.com/gestorhq/gestor/internal/metrics"
	"github.com/gestorhq/gestor/internal/notification/domain"
	"github.com/gestorhq/gestor/internal/notification/render"
	"github.com/gestorhq/gestor/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sendTimeout bounds a single provider call so one slow SMTP exchange
// cannot stall the whole batch.
const sendTimeout = 10 * time.Second

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	BillingRepo billingdomain.Repository
	ClientRepo  clientdomain.Repository
	Mailer      email.Provider
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	billingRepo billingdomain.Repository
	clientRepo  clientdomain.Repository
	mailer      email.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("notification.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		billingRepo: p.BillingRepo,
		clientRepo:  p.ClientRepo,
		mailer:      p.Mailer,
	}
}

// Process runs one reminder pass. It loads configuration and pending
// billings up front, then walks every (billing, interval) pair whose
// notification date is today, skipping pairs already recorded in the
// dedup log. A reminder is recorded only after the provider accepted
// it, so a crash between send and record re-sends rather than drops.
func (s *Service) Process(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats

	intervals, err := s.repo.ListIntervals(ctx, s.db)
	if err != nil {
		return stats, fmt.Errorf("list notification intervals: %w", err)
	}
	if len(intervals) == 0 {
		s.log.Info("no notification intervals configured, nothing to do")
		return stats, nil
	}

	template, err := s.repo.FindDefaultTemplate(ctx, s.db, domain.TemplateTypeClients, domain.TemplateSubtypeRecurring)
	if err != nil {
		return stats, fmt.Errorf("find default template: %w", err)
	}
	if template == nil {
		s.log.Warn("no default email template configured, skipping run",
			zap.String("type", domain.TemplateTypeClients),
			zap.String("subtype", domain.TemplateSubtypeRecurring),
		)
		return stats, nil
	}

	billings, err := s.billingRepo.ListByStatus(ctx, s.db, billingdomain.BillingStatusPending)
	if err != nil {
		return stats, fmt.Errorf("list pending billings: %w", err)
	}

	now := s.clock.Now()
	for i := range billings {
		billing := &billings[i]
		stats.Processed++

		dueDate := billingdomain.NextDueDate(billing.DueDay, now)
		for _, interval := range intervals {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			if !domain.IsNotificationDue(dueDate, interval.DaysBefore, now) {
				continue
			}
			s.processReminder(ctx, &stats, billing, template, dueDate, interval.DaysBefore)
		}
	}

	s.log.Info("notification run finished",
		zap.Int("processed", stats.Processed),
		zap.Int("sent", stats.Sent),
		zap.Int("errors", stats.Errors),
	)
	return stats, nil
}

func (s *Service) processReminder(
	ctx context.Context,
	stats *domain.Stats,
	billing *billingdomain.RecurringBilling,
	template *domain.EmailTemplate,
	dueDate time.Time,
	daysBefore int,
) {
	m := metrics.Scheduler()

	sent, err := s.repo.WasSent(ctx, s.db, billing.ID, dueDate, daysBefore)
	if err != nil {
		// Fail open: a broken dedup read must not suppress a
		// reminder. A duplicate send is recoverable, a missed
		// due date is not.
		s.log.Warn("dedup lookup failed, proceeding with send",
			zap.String("billing_id", billing.ID.String()),
			zap.Error(err),
		)
	}
	if sent {
		m.IncNotification("deduplicated")
		return
	}

	client, err := s.clientRepo.FindByID(ctx, s.db, billing.ClientID)
	if err != nil {
		s.log.Error("client lookup failed",
			zap.String("billing_id", billing.ID.String()),
			zap.String("client_id", billing.ClientID.String()),
			zap.Error(err),
		)
		stats.Errors++
		m.IncNotification("error")
		return
	}
	if client == nil || client.Email == "" {
		s.log.Warn("billing has no notifiable client, skipping",
			zap.String("billing_id", billing.ID.String()),
			zap.String("client_id", billing.ClientID.String()),
		)
		m.IncNotification("skipped")
		return
	}

	data := map[string]string{
		render.KeyClientName:         client.Name,
		render.KeyBillingValue:       render.FormatBRL(billing.Amount),
		render.KeyDueDate:            render.FormatDate(dueDate),
		render.KeyPaymentMethod:      render.PaymentMethodName(billing.PaymentMethod),
		render.KeyDescription:        billing.Description,
		render.KeyDaysBefore:         fmt.Sprintf("%d", daysBefore),
		render.KeyInstallments:       fmt.Sprintf("%d", billing.Installments),
		render.KeyCurrentInstallment: fmt.Sprintf("%d", billing.CurrentInstallment),
		render.KeyInstallmentLabel:   render.InstallmentLabel(billing.CurrentInstallment, billing.Installments),
	}
	subject := render.Render(template.Subject, data)
	body := render.Render(template.Body, data)

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	err = s.mailer.Send(sendCtx, []string{client.Email}, subject, body)
	cancel()
	if err != nil {
		s.log.Error("reminder send failed",
			zap.String("billing_id", billing.ID.String()),
			zap.String("client_email", client.Email),
			zap.Int("days_before", daysBefore),
			zap.Error(err),
		)
		stats.Errors++
		m.IncNotification("error")
		return
	}

	stats.Sent++
	m.IncNotification("sent")

	entry := &domain.NotificationLogEntry{
		ID:         s.genID.Generate(),
		BillingID:  billing.ID,
		ClientID:   billing.ClientID,
		DueDate:    dueDate,
		DaysBefore: daysBefore,
		SentAt:     s.clock.Now().UTC(),
	}
	inserted, err := s.repo.RecordSent(ctx, s.db, entry)
	if err != nil {
		// The reminder already went out; a failed log write only
		// risks a duplicate on the next run.
		s.log.Error("dedup log write failed after send",
			zap.String("billing_id", billing.ID.String()),
			zap.Int("days_before", daysBefore),
			zap.Error(err),
		)
		return
	}
	if !inserted {
		s.log.Info("concurrent run already recorded this reminder",
			zap.String("billing_id", billing.ID.String()),
			zap.Int("days_before", daysBefore),
		)
	}
}
