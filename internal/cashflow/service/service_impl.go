package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhq/gestor/internal/cashflow/domain"
	"github.com/gestorhq/gestor/internal/clock"
	"github.com/gestorhq/gestor/internal/config"
	"github.com/gestorhq/gestor/internal/metrics"
	"github.com/gestorhq/gestor/internal/notification/render"
	paymentdomain "github.com/gestorhq/gestor/internal/payment/domain"
	"github.com/gestorhq/gestor/internal/period"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// syncCategory labels ledger entries mirrored from payments so manual
// entries stay distinguishable.
const syncCategory = "recebimentos"

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	PaymentRepo paymentdomain.Repository
	Holder      *config.NotificationConfigHolder
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	paymentRepo paymentdomain.Repository
	holder      *config.NotificationConfigHolder

	// The guard collapses concurrent and rapid-fire sync triggers into
	// one effective run. lastRun starts zero so the first trigger after
	// process start always runs.
	mu      sync.Mutex
	running bool
	lastRun time.Time
	synced  map[snowflake.ID]struct{}
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("cashflow.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		paymentRepo: p.PaymentRepo,
		holder:      p.Holder,
		synced:      make(map[snowflake.ID]struct{}),
	}
}

func (s *Service) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return domain.ErrSyncInProgress
	}
	cooldown := s.holder.Get().SyncCooldown()
	if !s.lastRun.IsZero() && s.clock.Now().Sub(s.lastRun) < cooldown {
		return domain.ErrSyncCooldown
	}
	s.running = true
	return nil
}

func (s *Service) release() {
	s.mu.Lock()
	s.running = false
	s.lastRun = s.clock.Now()
	s.mu.Unlock()
}

// SyncPaid mirrors every paid payment into the cash-flow ledger as an
// income entry. The unique payment_id constraint is the source of
// truth for "already mirrored"; the process-local cache only saves
// round trips. The pass is all-settled: one bad payment does not stop
// the rest, and the joined error carries every failure.
func (s *Service) SyncPaid(ctx context.Context) (domain.SyncResult, error) {
	var result domain.SyncResult

	if err := s.acquire(); err != nil {
		return result, err
	}
	defer s.release()

	payments, err := s.paymentRepo.ListPaid(ctx, s.db)
	if err != nil {
		return result, fmt.Errorf("list paid payments: %w", err)
	}

	knownIDs, err := s.repo.ListSyncedPaymentIDs(ctx, s.db)
	if err != nil {
		return result, fmt.Errorf("list synced payment ids: %w", err)
	}
	s.mu.Lock()
	for _, id := range knownIDs {
		s.synced[id] = struct{}{}
	}
	s.mu.Unlock()

	var errs []error
	for i := range payments {
		payment := &payments[i]

		s.mu.Lock()
		_, seen := s.synced[payment.ID]
		s.mu.Unlock()
		if seen {
			result.Skipped++
			continue
		}

		inserted, err := s.syncOne(ctx, payment)
		if err != nil {
			s.log.Error("cash-flow sync failed for payment",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err),
			)
			result.Errors++
			errs = append(errs, fmt.Errorf("payment %s: %w", payment.ID, err))
			continue
		}

		s.mu.Lock()
		s.synced[payment.ID] = struct{}{}
		s.mu.Unlock()

		if inserted {
			result.Synced++
		} else {
			result.Skipped++
		}
	}

	metrics.Scheduler().AddCashflowSynced(result.Synced)
	s.log.Info("cash-flow sync finished",
		zap.Int("synced", result.Synced),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors),
	)
	return result, errors.Join(errs...)
}

func (s *Service) syncOne(ctx context.Context, payment *paymentdomain.Payment) (bool, error) {
	entryDate := s.clock.Now()
	if payment.PaidAt != nil {
		entryDate = *payment.PaidAt
	}
	paymentID := payment.ID
	entry := &domain.CashFlowEntry{
		ID:          s.genID.Generate(),
		Type:        domain.EntryTypeIncome,
		Amount:      payment.Amount,
		Description: payment.Description,
		Category:    syncCategory,
		EntryDate:   entryDate,
		PaymentID:   &paymentID,
		CreatedAt:   s.clock.Now().UTC(),
	}
	return s.repo.UpsertFromPayment(ctx, s.db, entry)
}

func (s *Service) Summarize(ctx context.Context, periodToken string) (domain.Summary, error) {
	rng := period.Resolve(periodToken, s.clock.Now())
	return s.summarizeRange(ctx, strings.TrimSpace(periodToken), rng)
}

// SummarizeRange treats both bounds as inclusive calendar dates.
func (s *Service) SummarizeRange(ctx context.Context, start, end time.Time) (domain.Summary, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return domain.Summary{}, domain.ErrInvalidDateRange
	}
	rng := period.ResolveCustom(start, end.AddDate(0, 0, 1))
	label := fmt.Sprintf("%s..%s", rng.Start.Format("2006-01-02"), rng.End.AddDate(0, 0, -1).Format("2006-01-02"))
	return s.summarizeRange(ctx, label, rng)
}

func (s *Service) summarizeRange(ctx context.Context, label string, rng period.Range) (domain.Summary, error) {
	current, err := s.repo.SumByRange(ctx, s.db, rng.Start, rng.End, rng.All)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("sum current period: %w", err)
	}

	previous := domain.Totals{}
	if !rng.All {
		previous, err = s.repo.SumByRange(ctx, s.db, rng.CompareStart, rng.CompareEnd, false)
		if err != nil {
			return domain.Summary{}, fmt.Errorf("sum comparison period: %w", err)
		}
	}

	return domain.Summary{
		Period:        label,
		Income:        render.FormatBRL(current.Income),
		Expense:       render.FormatBRL(current.Expense),
		Balance:       render.FormatBRL(current.Balance()),
		IncomeChange:  period.PercentChange(current.Income, previous.Income),
		ExpenseChange: period.PercentChange(current.Expense, previous.Expense),
	}, nil
}

func (s *Service) CreateEntry(ctx context.Context, req domain.CreateEntryRequest) (domain.CashFlowEntry, error) {
	entryType := domain.EntryType(strings.ToLower(strings.TrimSpace(req.Type)))
	if entryType != domain.EntryTypeIncome && entryType != domain.EntryTypeExpense {
		return domain.CashFlowEntry{}, domain.ErrInvalidEntryType
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		return domain.CashFlowEntry{}, domain.ErrInvalidAmount
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.CashFlowEntry{}, domain.ErrInvalidDesc
	}

	entryDate := s.clock.Now()
	if raw := strings.TrimSpace(req.EntryDate); raw != "" {
		entryDate, err = time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return domain.CashFlowEntry{}, domain.ErrInvalidEntryDate
		}
	}

	entry := domain.CashFlowEntry{
		ID:          s.genID.Generate(),
		Type:        entryType,
		Amount:      amount,
		Description: description,
		Category:    strings.TrimSpace(req.Category),
		EntryDate:   entryDate,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return domain.CashFlowEntry{}, err
	}
	return entry, nil
}
