package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhq/gestor/internal/cashflow/domain"
	cashflowrepo "github.com/gestorhq/gestor/internal/cashflow/repository"
	"github.com/gestorhq/gestor/internal/clock"
	"github.com/gestorhq/gestor/internal/config"
	paymentdomain "github.com/gestorhq/gestor/internal/payment/domain"
	paymentrepo "github.com/gestorhq/gestor/internal/payment/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   *Service
	clk   *clock.FakeClock
	genID *snowflake.Node
}

func newFixture(t *testing.T, now time.Time, cooldownSeconds int) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&paymentdomain.Payment{},
		&domain.CashFlowEntry{},
	))
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_cash_flow_payment ON cash_flow(payment_id)",
	).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(now)
	holder := config.NewStaticNotificationConfigHolder(config.NotificationConfig{
		SendTime:            "08:00",
		ToleranceMinutes:    5,
		SyncCooldownSeconds: cooldownSeconds,
	})

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Repo:        cashflowrepo.Provide(),
		PaymentRepo: paymentrepo.Provide(),
		Holder:      holder,
	}).(*Service)

	return &fixture{db: db, svc: svc, clk: clk, genID: node}
}

func (f *fixture) seedPayment(t *testing.T, amount string, status paymentdomain.PaymentStatus, paidAt *time.Time) snowflake.ID {
	t.Helper()
	payment := &paymentdomain.Payment{
		ID:          f.genID.Generate(),
		ClientID:    f.genID.Generate(),
		Description: "Pagamento mensalidade",
		Amount:      decimal.RequireFromString(amount),
		Status:      status,
		PaidAt:      paidAt,
	}
	require.NoError(t, f.db.Create(payment).Error)
	return payment.ID
}

func (f *fixture) countEntriesForPayment(t *testing.T, paymentID snowflake.ID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Raw(
		"SELECT COUNT(1) FROM cash_flow WHERE payment_id = ?", paymentID,
	).Scan(&count).Error)
	return count
}

// Two full sync passes must leave exactly one ledger row per paid
// payment.
func TestSyncPaidIsIdempotent(t *testing.T) {
	now := time.Date(2024, time.April, 7, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, now, 0)
	paidAt := now.AddDate(0, 0, -1)
	p1 := f.seedPayment(t, "150.00", paymentdomain.PaymentStatusPaid, &paidAt)
	p2 := f.seedPayment(t, "80.00", paymentdomain.PaymentStatusPaid, &paidAt)
	f.seedPayment(t, "99.00", paymentdomain.PaymentStatusPending, nil)

	result, err := f.svc.SyncPaid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Synced)
	assert.Equal(t, 0, result.Errors)

	result, err = f.svc.SyncPaid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Synced)
	assert.Equal(t, 2, result.Skipped)

	assert.EqualValues(t, 1, f.countEntriesForPayment(t, p1))
	assert.EqualValues(t, 1, f.countEntriesForPayment(t, p2))
}

// The unique constraint, not the in-process cache, is the real dedup:
// a second service instance sharing the database must also produce no
// duplicate rows.
func TestSyncPaidDeduplicatesAcrossInstances(t *testing.T) {
	now := time.Date(2024, time.April, 7, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, now, 0)
	paidAt := now.AddDate(0, 0, -1)
	p1 := f.seedPayment(t, "150.00", paymentdomain.PaymentStatusPaid, &paidAt)

	_, err := f.svc.SyncPaid(context.Background())
	require.NoError(t, err)

	other := New(Params{
		DB:          f.db,
		Log:         zap.NewNop(),
		GenID:       f.genID,
		Clock:       f.clk,
		Repo:        cashflowrepo.Provide(),
		PaymentRepo: paymentrepo.Provide(),
		Holder: config.NewStaticNotificationConfigHolder(config.NotificationConfig{
			SendTime: "08:00", SyncCooldownSeconds: 0,
		}),
	}).(*Service)

	result, err := other.SyncPaid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Synced)
	assert.EqualValues(t, 1, f.countEntriesForPayment(t, p1))
}

func TestSyncPaidCooldown(t *testing.T) {
	now := time.Date(2024, time.April, 7, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, now, 30)
	paidAt := now.AddDate(0, 0, -1)
	f.seedPayment(t, "150.00", paymentdomain.PaymentStatusPaid, &paidAt)

	_, err := f.svc.SyncPaid(context.Background())
	require.NoError(t, err)

	_, err = f.svc.SyncPaid(context.Background())
	assert.ErrorIs(t, err, domain.ErrSyncCooldown)

	f.clk.Advance(31 * time.Second)
	_, err = f.svc.SyncPaid(context.Background())
	require.NoError(t, err)
}

func TestSyncPaidGuardReleasedAfterRun(t *testing.T) {
	now := time.Date(2024, time.April, 7, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, now, 0)

	for i := 0; i < 3; i++ {
		_, err := f.svc.SyncPaid(context.Background())
		require.NoError(t, err, "run %d", i)
	}
}

func TestSyncPaidUsesPaidAtAsEntryDate(t *testing.T) {
	now := time.Date(2024, time.April, 7, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, now, 0)
	paidAt := time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)
	p1 := f.seedPayment(t, "150.00", paymentdomain.PaymentStatusPaid, &paidAt)

	_, err := f.svc.SyncPaid(context.Background())
	require.NoError(t, err)

	// The driver hands date columns back as time.Time, so compare the
	// calendar date rather than the stored text.
	var entryDate time.Time
	require.NoError(t, f.db.Raw(
		"SELECT entry_date FROM cash_flow WHERE payment_id = ?", p1,
	).Scan(&entryDate).Error)
	assert.Equal(t, "2024-03-15", entryDate.Format("2006-01-02"))
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, time.April, 15, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, now, 0)
	ctx := context.Background()

	seed := func(entryType, amount, date string) {
		_, err := f.svc.CreateEntry(ctx, domain.CreateEntryRequest{
			Type:        entryType,
			Amount:      amount,
			Description: "entry",
			EntryDate:   date,
		})
		require.NoError(t, err)
	}

	// Current month: 300 in, 100 out. Previous month: 200 in.
	seed("income", "200.00", "2024-04-05")
	seed("income", "100.00", "2024-04-10")
	seed("expense", "100.00", "2024-04-12")
	seed("income", "200.00", "2024-03-10")

	summary, err := f.svc.Summarize(ctx, "current")
	require.NoError(t, err)
	assert.Equal(t, "R$ 300,00", summary.Income)
	assert.Equal(t, "R$ 100,00", summary.Expense)
	assert.Equal(t, "R$ 200,00", summary.Balance)
	assert.Equal(t, "+50.0%", summary.IncomeChange)
	assert.Equal(t, "+0%", summary.ExpenseChange)
}

func TestSummarizeRange(t *testing.T) {
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, now, 0)
	ctx := context.Background()

	seed := func(entryType, amount, date string) {
		_, err := f.svc.CreateEntry(ctx, domain.CreateEntryRequest{
			Type:        entryType,
			Amount:      amount,
			Description: "entry",
			EntryDate:   date,
		})
		require.NoError(t, err)
	}

	// April (the requested range): 300 in. The 30 days before it: 200 in.
	seed("income", "200.00", "2024-04-05")
	seed("income", "100.00", "2024-04-30")
	seed("income", "200.00", "2024-03-10")

	start := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC)

	summary, err := f.svc.SummarizeRange(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01..2024-04-30", summary.Period)
	assert.Equal(t, "R$ 300,00", summary.Income)
	assert.Equal(t, "+50.0%", summary.IncomeChange)

	_, err = f.svc.SummarizeRange(ctx, end, start)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestSummarizeAllPeriods(t *testing.T) {
	now := time.Date(2024, time.April, 15, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, now, 0)
	ctx := context.Background()

	_, err := f.svc.CreateEntry(ctx, domain.CreateEntryRequest{
		Type: "income", Amount: "50.00", Description: "old", EntryDate: "2020-01-01",
	})
	require.NoError(t, err)

	summary, err := f.svc.Summarize(ctx, "all")
	require.NoError(t, err)
	assert.Equal(t, "R$ 50,00", summary.Income)
	assert.Equal(t, "+0%", summary.IncomeChange)
}

func TestCreateEntryValidation(t *testing.T) {
	now := time.Date(2024, time.April, 15, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, now, 0)
	ctx := context.Background()

	_, err := f.svc.CreateEntry(ctx, domain.CreateEntryRequest{
		Type: "transfer", Amount: "10", Description: "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEntryType)

	_, err = f.svc.CreateEntry(ctx, domain.CreateEntryRequest{
		Type: "income", Amount: "-10", Description: "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.CreateEntry(ctx, domain.CreateEntryRequest{
		Type: "income", Amount: "10", Description: "   ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDesc)

	_, err = f.svc.CreateEntry(ctx, domain.CreateEntryRequest{
		Type: "income", Amount: "10", Description: "x", EntryDate: "15/04/2024",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEntryDate)
}
