package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/gestorhq/gestor/internal/billing/domain"
	billingrepo "github.com/gestorhq/gestor/internal/billing/repository"
	clientdomain "github.com/gestorhq/gestor/internal/client/domain"
	clientrepo "github.com/gestorhq/gestor/internal/client/repository"
	"github.com/gestorhq/gestor/internal/clock"
	"github.com/gestorhq/gestor/internal/notification/domain"
	notificationrepo "github.com/gestorhq/gestor/internal/notification/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	sent     []sentMail
	failNext bool
}

func (m *fakeMailer) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	if m.failNext {
		m.failNext = false
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

type fixture struct {
	db     *gorm.DB
	svc    domain.Service
	repo   domain.Repository
	mailer *fakeMailer
	clk    *clock.FakeClock
	genID  *snowflake.Node
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&clientdomain.Client{},
		&billingdomain.RecurringBilling{},
		&domain.NotificationInterval{},
		&domain.EmailTemplate{},
		&domain.NotificationLogEntry{},
	))

	// ON CONFLICT needs the unique index to exist under this exact
	// column set.
	require.NoError(t, db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_notification_log_dedup ON email_notification_log(billing_id, due_date, days_before)",
	).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	mailer := &fakeMailer{}
	clk := clock.NewFakeClock(now)
	repo := notificationrepo.Provide()

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Repo:        repo,
		BillingRepo: billingrepo.Provide(),
		ClientRepo:  clientrepo.Provide(),
		Mailer:      mailer,
	})

	return &fixture{db: db, svc: svc, repo: repo, mailer: mailer, clk: clk, genID: node}
}

func (f *fixture) seedInterval(t *testing.T, daysBefore int) {
	t.Helper()
	require.NoError(t, f.repo.InsertInterval(context.Background(), f.db, &domain.NotificationInterval{
		ID:         f.genID.Generate(),
		DaysBefore: daysBefore,
		CreatedAt:  f.clk.Now(),
	}))
}

func (f *fixture) seedTemplate(t *testing.T) {
	t.Helper()
	require.NoError(t, f.repo.InsertTemplate(context.Background(), f.db, &domain.EmailTemplate{
		ID:        f.genID.Generate(),
		Type:      domain.TemplateTypeClients,
		Subtype:   domain.TemplateSubtypeRecurring,
		Subject:   "Lembrete: {{description}} vence em {{due_date}}",
		Body:      "Olá {{client_name}}, sua cobrança de {{billing_value}} vence em {{due_date}}.",
		IsDefault: true,
		CreatedAt: f.clk.Now(),
		UpdatedAt: f.clk.Now(),
	}))
}

func (f *fixture) seedClient(t *testing.T, name, email string) snowflake.ID {
	t.Helper()
	client := &clientdomain.Client{
		ID:    f.genID.Generate(),
		Name:  name,
		Email: email,
	}
	require.NoError(t, f.db.Create(client).Error)
	return client.ID
}

func (f *fixture) seedBilling(t *testing.T, clientID snowflake.ID, dueDay int, amount string) snowflake.ID {
	t.Helper()
	billing := &billingdomain.RecurringBilling{
		ID:                 f.genID.Generate(),
		ClientID:           clientID,
		Description:        "Mensalidade",
		Amount:             decimal.RequireFromString(amount),
		DueDay:             dueDay,
		Status:             billingdomain.BillingStatusPending,
		Installments:       1,
		CurrentInstallment: 1,
		PaymentMethod:      "pix",
	}
	require.NoError(t, f.db.Create(billing).Error)
	return billing.ID
}

// Running twice on the same day must not deliver the same reminder
// twice.
func TestProcessIsIdempotentWithinADay(t *testing.T) {
	today := time.Date(2024, time.April, 7, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, today)
	f.seedInterval(t, 3)
	f.seedTemplate(t)
	clientID := f.seedClient(t, "Maria Silva", "maria@example.com")
	f.seedBilling(t, clientID, 10, "150.00")

	stats, err := f.svc.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Sent)
	assert.Equal(t, 0, stats.Errors)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, []string{"maria@example.com"}, f.mailer.sent[0].to)

	stats, err = f.svc.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 0, stats.Sent)
	assert.Len(t, f.mailer.sent, 1)
}

// Due day 10, interval 3 days: the reminder goes out on the 7th and on
// no other day.
func TestProcessSendsOnlyOnNotificationDate(t *testing.T) {
	for _, tc := range []struct {
		day      int
		wantSent int
	}{
		{6, 0},
		{7, 1},
		{8, 0},
	} {
		today := time.Date(2024, time.April, tc.day, 8, 0, 0, 0, time.UTC)
		f := newFixture(t, today)
		f.seedInterval(t, 3)
		f.seedTemplate(t)
		clientID := f.seedClient(t, "Maria Silva", "maria@example.com")
		f.seedBilling(t, clientID, 10, "150.00")

		stats, err := f.svc.Process(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tc.wantSent, stats.Sent, "day %d", tc.day)
	}
}

func TestProcessRendersTemplateData(t *testing.T) {
	today := time.Date(2024, time.April, 7, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, today)
	f.seedInterval(t, 3)

	// Mixes snake_case keys with their camelCase aliases; both must
	// resolve against the same data map.
	require.NoError(t, f.repo.InsertTemplate(context.Background(), f.db, &domain.EmailTemplate{
		ID:        f.genID.Generate(),
		Type:      domain.TemplateTypeClients,
		Subtype:   domain.TemplateSubtypeRecurring,
		Subject:   "Lembrete: {{description}} vence em {{dueDate}}",
		Body:      "Olá {{recipientName}}, sua cobrança de {{billingValue}} ({{installment_label}}) vence em {{due_date}}.",
		IsDefault: true,
		CreatedAt: f.clk.Now(),
		UpdatedAt: f.clk.Now(),
	}))

	clientID := f.seedClient(t, "Maria Silva", "maria@example.com")
	billingID := f.seedBilling(t, clientID, 10, "1234.50")
	require.NoError(t, f.db.Exec(
		"UPDATE recurring_billings SET installments = 12, current_installment = 2 WHERE id = ?",
		billingID,
	).Error)

	_, err := f.svc.Process(context.Background())
	require.NoError(t, err)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "Lembrete: Mensalidade vence em 10/04/2024", f.mailer.sent[0].subject)
	assert.Equal(t, "Olá Maria Silva, sua cobrança de R$ 1.234,50 (parcela 2/12) vence em 10/04/2024.", f.mailer.sent[0].body)
}

func TestProcessNoIntervalsIsANoOp(t *testing.T) {
	today := time.Date(2024, time.April, 7, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, today)
	f.seedTemplate(t)
	clientID := f.seedClient(t, "Maria Silva", "maria@example.com")
	f.seedBilling(t, clientID, 10, "150.00")

	stats, err := f.svc.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{}, stats)
	assert.Empty(t, f.mailer.sent)
}

func TestProcessNoDefaultTemplateIsANoOp(t *testing.T) {
	today := time.Date(2024, time.April, 7, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, today)
	f.seedInterval(t, 3)
	clientID := f.seedClient(t, "Maria Silva", "maria@example.com")
	f.seedBilling(t, clientID, 10, "150.00")

	stats, err := f.svc.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{}, stats)
	assert.Empty(t, f.mailer.sent)
}

// A failed send must not write a dedup record, so the next run gets to
// retry.
func TestProcessRetriesAfterSendFailure(t *testing.T) {
	today := time.Date(2024, time.April, 7, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, today)
	f.seedInterval(t, 3)
	f.seedTemplate(t)
	clientID := f.seedClient(t, "Maria Silva", "maria@example.com")
	billingID := f.seedBilling(t, clientID, 10, "150.00")

	f.mailer.failNext = true
	stats, err := f.svc.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 0, stats.Sent)

	dueDate := billingdomain.NextDueDate(10, today)
	sent, err := f.repo.WasSent(context.Background(), f.db, billingID, dueDate, 3)
	require.NoError(t, err)
	assert.False(t, sent)

	stats, err = f.svc.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sent)
	assert.Equal(t, 0, stats.Errors)
	assert.Len(t, f.mailer.sent, 1)
}

func TestProcessSkipsBillingWithoutClient(t *testing.T) {
	today := time.Date(2024, time.April, 7, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, today)
	f.seedInterval(t, 3)
	f.seedTemplate(t)
	f.seedBilling(t, snowflake.ID(999999), 10, "150.00")

	stats, err := f.svc.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 0, stats.Sent)
	assert.Equal(t, 0, stats.Errors)
	assert.Empty(t, f.mailer.sent)
}

func TestProcessMultipleIntervals(t *testing.T) {
	// Intervals 3 and 0: on the due date itself only the 0-day
	// reminder fires.
	today := time.Date(2024, time.April, 10, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, today)
	f.seedInterval(t, 3)
	f.seedInterval(t, 0)
	f.seedTemplate(t)
	clientID := f.seedClient(t, "Maria Silva", "maria@example.com")
	f.seedBilling(t, clientID, 10, "150.00")

	stats, err := f.svc.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sent)
}

func TestProcessIgnoresNonPendingBillings(t *testing.T) {
	today := time.Date(2024, time.April, 7, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, today)
	f.seedInterval(t, 3)
	f.seedTemplate(t)
	clientID := f.seedClient(t, "Maria Silva", "maria@example.com")
	billingID := f.seedBilling(t, clientID, 10, "150.00")
	require.NoError(t, f.db.Exec(
		"UPDATE recurring_billings SET status = ? WHERE id = ?",
		string(billingdomain.BillingStatusPaid), billingID,
	).Error)

	stats, err := f.svc.Process(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Processed)
	assert.Empty(t, f.mailer.sent)
}

func TestRecordSentIsAtomicOnConflict(t *testing.T) {
	today := time.Date(2024, time.April, 7, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, today)
	ctx := context.Background()

	dueDate := time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC)
	entry := func() *domain.NotificationLogEntry {
		return &domain.NotificationLogEntry{
			ID:         f.genID.Generate(),
			BillingID:  snowflake.ID(42),
			ClientID:   snowflake.ID(7),
			DueDate:    dueDate,
			DaysBefore: 3,
			SentAt:     today,
		}
	}

	inserted, err := f.repo.RecordSent(ctx, f.db, entry())
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = f.repo.RecordSent(ctx, f.db, entry())
	require.NoError(t, err)
	assert.False(t, inserted)
}
