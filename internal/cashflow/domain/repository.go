package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhq/gestor/internal/period"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Totals aggregates a date range of ledger lines.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *CashFlowEntry) error
	// UpsertFromPayment inserts the mirror entry for a payment and
	// reports whether a row was actually created. An existing entry
	// for the same payment makes this a no-op.
	UpsertFromPayment(ctx context.Context, db *gorm.DB, entry *CashFlowEntry) (bool, error)
	ListSyncedPaymentIDs(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error)
	ListByRange(ctx context.Context, db *gorm.DB, r period.Range) ([]CashFlowEntry, error)
	SumByRange(ctx context.Context, db *gorm.DB, start, end time.Time, unbounded bool) (Totals, error)
}
