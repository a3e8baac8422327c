package domain

import (
	"context"
	"errors"
	"time"
)

// SyncResult summarizes one reconciler pass. Skipped counts payments
// already mirrored, either by the unique constraint or by the
// process-local cache.
type SyncResult struct {
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Summary is the report payload for one resolved period, with the
// percentage change against the immediately preceding window.
type Summary struct {
	Period        string `json:"period"`
	Income        string `json:"income"`
	Expense       string `json:"expense"`
	Balance       string `json:"balance"`
	IncomeChange  string `json:"income_change"`
	ExpenseChange string `json:"expense_change"`
}

type CreateEntryRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	EntryDate   string `json:"entry_date"`
}

type Service interface {
	// SyncPaid mirrors paid payments into the ledger. Concurrent and
	// rapid-fire invocations collapse into one effective run; callers
	// getting ErrSyncInProgress or ErrSyncCooldown should treat the
	// call as satisfied.
	SyncPaid(ctx context.Context) (SyncResult, error)
	Summarize(ctx context.Context, periodToken string) (Summary, error)
	// SummarizeRange reports on caller-supplied bounds instead of a
	// period token, compared against the window of identical duration
	// immediately preceding start.
	SummarizeRange(ctx context.Context, start, end time.Time) (Summary, error)
	CreateEntry(ctx context.Context, req CreateEntryRequest) (CashFlowEntry, error)
}

var (
	ErrSyncInProgress   = errors.New("sync_in_progress")
	ErrSyncCooldown     = errors.New("sync_cooldown")
	ErrInvalidEntryType = errors.New("invalid_entry_type")
	ErrInvalidDateRange = errors.New("invalid_date_range")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidEntryDate = errors.New("invalid_entry_date")
	ErrInvalidDesc      = errors.New("invalid_description")
)
