package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// EntryType splits the ledger into money in and money out.
type EntryType string

const (
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
)

// CashFlowEntry is one ledger line. Entries synced from payments carry
// the source PaymentID; the column is unique so the same payment can
// never be mirrored twice.
type CashFlowEntry struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	Type        EntryType       `gorm:"type:text;not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Description string          `gorm:"not null" json:"description"`
	Category    string          `gorm:"column:category" json:"category,omitempty"`
	EntryDate   time.Time       `gorm:"type:date;not null;index" json:"entry_date"`
	PaymentID   *snowflake.ID   `gorm:"uniqueIndex:ux_cash_flow_payment" json:"payment_id,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (CashFlowEntry) TableName() string { return "cash_flow" }
