package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// BillingStatus tracks a recurring billing through its lifecycle. Only
// pending billings are eligible for reminder notifications; cancellation
// is a status change, never a physical delete.
type BillingStatus string

const (
	BillingStatusPending         BillingStatus = "pending"
	BillingStatusPaid            BillingStatus = "paid"
	BillingStatusOverdue         BillingStatus = "overdue"
	BillingStatusCancelled       BillingStatus = "cancelled"
	BillingStatusPartiallyPaid   BillingStatus = "partially_paid"
	BillingStatusBilled          BillingStatus = "billed"
	BillingStatusAwaitingInvoice BillingStatus = "awaiting_invoice"
)

// RecurringBilling is a contractual charge that repeats monthly on a
// fixed day-of-month.
type RecurringBilling struct {
	ID                 snowflake.ID      `gorm:"primaryKey" json:"id"`
	ClientID           snowflake.ID      `gorm:"not null;index" json:"client_id"`
	Description        string            `gorm:"not null" json:"description"`
	Amount             decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"amount"`
	DueDay             int               `gorm:"not null" json:"due_day"`
	Status             BillingStatus     `gorm:"type:text;not null;default:'pending'" json:"status"`
	Installments       int               `gorm:"not null;default:1" json:"installments"`
	CurrentInstallment int               `gorm:"not null;default:1" json:"current_installment"`
	PaymentMethod      string            `gorm:"column:payment_method" json:"payment_method,omitempty"`
	Metadata           datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (RecurringBilling) TableName() string { return "recurring_billings" }
