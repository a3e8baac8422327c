package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment records money received against a billing or invoice. Paid
// payments feed the cash-flow reconciler.
type Payment struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	ClientID    snowflake.ID    `gorm:"not null;index" json:"client_id"`
	Description string          `gorm:"not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Status      PaymentStatus   `gorm:"type:text;not null;default:'pending'" json:"status"`
	PaidAt      *time.Time      `gorm:"" json:"paid_at,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
