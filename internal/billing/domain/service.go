package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreateBillingRequest struct {
	ClientID           string
	Description        string
	Amount             decimal.Decimal
	DueDay             int
	Installments       int
	CurrentInstallment int
	PaymentMethod      string
}

type ListBillingRequest struct {
	Status string
}

type ListBillingResponse struct {
	Billings []RecurringBilling `json:"billings"`
}

type Service interface {
	Create(context.Context, CreateBillingRequest) (RecurringBilling, error)
	List(context.Context, ListBillingRequest) (ListBillingResponse, error)
	UpdateStatus(ctx context.Context, id string, status BillingStatus) error
}

var (
	ErrInvalidClient       = errors.New("invalid_client")
	ErrInvalidDescription  = errors.New("invalid_description")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidDueDay       = errors.New("invalid_due_day")
	ErrInvalidInstallments = errors.New("invalid_installments")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)

// ValidStatus reports whether s is one of the known billing statuses.
func ValidStatus(s BillingStatus) bool {
	switch s {
	case BillingStatusPending, BillingStatusPaid, BillingStatusOverdue,
		BillingStatusCancelled, BillingStatusPartiallyPaid,
		BillingStatusBilled, BillingStatusAwaitingInvoice:
		return true
	default:
		return false
	}
}
