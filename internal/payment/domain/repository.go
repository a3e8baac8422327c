package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	// ListPaid returns payments with status "paid" and a non-null paid
	// date, which is the reconciler's source set.
	ListPaid(ctx context.Context, db *gorm.DB) ([]Payment, error)
}
