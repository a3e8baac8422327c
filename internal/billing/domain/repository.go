package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, billing *RecurringBilling) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*RecurringBilling, error)
	ListByStatus(ctx context.Context, db *gorm.DB, status BillingStatus) ([]RecurringBilling, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status BillingStatus) (bool, error)
}
