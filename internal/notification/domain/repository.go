package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListIntervals(ctx context.Context, db *gorm.DB) ([]NotificationInterval, error)
	// FindDefaultTemplate returns nil when no default exists for the
	// pair; that is a "nothing to do" state, not an error.
	FindDefaultTemplate(ctx context.Context, db *gorm.DB, templateType, subtype string) (*EmailTemplate, error)
	WasSent(ctx context.Context, db *gorm.DB, billingID snowflake.ID, dueDate time.Time, daysBefore int) (bool, error)
	// RecordSent inserts the dedup entry atomically; a conflict on the
	// (billing_id, due_date, days_before) key reports inserted=false
	// with no error.
	RecordSent(ctx context.Context, db *gorm.DB, entry *NotificationLogEntry) (bool, error)
	InsertInterval(ctx context.Context, db *gorm.DB, interval *NotificationInterval) error
	InsertTemplate(ctx context.Context, db *gorm.DB, template *EmailTemplate) error
}
