package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TemplateTypeClients and TemplateSubtypeRecurring identify the single
// default template the reminder pipeline depends on.
const (
	TemplateTypeClients      = "clients"
	TemplateSubtypeRecurring = "recurring"
)

// NotificationInterval is an admin-configured days-before offset used to
// schedule a reminder ahead of a due date.
type NotificationInterval struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	DaysBefore int          `gorm:"not null" json:"days_before"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (NotificationInterval) TableName() string { return "email_notification_intervals" }

// EmailTemplate holds subject/body text for a (type, subtype) pair.
// Exactly one default is expected per pair.
type EmailTemplate struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Type      string       `gorm:"type:text;not null;index:ix_email_templates_kind" json:"type"`
	Subtype   string       `gorm:"type:text;not null;index:ix_email_templates_kind" json:"subtype"`
	Subject   string       `gorm:"not null" json:"subject"`
	Body      string       `gorm:"not null" json:"body"`
	IsDefault bool         `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (EmailTemplate) TableName() string { return "email_templates" }

// NotificationLogEntry is the deduplication record. The
// (billing_id, due_date, days_before) triple is unique at the store
// level, so concurrent runs cannot log the same reminder twice.
type NotificationLogEntry struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	BillingID  snowflake.ID `gorm:"not null;uniqueIndex:ux_notification_log_dedup,priority:1" json:"billing_id"`
	ClientID   snowflake.ID `gorm:"not null;index" json:"client_id"`
	DueDate    time.Time    `gorm:"type:date;not null;uniqueIndex:ux_notification_log_dedup,priority:2" json:"due_date"`
	DaysBefore int          `gorm:"not null;uniqueIndex:ux_notification_log_dedup,priority:3" json:"days_before"`
	SentAt     time.Time    `gorm:"not null" json:"sent_at"`
}

// TableName sets the database table name.
func (NotificationLogEntry) TableName() string { return "email_notification_log" }
