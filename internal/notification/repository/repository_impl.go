package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhq/gestor/internal/notification/domain"
	"github.com/gestorhq/gestor/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListIntervals(ctx context.Context, conn *gorm.DB) ([]domain.NotificationInterval, error) {
	var intervals []domain.NotificationInterval
	err := conn.WithContext(ctx).Raw(
		`SELECT id, days_before, created_at
		 FROM email_notification_intervals
		 ORDER BY days_before DESC`,
	).Scan(&intervals).Error
	if err != nil {
		return nil, err
	}
	return intervals, nil
}

func (r *repo) FindDefaultTemplate(ctx context.Context, conn *gorm.DB, templateType, subtype string) (*domain.EmailTemplate, error) {
	var template domain.EmailTemplate
	err := conn.WithContext(ctx).Raw(
		`SELECT id, type, subtype, subject, body, is_default, created_at, updated_at
		 FROM email_templates
		 WHERE type = ? AND subtype = ? AND is_default = ?
		 LIMIT 1`,
		templateType,
		subtype,
		true,
	).Scan(&template).Error
	if err != nil {
		return nil, err
	}
	if template.ID == 0 {
		return nil, nil
	}
	return &template, nil
}

func (r *repo) WasSent(ctx context.Context, conn *gorm.DB, billingID snowflake.ID, dueDate time.Time, daysBefore int) (bool, error) {
	var count int64
	err := conn.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM email_notification_log
		 WHERE billing_id = ? AND due_date = ? AND days_before = ?`,
		billingID,
		dateOnly(dueDate),
		daysBefore,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) RecordSent(ctx context.Context, conn *gorm.DB, entry *domain.NotificationLogEntry) (bool, error) {
	result := conn.WithContext(ctx).Exec(
		`INSERT INTO email_notification_log (id, billing_id, client_id, due_date, days_before, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (billing_id, due_date, days_before) DO NOTHING`,
		entry.ID,
		entry.BillingID,
		entry.ClientID,
		dateOnly(entry.DueDate),
		entry.DaysBefore,
		entry.SentAt,
	)
	if result.Error != nil {
		if db.IsDuplicateKeyErr(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) InsertInterval(ctx context.Context, conn *gorm.DB, interval *domain.NotificationInterval) error {
	return conn.WithContext(ctx).Exec(
		`INSERT INTO email_notification_intervals (id, days_before, created_at)
		 VALUES (?, ?, ?)`,
		interval.ID,
		interval.DaysBefore,
		interval.CreatedAt,
	).Error
}

func (r *repo) InsertTemplate(ctx context.Context, conn *gorm.DB, template *domain.EmailTemplate) error {
	return conn.WithContext(ctx).Exec(
		`INSERT INTO email_templates (id, type, subtype, subject, body, is_default, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		template.ID,
		template.Type,
		template.Subtype,
		template.Subject,
		template.Body,
		template.IsDefault,
		template.CreatedAt,
		template.UpdatedAt,
	).Error
}

// dateOnly normalizes the dedup key to a calendar date so two runs in
// different moments of the same day compare equal.
func dateOnly(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
