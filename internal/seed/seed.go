package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	notificationdomain "github.com/gestorhq/gestor/internal/notification/domain"
	"gorm.io/gorm"
)

const defaultDaysBefore = 3

const (
	defaultTemplateSubject = "Lembrete: {{description}} vence em {{due_date}}"
	defaultTemplateBody    = "<p>Olá {{client_name}},</p>" +
		"<p>Sua cobrança <strong>{{description}}</strong> no valor de {{billing_value}} " +
		"vence em <strong>{{due_date}}</strong>.</p>" +
		"<p>Forma de pagamento: {{payment_method}}.</p>"
)

// EnsureNotificationDefaults seeds one reminder interval and the
// default email template when none exist, so a fresh install sends
// reminders without any manual setup.
func EnsureNotificationDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureDefaultInterval(ctx, tx, node); err != nil {
			return err
		}
		return ensureDefaultTemplate(ctx, tx, node)
	})
}

func ensureDefaultInterval(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&notificationdomain.NotificationInterval{}).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return tx.WithContext(ctx).Create(&notificationdomain.NotificationInterval{
		ID:         node.Generate(),
		DaysBefore: defaultDaysBefore,
		CreatedAt:  time.Now().UTC(),
	}).Error
}

func ensureDefaultTemplate(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&notificationdomain.EmailTemplate{}).
		Where("type = ? AND subtype = ? AND is_default = ?",
			notificationdomain.TemplateTypeClients,
			notificationdomain.TemplateSubtypeRecurring,
			true,
		).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	return tx.WithContext(ctx).Create(&notificationdomain.EmailTemplate{
		ID:        node.Generate(),
		Type:      notificationdomain.TemplateTypeClients,
		Subtype:   notificationdomain.TemplateSubtypeRecurring,
		Subject:   defaultTemplateSubject,
		Body:      defaultTemplateBody,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}
