package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhq/gestor/internal/billing/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, billing *domain.RecurringBilling) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO recurring_billings (
			id, client_id, description, amount, due_day, status,
			installments, current_installment, payment_method, metadata,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		billing.ID,
		billing.ClientID,
		billing.Description,
		billing.Amount,
		billing.DueDay,
		billing.Status,
		billing.Installments,
		billing.CurrentInstallment,
		billing.PaymentMethod,
		billing.Metadata,
		billing.CreatedAt,
		billing.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.RecurringBilling, error) {
	var billing domain.RecurringBilling
	err := db.WithContext(ctx).Raw(
		`SELECT id, client_id, description, amount, due_day, status,
		        installments, current_installment, payment_method, metadata,
		        created_at, updated_at
		 FROM recurring_billings WHERE id = ?`,
		id,
	).Scan(&billing).Error
	if err != nil {
		return nil, err
	}
	if billing.ID == 0 {
		return nil, nil
	}
	return &billing, nil
}

func (r *repo) ListByStatus(ctx context.Context, db *gorm.DB, status domain.BillingStatus) ([]domain.RecurringBilling, error) {
	var billings []domain.RecurringBilling
	err := db.WithContext(ctx).Raw(
		`SELECT id, client_id, description, amount, due_day, status,
		        installments, current_installment, payment_method, metadata,
		        created_at, updated_at
		 FROM recurring_billings
		 WHERE status = ?
		 ORDER BY due_day ASC, id ASC`,
		status,
	).Scan(&billings).Error
	if err != nil {
		return nil, err
	}
	return billings, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.BillingStatus) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE recurring_billings SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		time.Now().UTC(),
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
