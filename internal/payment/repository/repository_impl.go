package repository

import (
	"context"

	"github.com/gestorhq/gestor/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (id, client_id, description, amount, status, paid_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.ClientID,
		payment.Description,
		payment.Amount,
		payment.Status,
		payment.PaidAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Error
}

func (r *repo) ListPaid(ctx context.Context, db *gorm.DB) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, client_id, description, amount, status, paid_at, created_at, updated_at
		 FROM payments
		 WHERE status = ? AND paid_at IS NOT NULL
		 ORDER BY paid_at ASC, id ASC`,
		domain.PaymentStatusPaid,
	).Scan(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
