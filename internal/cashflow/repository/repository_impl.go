package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gestorhq/gestor/internal/cashflow/domain"
	"github.com/gestorhq/gestor/internal/period"
	"github.com/gestorhq/gestor/pkg/db"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, entry *domain.CashFlowEntry) error {
	return conn.WithContext(ctx).Exec(
		`INSERT INTO cash_flow (id, type, amount, description, category, entry_date, payment_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Type,
		entry.Amount,
		entry.Description,
		entry.Category,
		dateOnly(entry.EntryDate),
		entry.PaymentID,
		entry.CreatedAt,
	).Error
}

func (r *repo) UpsertFromPayment(ctx context.Context, conn *gorm.DB, entry *domain.CashFlowEntry) (bool, error) {
	result := conn.WithContext(ctx).Exec(
		`INSERT INTO cash_flow (id, type, amount, description, category, entry_date, payment_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (payment_id) DO NOTHING`,
		entry.ID,
		entry.Type,
		entry.Amount,
		entry.Description,
		entry.Category,
		dateOnly(entry.EntryDate),
		entry.PaymentID,
		entry.CreatedAt,
	)
	if result.Error != nil {
		if db.IsDuplicateKeyErr(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) ListSyncedPaymentIDs(ctx context.Context, conn *gorm.DB) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := conn.WithContext(ctx).Raw(
		`SELECT payment_id FROM cash_flow WHERE payment_id IS NOT NULL`,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) ListByRange(ctx context.Context, conn *gorm.DB, rng period.Range) ([]domain.CashFlowEntry, error) {
	var entries []domain.CashFlowEntry
	query := `SELECT id, type, amount, description, category, entry_date, payment_id, created_at
		 FROM cash_flow`
	args := []any{}
	if !rng.All {
		query += ` WHERE entry_date >= ? AND entry_date < ?`
		args = append(args, dateOnly(rng.Start), dateOnly(rng.End))
	}
	query += ` ORDER BY entry_date DESC, id DESC`

	err := conn.WithContext(ctx).Raw(query, args...).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) SumByRange(ctx context.Context, conn *gorm.DB, start, end time.Time, unbounded bool) (domain.Totals, error) {
	var rows []struct {
		Type  string
		Total decimal.Decimal
	}

	query := `SELECT type, COALESCE(SUM(amount), 0) AS total FROM cash_flow`
	args := []any{}
	if !unbounded {
		query += ` WHERE entry_date >= ? AND entry_date < ?`
		args = append(args, dateOnly(start), dateOnly(end))
	}
	query += ` GROUP BY type`

	err := conn.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	if err != nil {
		return domain.Totals{}, err
	}

	totals := domain.Totals{}
	for _, row := range rows {
		switch domain.EntryType(row.Type) {
		case domain.EntryTypeIncome:
			totals.Income = row.Total
		case domain.EntryTypeExpense:
			totals.Expense = row.Total
		}
	}
	return totals, nil
}

func dateOnly(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
