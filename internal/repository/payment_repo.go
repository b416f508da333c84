package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, tx *gorm.DB, record *model.PaymentRecord) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(record).Error
}

func (r *PaymentRepository) CreateAllocation(ctx context.Context, tx *gorm.DB, allocation *model.TransactionPayment) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(allocation).Error
}

// AllocatedAmount sums what earlier payments already applied against one
// credit transaction, so a new allocation only covers the remainder.
func (r *PaymentRepository) AllocatedAmount(ctx context.Context, tx *gorm.DB, transactionID string) (decimal.Decimal, error) {
	if tx == nil {
		tx = r.db
	}
	var total decimal.Decimal
	err := tx.WithContext(ctx).
		Model(&model.TransactionPayment{}).
		Select("COALESCE(SUM(amount_applied), 0)").
		Where("transaction_id = ?", transactionID).
		Scan(&total).Error
	return total, err
}

func (r *PaymentRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]*model.PaymentRecord, error) {
	var records []*model.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("user_email = ?", ownerEmail).
		Order("payment_date DESC, created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *PaymentRepository) ListByCustomer(ctx context.Context, ownerEmail, customerID string) ([]*model.PaymentRecord, error) {
	var records []*model.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("user_email = ? AND customer_id = ?", ownerEmail, customerID).
		Order("payment_date DESC, created_at DESC").
		Find(&records).Error
	return records, err
}

// DeleteByCustomer removes a customer's payment records and their
// allocations. Used by the explicit customer delete path; there are no ORM
// cascades.
func (r *PaymentRepository) DeleteByCustomer(ctx context.Context, tx *gorm.DB, ownerEmail, customerID string) error {
	if tx == nil {
		tx = r.db
	}
	subquery := tx.Model(&model.PaymentRecord{}).
		Select("id").
		Where("user_email = ? AND customer_id = ?", ownerEmail, customerID)
	if err := tx.WithContext(ctx).
		Where("payment_record_id IN (?)", subquery).
		Delete(&model.TransactionPayment{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).
		Where("user_email = ? AND customer_id = ?", ownerEmail, customerID).
		Delete(&model.PaymentRecord{}).Error
}
