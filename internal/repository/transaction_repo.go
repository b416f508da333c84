package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/model"
)

// ErrTransactionNotFound covers both a missing row and a row owned by a
// different tenant. Cross-tenant lookups never get a distinguishable error.
var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// TransactionFilter narrows List results. Zero values mean "no filter".
type TransactionFilter struct {
	CustomerID string
	Type       string
	Status     string
	StartDate  *time.Time
	EndDate    *time.Time
}

func (r *TransactionRepository) Create(ctx context.Context, tx *gorm.DB, transaction *model.Transaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(transaction).Error
}

func (r *TransactionRepository) GetByID(ctx context.Context, tx *gorm.DB, ownerEmail, id string) (*model.Transaction, error) {
	if tx == nil {
		tx = r.db
	}
	var transaction model.Transaction
	err := tx.WithContext(ctx).
		Where("id = ? AND user_email = ?", id, ownerEmail).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *TransactionRepository) Save(ctx context.Context, tx *gorm.DB, transaction *model.Transaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Save(transaction).Error
}

func (r *TransactionRepository) Delete(ctx context.Context, tx *gorm.DB, ownerEmail, id string) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Where("id = ? AND user_email = ?", id, ownerEmail).
		Delete(&model.Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) List(ctx context.Context, ownerEmail string, filter TransactionFilter) ([]*model.Transaction, error) {
	query := r.db.WithContext(ctx).Where("user_email = ?", ownerEmail)

	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Type != "" {
		query = query.Where("transaction_type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}

	var transactions []*model.Transaction
	err := query.Order("date DESC, created_at DESC").Find(&transactions).Error
	return transactions, err
}

func (r *TransactionRepository) ListByCustomer(ctx context.Context, ownerEmail, customerID string) ([]*model.Transaction, error) {
	var transactions []*model.Transaction
	err := r.db.WithContext(ctx).
		Where("user_email = ? AND customer_id = ?", ownerEmail, customerID).
		Order("date DESC").
		Find(&transactions).Error
	return transactions, err
}

func (r *TransactionRepository) ListByStatus(ctx context.Context, ownerEmail, status string) ([]*model.Transaction, error) {
	var transactions []*model.Transaction
	err := r.db.WithContext(ctx).
		Where("user_email = ? AND status = ?", ownerEmail, status).
		Order("date ASC").
		Find(&transactions).Error
	return transactions, err
}

// ListOverdue returns PENDING transactions dated before the given day.
func (r *TransactionRepository) ListOverdue(ctx context.Context, ownerEmail string, before time.Time) ([]*model.Transaction, error) {
	var transactions []*model.Transaction
	err := r.db.WithContext(ctx).
		Where("user_email = ? AND status = ? AND date < ?", ownerEmail, model.TransactionStatusPending, before).
		Order("date ASC").
		Find(&transactions).Error
	return transactions, err
}

// ListPendingCreditByCustomer returns the customer's open credit entries
// oldest first, the order lump-sum payments settle them in.
func (r *TransactionRepository) ListPendingCreditByCustomer(ctx context.Context, tx *gorm.DB, ownerEmail, customerID string) ([]*model.Transaction, error) {
	if tx == nil {
		tx = r.db
	}
	var transactions []*model.Transaction
	err := tx.WithContext(ctx).
		Where("user_email = ? AND customer_id = ? AND transaction_type = ? AND status = ?",
			ownerEmail, customerID, model.TransactionTypeCredit, model.TransactionStatusPending).
		Order("date ASC, created_at ASC").
		Find(&transactions).Error
	return transactions, err
}

func (r *TransactionRepository) SumByTypeStatusOn(ctx context.Context, ownerEmail, transactionType, status string, date time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_email = ? AND transaction_type = ? AND status = ? AND date = ?",
			ownerEmail, transactionType, status, date).
		Scan(&total).Error
	return total, err
}

func (r *TransactionRepository) SumByTypeStatusBetween(ctx context.Context, ownerEmail, transactionType, status string, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_email = ? AND transaction_type = ? AND status = ? AND date BETWEEN ? AND ?",
			ownerEmail, transactionType, status, start, end).
		Scan(&total).Error
	return total, err
}

// ListDueForReminder feeds the overdue reminder job: PENDING transactions
// past their date, across all owners, not yet reminded.
func (r *TransactionRepository) ListDueForReminder(ctx context.Context, before time.Time, limit int) ([]*model.Transaction, error) {
	var transactions []*model.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND date < ? AND reminder_sent_at IS NULL", model.TransactionStatusPending, before).
		Order("date ASC").
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}

func (r *TransactionRepository) MarkReminded(ctx context.Context, tx *gorm.DB, id string, at time.Time) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ?", id).
		Update("reminder_sent_at", at).Error
}

func (r *TransactionRepository) DeleteByCustomer(ctx context.Context, tx *gorm.DB, ownerEmail, customerID string) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("user_email = ? AND customer_id = ?", ownerEmail, customerID).
		Delete(&model.Transaction{}).Error
}
