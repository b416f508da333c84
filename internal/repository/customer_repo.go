package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/model"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrDuplicateMobile  = errors.New("customer with this mobile number already exists")
	// ErrConcurrentUpdate means the customer row changed between read and
	// write. The caller re-reads and retries the whole unit.
	ErrConcurrentUpdate = errors.New("customer was modified concurrently")
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// CustomerFilter narrows List results. Zero values mean "no filter".
type CustomerFilter struct {
	Category string
	Active   *bool
	Search   string // matches name or mobile, substring
}

func (r *CustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *CustomerRepository) GetByID(ctx context.Context, tx *gorm.DB, ownerEmail, id string) (*model.Customer, error) {
	if tx == nil {
		tx = r.db
	}
	var customer model.Customer
	err := tx.WithContext(ctx).
		Where("id = ? AND user_email = ?", id, ownerEmail).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) ExistsByMobile(ctx context.Context, ownerEmail, mobile string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("user_email = ? AND mobile = ?", ownerEmail, mobile).
		Count(&count).Error
	return count > 0, err
}

// Update persists the display fields of a customer. TotalDue, Version and
// LastTransactionDate are deliberately excluded: the balance only moves
// through SaveBalance.
func (r *CustomerRepository) Update(ctx context.Context, customer *model.Customer) error {
	result := r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ? AND user_email = ?", customer.ID, customer.UserEmail).
		Updates(map[string]interface{}{
			"name":      customer.Name,
			"mobile":    customer.Mobile,
			"address":   customer.Address,
			"category":  customer.Category,
			"notes":     customer.Notes,
			"is_active": customer.IsActive,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// SaveBalance writes TotalDue and LastTransactionDate with a compare-and-swap
// on the version column. RowsAffected == 0 means another writer got there
// first; the caller retries with a fresh read. This is what serializes
// concurrent balance mutations for the same customer.
func (r *CustomerRepository) SaveBalance(ctx context.Context, tx *gorm.DB, customer *model.Customer) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.Customer{}).
		Where("id = ? AND user_email = ? AND version = ?", customer.ID, customer.UserEmail, customer.Version).
		Updates(map[string]interface{}{
			"total_due":             customer.TotalDue,
			"last_transaction_date": customer.LastTransactionDate,
			"version":               gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}
	customer.Version++
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, tx *gorm.DB, ownerEmail, id string) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Where("id = ? AND user_email = ?", id, ownerEmail).
		Delete(&model.Customer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) List(ctx context.Context, ownerEmail string, filter CustomerFilter) ([]*model.Customer, error) {
	query := r.db.WithContext(ctx).Where("user_email = ?", ownerEmail)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR mobile LIKE ?", pattern, pattern)
	}

	var customers []*model.Customer
	err := query.Order("name ASC").Find(&customers).Error
	return customers, err
}

// Outstanding returns active customers that still owe money, largest debt
// first.
func (r *CustomerRepository) Outstanding(ctx context.Context, ownerEmail string) ([]*model.Customer, error) {
	var customers []*model.Customer
	err := r.db.WithContext(ctx).
		Where("user_email = ? AND is_active = ? AND total_due > 0", ownerEmail, true).
		Order("total_due DESC").
		Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) TotalOutstanding(ctx context.Context, ownerEmail string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.Customer{}).
		Select("COALESCE(SUM(total_due), 0)").
		Where("user_email = ? AND is_active = ? AND total_due > 0", ownerEmail, true).
		Scan(&total).Error
	return total, err
}

func (r *CustomerRepository) ListByLastTransactionDate(ctx context.Context, ownerEmail string, start, end time.Time) ([]*model.Customer, error) {
	var customers []*model.Customer
	err := r.db.WithContext(ctx).
		Where("user_email = ? AND last_transaction_date BETWEEN ? AND ?", ownerEmail, start, end).
		Find(&customers).Error
	return customers, err
}
