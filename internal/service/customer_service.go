package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/model"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/repository"
)

// ErrOutstandingBalance blocks deleting a customer who still owes money.
// The debt record must be settled or cancelled first.
var ErrOutstandingBalance = errors.New("customer has an outstanding balance")

type CustomerService struct {
	db              *gorm.DB
	customerRepo    *repository.CustomerRepository
	transactionRepo *repository.TransactionRepository
	paymentRepo     *repository.PaymentRepository
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{
		db:              db,
		customerRepo:    repository.NewCustomerRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		paymentRepo:     repository.NewPaymentRepository(db),
	}
}

type CreateCustomerRequest struct {
	Name     string
	Mobile   string
	Address  string
	Category string
	Notes    string
}

type UpdateCustomerRequest struct {
	Name     *string
	Mobile   *string
	Address  *string
	Category *string
	Notes    *string
	IsActive *bool
}

func (s *CustomerService) Create(ctx context.Context, ownerEmail string, req *CreateCustomerRequest) (*model.Customer, error) {
	exists, err := s.customerRepo.ExistsByMobile(ctx, ownerEmail, req.Mobile)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrDuplicateMobile
	}

	category := req.Category
	if category == "" {
		category = model.DefaultCustomerCategory
	}

	customer := &model.Customer{
		ID:        uuid.NewString(),
		UserEmail: ownerEmail,
		Name:      req.Name,
		Mobile:    req.Mobile,
		Address:   req.Address,
		Category:  category,
		Notes:     req.Notes,
		TotalDue:  decimal.Zero,
		IsActive:  true,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, ownerEmail, id string) (*model.Customer, error) {
	return s.customerRepo.GetByID(ctx, nil, ownerEmail, id)
}

func (s *CustomerService) List(ctx context.Context, ownerEmail string, filter repository.CustomerFilter) ([]*model.Customer, error) {
	return s.customerRepo.List(ctx, ownerEmail, filter)
}

func (s *CustomerService) Update(ctx context.Context, ownerEmail, id string, req *UpdateCustomerRequest) (*model.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, nil, ownerEmail, id)
	if err != nil {
		return nil, err
	}

	if req.Mobile != nil && *req.Mobile != customer.Mobile {
		exists, err := s.customerRepo.ExistsByMobile(ctx, ownerEmail, *req.Mobile)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, repository.ErrDuplicateMobile
		}
		customer.Mobile = *req.Mobile
	}
	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Category != nil {
		customer.Category = *req.Category
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	if req.IsActive != nil {
		customer.IsActive = *req.IsActive
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Delete removes a customer and their transaction history. Refused while the
// customer still owes money so that debt cannot silently vanish.
func (s *CustomerService) Delete(ctx context.Context, ownerEmail, id string) error {
	customer, err := s.customerRepo.GetByID(ctx, nil, ownerEmail, id)
	if err != nil {
		return err
	}
	if !customer.TotalDue.IsZero() {
		return ErrOutstandingBalance
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.DeleteByCustomer(ctx, tx, ownerEmail, id); err != nil {
			return err
		}
		if err := s.transactionRepo.DeleteByCustomer(ctx, tx, ownerEmail, id); err != nil {
			return err
		}
		return s.customerRepo.Delete(ctx, tx, ownerEmail, id)
	})
}

func (s *CustomerService) GetTotalDue(ctx context.Context, ownerEmail, id string) (decimal.Decimal, error) {
	customer, err := s.customerRepo.GetByID(ctx, nil, ownerEmail, id)
	if err != nil {
		return decimal.Zero, err
	}
	return customer.TotalDue, nil
}

func (s *CustomerService) Outstanding(ctx context.Context, ownerEmail string) ([]*model.Customer, error) {
	return s.customerRepo.Outstanding(ctx, ownerEmail)
}

func (s *CustomerService) TotalOutstanding(ctx context.Context, ownerEmail string) (decimal.Decimal, error) {
	return s.customerRepo.TotalOutstanding(ctx, ownerEmail)
}
