package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/config"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/ledger"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/model"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/repository"
	"github.com/ManjitSharma963/cashflow-app-backend/pkg/idgen"
)

var (
	ErrInvalidStateTransition = errors.New("invalid status transition")
	ErrFutureDate             = errors.New("transaction date cannot be in the future")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
)

// balanceWriteAttempts bounds the compare-and-swap retry loop around each
// lifecycle operation. Conflicts only happen when two mutations for the
// same customer race.
const balanceWriteAttempts = 3

const (
	eventTransactionCreated       = "transaction.created"
	eventTransactionUpdated       = "transaction.updated"
	eventTransactionDeleted       = "transaction.deleted"
	eventTransactionStatusChanged = "transaction.status_changed"
)

type ledgerEvent struct {
	Event           string `json:"event"`
	TransactionID   string `json:"transactionId"`
	CustomerID      string `json:"customerId"`
	TransactionType string `json:"transactionType"`
	Status          string `json:"status"`
	Amount          string `json:"amount"`
	TotalDue        string `json:"totalDue"`
	OccurredAt      string `json:"occurredAt"`
}

// TransactionService owns the transaction lifecycle. Every mutation runs as
// one database transaction covering the transaction row, the customer
// balance and the outbox event, so the balance invariant cannot be observed
// half-applied.
type TransactionService struct {
	db              *gorm.DB
	cfg             *config.Config
	customerRepo    *repository.CustomerRepository
	transactionRepo *repository.TransactionRepository
	outboxRepo      *repository.OutboxRepository
}

func NewTransactionService(db *gorm.DB, cfg *config.Config) *TransactionService {
	return &TransactionService{
		db:              db,
		cfg:             cfg,
		customerRepo:    repository.NewCustomerRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		outboxRepo:      repository.NewOutboxRepository(db),
	}
}

type CreateTransactionRequest struct {
	CustomerID      string
	TransactionType string
	Amount          decimal.Decimal
	Description     string
	Date            *time.Time
	Status          string
	PaymentMethod   string
	Notes           string
}

type UpdateTransactionRequest struct {
	CustomerID      *string
	TransactionType *string
	Amount          *decimal.Decimal
	Description     *string
	Date            *time.Time
	PaymentMethod   *string
	Notes           *string
}

func (s *TransactionService) Create(ctx context.Context, ownerEmail string, req *CreateTransactionRequest) (*model.Transaction, error) {
	if err := ledger.ValidateAmount(req.TransactionType, req.Amount); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.TransactionStatusPending
	}
	// A transaction may be born PENDING or COMPLETED; born-cancelled makes
	// no sense and would confuse the reversal bookkeeping.
	if status != model.TransactionStatusPending && status != model.TransactionStatusCompleted {
		return nil, ErrInvalidStateTransition
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = model.PaymentMethodCash
	}
	if !model.IsValidPaymentMethod(paymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	now := time.Now()
	date := model.DateOnly(now)
	if req.Date != nil {
		date = model.DateOnly(*req.Date)
	}
	if date.After(model.DateOnly(now)) {
		return nil, ErrFutureDate
	}

	var created *model.Transaction
	err := s.withBalanceRetry(func() error {
		customer, err := s.customerRepo.GetByID(ctx, nil, ownerEmail, req.CustomerID)
		if err != nil {
			return err
		}

		transaction := &model.Transaction{
			ID:              idgen.GenerateTransactionID(),
			UserEmail:       ownerEmail,
			CustomerID:      customer.ID,
			CustomerName:    customer.Name,
			TransactionType: req.TransactionType,
			Amount:          req.Amount,
			Description:     req.Description,
			Date:            date,
			Status:          status,
			PaymentMethod:   paymentMethod,
			Notes:           req.Notes,
		}

		if err := ledger.Apply(customer, transaction.TransactionType, transaction.Amount, now); err != nil {
			return err
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.transactionRepo.Create(ctx, tx, transaction); err != nil {
				return fmt.Errorf("failed to create transaction: %w", err)
			}
			if err := s.customerRepo.SaveBalance(ctx, tx, customer); err != nil {
				return err
			}
			return s.enqueueEvent(ctx, tx, eventTransactionCreated, transaction, customer)
		})
		if err != nil {
			return err
		}
		created = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, ownerEmail, id string, req *UpdateTransactionRequest) (*model.Transaction, error) {
	var updated *model.Transaction
	err := s.withBalanceRetry(func() error {
		transaction, err := s.transactionRepo.GetByID(ctx, nil, ownerEmail, id)
		if err != nil {
			return err
		}
		// A cancelled transaction's effect was already reversed; editing it
		// would corrupt the balance.
		if transaction.Status == model.TransactionStatusCancelled {
			return ErrInvalidStateTransition
		}

		oldType := transaction.TransactionType
		oldAmount := transaction.Amount
		oldCustomerID := transaction.CustomerID

		if req.CustomerID != nil {
			transaction.CustomerID = *req.CustomerID
		}
		if req.TransactionType != nil {
			transaction.TransactionType = *req.TransactionType
		}
		if req.Amount != nil {
			transaction.Amount = *req.Amount
		}
		if req.Description != nil {
			transaction.Description = *req.Description
		}
		if req.Date != nil {
			date := model.DateOnly(*req.Date)
			if date.After(model.DateOnly(time.Now())) {
				return ErrFutureDate
			}
			transaction.Date = date
		}
		if req.PaymentMethod != nil {
			if !model.IsValidPaymentMethod(*req.PaymentMethod) {
				return ErrInvalidPaymentMethod
			}
			transaction.PaymentMethod = *req.PaymentMethod
		}
		if req.Notes != nil {
			transaction.Notes = *req.Notes
		}

		if err := ledger.ValidateAmount(transaction.TransactionType, transaction.Amount); err != nil {
			return err
		}

		now := time.Now()
		oldCustomer, err := s.customerRepo.GetByID(ctx, nil, ownerEmail, oldCustomerID)
		if err != nil {
			return err
		}

		var newCustomer *model.Customer
		if transaction.CustomerID != oldCustomerID {
			// Re-pointing: reverse against the old customer, apply against
			// the new one. Two independent single-customer operations.
			newCustomer, err = s.customerRepo.GetByID(ctx, nil, ownerEmail, transaction.CustomerID)
			if err != nil {
				return err
			}
			if err := ledger.Reverse(oldCustomer, oldType, oldAmount, now); err != nil {
				return err
			}
			if err := ledger.Apply(newCustomer, transaction.TransactionType, transaction.Amount, now); err != nil {
				return err
			}
			transaction.CustomerName = newCustomer.Name
		} else {
			if err := ledger.Reverse(oldCustomer, oldType, oldAmount, now); err != nil {
				return err
			}
			if err := ledger.Apply(oldCustomer, transaction.TransactionType, transaction.Amount, now); err != nil {
				return err
			}
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.transactionRepo.Save(ctx, tx, transaction); err != nil {
				return fmt.Errorf("failed to update transaction: %w", err)
			}
			if err := s.customerRepo.SaveBalance(ctx, tx, oldCustomer); err != nil {
				return err
			}
			if newCustomer != nil {
				if err := s.customerRepo.SaveBalance(ctx, tx, newCustomer); err != nil {
					return err
				}
			}
			affected := oldCustomer
			if newCustomer != nil {
				affected = newCustomer
			}
			return s.enqueueEvent(ctx, tx, eventTransactionUpdated, transaction, affected)
		})
		if err != nil {
			return err
		}
		updated = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, ownerEmail, id string) error {
	return s.withBalanceRetry(func() error {
		transaction, err := s.transactionRepo.GetByID(ctx, nil, ownerEmail, id)
		if err != nil {
			return err
		}
		customer, err := s.customerRepo.GetByID(ctx, nil, ownerEmail, transaction.CustomerID)
		if err != nil {
			return err
		}

		// Cancelled transactions are already net-zero on the balance;
		// reversing again would double-count.
		reversed := false
		if transaction.Status != model.TransactionStatusCancelled {
			if err := ledger.Reverse(customer, transaction.TransactionType, transaction.Amount, time.Now()); err != nil {
				return err
			}
			reversed = true
		}

		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.transactionRepo.Delete(ctx, tx, ownerEmail, id); err != nil {
				return err
			}
			if reversed {
				if err := s.customerRepo.SaveBalance(ctx, tx, customer); err != nil {
					return err
				}
			}
			return s.enqueueEvent(ctx, tx, eventTransactionDeleted, transaction, customer)
		})
	})
}

func (s *TransactionService) UpdateStatus(ctx context.Context, ownerEmail, id, newStatus string) (*model.Transaction, error) {
	if !model.IsValidTransactionStatus(newStatus) {
		return nil, ErrInvalidStateTransition
	}

	var updated *model.Transaction
	err := s.withBalanceRetry(func() error {
		transaction, err := s.transactionRepo.GetByID(ctx, nil, ownerEmail, id)
		if err != nil {
			return err
		}
		if !model.CanTransitionTo(transaction.Status, newStatus) {
			return ErrInvalidStateTransition
		}

		var customer *model.Customer
		if newStatus == model.TransactionStatusCancelled {
			customer, err = s.customerRepo.GetByID(ctx, nil, ownerEmail, transaction.CustomerID)
			if err != nil {
				return err
			}
			if err := ledger.Reverse(customer, transaction.TransactionType, transaction.Amount, time.Now()); err != nil {
				return err
			}
		}

		transaction.Status = newStatus

		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.transactionRepo.Save(ctx, tx, transaction); err != nil {
				return fmt.Errorf("failed to update transaction status: %w", err)
			}
			if customer != nil {
				if err := s.customerRepo.SaveBalance(ctx, tx, customer); err != nil {
					return err
				}
			}
			return s.enqueueEvent(ctx, tx, eventTransactionStatusChanged, transaction, customer)
		})
		if err != nil {
			return err
		}
		updated = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TransactionService) Get(ctx context.Context, ownerEmail, id string) (*model.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, nil, ownerEmail, id)
}

func (s *TransactionService) List(ctx context.Context, ownerEmail string, filter repository.TransactionFilter) ([]*model.Transaction, error) {
	return s.transactionRepo.List(ctx, ownerEmail, filter)
}

func (s *TransactionService) ListByCustomer(ctx context.Context, ownerEmail, customerID string) ([]*model.Transaction, error) {
	return s.transactionRepo.ListByCustomer(ctx, ownerEmail, customerID)
}

func (s *TransactionService) ListPending(ctx context.Context, ownerEmail string) ([]*model.Transaction, error) {
	return s.transactionRepo.ListByStatus(ctx, ownerEmail, model.TransactionStatusPending)
}

func (s *TransactionService) ListOverdue(ctx context.Context, ownerEmail string) ([]*model.Transaction, error) {
	return s.transactionRepo.ListOverdue(ctx, ownerEmail, model.DateOnly(time.Now()))
}

// Reporting reads. Every sum comes back zero-valued, never absent, when no
// rows match.

func (s *TransactionService) DailySales(ctx context.Context, ownerEmail string, date time.Time) (decimal.Decimal, error) {
	return s.transactionRepo.SumByTypeStatusOn(ctx, ownerEmail,
		model.TransactionTypeCredit, model.TransactionStatusCompleted, model.DateOnly(date))
}

func (s *TransactionService) DailyCashReceived(ctx context.Context, ownerEmail string, date time.Time) (decimal.Decimal, error) {
	return s.transactionRepo.SumByTypeStatusOn(ctx, ownerEmail,
		model.TransactionTypePayment, model.TransactionStatusCompleted, model.DateOnly(date))
}

func (s *TransactionService) DailyCreditGiven(ctx context.Context, ownerEmail string, date time.Time) (decimal.Decimal, error) {
	return s.transactionRepo.SumByTypeStatusOn(ctx, ownerEmail,
		model.TransactionTypeCredit, model.TransactionStatusPending, model.DateOnly(date))
}

func (s *TransactionService) PeriodSales(ctx context.Context, ownerEmail string, start, end time.Time) (decimal.Decimal, error) {
	return s.transactionRepo.SumByTypeStatusBetween(ctx, ownerEmail,
		model.TransactionTypeCredit, model.TransactionStatusCompleted, model.DateOnly(start), model.DateOnly(end))
}

func (s *TransactionService) PeriodCashReceived(ctx context.Context, ownerEmail string, start, end time.Time) (decimal.Decimal, error) {
	return s.transactionRepo.SumByTypeStatusBetween(ctx, ownerEmail,
		model.TransactionTypePayment, model.TransactionStatusCompleted, model.DateOnly(start), model.DateOnly(end))
}

func (s *TransactionService) PeriodCreditGiven(ctx context.Context, ownerEmail string, start, end time.Time) (decimal.Decimal, error) {
	return s.transactionRepo.SumByTypeStatusBetween(ctx, ownerEmail,
		model.TransactionTypeCredit, model.TransactionStatusPending, model.DateOnly(start), model.DateOnly(end))
}

func (s *TransactionService) withBalanceRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < balanceWriteAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, repository.ErrConcurrentUpdate) {
			return err
		}
	}
	return err
}

func (s *TransactionService) enqueueEvent(ctx context.Context, tx *gorm.DB, event string, transaction *model.Transaction, customer *model.Customer) error {
	payload := ledgerEvent{
		Event:           event,
		TransactionID:   transaction.ID,
		CustomerID:      transaction.CustomerID,
		TransactionType: transaction.TransactionType,
		Status:          transaction.Status,
		Amount:          transaction.Amount.String(),
		OccurredAt:      time.Now().Format(time.RFC3339),
	}
	if customer != nil {
		payload.TotalDue = customer.TotalDue.String()
	}
	return s.outboxRepo.EnqueueEvent(ctx, tx, s.cfg.Kafka.Topic.TransactionEvents, transaction.ID, payload)
}
