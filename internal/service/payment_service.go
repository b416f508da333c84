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
	// ErrAllocationExceedsDue means an explicit allocation tries to apply more
	// against a credit entry than remains unpaid on it.
	ErrAllocationExceedsDue = errors.New("allocation exceeds the transaction's remaining due")
	// ErrInvalidAllocationTarget means an explicit allocation points at
	// something other than an open credit entry.
	ErrInvalidAllocationTarget = errors.New("allocation target must be an open credit transaction")
)

const eventPaymentRecorded = "payment.recorded"

type paymentEvent struct {
	Event       string `json:"event"`
	PaymentNo   string `json:"paymentNo"`
	CustomerID  string `json:"customerId"`
	Amount      string `json:"amount"`
	TotalDue    string `json:"totalDue"`
	Allocations int    `json:"allocations"`
	OccurredAt  string `json:"occurredAt"`
}

// PaymentService records customer payments as receipts with allocations
// against open credit entries. Each payment also flows through the ledger as
// a PAYMENT transaction, so the balance invariant is enforced by the same
// path as every other mutation.
type PaymentService struct {
	db              *gorm.DB
	cfg             *config.Config
	customerRepo    *repository.CustomerRepository
	transactionRepo *repository.TransactionRepository
	paymentRepo     *repository.PaymentRepository
	outboxRepo      *repository.OutboxRepository
}

func NewPaymentService(db *gorm.DB, cfg *config.Config) *PaymentService {
	return &PaymentService{
		db:              db,
		cfg:             cfg,
		customerRepo:    repository.NewCustomerRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		paymentRepo:     repository.NewPaymentRepository(db),
		outboxRepo:      repository.NewOutboxRepository(db),
	}
}

// PaymentAllocation pins part of a payment to one credit transaction.
type PaymentAllocation struct {
	TransactionID string
	Amount        decimal.Decimal
}

type RecordPaymentRequest struct {
	CustomerID      string
	Amount          decimal.Decimal
	PaymentDate     *time.Time
	PaymentMethod   string
	ReferenceNumber string
	Notes           string
	// IsLumpSum settles open credit entries oldest first. Otherwise
	// Allocations says exactly which entries this payment covers.
	IsLumpSum   bool
	Allocations []PaymentAllocation
}

func (s *PaymentService) RecordPayment(ctx context.Context, ownerEmail string, req *RecordPaymentRequest) (*model.PaymentRecord, error) {
	if err := ledger.ValidateAmount(model.TransactionTypePayment, req.Amount); err != nil {
		return nil, err
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = model.PaymentMethodCash
	}
	if !model.IsValidPaymentMethod(paymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	now := time.Now()
	paymentDate := model.DateOnly(now)
	if req.PaymentDate != nil {
		paymentDate = model.DateOnly(*req.PaymentDate)
	}
	if paymentDate.After(model.DateOnly(now)) {
		return nil, ErrFutureDate
	}

	var record *model.PaymentRecord
	err := s.withBalanceRetry(func() error {
		customer, err := s.customerRepo.GetByID(ctx, nil, ownerEmail, req.CustomerID)
		if err != nil {
			return err
		}

		if err := ledger.Apply(customer, model.TransactionTypePayment, req.Amount, now); err != nil {
			return err
		}

		transaction := &model.Transaction{
			ID:              idgen.GenerateTransactionID(),
			UserEmail:       ownerEmail,
			CustomerID:      customer.ID,
			CustomerName:    customer.Name,
			TransactionType: model.TransactionTypePayment,
			Amount:          req.Amount,
			Description:     "Payment received",
			Date:            paymentDate,
			Status:          model.TransactionStatusCompleted,
			PaymentMethod:   paymentMethod,
			Notes:           req.Notes,
		}

		rec := &model.PaymentRecord{
			PaymentNo:       idgen.GeneratePaymentNo(),
			UserEmail:       ownerEmail,
			CustomerID:      customer.ID,
			CustomerName:    customer.Name,
			TransactionID:   transaction.ID,
			PaymentDate:     paymentDate,
			Amount:          req.Amount,
			PaymentMethod:   paymentMethod,
			ReferenceNumber: req.ReferenceNumber,
			Notes:           req.Notes,
		}

		var allocated int
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.transactionRepo.Create(ctx, tx, transaction); err != nil {
				return fmt.Errorf("failed to create payment transaction: %w", err)
			}
			if err := s.paymentRepo.Create(ctx, tx, rec); err != nil {
				return fmt.Errorf("failed to create payment record: %w", err)
			}

			if req.IsLumpSum {
				allocated, err = s.allocateLumpSum(ctx, tx, ownerEmail, rec)
			} else {
				allocated, err = s.allocateExplicit(ctx, tx, ownerEmail, rec, req.Allocations)
			}
			if err != nil {
				return err
			}

			if err := s.customerRepo.SaveBalance(ctx, tx, customer); err != nil {
				return err
			}

			payload := paymentEvent{
				Event:       eventPaymentRecorded,
				PaymentNo:   rec.PaymentNo,
				CustomerID:  customer.ID,
				Amount:      req.Amount.String(),
				TotalDue:    customer.TotalDue.String(),
				Allocations: allocated,
				OccurredAt:  now.Format(time.RFC3339),
			}
			return s.outboxRepo.EnqueueEvent(ctx, tx, s.cfg.Kafka.Topic.TransactionEvents, rec.PaymentNo, payload)
		})
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// allocateLumpSum walks the customer's open credit entries oldest first and
// applies the payment until it runs out. Entries covered in full move to
// COMPLETED. Any unallocated remainder just lowers the balance.
func (s *PaymentService) allocateLumpSum(ctx context.Context, tx *gorm.DB, ownerEmail string, rec *model.PaymentRecord) (int, error) {
	credits, err := s.transactionRepo.ListPendingCreditByCustomer(ctx, tx, ownerEmail, rec.CustomerID)
	if err != nil {
		return 0, err
	}

	remaining := rec.Amount
	count := 0
	for _, credit := range credits {
		if remaining.Sign() <= 0 {
			break
		}
		alreadyPaid, err := s.paymentRepo.AllocatedAmount(ctx, tx, credit.ID)
		if err != nil {
			return count, err
		}
		open := credit.Amount.Sub(alreadyPaid)
		if open.Sign() <= 0 {
			continue
		}

		applied := decimal.Min(open, remaining)
		if err := s.paymentRepo.CreateAllocation(ctx, tx, &model.TransactionPayment{
			TransactionID:   credit.ID,
			PaymentRecordID: rec.ID,
			AmountApplied:   applied,
		}); err != nil {
			return count, err
		}
		count++
		remaining = remaining.Sub(applied)

		if applied.Equal(open) {
			credit.Status = model.TransactionStatusCompleted
			if err := s.transactionRepo.Save(ctx, tx, credit); err != nil {
				return count, err
			}
		}
	}
	return count, nil
}

func (s *PaymentService) allocateExplicit(ctx context.Context, tx *gorm.DB, ownerEmail string, rec *model.PaymentRecord, allocations []PaymentAllocation) (int, error) {
	count := 0
	for _, alloc := range allocations {
		if alloc.Amount.Sign() <= 0 {
			return count, ledger.ErrInvalidAmount
		}
		credit, err := s.transactionRepo.GetByID(ctx, tx, ownerEmail, alloc.TransactionID)
		if err != nil {
			return count, err
		}
		// Only credit entries carry a due to settle. Allocating against a
		// PAYMENT or ADJUSTMENT would later flip it COMPLETED and pollute
		// the reporting sums; cancelled entries are already net-zero.
		if credit.TransactionType != model.TransactionTypeCredit ||
			credit.Status == model.TransactionStatusCancelled {
			return count, ErrInvalidAllocationTarget
		}
		alreadyPaid, err := s.paymentRepo.AllocatedAmount(ctx, tx, credit.ID)
		if err != nil {
			return count, err
		}
		open := credit.Amount.Sub(alreadyPaid)
		if alloc.Amount.GreaterThan(open) {
			return count, ErrAllocationExceedsDue
		}

		if err := s.paymentRepo.CreateAllocation(ctx, tx, &model.TransactionPayment{
			TransactionID:   credit.ID,
			PaymentRecordID: rec.ID,
			AmountApplied:   alloc.Amount,
		}); err != nil {
			return count, err
		}
		count++

		if alloc.Amount.Equal(open) && credit.Status == model.TransactionStatusPending {
			credit.Status = model.TransactionStatusCompleted
			if err := s.transactionRepo.Save(ctx, tx, credit); err != nil {
				return count, err
			}
		}
	}
	return count, nil
}

func (s *PaymentService) ListByOwner(ctx context.Context, ownerEmail string) ([]*model.PaymentRecord, error) {
	return s.paymentRepo.ListByOwner(ctx, ownerEmail)
}

func (s *PaymentService) ListByCustomer(ctx context.Context, ownerEmail, customerID string) ([]*model.PaymentRecord, error) {
	return s.paymentRepo.ListByCustomer(ctx, ownerEmail, customerID)
}

func (s *PaymentService) withBalanceRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < balanceWriteAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, repository.ErrConcurrentUpdate) {
			return err
		}
	}
	return err
}
