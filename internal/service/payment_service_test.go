package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/ledger"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/model"
)

func TestRecordLumpSumPaymentSettlesOldestFirst(t *testing.T) {
	db := newTestDB(t)
	transactionSvc := NewTransactionService(db, newTestConfig())
	paymentSvc := NewPaymentService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	first, err := transactionSvc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("40.00"),
	})
	require.NoError(t, err)
	second, err := transactionSvc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("60.00"),
	})
	require.NoError(t, err)

	record, err := paymentSvc.RecordPayment(context.Background(), testOwner, &RecordPaymentRequest{
		CustomerID: customer.ID,
		Amount:     dec("50.00"),
		IsLumpSum:  true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, record.PaymentNo)

	// 100 owed, 50 paid.
	assert.True(t, customerBalance(t, db, testOwner, customer.ID).Equal(dec("50.00")))

	// The oldest credit is covered in full and completed; the second got the
	// remaining 10 and stays pending.
	firstAfter, err := transactionSvc.Get(context.Background(), testOwner, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusCompleted, firstAfter.Status)

	secondAfter, err := transactionSvc.Get(context.Background(), testOwner, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusPending, secondAfter.Status)

	var allocations []*model.TransactionPayment
	require.NoError(t, db.Order("id ASC").Find(&allocations).Error)
	require.Len(t, allocations, 2)
	assert.True(t, allocations[0].AmountApplied.Equal(dec("40.00")))
	assert.True(t, allocations[1].AmountApplied.Equal(dec("10.00")))
}

func TestRecordExplicitAllocation(t *testing.T) {
	db := newTestDB(t)
	transactionSvc := NewTransactionService(db, newTestConfig())
	paymentSvc := NewPaymentService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	credit, err := transactionSvc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("100.00"),
	})
	require.NoError(t, err)

	_, err = paymentSvc.RecordPayment(context.Background(), testOwner, &RecordPaymentRequest{
		CustomerID: customer.ID,
		Amount:     dec("100.00"),
		Allocations: []PaymentAllocation{
			{TransactionID: credit.ID, Amount: dec("100.00")},
		},
	})
	require.NoError(t, err)

	assert.True(t, customerBalance(t, db, testOwner, customer.ID).IsZero())

	after, err := transactionSvc.Get(context.Background(), testOwner, credit.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusCompleted, after.Status)
}

func TestExplicitAllocationCannotOverpay(t *testing.T) {
	db := newTestDB(t)
	transactionSvc := NewTransactionService(db, newTestConfig())
	paymentSvc := NewPaymentService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	credit, err := transactionSvc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("30.00"),
	})
	require.NoError(t, err)

	_, err = paymentSvc.RecordPayment(context.Background(), testOwner, &RecordPaymentRequest{
		CustomerID: customer.ID,
		Amount:     dec("50.00"),
		Allocations: []PaymentAllocation{
			{TransactionID: credit.ID, Amount: dec("50.00")},
		},
	})
	assert.ErrorIs(t, err, ErrAllocationExceedsDue)

	// The whole unit rolled back: no payment transaction, balance unchanged.
	assert.True(t, customerBalance(t, db, testOwner, customer.ID).Equal(dec("30.00")))

	records, err := paymentSvc.ListByCustomer(context.Background(), testOwner, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExplicitAllocationRequiresOpenCredit(t *testing.T) {
	db := newTestDB(t)
	transactionSvc := NewTransactionService(db, newTestConfig())
	paymentSvc := NewPaymentService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	// A pending PAYMENT entry is not something a payment can settle.
	target, err := transactionSvc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypePayment,
		Amount:          dec("100.00"),
	})
	require.NoError(t, err)

	_, err = paymentSvc.RecordPayment(context.Background(), testOwner, &RecordPaymentRequest{
		CustomerID: customer.ID,
		Amount:     dec("100.00"),
		Allocations: []PaymentAllocation{
			{TransactionID: target.ID, Amount: dec("100.00")},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidAllocationTarget)

	// Rolled back whole: the target keeps its status and no cash was booked.
	after, err := transactionSvc.Get(context.Background(), testOwner, target.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusPending, after.Status)

	records, err := paymentSvc.ListByCustomer(context.Background(), testOwner, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExplicitAllocationRejectsCancelledCredit(t *testing.T) {
	db := newTestDB(t)
	transactionSvc := NewTransactionService(db, newTestConfig())
	paymentSvc := NewPaymentService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	credit, err := transactionSvc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("50.00"),
	})
	require.NoError(t, err)
	_, err = transactionSvc.UpdateStatus(context.Background(), testOwner, credit.ID, model.TransactionStatusCancelled)
	require.NoError(t, err)

	_, err = paymentSvc.RecordPayment(context.Background(), testOwner, &RecordPaymentRequest{
		CustomerID: customer.ID,
		Amount:     dec("50.00"),
		Allocations: []PaymentAllocation{
			{TransactionID: credit.ID, Amount: dec("50.00")},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidAllocationTarget)
}

func TestRecordPaymentRejectsBadAmount(t *testing.T) {
	db := newTestDB(t)
	paymentSvc := NewPaymentService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	_, err := paymentSvc.RecordPayment(context.Background(), testOwner, &RecordPaymentRequest{
		CustomerID: customer.ID,
		Amount:     dec("-10.00"),
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestPaymentWithoutAllocationsLowersBalanceOnly(t *testing.T) {
	db := newTestDB(t)
	transactionSvc := NewTransactionService(db, newTestConfig())
	paymentSvc := NewPaymentService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	credit, err := transactionSvc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("80.00"),
	})
	require.NoError(t, err)

	_, err = paymentSvc.RecordPayment(context.Background(), testOwner, &RecordPaymentRequest{
		CustomerID: customer.ID,
		Amount:     dec("20.00"),
	})
	require.NoError(t, err)

	assert.True(t, customerBalance(t, db, testOwner, customer.ID).Equal(dec("60.00")))

	// No allocations requested, so the credit entry is untouched.
	after, err := transactionSvc.Get(context.Background(), testOwner, credit.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusPending, after.Status)
}
