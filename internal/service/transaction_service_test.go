package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/ledger"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/model"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/repository"
)

func TestCreateCreditIncreasesBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	transaction, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("150.50"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.TransactionStatusPending, transaction.Status)
	assert.Equal(t, model.PaymentMethodCash, transaction.PaymentMethod)
	assert.Equal(t, customer.Name, transaction.CustomerName)
	assert.True(t, customerBalance(t, db, testOwner, customer.ID).Equal(dec("150.50")))
}

func TestCreditThenPaymentNetsOut(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	_, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("100.00"),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypePayment,
		Amount:          dec("40.00"),
		Status:          model.TransactionStatusCompleted,
	})
	require.NoError(t, err)

	assert.True(t, customerBalance(t, db, testOwner, customer.ID).Equal(dec("60.00")))
}

func TestNegativeAdjustmentLowersBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	_, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("100.00"),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeAdjustment,
		Amount:          dec("-25.00"),
	})
	require.NoError(t, err)

	assert.True(t, customerBalance(t, db, testOwner, customer.ID).Equal(dec("75.00")))
}

func TestCreateRejectsInvalidAmounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	cases := []struct {
		name            string
		transactionType string
		amount          string
	}{
		{"zero credit", model.TransactionTypeCredit, "0"},
		{"negative payment", model.TransactionTypePayment, "-5.00"},
		{"zero adjustment", model.TransactionTypeAdjustment, "0"},
		{"sub-cent precision", model.TransactionTypeCredit, "10.005"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
				CustomerID:      customer.ID,
				TransactionType: tc.transactionType,
				Amount:          dec(tc.amount),
			})
			assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
		})
	}

	// Balance untouched by rejected mutations.
	assert.True(t, customerBalance(t, db, testOwner, customer.ID).IsZero())
}

func TestCreateRejectsFutureDate(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	tomorrow := time.Now().AddDate(0, 0, 1)
	_, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("10.00"),
		Date:            &tomorrow,
	})
	assert.ErrorIs(t, err, ErrFutureDate)
}

func TestCreateForUnknownCustomer(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())

	_, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      "no-such-customer",
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("10.00"),
	})
	assert.ErrorIs(t, err, repository.ErrCustomerNotFound)
}

func TestUpdateRebasesBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	transaction, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("50.00"),
	})
	require.NoError(t, err)
	require.True(t, customerBalance(t, db, testOwner, customer.ID).Equal(dec("50.00")))

	// CREDIT 50 becomes PAYMENT 20: the old effect is reversed and the new
	// one applied, so the balance swings from +50 to -20.
	newType := model.TransactionTypePayment
	newAmount := dec("20.00")
	updated, err := svc.Update(context.Background(), testOwner, transaction.ID, &UpdateTransactionRequest{
		TransactionType: &newType,
		Amount:          &newAmount,
	})
	require.NoError(t, err)

	assert.Equal(t, model.TransactionTypePayment, updated.TransactionType)
	assert.True(t, customerBalance(t, db, testOwner, customer.ID).Equal(dec("-20.00")))
}

func TestUpdateRepointsToAnotherCustomer(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	first := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")
	second := mustCreateCustomer(t, db, testOwner, "Meena", "9000000002")

	transaction, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      first.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("80.00"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), testOwner, transaction.ID, &UpdateTransactionRequest{
		CustomerID: &second.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, second.ID, updated.CustomerID)
	assert.Equal(t, "Meena", updated.CustomerName)
	assert.True(t, customerBalance(t, db, testOwner, first.ID).IsZero())
	assert.True(t, customerBalance(t, db, testOwner, second.ID).Equal(dec("80.00")))
}

func TestUpdateCancelledRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	transaction, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("30.00"),
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), testOwner, transaction.ID, model.TransactionStatusCancelled)
	require.NoError(t, err)

	newAmount := dec("99.00")
	_, err = svc.Update(context.Background(), testOwner, transaction.ID, &UpdateTransactionRequest{Amount: &newAmount})
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestDeleteReversesEffect(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	transaction, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("42.25"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), testOwner, transaction.ID))

	// Create followed by delete is the identity on the balance.
	assert.True(t, customerBalance(t, db, testOwner, customer.ID).IsZero())

	_, err = svc.Get(context.Background(), testOwner, transaction.ID)
	assert.ErrorIs(t, err, repository.ErrTransactionNotFound)
}

func TestDeleteCancelledDoesNotReverseTwice(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	transaction, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("60.00"),
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), testOwner, transaction.ID, model.TransactionStatusCancelled)
	require.NoError(t, err)
	require.True(t, customerBalance(t, db, testOwner, customer.ID).IsZero())

	require.NoError(t, svc.Delete(context.Background(), testOwner, transaction.ID))
	assert.True(t, customerBalance(t, db, testOwner, customer.ID).IsZero())
}

func TestStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	transaction, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("75.00"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), testOwner, transaction.ID, model.TransactionStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionStatusCompleted, updated.Status)
	// Completing keeps the effect in place.
	assert.True(t, customerBalance(t, db, testOwner, customer.ID).Equal(dec("75.00")))

	// COMPLETED is terminal.
	_, err = svc.UpdateStatus(context.Background(), testOwner, transaction.ID, model.TransactionStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestCancelReversesOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	transaction, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("75.00"),
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), testOwner, transaction.ID, model.TransactionStatusCancelled)
	require.NoError(t, err)
	assert.True(t, customerBalance(t, db, testOwner, customer.ID).IsZero())

	// Second cancel is rejected and the balance stays put.
	_, err = svc.UpdateStatus(context.Background(), testOwner, transaction.ID, model.TransactionStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	assert.True(t, customerBalance(t, db, testOwner, customer.ID).IsZero())
}

func TestCrossTenantIsolation(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	transaction, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("10.00"),
	})
	require.NoError(t, err)

	other := "intruder@shop.test"
	_, err = svc.Get(context.Background(), other, transaction.ID)
	assert.ErrorIs(t, err, repository.ErrTransactionNotFound)

	err = svc.Delete(context.Background(), other, transaction.ID)
	assert.ErrorIs(t, err, repository.ErrTransactionNotFound)

	list, err := svc.List(context.Background(), other, repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDailyAggregates(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	today := time.Now()

	// COMPLETED credit counts as a sale, PENDING credit as credit given,
	// COMPLETED payment as cash received.
	_, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("100.00"),
		Status:          model.TransactionStatusCompleted,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("50.50"),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypePayment,
		Amount:          dec("30.25"),
		Status:          model.TransactionStatusCompleted,
	})
	require.NoError(t, err)

	sales, err := svc.DailySales(context.Background(), testOwner, today)
	require.NoError(t, err)
	assert.True(t, sales.Equal(dec("100.00")), "got %s", sales)

	cash, err := svc.DailyCashReceived(context.Background(), testOwner, today)
	require.NoError(t, err)
	assert.True(t, cash.Equal(dec("30.25")), "got %s", cash)

	credit, err := svc.DailyCreditGiven(context.Background(), testOwner, today)
	require.NoError(t, err)
	assert.True(t, credit.Equal(dec("50.50")), "got %s", credit)
}

func TestAggregatesZeroWhenEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())

	sales, err := svc.DailySales(context.Background(), testOwner, time.Now())
	require.NoError(t, err)
	assert.True(t, sales.IsZero())

	period, err := svc.PeriodCashReceived(context.Background(), testOwner,
		time.Now().AddDate(0, 0, -7), time.Now())
	require.NoError(t, err)
	assert.True(t, period.IsZero())
}

func TestOutboxEventWrittenWithMutation(t *testing.T) {
	db := newTestDB(t)
	svc := NewTransactionService(db, newTestConfig())
	customer := mustCreateCustomer(t, db, testOwner, "Ravi", "9000000001")

	_, err := svc.Create(context.Background(), testOwner, &CreateTransactionRequest{
		CustomerID:      customer.ID,
		TransactionType: model.TransactionTypeCredit,
		Amount:          dec("10.00"),
	})
	require.NoError(t, err)

	var messages []*model.OutboxMessage
	require.NoError(t, db.Find(&messages).Error)
	require.Len(t, messages, 1)
	assert.Equal(t, model.OutboxStatusPending, messages[0].Status)
	assert.Contains(t, messages[0].Payload, "transaction.created")
}
