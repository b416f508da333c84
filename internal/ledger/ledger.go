// Package ledger holds the balance arithmetic that keeps a customer's
// running balance consistent with their transactions.
//
// Invariant: customer.TotalDue always equals the sum of the signed effects
// of the transactions currently attributed to that customer. Every mutation
// of a transaction must go through Apply/Reverse so the invariant survives
// creates, updates, deletes and cancellations alike.
package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/model"
)

var (
	ErrInvalidAmount          = errors.New("amount must be a positive value with at most two decimal places")
	ErrUnknownTransactionType = errors.New("unknown transaction type")
)

// ValidateAmount checks the business constraints on a transaction amount.
// CREDIT and PAYMENT amounts must be strictly positive; ADJUSTMENT amounts
// carry their own sign and must only be nonzero. More than two fractional
// digits is rejected for every type.
func ValidateAmount(transactionType string, amount decimal.Decimal) error {
	// Compare against the truncated value, not the exponent: 10.000 is a
	// valid two-decimal amount despite its representation.
	if !amount.Equal(amount.Truncate(2)) {
		return ErrInvalidAmount
	}
	switch transactionType {
	case model.TransactionTypeCredit, model.TransactionTypePayment:
		if amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
	case model.TransactionTypeAdjustment:
		if amount.Sign() == 0 {
			return ErrInvalidAmount
		}
	default:
		return ErrUnknownTransactionType
	}
	return nil
}

// Effect returns the signed change a transaction makes to the customer's
// TotalDue: CREDIT adds the amount, PAYMENT subtracts it, ADJUSTMENT is
// applied as given (a negative adjustment reduces the debt).
func Effect(transactionType string, amount decimal.Decimal) (decimal.Decimal, error) {
	switch transactionType {
	case model.TransactionTypeCredit:
		return amount, nil
	case model.TransactionTypePayment:
		return amount.Neg(), nil
	case model.TransactionTypeAdjustment:
		return amount, nil
	default:
		return decimal.Zero, ErrUnknownTransactionType
	}
}

// Apply adds a transaction's effect to the customer balance and stamps the
// last transaction date. Call exactly once per transaction creation.
func Apply(customer *model.Customer, transactionType string, amount decimal.Decimal, now time.Time) error {
	if err := ValidateAmount(transactionType, amount); err != nil {
		return err
	}
	effect, err := Effect(transactionType, amount)
	if err != nil {
		return err
	}
	customer.TotalDue = customer.TotalDue.Add(effect)
	date := model.DateOnly(now)
	customer.LastTransactionDate = &date
	return nil
}

// Reverse removes a previously applied effect. Reverse after Apply with the
// same type and amount restores TotalDue exactly; decimal arithmetic keeps
// the round trip free of drift.
func Reverse(customer *model.Customer, transactionType string, amount decimal.Decimal, now time.Time) error {
	if err := ValidateAmount(transactionType, amount); err != nil {
		return err
	}
	effect, err := Effect(transactionType, amount)
	if err != nil {
		return err
	}
	customer.TotalDue = customer.TotalDue.Sub(effect)
	date := model.DateOnly(now)
	customer.LastTransactionDate = &date
	return nil
}
