package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeCredit     = "CREDIT"     // goods given on credit, increases what the customer owes
	TransactionTypePayment    = "PAYMENT"    // money received, decreases the debt
	TransactionTypeAdjustment = "ADJUSTMENT" // signed manual correction
)

const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusCancelled = "CANCELLED"
)

const (
	PaymentMethodCash         = "CASH"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
	PaymentMethodUPI          = "UPI"
	PaymentMethodCheque       = "CHEQUE"
	PaymentMethodCard         = "CARD"
	PaymentMethodAdjustment   = "ADJUSTMENT"
	PaymentMethodOther        = "OTHER"
)

// ValidStatusTransitions describes the transaction status state machine.
// COMPLETED is terminal: a completed transaction keeps its balance effect
// and cannot be cancelled. Cancelling a PENDING transaction reverses its
// effect exactly once; a second cancel attempt is rejected here.
var ValidStatusTransitions = map[string][]string{
	TransactionStatusPending: {TransactionStatusCompleted, TransactionStatusCancelled},
}

func CanTransitionTo(currentStatus, targetStatus string) bool {
	allowedStatuses, exists := ValidStatusTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, s := range allowedStatuses {
		if s == targetStatus {
			return true
		}
	}
	return false
}

func IsValidTransactionType(t string) bool {
	switch t {
	case TransactionTypeCredit, TransactionTypePayment, TransactionTypeAdjustment:
		return true
	}
	return false
}

func IsValidTransactionStatus(s string) bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusCancelled:
		return true
	}
	return false
}

func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodUPI,
		PaymentMethodCheque, PaymentMethodCard, PaymentMethodAdjustment, PaymentMethodOther:
		return true
	}
	return false
}

// DateOnly truncates a time to its calendar date in UTC. Transaction dates
// are stored date-normalized so equality and range filters behave.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Transaction is one ledger entry against a customer.
//
// Amount is stored positive for CREDIT and PAYMENT; the direction comes from
// TransactionType, never from the sign of the stored amount. ADJUSTMENT is
// the one exception: its amount carries the sign the caller intends.
//
// CustomerName is a snapshot taken at creation time. It is not re-derived
// when the customer is renamed.
type Transaction struct {
	ID              string          `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserEmail       string          `gorm:"type:varchar(100);index;not null" json:"-"`
	CustomerID      string          `gorm:"type:varchar(50);index;not null" json:"customerId"`
	CustomerName    string          `gorm:"type:varchar(100);not null" json:"customerName"`
	TransactionType string          `gorm:"type:varchar(20);not null" json:"transactionType"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	Date            time.Time       `gorm:"index;not null" json:"date"`
	Status          string          `gorm:"type:varchar(20);index;not null" json:"status"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	Notes           string          `gorm:"type:text" json:"notes"`
	ReminderSentAt  *time.Time      `json:"reminderSentAt,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Transaction) TableName() string {
	return "transactions"
}
