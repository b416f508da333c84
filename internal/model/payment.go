package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord is the receipt side of a customer payment: when it was
// taken, how, and under what reference. The balance effect itself lives in
// the PAYMENT transaction created alongside it; the record only documents
// the receipt and how it was allocated.
type PaymentRecord struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentNo       string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"paymentNo"`
	UserEmail       string          `gorm:"type:varchar(100);index;not null" json:"-"`
	CustomerID      string          `gorm:"type:varchar(50);index;not null" json:"customerId"`
	CustomerName    string          `gorm:"type:varchar(100);not null" json:"customerName"`
	TransactionID   string          `gorm:"type:varchar(50);not null" json:"transactionId"`
	PaymentDate     time.Time       `gorm:"not null" json:"paymentDate"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethod   string          `gorm:"type:varchar(50);not null" json:"paymentMethod"`
	ReferenceNumber string          `gorm:"type:varchar(100)" json:"referenceNumber"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}

// TransactionPayment allocates part of a payment record against one open
// credit transaction.
type TransactionPayment struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID   string          `gorm:"type:varchar(50);index;not null" json:"transactionId"`
	PaymentRecordID int64           `gorm:"index;not null" json:"paymentRecordId"`
	AmountApplied   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amountApplied"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

func (TransactionPayment) TableName() string {
	return "transaction_payments"
}
