package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCustomerCategory = "Regular"

// Customer is a ledger account held by a shopkeeper for one of their
// customers. TotalDue is the running balance: at all times it equals the sum
// of the signed effects of every transaction attributed to this customer.
// The balance is never written directly by callers; it only moves through
// the ledger apply/reverse path.
//
// Version backs the compare-and-swap balance write: two concurrent
// transaction mutations for the same customer cannot both succeed on the
// same version, so lost updates are impossible.
type Customer struct {
	ID                  string          `gorm:"type:varchar(50);primaryKey" json:"id"`
	UserEmail           string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_customers_owner_mobile" json:"-"`
	Name                string          `gorm:"type:varchar(100);not null" json:"name"`
	Mobile              string          `gorm:"type:varchar(15);not null;uniqueIndex:idx_customers_owner_mobile" json:"mobile"`
	Address             string          `gorm:"type:text" json:"address"`
	Category            string          `gorm:"type:varchar(50);not null" json:"category"`
	Notes               string          `gorm:"type:text" json:"notes"`
	TotalDue            decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"totalDue"`
	IsActive            bool            `gorm:"not null;default:true" json:"isActive"`
	LastTransactionDate *time.Time      `json:"lastTransactionDate"`
	Version             int             `gorm:"not null;default:0" json:"-"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Customer) TableName() string {
	return "customers"
}
