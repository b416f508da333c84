package model

import (
	"time"
)

// User is a shopkeeper account. The email doubles as the tenant key:
// every customer and transaction row carries the owning user's email.
type User struct {
	ID           string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Email        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(100);not null" json:"-"`
	ShopName     string    `gorm:"type:varchar(100);not null" json:"shopName"`
	Mobile       string    `gorm:"type:varchar(15);not null" json:"mobile"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
