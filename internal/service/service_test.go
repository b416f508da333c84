package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/config"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/model"
)

const testOwner = "owner@shop.test"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.User{},
		&model.Customer{},
		&model.Transaction{},
		&model.PaymentRecord{},
		&model.TransactionPayment{},
		&model.OutboxMessage{},
	)
	require.NoError(t, err)
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{
				TransactionEvents: "cashflow.transaction.events",
				PaymentReminders:  "cashflow.payment.reminders",
			},
		},
		JWT: config.JWTConfig{Secret: "test-secret", ExpireHours: 1},
	}
}

func mustCreateCustomer(t *testing.T, db *gorm.DB, owner, name, mobile string) *model.Customer {
	t.Helper()
	customer, err := NewCustomerService(db).Create(context.Background(), owner, &CreateCustomerRequest{
		Name:   name,
		Mobile: mobile,
	})
	require.NoError(t, err)
	return customer
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func customerBalance(t *testing.T, db *gorm.DB, owner, id string) decimal.Decimal {
	t.Helper()
	customer, err := NewCustomerService(db).Get(context.Background(), owner, id)
	require.NoError(t, err)
	return customer.TotalDue
}
