package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/config"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/infrastructure/cache"
)

// SetupRouter wires the HTTP surface. Everything under /api except
// register/login sits behind JWT auth.
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	h := NewHandler(db, rdb, cfg)
	denylist := cache.NewTokenDenylist(rdb)
	authRequired := JWTAuthMiddleware(cfg.JWT.Secret, denylist)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/logout", authRequired, h.Logout)
			auth.GET("/profile", authRequired, h.GetProfile)
			auth.PUT("/profile", authRequired, h.UpdateProfile)
		}

		customers := api.Group("/customers", authRequired)
		{
			customers.POST("", h.CreateCustomer)
			customers.GET("", h.ListCustomers)
			customers.GET("/outstanding", h.OutstandingCustomers)
			customers.GET("/outstanding/total", h.TotalOutstanding)
			customers.GET("/:id", h.GetCustomer)
			customers.PUT("/:id", h.UpdateCustomer)
			customers.DELETE("/:id", h.DeleteCustomer)
			customers.GET("/:id/balance", h.GetCustomerBalance)
		}

		transactions := api.Group("/transactions", authRequired)
		{
			transactions.POST("", h.CreateTransaction)
			transactions.GET("", h.ListTransactions)
			transactions.GET("/pending", h.ListPendingTransactions)
			transactions.GET("/overdue", h.ListOverdueTransactions)
			transactions.GET("/daily/sales", h.DailySales)
			transactions.GET("/daily/cash", h.DailyCashReceived)
			transactions.GET("/daily/credit", h.DailyCreditGiven)
			transactions.GET("/period/sales", h.PeriodSales)
			transactions.GET("/period/cash", h.PeriodCashReceived)
			transactions.GET("/period/credit", h.PeriodCreditGiven)
			transactions.GET("/customer/:customerId", h.ListCustomerTransactions)
			transactions.GET("/:id", h.GetTransaction)
			transactions.PUT("/:id", h.UpdateTransaction)
			transactions.PATCH("/:id/status", h.UpdateTransactionStatus)
			transactions.DELETE("/:id", h.DeleteTransaction)
		}

		payments := api.Group("/payments", authRequired)
		{
			payments.POST("", h.RecordPayment)
			payments.GET("", h.ListPayments)
		}

		dashboard := api.Group("/dashboard", authRequired)
		{
			dashboard.GET("/today", h.DashboardToday)
			dashboard.GET("/summary", h.DashboardSummary)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
