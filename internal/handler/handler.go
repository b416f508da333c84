package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/config"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/infrastructure/cache"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/ledger"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/model"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/repository"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/service"
	"github.com/ManjitSharma963/cashflow-app-backend/pkg/response"
)

// Handler bundles the service dependencies behind the HTTP surface.
type Handler struct {
	cfg                *config.Config
	userService        *service.UserService
	customerService    *service.CustomerService
	transactionService *service.TransactionService
	paymentService     *service.PaymentService
	denylist           *cache.TokenDenylist
}

func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		cfg:                cfg,
		userService:        service.NewUserService(db),
		customerService:    service.NewCustomerService(db),
		transactionService: service.NewTransactionService(db, cfg),
		paymentService:     service.NewPaymentService(db, cfg),
		denylist:           cache.NewTokenDenylist(rdb),
	}
}

// writeError maps service and repository errors onto the response envelope.
// Anything not in the taxonomy is a 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrCustomerNotFound):
		response.NotFound(c, response.CodeCustomerNotFound, err.Error())
	case errors.Is(err, repository.ErrTransactionNotFound):
		response.NotFound(c, response.CodeTransactionNotFound, err.Error())
	case errors.Is(err, repository.ErrUserNotFound):
		response.NotFound(c, response.CodeUserNotFound, err.Error())
	case errors.Is(err, repository.ErrDuplicateMobile):
		response.Conflict(c, response.CodeDuplicateMobile, err.Error())
	case errors.Is(err, repository.ErrConcurrentUpdate):
		response.Conflict(c, response.CodeConcurrentUpdate, err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrUnknownTransactionType),
		errors.Is(err, service.ErrFutureDate),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrAllocationExceedsDue),
		errors.Is(err, service.ErrInvalidAllocationTarget):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidAmount, err.Error())
	case errors.Is(err, service.ErrInvalidStateTransition):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeInvalidStateTransition, err.Error())
	case errors.Is(err, service.ErrOutstandingBalance):
		response.Conflict(c, response.CodeOutstandingBalance, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, response.CodeEmailExists, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, response.CodeInvalidCredentials, err.Error())
	default:
		response.ServerError(c, "internal error")
	}
}

// ownerEmail reads the tenant identity the auth middleware stored.
func ownerEmail(c *gin.Context) string {
	return c.GetString(ctxKeyUserEmail)
}

// parseDateParam parses a YYYY-MM-DD query parameter, defaulting to today.
func parseDateParam(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return model.DateOnly(time.Now()), true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.ParamError(c, name+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
