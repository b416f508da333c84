package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/repository"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/service"
	"github.com/ManjitSharma963/cashflow-app-backend/pkg/response"
)

type CreateTransactionRequest struct {
	CustomerID      string          `json:"customerId" binding:"required"`
	TransactionType string          `json:"transactionType" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Description     string          `json:"description"`
	Date            string          `json:"date"`
	Status          string          `json:"status"`
	PaymentMethod   string          `json:"paymentMethod"`
	Notes           string          `json:"notes"`
}

type UpdateTransactionRequest struct {
	CustomerID      *string          `json:"customerId"`
	TransactionType *string          `json:"transactionType"`
	Amount          *decimal.Decimal `json:"amount"`
	Description     *string          `json:"description"`
	Date            *string          `json:"date"`
	PaymentMethod   *string          `json:"paymentMethod"`
	Notes           *string          `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func parseDateField(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// POST /api/transactions
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	date, err := parseDateField(req.Date)
	if err != nil {
		response.ParamError(c, "date must be YYYY-MM-DD")
		return
	}

	transaction, err := h.transactionService.Create(c.Request.Context(), ownerEmail(c), &service.CreateTransactionRequest{
		CustomerID:      req.CustomerID,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Description:     req.Description,
		Date:            date,
		Status:          req.Status,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, transaction)
}

// GET /api/transactions?customerId=&type=&status=&startDate=&endDate=
func (h *Handler) ListTransactions(c *gin.Context) {
	filter := repository.TransactionFilter{
		CustomerID: c.Query("customerId"),
		Type:       c.Query("type"),
		Status:     c.Query("status"),
	}

	start, err := parseDateField(c.Query("startDate"))
	if err != nil {
		response.ParamError(c, "startDate must be YYYY-MM-DD")
		return
	}
	end, err := parseDateField(c.Query("endDate"))
	if err != nil {
		response.ParamError(c, "endDate must be YYYY-MM-DD")
		return
	}
	filter.StartDate = start
	filter.EndDate = end

	transactions, err := h.transactionService.List(c.Request.Context(), ownerEmail(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, transactions)
}

// GET /api/transactions/:id
func (h *Handler) GetTransaction(c *gin.Context) {
	transaction, err := h.transactionService.Get(c.Request.Context(), ownerEmail(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, transaction)
}

// PUT /api/transactions/:id
func (h *Handler) UpdateTransaction(c *gin.Context) {
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	serviceReq := &service.UpdateTransactionRequest{
		CustomerID:      req.CustomerID,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Description:     req.Description,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	}
	if req.Date != nil {
		date, err := parseDateField(*req.Date)
		if err != nil {
			response.ParamError(c, "date must be YYYY-MM-DD")
			return
		}
		serviceReq.Date = date
	}

	transaction, err := h.transactionService.Update(c.Request.Context(), ownerEmail(c), c.Param("id"), serviceReq)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, transaction)
}

// PATCH /api/transactions/:id/status
func (h *Handler) UpdateTransactionStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	transaction, err := h.transactionService.UpdateStatus(c.Request.Context(), ownerEmail(c), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, transaction)
}

// DELETE /api/transactions/:id
func (h *Handler) DeleteTransaction(c *gin.Context) {
	if err := h.transactionService.Delete(c.Request.Context(), ownerEmail(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "transaction deleted"})
}

// GET /api/transactions/customer/:customerId
func (h *Handler) ListCustomerTransactions(c *gin.Context) {
	transactions, err := h.transactionService.ListByCustomer(c.Request.Context(), ownerEmail(c), c.Param("customerId"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, transactions)
}

// GET /api/transactions/pending
func (h *Handler) ListPendingTransactions(c *gin.Context) {
	transactions, err := h.transactionService.ListPending(c.Request.Context(), ownerEmail(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, transactions)
}

// GET /api/transactions/overdue
func (h *Handler) ListOverdueTransactions(c *gin.Context) {
	transactions, err := h.transactionService.ListOverdue(c.Request.Context(), ownerEmail(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, transactions)
}

// GET /api/transactions/daily/sales?date=YYYY-MM-DD
func (h *Handler) DailySales(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}
	total, err := h.transactionService.DailySales(c.Request.Context(), ownerEmail(c), date)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"date": date.Format("2006-01-02"), "totalSales": total})
}

// GET /api/transactions/daily/cash?date=YYYY-MM-DD
func (h *Handler) DailyCashReceived(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}
	total, err := h.transactionService.DailyCashReceived(c.Request.Context(), ownerEmail(c), date)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"date": date.Format("2006-01-02"), "totalCashReceived": total})
}

// GET /api/transactions/daily/credit?date=YYYY-MM-DD
func (h *Handler) DailyCreditGiven(c *gin.Context) {
	date, ok := parseDateParam(c, "date")
	if !ok {
		return
	}
	total, err := h.transactionService.DailyCreditGiven(c.Request.Context(), ownerEmail(c), date)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"date": date.Format("2006-01-02"), "totalCreditGiven": total})
}

// periodRange reads startDate/endDate query params for the period reports.
func periodRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := time.Parse("2006-01-02", c.Query("startDate"))
	if err != nil {
		response.ParamError(c, "startDate must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse("2006-01-02", c.Query("endDate"))
	if err != nil {
		response.ParamError(c, "endDate must be YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// GET /api/transactions/period/sales?startDate=&endDate=
func (h *Handler) PeriodSales(c *gin.Context) {
	start, end, ok := periodRange(c)
	if !ok {
		return
	}
	total, err := h.transactionService.PeriodSales(c.Request.Context(), ownerEmail(c), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"totalSales": total})
}

// GET /api/transactions/period/cash?startDate=&endDate=
func (h *Handler) PeriodCashReceived(c *gin.Context) {
	start, end, ok := periodRange(c)
	if !ok {
		return
	}
	total, err := h.transactionService.PeriodCashReceived(c.Request.Context(), ownerEmail(c), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"totalCashReceived": total})
}

// GET /api/transactions/period/credit?startDate=&endDate=
func (h *Handler) PeriodCreditGiven(c *gin.Context) {
	start, end, ok := periodRange(c)
	if !ok {
		return
	}
	total, err := h.transactionService.PeriodCreditGiven(c.Request.Context(), ownerEmail(c), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"totalCreditGiven": total})
}
