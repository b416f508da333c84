package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/service"
	"github.com/ManjitSharma963/cashflow-app-backend/pkg/response"
)

type PaymentAllocationRequest struct {
	TransactionID string          `json:"transactionId" binding:"required"`
	Amount        decimal.Decimal `json:"amountApplied" binding:"required"`
}

type RecordPaymentRequest struct {
	CustomerID      string                     `json:"customerId" binding:"required"`
	Amount          decimal.Decimal            `json:"amount" binding:"required"`
	PaymentDate     string                     `json:"paymentDate"`
	PaymentMethod   string                     `json:"paymentMethod"`
	ReferenceNumber string                     `json:"referenceNumber"`
	Notes           string                     `json:"notes"`
	IsLumpSum       bool                       `json:"isLumpSum"`
	Allocations     []PaymentAllocationRequest `json:"allocations"`
}

// POST /api/payments
func (h *Handler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	paymentDate, err := parseDateField(req.PaymentDate)
	if err != nil {
		response.ParamError(c, "paymentDate must be YYYY-MM-DD")
		return
	}

	allocations := make([]service.PaymentAllocation, 0, len(req.Allocations))
	for _, a := range req.Allocations {
		allocations = append(allocations, service.PaymentAllocation{
			TransactionID: a.TransactionID,
			Amount:        a.Amount,
		})
	}

	record, err := h.paymentService.RecordPayment(c.Request.Context(), ownerEmail(c), &service.RecordPaymentRequest{
		CustomerID:      req.CustomerID,
		Amount:          req.Amount,
		PaymentDate:     paymentDate,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		IsLumpSum:       req.IsLumpSum,
		Allocations:     allocations,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, record)
}

// GET /api/payments?customerId=
func (h *Handler) ListPayments(c *gin.Context) {
	customerID := c.Query("customerId")

	if customerID != "" {
		records, err := h.paymentService.ListByCustomer(c.Request.Context(), ownerEmail(c), customerID)
		if err != nil {
			writeError(c, err)
			return
		}
		response.Success(c, records)
		return
	}

	records, err := h.paymentService.ListByOwner(c.Request.Context(), ownerEmail(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, records)
}
