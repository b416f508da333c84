package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/model"
	"github.com/ManjitSharma963/cashflow-app-backend/pkg/response"
)

// GET /api/dashboard/today
func (h *Handler) DashboardToday(c *gin.Context) {
	ctx := c.Request.Context()
	owner := ownerEmail(c)
	today := model.DateOnly(time.Now())

	sales, err := h.transactionService.DailySales(ctx, owner, today)
	if err != nil {
		writeError(c, err)
		return
	}
	cash, err := h.transactionService.DailyCashReceived(ctx, owner, today)
	if err != nil {
		writeError(c, err)
		return
	}
	credit, err := h.transactionService.DailyCreditGiven(ctx, owner, today)
	if err != nil {
		writeError(c, err)
		return
	}
	outstanding, err := h.customerService.TotalOutstanding(ctx, owner)
	if err != nil {
		writeError(c, err)
		return
	}
	debtors, err := h.customerService.Outstanding(ctx, owner)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"date":                 today.Format("2006-01-02"),
		"totalSales":           sales,
		"totalCashReceived":    cash,
		"totalCreditGiven":     credit,
		"totalOutstanding":     outstanding,
		"outstandingCustomers": len(debtors),
	})
}

// GET /api/dashboard/summary?period=week|month|year|custom&startDate=&endDate=
func (h *Handler) DashboardSummary(c *gin.Context) {
	ctx := c.Request.Context()
	owner := ownerEmail(c)

	now := time.Now()
	end := model.DateOnly(now)
	var start time.Time

	switch c.DefaultQuery("period", "week") {
	case "week":
		start = end.AddDate(0, 0, -6)
	case "month":
		start = end.AddDate(0, -1, 0)
	case "year":
		start = end.AddDate(-1, 0, 0)
	case "custom":
		var ok bool
		start, end, ok = periodRange(c)
		if !ok {
			return
		}
	default:
		response.ParamError(c, "period must be week, month, year or custom")
		return
	}

	sales, err := h.transactionService.PeriodSales(ctx, owner, start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	cash, err := h.transactionService.PeriodCashReceived(ctx, owner, start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	credit, err := h.transactionService.PeriodCreditGiven(ctx, owner, start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	outstanding, err := h.customerService.TotalOutstanding(ctx, owner)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"startDate":         start.Format("2006-01-02"),
		"endDate":           end.Format("2006-01-02"),
		"totalSales":        sales,
		"totalCashReceived": cash,
		"totalCreditGiven":  credit,
		"totalOutstanding":  outstanding,
	})
}
