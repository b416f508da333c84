package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/repository"
	"github.com/ManjitSharma963/cashflow-app-backend/internal/service"
	"github.com/ManjitSharma963/cashflow-app-backend/pkg/response"
)

type CreateCustomerRequest struct {
	Name     string `json:"name" binding:"required"`
	Mobile   string `json:"mobile" binding:"required"`
	Address  string `json:"address"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name     *string `json:"name"`
	Mobile   *string `json:"mobile"`
	Address  *string `json:"address"`
	Category *string `json:"category"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"isActive"`
}

// POST /api/customers
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), ownerEmail(c), &service.CreateCustomerRequest{
		Name:     req.Name,
		Mobile:   req.Mobile,
		Address:  req.Address,
		Category: req.Category,
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, customer)
}

// GET /api/customers?category=&active=&search=
func (h *Handler) ListCustomers(c *gin.Context) {
	filter := repository.CustomerFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.ParamError(c, "active must be true or false")
			return
		}
		filter.Active = &active
	}

	customers, err := h.customerService.List(c.Request.Context(), ownerEmail(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, customers)
}

// GET /api/customers/:id
func (h *Handler) GetCustomer(c *gin.Context) {
	customer, err := h.customerService.Get(c.Request.Context(), ownerEmail(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, customer)
}

// PUT /api/customers/:id
func (h *Handler) UpdateCustomer(c *gin.Context) {
	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), ownerEmail(c), c.Param("id"), &service.UpdateCustomerRequest{
		Name:     req.Name,
		Mobile:   req.Mobile,
		Address:  req.Address,
		Category: req.Category,
		Notes:    req.Notes,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, customer)
}

// DELETE /api/customers/:id
func (h *Handler) DeleteCustomer(c *gin.Context) {
	if err := h.customerService.Delete(c.Request.Context(), ownerEmail(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "customer deleted"})
}

// GET /api/customers/:id/balance
func (h *Handler) GetCustomerBalance(c *gin.Context) {
	total, err := h.customerService.GetTotalDue(c.Request.Context(), ownerEmail(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"customerId": c.Param("id"), "totalDue": total})
}

// GET /api/customers/outstanding
func (h *Handler) OutstandingCustomers(c *gin.Context) {
	customers, err := h.customerService.Outstanding(c.Request.Context(), ownerEmail(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, customers)
}

// GET /api/customers/outstanding/total
func (h *Handler) TotalOutstanding(c *gin.Context) {
	total, err := h.customerService.TotalOutstanding(c.Request.Context(), ownerEmail(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"totalOutstanding": total})
}
