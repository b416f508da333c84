package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ManjitSharma963/cashflow-app-backend/internal/service"
	"github.com/ManjitSharma963/cashflow-app-backend/pkg/auth"
	"github.com/ManjitSharma963/cashflow-app-backend/pkg/response"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	ShopName string `json:"shopName"`
	Mobile   string `json:"mobile"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	ShopName *string `json:"shopName"`
	Mobile   *string `json:"mobile"`
}

// Register creates a shop account and logs it straight in.
// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &service.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		ShopName: req.ShopName,
		Mobile:   req.Mobile,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := auth.GenerateToken(h.cfg.JWT.Secret, h.tokenLifetime(), user.Email, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, gin.H{
		"token": token,
		"user":  user,
	})
}

// Login exchanges credentials for a JWT.
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := auth.GenerateToken(h.cfg.JWT.Secret, h.tokenLifetime(), user.Email, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the presented token for its remaining lifetime.
// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	value, exists := c.Get(ctxKeyClaims)
	claims, ok := value.(*auth.Claims)
	if !exists || !ok {
		response.Unauthorized(c, response.CodeUnauthorized, "missing token")
		return
	}

	ttl := revokeTTL(claims, h.tokenLifetime())
	if err := h.denylist.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "logged out"})
}

// GetProfile returns the authenticated user.
// GET /api/auth/profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetByEmail(c.Request.Context(), ownerEmail(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateProfile edits the authenticated user's display fields.
// PUT /api/auth/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), ownerEmail(c), &service.UpdateProfileRequest{
		Name:     req.Name,
		ShopName: req.ShopName,
		Mobile:   req.Mobile,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, user)
}

func (h *Handler) tokenLifetime() time.Duration {
	return time.Duration(h.cfg.JWT.ExpireHours) * time.Hour
}

// revokeTTL says how long a token's jti stays on the denylist. Tokens we
// issue always carry an expiry, but a verified token without one must not
// crash logout; deny it for the configured lifetime instead.
func revokeTTL(claims *auth.Claims, fallback time.Duration) time.Duration {
	if claims.ExpiresAt == nil {
		return fallback
	}
	return time.Until(claims.ExpiresAt.Time)
}
