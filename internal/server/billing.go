package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/varejotech/balcao/internal/tenantctx"
)

// BillingStatus shows the caller's tenant subscription state.
func (s *Server) BillingStatus(c *gin.Context) {
	claims := s.claims(c)
	tenant, err := s.tenantSvc.Get(c.Request.Context(), claims.TenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":               tenant.Status,
		"planDueDate":          tenant.PlanDueDate,
		"temporaryUnlockUntil": tenant.TemporaryUnlockUntil,
		"lastUnlockAt":         tenant.LastUnlockAt,
		"cancelReason":         tenant.CancelReason,
	})
}

// PendingInvoice fetches the open invoice from the provider so the tenant
// can settle it.
func (s *Server) PendingInvoice(c *gin.Context) {
	claims := s.claims(c)
	tenant, err := s.tenantSvc.Get(c.Request.Context(), claims.TenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if tenant.ExternalSubscriptionID == "" {
		c.JSON(http.StatusOK, gin.H{"invoice": nil})
		return
	}

	invoice, err := s.billing.GetPendingInvoice(c.Request.Context(), tenant.ExternalSubscriptionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

func (s *Server) PaymentHistory(c *gin.Context) {
	claims := s.claims(c)
	tenant, err := s.tenantSvc.Get(c.Request.Context(), claims.TenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if tenant.ExternalSubscriptionID == "" {
		c.JSON(http.StatusOK, gin.H{"payments": []any{}})
		return
	}

	payments, err := s.billing.ListPayments(c.Request.Context(), tenant.ExternalSubscriptionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// CancelOwnTenant lets the store admin cancel the subscription. The
// provider cancellation runs first; the account only flips to CANCELADO
// after it succeeds.
func (s *Server) CancelOwnTenant(c *gin.Context) {
	claims := s.claims(c)
	if claims.Role != tenantctx.RoleAdmin {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req CancelTenantRequest
	_ = c.ShouldBindJSON(&req)
	if err := s.tenantSvc.Cancel(c.Request.Context(), claims.TenantID, req.Reason); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TemporaryUnlock grants the 24h access window on the caller's paused
// tenant.
func (s *Server) TemporaryUnlock(c *gin.Context) {
	claims := s.claims(c)
	if claims.Role != tenantctx.RoleAdmin {
		AbortWithError(c, ErrForbidden)
		return
	}

	tenant, err := s.tenantSvc.TemporaryUnlock(c.Request.Context(), claims.TenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":               "ok",
		"temporaryUnlockUntil": tenant.TemporaryUnlockUntil,
	})
}

// PublicBillingStatus backs the blocked page: a lightweight lookup that
// reveals only the lifecycle state.
func (s *Server) PublicBillingStatus(c *gin.Context) {
	taxID := c.Query("taxId")
	if taxID == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	tenant, err := s.tenantSvc.GetByTaxID(c.Request.Context(), taxID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      tenant.Status,
		"planDueDate": tenant.PlanDueDate,
	})
}

type PublicUnlockRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PublicTemporaryUnlock is the self-service unlock on the blocked page. A
// paused admin cannot log in, so the credentials are verified directly and
// the unlock applies to their tenant.
func (s *Server) PublicTemporaryUnlock(c *gin.Context) {
	var req PublicUnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.authsvc.VerifyCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if user.Role != tenantctx.RoleAdmin || user.TenantID == 0 {
		AbortWithError(c, ErrForbidden)
		return
	}

	tenant, err := s.tenantSvc.TemporaryUnlock(c.Request.Context(), user.TenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":               "ok",
		"temporaryUnlockUntil": tenant.TemporaryUnlockUntil,
	})
}
