package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListTenants(c *gin.Context) {
	tenants, err := s.tenantSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

func (s *Server) GetTenant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tenant, err := s.tenantSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

type CancelTenantRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) CancelTenant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CancelTenantRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.tenantSvc.Cancel(c.Request.Context(), id, req.Reason); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) UnlockTenant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tenant, err := s.tenantSvc.TemporaryUnlock(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":               "ok",
		"temporaryUnlockUntil": tenant.TemporaryUnlockUntil,
	})
}

func (s *Server) DeleteTenant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.tenantSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReconcileTenants runs the provider sync over every tenant holding an
// external subscription.
func (s *Server) ReconcileTenants(c *gin.Context) {
	result, err := s.tenantSvc.ReconcileAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
