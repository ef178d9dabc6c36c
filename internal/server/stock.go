package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RecalculateStock heals the drift between product counters and lot
// quantities for the caller's tenant.
func (s *Server) RecalculateStock(c *gin.Context) {
	claims := s.claims(c)
	result, err := s.stockSvc.Recalculate(c.Request.Context(), claims.TenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
