package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OverdueSweep is the externally triggered batch that pauses tenants past
// the grace period. The scheduler calls it with the shared secret.
func (s *Server) OverdueSweep(c *gin.Context) {
	result, err := s.tenantSvc.OverdueSweep(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
