package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	lotdomain "github.com/varejotech/balcao/internal/lot/domain"
)

func (s *Server) ListLots(c *gin.Context) {
	claims := s.claims(c)
	lots, err := s.lotSvc.ListByTenant(c.Request.Context(), claims.TenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lots": lots})
}

func (s *Server) ListProductLots(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	claims := s.claims(c)
	lots, err := s.lotSvc.ListByProduct(c.Request.Context(), claims.TenantID, productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lots": lots})
}

func (s *Server) StockIn(c *gin.Context) {
	var req lotdomain.StockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	claims := s.claims(c)
	req.UserID = claims.UserID
	lot, err := s.lotSvc.StockIn(c.Request.Context(), claims.TenantID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

func (s *Server) StockOut(c *gin.Context) {
	var req lotdomain.StockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	claims := s.claims(c)
	req.UserID = claims.UserID
	lot, err := s.lotSvc.StockOut(c.Request.Context(), claims.TenantID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (s *Server) DeleteLot(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	claims := s.claims(c)
	if err := s.lotSvc.Delete(c.Request.Context(), claims.TenantID, id, claims.UserID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListMovements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	claims := s.claims(c)
	movements, err := s.lotSvc.ListMovements(c.Request.Context(), claims.TenantID, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements})
}
