package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	saledomain "github.com/varejotech/balcao/internal/sale/domain"
)

func (s *Server) CreateSale(c *gin.Context) {
	var req saledomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	claims := s.claims(c)
	req.UserID = claims.UserID
	sale, err := s.saleSvc.Create(c.Request.Context(), claims.TenantID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (s *Server) ListSales(c *gin.Context) {
	var filter saledomain.ListFilter
	if err := c.ShouldBindQuery(&filter.Pagination); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if from, ok := parseDate(c.Query("from")); ok {
		filter.From = &from
	}
	if to, ok := parseDate(c.Query("to")); ok {
		filter.To = &to
	}

	claims := s.claims(c)
	sales, pageInfo, err := s.saleSvc.List(c.Request.Context(), claims.TenantID, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sales":     sales,
		"page_info": pageInfo,
	})
}

func (s *Server) GetSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	claims := s.claims(c)
	sale, err := s.saleSvc.Get(c.Request.Context(), claims.TenantID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, true
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts, true
	}
	return time.Time{}, false
}
