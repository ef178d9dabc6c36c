package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// reportPeriod defaults to the last 30 days when the query carries no
// explicit range.
func (s *Server) reportPeriod(c *gin.Context) (time.Time, time.Time) {
	now := s.clock.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if parsed, ok := parseDate(c.Query("from")); ok {
		from = parsed
	}
	if parsed, ok := parseDate(c.Query("to")); ok {
		to = parsed
	}
	return from, to
}

func (s *Server) ReportSummary(c *gin.Context) {
	from, to := s.reportPeriod(c)
	claims := s.claims(c)
	summary, err := s.reportSvc.Summary(c.Request.Context(), claims.TenantID, from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) ReportDaily(c *gin.Context) {
	from, to := s.reportPeriod(c)
	claims := s.claims(c)
	points, err := s.reportSvc.DailySeries(c.Request.Context(), claims.TenantID, from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (s *Server) ReportTopProducts(c *gin.Context) {
	from, to := s.reportPeriod(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	claims := s.claims(c)
	rows, err := s.reportSvc.TopProducts(c.Request.Context(), claims.TenantID, from, to, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": rows})
}

func (s *Server) ReportLowStock(c *gin.Context) {
	claims := s.claims(c)
	products, err := s.reportSvc.LowStock(c.Request.Context(), claims.TenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
