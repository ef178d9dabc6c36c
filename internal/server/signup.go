package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	tenantdomain "github.com/varejotech/balcao/internal/tenant/domain"
)

type SignupRequest struct {
	CompanyName string `json:"companyName"`
	TaxID       string `json:"taxId"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AdminName   string `json:"adminName"`
	Password    string `json:"password"`
}

// Signup provisions a new store: tenant on trial, admin account and the
// external billing records, all or nothing.
func (s *Server) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.tenantSvc.Signup(c.Request.Context(), tenantdomain.SignupRequest{
		CompanyName: req.CompanyName,
		TaxID:       req.TaxID,
		Email:       req.Email,
		Phone:       req.Phone,
		AdminName:   req.AdminName,
		Password:    req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"tenantId":    result.Tenant.ID.String(),
		"name":        result.Tenant.Name,
		"status":      result.Tenant.Status,
		"planDueDate": result.Tenant.PlanDueDate,
		"adminUserId": result.AdminUserID.String(),
	})
}
