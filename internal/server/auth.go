package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/varejotech/balcao/internal/accessgate"
	authdomain "github.com/varejotech/balcao/internal/auth/domain"
	"github.com/varejotech/balcao/internal/tenantctx"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	UserID               string     `json:"userId"`
	Email                string     `json:"email"`
	Role                 string     `json:"role"`
	TenantID             string     `json:"tenantId,omitempty"`
	TenantName           string     `json:"tenantName,omitempty"`
	SubscriptionStatus   string     `json:"subscriptionStatus,omitempty"`
	SubscriptionDueDate  *time.Time `json:"subscriptionDueDate,omitempty"`
	TemporaryUnlockUntil *time.Time `json:"temporaryUnlockUntil,omitempty"`
	MustChangePassword   bool       `json:"mustChangePassword"`
	ExpiresAt            time.Time  `json:"expiresAt"`
	Home                 string     `json:"home"`
}

func sessionResponse(claims tenantctx.Claims, mustChange bool, expiresAt time.Time) SessionResponse {
	resp := SessionResponse{
		UserID:               claims.UserID.String(),
		Email:                claims.Email,
		Role:                 string(claims.Role),
		TenantName:           claims.TenantName,
		SubscriptionStatus:   claims.SubscriptionStatus,
		SubscriptionDueDate:  claims.SubscriptionDueDate,
		TemporaryUnlockUntil: claims.TemporaryUnlockUntil,
		MustChangePassword:   mustChange,
		ExpiresAt:            expiresAt,
		Home:                 accessgate.Home(claims.Role),
	}
	if claims.TenantID != 0 {
		resp.TenantID = claims.TenantID.String()
	}
	return resp
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.Token, result.ExpiresAt)
	c.JSON(http.StatusOK, sessionResponse(result.Claims, result.MustChangePassword, result.ExpiresAt))
}

func (s *Server) Logout(c *gin.Context) {
	s.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RefreshToken re-mints the session from the database so a payment made
// mid-session reaches the claims without a new login.
func (s *Server) RefreshToken(c *gin.Context) {
	claims := s.claims(c)
	result, err := s.authsvc.Refresh(c.Request.Context(), claims.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.Token, result.ExpiresAt)
	c.JSON(http.StatusOK, sessionResponse(result.Claims, result.MustChangePassword, result.ExpiresAt))
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.NewPassword) < 6 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	claims := s.claims(c)
	if err := s.authsvc.ChangePassword(c.Request.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Me(c *gin.Context) {
	claims := s.claims(c)
	user, err := s.authsvc.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(*claims, user.MustChangePassword, time.Time{}))
}
