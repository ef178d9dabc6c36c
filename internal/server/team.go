package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/varejotech/balcao/internal/team"
	"github.com/varejotech/balcao/internal/tenantctx"
)

func (s *Server) ListTeam(c *gin.Context) {
	claims := s.claims(c)
	members, err := s.teamSvc.List(c.Request.Context(), claims.TenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (s *Server) AddTeamMember(c *gin.Context) {
	var req team.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	claims := s.claims(c)
	member, err := s.teamSvc.Add(c.Request.Context(), claims.TenantID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) UpdateTeamRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	claims := s.claims(c)
	member, err := s.teamSvc.UpdateRole(c.Request.Context(), claims.TenantID, id, tenantctx.Role(req.Role))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (s *Server) RemoveTeamMember(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	claims := s.claims(c)
	if err := s.teamSvc.Remove(c.Request.Context(), claims.TenantID, id, claims.UserID); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
