package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/varejotech/balcao/internal/accessgate"
	"github.com/varejotech/balcao/internal/tenantctx"
)

// ClaimsContext verifies the session token (cookie or bearer) and injects
// the claims into the request context. A missing or malformed token just
// leaves the request unauthenticated.
func (s *Server) ClaimsContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := s.sessions.ReadToken(c)
		if ok {
			claims, err := s.issuer.Verify(raw)
			if err == nil && claims != nil {
				ctx := tenantctx.WithClaims(c.Request.Context(), claims)
				c.Request = c.Request.WithContext(ctx)
			}
		}
		c.Next()
	}
}

// Gate applies the access policy to every request.
func (s *Server) Gate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := tenantctx.FromContext(c.Request.Context())
		decision := accessgate.Resolve(c.Request.URL.Path, claims, s.clock.Now())
		s.obsMetrics.IncGateDecision(decision.Kind.String())

		switch decision.Kind {
		case accessgate.Allow:
			c.Next()
		case accessgate.Redirect:
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{
				Error: errorPayload{Type: "forbidden", Message: "acesso negado"},
			})
		}
	}
}

// AuthRequired rejects unauthenticated requests. The gate already routes
// pages; this is the hard stop for API handlers.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := tenantctx.FromContext(c.Request.Context()); !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// TenantRequired rejects callers without a tenant, i.e. the master
// operator on tenant-scoped endpoints.
func (s *Server) TenantRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := tenantctx.FromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if claims.TenantID == 0 {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// SweepAuthRequired guards the externally triggered jobs with the shared
// secret.
func (s *Server) SweepAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := strings.TrimSpace(s.cfg.SweepSecret)
		if secret == "" {
			AbortWithError(c, ErrForbidden)
			return
		}
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(secret)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func (s *Server) claims(c *gin.Context) *tenantctx.Claims {
	claims, _ := tenantctx.FromContext(c.Request.Context())
	return claims
}

func parseID(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param(name)))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return id, true
}
