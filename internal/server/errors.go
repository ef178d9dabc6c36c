package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	authdomain "github.com/varejotech/balcao/internal/auth/domain"
	lotdomain "github.com/varejotech/balcao/internal/lot/domain"
	productdomain "github.com/varejotech/balcao/internal/product/domain"
	billingprovider "github.com/varejotech/balcao/internal/providers/billing"
	saledomain "github.com/varejotech/balcao/internal/sale/domain"
	"github.com/varejotech/balcao/internal/team"
	tenantdomain "github.com/varejotech/balcao/internal/tenant/domain"
)

type errorPayload struct {
	Type          string `json:"type"`
	Message       string `json:"message"`
	DaysRemaining int    `json:"daysRemaining,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware turns errors recorded on the gin context into
// the JSON error contract after the handler chain ran.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var cooldownErr *tenantdomain.UnlockCooldownError
	if errors.As(err, &cooldownErr) {
		return http.StatusTooManyRequests, errorPayload{
			Type:          "unlock_cooldown",
			Message:       cooldownErr.Error(),
			DaysRemaining: cooldownErr.DaysRemaining,
		}
	}

	// Provider failures pass the provider's own message through so the
	// operator sees what the billing side rejected.
	var providerErr *billingprovider.Error
	if errors.As(err, &providerErr) {
		status := http.StatusBadGateway
		if providerErr.Status >= 400 && providerErr.Status < 500 {
			status = http.StatusBadRequest
		}
		return status, errorPayload{
			Type:    "billing_provider_error",
			Message: providerErr.Error(),
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrTokenExpired):
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "não autenticado"}

	case errors.Is(err, authdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorPayload{Type: "invalid_credentials", Message: "e-mail ou senha incorretos"}

	case errors.Is(err, authdomain.ErrAccountPending):
		return http.StatusForbidden, errorPayload{Type: "account_pending", Message: "conta aguardando aprovação"}

	case errors.Is(err, authdomain.ErrAccountPaused):
		return http.StatusForbidden, errorPayload{Type: "account_paused", Message: "assinatura pausada por pendência de pagamento"}

	case errors.Is(err, authdomain.ErrAccountCancelled):
		return http.StatusForbidden, errorPayload{Type: "account_cancelled", Message: "conta cancelada"}

	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: "acesso negado"}

	case errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, lotdomain.ErrNotFound),
		errors.Is(err, saledomain.ErrNotFound),
		errors.Is(err, team.ErrMemberNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: "registro não encontrado"}

	case errors.Is(err, tenantdomain.ErrTaxIDExists):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: "CNPJ já cadastrado"}

	case errors.Is(err, authdomain.ErrUserExists):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: "e-mail já cadastrado"}

	case errors.Is(err, productdomain.ErrSKUExists):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: "SKU já cadastrado"}

	case errors.Is(err, lotdomain.ErrLotNumberExists):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: "lote já cadastrado para este produto"}

	case errors.Is(err, tenantdomain.ErrAlreadyCanceled):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: "conta já cancelada"}

	case errors.Is(err, tenantdomain.ErrNotPaused):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: "conta não está pausada"}

	case errors.Is(err, tenantdomain.ErrJobRunning):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: "job já em execução"}

	case errors.Is(err, team.ErrSelfRemoval),
		errors.Is(err, team.ErrLastAdmin):
		return http.StatusConflict, errorPayload{Type: "conflict", Message: err.Error()}

	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, tenantdomain.ErrInvalidRequest),
		errors.Is(err, productdomain.ErrInvalidRequest),
		errors.Is(err, lotdomain.ErrInvalidRequest),
		errors.Is(err, saledomain.ErrInvalidRequest),
		errors.Is(err, saledomain.ErrEmptySale),
		errors.Is(err, team.ErrInvalidRole):
		return http.StatusBadRequest, errorPayload{Type: "validation_error", Message: err.Error()}

	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "erro interno"}
	}
}

// classifyErrorForLog labels request-log entries with the mapped error
// type and HTTP status.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	return payload.Type, strconv.Itoa(status)
}
