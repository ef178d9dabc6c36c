package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	authdomain "github.com/varejotech/balcao/internal/auth/domain"
	lotdomain "github.com/varejotech/balcao/internal/lot/domain"
	productdomain "github.com/varejotech/balcao/internal/product/domain"
	billingprovider "github.com/varejotech/balcao/internal/providers/billing"
	saledomain "github.com/varejotech/balcao/internal/sale/domain"
	"github.com/varejotech/balcao/internal/team"
	tenantdomain "github.com/varejotech/balcao/internal/tenant/domain"
)

func TestMapErrorTable(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		errType string
	}{
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"invalid credentials", authdomain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"account paused", authdomain.ErrAccountPaused, http.StatusForbidden, "account_paused"},
		{"account cancelled", authdomain.ErrAccountCancelled, http.StatusForbidden, "account_cancelled"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "forbidden"},
		{"tenant not found", tenantdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"product not found", productdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"sale not found", saledomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"duplicate tax id", tenantdomain.ErrTaxIDExists, http.StatusConflict, "conflict"},
		{"duplicate sku", productdomain.ErrSKUExists, http.StatusConflict, "conflict"},
		{"duplicate lot", lotdomain.ErrLotNumberExists, http.StatusConflict, "conflict"},
		{"already cancelled", tenantdomain.ErrAlreadyCanceled, http.StatusConflict, "conflict"},
		{"not paused", tenantdomain.ErrNotPaused, http.StatusConflict, "conflict"},
		{"job running", tenantdomain.ErrJobRunning, http.StatusConflict, "conflict"},
		{"last admin", team.ErrLastAdmin, http.StatusConflict, "conflict"},
		{"empty sale", saledomain.ErrEmptySale, http.StatusBadRequest, "validation_error"},
		{"invalid role", team.ErrInvalidRole, http.StatusBadRequest, "validation_error"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.errType, payload.Type)
		})
	}
}

func TestMapErrorUnlockCooldownCarriesDays(t *testing.T) {
	status, payload := mapError(&tenantdomain.UnlockCooldownError{DaysRemaining: 15})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "unlock_cooldown", payload.Type)
	assert.Equal(t, 15, payload.DaysRemaining)
}

func TestMapErrorProviderPassthrough(t *testing.T) {
	// Provider 4xx means the request content was rejected; everything else
	// is the provider's fault.
	status, payload := mapError(&billingprovider.Error{
		Operation: "CreateCustomer",
		Message:   "invalid cpfCnpj",
		Status:    400,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "billing_provider_error", payload.Type)
	assert.Contains(t, payload.Message, "invalid cpfCnpj")

	status, _ = mapError(&billingprovider.Error{Operation: "CreateCustomer", Message: "timeout", Status: 500})
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestClassifyErrorForLog(t *testing.T) {
	errType, status := classifyErrorForLog(tenantdomain.ErrNotFound)
	assert.Equal(t, "not_found", errType)
	assert.Equal(t, "404", status)
}
