package accessgate

import (
	"strings"
	"testing"
	"time"

	"github.com/varejotech/balcao/internal/tenantctx"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func claimsFor(role tenantctx.Role, status string, unlockUntil *time.Time) *tenantctx.Claims {
	c := &tenantctx.Claims{
		UserID:               1,
		Email:                "user@example.com",
		Role:                 role,
		SubscriptionStatus:   status,
		TemporaryUnlockUntil: unlockUntil,
	}
	if role != tenantctx.RoleMaster {
		c.TenantID = 42
	}
	return c
}

func TestResolvePublicPaths(t *testing.T) {
	for _, path := range []string{
		"/login", "/cadastro", "/bloqueado",
		"/api/auth/login", "/api/public/signup",
		"/assets/app.js", "/healthz", "/metrics",
	} {
		d := Resolve(path, nil, testNow)
		if d.Kind != Allow {
			t.Fatalf("path %s: expected allow for anonymous, got %v -> %s", path, d.Kind, d.Location)
		}
	}
}

func TestResolveAnonymousRedirectsToLogin(t *testing.T) {
	for _, path := range []string{"/dashboard", "/estoque", "/master", "/api/admin/products"} {
		d := Resolve(path, nil, testNow)
		if d.Kind != Redirect || d.Location != PathLogin {
			t.Fatalf("path %s: expected redirect to login, got %v -> %s", path, d.Kind, d.Location)
		}
	}
}

func TestResolveAuthenticatedBouncedFromAuthPages(t *testing.T) {
	cases := []struct {
		role tenantctx.Role
		home string
	}{
		{tenantctx.RoleMaster, PathMaster},
		{tenantctx.RoleGerente, PathManager},
		{tenantctx.RoleAdmin, PathDashboard},
		{tenantctx.RoleCaixa, PathDashboard},
	}
	for _, tc := range cases {
		for _, path := range []string{"/login", "/cadastro"} {
			d := Resolve(path, claimsFor(tc.role, "ATIVO", nil), testNow)
			if d.Kind != Redirect || d.Location != tc.home {
				t.Fatalf("role %s path %s: expected redirect to %s, got %v -> %s",
					tc.role, path, tc.home, d.Kind, d.Location)
			}
		}
	}
}

func TestResolveRoleMatrix(t *testing.T) {
	cases := []struct {
		role     tenantctx.Role
		path     string
		kind     Kind
		location string
	}{
		// master area
		{tenantctx.RoleMaster, "/master/empresas", Allow, ""},
		{tenantctx.RoleMaster, "/api/master/tenants", Allow, ""},
		{tenantctx.RoleAdmin, "/master", Redirect, PathDashboard},
		{tenantctx.RoleAdmin, "/api/master/tenants", Deny, ""},
		{tenantctx.RoleCaixa, "/master", Redirect, PathDashboard},

		// manager area
		{tenantctx.RoleGerente, "/gerente", Allow, ""},
		{tenantctx.RoleAdmin, "/gerente", Redirect, PathLogin},
		{tenantctx.RoleCaixa, "/gerente", Redirect, PathLogin},

		// inventory group is shared with managers
		{tenantctx.RoleAdmin, "/estoque", Allow, ""},
		{tenantctx.RoleGerente, "/estoque", Allow, ""},
		{tenantctx.RoleMaster, "/relatorios", Allow, ""},
		{tenantctx.RoleGerente, "/lotes", Allow, ""},
		{tenantctx.RoleGerente, "/movimentacoes", Allow, ""},
		{tenantctx.RoleCaixa, "/estoque", Redirect, PathDashboard},
		{tenantctx.RoleCaixa, "/api/admin/products", Deny, ""},
		{tenantctx.RoleGerente, "/api/admin/products", Allow, ""},

		// admin pages exclude managers
		{tenantctx.RoleAdmin, "/admin/caixa", Allow, ""},
		{tenantctx.RoleGerente, "/admin/caixa", Redirect, PathManager},
		{tenantctx.RoleCaixa, "/admin", Redirect, PathDashboard},

		// team area excludes managers entirely
		{tenantctx.RoleAdmin, "/equipe", Allow, ""},
		{tenantctx.RoleMaster, "/equipe", Allow, ""},
		{tenantctx.RoleGerente, "/equipe", Redirect, PathManager},
		{tenantctx.RoleCaixa, "/equipe", Redirect, PathDashboard},
		{tenantctx.RoleCaixa, "/api/equipe", Deny, ""},

		// unmatched paths fall through to allow
		{tenantctx.RoleCaixa, "/dashboard", Allow, ""},
		{tenantctx.RoleCaixa, "/vendas", Allow, ""},
	}

	for _, tc := range cases {
		d := Resolve(tc.path, claimsFor(tc.role, "ATIVO", nil), testNow)
		if d.Kind != tc.kind {
			t.Fatalf("role %s path %s: expected %v, got %v -> %s", tc.role, tc.path, tc.kind, d.Kind, d.Location)
		}
		if tc.location != "" && d.Location != tc.location {
			t.Fatalf("role %s path %s: expected redirect to %s, got %s", tc.role, tc.path, tc.location, d.Location)
		}
	}
}

func TestResolveBillingGateBlocksPausedTenant(t *testing.T) {
	for _, role := range []tenantctx.Role{tenantctx.RoleAdmin, tenantctx.RoleGerente, tenantctx.RoleCaixa} {
		d := Resolve("/dashboard", claimsFor(role, "PAUSADO", nil), testNow)
		if d.Kind != Redirect || !strings.HasPrefix(d.Location, PathBlocked+"?") {
			t.Fatalf("role %s: expected redirect to blocked page, got %v -> %s", role, d.Kind, d.Location)
		}
		if !strings.Contains(d.Location, "reason=pausado") {
			t.Fatalf("role %s: expected reason=pausado in %s", role, d.Location)
		}
	}

	d := Resolve("/dashboard", claimsFor(tenantctx.RoleAdmin, "CANCELADO", nil), testNow)
	if !strings.Contains(d.Location, "reason=cancelado") {
		t.Fatalf("expected reason=cancelado, got %s", d.Location)
	}
	if !strings.Contains(d.Location, "role=admin") {
		t.Fatalf("expected role=admin, got %s", d.Location)
	}

	d = Resolve("/dashboard", claimsFor(tenantctx.RoleCaixa, "PAUSADO", nil), testNow)
	if !strings.Contains(d.Location, "role=employee") {
		t.Fatalf("expected role=employee, got %s", d.Location)
	}
}

func TestResolveBillingGateBeforeRoleGate(t *testing.T) {
	// A paused admin is blocked even on paths their role would allow.
	d := Resolve("/estoque", claimsFor(tenantctx.RoleAdmin, "PAUSADO", nil), testNow)
	if d.Kind != Redirect || !strings.HasPrefix(d.Location, PathBlocked+"?") {
		t.Fatalf("expected blocked redirect, got %v -> %s", d.Kind, d.Location)
	}
}

func TestResolveTemporaryUnlockGrantsAccess(t *testing.T) {
	until := testNow.Add(12 * time.Hour)
	d := Resolve("/dashboard", claimsFor(tenantctx.RoleCaixa, "PAUSADO", &until), testNow)
	if d.Kind != Allow {
		t.Fatalf("expected allow during unlock window, got %v -> %s", d.Kind, d.Location)
	}

	expired := testNow.Add(-time.Minute)
	d = Resolve("/dashboard", claimsFor(tenantctx.RoleCaixa, "PAUSADO", &expired), testNow)
	if d.Kind != Redirect {
		t.Fatalf("expected redirect after unlock expired, got %v", d.Kind)
	}
}

func TestResolveBillingExemptPaths(t *testing.T) {
	for _, path := range []string{"/bloqueado", "/api/admin/billing", "/api/admin/billing/unlock"} {
		d := Resolve(path, claimsFor(tenantctx.RoleAdmin, "PAUSADO", nil), testNow)
		if d.Kind != Allow {
			t.Fatalf("path %s: expected allow for paused admin, got %v -> %s", path, d.Kind, d.Location)
		}
	}
}

func TestResolveMasterIgnoresBillingGate(t *testing.T) {
	d := Resolve("/master", claimsFor(tenantctx.RoleMaster, "PAUSADO", nil), testNow)
	if d.Kind != Allow {
		t.Fatalf("expected allow for master, got %v", d.Kind)
	}
}

func TestPrefixMatchesOnSegmentBoundary(t *testing.T) {
	d := Resolve("/administracao", claimsFor(tenantctx.RoleCaixa, "ATIVO", nil), testNow)
	if d.Kind != Allow {
		t.Fatalf("expected /administracao to fall outside /admin, got %v -> %s", d.Kind, d.Location)
	}
}
