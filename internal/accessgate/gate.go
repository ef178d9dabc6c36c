// Package accessgate decides, for every request path, whether the caller
// may proceed, must be redirected, or is denied. The policy is a single
// ordered rule table; the gate itself never mutates state.
package accessgate

import (
	"net/url"
	"strings"
	"time"

	"github.com/varejotech/balcao/internal/tenant/domain"
	"github.com/varejotech/balcao/internal/tenantctx"
)

type Kind int

const (
	Allow Kind = iota
	Redirect
	Deny
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Deny:
		return "deny"
	default:
		return "unknown"
	}
}

// Decision is the gate's verdict for one request.
type Decision struct {
	Kind     Kind
	Location string // redirect target, set when Kind == Redirect
}

func allow() Decision { return Decision{Kind: Allow} }

func redirectTo(target string) Decision { return Decision{Kind: Redirect, Location: target} }

func deny() Decision { return Decision{Kind: Deny} }

const (
	PathLogin     = "/login"
	PathSignup    = "/cadastro"
	PathBlocked   = "/bloqueado"
	PathDashboard = "/dashboard"
	PathMaster    = "/master"
	PathManager   = "/gerente"
)

// authPages are checked before everything else: an authenticated caller is
// bounced to their home instead of seeing the login or signup page.
var authPages = []string{PathLogin, PathSignup}

// publicPrefixes bypass every check.
var publicPrefixes = []string{
	PathLogin,
	PathSignup,
	PathBlocked,
	"/api/auth/",
	"/api/public/",
	"/assets/",
	"/static/",
	"/favicon.ico",
	"/files/",
	"/healthz",
	"/metrics",
	// Guarded by its own shared-secret check, not by the session.
	"/api/jobs/",
}

// billingExemptPrefixes stay reachable for a paused tenant so the blocked
// page can show the pending invoice and offer the self-unlock.
var billingExemptPrefixes = []string{
	PathBlocked,
	"/api/admin/billing",
}

// rule is one row of the role gate. Rows are evaluated in order; the first
// prefix match wins. onDeny yields the verdict when the caller's role is
// not in roles.
type rule struct {
	prefixes []string
	roles    []tenantctx.Role
	onDeny   func(role tenantctx.Role, isAPI bool) Decision
}

var roleRules = []rule{
	{
		prefixes: []string{PathMaster, "/api/master"},
		roles:    []tenantctx.Role{tenantctx.RoleMaster},
		onDeny: func(role tenantctx.Role, isAPI bool) Decision {
			if isAPI {
				return deny()
			}
			return redirectTo(PathDashboard)
		},
	},
	{
		prefixes: []string{PathManager, "/api/gerente"},
		roles:    []tenantctx.Role{tenantctx.RoleGerente},
		onDeny: func(role tenantctx.Role, isAPI bool) Decision {
			if isAPI {
				return deny()
			}
			return redirectTo(PathLogin)
		},
	},
	{
		// Team management is narrower than the inventory group: managers
		// are excluded.
		prefixes: []string{"/equipe", "/api/equipe"},
		roles:    []tenantctx.Role{tenantctx.RoleAdmin, tenantctx.RoleMaster},
		onDeny: func(role tenantctx.Role, isAPI bool) Decision {
			if isAPI {
				return deny()
			}
			if role == tenantctx.RoleGerente {
				return redirectTo(PathManager)
			}
			return redirectTo(PathDashboard)
		},
	},
	{
		// Admin pages exclude managers; the admin API does not.
		prefixes: []string{"/admin"},
		roles:    []tenantctx.Role{tenantctx.RoleAdmin, tenantctx.RoleMaster},
		onDeny: func(role tenantctx.Role, isAPI bool) Decision {
			if role == tenantctx.RoleGerente {
				return redirectTo(PathManager)
			}
			return redirectTo(PathDashboard)
		},
	},
	{
		prefixes: []string{"/estoque", "/relatorios", "/movimentacoes", "/lotes", "/api/admin"},
		roles:    []tenantctx.Role{tenantctx.RoleAdmin, tenantctx.RoleMaster, tenantctx.RoleGerente},
		onDeny: func(role tenantctx.Role, isAPI bool) Decision {
			if isAPI {
				return deny()
			}
			return redirectTo(PathDashboard)
		},
	},
}

// Home is the landing page for a role after login.
func Home(role tenantctx.Role) string {
	switch role {
	case tenantctx.RoleMaster:
		return PathMaster
	case tenantctx.RoleGerente:
		return PathManager
	default:
		return PathDashboard
	}
}

// Resolve runs the full decision chain: auth-page bounce, public bypass,
// login redirect, billing gate, then the role gate. A nil claims value
// means unauthenticated; a malformed token is never an error here.
func Resolve(path string, claims *tenantctx.Claims, now time.Time) Decision {
	for _, page := range authPages {
		if matches(path, page) {
			if claims != nil {
				return redirectTo(Home(claims.Role))
			}
			return allow()
		}
	}

	for _, prefix := range publicPrefixes {
		if matches(path, prefix) {
			return allow()
		}
	}

	if claims == nil {
		return redirectTo(PathLogin)
	}

	if d, gated := billingGate(path, claims, now); gated {
		return d
	}

	isAPI := strings.HasPrefix(path, "/api/")
	for _, r := range roleRules {
		for _, prefix := range r.prefixes {
			if !matches(path, prefix) {
				continue
			}
			for _, role := range r.roles {
				if claims.Role == role {
					return allow()
				}
			}
			return r.onDeny(claims.Role, isAPI)
		}
	}

	return allow()
}

// billingGate blocks paused and cancelled tenants unless a temporary
// unlock window is live. Master users carry no tenant and pass through.
func billingGate(path string, claims *tenantctx.Claims, now time.Time) (Decision, bool) {
	if claims.Role == tenantctx.RoleMaster {
		return Decision{}, false
	}
	status := domain.Status(claims.SubscriptionStatus)
	if !status.Blocked() {
		return Decision{}, false
	}
	for _, prefix := range billingExemptPrefixes {
		if matches(path, prefix) {
			return Decision{}, false
		}
	}
	if claims.TemporaryUnlockUntil != nil && claims.TemporaryUnlockUntil.After(now) {
		return Decision{}, false
	}

	reason := "pausado"
	if status == domain.StatusCancelado {
		reason = "cancelado"
	}
	roleParam := "employee"
	if claims.Role == tenantctx.RoleAdmin {
		roleParam = "admin"
	}
	q := url.Values{}
	q.Set("reason", reason)
	q.Set("email", claims.Email)
	q.Set("role", roleParam)
	return redirectTo(PathBlocked + "?" + q.Encode()), true
}

// matches reports whether path falls under prefix, on a path-segment
// boundary so "/admin" does not capture "/administracao".
func matches(path, prefix string) bool {
	if strings.HasSuffix(prefix, "/") {
		return strings.HasPrefix(path, prefix)
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/' || rest[0] == '?'
}
