package team

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/varejotech/balcao/internal/auth/domain"
	authrepository "github.com/varejotech/balcao/internal/auth/repository"
	authservice "github.com/varejotech/balcao/internal/auth/service"
	"github.com/varejotech/balcao/internal/auth/token"
	"github.com/varejotech/balcao/internal/clock"
	tenantdomain "github.com/varejotech/balcao/internal/tenant/domain"
	tenantrepository "github.com/varejotech/balcao/internal/tenant/repository"
	"github.com/varejotech/balcao/internal/tenantctx"
	dbpkg "github.com/varejotech/balcao/pkg/db"
)

var baseTime = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	svc      *Service
	db       *gorm.DB
	node     *snowflake.Node
	tenantID snowflake.ID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbConn, err := dbpkg.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &tenantdomain.Tenant{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	users := authrepository.Provide()
	accounts := authservice.New(authservice.Params{
		DB:         dbConn,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clock.NewFakeClock(baseTime),
		Repo:       users,
		TenantRepo: tenantrepository.Provide(),
		Issuer:     token.NewIssuer(token.Config{SigningKey: "test-key"}),
	})

	svc := New(Params{
		DB:       dbConn,
		Log:      zap.NewNop(),
		Users:    users,
		Accounts: accounts,
	})
	return &testEnv{svc: svc, db: dbConn, node: node, tenantID: node.Generate()}
}

func (e *testEnv) addMember(t *testing.T, name string, role tenantctx.Role) *Member {
	t.Helper()

	member, err := e.svc.Add(context.Background(), e.tenantID, AddRequest{
		Name:     name,
		Email:    name + "@loja.com",
		Role:     role,
		Password: "senha-inicial",
	})
	if err != nil {
		t.Fatalf("failed to add %s: %v", name, err)
	}
	return member
}

func TestAddMemberMustChangePassword(t *testing.T) {
	env := newTestEnv(t)

	member := env.addMember(t, "carla", tenantctx.RoleCaixa)
	if !member.MustChangePassword {
		t.Fatal("expected new member flagged for password change")
	}
	if member.Role != tenantctx.RoleCaixa {
		t.Fatalf("expected caixa role, got %s", member.Role)
	}
}

func TestAddMemberRejectsMasterRole(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Add(context.Background(), env.tenantID, AddRequest{
		Name:     "intruso",
		Email:    "intruso@loja.com",
		Role:     tenantctx.RoleMaster,
		Password: "senha-inicial",
	})
	if err != ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestRemoveRejectsSelf(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addMember(t, "dona", tenantctx.RoleAdmin)

	err := env.svc.Remove(context.Background(), env.tenantID, admin.ID, admin.ID)
	if err != ErrSelfRemoval {
		t.Fatalf("expected ErrSelfRemoval, got %v", err)
	}
}

func TestRemoveKeepsLastAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addMember(t, "dona", tenantctx.RoleAdmin)
	cashier := env.addMember(t, "carla", tenantctx.RoleCaixa)

	err := env.svc.Remove(context.Background(), env.tenantID, admin.ID, cashier.ID)
	if err != ErrLastAdmin {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
}

func TestRemoveAdminWithAnotherAdminLeft(t *testing.T) {
	env := newTestEnv(t)
	first := env.addMember(t, "dona", tenantctx.RoleAdmin)
	second := env.addMember(t, "socio", tenantctx.RoleAdmin)

	if err := env.svc.Remove(context.Background(), env.tenantID, first.ID, second.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	members, err := env.svc.List(context.Background(), env.tenantID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(members) != 1 || members[0].ID != second.ID {
		t.Fatalf("expected only the second admin left, got %+v", members)
	}
}

func TestUpdateRoleKeepsLastAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addMember(t, "dona", tenantctx.RoleAdmin)

	_, err := env.svc.UpdateRole(context.Background(), env.tenantID, admin.ID, tenantctx.RoleCaixa)
	if err != ErrLastAdmin {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
}

func TestUpdateRolePromotesCashier(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "dona", tenantctx.RoleAdmin)
	cashier := env.addMember(t, "carla", tenantctx.RoleCaixa)

	member, err := env.svc.UpdateRole(context.Background(), env.tenantID, cashier.ID, tenantctx.RoleGerente)
	if err != nil {
		t.Fatalf("update role failed: %v", err)
	}
	if member.Role != tenantctx.RoleGerente {
		t.Fatalf("expected gerente, got %s", member.Role)
	}
}

func TestMemberIsTenantScoped(t *testing.T) {
	env := newTestEnv(t)
	member := env.addMember(t, "carla", tenantctx.RoleCaixa)

	otherTenant := env.node.Generate()
	_, err := env.svc.UpdateRole(context.Background(), otherTenant, member.ID, tenantctx.RoleGerente)
	if err != ErrMemberNotFound {
		t.Fatalf("expected ErrMemberNotFound for foreign tenant, got %v", err)
	}
}
