// Package team manages a tenant's employee accounts. It layers tenant
// scoping and role rules over the auth user store.
package team

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/varejotech/balcao/internal/auth/domain"
	"github.com/varejotech/balcao/internal/tenantctx"
)

var (
	ErrMemberNotFound = errors.New("team member not found")
	ErrInvalidRole    = errors.New("invalid team role")
	ErrSelfRemoval    = errors.New("cannot remove own account")
	ErrLastAdmin      = errors.New("cannot remove the last admin")
)

type Member struct {
	ID                 snowflake.ID   `json:"id"`
	Name               string         `json:"name"`
	Email              string         `json:"email"`
	Role               tenantctx.Role `json:"role"`
	MustChangePassword bool           `json:"mustChangePassword"`
}

type AddRequest struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Role     tenantctx.Role `json:"role"`
	Password string         `json:"password"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	users    authdomain.Repository
	accounts authdomain.Service
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Users    authdomain.Repository
	Accounts authdomain.Service
}

func New(p Params) *Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("team.service"),
		users:    p.Users,
		accounts: p.Accounts,
	}
}

var Module = fx.Module("team",
	fx.Provide(New),
)

func (s *Service) List(ctx context.Context, tenantID snowflake.ID) ([]Member, error) {
	users, err := s.users.ListByTenant(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	members := make([]Member, 0, len(users))
	for _, user := range users {
		members = append(members, toMember(user))
	}
	return members, nil
}

// Add creates an employee account. New members must change the password
// the admin handed them on first login.
func (s *Service) Add(ctx context.Context, tenantID snowflake.ID, req AddRequest) (*Member, error) {
	switch req.Role {
	case tenantctx.RoleAdmin, tenantctx.RoleGerente, tenantctx.RoleCaixa:
	default:
		return nil, ErrInvalidRole
	}

	user, err := s.accounts.CreateUser(ctx, authdomain.CreateUserRequest{
		TenantID:           tenantID,
		Name:               req.Name,
		Email:              req.Email,
		Role:               req.Role,
		Password:           req.Password,
		MustChangePassword: true,
	})
	if err != nil {
		return nil, err
	}
	member := toMember(user)
	return &member, nil
}

func (s *Service) UpdateRole(ctx context.Context, tenantID, memberID snowflake.ID, role tenantctx.Role) (*Member, error) {
	switch role {
	case tenantctx.RoleAdmin, tenantctx.RoleGerente, tenantctx.RoleCaixa:
	default:
		return nil, ErrInvalidRole
	}

	user, err := s.member(ctx, tenantID, memberID)
	if err != nil {
		return nil, err
	}
	if user.Role == tenantctx.RoleAdmin && role != tenantctx.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx, tenantID, memberID); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).
		Model(&authdomain.User{}).
		Where("tenant_id = ? AND id = ?", tenantID, memberID).
		Update("role", role).Error
	if err != nil {
		return nil, err
	}
	user.Role = role
	member := toMember(user)
	return &member, nil
}

func (s *Service) Remove(ctx context.Context, tenantID, memberID, requesterID snowflake.ID) error {
	if memberID == requesterID {
		return ErrSelfRemoval
	}
	user, err := s.member(ctx, tenantID, memberID)
	if err != nil {
		return err
	}
	if user.Role == tenantctx.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx, tenantID, memberID); err != nil {
			return err
		}
	}
	return s.users.Delete(ctx, s.db, memberID)
}

func (s *Service) member(ctx context.Context, tenantID, memberID snowflake.ID) (*authdomain.User, error) {
	user, err := s.users.FindByID(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.TenantID != tenantID {
		return nil, ErrMemberNotFound
	}
	return user, nil
}

func (s *Service) ensureAnotherAdmin(ctx context.Context, tenantID, excludeID snowflake.ID) error {
	users, err := s.users.ListByTenant(ctx, s.db, tenantID)
	if err != nil {
		return err
	}
	for _, user := range users {
		if user.ID != excludeID && user.Role == tenantctx.RoleAdmin {
			return nil
		}
	}
	return ErrLastAdmin
}

func toMember(user *authdomain.User) Member {
	return Member{
		ID:                 user.ID,
		Name:               user.Name,
		Email:              user.Email,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
	}
}
